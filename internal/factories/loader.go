// Package factories is the declarative factory registry: files published by
// libraries that map a key (an interface or capability name) to an ordered
// list of implementation type names.
//
// File format (repokit.factories.yaml):
//
//	example.com/lib/audit.Auditing:
//	  - example.com/lib/audit.AuditingImpl
//	repokit.RepositoryFactory:
//	  - example.com/store/mongo.RepositoryFactory
//	repokit.FragmentsContributor[example.com/store/mongo.FactoryBean]:
//	  - example.com/store/mongo.Contributor
package factories

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the conventional factories file name.
const FileName = "repokit.factories.yaml"

// Loader returns the implementation names published for a key, in order.
type Loader interface {
	LoadFactoryNames(key string) []string
}

// Static is an in-memory Loader.
type Static map[string][]string

// LoadFactoryNames implements Loader.
func (s Static) LoadFactoryNames(key string) []string {
	return append([]string(nil), s[key]...)
}

// FileLoader serves entries merged from factories files. Earlier files take
// precedence in ordering; duplicate names are dropped.
type FileLoader struct {
	entries map[string][]string
	files   []string
}

// LoadFiles reads and merges the given factories files.
func LoadFiles(paths ...string) (*FileLoader, error) {
	l := &FileLoader{entries: make(map[string][]string)}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read factories file %s", path)
		}
		if err := l.merge(data); err != nil {
			return nil, errors.Wrapf(err, "parse factories file %s", path)
		}
		l.files = append(l.files, path)
	}
	return l, nil
}

// Parse builds a loader from raw YAML documents.
func Parse(docs ...[]byte) (*FileLoader, error) {
	l := &FileLoader{entries: make(map[string][]string)}
	for _, data := range docs {
		if err := l.merge(data); err != nil {
			return nil, errors.Wrap(err, "parse factories")
		}
	}
	return l, nil
}

func (l *FileLoader) merge(data []byte) error {
	var doc map[string][]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, name := range doc[key] {
			name = strings.TrimSpace(name)
			if name == "" || contains(l.entries[key], name) {
				continue
			}
			l.entries[key] = append(l.entries[key], name)
		}
	}
	return nil
}

// LoadFactoryNames implements Loader.
func (l *FileLoader) LoadFactoryNames(key string) []string {
	return append([]string(nil), l.entries[key]...)
}

// Files returns the files the loader was built from.
func (l *FileLoader) Files() []string {
	return l.files
}

// Discover finds factories files below root, skipping hidden directories,
// vendor and testdata. Paths are returned sorted.
func Discover(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == FileName {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "discover factories files in %s", root)
	}
	sort.Strings(found)
	return found, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
