// Package namedqueries builds the named-queries bean definition a repository
// factory bean refers to, and loads the YAML files it points at.
//
// A named-queries file maps query names to query strings:
//
//	User.findByEmail: "select u from User u where u.email = ?1"
package namedqueries

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/wiring"
)

// DefinitionBuilder builds named-queries bean definitions.
type DefinitionBuilder struct {
	defaultLocation string
	locations       []string
}

// NewDefinitionBuilder creates a builder that falls back to defaultLocation
// when no explicit location is set.
func NewDefinitionBuilder(defaultLocation string) *DefinitionBuilder {
	return &DefinitionBuilder{defaultLocation: defaultLocation}
}

// SetLocations overrides the default location. Locations may be glob patterns.
func (b *DefinitionBuilder) SetLocations(locations ...string) *DefinitionBuilder {
	b.locations = locations
	return b
}

// Build returns the definition. The location list is stored as a property so
// the named queries are only read when the bean is actually initialized.
func (b *DefinitionBuilder) Build(source any) *beans.Definition {
	locations := b.locations
	if len(locations) == 0 && b.defaultLocation != "" {
		locations = []string{b.defaultLocation}
	}
	return beans.NewBuilder(wiring.NamedQueriesBeanClass).
		AddProperty(wiring.PropertyLocations, append([]string(nil), locations...)).
		SetRole(beans.RoleInfrastructure).
		SetSource(source).
		Definition()
}

// Locations reads the location list back from a named-queries definition.
func Locations(def *beans.Definition) []string {
	v, ok := def.Property(wiring.PropertyLocations)
	if !ok {
		return nil
	}
	locations, _ := v.([]string)
	return locations
}

// Load reads every file matched by the location patterns, relative to root,
// and merges them; later files override earlier entries. Patterns matching
// nothing are skipped.
func Load(root string, locations ...string) (map[string]string, error) {
	queries := make(map[string]string)
	for _, loc := range locations {
		pattern := loc
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "named queries location %s", loc)
		}
		sort.Strings(matches)
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.Wrapf(err, "read named queries %s", path)
			}
			var doc map[string]string
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return nil, errors.Wrapf(err, "parse named queries %s", path)
			}
			for name, query := range doc {
				queries[name] = query
			}
		}
	}
	return queries, nil
}
