package scan

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iVampireSP/repokit/internal/typemeta"
)

// Candidate is a type found by a scan.
type Candidate struct {
	Metadata *typemeta.TypeMetadata
}

// TypeName returns the candidate's qualified type name.
func (c Candidate) TypeName() string {
	return c.Metadata.Name
}

// Scanner finds candidate types below a base package.
type Scanner interface {
	FindCandidates(basePackage string, include, exclude []TypeFilter) ([]Candidate, error)
}

// PackageScanner scans packages through a typemeta.ReadLister.
type PackageScanner struct {
	reader  typemeta.ReadLister
	module  string
	exclude []string
	ignore  IgnoreRules
	log     *zap.Logger
}

// Option configures a PackageScanner.
type Option func(*PackageScanner)

// WithModule sets the module path used to relativize package paths for
// ignore rules and exclusions.
func WithModule(module string) Option {
	return func(s *PackageScanner) { s.module = module }
}

// WithExcludedPackages skips packages at or below the given paths
// ("internal/legacy", "./internal/gen/...").
func WithExcludedPackages(paths ...string) Option {
	return func(s *PackageScanner) { s.exclude = append(s.exclude, paths...) }
}

// WithIgnoreRules skips packages in ignored directories.
func WithIgnoreRules(rules IgnoreRules) Option {
	return func(s *PackageScanner) { s.ignore = rules }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *PackageScanner) { s.log = log }
}

// NewPackageScanner creates a scanner.
func NewPackageScanner(reader typemeta.ReadLister, opts ...Option) *PackageScanner {
	s := &PackageScanner{reader: reader, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindCandidates returns concrete types below basePackage that match at
// least one include filter (all types when include is empty) and no exclude
// filter, ordered by name.
func (s *PackageScanner) FindCandidates(basePackage string, include, exclude []TypeFilter) ([]Candidate, error) {
	mds, err := s.reader.TypesIn(basePackage)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", basePackage)
	}

	var found []Candidate
	for _, md := range mds {
		if md.IsInterface || s.shouldExclude(md.PackagePath()) {
			continue
		}
		if excluded, err := AnyMatch(exclude, md, s.reader); err != nil {
			return nil, err
		} else if excluded {
			continue
		}
		if len(include) > 0 {
			included, err := AnyMatch(include, md, s.reader)
			if err != nil {
				return nil, err
			}
			if !included {
				continue
			}
		}
		found = append(found, Candidate{Metadata: md})
	}

	s.log.Debug("scanned base package",
		zap.String("base_package", basePackage),
		zap.Int("types", len(mds)),
		zap.Int("candidates", len(found)))
	return found, nil
}

// FindInterfaces is like FindCandidates but returns interface types only.
// Used to discover repository interfaces.
func (s *PackageScanner) FindInterfaces(basePackage string, include, exclude []TypeFilter) ([]Candidate, error) {
	mds, err := s.reader.TypesIn(basePackage)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", basePackage)
	}

	var found []Candidate
	for _, md := range mds {
		if !md.IsInterface || s.shouldExclude(md.PackagePath()) {
			continue
		}
		if excluded, err := AnyMatch(exclude, md, s.reader); err != nil {
			return nil, err
		} else if excluded {
			continue
		}
		included, err := AnyMatch(include, md, s.reader)
		if err != nil {
			return nil, err
		}
		if included {
			found = append(found, Candidate{Metadata: md})
		}
	}
	return found, nil
}

// shouldExclude checks explicit exclusions and ignore rules.
func (s *PackageScanner) shouldExclude(pkgPath string) bool {
	rel := pkgPath
	if s.module != "" {
		if pkgPath != s.module && !strings.HasPrefix(pkgPath, s.module+"/") {
			return false
		}
		rel = strings.TrimPrefix(strings.TrimPrefix(pkgPath, s.module), "/")
	}

	for _, exc := range s.exclude {
		excPath := strings.TrimPrefix(exc, "./")
		excPath = strings.TrimSuffix(excPath, "/...")
		if excPath != "" && typemeta.InPackage(rel, excPath) {
			return true
		}
	}
	return s.ignore.Ignores(rel)
}
