package main

import (
	"go.uber.org/zap"

	"github.com/iVampireSP/repokit/internal/aot"
	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/metrics"
	"github.com/iVampireSP/repokit/internal/namedqueries"
	"github.com/iVampireSP/repokit/internal/repoconfig"
	"github.com/iVampireSP/repokit/internal/scan"
	"github.com/iVampireSP/repokit/internal/typemeta"
)

// Bootstrap is the outcome of one configuration pass over a module.
type Bootstrap struct {
	Registry      *beans.DefaultRegistry
	Components    []repoconfig.BeanComponent
	Registrations repoconfig.Registrations
}

// Run registers the repositories of every configured source into a fresh
// registry. Sources share the registry, so implementation beans found by
// an earlier source are reused by later ones.
func Run(cfg *Config, reader typemeta.ReadLister, log *zap.Logger, rec *metrics.Recorder) (*Bootstrap, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bootstrap{
		Registry:      beans.NewRegistry(),
		Registrations: make(repoconfig.Registrations),
	}
	rules := scan.LoadIgnoreRules(cfg.Root)

	for _, src := range cfg.Sources {
		scanner := scan.NewPackageScanner(reader,
			scan.WithModule(cfg.Module),
			scan.WithExcludedPackages(src.SkipPackages...),
			scan.WithIgnoreRules(rules),
			scan.WithLogger(log),
		)
		opts := []repoconfig.DelegateOption{repoconfig.WithLogger(log), repoconfig.WithMetrics(rec)}
		if cfg.Factories != nil {
			opts = append(opts, repoconfig.WithDelegateFactories(cfg.Factories))
		}
		delegate := repoconfig.NewDelegate(src, reader, scanner, opts...)
		components, err := delegate.RegisterRepositoriesIn(b.Registry, cfg.Extension)
		if err != nil {
			return nil, err
		}
		b.Components = append(b.Components, components...)
		for name, snapshot := range delegate.Registrations() {
			b.Registrations[name] = snapshot
		}
	}
	return b, nil
}

// Read reconstructs every registered repository. Fragments contributors
// declared in factories files for the registered factory-bean classes are
// consulted.
func (b *Bootstrap) Read(cfg *Config, reader typemeta.Reader) ([]aot.RepositoryInformation, error) {
	opts := []aot.ReaderOption{aot.WithExtension(cfg.Extension)}
	if cfg.Factories != nil {
		types, contributors := aot.DeclaredContributors(cfg.Factories, reader, b.factoryBeanClasses()...)
		opts = append(opts, aot.WithFactoryBeanTypes(types), aot.WithContributors(contributors))
	}
	return aot.NewReader(b.Registry, reader, opts...).ReadRegistrations(b.Registrations)
}

func (b *Bootstrap) factoryBeanClasses() []string {
	var classes []string
	seen := make(map[string]bool)
	for _, name := range b.Registrations.BeanNames() {
		class := b.Registrations[name].FactoryBeanClassName
		if class == "" || seen[class] {
			continue
		}
		seen[class] = true
		classes = append(classes, class)
	}
	return classes
}

// NamedQueries loads the named queries of every source, keyed by source origin.
func NamedQueries(cfg *Config) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, len(cfg.Sources))
	for _, src := range cfg.Sources {
		location := src.NamedQueriesLocation
		if location == "" {
			location = cfg.Extension.DefaultNamedQueryLocation()
		}
		queries, err := namedqueries.Load(cfg.Root, location)
		if err != nil {
			return nil, err
		}
		out[src.Origin] = queries
	}
	return out, nil
}
