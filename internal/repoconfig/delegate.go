package repoconfig

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/factories"
	"github.com/iVampireSP/repokit/internal/metrics"
	"github.com/iVampireSP/repokit/internal/scan"
	"github.com/iVampireSP/repokit/internal/typemeta"
	"github.com/iVampireSP/repokit/internal/wiring"
)

// RepositoryScanner finds repository interfaces and implementation classes.
type RepositoryScanner interface {
	scan.Scanner
	FindInterfaces(basePackage string, include, exclude []scan.TypeFilter) ([]scan.Candidate, error)
}

// SingletonRegistry is implemented by registries that hold ready-made objects.
type SingletonRegistry interface {
	RegisterSingleton(name string, obj any) error
	Singleton(name string) (any, bool)
}

// AutowireConfigurable is implemented by registries whose autowire
// candidate resolver can be replaced.
type AutowireConfigurable interface {
	AutowireCandidateResolver() beans.AutowireCandidateResolver
	SetAutowireCandidateResolver(resolver beans.AutowireCandidateResolver)
}

// BeanComponent is a registered repository factory bean.
type BeanComponent struct {
	Name       string
	Definition *beans.Definition
}

// RepositoryNameGenerator names repository beans after their interface:
// an explicit //repokit:bean name, else the decapitalized local name.
type RepositoryNameGenerator struct {
	Reader typemeta.Reader
}

// GenerateBeanName implements beans.NameGenerator.
func (g RepositoryNameGenerator) GenerateBeanName(def *beans.Definition) string {
	arg, _ := def.ConstructorArg(0)
	ref, ok := arg.(beans.TypeRef)
	if !ok {
		return beans.DefaultNameGenerator{}.GenerateBeanName(def)
	}
	probe := beans.NewDefinition(ref.Name)
	if g.Reader != nil {
		if md, err := g.Reader.Metadata(ref.Name); err == nil {
			probe.Metadata = md
		}
	}
	return beans.DefaultNameGenerator{}.GenerateBeanName(probe)
}

// Delegate registers the repositories of one configuration source.
type Delegate struct {
	source    ConfigurationSource
	reader    typemeta.Reader
	scanner   RepositoryScanner
	factories factories.Loader
	names     beans.NameGenerator
	log       *zap.Logger
	metrics   *metrics.Recorder

	registrations   Registrations
	noMultiStoreLog bool
}

// DelegateOption configures a Delegate.
type DelegateOption func(*Delegate)

// WithDelegateFactories sets the factories loader used for multi-module
// detection and published fragments.
func WithDelegateFactories(loader factories.Loader) DelegateOption {
	return func(d *Delegate) { d.factories = loader }
}

// WithNameGenerator replaces RepositoryNameGenerator.
func WithNameGenerator(gen beans.NameGenerator) DelegateOption {
	return func(d *Delegate) { d.names = gen }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) DelegateOption {
	return func(d *Delegate) { d.log = log }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec *metrics.Recorder) DelegateOption {
	return func(d *Delegate) { d.metrics = rec }
}

// NewDelegate creates a delegate for src.
func NewDelegate(src ConfigurationSource, reader typemeta.Reader, scanner RepositoryScanner, opts ...DelegateOption) *Delegate {
	d := &Delegate{
		source:        src,
		reader:        reader,
		scanner:       scanner,
		factories:     factories.Static{},
		names:         RepositoryNameGenerator{Reader: reader},
		log:           zap.NewNop(),
		registrations: make(Registrations),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registrations returns the snapshots captured by the last registration pass.
func (d *Delegate) Registrations() Registrations {
	return d.registrations.clone()
}

// RegisterRepositoriesIn registers a factory bean, with its supporting
// beans, for every repository the extension accepts. Any error aborts the
// whole pass.
func (d *Delegate) RegisterRepositoriesIn(registry beans.Registry, ext Extension) ([]BeanComponent, error) {
	start := time.Now()
	module := ext.ModulePrefix()
	mode := d.source.Mode()

	d.log.Info("bootstrapping repositories",
		zap.String("module", ext.ModuleName()),
		zap.String("mode", string(mode)),
		zap.Strings("base_packages", d.source.BasePackages))

	if err := ext.RegisterBeansForRoot(registry, d.source); err != nil {
		return nil, errors.Wrapf(err, "register %s infrastructure", ext.ModuleName())
	}

	detector, err := NewEagerImplementationDetector(d.scanner, d.reader, d.source.DetectionConfiguration())
	if err != nil {
		return nil, errors.Wrap(err, "scan implementation candidates")
	}
	builder := NewBeanDefinitionBuilder(registry, ext, d.reader, detector,
		WithFactories(d.factories),
		WithBuilderLogger(d.log),
		WithBuilderMetrics(d.metrics))

	configurations, err := d.RepositoryConfigurations(ext, d.multipleStoresDetected())
	if err != nil {
		return nil, err
	}

	components := make([]BeanComponent, 0, len(configurations))
	for _, cfg := range configurations {
		b, err := builder.Build(cfg)
		if err != nil {
			return nil, err
		}
		ext.PostProcess(b, d.source)

		def := b.Definition()
		def.TargetType = cfg.RepositoryInterface()
		def.ResourceDescription = cfg.ResourceDescription()
		beanName := d.names.GenerateBeanName(def)

		d.log.Debug("registering repository",
			zap.String("bean", beanName),
			zap.String("interface", cfg.RepositoryInterface()),
			zap.String("factory", cfg.RepositoryFactoryBeanClassName()))

		if err := registry.RegisterBeanDefinition(beanName, def); err != nil {
			return nil, errors.Wrapf(err, "register repository %s", cfg.RepositoryInterface())
		}

		snapshot, err := builder.BuildSnapshot(cfg, beanName)
		if err != nil {
			return nil, err
		}
		d.registrations[beanName] = snapshot
		d.metrics.RepositoryRegistered(module)
		components = append(components, BeanComponent{Name: beanName, Definition: def})
	}

	if err := d.registerAotRegistrations(registry); err != nil {
		return nil, err
	}
	if mode != BootstrapDefault {
		if err := d.potentiallyLazifyRepositories(registry, configurations, components, mode); err != nil {
			return nil, err
		}
	}

	d.metrics.ObserveScan(module, start)
	d.log.Info("finished repository scanning",
		zap.String("module", ext.ModuleName()),
		zap.Int("repositories", len(components)),
		zap.Duration("took", time.Since(start)))
	return components, nil
}

// RepositoryConfigurations discovers the repository interfaces below the
// source's base packages and returns those the extension accepts. In strict
// mode a repository must be identified as belonging to the extension unless
// the source declares explicit filters.
func (d *Delegate) RepositoryConfigurations(ext Extension, strict bool) ([]RepositoryConfiguration, error) {
	candidates, err := d.candidateInterfaces()
	if err != nil {
		return nil, err
	}

	var configurations []RepositoryConfiguration
	for _, md := range candidates {
		rm, err := ReadRepositoryMetadata(md.Name, d.reader)
		if err != nil {
			return nil, errors.Wrapf(err, "read repository metadata of %s", md.Name)
		}
		// Another store module may still claim a strictly rejected repository.
		if strict && !d.source.UsesExplicitFilters() {
			ok, err := d.isStrictRepositoryCandidate(ext, md, rm)
			if err != nil {
				return nil, err
			}
			if !ok {
				d.metrics.StrictRejection(ext.ModulePrefix())
				continue
			}
		}
		if rm.Reactive && !ext.SupportsReactive() {
			return nil, &UnsupportedRepositoryError{Module: ext.ModuleName(), Repository: md.Name, Reason: "reactive"}
		}
		configurations = append(configurations, NewRepositoryConfiguration(md, d.source, ext.RepositoryFactoryBeanClassName()))
	}
	return configurations, nil
}

// candidateInterfaces returns interfaces below the base packages that embed
// the repository marker, pass the include filters and are not excluded.
func (d *Delegate) candidateInterfaces() ([]*typemeta.TypeMetadata, error) {
	include := d.source.IncludeFilters
	isRepository := scan.FilterFunc(func(md *typemeta.TypeMetadata, reader typemeta.Reader) (bool, error) {
		if md.Name == wiring.RepositoryMarker {
			return false, nil
		}
		ok, err := scan.Embeds(md, wiring.RepositoryMarker, reader)
		if err != nil || !ok {
			return false, err
		}
		if len(include) == 0 {
			return true, nil
		}
		return scan.AnyMatch(include, md, reader)
	})
	exclude := append(append([]scan.TypeFilter(nil), d.source.ExcludeFilters...), scan.NoRepositoryBean)

	seen := make(map[string]bool)
	var found []*typemeta.TypeMetadata
	for _, base := range d.source.BasePackages {
		candidates, err := d.scanner.FindInterfaces(base, []scan.TypeFilter{isRepository}, exclude)
		if err != nil {
			return nil, errors.Wrapf(err, "scan repositories in %s", base)
		}
		for _, c := range candidates {
			if !seen[c.TypeName()] {
				seen[c.TypeName()] = true
				found = append(found, c.Metadata)
			}
		}
	}
	return found, nil
}

// isStrictRepositoryCandidate reports whether the repository embeds one of
// the extension's identifying types or its domain type carries one of the
// extension's identifying directives.
func (d *Delegate) isStrictRepositoryCandidate(ext Extension, md *typemeta.TypeMetadata, rm RepositoryMetadata) (bool, error) {
	types, directives := ext.IdentifyingTypes(), ext.IdentifyingDirectives()
	if len(types) == 0 && len(directives) == 0 {
		if !d.noMultiStoreLog {
			d.log.Warn("module does not support multi-store setups", zap.String("module", ext.ModuleName()))
			d.noMultiStoreLog = true
		}
		return false, nil
	}

	for _, t := range types {
		ok, err := scan.Embeds(md, t, d.reader)
		if err != nil {
			return false, errors.Wrapf(err, "check %s against %s", md.Name, t)
		}
		if ok {
			return true, nil
		}
	}

	if rm.DomainType != "" && len(directives) > 0 {
		domain, err := d.reader.Metadata(rm.DomainType)
		switch {
		case err == nil:
			for _, kind := range directives {
				if domain.HasDirective(kind) {
					return true, nil
				}
			}
		case !errors.Is(err, typemeta.ErrTypeNotFound):
			return false, errors.Wrapf(err, "read domain type of %s", md.Name)
		}
	}

	fields := []zap.Field{
		zap.String("module", ext.ModuleName()),
		zap.String("repository", md.Name),
	}
	if len(types) > 0 {
		fields = append(fields, zap.String("embed_one_of", strings.Join(types, ", ")))
	}
	if len(directives) > 0 {
		fields = append(fields, zap.String("annotate_domain_with", "//"+typemeta.DirectivePrefix+strings.Join(directives, ", //"+typemeta.DirectivePrefix)))
	}
	d.log.Info("could not safely identify store assignment for repository candidate", fields...)
	return false, nil
}

// multipleStoresDetected reports whether more than one module publishes a
// repository factory, which switches repository discovery to strict mode.
func (d *Delegate) multipleStoresDetected() bool {
	distinct := make(map[string]bool)
	for _, name := range d.factories.LoadFactoryNames(wiring.FactoryKeyRepositoryFactory) {
		distinct[name] = true
	}
	if len(distinct) > 1 {
		d.log.Info("multiple repository modules detected, entering strict repository configuration mode",
			zap.Int("modules", len(distinct)))
		return true
	}
	return false
}

func (d *Delegate) registerAotRegistrations(registry beans.Registry) error {
	singletons, ok := registry.(SingletonRegistry)
	if !ok {
		d.log.Debug("registry holds no singletons, skipping repository registrations")
		return nil
	}
	// Delegates of other sources on the same registry extend the snapshot.
	if existing, ok := singletons.Singleton(RegistrationsBeanName); ok {
		if registrations, ok := existing.(Registrations); ok {
			registrations.add(d.registrations)
			return nil
		}
	}
	if err := singletons.RegisterSingleton(RegistrationsBeanName, d.registrations.clone()); err != nil {
		return errors.Wrap(err, "register repository registrations")
	}
	return nil
}

func (d *Delegate) potentiallyLazifyRepositories(registry beans.Registry, configurations []RepositoryConfiguration, components []BeanComponent, mode BootstrapMode) error {
	configurable, ok := registry.(AutowireConfigurable)
	if !ok {
		d.log.Warn("cannot install lazy injection resolver: registry does not expose its autowire candidate resolver",
			zap.String("mode", string(mode)))
		return nil
	}
	configurable.SetAutowireCandidateResolver(
		NewLazyInjectionResolver(configurable.AutowireCandidateResolver(), configurations, d.log))

	if mode != BootstrapDeferred {
		return nil
	}
	singletons, ok := registry.(SingletonRegistry)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.Name)
	}
	// A later configuration pass on the same registry extends the initializer.
	if existing, ok := singletons.Singleton(DeferredInitializerBeanName); ok {
		if initializer, ok := existing.(*DeferredInitializer); ok {
			initializer.add(names...)
			return nil
		}
	}
	return singletons.RegisterSingleton(DeferredInitializerBeanName, NewDeferredInitializer(names, d.log))
}
