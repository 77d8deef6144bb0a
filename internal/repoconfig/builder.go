package repoconfig

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/factories"
	"github.com/iVampireSP/repokit/internal/metrics"
	"github.com/iVampireSP/repokit/internal/namedqueries"
	"github.com/iVampireSP/repokit/internal/typemeta"
	"github.com/iVampireSP/repokit/internal/wiring"
)

// BeanDefinitionBuilder builds the factory-bean definition of a repository
// and registers the beans it refers to: named queries, the custom
// implementation, fragment implementations, fragment wrappers and the
// fragments collection.
type BeanDefinitionBuilder struct {
	registry  beans.Registry
	extension Extension
	detector  *ImplementationDetector
	fragments FragmentMetadata
	factories factories.Loader
	log       *zap.Logger
	metrics   *metrics.Recorder
}

// BuilderOption configures a BeanDefinitionBuilder.
type BuilderOption func(*BeanDefinitionBuilder)

// WithFactories sets the loader consulted for published fragment implementations.
func WithFactories(loader factories.Loader) BuilderOption {
	return func(b *BeanDefinitionBuilder) { b.factories = loader }
}

// WithBuilderLogger sets the logger.
func WithBuilderLogger(log *zap.Logger) BuilderOption {
	return func(b *BeanDefinitionBuilder) { b.log = log }
}

// WithBuilderMetrics sets the metrics recorder.
func WithBuilderMetrics(rec *metrics.Recorder) BuilderOption {
	return func(b *BeanDefinitionBuilder) { b.metrics = rec }
}

// NewBeanDefinitionBuilder creates a builder registering into registry.
func NewBeanDefinitionBuilder(registry beans.Registry, ext Extension, reader typemeta.Reader, detector *ImplementationDetector, opts ...BuilderOption) *BeanDefinitionBuilder {
	b := &BeanDefinitionBuilder{
		registry:  registry,
		extension: ext,
		detector:  detector,
		fragments: NewFragmentMetadata(reader),
		factories: factories.Static{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the factory-bean definition builder for cfg. Supporting
// beans are registered on the way; beans already registered under the same
// name are reused. The factory bean itself is left for the caller to name
// and register.
func (b *BeanDefinitionBuilder) Build(cfg RepositoryConfiguration) (*beans.Builder, error) {
	builder := beans.NewBuilder(cfg.RepositoryFactoryBeanClassName()).
		AddConstructorArg(beans.TypeRef{Name: cfg.RepositoryInterface()}).
		AddProperty(wiring.PropertyQueryLookupStrategyKey, cfg.QueryLookupStrategyKey()).
		AddProperty(wiring.PropertyLazyInit, cfg.LazyInit()).
		AddProperty(wiring.PropertyPrimary, cfg.Primary()).
		SetLazyInit(cfg.LazyInit()).
		SetPrimary(cfg.Primary()).
		SetSource(cfg.Source())

	if base := cfg.RepositoryBaseClassName(); base != "" {
		builder.AddProperty(wiring.PropertyRepositoryBaseClass, base)
	}

	namedQueries := namedqueries.NewDefinitionBuilder(b.extension.DefaultNamedQueryLocation())
	if loc := cfg.NamedQueriesLocation(); loc != "" {
		namedQueries.SetLocations(loc)
	}
	namedQueriesName := beans.UniqueBeanName(b.extension.ModulePrefix()+".named-queries", b.registry)
	if err := b.registry.RegisterBeanDefinition(namedQueriesName, namedQueries.Build(cfg.Source())); err != nil {
		return nil, errors.Wrapf(err, "register named queries for %s", cfg.RepositoryInterface())
	}
	builder.AddPropertyReference(wiring.PropertyNamedQueries, namedQueriesName)

	customName, err := b.registerCustomImplementation(cfg)
	if err != nil {
		return nil, err
	}
	if customName != "" {
		builder.AddPropertyReference(wiring.PropertyCustomImplementation, customName)
		builder.AddDependsOn(customName)
	}

	fragmentsName, err := b.registerRepositoryFragments(cfg)
	if err != nil {
		return nil, err
	}
	builder.AddPropertyReference(wiring.PropertyRepositoryFragments, fragmentsName)

	return builder, nil
}

// BuildSnapshot captures what Build wired for cfg, named beanName. It reads
// the registry and re-resolves fragments but registers nothing.
func (b *BeanDefinitionBuilder) BuildSnapshot(cfg RepositoryConfiguration, beanName string) (Snapshot, error) {
	fragments, err := b.resolveFragments(cfg)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		BeanName:                beanName,
		ModuleName:              b.extension.ModuleName(),
		RepositoryInterface:     cfg.RepositoryInterface(),
		FactoryBeanClassName:    cfg.RepositoryFactoryBeanClassName(),
		RepositoryBaseClassName: cfg.RepositoryBaseClassName(),
		Fragments:               fragments,
		LazyInit:                cfg.LazyInit(),
		Primary:                 cfg.Primary(),
		Source:                  cfg.Source(),
	}

	lookup := cfg.ConfigurationSource().DetectionConfiguration().ForRepository(cfg)
	if def, err := b.registry.BeanDefinition(lookup.ImplementationBeanName()); err == nil {
		snapshot.CustomImplementation = def.BeanClassName
	}
	return snapshot, nil
}

// registerCustomImplementation returns the bean name of the repository's
// custom implementation, registering the detected implementation when the
// name is free. It returns "" when there is none.
func (b *BeanDefinitionBuilder) registerCustomImplementation(cfg RepositoryConfiguration) (string, error) {
	lookup := cfg.ConfigurationSource().DetectionConfiguration().ForRepository(cfg)
	beanName := lookup.ImplementationBeanName()

	if b.registry.ContainsBeanDefinition(beanName) {
		b.log.Debug("custom repository implementation already registered",
			zap.String("repository", cfg.RepositoryInterface()),
			zap.String("bean", beanName))
		return beanName, nil
	}

	def, err := b.detector.DetectCustomImplementation(lookup)
	if err != nil {
		return "", errors.Wrapf(err, "detect custom implementation of %s", cfg.RepositoryInterface())
	}
	if def == nil {
		return "", nil
	}

	def.Source = cfg.Source()
	if err := b.registry.RegisterBeanDefinition(beanName, def); err != nil {
		return "", errors.Wrapf(err, "register custom implementation of %s", cfg.RepositoryInterface())
	}
	b.log.Debug("registered custom repository implementation",
		zap.String("repository", cfg.RepositoryInterface()),
		zap.String("bean", beanName),
		zap.String("class", def.BeanClassName))
	return beanName, nil
}

// registerRepositoryFragments registers the implementation and wrapper bean
// of every fragment plus the fragments collection, and returns the name of
// the collection.
func (b *BeanDefinitionBuilder) registerRepositoryFragments(cfg RepositoryConfiguration) (string, error) {
	fragments, err := b.resolveFragments(cfg)
	if err != nil {
		return "", err
	}

	fragmentBeanNames := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if err := b.registerFragmentImplementation(cfg, fragment); err != nil {
			return "", err
		}
		if err := b.registerFragment(cfg, fragment); err != nil {
			return "", err
		}
		fragmentBeanNames = append(fragmentBeanNames, fragment.FragmentBeanName())
	}

	base := strings.ToLower(b.extension.ModuleName()) + "." + typemeta.LocalName(cfg.RepositoryInterface()) + ".fragments"
	name := beans.UniqueBeanName(base, b.registry)
	def := beans.NewBuilder(wiring.FragmentsBeanClass).
		AddConstructorArg(fragmentBeanNames).
		SetRole(beans.RoleInfrastructure).
		SetSource(cfg.Source()).
		Definition()
	if err := b.registry.RegisterBeanDefinition(name, def); err != nil {
		return "", errors.Wrapf(err, "register fragments of %s", cfg.RepositoryInterface())
	}
	return name, nil
}

func (b *BeanDefinitionBuilder) registerFragmentImplementation(cfg RepositoryConfiguration, fragment FragmentConfiguration) error {
	beanName := fragment.ImplementationBeanName()
	if b.registry.ContainsBeanDefinition(beanName) {
		b.log.Debug("repository fragment implementation already registered",
			zap.String("fragment", fragment.InterfaceName),
			zap.String("bean", beanName))
		return nil
	}

	def := fragment.implementationDefinition(cfg.Source())
	def.Source = cfg.Source()
	if err := b.registry.RegisterBeanDefinition(beanName, def); err != nil {
		return errors.Wrapf(err, "register fragment implementation %s", fragment.ClassName)
	}
	return nil
}

func (b *BeanDefinitionBuilder) registerFragment(cfg RepositoryConfiguration, fragment FragmentConfiguration) error {
	beanName := fragment.FragmentBeanName()
	if b.registry.ContainsBeanDefinition(beanName) {
		b.log.Debug("repository fragment already registered",
			zap.String("fragment", fragment.InterfaceName),
			zap.String("bean", beanName))
		return nil
	}

	var iface any
	if fragment.InterfaceName != "" {
		iface = fragment.InterfaceName
	}
	def := beans.NewBuilder(wiring.FragmentBeanClass).
		AddConstructorArg(iface).
		AddConstructorArgReference(fragment.ImplementationBeanName()).
		SetRole(beans.RoleInfrastructure).
		SetSource(cfg.Source()).
		Definition()
	if err := b.registry.RegisterBeanDefinition(beanName, def); err != nil {
		return errors.Wrapf(err, "register fragment %s", fragment.InterfaceName)
	}
	b.metrics.FragmentRegistered(b.extension.ModulePrefix())
	return nil
}

// resolveFragments finds the implementation of every fragment interface in
// declaration order. Fragments without a scanned implementation fall back to
// the first published implementation; fragments with neither are skipped.
func (b *BeanDefinitionBuilder) resolveFragments(cfg RepositoryConfiguration) ([]FragmentConfiguration, error) {
	interfaces, err := b.fragments.FragmentInterfaces(cfg.RepositoryInterface())
	if err != nil {
		return nil, errors.Wrapf(err, "read fragments of %s", cfg.RepositoryInterface())
	}

	detection := cfg.ConfigurationSource().DetectionConfiguration()
	resolved := make([]FragmentConfiguration, 0, len(interfaces))
	for _, iface := range interfaces {
		def, err := b.detector.DetectCustomImplementation(detection.ForFragment(iface))
		if err != nil {
			return nil, errors.Wrapf(err, "detect implementation of fragment %s", iface)
		}
		if def != nil {
			resolved = append(resolved, NewFragmentConfiguration(iface, def, detection.GenerateBeanName(def)))
			continue
		}

		published := b.factories.LoadFactoryNames(iface)
		if len(published) == 0 {
			continue
		}
		if len(published) > 1 {
			b.log.Debug("multiple published fragment implementations, using the first",
				zap.String("fragment", iface),
				zap.Strings("implementations", published))
		}
		resolved = append(resolved, NewPublishedFragmentConfiguration(iface, published[0]))
	}
	return resolved, nil
}
