package repoconfig

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iVampireSP/repokit/internal/beans"
)

// DeferredInitializerBeanName is the singleton registered in deferred
// bootstrap mode.
const DeferredInitializerBeanName = "repokit.DeferredRepositoryInitializer"

// LazyInjectionResolver treats injection points typed to a lazily
// initialized repository interface as lazy and delegates every other
// decision.
type LazyInjectionResolver struct {
	delegate       beans.AutowireCandidateResolver
	configurations map[string]RepositoryConfiguration // repository interface → configuration
	log            *zap.Logger
}

// NewLazyInjectionResolver wraps delegate. Wrapping another
// LazyInjectionResolver merges the configurations instead of nesting.
func NewLazyInjectionResolver(delegate beans.AutowireCandidateResolver, configurations []RepositoryConfiguration, log *zap.Logger) *LazyInjectionResolver {
	if log == nil {
		log = zap.NewNop()
	}
	if delegate == nil {
		delegate = beans.SimpleAutowireCandidateResolver{}
	}

	byInterface := make(map[string]RepositoryConfiguration)
	if existing, ok := delegate.(*LazyInjectionResolver); ok {
		for iface, cfg := range existing.configurations {
			byInterface[iface] = cfg
		}
		delegate = existing.delegate
	}
	for _, cfg := range configurations {
		byInterface[cfg.RepositoryInterface()] = cfg
	}
	return &LazyInjectionResolver{delegate: delegate, configurations: byInterface, log: log}
}

// IsLazy implements beans.AutowireCandidateResolver.
func (r *LazyInjectionResolver) IsLazy(desc beans.DependencyDescriptor) bool {
	cfg, ok := r.configurations[desc.DependencyType]
	if !ok {
		return r.delegate.IsLazy(desc)
	}
	lazy := cfg.LazyInit()
	if lazy {
		r.log.Debug("creating lazy injection proxy",
			zap.String("repository", desc.DependencyType),
			zap.String("injection_point", desc.Name))
	}
	return lazy
}

// Delegate returns the wrapped resolver.
func (r *LazyInjectionResolver) Delegate() beans.AutowireCandidateResolver { return r.delegate }

// DeferredInitializer initializes repository beans once the container
// finished refreshing, in registration order.
type DeferredInitializer struct {
	beanNames []string
	log       *zap.Logger
}

// NewDeferredInitializer creates an initializer for the given beans.
func NewDeferredInitializer(beanNames []string, log *zap.Logger) *DeferredInitializer {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeferredInitializer{beanNames: append([]string(nil), beanNames...), log: log}
}

// RepositoryBeanNames returns the beans initialized on refresh.
func (d *DeferredInitializer) RepositoryBeanNames() []string {
	return append([]string(nil), d.beanNames...)
}

func (d *DeferredInitializer) add(beanNames ...string) {
	d.beanNames = append(d.beanNames, beanNames...)
}

// OnRefresh calls initialize for every repository bean and stops at the
// first failure.
func (d *DeferredInitializer) OnRefresh(initialize func(beanName string) error) error {
	d.log.Info("triggering deferred initialization of repositories", zap.Int("count", len(d.beanNames)))
	for _, name := range d.beanNames {
		if err := initialize(name); err != nil {
			return errors.Wrapf(err, "initialize repository %s", name)
		}
	}
	d.log.Info("repositories initialized")
	return nil
}
