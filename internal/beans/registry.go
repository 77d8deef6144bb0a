package beans

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ErrNoSuchBean is returned (wrapped) for unknown bean names.
var ErrNoSuchBean = errors.New("no such bean definition")

// GeneratedNameSeparator separates a base name from its uniqueness counter.
const GeneratedNameSeparator = "#"

// Registry stores bean definitions by name.
type Registry interface {
	ContainsBeanDefinition(name string) bool
	RegisterBeanDefinition(name string, def *Definition) error
	BeanDefinition(name string) (*Definition, error)
	BeanDefinitionNames() []string
}

// DuplicateBeanError reports a second registration under the same name.
type DuplicateBeanError struct {
	Name string
}

func (e *DuplicateBeanError) Error() string {
	return fmt.Sprintf("bean definition %q already registered", e.Name)
}

// DefaultRegistry is an in-memory Registry that also holds singletons and
// the autowire candidate resolver. It is single-writer: bootstrap code
// mutates it before anything reads it concurrently.
type DefaultRegistry struct {
	definitions map[string]*Definition
	order       []string
	singletons  map[string]any
	resolver    AutowireCandidateResolver
}

// NewRegistry creates an empty registry using SimpleAutowireCandidateResolver.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		definitions: make(map[string]*Definition),
		singletons:  make(map[string]any),
		resolver:    SimpleAutowireCandidateResolver{},
	}
}

// ContainsBeanDefinition implements Registry.
func (r *DefaultRegistry) ContainsBeanDefinition(name string) bool {
	_, ok := r.definitions[name]
	return ok
}

// RegisterBeanDefinition implements Registry. Re-registering a name fails
// with *DuplicateBeanError.
func (r *DefaultRegistry) RegisterBeanDefinition(name string, def *Definition) error {
	if name == "" {
		return errors.New("bean name must not be empty")
	}
	if def == nil {
		return errors.Errorf("bean definition for %q must not be nil", name)
	}
	if _, ok := r.definitions[name]; ok {
		return &DuplicateBeanError{Name: name}
	}
	r.definitions[name] = def
	r.order = append(r.order, name)
	return nil
}

// BeanDefinition implements Registry.
func (r *DefaultRegistry) BeanDefinition(name string) (*Definition, error) {
	def, ok := r.definitions[name]
	if !ok {
		return nil, errors.Wrap(ErrNoSuchBean, name)
	}
	return def, nil
}

// BeanDefinitionNames implements Registry, in registration order.
func (r *DefaultRegistry) BeanDefinitionNames() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// RegisterSingleton stores a ready-made object under name.
func (r *DefaultRegistry) RegisterSingleton(name string, obj any) error {
	if _, ok := r.singletons[name]; ok {
		return &DuplicateBeanError{Name: name}
	}
	r.singletons[name] = obj
	return nil
}

// Singleton returns a registered singleton.
func (r *DefaultRegistry) Singleton(name string) (any, bool) {
	obj, ok := r.singletons[name]
	return obj, ok
}

// SingletonNames returns all singleton names, sorted.
func (r *DefaultRegistry) SingletonNames() []string {
	names := make([]string, 0, len(r.singletons))
	for name := range r.singletons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AutowireCandidateResolver returns the installed resolver.
func (r *DefaultRegistry) AutowireCandidateResolver() AutowireCandidateResolver {
	return r.resolver
}

// SetAutowireCandidateResolver replaces the resolver.
func (r *DefaultRegistry) SetAutowireCandidateResolver(resolver AutowireCandidateResolver) {
	r.resolver = resolver
}

// UniqueBeanName returns base#N for the smallest N not yet registered.
func UniqueBeanName(base string, registry Registry) string {
	for counter := 0; ; counter++ {
		id := fmt.Sprintf("%s%s%d", base, GeneratedNameSeparator, counter)
		if !registry.ContainsBeanDefinition(id) {
			return id
		}
	}
}
