package aot

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/repoconfig"
	"github.com/iVampireSP/repokit/internal/typemeta"
	"github.com/iVampireSP/repokit/internal/wiring"
)

// Reader reconstructs RepositoryInformation from the bean definitions a
// repoconfig.BeanDefinitionBuilder registered. It only reads the registry.
type Reader struct {
	registry         beans.Registry
	reader           typemeta.Reader
	resolver         typemeta.Resolver
	factoryTypes     wiring.FactoryBeanTypes
	contributors     Contributors
	defaultBaseClass string
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithFactoryBeanTypes declares the factory-bean types whose fragments
// contributors should be consulted.
func WithFactoryBeanTypes(types wiring.FactoryBeanTypes) ReaderOption {
	return func(r *Reader) { r.factoryTypes = types }
}

// WithContributors supplies the contributor factories by type name.
func WithContributors(contributors Contributors) ReaderOption {
	return func(r *Reader) { r.contributors = contributors }
}

// WithDefaultBaseClass sets the base class used when a definition carries
// none, normally the owning extension's default.
func WithDefaultBaseClass(name string) ReaderOption {
	return func(r *Reader) { r.defaultBaseClass = name }
}

// WithExtension takes the default base class from a store extension.
func WithExtension(ext repoconfig.Extension) ReaderOption {
	return func(r *Reader) { r.defaultBaseClass = ext.RepositoryBaseClassName() }
}

// NewReader creates a reader over registry, resolving type names through reader.
func NewReader(registry beans.Registry, reader typemeta.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{
		registry: registry,
		reader:   reader,
		resolver: typemeta.NewResolver(reader),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadRegistrations reads every repository of a registration pass, in bean
// name order.
func (r *Reader) ReadRegistrations(registrations repoconfig.Registrations) ([]RepositoryInformation, error) {
	infos := make([]RepositoryInformation, 0, len(registrations))
	for _, name := range registrations.BeanNames() {
		info, err := r.Read(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Read reconstructs the repository registered as beanName.
func (r *Reader) Read(beanName string) (RepositoryInformation, error) {
	def, err := r.registry.BeanDefinition(beanName)
	if err != nil {
		return RepositoryInformation{}, errors.Wrapf(err, "read repository %s", beanName)
	}

	info := RepositoryInformation{BeanName: beanName}

	arg, _ := def.ConstructorArg(0)
	info.RepositoryInterface, err = r.resolver.Resolve(typeName(arg))
	if err != nil {
		return RepositoryInformation{}, errors.Wrapf(err, "repository %s", beanName)
	}

	info.BaseClass, err = r.resolver.Resolve(r.baseClassName(def))
	if err != nil {
		return RepositoryInformation{}, errors.Wrapf(err, "repository %s base class", beanName)
	}

	custom, err := r.customImplementation(def)
	if err != nil {
		return RepositoryInformation{}, errors.Wrapf(err, "repository %s custom implementation", beanName)
	}
	if custom != nil {
		info.Fragments = append(info.Fragments, *custom)
	}

	fragments, err := r.fragments(def)
	if err != nil {
		return RepositoryInformation{}, errors.Wrapf(err, "repository %s fragments", beanName)
	}
	info.Fragments = append(info.Fragments, fragments...)

	rm, err := repoconfig.ReadRepositoryMetadata(info.RepositoryInterface.Name, r.reader)
	if err != nil {
		return RepositoryInformation{}, errors.Wrapf(err, "repository %s metadata", beanName)
	}
	info.DomainType = rm.DomainType
	info.IDType = rm.IDType

	contributed, err := r.contributed(def, info)
	if err != nil {
		return RepositoryInformation{}, errors.Wrapf(err, "repository %s contributed fragments", beanName)
	}
	info.Fragments = append(info.Fragments, contributed...)

	return info, nil
}

func (r *Reader) baseClassName(def *beans.Definition) string {
	if v, ok := def.Property(wiring.PropertyRepositoryBaseClass); ok {
		if name := typeName(v); name != "" {
			return name
		}
	}
	if r.defaultBaseClass != "" {
		return r.defaultBaseClass
	}
	return wiring.DefaultBaseClass
}

func (r *Reader) customImplementation(def *beans.Definition) (*Implemented, error) {
	v, ok := def.Property(wiring.PropertyCustomImplementation)
	if !ok || v == nil {
		return nil, nil
	}
	impl, err := r.referencedType(v)
	if err != nil {
		return nil, err
	}
	return &Implemented{Implementation: impl}, nil
}

func (r *Reader) fragments(def *beans.Definition) ([]Fragment, error) {
	v, ok := def.Property(wiring.PropertyRepositoryFragments)
	if !ok || v == nil {
		return nil, nil
	}
	ref, ok := v.(beans.Reference)
	if !ok {
		return nil, errors.Errorf("%s is %T, not a bean reference", wiring.PropertyRepositoryFragments, v)
	}
	collection, err := r.registry.BeanDefinition(ref.BeanName)
	if err != nil {
		return nil, err
	}

	arg, _ := collection.ConstructorArg(0)
	var names []string
	switch a := arg.(type) {
	case nil:
	case []string:
		names = a
	default:
		return nil, errors.Errorf("fragments collection %s holds %T, not bean names", ref.BeanName, arg)
	}

	fragments := make([]Fragment, 0, len(names))
	for _, name := range names {
		f, err := r.fragment(name)
		if err != nil {
			return nil, errors.Wrapf(err, "fragment %s", name)
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}

func (r *Reader) fragment(beanName string) (Fragment, error) {
	def, err := r.registry.BeanDefinition(beanName)
	if err != nil {
		return nil, err
	}

	var iface *typemeta.TypeMetadata
	if arg, _ := def.ConstructorArg(0); arg != nil {
		if iface, err = r.resolver.Resolve(typeName(arg)); err != nil {
			return nil, err
		}
	}

	implArg, _ := def.ConstructorArg(1)
	if implArg == nil {
		if iface == nil {
			return nil, errors.New("fragment declares neither interface nor implementation")
		}
		return Structural{Interface: iface}, nil
	}
	impl, err := r.referencedType(implArg)
	if err != nil {
		return nil, err
	}
	return Implemented{Interface: iface, Implementation: impl}, nil
}

// referencedType resolves the class of the bean a reference points at.
func (r *Reader) referencedType(v any) (*typemeta.TypeMetadata, error) {
	ref, ok := v.(beans.Reference)
	if !ok {
		return nil, errors.Errorf("%T is not a bean reference", v)
	}
	def, err := r.registry.BeanDefinition(ref.BeanName)
	if err != nil {
		return nil, err
	}
	return r.resolver.Resolve(def.BeanClassName)
}

func (r *Reader) contributed(def *beans.Definition, info RepositoryInformation) ([]Fragment, error) {
	contributorType, ok := r.factoryTypes.ContributorFor(def.BeanClassName)
	if !ok {
		return nil, nil
	}
	factory, ok := r.contributors[contributorType]
	if !ok || factory == nil {
		return nil, &typemeta.TypeNotPresentError{Name: contributorType}
	}
	fragments, err := factory(info.RepositoryInterface).Describe(info)
	if err != nil {
		return nil, errors.Wrap(err, contributorType)
	}
	return fragments, nil
}

// typeName extracts a type name from a recorded class reference.
func typeName(v any) string {
	switch t := v.(type) {
	case beans.TypeRef:
		return t.Name
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
