package aot_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iVampireSP/repokit/internal/aot"
	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/repoconfig"
	"github.com/iVampireSP/repokit/internal/scan"
	"github.com/iVampireSP/repokit/internal/typemeta"
	"github.com/iVampireSP/repokit/internal/wiring"
)

const (
	pkg            = "example.com/app/user"
	userRepository = pkg + ".UserRepository"
	userImpl       = pkg + ".UserRepositoryImpl"
	fragmentA      = pkg + ".Searchable"
	fragmentAImpl  = pkg + ".SearchableImpl"
	fragmentB      = pkg + ".Auditable"
	fragmentBImpl  = pkg + ".AuditableImpl"
	userDomain     = pkg + ".User"
)

func iface(name string, supers ...string) *typemeta.TypeMetadata {
	return &typemeta.TypeMetadata{Name: name, IsInterface: true, SuperInterfaces: supers}
}

func class(name string) *typemeta.TypeMetadata {
	return &typemeta.TypeMetadata{Name: name}
}

// fixture is a repository with a custom implementation and two fragments,
// Searchable declared before Auditable.
func fixture() *typemeta.StaticReader {
	return typemeta.NewStaticReader(
		&typemeta.TypeMetadata{
			Name:        wiring.RepositoryMarker,
			IsInterface: true,
			TypeParams:  []string{"T", "ID"},
			Directives:  []typemeta.Directive{{Kind: typemeta.DirectiveNoRepositoryBean}},
		},
		class(wiring.DefaultBaseClass),
		class(userDomain),
		iface(fragmentA),
		iface(fragmentB),
		iface(userRepository, wiring.RepositoryMarker+"["+userDomain+", int64]", fragmentA, fragmentB),
		class(userImpl),
		class(fragmentAImpl),
		class(fragmentBImpl),
	)
}

var source = repoconfig.ConfigurationSource{Origin: "generate.go:3", BasePackages: []string{"example.com/app"}}

// register runs a full configuration pass and returns the registry and the
// captured registrations.
func register(t *testing.T, reader *typemeta.StaticReader, src repoconfig.ConfigurationSource) (*beans.DefaultRegistry, repoconfig.Registrations) {
	t.Helper()
	registry := beans.NewRegistry()
	d := repoconfig.NewDelegate(src, reader, scan.NewPackageScanner(reader))
	_, err := d.RegisterRepositoriesIn(registry, repoconfig.NewGenericExtension())
	require.NoError(t, err)
	return registry, d.Registrations()
}

func TestReadOrdersCustomImplementationFirst(t *testing.T) {
	reader := fixture()
	registry, _ := register(t, reader, source)

	info, err := aot.NewReader(registry, reader).Read("userRepository")
	require.NoError(t, err)

	require.Len(t, info.Fragments, 3)
	assert.Equal(t, aot.Implemented{Implementation: class(userImpl)}, info.Fragments[0])
	assert.Equal(t, aot.Implemented{Interface: iface(fragmentA), Implementation: class(fragmentAImpl)}, info.Fragments[1])
	assert.Equal(t, aot.Implemented{Interface: iface(fragmentB), Implementation: class(fragmentBImpl)}, info.Fragments[2])
}

func TestReadRoundTripsRegistration(t *testing.T) {
	reader := fixture()
	registry, registrations := register(t, reader, source)
	snapshot := registrations["userRepository"]

	info, err := aot.NewReader(registry, reader).Read("userRepository")
	require.NoError(t, err)

	assert.Equal(t, snapshot.RepositoryInterface, info.RepositoryInterface.Name)
	assert.Equal(t, wiring.DefaultBaseClass, info.BaseClass.Name)
	assert.Equal(t, snapshot.FragmentInterfaces(), info.FragmentInterfaces())
	assert.Equal(t, userDomain, info.DomainType)
	assert.Equal(t, "int64", info.IDType)
	assert.Equal(t, []string{userImpl, fragmentAImpl, fragmentBImpl}, info.Composition().Implementations())
}

func TestReadIsDeterministic(t *testing.T) {
	reader := fixture()
	registry, _ := register(t, reader, source)
	r := aot.NewReader(registry, reader)

	first, err := r.Read("userRepository")
	require.NoError(t, err)
	second, err := r.Read("userRepository")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReadBaseClassPrecedence(t *testing.T) {
	reader := fixture()
	reader.Add(class("example.com/app/store.Base"), class("example.com/store/mongo.SimpleRepository"))

	registry, _ := register(t, reader, source)
	info, err := aot.NewReader(registry, reader, aot.WithDefaultBaseClass("example.com/store/mongo.SimpleRepository")).Read("userRepository")
	require.NoError(t, err)
	assert.Equal(t, "example.com/store/mongo.SimpleRepository", info.BaseClass.Name)

	src := source
	src.RepositoryBaseClass = "example.com/app/store.Base"
	registry, _ = register(t, reader, src)
	info, err = aot.NewReader(registry, reader, aot.WithDefaultBaseClass("example.com/store/mongo.SimpleRepository")).Read("userRepository")
	require.NoError(t, err)
	assert.Equal(t, "example.com/app/store.Base", info.BaseClass.Name)
}

func TestReadStructuralFragment(t *testing.T) {
	reader := fixture()
	registry := beans.NewRegistry()
	require.NoError(t, registry.RegisterBeanDefinition("searchableFragment",
		beans.NewBuilder(wiring.FragmentBeanClass).AddConstructorArg(fragmentA).Definition()))
	require.NoError(t, registry.RegisterBeanDefinition("fragments",
		beans.NewBuilder(wiring.FragmentsBeanClass).AddConstructorArg([]string{"searchableFragment"}).Definition()))
	require.NoError(t, registry.RegisterBeanDefinition("userRepository",
		beans.NewBuilder(wiring.DefaultFactoryBeanClass).
			AddConstructorArg(beans.TypeRef{Name: userRepository}).
			AddPropertyReference(wiring.PropertyRepositoryFragments, "fragments").
			Definition()))

	info, err := aot.NewReader(registry, reader).Read("userRepository")
	require.NoError(t, err)
	require.Len(t, info.Fragments, 1)
	assert.Equal(t, aot.Structural{Interface: iface(fragmentA)}, info.Fragments[0])
	assert.True(t, info.Fragments[0].Descriptor().Structural())
}

func TestReadFailsOnUnresolvableTypes(t *testing.T) {
	tests := map[string]string{
		"repository interface":    userRepository,
		"custom implementation":   userImpl,
		"fragment implementation": fragmentBImpl,
		"base class":              wiring.DefaultBaseClass,
	}
	for name, missing := range tests {
		t.Run(name, func(t *testing.T) {
			reader := fixture()
			registry, _ := register(t, reader, source)
			reader.Remove(missing)

			_, err := aot.NewReader(registry, reader).Read("userRepository")
			var notPresent *typemeta.TypeNotPresentError
			require.True(t, errors.As(err, &notPresent), "got %v", err)
			assert.Equal(t, missing, notPresent.Name)
		})
	}
}

func TestReadUnknownBean(t *testing.T) {
	_, err := aot.NewReader(beans.NewRegistry(), fixture()).Read("missing")
	assert.ErrorIs(t, err, beans.ErrNoSuchBean)
}

func TestReadAppendsContributedFragments(t *testing.T) {
	const contributorType = "example.com/store/search.Contributor"
	reader := fixture()
	reader.Add(iface("example.com/store/search.Indexed"))
	registry, _ := register(t, reader, source)

	types := wiring.FactoryBeanTypes{}
	types.Register(wiring.FactoryBeanType{ClassName: wiring.DefaultFactoryBeanClass, FragmentsContributor: contributorType})

	var seen *typemeta.TypeMetadata
	contributors := aot.Contributors{}
	contributors.Register(contributorType, func(repo *typemeta.TypeMetadata) aot.FragmentsContributor {
		seen = repo
		return aot.FragmentsContributorFunc(func(info aot.RepositoryInformation) ([]aot.Fragment, error) {
			return []aot.Fragment{aot.Structural{Interface: iface("example.com/store/search.Indexed")}}, nil
		})
	})

	info, err := aot.NewReader(registry, reader, aot.WithFactoryBeanTypes(types), aot.WithContributors(contributors)).Read("userRepository")
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, userRepository, seen.Name)
	require.Len(t, info.Fragments, 4)
	assert.Equal(t, "example.com/store/search.Indexed", info.Fragments[3].Descriptor().Interface)

	_, err = aot.NewReader(registry, reader, aot.WithFactoryBeanTypes(types)).Read("userRepository")
	var notPresent *typemeta.TypeNotPresentError
	require.True(t, errors.As(err, &notPresent))
	assert.Equal(t, contributorType, notPresent.Name)
}

func TestReadRegistrations(t *testing.T) {
	reader := fixture()
	reader.Add(class("example.com/app/order.Order"),
		iface("example.com/app/order.OrderRepository", wiring.RepositoryMarker+"[example.com/app/order.Order, string]"))
	registry, registrations := register(t, reader, source)

	infos, err := aot.NewReader(registry, reader).ReadRegistrations(registrations)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "orderRepository", infos[0].BeanName)
	assert.Empty(t, infos[0].Fragments)
	assert.Equal(t, "userRepository", infos[1].BeanName)
}
