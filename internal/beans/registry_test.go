package beans

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iVampireSP/repokit/internal/typemeta"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	def := NewBuilder("example.com/app/user.UserRepositoryImpl").Definition()
	require.NoError(t, r.RegisterBeanDefinition("userRepositoryImpl", def))
	assert.True(t, r.ContainsBeanDefinition("userRepositoryImpl"))

	var dup *DuplicateBeanError
	err := r.RegisterBeanDefinition("userRepositoryImpl", def)
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "userRepositoryImpl", dup.Name)

	got, err := r.BeanDefinition("userRepositoryImpl")
	require.NoError(t, err)
	assert.Same(t, def, got)

	_, err = r.BeanDefinition("missing")
	assert.True(t, errors.Is(err, ErrNoSuchBean))

	assert.Error(t, r.RegisterBeanDefinition("", def))
	assert.Error(t, r.RegisterBeanDefinition("nil", nil))
	assert.Equal(t, []string{"userRepositoryImpl"}, r.BeanDefinitionNames())
}

func TestUniqueBeanName(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "generic.named-queries#0", UniqueBeanName("generic.named-queries", r))

	require.NoError(t, r.RegisterBeanDefinition("generic.named-queries#0", NewDefinition("x")))
	assert.Equal(t, "generic.named-queries#1", UniqueBeanName("generic.named-queries", r))
}

func TestBuilder(t *testing.T) {
	def := NewBuilder("example.com/repokit.FactoryBean").
		AddConstructorArg(TypeRef{Name: "example.com/app/user.UserRepository"}).
		AddProperty("lazyInit", false).
		AddPropertyReference("customImplementation", "userRepositoryImpl").
		AddProperty("lazyInit", true).
		AddDependsOn("userRepositoryImpl").
		AddDependsOn("userRepositoryImpl").
		SetPrimary(true).
		SetRole(RoleInfrastructure).
		Definition()

	arg, ok := def.ConstructorArg(0)
	require.True(t, ok)
	assert.Equal(t, TypeRef{Name: "example.com/app/user.UserRepository"}, arg)
	_, ok = def.ConstructorArg(1)
	assert.False(t, ok)

	lazy, ok := def.Property("lazyInit")
	require.True(t, ok)
	assert.Equal(t, true, lazy)
	assert.Equal(t, "lazyInit", def.Properties[0].Name)

	ref, ok := def.Property("customImplementation")
	require.True(t, ok)
	assert.Equal(t, Reference{BeanName: "userRepositoryImpl"}, ref)

	assert.Equal(t, []string{"userRepositoryImpl"}, def.DependsOn)
	assert.True(t, def.Primary)
	assert.Equal(t, RoleInfrastructure, def.Role)
}

func TestDefaultNameGenerator(t *testing.T) {
	gen := DefaultNameGenerator{}

	assert.Equal(t, "userRepositoryImpl", gen.GenerateBeanName(NewDefinition("example.com/app/user.UserRepositoryImpl")))

	named := NewDefinition("example.com/app/user.UserRepositoryImpl")
	named.Metadata = &typemeta.TypeMetadata{
		Name:       named.BeanClassName,
		Directives: []typemeta.Directive{{Kind: DirectiveBeanName, Value: "legacyUsers"}},
	}
	assert.Equal(t, "legacyUsers", gen.GenerateBeanName(named))
}

func TestSingletonsAndResolver(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterSingleton("b", 2))
	require.NoError(t, r.RegisterSingleton("a", 1))
	assert.Error(t, r.RegisterSingleton("a", 3))

	v, ok := r.Singleton("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"a", "b"}, r.SingletonNames())

	assert.False(t, r.AutowireCandidateResolver().IsLazy(DependencyDescriptor{DependencyType: "x.Y"}))
}
