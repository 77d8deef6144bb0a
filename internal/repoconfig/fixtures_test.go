package repoconfig

import (
	"github.com/iVampireSP/repokit/internal/typemeta"
	"github.com/iVampireSP/repokit/internal/wiring"
)

const (
	userPkg            = "example.com/app/user"
	userRepository     = userPkg + ".UserRepository"
	userFragment       = userPkg + ".UserRepositoryFragment"
	userImpl           = userPkg + ".UserRepositoryImpl"
	userFragmentImpl   = userPkg + ".UserRepositoryFragmentImpl"
	userDomain         = userPkg + ".User"
	orderRepository    = "example.com/app/order.OrderRepository"
	crudRepository     = "example.com/app/repository.CrudRepository"
	noRepositoryBean   = typemeta.DirectiveNoRepositoryBean
	userRepositoryBase = wiring.RepositoryMarker + "[" + userDomain + ", int64]"
)

func directive(kind, value string) typemeta.Directive {
	return typemeta.Directive{Kind: kind, Value: value}
}

func iface(name string, supers ...string) *typemeta.TypeMetadata {
	return &typemeta.TypeMetadata{Name: name, IsInterface: true, SuperInterfaces: supers}
}

func class(name string, directives ...typemeta.Directive) *typemeta.TypeMetadata {
	return &typemeta.TypeMetadata{Name: name, Directives: directives}
}

func marker() *typemeta.TypeMetadata {
	return &typemeta.TypeMetadata{
		Name:        wiring.RepositoryMarker,
		IsInterface: true,
		TypeParams:  []string{"T", "ID"},
		Directives:  []typemeta.Directive{directive(noRepositoryBean, "")},
	}
}

// userFixture is a module with one repository that has a custom
// implementation and one fragment with its own implementation.
func userFixture() *typemeta.StaticReader {
	return typemeta.NewStaticReader(
		marker(),
		class(userDomain, directive("document", "users")),
		iface(userFragment),
		iface(userRepository, userRepositoryBase, userFragment),
		class(userImpl),
		class(userFragmentImpl),
	)
}
