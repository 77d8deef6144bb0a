// Package wiring holds the names shared by the code that writes repository
// bean definitions and the code that reads them back: property slots,
// framework bean types and factory-bean capabilities.
package wiring

const repositoryPkg = "github.com/iVampireSP/repokit/pkg/repository"

// Framework types referenced by bean definitions.
const (
	RepositoryMarker        = repositoryPkg + ".Repository"
	DefaultFactoryBeanClass = repositoryPkg + ".FactoryBean"
	DefaultBaseClass        = repositoryPkg + ".DefaultBase"
	FragmentBeanClass       = repositoryPkg + ".Fragment"
	FragmentsBeanClass      = repositoryPkg + ".Fragments"
	NamedQueriesBeanClass   = repositoryPkg + ".NamedQueries"
)

// Factory-bean property slots.
const (
	PropertyQueryLookupStrategyKey = "queryLookupStrategyKey"
	PropertyLazyInit               = "lazyInit"
	PropertyPrimary                = "primary"
	PropertyRepositoryBaseClass    = "repositoryBaseClass"
	PropertyNamedQueries           = "namedQueries"
	PropertyCustomImplementation   = "customImplementation"
	PropertyRepositoryFragments    = "repositoryFragments"
	PropertyLocations              = "locations"
)

// FactoryKeyRepositoryFactory is the factories key store modules publish
// their repository factory under; more than one entry means several store
// modules are present.
const FactoryKeyRepositoryFactory = "repokit.RepositoryFactory"

// FactoryKeyFragmentsContributor prefixes the factories key under which a
// factory-bean class declares its fragments contributor type. The
// contributor type is itself a key listing the fragment interfaces it
// contributes.
const FactoryKeyFragmentsContributor = "repokit.FragmentsContributor"

// FragmentsContributorKey returns the factories key a factory-bean class
// declares its contributor under.
func FragmentsContributorKey(factoryBeanClass string) string {
	return FactoryKeyFragmentsContributor + "[" + factoryBeanClass + "]"
}

// FactoryBeanType describes capabilities of a repository factory-bean type.
type FactoryBeanType struct {
	ClassName string
	// FragmentsContributor names the contributor type the factory bean
	// exposes; empty when it contributes no fragments.
	FragmentsContributor string
}

// FactoryBeanTypes indexes factory-bean types by class name.
type FactoryBeanTypes map[string]FactoryBeanType

// Register adds or replaces a factory-bean type.
func (t FactoryBeanTypes) Register(ft FactoryBeanType) {
	t[ft.ClassName] = ft
}

// ContributorFor returns the fragments contributor declared by a factory-bean class.
func (t FactoryBeanTypes) ContributorFor(className string) (string, bool) {
	ft, ok := t[className]
	if !ok || ft.FragmentsContributor == "" {
		return "", false
	}
	return ft.FragmentsContributor, true
}
