package aot

import "github.com/iVampireSP/repokit/internal/typemeta"

// FragmentsContributor describes fragments a store library adds to a
// repository beyond those found by scanning.
type FragmentsContributor interface {
	Describe(info RepositoryInformation) ([]Fragment, error)
}

// FragmentsContributorFunc adapts a function to FragmentsContributor.
type FragmentsContributorFunc func(info RepositoryInformation) ([]Fragment, error)

// Describe implements FragmentsContributor.
func (f FragmentsContributorFunc) Describe(info RepositoryInformation) ([]Fragment, error) {
	return f(info)
}

// ContributorFactory creates a contributor for one repository interface.
// Factories that need no argument ignore it.
type ContributorFactory func(repositoryInterface *typemeta.TypeMetadata) FragmentsContributor

// Contributors indexes contributor factories by the contributor type name a
// factory-bean type declares.
type Contributors map[string]ContributorFactory

// Register adds or replaces the factory for a contributor type.
func (c Contributors) Register(typeName string, factory ContributorFactory) {
	c[typeName] = factory
}
