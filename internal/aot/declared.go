package aot

import (
	"github.com/pkg/errors"

	"github.com/iVampireSP/repokit/internal/factories"
	"github.com/iVampireSP/repokit/internal/typemeta"
	"github.com/iVampireSP/repokit/internal/wiring"
)

// DeclaredContributors reads the fragments contributors factories files
// declare for the given factory-bean classes:
//
//	repokit.FragmentsContributor[example.com/store/mongo.FactoryBean]:
//	  - example.com/store/mongo.Contributor
//	example.com/store/mongo.Contributor:
//	  - example.com/store/mongo.QuerydslExecutor
//
// A contributed interface with a published implementation becomes an
// Implemented fragment, otherwise a Structural one.
func DeclaredContributors(loader factories.Loader, reader typemeta.Reader, factoryBeanClasses ...string) (wiring.FactoryBeanTypes, Contributors) {
	types := wiring.FactoryBeanTypes{}
	contributors := Contributors{}
	for _, class := range factoryBeanClasses {
		declared := loader.LoadFactoryNames(wiring.FragmentsContributorKey(class))
		if len(declared) == 0 {
			continue
		}
		contributorType := declared[0]
		types.Register(wiring.FactoryBeanType{ClassName: class, FragmentsContributor: contributorType})
		contributors.Register(contributorType, declaredContributor(loader, reader, contributorType))
	}
	return types, contributors
}

func declaredContributor(loader factories.Loader, reader typemeta.Reader, contributorType string) ContributorFactory {
	return func(*typemeta.TypeMetadata) FragmentsContributor {
		return FragmentsContributorFunc(func(info RepositoryInformation) ([]Fragment, error) {
			present := make(map[string]bool, len(info.Fragments))
			for _, name := range info.FragmentInterfaces() {
				present[name] = true
			}

			var fragments []Fragment
			for _, name := range loader.LoadFactoryNames(contributorType) {
				if present[name] {
					continue
				}
				iface, err := reader.Metadata(name)
				if err != nil {
					return nil, errors.Wrapf(err, "contributed fragment %s", name)
				}
				impls := loader.LoadFactoryNames(name)
				if len(impls) == 0 {
					fragments = append(fragments, Structural{Interface: iface})
					continue
				}
				impl, err := reader.Metadata(impls[0])
				if err != nil {
					return nil, errors.Wrapf(err, "implementation of contributed fragment %s", name)
				}
				fragments = append(fragments, Implemented{Interface: iface, Implementation: impl})
			}
			return fragments, nil
		})
	}
}
