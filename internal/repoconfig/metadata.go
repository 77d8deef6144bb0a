package repoconfig

import (
	"github.com/pkg/errors"

	"github.com/iVampireSP/repokit/internal/typemeta"
	"github.com/iVampireSP/repokit/internal/wiring"
)

// FragmentMetadata resolves the fragment interfaces of repository interfaces.
type FragmentMetadata struct {
	reader typemeta.Reader
}

// NewFragmentMetadata creates a resolver reading through reader.
func NewFragmentMetadata(reader typemeta.Reader) FragmentMetadata {
	return FragmentMetadata{reader: reader}
}

// FragmentInterfaces returns the interfaces directly embedded in the named
// interface, in declaration order, without those marked
// //repokit:norepositorybean. Each call reads metadata afresh.
func (f FragmentMetadata) FragmentInterfaces(interfaceName string) ([]string, error) {
	md, err := f.read(interfaceName)
	if err != nil {
		return nil, err
	}

	fragments := []string{}
	for _, super := range md.SuperInterfaces {
		superMd, err := f.read(super)
		if err != nil {
			return nil, err
		}
		if superMd.HasDirective(typemeta.DirectiveNoRepositoryBean) {
			continue
		}
		fragments = append(fragments, superMd.Name)
	}
	return fragments, nil
}

func (f FragmentMetadata) read(name string) (*typemeta.TypeMetadata, error) {
	md, err := f.reader.Metadata(name)
	if err == nil {
		return md, nil
	}
	var readErr *typemeta.MetadataReadError
	if errors.As(err, &readErr) {
		return nil, err
	}
	return nil, &typemeta.MetadataReadError{Name: name, Err: err}
}

// RepositoryMetadata is what the repository interface itself declares.
type RepositoryMetadata struct {
	Interface  string
	DomainType string
	IDType     string
	Reactive   bool
}

// ReadRepositoryMetadata derives domain and id types from the type arguments
// the interface passes to the repository marker, directly or through generic
// intermediate interfaces. A repository is reactive when one of its methods
// returns a receive-only channel or it embeds a //repokit:reactive interface.
func ReadRepositoryMetadata(interfaceName string, reader typemeta.Reader) (RepositoryMetadata, error) {
	md, err := reader.Metadata(interfaceName)
	if err != nil {
		return RepositoryMetadata{}, err
	}

	rm := RepositoryMetadata{Interface: md.Name}
	for _, m := range md.Methods {
		if m.ReturnsReceiveChannel() {
			rm.Reactive = true
			break
		}
	}

	visited := make(map[string]bool)
	var walk func(cur *typemeta.TypeMetadata, bindings map[string]string) error
	walk = func(cur *typemeta.TypeMetadata, bindings map[string]string) error {
		if visited[cur.Name] {
			return nil
		}
		visited[cur.Name] = true

		for _, super := range cur.SuperInterfaces {
			args := typemeta.TypeArgs(super)
			for i, arg := range args {
				if bound, ok := bindings[arg]; ok {
					args[i] = bound
				}
			}

			if typemeta.OriginName(super) == wiring.RepositoryMarker {
				if rm.DomainType == "" && len(args) == 2 {
					rm.DomainType, rm.IDType = args[0], args[1]
				}
				continue
			}

			next, err := reader.Metadata(super)
			if err != nil {
				return err
			}
			if next.HasDirective(typemeta.DirectiveReactive) {
				rm.Reactive = true
			}
			nextBindings := make(map[string]string, len(next.TypeParams))
			for i, param := range next.TypeParams {
				if i < len(args) {
					nextBindings[param] = args[i]
				}
			}
			if err := walk(next, nextBindings); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(md, nil); err != nil {
		return RepositoryMetadata{}, err
	}
	return rm, nil
}
