// Package aot reconstructs repository composition from registered bean
// definitions alone and renders it as Go source, so a build can wire
// repositories without scanning packages again.
package aot

import (
	"github.com/iVampireSP/repokit/internal/typemeta"
	"github.com/iVampireSP/repokit/pkg/repository"
)

// Fragment is one element of a repository's composition: either Structural
// or Implemented.
type Fragment interface {
	Descriptor() repository.FragmentDescriptor
	fragment()
}

// Structural is a fragment that declares an interface but carries no
// implementation.
type Structural struct {
	Interface *typemeta.TypeMetadata
}

// Descriptor implements Fragment.
func (f Structural) Descriptor() repository.FragmentDescriptor {
	return repository.FragmentDescriptor{Interface: f.Interface.Name}
}

func (Structural) fragment() {}

// Implemented is a fragment backed by an implementation type. Interface is
// nil for a repository's custom implementation.
type Implemented struct {
	Interface      *typemeta.TypeMetadata
	Implementation *typemeta.TypeMetadata
}

// Descriptor implements Fragment.
func (f Implemented) Descriptor() repository.FragmentDescriptor {
	d := repository.FragmentDescriptor{Implementation: f.Implementation.Name}
	if f.Interface != nil {
		d.Interface = f.Interface.Name
	}
	return d
}

func (Implemented) fragment() {}

// RepositoryInformation is the reconstructed composition of one repository.
// Fragments are in override priority order: the custom implementation
// first, then fragments in declaration order, then contributed fragments.
type RepositoryInformation struct {
	BeanName            string
	RepositoryInterface *typemeta.TypeMetadata
	DomainType          string
	IDType              string
	BaseClass           *typemeta.TypeMetadata
	Fragments           []Fragment
}

// FragmentInterfaces returns the interface names of fragments that declare
// one, in order.
func (i RepositoryInformation) FragmentInterfaces() []string {
	names := make([]string, 0, len(i.Fragments))
	for _, f := range i.Fragments {
		if name := f.Descriptor().Interface; name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Composition converts the information to its runtime description.
func (i RepositoryInformation) Composition() repository.Composition {
	c := repository.Composition{
		BeanName:   i.BeanName,
		DomainType: i.DomainType,
		IDType:     i.IDType,
		Fragments:  make([]repository.FragmentDescriptor, 0, len(i.Fragments)),
	}
	if i.RepositoryInterface != nil {
		c.Interface = i.RepositoryInterface.Name
	}
	if i.BaseClass != nil {
		c.BaseClass = i.BaseClass.Name
	}
	for _, f := range i.Fragments {
		c.Fragments = append(c.Fragments, f.Descriptor())
	}
	return c
}
