// Package repository contains the types application code embeds to declare
// repositories, and the composition descriptors generated wiring refers to.
//
// A repository is an interface embedding Repository[T, ID]. Further embedded
// interfaces are fragments: each may have an implementation named after it
// with the configured postfix (UserRepositoryFragment → UserRepositoryFragmentImpl).
// A type named after the repository itself (UserRepositoryImpl) is the custom
// implementation and takes priority over every fragment.
package repository

// Repository marks repository interfaces. T is the domain type and ID its
// identifier type.
//
//repokit:norepositorybean
type Repository[T any, ID comparable] interface{}

// FactoryBean is the default repository factory bean type.
type FactoryBean struct{}

// DefaultBase is the neutral repository base type used when neither the
// configuration nor the store module names one.
type DefaultBase struct{}

// Fragment is the bean type pairing a fragment interface with its implementation.
type Fragment struct{}

// Fragments is the bean type aggregating a repository's fragments in order.
type Fragments struct{}

// NamedQueries is the bean type holding named queries loaded from files.
type NamedQueries struct{}
