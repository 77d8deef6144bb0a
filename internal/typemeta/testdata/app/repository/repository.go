package repository

// Repository marks repository interfaces.
//
//repokit:norepositorybean
type Repository[T any, ID comparable] interface{}
