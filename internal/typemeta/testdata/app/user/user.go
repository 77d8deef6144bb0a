package user

import "example.com/app/repository"

// User is a domain type.
//
//repokit:document users
type User struct {
	ID   int64
	Name string
}

// UserRepositoryFragment adds bulk operations.
type UserRepositoryFragment interface {
	Rename(id int64, name string) error
}

// UserRepository stores users.
type UserRepository interface {
	repository.Repository[User, int64]
	UserRepositoryFragment

	FindByName(name string) (*User, error)
	Stream() <-chan User
}

type (
	// UserRepositoryImpl is the custom implementation.
	UserRepositoryImpl struct{}

	UserRepositoryFragmentImpl struct{}
)
