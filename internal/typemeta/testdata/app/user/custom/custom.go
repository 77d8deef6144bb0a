package custom

// UserRepositoryImpl is a second implementation in a nested package.
//
//repokit:norepositorybean
type UserRepositoryImpl struct{}
