package order

// Order has no repository.
type Order struct{}
