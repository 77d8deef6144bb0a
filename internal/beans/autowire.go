package beans

// DependencyDescriptor describes an injection point.
type DependencyDescriptor struct {
	DependencyType string // qualified type name of the injected value
	Name           string // field or parameter name, for diagnostics
	Required       bool
}

// AutowireCandidateResolver decides how injection points are satisfied.
type AutowireCandidateResolver interface {
	// IsLazy reports whether the injection point must receive a lazy
	// resolution proxy instead of an eagerly initialized bean.
	IsLazy(desc DependencyDescriptor) bool
}

// SimpleAutowireCandidateResolver treats every injection point as eager.
type SimpleAutowireCandidateResolver struct{}

// IsLazy implements AutowireCandidateResolver.
func (SimpleAutowireCandidateResolver) IsLazy(DependencyDescriptor) bool { return false }
