package repository

// FragmentDescriptor names one fragment of a composed repository. Interface
// is empty for an implementation contributed without a structural interface;
// Implementation is empty for a structural-only fragment.
type FragmentDescriptor struct {
	Interface      string
	Implementation string
}

// Structural reports whether the fragment only declares an interface.
func (f FragmentDescriptor) Structural() bool {
	return f.Implementation == ""
}

// Composition describes how a repository is assembled.
type Composition struct {
	BeanName   string
	Interface  string
	DomainType string
	IDType     string
	BaseClass  string
	Fragments  []FragmentDescriptor
}

// ImplementationFor returns the implementation of the first fragment whose
// interface is iface. Fragment order is override priority: the custom
// implementation comes first, then fragments in declaration order.
func (c Composition) ImplementationFor(iface string) (string, bool) {
	for _, f := range c.Fragments {
		if f.Interface == iface && !f.Structural() {
			return f.Implementation, true
		}
	}
	return "", false
}

// Implementations lists implementation types in priority order.
func (c Composition) Implementations() []string {
	var impls []string
	for _, f := range c.Fragments {
		if !f.Structural() {
			impls = append(impls, f.Implementation)
		}
	}
	return impls
}
