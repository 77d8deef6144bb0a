package repoconfig

import "sort"

// RegistrationsBeanName is the singleton holding the Registrations of a
// configuration pass.
const RegistrationsBeanName = "repokit.RepositoryRegistrations"

// Snapshot is the part of a repository configuration kept after
// registration, for ahead-of-time processing.
type Snapshot struct {
	BeanName                string
	ModuleName              string
	RepositoryInterface     string
	FactoryBeanClassName    string
	RepositoryBaseClassName string // configured override, "" when none
	CustomImplementation    string // implementation class, "" when none
	Fragments               []FragmentConfiguration
	LazyInit                bool
	Primary                 bool
	Source                  string
}

// FragmentInterfaces returns the fragment interface names in order.
func (s Snapshot) FragmentInterfaces() []string {
	names := make([]string, 0, len(s.Fragments))
	for _, f := range s.Fragments {
		names = append(names, f.InterfaceName)
	}
	return names
}

// Registrations maps repository bean names to their snapshots.
type Registrations map[string]Snapshot

// BeanNames returns the repository bean names, sorted.
func (r Registrations) BeanNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r Registrations) add(other Registrations) {
	for name, s := range other {
		r[name] = s
	}
}

func (r Registrations) clone() Registrations {
	out := make(Registrations, len(r))
	out.add(r)
	return out
}
