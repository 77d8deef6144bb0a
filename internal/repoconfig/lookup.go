package repoconfig

import (
	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/scan"
	"github.com/iVampireSP/repokit/internal/typemeta"
)

// ImplementationDetectionConfiguration holds the settings shared by every
// implementation lookup of one module. It is an immutable value.
type ImplementationDetectionConfiguration struct {
	postfix        string
	basePackages   []string
	excludeFilters []scan.TypeFilter
	nameGenerator  beans.NameGenerator
}

// NewImplementationDetectionConfiguration creates a detection configuration.
func NewImplementationDetectionConfiguration(postfix string, basePackages []string, exclude []scan.TypeFilter, gen beans.NameGenerator) ImplementationDetectionConfiguration {
	if gen == nil {
		gen = beans.DefaultNameGenerator{}
	}
	return ImplementationDetectionConfiguration{
		postfix:        postfix,
		basePackages:   append([]string(nil), basePackages...),
		excludeFilters: append([]scan.TypeFilter(nil), exclude...),
		nameGenerator:  gen,
	}
}

// Postfix returns the implementation postfix.
func (c ImplementationDetectionConfiguration) Postfix() string { return c.postfix }

// BasePackages returns the packages implementations are searched in.
func (c ImplementationDetectionConfiguration) BasePackages() []string {
	return append([]string(nil), c.basePackages...)
}

// ExcludeFilters returns the configured exclude filters.
func (c ImplementationDetectionConfiguration) ExcludeFilters() []scan.TypeFilter {
	return append([]scan.TypeFilter(nil), c.excludeFilters...)
}

// GenerateBeanName names a candidate definition.
func (c ImplementationDetectionConfiguration) GenerateBeanName(def *beans.Definition) string {
	return c.nameGenerator.GenerateBeanName(def)
}

// ForFragment returns the lookup for a fragment interface, searching all
// base packages of the configuration.
func (c ImplementationDetectionConfiguration) ForFragment(fragmentInterface string) ImplementationLookup {
	return newImplementationLookup(fragmentInterface, c.postfix, c.basePackages, c.excludeFilters, c.nameGenerator)
}

// ForRepository returns the lookup for a repository's custom implementation,
// searching the repository's implementation base packages with the
// repository's exclude filters added.
func (c ImplementationDetectionConfiguration) ForRepository(cfg RepositoryConfiguration) ImplementationLookup {
	exclude := append(c.ExcludeFilters(), cfg.ExcludeFilters()...)
	return newImplementationLookup(cfg.RepositoryInterface(), cfg.ImplementationPostfix(), cfg.ImplementationBasePackages(), exclude, c.nameGenerator)
}

// ImplementationLookup describes how to find the implementation of one
// interface.
type ImplementationLookup struct {
	interfaceName  string
	postfix        string
	basePackages   []string
	excludeFilters []scan.TypeFilter
	nameGenerator  beans.NameGenerator
}

func newImplementationLookup(iface, postfix string, basePackages []string, exclude []scan.TypeFilter, gen beans.NameGenerator) ImplementationLookup {
	filters := make([]scan.TypeFilter, 0, len(exclude)+1)
	filters = append(filters, exclude...)
	filters = append(filters, scan.NoRepositoryBean)
	return ImplementationLookup{
		interfaceName:  iface,
		postfix:        postfix,
		basePackages:   append([]string(nil), basePackages...),
		excludeFilters: filters,
		nameGenerator:  gen,
	}
}

// InterfaceName returns the interface the implementation is looked up for.
func (l ImplementationLookup) InterfaceName() string { return l.interfaceName }

// Postfix returns the implementation postfix.
func (l ImplementationLookup) Postfix() string { return l.postfix }

// ImplementationClassName returns the expected unqualified class name.
func (l ImplementationLookup) ImplementationClassName() string {
	return typemeta.LocalName(l.interfaceName) + l.postfix
}

// ImplementationBeanName returns the expected implementation bean name.
func (l ImplementationLookup) ImplementationBeanName() string {
	return typemeta.Decapitalize(l.ImplementationClassName())
}

// BasePackages returns the packages searched.
func (l ImplementationLookup) BasePackages() []string {
	return append([]string(nil), l.basePackages...)
}

// ExcludeFilters returns the exclude filters, including the norepositorybean filter.
func (l ImplementationLookup) ExcludeFilters() []scan.TypeFilter {
	return append([]scan.TypeFilter(nil), l.excludeFilters...)
}

// HasMatchingBeanName reports whether the definition's generated bean name
// is the expected implementation bean name.
func (l ImplementationLookup) HasMatchingBeanName(def *beans.Definition) bool {
	return l.nameGenerator.GenerateBeanName(def) == l.ImplementationBeanName()
}

// Matches reports whether a definition satisfies the lookup: its local class
// name equals the implementation class name, its package lies in one of the
// base packages, and no exclude filter matches it. Definitions without
// scanned metadata are read through reader.
func (l ImplementationLookup) Matches(def *beans.Definition, reader typemeta.Reader) (bool, error) {
	name := def.BeanClassName
	if name == "" || typemeta.LocalName(name) != l.ImplementationClassName() {
		return false, nil
	}
	if !l.inBasePackage(typemeta.PackageName(name)) {
		return false, nil
	}

	md := def.Metadata
	if md == nil {
		var err error
		if md, err = reader.Metadata(name); err != nil {
			return false, err
		}
	}
	excluded, err := scan.AnyMatch(l.excludeFilters, md, reader)
	if err != nil {
		return false, err
	}
	return !excluded, nil
}

func (l ImplementationLookup) inBasePackage(pkg string) bool {
	for _, base := range l.basePackages {
		if typemeta.InPackage(pkg, base) {
			return true
		}
	}
	return false
}
