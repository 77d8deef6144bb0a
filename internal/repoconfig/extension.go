package repoconfig

import (
	"strings"

	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/wiring"
)

// Extension is the store-module specific part of repository configuration.
type Extension interface {
	// ModuleName is the human readable module name, e.g. "Generic".
	ModuleName() string
	// ModulePrefix prefixes module-owned bean names, e.g. "generic".
	ModulePrefix() string
	RepositoryFactoryBeanClassName() string
	// RepositoryBaseClassName is the module's default base class, "" for none.
	RepositoryBaseClassName() string
	DefaultNamedQueryLocation() string

	// IdentifyingDirectives are domain-type directives that assign a
	// repository to this module in strict mode.
	IdentifyingDirectives() []string
	// IdentifyingTypes are interfaces whose embedding assigns a repository
	// to this module in strict mode.
	IdentifyingTypes() []string
	SupportsReactive() bool

	// RegisterBeansForRoot registers module infrastructure once per source.
	RegisterBeansForRoot(registry beans.Registry, src ConfigurationSource) error
	// PostProcess adjusts every repository factory-bean definition.
	PostProcess(builder *beans.Builder, src ConfigurationSource)
}

// ExtensionSupport is a configurable Extension. Store modules embed it and
// override what they need.
type ExtensionSupport struct {
	Name               string
	Prefix             string
	FactoryBeanClass   string
	BaseClass          string
	NamedQueryLocation string
	Directives         []string
	Types              []string
	Reactive           bool
}

// NewGenericExtension returns the module used when no store module is
// configured: the default factory bean and no strict-mode identification.
func NewGenericExtension() *ExtensionSupport {
	return &ExtensionSupport{
		Name:             "Generic",
		Prefix:           "generic",
		FactoryBeanClass: wiring.DefaultFactoryBeanClass,
	}
}

// ModuleName implements Extension.
func (e *ExtensionSupport) ModuleName() string { return e.Name }

// ModulePrefix implements Extension, defaulting to the lower-cased module name.
func (e *ExtensionSupport) ModulePrefix() string {
	if e.Prefix == "" {
		return strings.ToLower(e.Name)
	}
	return e.Prefix
}

// RepositoryFactoryBeanClassName implements Extension.
func (e *ExtensionSupport) RepositoryFactoryBeanClassName() string {
	if e.FactoryBeanClass == "" {
		return wiring.DefaultFactoryBeanClass
	}
	return e.FactoryBeanClass
}

// RepositoryBaseClassName implements Extension.
func (e *ExtensionSupport) RepositoryBaseClassName() string { return e.BaseClass }

// DefaultNamedQueryLocation implements Extension:
// queries/<prefix>-named-queries.yaml unless set.
func (e *ExtensionSupport) DefaultNamedQueryLocation() string {
	if e.NamedQueryLocation != "" {
		return e.NamedQueryLocation
	}
	return "queries/" + e.ModulePrefix() + "-named-queries.yaml"
}

// IdentifyingDirectives implements Extension.
func (e *ExtensionSupport) IdentifyingDirectives() []string { return e.Directives }

// IdentifyingTypes implements Extension.
func (e *ExtensionSupport) IdentifyingTypes() []string { return e.Types }

// SupportsReactive implements Extension.
func (e *ExtensionSupport) SupportsReactive() bool { return e.Reactive }

// RegisterBeansForRoot implements Extension. It registers nothing.
func (e *ExtensionSupport) RegisterBeansForRoot(beans.Registry, ConfigurationSource) error { return nil }

// PostProcess implements Extension. It changes nothing.
func (e *ExtensionSupport) PostProcess(*beans.Builder, ConfigurationSource) {}
