// Package repoconfig discovers repository interfaces, resolves their custom
// implementations and fragments, and registers the bean definitions that
// wire a repository factory bean together.
package repoconfig

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/scan"
	"github.com/iVampireSP/repokit/internal/typemeta"
)

// Defaults applied when a source leaves an option unset.
const (
	DefaultImplementationPostfix = "Impl"
	DefaultQueryLookupStrategy   = "create-if-not-found"
)

// Per-interface directives.
const (
	DirectiveLazy    = "lazy"
	DirectivePrimary = "primary"
)

// BootstrapMode controls when repository beans are initialized.
type BootstrapMode string

const (
	BootstrapDefault  BootstrapMode = "default"
	BootstrapLazy     BootstrapMode = "lazy"
	BootstrapDeferred BootstrapMode = "deferred"
)

// ParseBootstrapMode parses a mode name; "" is the default mode.
func ParseBootstrapMode(s string) (BootstrapMode, error) {
	switch BootstrapMode(s) {
	case "", BootstrapDefault:
		return BootstrapDefault, nil
	case BootstrapLazy, BootstrapDeferred:
		return BootstrapMode(s), nil
	}
	return "", errors.Errorf("unknown bootstrap mode %q (want default, lazy or deferred)", s)
}

// ConfigurationSource holds the options a module enables repositories with,
// already reduced from whichever front end declared them.
type ConfigurationSource struct {
	// Origin identifies where the options were declared, for diagnostics.
	Origin string

	BasePackages               []string
	ImplementationPostfix      string
	QueryLookupStrategy        string
	NamedQueriesLocation       string
	RepositoryBaseClass        string
	RepositoryFactoryBeanClass string
	IncludeFilters             []scan.TypeFilter
	ExcludeFilters             []scan.TypeFilter
	BootstrapMode              BootstrapMode
	LazyInit                   bool

	// SkipPackages are module-relative package paths left out of scans.
	SkipPackages []string

	// NameGenerator names implementation beans; nil means beans.DefaultNameGenerator.
	NameGenerator beans.NameGenerator
}

// Postfix returns the implementation postfix, defaulting to "Impl".
func (s ConfigurationSource) Postfix() string {
	if s.ImplementationPostfix == "" {
		return DefaultImplementationPostfix
	}
	return s.ImplementationPostfix
}

// Mode returns the bootstrap mode, defaulting to BootstrapDefault.
func (s ConfigurationSource) Mode() BootstrapMode {
	if s.BootstrapMode == "" {
		return BootstrapDefault
	}
	return s.BootstrapMode
}

// UsesExplicitFilters reports whether include or exclude filters were declared.
func (s ConfigurationSource) UsesExplicitFilters() bool {
	return len(s.IncludeFilters) > 0 || len(s.ExcludeFilters) > 0
}

// GenerateBeanName names an implementation bean definition with the
// source's NameGenerator.
func (s ConfigurationSource) GenerateBeanName(def *beans.Definition) string {
	if s.NameGenerator == nil {
		return beans.DefaultNameGenerator{}.GenerateBeanName(def)
	}
	return s.NameGenerator.GenerateBeanName(def)
}

// DetectionConfiguration returns the implementation detection settings of
// the whole source.
func (s ConfigurationSource) DetectionConfiguration() ImplementationDetectionConfiguration {
	return NewImplementationDetectionConfiguration(s.Postfix(), s.BasePackages, s.ExcludeFilters, s)
}

// RepositoryConfiguration describes one discovered repository interface.
// It is immutable once created.
type RepositoryConfiguration struct {
	metadata       *typemeta.TypeMetadata
	source         ConfigurationSource
	factoryDefault string
}

// NewRepositoryConfiguration creates the configuration of a repository
// interface. defaultFactory is the module's factory-bean class, used when
// the source does not override it.
func NewRepositoryConfiguration(md *typemeta.TypeMetadata, src ConfigurationSource, defaultFactory string) RepositoryConfiguration {
	src.BasePackages = append([]string(nil), src.BasePackages...)
	src.IncludeFilters = append([]scan.TypeFilter(nil), src.IncludeFilters...)
	src.ExcludeFilters = append([]scan.TypeFilter(nil), src.ExcludeFilters...)
	return RepositoryConfiguration{metadata: md, source: src, factoryDefault: defaultFactory}
}

// RepositoryInterface returns the qualified interface name.
func (c RepositoryConfiguration) RepositoryInterface() string { return c.metadata.Name }

// Metadata returns the interface metadata the configuration was created from.
func (c RepositoryConfiguration) Metadata() *typemeta.TypeMetadata { return c.metadata }

// BasePackages returns the packages scanned for the module.
func (c RepositoryConfiguration) BasePackages() []string {
	return append([]string(nil), c.source.BasePackages...)
}

// ImplementationBasePackages returns the packages searched for the custom
// implementation: the interface's own package.
func (c RepositoryConfiguration) ImplementationBasePackages() []string {
	return []string{c.metadata.PackagePath()}
}

// ImplementationPostfix returns the implementation class postfix.
func (c RepositoryConfiguration) ImplementationPostfix() string { return c.source.Postfix() }

// QueryLookupStrategyKey returns the query lookup strategy.
func (c RepositoryConfiguration) QueryLookupStrategyKey() string {
	if c.source.QueryLookupStrategy == "" {
		return DefaultQueryLookupStrategy
	}
	return c.source.QueryLookupStrategy
}

// NamedQueriesLocation returns the configured named-queries location, or "".
func (c RepositoryConfiguration) NamedQueriesLocation() string { return c.source.NamedQueriesLocation }

// RepositoryBaseClassName returns the base class override, or "".
func (c RepositoryConfiguration) RepositoryBaseClassName() string { return c.source.RepositoryBaseClass }

// RepositoryFactoryBeanClassName returns the factory-bean class.
func (c RepositoryConfiguration) RepositoryFactoryBeanClassName() string {
	if c.source.RepositoryFactoryBeanClass != "" {
		return c.source.RepositoryFactoryBeanClass
	}
	return c.factoryDefault
}

// LazyInit reports whether the repository bean initializes lazily: the
// source says so, the bootstrap mode is not default, or the interface
// carries //repokit:lazy.
func (c RepositoryConfiguration) LazyInit() bool {
	return c.source.LazyInit || c.source.Mode() != BootstrapDefault || c.metadata.HasDirective(DirectiveLazy)
}

// Primary reports whether the interface carries //repokit:primary.
func (c RepositoryConfiguration) Primary() bool { return c.metadata.HasDirective(DirectivePrimary) }

// ExcludeFilters returns the source exclude filters.
func (c RepositoryConfiguration) ExcludeFilters() []scan.TypeFilter {
	return append([]scan.TypeFilter(nil), c.source.ExcludeFilters...)
}

// BootstrapMode returns the module bootstrap mode.
func (c RepositoryConfiguration) BootstrapMode() BootstrapMode { return c.source.Mode() }

// Source returns the diagnostic origin of the configuration.
func (c RepositoryConfiguration) Source() string { return c.source.Origin }

// ConfigurationSource returns the source the configuration came from.
func (c RepositoryConfiguration) ConfigurationSource() ConfigurationSource { return c.source }

// ResourceDescription describes where the repository was declared.
func (c RepositoryConfiguration) ResourceDescription() string {
	if c.source.Origin == "" {
		return c.RepositoryInterface()
	}
	return fmt.Sprintf("%s defined in %s", c.RepositoryInterface(), c.source.Origin)
}
