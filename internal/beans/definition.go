// Package beans models bean definitions: declarative descriptions of objects
// a container constructs and wires, with positional constructor arguments and
// named property slots. Definitions are plain data; nothing here instantiates
// anything.
package beans

import (
	"github.com/iVampireSP/repokit/internal/typemeta"
)

// Role classifies a definition.
type Role int

const (
	RoleApplication    Role = iota // user-facing bean
	RoleSupport                    // supporting part of a larger configuration
	RoleInfrastructure             // framework-internal bean
)

// Reference points at another bean by name. It resolves lazily, so the
// referenced bean may be registered after the referencing one.
type Reference struct {
	BeanName string
}

// TypeRef is a type recorded by name until something resolves it.
type TypeRef struct {
	Name string
}

// PropertyValue is a named property slot.
type PropertyValue struct {
	Name  string
	Value any
}

// Definition describes one bean.
type Definition struct {
	BeanClassName       string
	ConstructorArgs     []any
	Properties          []PropertyValue
	DependsOn           []string
	LazyInit            bool
	Primary             bool
	Role                Role
	TargetType          string
	ResourceDescription string
	Source              any

	// Metadata is set for definitions created from scanned types.
	Metadata *typemeta.TypeMetadata
}

// NewDefinition creates an application-role definition for a bean type.
func NewDefinition(beanClassName string) *Definition {
	return &Definition{BeanClassName: beanClassName}
}

// Property returns the value of a named property.
func (d *Definition) Property(name string) (any, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// SetProperty sets or replaces a property, keeping first-set order.
func (d *Definition) SetProperty(name string, value any) {
	for i, p := range d.Properties {
		if p.Name == name {
			d.Properties[i].Value = value
			return
		}
	}
	d.Properties = append(d.Properties, PropertyValue{Name: name, Value: value})
}

// ConstructorArg returns the positional argument at index.
func (d *Definition) ConstructorArg(index int) (any, bool) {
	if index < 0 || index >= len(d.ConstructorArgs) {
		return nil, false
	}
	return d.ConstructorArgs[index], true
}

// Builder assembles a Definition fluently.
type Builder struct {
	def *Definition
}

// NewBuilder starts a definition for beanClassName.
func NewBuilder(beanClassName string) *Builder {
	return &Builder{def: NewDefinition(beanClassName)}
}

// AddConstructorArg appends a positional constructor argument.
func (b *Builder) AddConstructorArg(v any) *Builder {
	b.def.ConstructorArgs = append(b.def.ConstructorArgs, v)
	return b
}

// AddConstructorArgReference appends a reference to another bean.
func (b *Builder) AddConstructorArgReference(beanName string) *Builder {
	return b.AddConstructorArg(Reference{BeanName: beanName})
}

// AddProperty sets a property value.
func (b *Builder) AddProperty(name string, v any) *Builder {
	b.def.SetProperty(name, v)
	return b
}

// AddPropertyReference sets a property to a reference to another bean.
func (b *Builder) AddPropertyReference(name, beanName string) *Builder {
	return b.AddProperty(name, Reference{BeanName: beanName})
}

// AddDependsOn records an initialization-order dependency.
func (b *Builder) AddDependsOn(beanName string) *Builder {
	for _, existing := range b.def.DependsOn {
		if existing == beanName {
			return b
		}
	}
	b.def.DependsOn = append(b.def.DependsOn, beanName)
	return b
}

// SetLazyInit marks the bean for deferred initialization.
func (b *Builder) SetLazyInit(lazy bool) *Builder {
	b.def.LazyInit = lazy
	return b
}

// SetPrimary marks the bean as the primary autowire candidate for its type.
func (b *Builder) SetPrimary(primary bool) *Builder {
	b.def.Primary = primary
	return b
}

// SetRole sets the definition role.
func (b *Builder) SetRole(role Role) *Builder {
	b.def.Role = role
	return b
}

// SetSource attaches an opaque diagnostic source token.
func (b *Builder) SetSource(source any) *Builder {
	b.def.Source = source
	return b
}

// Definition returns the definition being built. Later builder calls keep
// mutating the same value.
func (b *Builder) Definition() *Definition {
	return b.def
}
