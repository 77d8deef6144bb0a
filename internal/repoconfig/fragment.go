package repoconfig

import (
	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/typemeta"
)

// fragmentBeanSuffix is appended to an implementation bean name to name the
// fragment bean wrapping it.
const fragmentBeanSuffix = "Fragment"

// FragmentConfiguration describes one resolved fragment of a repository.
type FragmentConfiguration struct {
	InterfaceName string
	ClassName     string
	// Definition is the implementation bean definition; nil when the
	// implementation was not discovered by scanning.
	Definition *beans.Definition

	beanName string
}

// NewFragmentConfiguration creates the configuration of a scanned fragment
// implementation, named beanName.
func NewFragmentConfiguration(interfaceName string, def *beans.Definition, beanName string) FragmentConfiguration {
	return FragmentConfiguration{
		InterfaceName: interfaceName,
		ClassName:     def.BeanClassName,
		Definition:    def,
		beanName:      beanName,
	}
}

// NewPublishedFragmentConfiguration creates the configuration of a fragment
// implementation published through a factories file. Its bean name is the
// decapitalized local class name.
func NewPublishedFragmentConfiguration(interfaceName, className string) FragmentConfiguration {
	return FragmentConfiguration{
		InterfaceName: interfaceName,
		ClassName:     className,
		beanName:      typemeta.Decapitalize(typemeta.LocalName(className)),
	}
}

// ImplementationBeanName returns the bean name of the implementation.
func (f FragmentConfiguration) ImplementationBeanName() string { return f.beanName }

// FragmentBeanName returns the bean name of the fragment wrapper.
func (f FragmentConfiguration) FragmentBeanName() string { return f.beanName + fragmentBeanSuffix }

// Equal compares interface, class and definition identity.
func (f FragmentConfiguration) Equal(other FragmentConfiguration) bool {
	return f.InterfaceName == other.InterfaceName &&
		f.ClassName == other.ClassName &&
		f.Definition == other.Definition
}

// implementationDefinition returns the definition to register for the
// implementation, synthesizing one for published fragments.
func (f FragmentConfiguration) implementationDefinition(source any) *beans.Definition {
	if f.Definition != nil {
		return f.Definition
	}
	def := beans.NewDefinition(f.ClassName)
	def.Source = source
	return def
}
