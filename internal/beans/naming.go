package beans

import (
	"github.com/iVampireSP/repokit/internal/typemeta"
)

// DirectiveBeanName names a bean explicitly: //repokit:bean customName
const DirectiveBeanName = "bean"

// NameGenerator derives a bean name from a definition. Implementations must
// be deterministic for definitions of the same shape.
type NameGenerator interface {
	GenerateBeanName(def *Definition) string
}

// DefaultNameGenerator uses an explicit //repokit:bean name when the scanned
// type carries one, otherwise the decapitalized local type name.
type DefaultNameGenerator struct{}

// GenerateBeanName implements NameGenerator.
func (DefaultNameGenerator) GenerateBeanName(def *Definition) string {
	if def.Metadata != nil {
		if names := typemeta.DirectiveValues(def.Metadata.Directives, DirectiveBeanName); len(names) > 0 {
			return names[0]
		}
	}
	return typemeta.Decapitalize(typemeta.LocalName(def.BeanClassName))
}
