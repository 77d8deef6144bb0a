package scan

import (
	"regexp"
	"strings"

	"github.com/iVampireSP/repokit/internal/typemeta"
)

// TypeFilter decides whether a scanned type matches.
type TypeFilter interface {
	Match(md *typemeta.TypeMetadata, reader typemeta.Reader) (bool, error)
}

// FilterFunc adapts a function to TypeFilter.
type FilterFunc func(md *typemeta.TypeMetadata, reader typemeta.Reader) (bool, error)

// Match implements TypeFilter.
func (f FilterFunc) Match(md *typemeta.TypeMetadata, reader typemeta.Reader) (bool, error) {
	return f(md, reader)
}

// DirectiveFilter matches types whose doc comment carries a directive kind.
type DirectiveFilter struct {
	Kind string
}

// Match implements TypeFilter.
func (f DirectiveFilter) Match(md *typemeta.TypeMetadata, _ typemeta.Reader) (bool, error) {
	return md.HasDirective(f.Kind), nil
}

// NoRepositoryBean matches types marked //repokit:norepositorybean.
var NoRepositoryBean = DirectiveFilter{Kind: typemeta.DirectiveNoRepositoryBean}

// AssignableFilter matches interfaces that are, or transitively embed, Target.
type AssignableFilter struct {
	Target string
}

// Match implements TypeFilter.
func (f AssignableFilter) Match(md *typemeta.TypeMetadata, reader typemeta.Reader) (bool, error) {
	return Embeds(md, f.Target, reader)
}

// RegexFilter matches qualified type names against a pattern.
type RegexFilter struct {
	Pattern *regexp.Regexp
}

// Match implements TypeFilter.
func (f RegexFilter) Match(md *typemeta.TypeMetadata, _ typemeta.Reader) (bool, error) {
	return f.Pattern.MatchString(md.Name), nil
}

// SuffixFilter matches types whose local name ends with Suffix.
type SuffixFilter struct {
	Suffix string
}

// Match implements TypeFilter.
func (f SuffixFilter) Match(md *typemeta.TypeMetadata, _ typemeta.Reader) (bool, error) {
	return strings.HasSuffix(typemeta.LocalName(md.Name), f.Suffix), nil
}

// ConcreteFilter matches non-interface types.
var ConcreteFilter = FilterFunc(func(md *typemeta.TypeMetadata, _ typemeta.Reader) (bool, error) {
	return !md.IsInterface, nil
})

// AnyMatch reports whether any filter matches md.
func AnyMatch(filters []TypeFilter, md *typemeta.TypeMetadata, reader typemeta.Reader) (bool, error) {
	for _, f := range filters {
		ok, err := f.Match(md, reader)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Embeds reports whether md is target or embeds it at any depth.
// Embedded generic instantiations compare by origin name.
func Embeds(md *typemeta.TypeMetadata, target string, reader typemeta.Reader) (bool, error) {
	target = typemeta.OriginName(target)
	visited := make(map[string]bool)

	var walk func(*typemeta.TypeMetadata) (bool, error)
	walk = func(cur *typemeta.TypeMetadata) (bool, error) {
		if cur.Name == target {
			return true, nil
		}
		if visited[cur.Name] {
			return false, nil
		}
		visited[cur.Name] = true

		for _, super := range cur.SuperInterfaces {
			if typemeta.OriginName(super) == target {
				return true, nil
			}
			next, err := reader.Metadata(super)
			if err != nil {
				return false, err
			}
			if ok, err := walk(next); ok || err != nil {
				return ok, err
			}
		}
		return false, nil
	}
	return walk(md)
}
