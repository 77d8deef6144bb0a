package typemeta

import (
	"go/ast"
	"strings"
)

// DirectivePrefix introduces a repokit directive in a doc comment.
const DirectivePrefix = "repokit:"

// Well-known directive kinds.
const (
	DirectiveNoRepositoryBean = "norepositorybean" // //repokit:norepositorybean
	DirectiveReactive         = "reactive"         // //repokit:reactive
)

// Directive represents a parsed //repokit: line.
type Directive struct {
	Kind  string // e.g. "norepositorybean", "document"
	Value string // remainder of the line, may be empty
}

// ParseDirectives extracts //repokit: directives from a doc comment group.
func ParseDirectives(doc *ast.CommentGroup) []Directive {
	if doc == nil {
		return nil
	}

	var directives []Directive
	for _, comment := range doc.List {
		if d, ok := ParseDirective(comment.Text); ok {
			directives = append(directives, d)
		}
	}
	return directives
}

// ParseDirective parses a single comment line such as "//repokit:document users".
func ParseDirective(line string) (Directive, bool) {
	text := strings.TrimSpace(line)
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, DirectivePrefix) {
		return Directive{}, false
	}
	text = strings.TrimPrefix(text, DirectivePrefix)

	parts := strings.SplitN(text, " ", 2)
	kind := strings.TrimSpace(parts[0])
	if kind == "" {
		return Directive{}, false
	}
	value := ""
	if len(parts) > 1 {
		value = strings.TrimSpace(parts[1])
	}
	return Directive{Kind: kind, Value: value}, true
}

// HasDirective checks if directives contain a specific kind.
func HasDirective(directives []Directive, kind string) bool {
	for _, d := range directives {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// DirectiveValues returns all non-empty values for a specific directive kind.
func DirectiveValues(directives []Directive, kind string) []string {
	var values []string
	for _, d := range directives {
		if d.Kind == kind && d.Value != "" {
			values = append(values, d.Value)
		}
	}
	return values
}
