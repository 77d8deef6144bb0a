package typemeta

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrTypeNotFound is returned (wrapped) when a reader has no type under the requested name.
var ErrTypeNotFound = errors.New("type not found")

// TypeMetadata describes a single named type.
type TypeMetadata struct {
	Name            string      // qualified name, e.g. "example.com/app/user.UserRepository"
	IsInterface     bool        // underlying type is an interface
	TypeParams      []string    // type parameter names of a generic declaration
	SuperInterfaces []string    // embedded interfaces in declaration order, with type arguments
	Directives      []Directive // parsed //repokit: directives from the doc comment
	Methods         []Method    // interface methods (explicit and embedded)
}

// Method describes an interface method by name and result types.
type Method struct {
	Name    string
	Results []string
}

// ReturnsReceiveChannel reports whether the first result is a receive-only channel.
func (m Method) ReturnsReceiveChannel() bool {
	return len(m.Results) > 0 && strings.HasPrefix(m.Results[0], "<-chan ")
}

// PackagePath returns the import path the type is declared in.
func (m *TypeMetadata) PackagePath() string {
	return PackageName(m.Name)
}

// HasDirective reports whether the type's doc comment carries the directive kind.
func (m *TypeMetadata) HasDirective(kind string) bool {
	return HasDirective(m.Directives, kind)
}

// Reader returns metadata for a type by qualified name.
// Implementations return an error wrapping ErrTypeNotFound for unknown names
// and a *MetadataReadError when the declaring package cannot be read.
type Reader interface {
	Metadata(name string) (*TypeMetadata, error)
}

// Lister enumerates the types declared in a package and all packages nested under it.
type Lister interface {
	TypesIn(basePackage string) ([]*TypeMetadata, error)
}

// ReadLister is a Reader that can also enumerate packages.
type ReadLister interface {
	Reader
	Lister
}

// MetadataReadError reports a package that could not be loaded or parsed.
type MetadataReadError struct {
	Name string
	Err  error
}

func (e *MetadataReadError) Error() string {
	return "read metadata for " + e.Name + ": " + e.Err.Error()
}

func (e *MetadataReadError) Unwrap() error { return e.Err }

// OriginName strips generic type arguments: "p.Repository[p.User, int64]" → "p.Repository".
func OriginName(name string) string {
	if idx := strings.IndexByte(name, '['); idx >= 0 {
		return name[:idx]
	}
	return name
}

// TypeArgs returns the top-level type arguments of an instantiated name.
// "p.Repository[p.User, map[string]int]" → ["p.User", "map[string]int"].
func TypeArgs(name string) []string {
	start := strings.IndexByte(name, '[')
	if start < 0 || !strings.HasSuffix(name, "]") {
		return nil
	}
	inner := name[start+1 : len(name)-1]

	var args []string
	depth, last := 0, 0
	for i, r := range inner {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[last:i]))
				last = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(inner[last:]))
}

// PackageName returns the import path part of a qualified name.
// Names without a package qualifier (predeclared types) yield "".
func PackageName(name string) string {
	name = strings.TrimPrefix(OriginName(name), "*")
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return ""
}

// LocalName returns the unqualified type name: the part after the last dot.
func LocalName(name string) string {
	name = strings.TrimPrefix(OriginName(name), "*")
	return name[strings.LastIndexByte(name, '.')+1:]
}

// Decapitalize lower-cases the first rune unless the first two runes are both
// upper case, so "UserRepositoryImpl" → "userRepositoryImpl" and "URLRepository" stays.
func Decapitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	if second, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsUpper(first) && unicode.IsUpper(second) {
		return s
	}
	return string(unicode.ToLower(first)) + s[size:]
}

// InPackage reports whether pkg equals base or is nested below it.
// Containment is decided on path segments, so "a/pkgx" is not inside "a/pkg".
func InPackage(pkg, base string) bool {
	base = strings.TrimSuffix(base, "/...")
	if base == "" || pkg == base {
		return true
	}
	return strings.HasPrefix(pkg, base+"/")
}

// SortByName orders metadata by qualified name.
func SortByName(mds []*TypeMetadata) {
	sort.Slice(mds, func(i, j int) bool { return mds[i].Name < mds[j].Name })
}
