package typemeta

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"
)

// loadMode is the go/packages mode needed to see declarations and doc comments.
const loadMode = packages.NeedTypes | packages.NeedSyntax | packages.NeedName |
	packages.NeedFiles | packages.NeedImports

// PackagesReader reads type metadata by loading Go packages from source.
// Loaded packages are kept for the lifetime of the reader.
type PackagesReader struct {
	dir    string
	loaded map[string]*packages.Package // import path → package
}

// NewPackagesReader creates a reader that resolves patterns relative to dir
// (normally the module root).
func NewPackagesReader(dir string) *PackagesReader {
	return &PackagesReader{
		dir:    dir,
		loaded: make(map[string]*packages.Package),
	}
}

// Metadata implements Reader.
func (r *PackagesReader) Metadata(name string) (*TypeMetadata, error) {
	origin := OriginName(name)
	pkgPath := PackageName(origin)
	if pkgPath == "" {
		return nil, errors.Wrap(ErrTypeNotFound, name)
	}

	pkg, ok := r.loaded[pkgPath]
	if !ok {
		pkgs, err := r.load(pkgPath)
		if err != nil {
			return nil, &MetadataReadError{Name: name, Err: err}
		}
		if len(pkgs) == 0 {
			return nil, errors.Wrap(ErrTypeNotFound, name)
		}
		pkg = pkgs[0]
	}

	md := describe(pkg, LocalName(origin), docIndex(pkg))
	if md == nil {
		return nil, errors.Wrap(ErrTypeNotFound, name)
	}
	return md, nil
}

// TypesIn implements Lister. Every named type declared at package level is
// listed, exported or not.
func (r *PackagesReader) TypesIn(basePackage string) ([]*TypeMetadata, error) {
	pattern := strings.TrimSuffix(basePackage, "/...") + "/..."
	pkgs, err := r.load(pattern)
	if err != nil {
		return nil, &MetadataReadError{Name: basePackage, Err: err}
	}

	var found []*TypeMetadata
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}
		docs := docIndex(pkg)
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			if md := describe(pkg, name, docs); md != nil {
				found = append(found, md)
			}
		}
	}
	SortByName(found)
	return found, nil
}

// load runs go/packages for the patterns and records every package it returns.
func (r *PackagesReader) load(patterns ...string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: loadMode,
		Dir:  r.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "load packages")
	}

	var loadErrs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
	}
	if len(loadErrs) > 0 {
		return nil, errors.Errorf("package errors:\n  %s", strings.Join(loadErrs, "\n  "))
	}

	for _, pkg := range pkgs {
		r.loaded[pkg.PkgPath] = pkg
	}
	return pkgs, nil
}

// docIndex maps type names to their doc comments. A lone spec in a
// parenthesis-free declaration takes the declaration's doc.
func docIndex(pkg *packages.Package) map[string]*ast.CommentGroup {
	docs := make(map[string]*ast.CommentGroup)
	for _, f := range pkg.Syntax {
		for _, decl := range f.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				docs[ts.Name.Name] = doc
			}
		}
	}
	return docs
}

// describe builds metadata for a package-level type name, or nil when the
// name is not a type.
func describe(pkg *packages.Package, name string, docs map[string]*ast.CommentGroup) *TypeMetadata {
	if pkg.Types == nil {
		return nil
	}
	obj, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName)
	if !ok {
		return nil
	}

	md := &TypeMetadata{
		Name:       pkg.PkgPath + "." + name,
		Directives: ParseDirectives(docs[name]),
	}

	if named, isNamed := obj.Type().(*types.Named); isNamed {
		for i := 0; i < named.TypeParams().Len(); i++ {
			md.TypeParams = append(md.TypeParams, named.TypeParams().At(i).Obj().Name())
		}
	}

	iface, ok := obj.Type().Underlying().(*types.Interface)
	if !ok {
		return md
	}
	md.IsInterface = true

	for i := 0; i < iface.NumEmbeddeds(); i++ {
		embedded := iface.EmbeddedType(i)
		// Only named interfaces count; unions and ~T terms are constraints.
		if _, isIface := embedded.Underlying().(*types.Interface); !isIface {
			continue
		}
		if !isNamed(embedded) {
			continue
		}
		md.SuperInterfaces = append(md.SuperInterfaces, types.TypeString(embedded, nil))
	}

	for i := 0; i < iface.NumMethods(); i++ {
		fn := iface.Method(i)
		sig := fn.Type().(*types.Signature)
		m := Method{Name: fn.Name()}
		for j := 0; j < sig.Results().Len(); j++ {
			m.Results = append(m.Results, types.TypeString(sig.Results().At(j).Type(), nil))
		}
		md.Methods = append(md.Methods, m)
	}
	return md
}

func isNamed(t types.Type) bool {
	switch t.(type) {
	case *types.Named, *types.Alias:
		return true
	}
	return false
}
