package aot

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"github.com/pkg/errors"
	"golang.org/x/tools/imports"

	"github.com/iVampireSP/repokit/pkg/repository"
)

// GeneratedFileName is the file Generator produces.
const GeneratedFileName = "zz_repokit_aot.go"

// MissingMetadataError reports repository information that lacks a type
// the generated code must name.
type MissingMetadataError struct {
	BeanName string
	Missing  string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("repository %s: missing %s", e.BeanName, e.Missing)
}

// GeneratedFile is one rendered source file.
type GeneratedFile struct {
	Name    string
	Content []byte
}

// Generator renders repository compositions as Go source.
type Generator struct {
	// PackageName is the package clause of the generated file.
	PackageName string
}

// NewGenerator creates a generator emitting into package pkg.
func NewGenerator(pkg string) *Generator {
	return &Generator{PackageName: pkg}
}

var compositionTemplate = template.Must(template.New("aot").Parse(`// Code generated by repokit. DO NOT EDIT.

package {{.Package}}

import "github.com/iVampireSP/repokit/pkg/repository"

// RepositoryCompositions describes every configured repository, in bean name order.
var RepositoryCompositions = []repository.Composition{
{{- range .Compositions}}
	{
		BeanName:   {{printf "%q" .BeanName}},
		Interface:  {{printf "%q" .Interface}},
		DomainType: {{printf "%q" .DomainType}},
		IDType:     {{printf "%q" .IDType}},
		BaseClass:  {{printf "%q" .BaseClass}},
		Fragments: []repository.FragmentDescriptor{
		{{- range .Fragments}}
			{Interface: {{printf "%q" .Interface}}, Implementation: {{printf "%q" .Implementation}}},
		{{- end}}
		},
	},
{{- end}}
}
`))

// Generate renders infos. Every information must carry its repository
// interface and base class; otherwise nothing is rendered.
func (g *Generator) Generate(infos []RepositoryInformation) (GeneratedFile, error) {
	for _, info := range infos {
		if info.RepositoryInterface == nil {
			return GeneratedFile{}, &MissingMetadataError{BeanName: info.BeanName, Missing: "repository interface"}
		}
		if info.BaseClass == nil {
			return GeneratedFile{}, &MissingMetadataError{BeanName: info.BeanName, Missing: "base class"}
		}
	}

	sorted := make([]RepositoryInformation, len(infos))
	copy(sorted, infos)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].BeanName < sorted[j].BeanName })

	data := struct {
		Package      string
		Compositions []repository.Composition
	}{Package: g.packageName()}
	for _, info := range sorted {
		data.Compositions = append(data.Compositions, info.Composition())
	}

	var buf bytes.Buffer
	if err := compositionTemplate.Execute(&buf, data); err != nil {
		return GeneratedFile{}, errors.Wrap(err, "render compositions")
	}
	src, err := imports.Process(GeneratedFileName, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return GeneratedFile{}, errors.Wrap(err, "format generated source")
	}
	return GeneratedFile{Name: GeneratedFileName, Content: src}, nil
}

func (g *Generator) packageName() string {
	if g.PackageName == "" {
		return "main"
	}
	return g.PackageName
}
