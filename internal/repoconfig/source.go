package repoconfig

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	"github.com/iVampireSP/repokit/internal/scan"
	"github.com/iVampireSP/repokit/internal/typemeta"
)

// Conventional front-end file names, relative to the module root.
const (
	GenerateFileName = "generate.go"
	YAMLFileName     = "repokit.yaml"
)

// Directive kinds understood in generate.go.
const (
	directiveRepositories = "repositories"
	directivePostfix      = "postfix"
	directiveLookup       = "lookup"
	directiveNamedQueries = "named-queries"
	directiveBaseClass    = "base-class"
	directiveFactory      = "factory"
	directiveBootstrap    = "bootstrap"
	directiveInclude      = "include"
	directiveExclude      = "exclude"
	directiveSkip         = "skip"
)

// ModulePath reads the module path from the go.mod in root.
func ModulePath(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", errors.Wrap(err, "read go.mod")
	}
	module := modfile.ModulePath(data)
	if module == "" {
		return "", errors.New("module directive not found in go.mod")
	}
	return module, nil
}

// LoadSources returns the configuration sources declared in the module at
// root: one per //repokit:repositories block in generate.go, then the
// repokit.yaml source when that file exists.
func LoadSources(root string) ([]ConfigurationSource, error) {
	module, err := ModulePath(root)
	if err != nil {
		return nil, err
	}

	var sources []ConfigurationSource
	data, err := os.ReadFile(filepath.Join(root, GenerateFileName))
	switch {
	case err == nil:
		found, err := ParseDirectiveSources(module, GenerateFileName, data)
		if err != nil {
			return nil, err
		}
		sources = append(sources, found...)
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "read %s", GenerateFileName)
	}

	data, err = os.ReadFile(filepath.Join(root, YAMLFileName))
	switch {
	case err == nil:
		src, err := ParseYAMLSource(module, YAMLFileName, data)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "read %s", YAMLFileName)
	}
	return sources, nil
}

// ParseDirectiveSources reads //repokit: lines. Each
// //repokit:repositories line starts a source; option lines that follow
// apply to it. Options before the first repositories line are an error.
//
//	//repokit:repositories internal/... pkg/store
//	//repokit:postfix Impl
//	//repokit:bootstrap lazy
//	//repokit:exclude regex .*Legacy.*
func ParseDirectiveSources(module, origin string, data []byte) ([]ConfigurationSource, error) {
	var sources []ConfigurationSource
	for i, line := range strings.Split(string(data), "\n") {
		d, ok := typemeta.ParseDirective(strings.TrimSpace(line))
		if !ok {
			continue
		}
		at := origin + ":" + strconv.Itoa(i+1)

		if d.Kind == directiveRepositories {
			src := ConfigurationSource{Origin: at}
			for _, p := range strings.Fields(d.Value) {
				src.BasePackages = append(src.BasePackages, resolvePackage(module, p))
			}
			if len(src.BasePackages) == 0 {
				src.BasePackages = []string{module}
			}
			sources = append(sources, src)
			continue
		}

		if len(sources) == 0 {
			return nil, errors.Errorf("%s: //%s%s before //%s%s", at, typemeta.DirectivePrefix, d.Kind,
				typemeta.DirectivePrefix, directiveRepositories)
		}
		if err := applyOption(&sources[len(sources)-1], module, d); err != nil {
			return nil, errors.Wrap(err, at)
		}
	}
	return sources, nil
}

func applyOption(src *ConfigurationSource, module string, d typemeta.Directive) error {
	switch d.Kind {
	case directivePostfix:
		src.ImplementationPostfix = d.Value
	case directiveLookup:
		src.QueryLookupStrategy = d.Value
	case directiveNamedQueries:
		src.NamedQueriesLocation = d.Value
	case directiveBaseClass:
		src.RepositoryBaseClass = resolveType(module, d.Value)
	case directiveFactory:
		src.RepositoryFactoryBeanClass = resolveType(module, d.Value)
	case directiveBootstrap:
		mode, err := ParseBootstrapMode(d.Value)
		if err != nil {
			return err
		}
		src.BootstrapMode = mode
	case DirectiveLazy:
		src.LazyInit = true
	case directiveInclude, directiveExclude:
		parts := strings.Fields(d.Value)
		if len(parts) != 2 {
			return errors.Errorf("//%s%s wants <type> <expression>, got %q", typemeta.DirectivePrefix, d.Kind, d.Value)
		}
		filter, err := ParseTypeFilter(module, parts[0], parts[1])
		if err != nil {
			return err
		}
		if d.Kind == directiveInclude {
			src.IncludeFilters = append(src.IncludeFilters, filter)
		} else {
			src.ExcludeFilters = append(src.ExcludeFilters, filter)
		}
	case directiveSkip:
		src.SkipPackages = append(src.SkipPackages, strings.Fields(d.Value)...)
	default:
		return errors.Errorf("unknown directive //%s%s", typemeta.DirectivePrefix, d.Kind)
	}
	return nil
}

// yamlSource is the repokit.yaml document.
type yamlSource struct {
	BasePackages        []string     `yaml:"base-packages"`
	Postfix             string       `yaml:"postfix"`
	QueryLookupStrategy string       `yaml:"query-lookup-strategy"`
	NamedQueries        string       `yaml:"named-queries"`
	BaseClass           string       `yaml:"base-class"`
	Factory             string       `yaml:"factory"`
	Bootstrap           string       `yaml:"bootstrap"`
	LazyInit            bool         `yaml:"lazy-init"`
	IncludeFilters      []yamlFilter `yaml:"include-filters"`
	ExcludeFilters      []yamlFilter `yaml:"exclude-filters"`
	SkipPackages        []string     `yaml:"skip-packages"`
}

type yamlFilter struct {
	Type       string `yaml:"type"`
	Expression string `yaml:"expression"`
}

// ParseYAMLSource reads a repokit.yaml document.
//
//	base-packages: [internal/...]
//	bootstrap: deferred
//	exclude-filters:
//	  - type: regex
//	    expression: .*Legacy.*
func ParseYAMLSource(module, origin string, data []byte) (ConfigurationSource, error) {
	var doc yamlSource
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ConfigurationSource{}, errors.Wrapf(err, "parse %s", origin)
	}

	mode, err := ParseBootstrapMode(doc.Bootstrap)
	if err != nil {
		return ConfigurationSource{}, errors.Wrap(err, origin)
	}

	src := ConfigurationSource{
		Origin:                origin,
		ImplementationPostfix: doc.Postfix,
		QueryLookupStrategy:   doc.QueryLookupStrategy,
		NamedQueriesLocation:  doc.NamedQueries,
		BootstrapMode:         mode,
		LazyInit:              doc.LazyInit,
		SkipPackages:          doc.SkipPackages,
	}
	if doc.BaseClass != "" {
		src.RepositoryBaseClass = resolveType(module, doc.BaseClass)
	}
	if doc.Factory != "" {
		src.RepositoryFactoryBeanClass = resolveType(module, doc.Factory)
	}
	for _, p := range doc.BasePackages {
		src.BasePackages = append(src.BasePackages, resolvePackage(module, p))
	}
	if len(src.BasePackages) == 0 {
		src.BasePackages = []string{module}
	}
	for _, f := range doc.IncludeFilters {
		filter, err := ParseTypeFilter(module, f.Type, f.Expression)
		if err != nil {
			return ConfigurationSource{}, errors.Wrap(err, origin)
		}
		src.IncludeFilters = append(src.IncludeFilters, filter)
	}
	for _, f := range doc.ExcludeFilters {
		filter, err := ParseTypeFilter(module, f.Type, f.Expression)
		if err != nil {
			return ConfigurationSource{}, errors.Wrap(err, origin)
		}
		src.ExcludeFilters = append(src.ExcludeFilters, filter)
	}
	return src, nil
}

// ParseTypeFilter builds a filter of kind directive, assignable, regex or suffix.
func ParseTypeFilter(module, kind, expression string) (scan.TypeFilter, error) {
	switch kind {
	case "directive":
		return scan.DirectiveFilter{Kind: expression}, nil
	case "assignable":
		return scan.AssignableFilter{Target: resolveType(module, expression)}, nil
	case "regex":
		re, err := regexp.Compile(expression)
		if err != nil {
			return nil, errors.Wrapf(err, "regex filter %q", expression)
		}
		return scan.RegexFilter{Pattern: re}, nil
	case "suffix":
		return scan.SuffixFilter{Suffix: expression}, nil
	}
	return nil, errors.Errorf("unknown filter type %q (want directive, assignable, regex or suffix)", kind)
}

// resolvePackage turns a module-relative package pattern into an import
// path: "./internal/..." → "<module>/internal". Paths already qualified by
// the module or by a domain stay as they are.
func resolvePackage(module, p string) string {
	p = strings.TrimSuffix(strings.TrimPrefix(p, "./"), "/...")
	switch {
	case p == "" || p == "." || p == "...":
		return module
	case p == module || strings.HasPrefix(p, module+"/"):
		return p
	case strings.Contains(strings.SplitN(p, "/", 2)[0], "."):
		return p
	}
	return module + "/" + p
}

// resolveType qualifies a "pkg/path.Type" name against the module.
func resolveType(module, name string) string {
	pkg := typemeta.PackageName(name)
	if pkg == "" {
		return name
	}
	return resolvePackage(module, pkg) + "." + typemeta.LocalName(name)
}
