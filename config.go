package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/iVampireSP/repokit/internal/factories"
	"github.com/iVampireSP/repokit/internal/repoconfig"
)

// Config holds the repokit configuration of one module, populated from
// go.mod, generate.go directives, repokit.yaml and factories files.
type Config struct {
	Module    string
	Root      string
	Sources   []repoconfig.ConfigurationSource
	Factories *factories.FileLoader
	Extension repoconfig.Extension
}

// BuildConfig builds a Config for the module at moduleRoot. extra names an
// additional YAML source file; it may be empty.
func BuildConfig(moduleRoot, extra string) (*Config, error) {
	module, err := repoconfig.ModulePath(moduleRoot)
	if err != nil {
		return nil, err
	}

	sources, err := repoconfig.LoadSources(moduleRoot)
	if err != nil {
		return nil, err
	}
	if extra != "" {
		src, err := loadExtraSource(module, moduleRoot, extra)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return nil, errors.Errorf("no repositories configured: add //repokit:repositories to %s or create %s",
			repoconfig.GenerateFileName, repoconfig.YAMLFileName)
	}

	files, err := factories.Discover(moduleRoot)
	if err != nil {
		return nil, err
	}
	loader, err := factories.LoadFiles(files...)
	if err != nil {
		return nil, err
	}

	return &Config{
		Module:    module,
		Root:      moduleRoot,
		Sources:   sources,
		Factories: loader,
		Extension: repoconfig.NewGenericExtension(),
	}, nil
}

func loadExtraSource(module, root, path string) (repoconfig.ConfigurationSource, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return repoconfig.ConfigurationSource{}, errors.Wrap(err, "read config")
	}
	origin, err := filepath.Rel(root, path)
	if err != nil {
		origin = path
	}
	return repoconfig.ParseYAMLSource(module, origin, data)
}
