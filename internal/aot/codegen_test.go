package aot_test

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iVampireSP/repokit/internal/aot"
	"github.com/iVampireSP/repokit/internal/typemeta"
	"github.com/iVampireSP/repokit/internal/wiring"
)

func TestGenerateRendersCompositions(t *testing.T) {
	reader := fixture()
	registry, registrations := register(t, reader, source)
	infos, err := aot.NewReader(registry, reader).ReadRegistrations(registrations)
	require.NoError(t, err)

	file, err := aot.NewGenerator("app").Generate(infos)
	require.NoError(t, err)
	assert.Equal(t, aot.GeneratedFileName, file.Name)

	content := string(file.Content)
	assert.True(t, strings.HasPrefix(content, "// Code generated by repokit. DO NOT EDIT."))
	assert.Contains(t, content, "package app\n")
	assert.Contains(t, content, `BeanName:   "userRepository",`)
	assert.Contains(t, content, `IDType:     "int64",`)
	assert.Contains(t, content, `{Interface: "", Implementation: "`+userImpl+`"}`)
	assert.Contains(t, content, `{Interface: "`+fragmentA+`", Implementation: "`+fragmentAImpl+`"}`)
	assert.Less(t, strings.Index(content, fragmentAImpl), strings.Index(content, fragmentBImpl))

	_, err = parser.ParseFile(token.NewFileSet(), file.Name, file.Content, parser.AllErrors)
	assert.NoError(t, err)
}

func TestGenerateOrdersByBeanName(t *testing.T) {
	base := &typemeta.TypeMetadata{Name: wiring.DefaultBaseClass}
	infos := []aot.RepositoryInformation{
		{BeanName: "zebraRepository", RepositoryInterface: iface("example.com/app.ZebraRepository"), BaseClass: base},
		{BeanName: "antRepository", RepositoryInterface: iface("example.com/app.AntRepository"), BaseClass: base},
	}

	file, err := aot.NewGenerator("").Generate(infos)
	require.NoError(t, err)
	content := string(file.Content)
	assert.Contains(t, content, "package main\n")
	assert.Less(t, strings.Index(content, "antRepository"), strings.Index(content, "zebraRepository"))
	assert.Equal(t, "zebraRepository", infos[0].BeanName)
}

func TestGenerateRequiresMetadata(t *testing.T) {
	base := &typemeta.TypeMetadata{Name: wiring.DefaultBaseClass}
	tests := map[string]aot.RepositoryInformation{
		"repository interface": {BeanName: "userRepository", BaseClass: base},
		"base class":           {BeanName: "userRepository", RepositoryInterface: iface(userRepository)},
	}
	for missing, info := range tests {
		t.Run(missing, func(t *testing.T) {
			_, err := aot.NewGenerator("app").Generate([]aot.RepositoryInformation{info})
			var mm *aot.MissingMetadataError
			require.True(t, errors.As(err, &mm))
			assert.Equal(t, missing, mm.Missing)
			assert.Equal(t, "userRepository", mm.BeanName)
		})
	}
}
