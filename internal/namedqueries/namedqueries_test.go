package namedqueries

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/wiring"
)

func TestBuildUsesDefaultLocation(t *testing.T) {
	def := NewDefinitionBuilder("queries/generic-named-queries.yaml").Build("src")

	assert.Equal(t, wiring.NamedQueriesBeanClass, def.BeanClassName)
	assert.Equal(t, beans.RoleInfrastructure, def.Role)
	assert.Equal(t, "src", def.Source)
	assert.Equal(t, []string{"queries/generic-named-queries.yaml"}, Locations(def))
}

func TestBuildWithExplicitLocations(t *testing.T) {
	def := NewDefinitionBuilder("default.yaml").SetLocations("a.yaml", "b/*.yaml").Build(nil)
	assert.Equal(t, []string{"a.yaml", "b/*.yaml"}, Locations(def))

	empty := NewDefinitionBuilder("").Build(nil)
	assert.Empty(t, Locations(empty))
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "queries"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "queries", "a.yaml"),
		[]byte("User.findByEmail: select 1\nUser.count: select 2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "queries", "b.yaml"),
		[]byte("User.count: select 3\n"), 0o644))

	queries, err := Load(root, "queries/*.yaml", "missing/*.yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"User.findByEmail": "select 1",
		"User.count":       "select 3",
	}, queries)

	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.yaml"), []byte("- not a map"), 0o644))
	_, err = Load(root, "bad.yaml")
	assert.Error(t, err)
}
