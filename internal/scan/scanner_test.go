package scan

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iVampireSP/repokit/internal/typemeta"
)

func fixtureReader() *typemeta.StaticReader {
	return typemeta.NewStaticReader(
		&typemeta.TypeMetadata{Name: "example.com/app/repository.Repository", IsInterface: true,
			Directives: []typemeta.Directive{{Kind: typemeta.DirectiveNoRepositoryBean}}},
		&typemeta.TypeMetadata{Name: "example.com/app/repository.CrudRepository", IsInterface: true,
			SuperInterfaces: []string{"example.com/app/repository.Repository[T, ID]"}},
		&typemeta.TypeMetadata{Name: "example.com/app/user.UserRepository", IsInterface: true,
			SuperInterfaces: []string{"example.com/app/repository.CrudRepository[example.com/app/user.User, int64]"}},
		&typemeta.TypeMetadata{Name: "example.com/app/user.UserRepositoryImpl"},
		&typemeta.TypeMetadata{Name: "example.com/app/user/legacy.UserRepositoryImpl"},
		&typemeta.TypeMetadata{Name: "example.com/app/user/gen.UserRepositoryImpl"},
		&typemeta.TypeMetadata{Name: "example.com/app/user.Hidden",
			Directives: []typemeta.Directive{{Kind: typemeta.DirectiveNoRepositoryBean}}},
	)
}

func candidateNames(cs []Candidate) []string {
	var names []string
	for _, c := range cs {
		names = append(names, c.TypeName())
	}
	return names
}

func TestFindCandidates(t *testing.T) {
	s := NewPackageScanner(fixtureReader(),
		WithModule("example.com/app"),
		WithExcludedPackages("./user/legacy/..."),
		WithIgnoreRules(IgnoreRules{{Pattern: "gen"}}),
	)

	found, err := s.FindCandidates("example.com/app/user", nil, []TypeFilter{NoRepositoryBean})
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/app/user.UserRepositoryImpl"}, candidateNames(found))

	found, err = s.FindCandidates("example.com/app", []TypeFilter{SuffixFilter{Suffix: "Impl"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/app/user.UserRepositoryImpl"}, candidateNames(found))
}

func TestFindInterfaces(t *testing.T) {
	s := NewPackageScanner(fixtureReader())

	found, err := s.FindInterfaces("example.com/app",
		[]TypeFilter{AssignableFilter{Target: "example.com/app/repository.Repository"}},
		[]TypeFilter{NoRepositoryBean})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"example.com/app/repository.CrudRepository",
		"example.com/app/user.UserRepository",
	}, candidateNames(found))
}

func TestFilters(t *testing.T) {
	r := fixtureReader()
	repo, err := r.Metadata("example.com/app/user.UserRepository")
	require.NoError(t, err)

	ok, err := RegexFilter{Pattern: regexp.MustCompile(`/user\.`)}.Match(repo, r)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ConcreteFilter.Match(repo, r)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = AssignableFilter{Target: "example.com/app/user.Other"}.Match(repo, r)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmbedsReportsUnreadableSuperInterface(t *testing.T) {
	r := typemeta.NewStaticReader(&typemeta.TypeMetadata{
		Name: "a.Broken", IsInterface: true, SuperInterfaces: []string{"a.Missing"},
	})
	md, _ := r.Metadata("a.Broken")
	_, err := Embeds(md, "a.Target", r)
	assert.ErrorIs(t, err, typemeta.ErrTypeNotFound)
}

func TestIgnoreRules(t *testing.T) {
	var rules IgnoreRules
	for _, line := range []string{"# comment", "", "gen/", "/vendor", "internal/tmp*", "!gen/keep"} {
		if r, ok := ParseIgnoreRule(line); ok {
			rules = append(rules, r)
		}
	}
	require.Len(t, rules, 4)

	tests := map[string]bool{
		"gen":                 true,
		"user/gen":            true,
		"user/gen/deep":       true,
		"gen/keep":            false,
		"vendor/x":            true,
		"pkg/vendor":          false,
		"internal/tmpdata":    true,
		"internal/repository": false,
		"":                    false,
	}
	for dir, want := range tests {
		assert.Equal(t, want, rules.Ignores(dir), "Ignores(%q)", dir)
	}
}
