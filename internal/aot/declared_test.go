package aot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iVampireSP/repokit/internal/aot"
	"github.com/iVampireSP/repokit/internal/factories"
	"github.com/iVampireSP/repokit/internal/typemeta"
	"github.com/iVampireSP/repokit/internal/wiring"
)

func TestDeclaredContributors(t *testing.T) {
	const (
		contributorType = "example.com/store/search.Contributor"
		indexed         = "example.com/store/search.Indexed"
		scored          = "example.com/store/search.Scored"
		scoredImpl      = "example.com/store/search.ScoredImpl"
	)
	reader := fixture()
	reader.Add(iface(indexed), iface(scored), class(scoredImpl))
	registry, registrations := register(t, reader, source)

	loader := factories.Static{
		wiring.FragmentsContributorKey(wiring.DefaultFactoryBeanClass): {contributorType},
		contributorType: {indexed, fragmentA, scored},
		scored:          {scoredImpl},
	}
	types, contributors := aot.DeclaredContributors(loader, reader, wiring.DefaultFactoryBeanClass, "example.com/store/other.FactoryBean")

	got, ok := types.ContributorFor(wiring.DefaultFactoryBeanClass)
	require.True(t, ok)
	assert.Equal(t, contributorType, got)
	_, ok = types.ContributorFor("example.com/store/other.FactoryBean")
	assert.False(t, ok)

	infos, err := aot.NewReader(registry, reader, aot.WithFactoryBeanTypes(types), aot.WithContributors(contributors)).
		ReadRegistrations(registrations)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	// Searchable is already a declared fragment and is not contributed twice.
	fragments := infos[0].Fragments
	require.Len(t, fragments, 5)
	assert.Equal(t, aot.Structural{Interface: iface(indexed)}, fragments[3])
	assert.Equal(t, aot.Implemented{Interface: iface(scored), Implementation: class(scoredImpl)}, fragments[4])
}

func TestDeclaredContributorReportsMissingInterface(t *testing.T) {
	const contributorType = "example.com/store/search.Contributor"
	reader := fixture()
	registry, _ := register(t, reader, source)

	loader := factories.Static{
		wiring.FragmentsContributorKey(wiring.DefaultFactoryBeanClass): {contributorType},
		contributorType: {"example.com/store/search.Missing"},
	}
	types, contributors := aot.DeclaredContributors(loader, reader, wiring.DefaultFactoryBeanClass)

	_, err := aot.NewReader(registry, reader, aot.WithFactoryBeanTypes(types), aot.WithContributors(contributors)).Read("userRepository")
	assert.ErrorIs(t, err, typemeta.ErrTypeNotFound)
}
