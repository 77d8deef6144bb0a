package repoconfig

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/scan"
	"github.com/iVampireSP/repokit/internal/typemeta"
)

// countingScanner records how often the wrapped scanner is asked.
type countingScanner struct {
	scan.Scanner
	calls int
}

func (s *countingScanner) FindCandidates(base string, include, exclude []scan.TypeFilter) ([]scan.Candidate, error) {
	s.calls++
	return s.Scanner.FindCandidates(base, include, exclude)
}

func fooLookup(basePackages ...string) ImplementationLookup {
	return NewImplementationDetectionConfiguration("Impl", basePackages, nil, nil).ForFragment("c/api.Foo")
}

func TestDetectSingleCandidate(t *testing.T) {
	reader := typemeta.NewStaticReader(class("a/pkg.FooImpl"), class("a/pkg.BarImpl"), class("a/pkg/sub.Other"))
	detector := NewImplementationDetector(scan.NewPackageScanner(reader), reader)

	def, err := detector.DetectCustomImplementation(fooLookup("a/pkg"))
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "a/pkg.FooImpl", def.BeanClassName)
	assert.NotNil(t, def.Metadata)
}

func TestDetectNothingIsNotAnError(t *testing.T) {
	reader := typemeta.NewStaticReader(class("a/pkg.BarImpl"))
	detector := NewImplementationDetector(scan.NewPackageScanner(reader), reader)

	def, err := detector.DetectCustomImplementation(fooLookup("a/pkg"))
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestDetectAmbiguousImplementations(t *testing.T) {
	reader := typemeta.NewStaticReader(class("b/pkg.FooImpl"), class("a/pkg.FooImpl"))
	detector := NewImplementationDetector(scan.NewPackageScanner(reader), reader)

	_, err := detector.DetectCustomImplementation(fooLookup("a/pkg", "b/pkg"))
	var ambiguous *AmbiguousImplementationError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, []string{"a/pkg.FooImpl", "b/pkg.FooImpl"}, ambiguous.Candidates)
	assert.Contains(t, err.Error(), "found a/pkg.FooImpl, b/pkg.FooImpl but expected a single implementation")
}

func TestDetectTieBreakOnBeanName(t *testing.T) {
	reader := typemeta.NewStaticReader(
		class("a/pkg.FooImpl"),
		class("b/pkg.FooImpl", directive(beans.DirectiveBeanName, "legacyFoo")),
	)
	detector := NewImplementationDetector(scan.NewPackageScanner(reader), reader)

	def, err := detector.DetectCustomImplementation(fooLookup("a/pkg", "b/pkg"))
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "a/pkg.FooImpl", def.BeanClassName)
}

func TestDetectTieBreakCanNarrowToNothing(t *testing.T) {
	reader := typemeta.NewStaticReader(
		class("a/pkg.FooImpl", directive(beans.DirectiveBeanName, "fooA")),
		class("b/pkg.FooImpl", directive(beans.DirectiveBeanName, "fooB")),
	)
	detector := NewImplementationDetector(scan.NewPackageScanner(reader), reader)

	def, err := detector.DetectCustomImplementation(fooLookup("a/pkg", "b/pkg"))
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestDetectSkipsNoRepositoryBeanAndForeignPackages(t *testing.T) {
	reader := typemeta.NewStaticReader(
		class("a/pkg.FooImpl"),
		class("a/pkg/gen.FooImpl", directive(noRepositoryBean, "")),
		class("a/pkgx.FooImpl"),
	)
	detector := NewImplementationDetector(scan.NewPackageScanner(reader), reader)

	def, err := detector.DetectCustomImplementation(fooLookup("a/pkg"))
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "a/pkg.FooImpl", def.BeanClassName)
}

func TestDetectFindsImplementationInSubPackage(t *testing.T) {
	reader := typemeta.NewStaticReader(class("a/pkg/impl.FooImpl"))
	detector := NewImplementationDetector(scan.NewPackageScanner(reader), reader)

	def, err := detector.DetectCustomImplementation(fooLookup("a/pkg"))
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "a/pkg/impl.FooImpl", def.BeanClassName)
}

func TestEagerDetectorScansOnce(t *testing.T) {
	reader := typemeta.NewStaticReader(class("a/pkg.FooImpl"), class("a/pkg.BarImpl"))
	scanner := &countingScanner{Scanner: scan.NewPackageScanner(reader)}
	cfg := NewImplementationDetectionConfiguration("Impl", []string{"a/pkg"}, nil, nil)

	detector, err := NewEagerImplementationDetector(scanner, reader, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, scanner.calls)

	foo, err := detector.DetectCustomImplementation(cfg.ForFragment("c/api.Foo"))
	require.NoError(t, err)
	bar, err := detector.DetectCustomImplementation(cfg.ForFragment("c/api.Bar"))
	require.NoError(t, err)
	missing, err := detector.DetectCustomImplementation(cfg.ForFragment("c/api.Baz"))
	require.NoError(t, err)

	assert.Equal(t, "a/pkg.FooImpl", foo.BeanClassName)
	assert.Equal(t, "a/pkg.BarImpl", bar.BeanClassName)
	assert.Nil(t, missing)
	assert.Equal(t, 1, scanner.calls)
}

func TestDetectPropagatesScanErrors(t *testing.T) {
	scanner := scan.NewPackageScanner(failingLister{})
	detector := NewImplementationDetector(scanner, failingLister{})

	_, err := detector.DetectCustomImplementation(fooLookup("a/pkg"))
	var readErr *typemeta.MetadataReadError
	assert.True(t, errors.As(err, &readErr))
}

type failingLister struct{}

func (failingLister) Metadata(name string) (*typemeta.TypeMetadata, error) {
	return nil, &typemeta.MetadataReadError{Name: name, Err: errors.New("malformed source")}
}

func (failingLister) TypesIn(base string) ([]*typemeta.TypeMetadata, error) {
	return nil, &typemeta.MetadataReadError{Name: base, Err: errors.New("malformed source")}
}
