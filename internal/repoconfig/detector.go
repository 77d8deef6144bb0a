package repoconfig

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/iVampireSP/repokit/internal/beans"
	"github.com/iVampireSP/repokit/internal/scan"
	"github.com/iVampireSP/repokit/internal/typemeta"
)

// ImplementationDetector finds the implementation class of an interface by
// naming convention.
type ImplementationDetector struct {
	scanner scan.Scanner
	reader  typemeta.Reader

	// universe is the candidate set scanned once up front when eager is set.
	eager    bool
	universe []*beans.Definition
}

// NewImplementationDetector creates a detector that scans per lookup.
func NewImplementationDetector(scanner scan.Scanner, reader typemeta.Reader) *ImplementationDetector {
	return &ImplementationDetector{scanner: scanner, reader: reader}
}

// NewEagerImplementationDetector scans every type ending in the configured
// postfix once and answers all later lookups from that set.
func NewEagerImplementationDetector(scanner scan.Scanner, reader typemeta.Reader, cfg ImplementationDetectionConfiguration) (*ImplementationDetector, error) {
	universe, err := findCandidates(scanner, cfg.BasePackages(), cfg.Postfix(), cfg.ExcludeFilters())
	if err != nil {
		return nil, err
	}
	return &ImplementationDetector{scanner: scanner, reader: reader, eager: true, universe: universe}, nil
}

// DetectCustomImplementation returns the single implementation matching the
// lookup, nil when there is none, or *AmbiguousImplementationError when
// several remain after the bean-name tie-break.
func (d *ImplementationDetector) DetectCustomImplementation(lookup ImplementationLookup) (*beans.Definition, error) {
	pool := d.universe
	if !d.eager {
		var err error
		pool, err = findCandidates(d.scanner, lookup.BasePackages(), lookup.Postfix(), lookup.ExcludeFilters())
		if err != nil {
			return nil, err
		}
	}

	var matching []*beans.Definition
	for _, def := range pool {
		ok, err := lookup.Matches(def, d.reader)
		if err != nil {
			return nil, errors.Wrapf(err, "match implementation candidate %s", def.BeanClassName)
		}
		if ok {
			matching = append(matching, def)
		}
	}
	return selectImplementation(lookup, matching)
}

// selectImplementation applies the disambiguation rules: one candidate wins,
// none is no implementation, several are narrowed to the expected bean name
// and fail if that still leaves more than one.
func selectImplementation(lookup ImplementationLookup, candidates []*beans.Definition) (*beans.Definition, error) {
	if len(candidates) > 1 {
		var narrowed []*beans.Definition
		for _, def := range candidates {
			if lookup.HasMatchingBeanName(def) {
				narrowed = append(narrowed, def)
			}
		}
		candidates = narrowed
	}

	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return candidates[0], nil
	}

	names := make([]string, 0, len(candidates))
	for _, def := range candidates {
		names = append(names, def.BeanClassName)
	}
	return nil, newAmbiguousImplementationError(lookup.InterfaceName(), names)
}

// findCandidates scans the base packages for concrete types ending in
// postfix. Types reachable from several overlapping base packages appear once.
func findCandidates(scanner scan.Scanner, basePackages []string, postfix string, exclude []scan.TypeFilter) ([]*beans.Definition, error) {
	include := []scan.TypeFilter{scan.SuffixFilter{Suffix: postfix}}

	seen := make(map[string]bool)
	var defs []*beans.Definition
	for _, base := range basePackages {
		candidates, err := scanner.FindCandidates(base, include, exclude)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			if seen[c.TypeName()] {
				continue
			}
			seen[c.TypeName()] = true

			def := beans.NewDefinition(c.TypeName())
			def.Metadata = c.Metadata
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].BeanClassName < defs[j].BeanClassName })
	return defs, nil
}
