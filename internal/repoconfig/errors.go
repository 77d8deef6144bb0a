package repoconfig

import (
	"fmt"
	"sort"
	"strings"
)

// AmbiguousImplementationError reports several implementation candidates
// where exactly one was expected.
type AmbiguousImplementationError struct {
	Interface  string
	Candidates []string // qualified class names, sorted
}

func newAmbiguousImplementationError(iface string, candidates []string) *AmbiguousImplementationError {
	names := append([]string(nil), candidates...)
	sort.Strings(names)
	return &AmbiguousImplementationError{Interface: iface, Candidates: names}
}

func (e *AmbiguousImplementationError) Error() string {
	return fmt.Sprintf("ambiguous custom implementations detected for %s: found %s but expected a single implementation",
		e.Interface, strings.Join(e.Candidates, ", "))
}

// UnsupportedRepositoryError is returned when a module refuses a repository
// it cannot configure, such as a reactive repository in a blocking module.
type UnsupportedRepositoryError struct {
	Module     string
	Repository string
	Reason     string
}

func (e *UnsupportedRepositoryError) Error() string {
	return fmt.Sprintf("%s repositories are not supported by %s; offending repository is %s",
		e.Reason, e.Module, e.Repository)
}
