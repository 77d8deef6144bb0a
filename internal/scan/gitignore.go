package scan

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreRule is a single .gitignore line.
type IgnoreRule struct {
	Pattern  string
	Negation bool
	DirOnly  bool
}

// IgnoreRules keeps packages under ignored directories out of scans.
type IgnoreRules []IgnoreRule

// LoadIgnoreRules parses .gitignore from the module root. A missing file
// yields no rules.
func LoadIgnoreRules(root string) IgnoreRules {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var rules IgnoreRules
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if rule, ok := ParseIgnoreRule(sc.Text()); ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

// ParseIgnoreRule parses one .gitignore line; blanks and comments are skipped.
func ParseIgnoreRule(line string) (IgnoreRule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return IgnoreRule{}, false
	}

	rule := IgnoreRule{}
	if strings.HasPrefix(line, "!") {
		rule.Negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.DirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	rule.Pattern = line
	return rule, rule.Pattern != ""
}

// Ignores reports whether a package directory, relative to the module root,
// is ignored. The last matching rule wins, as in git.
func (rules IgnoreRules) Ignores(relDir string) bool {
	relDir = strings.Trim(filepath.ToSlash(relDir), "/")
	if relDir == "" || relDir == "." {
		return false
	}

	ignored := false
	for _, r := range rules {
		if r.matches(relDir) {
			ignored = !r.Negation
		}
	}
	return ignored
}

// matches tests the rule against the directory and each of its parents,
// since ignoring a directory ignores everything below it.
func (r IgnoreRule) matches(relDir string) bool {
	segments := strings.Split(relDir, "/")
	for i := range segments {
		prefix := strings.Join(segments[:i+1], "/")
		if r.matchOne(prefix, segments[i]) {
			return true
		}
	}
	return false
}

func (r IgnoreRule) matchOne(dir, base string) bool {
	pattern := r.Pattern
	// A slash anywhere but the end anchors the pattern to the root.
	if strings.HasPrefix(pattern, "/") || strings.Contains(pattern, "/") {
		ok, _ := path.Match(strings.TrimPrefix(pattern, "/"), dir)
		return ok
	}
	ok, _ := path.Match(pattern, base)
	return ok
}
