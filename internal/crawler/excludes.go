package crawler

import "strings"

// DefaultExcludes cut version-control metadata from every walk.
var DefaultExcludes = []string{"/.git/", "/.svn/", "/CVS/"}

// ParseList splits a comma-separated exclude list, dropping empty members.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Merge returns DefaultExcludes followed by extra, without duplicates.
// User excludes extend the built-ins and never replace them.
func Merge(extra ...[]string) []string {
	seen := make(map[string]bool, len(DefaultExcludes))
	out := make([]string, 0, len(DefaultExcludes))

	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, s := range DefaultExcludes {
		add(s)
	}
	for _, list := range extra {
		for _, s := range list {
			add(strings.TrimSpace(s))
		}
	}
	return out
}

// matchesAny reports whether rendered contains any exclude substring.
func matchesAny(rendered string, excludes []string) bool {
	for _, ex := range excludes {
		if strings.Contains(rendered, ex) {
			return true
		}
	}
	return false
}
