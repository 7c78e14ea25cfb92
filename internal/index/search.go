package index

import (
	"regexp"
	"sort"
	"strings"
)

// Options configures a search
type Options struct {
	CaseSensitive bool
	// Bucket restricts results to one bucket when non-empty
	Bucket string
}

// Matcher decides whether a package name or binary name matches a query.
// Plain literal queries use substring matching; queries carrying regex
// metacharacters compile as regular expressions. A query that fails to
// compile falls back to literal matching rather than erroring.
type Matcher struct {
	query         string
	literal       bool
	caseSensitive bool
	re            *regexp.Regexp
}

// NewMatcher builds a matcher for the query
func NewMatcher(query string, caseSensitive bool) *Matcher {
	m := &Matcher{
		query:         query,
		caseSensitive: caseSensitive,
		literal:       regexp.QuoteMeta(query) == query,
	}

	if !m.literal {
		pattern := query
		if !caseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			m.literal = true
		} else {
			m.re = re
		}
	}

	if m.literal && !caseSensitive {
		m.query = strings.ToLower(m.query)
	}

	return m
}

// Literal reports whether the matcher runs in plain-substring mode
func (m *Matcher) Literal() bool {
	return m.literal
}

// Match reports whether s matches the query
func (m *Matcher) Match(s string) bool {
	if m.literal {
		if !m.caseSensitive {
			s = strings.ToLower(s)
		}
		return strings.Contains(s, m.query)
	}
	return m.re.MatchString(s)
}

// MatchExact reports whether s equals the query (folded unless
// case-sensitive); only meaningful for literal queries
func (m *Matcher) MatchExact(s string) bool {
	if m.caseSensitive {
		return s == m.query
	}
	return strings.ToLower(s) == m.query
}

// Search returns the packages whose name or any binary name matches the
// query, deduplicated by (bucket, name). For a plain literal query longer
// than one character, exact-name matches rank first; ties break by
// case-insensitive name.
func (i *Index) Search(query string, opts Options) []Entry {
	i.mu.Lock()
	i.loadLocked()
	buckets := i.doc.Buckets
	i.mu.Unlock()

	m := NewMatcher(query, opts.CaseSensitive)

	var matches []Entry
	seen := make(map[string]bool)

	for _, cache := range buckets {
		for _, e := range cache.Packages {
			if opts.Bucket != "" && !strings.EqualFold(e.Bucket, opts.Bucket) {
				continue
			}
			if !entryMatches(m, e) {
				continue
			}

			key := strings.ToLower(e.Bucket) + "/" + strings.ToLower(e.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			matches = append(matches, e)
		}
	}

	rankExact := m.Literal() && len(query) > 1
	sort.SliceStable(matches, func(a, b int) bool {
		if rankExact {
			ea, eb := m.MatchExact(matches[a].Name), m.MatchExact(matches[b].Name)
			if ea != eb {
				return ea
			}
		}
		na, nb := strings.ToLower(matches[a].Name), strings.ToLower(matches[b].Name)
		if na != nb {
			return na < nb
		}
		return matches[a].Bucket < matches[b].Bucket
	})

	return matches
}

// entryMatches reports whether the entry's name or any of its binaries
// matches
func entryMatches(m *Matcher, e Entry) bool {
	if m.Match(e.Name) {
		return true
	}
	for _, bin := range e.Binaries {
		if m.Match(bin) {
			return true
		}
	}
	return false
}
