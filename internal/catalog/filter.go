package catalog

import (
	"iter"
	"strings"
)

// All matches any faculty or year.
const All = "all"

// Predicate is the public catalog filter. Empty Faculty or Year behave like All.
type Predicate struct {
	Faculty string
	Year    string
	Search  string
}

// Match reports whether b passes all three conditions.
func (p Predicate) Match(b Booklet) bool {
	if p.Faculty != "" && p.Faculty != All && b.Faculty != p.Faculty {
		return false
	}
	if p.Year != "" && p.Year != All && b.Year != p.Year {
		return false
	}
	if p.Search == "" {
		return true
	}
	q := strings.ToLower(p.Search)
	return strings.Contains(strings.ToLower(b.Subject), q) ||
		strings.Contains(strings.ToLower(b.Title), q)
}

// Filter yields the booklets matching p in document order. The sequence is
// lazy and can be ranged over any number of times.
func (s Settings) Filter(p Predicate) iter.Seq[Booklet] {
	return func(yield func(Booklet) bool) {
		for _, b := range s.Booklets {
			if p.Match(b) && !yield(b) {
				return
			}
		}
	}
}
