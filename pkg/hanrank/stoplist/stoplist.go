// Package stoplist holds the curated stop-word set and the per-title token
// filter and selector built on it.
package stoplist

import (
	"sort"
	"unicode"

	"github.com/cognicore/hanrank/pkg/hanrank/span"
)

// Set is an immutable stop-word set. Matching is exact and case-sensitive.
type Set struct {
	stops map[string]struct{}
}

// NewSet creates a set from words. Empty strings are ignored.
func NewSet(words []string) *Set {
	stops := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		stops[w] = struct{}{}
	}
	return &Set{stops: stops}
}

// IsStop checks if a token is a stopword
func (s *Set) IsStop(token string) bool {
	if s == nil {
		return false
	}
	_, ok := s.stops[token]
	return ok
}

// Len returns the number of stop words.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.stops)
}

// All returns all stopwords, sorted.
func (s *Set) All() []string {
	if s == nil {
		return nil
	}
	result := make([]string, 0, len(s.stops))
	for w := range s.stops {
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}

// Item is a token as the filter sees it: the surface text and the masked view
// of the span it was taken from. An empty View means the token was never
// located in the title and is judged by Text alone.
type Item struct {
	Text string
	View string
}

// MinMeaningful is the minimum number of letters or digits a token must keep
// once masking sentinels are removed.
const MinMeaningful = 2

// Filter removes stop words and masking artifacts, then drops duplicates
// keeping the first occurrence. Order is preserved.
func (s *Set) Filter(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if s.IsStop(it.Text) {
			continue
		}
		if IsArtifact(it) {
			continue
		}
		if _, dup := seen[it.Text]; dup {
			continue
		}
		seen[it.Text] = struct{}{}
		out = append(out, it)
	}
	return out
}

// IsArtifact reports whether the item is wholly masked or keeps fewer than
// MinMeaningful characters after its sentinels are stripped.
func IsArtifact(it Item) bool {
	view := it.View
	if view == "" {
		view = it.Text
	}
	if meaningful(span.StripSentinel(view)) < MinMeaningful {
		return true
	}
	return meaningful(span.StripSentinel(it.Text)) < MinMeaningful
}

// Select keeps the first n items. n <= 0 keeps nothing.
func Select(items []Item, n int) []Item {
	if n <= 0 {
		return nil
	}
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func meaningful(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			n++
		}
	}
	return n
}
