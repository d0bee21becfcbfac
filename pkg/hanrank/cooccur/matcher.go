package cooccur

import (
	"sort"

	"github.com/cloudflare/ahocorasick"
)

// Matcher finds which dictionary keywords occur as literal substrings of a
// title. A Matcher is not safe for concurrent use; build one per batch.
type Matcher struct {
	m        *ahocorasick.Matcher
	keywords []string
}

// NewMatcher builds an Aho-Corasick automaton over keywords. Empty and
// duplicate keywords are ignored.
func NewMatcher(keywords []string) *Matcher {
	seen := make(map[string]struct{}, len(keywords))
	dict := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dict = append(dict, k)
	}

	mt := &Matcher{keywords: dict}
	if len(dict) > 0 {
		mt.m = ahocorasick.NewStringMatcher(dict)
	}
	return mt
}

// Present returns the keywords found in title, in dictionary order.
func (mt *Matcher) Present(title string) []string {
	if mt.m == nil || title == "" {
		return nil
	}
	hits := mt.m.Match([]byte(title))
	sort.Ints(hits)

	out := make([]string, 0, len(hits))
	last := -1
	for _, h := range hits {
		if h == last {
			continue
		}
		last = h
		out = append(out, mt.keywords[h])
	}
	return out
}

// Matrix counts, for every pair of keywords, the titles that contain both as
// literal substrings. Nx of the result is each keyword's title count.
func Matrix(titles []string, keywords []string) *Counter {
	mt := NewMatcher(keywords)
	c := NewCounter()
	for _, title := range titles {
		c.AddTitle(mt.Present(title))
	}
	return c
}
