// Package cooccur aggregates keyword frequencies and title-level
// co-occurrence across a headline batch.
package cooccur

import (
	"slices"
	"sort"
)

// Counter tracks, per keyword and per keyword pair, how many titles contain
// them. Repeats within one title count once.
type Counter struct {
	titles int
	single map[string]int
	pairs  map[pair]int
}

// pair is stored with a < b.
type pair struct{ a, b string }

func newPair(x, y string) pair {
	if x > y {
		x, y = y, x
	}
	return pair{a: x, b: y}
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{
		single: make(map[string]int),
		pairs:  make(map[pair]int),
	}
}

// AddTitle records the keywords present in one title.
func (c *Counter) AddTitle(keywords []string) {
	c.titles++

	ks := slices.Clone(keywords)
	sort.Strings(ks)
	ks = slices.Compact(ks)

	for i, k := range ks {
		c.single[k]++
		for _, other := range ks[i+1:] {
			c.pairs[pair{a: k, b: other}]++
		}
	}
}

// Pair returns the number of titles containing both x and y. A keyword
// never co-occurs with itself.
func (c *Counter) Pair(x, y string) int {
	if x == y {
		return 0
	}
	return c.pairs[newPair(x, y)]
}

// Count returns the number of titles containing k.
func (c *Counter) Count(k string) int {
	return c.single[k]
}

// Row returns the co-occurrence counts of k with every keyword it shares a
// title with.
func (c *Counter) Row(k string) map[string]int {
	row := make(map[string]int)
	for p, n := range c.pairs {
		switch k {
		case p.a:
			row[p.b] = n
		case p.b:
			row[p.a] = n
		}
	}
	return row
}

// Titles returns the number of titles added.
func (c *Counter) Titles() int { return c.titles }
