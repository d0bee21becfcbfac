// Package cluster groups near-duplicate keywords into representative
// entries.
//
// The merge is greedy and order dependent: candidates arrive by descending
// frequency and each one joins the first accepted entry it matches.
package cluster

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/hanrank/pkg/hanrank/cooccur"
)

// Default merge parameters.
const (
	DefaultMergeRatio      = 0.8
	DefaultMinCooccurrence = 3
	// NoCooccurrenceFloor disables the floor, leaving only MergeRatio.
	NoCooccurrenceFloor = -1
)

// Params controls Merge.
type Params struct {
	// Limit stops merging once this many entries are accepted. Zero or
	// negative means no limit.
	Limit int
	// MergeRatio is the fraction of the smaller keyword's count that the
	// pair's co-occurrence must reach.
	MergeRatio float64
	// MinCooccurrence is the absolute floor on co-occurring titles for a
	// co-occurrence merge. Zero or negative means no floor.
	MinCooccurrence int
}

// DefaultParams returns the stock parameters with the given limit.
func DefaultParams(limit int) Params {
	return Params{
		Limit:           limit,
		MergeRatio:      DefaultMergeRatio,
		MinCooccurrence: DefaultMinCooccurrence,
	}
}

// Entry is an accepted representative keyword.
type Entry struct {
	Representative string
	Count          int
	// Variants is sorted and always contains Representative.
	Variants []string
}

type group struct {
	rep      string
	count    int
	variants map[string]struct{}
}

func newGroup(token string, count int) *group {
	return &group{
		rep:      token,
		count:    count,
		variants: map[string]struct{}{token: {}},
	}
}

func (g *group) absorb(token string, count int) {
	if utf8.RuneCountInString(token) > utf8.RuneCountInString(g.rep) {
		g.rep = token
	}
	g.count += count
	g.variants[token] = struct{}{}
}

func (g *group) entry() Entry {
	vs := make([]string, 0, len(g.variants))
	for v := range g.variants {
		vs = append(vs, v)
	}
	sort.Strings(vs)
	return Entry{Representative: g.rep, Count: g.count, Variants: vs}
}

// Merge clusters ranked candidates. ranked must already be ordered by
// descending count with ties in first-seen order, as returned by
// cooccur.Frequency.Ranked. cooc holds title-level co-occurrence between the
// candidate tokens; a nil cooc disables co-occurrence merging.
//
// Merge does not modify its inputs.
func Merge(ranked []cooccur.Entry, cooc *cooccur.Counter, p Params) []Entry {
	global := make(map[string]int, len(ranked))
	for _, c := range ranked {
		global[c.Token] = c.Count
	}

	var accepted []*group
	for _, c := range ranked {
		if p.Limit > 0 && len(accepted) >= p.Limit {
			break
		}
		if c.Token == "" || c.Count <= 0 {
			continue
		}

		target := -1
		for i, g := range accepted {
			if contains(c.Token, g.rep) || p.cooccurs(cooc, c.Token, c.Count, g.rep, global[g.rep]) {
				target = i
				break
			}
		}
		if target < 0 {
			accepted = append(accepted, newGroup(c.Token, c.Count))
			continue
		}
		accepted[target].absorb(c.Token, c.Count)
	}

	accepted = consolidate(accepted)

	out := make([]Entry, len(accepted))
	for i, g := range accepted {
		out[i] = g.entry()
	}
	return out
}

func (p Params) cooccurs(cooc *cooccur.Counter, k string, ck int, e string, ce int) bool {
	if cooc == nil {
		return false
	}
	n := cooc.Pair(k, e)
	if n <= 0 || n < p.MinCooccurrence {
		return false
	}
	smaller := ck
	if ce < smaller {
		smaller = ce
	}
	return float64(n) >= p.MergeRatio*float64(smaller)
}

func contains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// consolidate folds later entries into earlier ones when a representative
// change left two accepted representatives in a containment relation.
func consolidate(groups []*group) []*group {
	for {
		merged := false
		for i := 0; i < len(groups) && !merged; i++ {
			for j := i + 1; j < len(groups); j++ {
				if !contains(groups[i].rep, groups[j].rep) {
					continue
				}
				a, b := groups[i], groups[j]
				if utf8.RuneCountInString(b.rep) > utf8.RuneCountInString(a.rep) {
					a.rep = b.rep
				}
				a.count += b.count
				for v := range b.variants {
					a.variants[v] = struct{}{}
				}
				groups = append(groups[:j], groups[j+1:]...)
				merged = true
				break
			}
		}
		if !merged {
			return groups
		}
	}
}
