package cooccur

import "sort"

// Entry is a token with its aggregated count.
type Entry struct {
	Token string
	Count int
}

// Frequency counts how many titles each token survived selection in.
// Insertion order is remembered so equal counts rank deterministically.
type Frequency struct {
	counts map[string]int
	order  []string
}

// NewFrequency creates an empty frequency table.
func NewFrequency() *Frequency {
	return &Frequency{counts: make(map[string]int)}
}

// AddTitle records the tokens selected for one title. A token repeated in
// the same title counts once.
func (f *Frequency) AddTitle(tokens []string) {
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := f.counts[t]; !ok {
			f.order = append(f.order, t)
		}
		f.counts[t]++
	}
}

// Count returns the number of titles t was selected in.
func (f *Frequency) Count(t string) int {
	return f.counts[t]
}

// Len returns the number of distinct tokens.
func (f *Frequency) Len() int {
	return len(f.order)
}

// Tokens returns distinct tokens in first-seen order.
func (f *Frequency) Tokens() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Ranked returns all entries by count descending; ties keep first-seen
// order.
func (f *Frequency) Ranked() []Entry {
	out := make([]Entry, len(f.order))
	for i, t := range f.order {
		out[i] = Entry{Token: t, Count: f.counts[t]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
