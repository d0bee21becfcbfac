package stoplist

import "sort"

// Stats holds document-frequency statistics for one token across a batch.
type Stats struct {
	Token     string
	DF        int
	DFPercent float64
}

// Candidate represents a candidate stopword
type Candidate struct {
	Token     string
	DF        int
	DFPercent float64
}

// Thresholds defines criteria for stopword identification
type Thresholds struct {
	DFPercent float64 // e.g. 30 - appears in 30% of headlines
	MinDF     int     // ignore tokens seen in fewer headlines than this
}

// DefaultThresholds returns thresholds tuned for ranking-page batches of a
// few hundred headlines.
func DefaultThresholds() Thresholds {
	return Thresholds{DFPercent: 30, MinDF: 3}
}

// DocumentFrequency counts, for every token, the number of documents that
// contain it at least once. Output is sorted by DF descending, then token.
func DocumentFrequency(docs [][]string) []Stats {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	stats := make([]Stats, 0, len(df))
	for tok, n := range df {
		pct := 0.0
		if len(docs) > 0 {
			pct = float64(n) / float64(len(docs)) * 100
		}
		stats = append(stats, Stats{Token: tok, DF: n, DFPercent: pct})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].DF != stats[j].DF {
			return stats[i].DF > stats[j].DF
		}
		return stats[i].Token < stats[j].Token
	})
	return stats
}

// SuggestCandidates suggests tokens that should be stopwords: tokens that are
// not stop words yet and appear in too large a share of the batch to carry
// topical signal.
func (s *Set) SuggestCandidates(stats []Stats, thresholds Thresholds) []Candidate {
	if thresholds.DFPercent <= 0 {
		thresholds.DFPercent = DefaultThresholds().DFPercent
	}

	var candidates []Candidate
	for _, st := range stats {
		if s.IsStop(st.Token) {
			continue // already a stopword
		}
		if st.DF < thresholds.MinDF || st.DFPercent < thresholds.DFPercent {
			continue
		}
		candidates = append(candidates, Candidate{Token: st.Token, DF: st.DF, DFPercent: st.DFPercent})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DFPercent > candidates[j].DFPercent
	})
	return candidates
}
