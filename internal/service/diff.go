package service

import "github.com/cognicore/hanrank/pkg/hanrank/rank"

// Diff is the keyword movement between two snapshots.
type Diff struct {
	Current   string     `json:"current"`
	Previous  string     `json:"previous,omitempty"`
	Movements []Movement `json:"movements"`
	Dropped   []string   `json:"dropped"`
}

// Movement describes one current keyword. Ranks are 1-based; PreviousRank
// is zero for keywords that are new in this snapshot.
type Movement struct {
	Keyword      string `json:"keyword"`
	ArticleCount int    `json:"article_count"`
	Rank         int    `json:"rank"`
	PreviousRank int    `json:"previous_rank,omitempty"`
	// Delta is positive when the keyword climbed.
	Delta int  `json:"delta"`
	New   bool `json:"new"`
}

// Compare reports how each keyword in cur moved relative to prev, and which
// keywords of prev are gone.
func Compare(prev, cur []rank.Keyword) ([]Movement, []string) {
	before := make(map[string]int, len(prev))
	for i, k := range prev {
		before[k.Keyword] = i + 1
	}

	moves := make([]Movement, 0, len(cur))
	present := make(map[string]struct{}, len(cur))
	for i, k := range cur {
		present[k.Keyword] = struct{}{}
		m := Movement{Keyword: k.Keyword, ArticleCount: k.ArticleCount, Rank: i + 1}
		if r, ok := before[k.Keyword]; ok {
			m.PreviousRank = r
			m.Delta = r - m.Rank
		} else {
			m.New = true
		}
		moves = append(moves, m)
	}

	dropped := []string{}
	for _, k := range prev {
		if _, ok := present[k.Keyword]; !ok {
			dropped = append(dropped, k.Keyword)
		}
	}
	return moves, dropped
}
