// Package rank re-scores merged keywords against the original titles.
package rank

import (
	"sort"

	"github.com/cognicore/hanrank/pkg/hanrank/cluster"
	"github.com/cognicore/hanrank/pkg/hanrank/cooccur"
)

// Keyword is one ranked result.
type Keyword struct {
	Keyword      string   `json:"keyword"`
	ArticleCount int      `json:"article_count"`
	Variants     []string `json:"variants"`
}

// Rank counts, for every entry, the titles that contain its representative
// or any of its variants as a literal substring, then orders entries by that
// count descending with ties broken by the representative. At most limit
// keywords are returned; limit <= 0 returns them all.
func Rank(entries []cluster.Entry, titles []string, limit int) []Keyword {
	if len(entries) == 0 {
		return []Keyword{}
	}

	var dict []string
	owner := make(map[string][]int)
	for i, e := range entries {
		for _, v := range surfaces(e) {
			if _, ok := owner[v]; !ok {
				dict = append(dict, v)
			}
			owner[v] = append(owner[v], i)
		}
	}

	counts := make([]int, len(entries))
	mt := cooccur.NewMatcher(dict)
	for _, title := range titles {
		hit := make(map[int]struct{})
		for _, v := range mt.Present(title) {
			for _, i := range owner[v] {
				hit[i] = struct{}{}
			}
		}
		for i := range hit {
			counts[i]++
		}
	}

	out := make([]Keyword, len(entries))
	for i, e := range entries {
		out[i] = Keyword{
			Keyword:      e.Representative,
			ArticleCount: counts[i],
			Variants:     append([]string(nil), e.Variants...),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ArticleCount != out[j].ArticleCount {
			return out[i].ArticleCount > out[j].ArticleCount
		}
		return out[i].Keyword < out[j].Keyword
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// surfaces returns the representative followed by its variants, without
// repeats.
func surfaces(e cluster.Entry) []string {
	out := []string{e.Representative}
	for _, v := range e.Variants {
		if v != e.Representative {
			out = append(out, v)
		}
	}
	return out
}

// Filter returns the titles containing keyword as a literal substring, in
// input order.
func Filter(titles []string, keyword string) []string {
	mt := cooccur.NewMatcher([]string{keyword})
	var out []string
	for _, t := range titles {
		if len(mt.Present(t)) > 0 {
			out = append(out, t)
		}
	}
	return out
}
