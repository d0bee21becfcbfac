// Package hanrank extracts ranked keywords from batches of Korean news
// headlines.
//
// An Extractor is built once from a lexicon and a tokenizer and is safe for
// concurrent use; every Extract call works on its own state.
package hanrank

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/hanrank/pkg/hanrank/classify"
	"github.com/cognicore/hanrank/pkg/hanrank/cluster"
	"github.com/cognicore/hanrank/pkg/hanrank/cooccur"
	"github.com/cognicore/hanrank/pkg/hanrank/internalerr"
	"github.com/cognicore/hanrank/pkg/hanrank/lexicon"
	"github.com/cognicore/hanrank/pkg/hanrank/normalize"
	"github.com/cognicore/hanrank/pkg/hanrank/rank"
	"github.com/cognicore/hanrank/pkg/hanrank/stoplist"
	"github.com/cognicore/hanrank/pkg/hanrank/tokenize"
)

// Defaults for Options.
const (
	DefaultLimit            = 10
	DefaultKeywordsPerTitle = 2
)

// Keyword is one ranked result.
type Keyword = rank.Keyword

// Options configures an Extractor. Zero values select the defaults.
type Options struct {
	// Lexicon supplies stop words and classification rules. Nil uses the
	// embedded default.
	Lexicon *lexicon.Lexicon
	// Tokenizer is the morphological analyzer. Nil uses tokenize.Simple
	// seeded with the lexicon's known nouns.
	Tokenizer tokenize.Tokenizer
	// Logger receives per-title failures and batch summaries. Nil discards.
	Logger *slog.Logger

	Limit            int
	KeywordsPerTitle int
	StripNumeric     bool
	// PromoteMin is the number of distinct matches a category needs in one
	// title before its tokens are emitted ahead of general nouns.
	PromoteMin int
	MergeRatio float64
	// MinCooccurrence is the floor on shared titles for a co-occurrence
	// merge. Zero uses the default; negative disables the floor.
	MinCooccurrence int
	// SupplementPOS adds three-syllable words that the tokenizer tags as a
	// noun but left out of its noun list.
	SupplementPOS bool
}

// Extractor runs the keyword pipeline.
type Extractor struct {
	lex        *lexicon.Lexicon
	tok        tokenize.Tokenizer
	classifier *classify.Classifier
	logger     *slog.Logger
	opts       Options
}

// Stats describes one extraction run.
type Stats struct {
	Titles     int `json:"titles"`
	Processed  int `json:"processed"`
	Skipped    int `json:"skipped"`
	Candidates int `json:"candidates"`
	Distinct   int `json:"distinct"`
	Clusters   int `json:"clusters"`
}

// Result is the output of ExtractWithStats.
type Result struct {
	Keywords []Keyword `json:"keywords"`
	Stats    Stats     `json:"stats"`
}

// New validates opts and builds an Extractor.
func New(opts Options) (*Extractor, error) {
	if opts.Limit < 0 || opts.KeywordsPerTitle < 0 || opts.PromoteMin < 0 {
		return nil, fmt.Errorf("%w: negative option", internalerr.ErrInvalidConfig)
	}
	if opts.MergeRatio < 0 || opts.MergeRatio > 1 {
		return nil, fmt.Errorf("%w: merge ratio %.2f outside [0,1]", internalerr.ErrInvalidConfig, opts.MergeRatio)
	}

	if opts.Lexicon == nil {
		opts.Lexicon = lexicon.Default()
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = tokenize.NewSimple(opts.Lexicon.KnownNouns())
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultLimit
	}
	if opts.KeywordsPerTitle == 0 {
		opts.KeywordsPerTitle = DefaultKeywordsPerTitle
	}
	if opts.PromoteMin == 0 {
		opts.PromoteMin = classify.DefaultPromoteMin
	}
	if opts.MergeRatio == 0 {
		opts.MergeRatio = cluster.DefaultMergeRatio
	}
	switch {
	case opts.MinCooccurrence == 0:
		opts.MinCooccurrence = cluster.DefaultMinCooccurrence
	case opts.MinCooccurrence < 0:
		opts.MinCooccurrence = cluster.NoCooccurrenceFloor
	}

	return &Extractor{
		lex:        opts.Lexicon,
		tok:        opts.Tokenizer,
		classifier: classify.New(opts.PromoteMin, opts.Lexicon.Rules()...),
		logger:     opts.Logger,
		opts:       opts,
	}, nil
}

// Options returns the effective options.
func (e *Extractor) Options() Options {
	return e.opts
}

// Lexicon returns the lexicon the extractor was built with.
func (e *Extractor) Lexicon() *lexicon.Lexicon {
	return e.lex
}

// Extract returns up to Limit ranked keywords for titles.
func (e *Extractor) Extract(titles []string) []Keyword {
	return e.ExtractWithStats(titles).Keywords
}

// ExtractWithStats is Extract plus run statistics.
func (e *Extractor) ExtractWithStats(titles []string) Result {
	st := Stats{Titles: len(titles)}
	if len(titles) == 0 {
		return Result{Keywords: []Keyword{}, Stats: st}
	}

	freq := cooccur.NewFrequency()
	processed := make([]string, 0, len(titles))
	tok := tokenize.ForBatch(e.tok, titles)

	for i, raw := range titles {
		items, err := e.titleTokens(tok, raw)
		if err != nil {
			st.Skipped++
			e.logger.Warn("skipping title", "index", i, "title", raw, "error", err)
			continue
		}
		processed = append(processed, raw)

		filtered := e.lex.Stopwords().Filter(items)
		st.Candidates += len(filtered)
		selected := stoplist.Select(filtered, e.opts.KeywordsPerTitle)

		texts := make([]string, len(selected))
		for j, it := range selected {
			texts[j] = it.Text
		}
		freq.AddTitle(texts)
	}
	st.Processed = len(processed)
	st.Distinct = freq.Len()

	cooc := cooccur.Matrix(processed, freq.Tokens())
	entries := cluster.Merge(freq.Ranked(), cooc, cluster.Params{
		Limit:           e.opts.Limit,
		MergeRatio:      e.opts.MergeRatio,
		MinCooccurrence: e.opts.MinCooccurrence,
	})
	st.Clusters = len(entries)

	keywords := rank.Rank(entries, processed, e.opts.Limit)

	e.logger.Debug("extraction complete",
		"titles", st.Titles,
		"skipped", st.Skipped,
		"distinct", st.Distinct,
		"clusters", st.Clusters,
		"keywords", len(keywords))

	return Result{Keywords: keywords, Stats: st}
}

// TitleTokens returns, per title, the classified tokens that survive the
// artifact filter but before stop words are removed. Titles the tokenizer
// fails on yield nil. It feeds stop-word suggestion.
func (e *Extractor) TitleTokens(titles []string) [][]string {
	out := make([][]string, len(titles))
	empty := stoplist.NewSet(nil)
	tok := tokenize.ForBatch(e.tok, titles)
	for i, raw := range titles {
		items, err := e.titleTokens(tok, raw)
		if err != nil {
			e.logger.Warn("skipping title", "index", i, "title", raw, "error", err)
			continue
		}
		for _, it := range empty.Filter(items) {
			out[i] = append(out[i], it.Text)
		}
	}
	return out
}

// titleTokens normalizes, tokenizes and classifies one headline.
func (e *Extractor) titleTokens(tok tokenize.Tokenizer, raw string) (items []stoplist.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("%w: panic: %v", internalerr.ErrTokenizer, r)
		}
	}()

	n := normalize.Title(raw, normalize.Options{StripNumeric: e.opts.StripNumeric})

	nouns, err := tok.Nouns(n.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrTokenizer, err)
	}

	cands := make([]classify.Candidate, 0, len(nouns))
	seen := make(map[string]struct{}, len(nouns))
	for _, noun := range nouns {
		seen[noun] = struct{}{}
		cands = append(cands, classify.Candidate{Text: noun, Tag: tokenize.TagNoun})
	}
	if e.opts.SupplementPOS {
		cands = append(cands, supplement(tok, n.Text, seen)...)
	}

	tokens := e.classifier.Classify(n.Text, cands)
	items = make([]stoplist.Item, len(tokens))
	for i, t := range tokens {
		items[i] = stoplist.Item{Text: t.Text}
		if t.Located {
			items[i].View = t.View
		}
	}
	return items, nil
}

// supplement returns three-syllable Hangul words the tokenizer tags as a
// single noun but did not list among its nouns.
func supplement(tok tokenize.Tokenizer, text string, seen map[string]struct{}) []classify.Candidate {
	var out []classify.Candidate
	for _, w := range strings.Fields(text) {
		if _, ok := seen[w]; ok {
			continue
		}
		if utf8.RuneCountInString(w) != 3 || !allHangul(w) {
			continue
		}
		tagged, err := tok.POS(w)
		if err != nil || len(tagged) == 0 {
			continue
		}
		if !tokenize.IsNoun(tagged[0].Tag) || tagged[0].Text != w {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, classify.Candidate{Text: w, Tag: tagged[0].Tag})
	}
	return out
}

func allHangul(s string) bool {
	for _, r := range s {
		if !unicode.Is(unicode.Hangul, r) {
			return false
		}
	}
	return true
}
