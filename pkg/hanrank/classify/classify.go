// Package classify assigns candidate tokens of one headline to priority
// categories using an ordered registry of rules.
package classify

import (
	"sort"

	"github.com/cognicore/hanrank/pkg/hanrank/span"
)

// Category is a classification bucket. Lower values are checked first.
type Category int

const (
	Compound Category = iota
	Organization
	Person
	General
)

// DefaultPromoteMin is the number of distinct matches a category needs within
// one headline before its tokens are emitted on their own.
const DefaultPromoteMin = 5

func (c Category) String() string {
	switch c {
	case Compound:
		return "compound"
	case Organization:
		return "organization_name"
	case Person:
		return "person_name"
	case General:
		return "general"
	default:
		return "unknown"
	}
}

// Candidate is a token proposed by the morphological analyzer.
type Candidate struct {
	Text string
	Tag  string
}

// Token is a classified candidate.
type Token struct {
	Text string
	Tag  string
	// Matched is the category of the rule that accepted the token.
	Matched Category
	// Category is the category the token is emitted under after promotion.
	Category Category
	// Span locates the token in the working text when Located is set.
	Span    span.Span
	Located bool
	// View is the token's span as it looked, masked, before the token itself
	// was classified.
	View string
}

// Probe is what a rule sees for one candidate.
type Probe struct {
	Text  *span.Text
	Token string
	Tag   string
	Span  span.Span
	Found bool
	View  string
}

// Rule recognizes tokens of one category. The returned span is consumed so
// that later rules cannot match the same characters again.
type Rule interface {
	Category() Category
	Match(p Probe) (span.Span, bool)
}

// Classifier runs rules in category priority order.
type Classifier struct {
	rules      []Rule
	promoteMin int
}

// New creates a classifier. Rules are ordered by category and, within a
// category, by registration order. promoteMin <= 0 selects
// DefaultPromoteMin.
func New(promoteMin int, rules ...Rule) *Classifier {
	if promoteMin <= 0 {
		promoteMin = DefaultPromoteMin
	}
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Category() < ordered[j].Category()
	})
	return &Classifier{rules: ordered, promoteMin: promoteMin}
}

// Classify partitions the candidates of one headline. text is the normalized
// working text the candidates were taken from. The result holds promoted
// categories first (in priority order), then general tokens; within each
// group candidate order is kept.
func (c *Classifier) Classify(text string, cands []Candidate) []Token {
	txt := span.New(text)
	tokens := make([]Token, 0, len(cands))

	for _, cand := range cands {
		sp, _, found := txt.Find(cand.Text)
		view := cand.Text
		if found {
			view = txt.View(sp)
		}

		tok := Token{
			Text:     cand.Text,
			Tag:      cand.Tag,
			Matched:  General,
			Category: General,
			Span:     sp,
			Located:  found,
			View:     view,
		}

		probe := Probe{Text: txt, Token: cand.Text, Tag: cand.Tag, Span: sp, Found: found, View: view}
		for _, r := range c.rules {
			consumed, ok := r.Match(probe)
			if !ok {
				continue
			}
			tok.Matched = r.Category()
			txt.Consume(consumed)
			break
		}
		tokens = append(tokens, tok)
	}

	return c.promote(tokens)
}

func (c *Classifier) promote(tokens []Token) []Token {
	distinct := make(map[Category]map[string]struct{})
	for _, tok := range tokens {
		if tok.Matched == General {
			continue
		}
		if distinct[tok.Matched] == nil {
			distinct[tok.Matched] = make(map[string]struct{})
		}
		distinct[tok.Matched][tok.Text] = struct{}{}
	}

	out := make([]Token, 0, len(tokens))
	for cat := Compound; cat < General; cat++ {
		if len(distinct[cat]) < c.promoteMin {
			continue
		}
		for _, tok := range tokens {
			if tok.Matched == cat {
				tok.Category = cat
				out = append(out, tok)
			}
		}
	}
	for _, tok := range tokens {
		if tok.Matched != General && len(distinct[tok.Matched]) >= c.promoteMin {
			continue
		}
		tok.Category = General
		out = append(out, tok)
	}
	return out
}
