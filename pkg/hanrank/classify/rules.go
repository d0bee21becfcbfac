package classify

import (
	"regexp"

	"github.com/cognicore/hanrank/pkg/hanrank/span"
)

// CompoundRule accepts tokens whose unmasked view is fully matched by one of
// its patterns, e.g. organization suffixes such as 청, 처 or 위원장.
type CompoundRule struct {
	patterns []*regexp.Regexp
}

// NewCompoundRule creates a compound-term rule. Each pattern must match the
// whole token, so callers anchor them (lexicon.Compile does).
func NewCompoundRule(patterns []*regexp.Regexp) *CompoundRule {
	return &CompoundRule{patterns: patterns}
}

func (r *CompoundRule) Category() Category { return Compound }

func (r *CompoundRule) Match(p Probe) (span.Span, bool) {
	for _, re := range r.patterns {
		if re.MatchString(p.View) {
			return p.Span, true
		}
	}
	return span.Span{}, false
}

// LexiconRule accepts tokens that are exact members of a curated proper-noun
// set, such as political party names.
type LexiconRule struct {
	words map[string]struct{}
}

// NewLexiconRule creates an exact-membership rule.
func NewLexiconRule(words []string) *LexiconRule {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return &LexiconRule{words: m}
}

func (r *LexiconRule) Category() Category { return Organization }

func (r *LexiconRule) Match(p Probe) (span.Span, bool) {
	if p.View != p.Token {
		return span.Span{}, false
	}
	if _, ok := r.words[p.Token]; !ok {
		return span.Span{}, false
	}
	return p.Span, true
}

// PersonRule finds names through context patterns evaluated over the masked
// working text, e.g. "<name> 장관". The token is a person name when it is
// exactly the captured name; the whole match is consumed so the title that
// followed the name cannot be matched again.
type PersonRule struct {
	patterns []*regexp.Regexp
}

// NewPersonRule creates a person-name rule. Each pattern needs a capture
// group named "name", or failing that, a first capture group.
func NewPersonRule(patterns []*regexp.Regexp) *PersonRule {
	return &PersonRule{patterns: patterns}
}

func (r *PersonRule) Category() Category { return Person }

func (r *PersonRule) Match(p Probe) (span.Span, bool) {
	if !p.Found || p.View != p.Token {
		return span.Span{}, false
	}
	masked := p.Text.Masked()
	for _, re := range r.patterns {
		group := nameGroup(re)
		for _, loc := range re.FindAllStringSubmatchIndex(masked, -1) {
			if 2*group+1 >= len(loc) || loc[2*group] < 0 {
				continue
			}
			name := span.RuneSpan(masked, loc[2*group], loc[2*group+1])
			if name != p.Span {
				continue
			}
			return span.RuneSpan(masked, loc[0], loc[1]), true
		}
	}
	return span.Span{}, false
}

func nameGroup(re *regexp.Regexp) int {
	if i := re.SubexpIndex("name"); i > 0 {
		return i
	}
	return 1
}
