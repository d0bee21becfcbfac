// Package span tracks which parts of a headline have already been claimed by
// a pattern match. The text itself is never rewritten; consumed regions are
// kept as rune intervals and masked only when a view is requested.
package span

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Sentinel replaces consumed runes in masked views.
const Sentinel = '■'

// Span is a half-open rune interval [Start, End).
type Span struct {
	Start, End int
}

// Len returns the number of runes covered.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

func (s Span) overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Text is a headline plus its consumed-span index.
type Text struct {
	runes    []rune
	consumed []Span // sorted by Start, non-overlapping
}

// New wraps s with an empty consumed index.
func New(s string) *Text {
	return &Text{runes: []rune(s)}
}

// String returns the unmasked text.
func (t *Text) String() string {
	return string(t.runes)
}

// Len returns the length in runes.
func (t *Text) Len() int {
	return len(t.runes)
}

// Slice returns the unmasked runes covered by sp.
func (t *Text) Slice(sp Span) string {
	sp = t.clamp(sp)
	return string(t.runes[sp.Start:sp.End])
}

// Overlaps reports whether any rune of sp is already consumed.
func (t *Text) Overlaps(sp Span) bool {
	for _, c := range t.consumed {
		if c.Start >= sp.End {
			break
		}
		if c.overlaps(sp) {
			return true
		}
	}
	return false
}

// Consume marks sp as claimed. Adjacent and overlapping intervals are merged.
func (t *Text) Consume(sp Span) {
	sp = t.clamp(sp)
	if sp.Len() == 0 {
		return
	}
	merged := make([]Span, 0, len(t.consumed)+1)
	for _, c := range t.consumed {
		if c.End < sp.Start || sp.End < c.Start {
			merged = append(merged, c)
			continue
		}
		if c.Start < sp.Start {
			sp.Start = c.Start
		}
		if c.End > sp.End {
			sp.End = c.End
		}
	}
	merged = append(merged, sp)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Start < merged[j].Start })
	t.consumed = merged
}

// Consumed returns a copy of the consumed intervals.
func (t *Text) Consumed() []Span {
	out := make([]Span, len(t.consumed))
	copy(out, t.consumed)
	return out
}

// View returns the runes covered by sp with consumed positions replaced by
// Sentinel.
func (t *Text) View(sp Span) string {
	sp = t.clamp(sp)
	var b strings.Builder
	for i := sp.Start; i < sp.End; i++ {
		if t.isConsumed(i) {
			b.WriteRune(Sentinel)
		} else {
			b.WriteRune(t.runes[i])
		}
	}
	return b.String()
}

// Masked returns the whole text with consumed runes replaced by Sentinel.
// Rune offsets in the result line up with the original text.
func (t *Text) Masked() string {
	return t.View(Span{Start: 0, End: len(t.runes)})
}

// Find returns the first occurrence of token that does not touch a consumed
// rune. When every occurrence is at least partly consumed the first one is
// returned with free set to false. found is false when token does not occur.
func (t *Text) Find(token string) (sp Span, free, found bool) {
	needle := []rune(token)
	if len(needle) == 0 {
		return Span{}, false, false
	}
	for i := 0; i+len(needle) <= len(t.runes); i++ {
		if !hasPrefixAt(t.runes, needle, i) {
			continue
		}
		cand := Span{Start: i, End: i + len(needle)}
		if !t.Overlaps(cand) {
			return cand, true, true
		}
		if !found {
			sp, found = cand, true
		}
	}
	return sp, false, found
}

// RuneSpan converts a byte range of s (or of a masked view of s) into a rune
// span.
func RuneSpan(s string, byteStart, byteEnd int) Span {
	start := utf8.RuneCountInString(s[:byteStart])
	return Span{Start: start, End: start + utf8.RuneCountInString(s[byteStart:byteEnd])}
}

// StripSentinel removes every Sentinel rune from s.
func StripSentinel(s string) string {
	return strings.ReplaceAll(s, string(Sentinel), "")
}

func (t *Text) isConsumed(i int) bool {
	for _, c := range t.consumed {
		if i < c.Start {
			return false
		}
		if i < c.End {
			return true
		}
	}
	return false
}

func (t *Text) clamp(sp Span) Span {
	if sp.Start < 0 {
		sp.Start = 0
	}
	if sp.End > len(t.runes) {
		sp.End = len(t.runes)
	}
	if sp.End < sp.Start {
		sp.End = sp.Start
	}
	return sp
}

func hasPrefixAt(haystack, needle []rune, at int) bool {
	for j, r := range needle {
		if haystack[at+j] != r {
			return false
		}
	}
	return true
}
