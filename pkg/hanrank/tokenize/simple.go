package tokenize

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultParticles are the postpositions stripped from the end of words,
// longest first.
var DefaultParticles = []string{
	"으로", "에게", "한테", "더러", "보고", "같이", "처럼", "만큼", "보다", "까지", "부터", "에서",
	"로", "께", "에",
	"이", "가", "은", "는", "을", "를", "의", "와", "과", "도", "만",
	"씨", "측", "님",
}

// ambiguous particles are also common final syllables of nouns (김정은,
// 전공의, 경상남도). They are stripped only when the stem is a known noun or
// stands alone somewhere in the batch.
var ambiguous = map[string]struct{}{
	"은": {}, "는": {}, "이": {}, "가": {}, "의": {}, "도": {}, "과": {}, "와": {}, "만": {},
}

// DefaultNounEndings are word endings that look like a stem plus particle
// but belong to the noun.
var DefaultNounEndings = []string{
	"주의", "남도", "북도", "전공의", "전문의", "수련의", "한의",
}

// Simple is a whitespace and particle-stripping analyzer used when no real
// morphological analyzer is wired in. Every Hangul word is treated as a noun
// once its trailing particle is removed.
type Simple struct {
	particles []string
	endings   []string
	keep      map[string]struct{}
	batch     map[string]struct{}
	minLen    int
}

// NewSimple creates an analyzer that never strips particles from the words
// in keep (nouns that merely end in a particle-like syllable, e.g. 본회의)
// and accepts them as stems of ambiguous particles.
func NewSimple(keep []string) *Simple {
	particles := make([]string, len(DefaultParticles))
	copy(particles, DefaultParticles)
	sort.SliceStable(particles, func(i, j int) bool {
		return utf8.RuneCountInString(particles[i]) > utf8.RuneCountInString(particles[j])
	})

	k := make(map[string]struct{}, len(keep))
	for _, w := range keep {
		k[w] = struct{}{}
	}
	return &Simple{
		particles: particles,
		endings:   append([]string(nil), DefaultNounEndings...),
		keep:      k,
		minLen:    2,
	}
}

// ForBatch returns a copy of s that also accepts as stems the bare words
// of titles, so "검찰은" splits when "검찰" appears elsewhere in the batch.
func (s *Simple) ForBatch(titles []string) Tokenizer {
	batch := make(map[string]struct{})
	for _, t := range titles {
		for _, w := range words(t) {
			if isHangul(w) {
				batch[w] = struct{}{}
			}
		}
	}
	cp := *s
	cp.batch = batch
	return &cp
}

// Nouns returns the particle-stripped words of text that are at least two
// runes long and not purely numeric, in order of appearance.
func (s *Simple) Nouns(text string) ([]string, error) {
	var nouns []string
	for _, w := range words(text) {
		stem, _ := s.split(w)
		if utf8.RuneCountInString(stem) < s.minLen || isNumericOnly(stem) {
			continue
		}
		nouns = append(nouns, stem)
	}
	return nouns, nil
}

// POS tags each word; a stripped particle is emitted as its own Josa token.
func (s *Simple) POS(text string) ([]Tagged, error) {
	var out []Tagged
	for _, w := range words(text) {
		stem, particle := s.split(w)
		out = append(out, Tagged{Text: stem, Tag: tagOf(stem)})
		if particle != "" {
			out = append(out, Tagged{Text: particle, Tag: TagJosa})
		}
	}
	return out, nil
}

// split separates a trailing particle from w. The stem must keep at least
// two runes and its final consonant must fit the particle.
func (s *Simple) split(w string) (stem, particle string) {
	if _, ok := s.keep[w]; ok {
		return w, ""
	}
	if !isHangul(w) {
		return w, ""
	}
	for _, e := range s.endings {
		if strings.HasSuffix(w, e) {
			return w, ""
		}
	}
	n := utf8.RuneCountInString(w)
	for _, p := range s.particles {
		if !strings.HasSuffix(w, p) {
			continue
		}
		if n-utf8.RuneCountInString(p) < 2 {
			continue
		}
		stem := strings.TrimSuffix(w, p)
		if !agrees(stem, p) {
			continue
		}
		if _, ok := ambiguous[p]; ok && !s.known(stem) {
			continue
		}
		return stem, p
	}
	return w, ""
}

func (s *Simple) known(stem string) bool {
	if _, ok := s.keep[stem]; ok {
		return true
	}
	_, ok := s.batch[stem]
	return ok
}

// agrees reports whether particle p can follow stem: 이/은/을/과/으로
// attach after a final consonant, 가/는/를/와/로 after a vowel (로 also
// after ㄹ). Other particles attach to either.
func agrees(stem, p string) bool {
	last, _ := utf8.DecodeLastRuneInString(stem)
	if last < 0xAC00 || last > 0xD7A3 {
		return true
	}
	final := (last - 0xAC00) % 28
	switch p {
	case "이", "은", "을", "과":
		return final != 0
	case "으로":
		return final != 0 && final != 8
	case "가", "는", "를", "와":
		return final == 0
	case "로":
		return final == 0 || final == 8
	}
	return true
}

// words splits text on anything that is not a letter or a digit.
func words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func tagOf(w string) string {
	switch {
	case isNumericOnly(w):
		return TagNumber
	case isHangul(w):
		return TagNoun
	case isLatin(w):
		return TagAlpha
	default:
		return TagNoun
	}
}

func isHangul(s string) bool {
	for _, r := range s {
		if !unicode.Is(unicode.Hangul, r) {
			return false
		}
	}
	return s != ""
}

func isLatin(s string) bool {
	for _, r := range s {
		if !unicode.Is(unicode.Latin, r) {
			return false
		}
	}
	return s != ""
}

func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
