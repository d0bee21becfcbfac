// Package lexicon loads the curated tables that drive keyword extraction:
// stop words, proper nouns, known nouns and the compound-term and person-name
// patterns.
//
// A Lexicon is immutable once built and may be shared by any number of
// concurrent extractions.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/hanrank/pkg/hanrank/classify"
	"github.com/cognicore/hanrank/pkg/hanrank/internalerr"
	"github.com/cognicore/hanrank/pkg/hanrank/stoplist"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the on-disk YAML layout.
//
// Expected format:
//
//	vocab:
//	  POSITIONS: [장관, 의원, 대표]
//	stopwords: [속보, 단독]
//	proper_nouns: [국민의힘, 더불어민주당]
//	known_nouns: [본회의]
//	compound_patterns:
//	  - "[가-힣]+${POSITIONS}"
//	person_patterns:
//	  - "(?P<name>[가-힣]{2,4})\\s*${POSITIONS}"
type File struct {
	Vocab            map[string][]string `yaml:"vocab"`
	Stopwords        []string            `yaml:"stopwords"`
	ProperNouns      []string            `yaml:"proper_nouns"`
	KnownNouns       []string            `yaml:"known_nouns"`
	CompoundPatterns []string            `yaml:"compound_patterns"`
	PersonPatterns   []string            `yaml:"person_patterns"`
}

// Lexicon is a compiled, read-only rule set.
type Lexicon struct {
	stop     *stoplist.Set
	proper   []string
	known    []string
	compound []*regexp.Regexp
	person   []*regexp.Regexp
}

// Stats summarizes a lexicon's table sizes.
type Stats struct {
	Stopwords        int `json:"stopwords"`
	ProperNouns      int `json:"proper_nouns"`
	KnownNouns       int `json:"known_nouns"`
	CompoundPatterns int `json:"compound_patterns"`
	PersonPatterns   int `json:"person_patterns"`
}

var macroRe = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// Default returns the embedded lexicon.
func Default() *Lexicon {
	lex, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon: %v", err))
	}
	return lex
}

// DefaultYAML returns a copy of the embedded lexicon source.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Load reads and compiles a lexicon file.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	lex, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lex, nil
}

// Parse compiles lexicon YAML.
func Parse(data []byte) (*Lexicon, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse lexicon: %v", internalerr.ErrInvalidConfig, err)
	}
	return Compile(f)
}

// Compile validates f and builds a Lexicon. Compound patterns are anchored
// so they must match a whole token. Person patterns must capture the name,
// either in a group called "name" or in their first group.
func Compile(f File) (*Lexicon, error) {
	for name, words := range f.Vocab {
		if len(nonEmpty(words)) == 0 {
			return nil, fmt.Errorf("%w: vocab %s is empty", internalerr.ErrInvalidConfig, name)
		}
	}

	lex := &Lexicon{
		stop:   stoplist.NewSet(f.Stopwords),
		proper: dedupe(f.ProperNouns),
		known:  dedupe(f.KnownNouns),
	}

	for i, p := range f.CompoundPatterns {
		expanded, err := expand(p, f.Vocab)
		if err != nil {
			return nil, fmt.Errorf("%w: compound_patterns[%d]: %v", internalerr.ErrInvalidConfig, i, err)
		}
		re, err := regexp.Compile(`^(?:` + expanded + `)$`)
		if err != nil {
			return nil, fmt.Errorf("%w: compound_patterns[%d]: %v", internalerr.ErrInvalidConfig, i, err)
		}
		lex.compound = append(lex.compound, re)
	}

	for i, p := range f.PersonPatterns {
		expanded, err := expand(p, f.Vocab)
		if err != nil {
			return nil, fmt.Errorf("%w: person_patterns[%d]: %v", internalerr.ErrInvalidConfig, i, err)
		}
		re, err := regexp.Compile(expanded)
		if err != nil {
			return nil, fmt.Errorf("%w: person_patterns[%d]: %v", internalerr.ErrInvalidConfig, i, err)
		}
		if re.NumSubexp() == 0 {
			return nil, fmt.Errorf("%w: person_patterns[%d]: no capture group for the name", internalerr.ErrInvalidConfig, i)
		}
		lex.person = append(lex.person, re)
	}

	return lex, nil
}

// expand replaces ${NAME} with an alternation of the vocab words.
func expand(pattern string, vocab map[string][]string) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", fmt.Errorf("empty pattern")
	}
	var missing string
	out := macroRe.ReplaceAllStringFunc(pattern, func(m string) string {
		name := macroRe.FindStringSubmatch(m)[1]
		words, ok := vocab[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return alternation(words)
	})
	if missing != "" {
		return "", fmt.Errorf("unknown vocab %q", missing)
	}
	return out, nil
}

// alternation quotes words longest first, so the leftmost-first regexp
// engine prefers 경찰청장 over 청장.
func alternation(words []string) string {
	ws := nonEmpty(words)
	sort.SliceStable(ws, func(i, j int) bool { return len(ws[i]) > len(ws[j]) })
	quoted := make([]string, len(ws))
	for i, w := range ws {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}

func nonEmpty(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func dedupe(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	var out []string
	for _, w := range nonEmpty(words) {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Stopwords returns the stop-word set.
func (l *Lexicon) Stopwords() *stoplist.Set { return l.stop }

// ProperNouns returns the curated proper nouns.
func (l *Lexicon) ProperNouns() []string { return append([]string(nil), l.proper...) }

// KnownNouns returns nouns a tokenizer must keep whole.
func (l *Lexicon) KnownNouns() []string { return append([]string(nil), l.known...) }

// Rules returns the classifier rules in priority order.
func (l *Lexicon) Rules() []classify.Rule {
	return []classify.Rule{
		classify.NewCompoundRule(l.compound),
		classify.NewLexiconRule(l.proper),
		classify.NewPersonRule(l.person),
	}
}

// Stats returns table sizes.
func (l *Lexicon) Stats() Stats {
	return Stats{
		Stopwords:        l.stop.Len(),
		ProperNouns:      len(l.proper),
		KnownNouns:       len(l.known),
		CompoundPatterns: len(l.compound),
		PersonPatterns:   len(l.person),
	}
}
