// Package normalize prepares raw headlines for tokenization.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Options toggles the optional normalization rules.
type Options struct {
	// StripNumeric drops whitespace tokens that start with a digit.
	StripNumeric bool
}

// Normalized pairs the working text with the untouched title.
// Ranking and co-occurrence always use Original.
type Normalized struct {
	Original string
	Text     string
}

var (
	bracketTag = regexp.MustCompile(`\[[^\]]*\]|【[^】]*】`)
	rankPrefix = regexp.MustCompile(`^\s*\d+(?:\.\s*|\s+)`)
)

// Title applies the normalization rules in order:
// bracket tags are removed, CJK ideographs are stripped from each token
// (tokens left with fewer than 2 characters are dropped), and digit-leading
// tokens are dropped when opts.StripNumeric is set.
func Title(raw string, opts Options) Normalized {
	text := bracketTag.ReplaceAllString(raw, " ")

	fields := strings.Fields(text)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		f = stripIdeographs(f)
		if f == "" {
			continue
		}
		if opts.StripNumeric && startsWithDigit(f) {
			continue
		}
		kept = append(kept, f)
	}

	return Normalized{Original: raw, Text: strings.Join(kept, " ")}
}

// StripRankPrefix removes a leading "3. " style ranking number that ranking
// pages put in front of headlines.
func StripRankPrefix(title string) string {
	return strings.TrimSpace(rankPrefix.ReplaceAllString(title, ""))
}

// HasIdeograph reports whether s contains a CJK ideograph.
func HasIdeograph(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func stripIdeographs(token string) string {
	if !HasIdeograph(token) {
		return token
	}
	rest := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Han, r) {
			return -1
		}
		return r
	}, token)
	if utf8.RuneCountInString(rest) < 2 {
		return ""
	}
	return rest
}

func startsWithDigit(token string) bool {
	r, _ := utf8.DecodeRuneInString(token)
	return unicode.IsDigit(r)
}
