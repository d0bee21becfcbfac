// Package tokenize defines the morphological analyzer capability the
// extraction pipeline consumes, plus a rule-based fallback analyzer.
package tokenize

import "strings"

// Tagged is a token with its part-of-speech tag.
type Tagged struct {
	Text string
	Tag  string
}

// Tokenizer is supplied by an external morphological analyzer.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	// Nouns returns candidate noun phrases found in text.
	Nouns(text string) ([]string, error)
	// POS returns token / part-of-speech pairs for text.
	POS(text string) ([]Tagged, error)
}

// BatchTokenizer is implemented by analyzers that resolve ambiguous words
// using the rest of the batch. ForBatch must not modify the receiver.
type BatchTokenizer interface {
	Tokenizer
	ForBatch(titles []string) Tokenizer
}

// ForBatch returns tok prepared for titles, or tok itself when it does not
// use batch context.
func ForBatch(tok Tokenizer, titles []string) Tokenizer {
	if bt, ok := tok.(BatchTokenizer); ok {
		return bt.ForBatch(titles)
	}
	return tok
}

// Tags produced by Simple. External analyzers may use their own tag sets;
// IsNoun understands both these and the Sejong-style NN* tags.
const (
	TagNoun        = "Noun"
	TagJosa        = "Josa"
	TagNumber      = "Number"
	TagAlpha       = "Alpha"
	TagPunctuation = "Punctuation"
)

// IsNoun reports whether tag marks a noun.
func IsNoun(tag string) bool {
	return tag == TagNoun || strings.HasPrefix(tag, "NN")
}
