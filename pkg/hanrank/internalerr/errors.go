// Package internalerr holds the sentinel errors callers match with errors.Is.
package internalerr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
	// ErrTokenizer wraps failures and panics of the morphological analyzer.
	ErrTokenizer = errors.New("tokenizer failure")
)
