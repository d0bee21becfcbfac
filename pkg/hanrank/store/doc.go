// Package store defines snapshot persistence for extraction runs.
//
// Implementations live in the sqlite and memstore subpackages.
package store
