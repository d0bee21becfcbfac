package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/hanrank/pkg/hanrank/internalerr"
	"github.com/cognicore/hanrank/pkg/hanrank/rank"
	"github.com/cognicore/hanrank/pkg/hanrank/store"
)

// Store is an in-memory implementation of store.Store for tests and for
// running without a database.
type Store struct {
	mu    sync.RWMutex
	snaps []store.Snapshot // sorted by ID
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveSnapshot implements store.Store.
func (s *Store) SaveSnapshot(ctx context.Context, snap store.Snapshot) (store.Snapshot, error) {
	snap = copySnapshot(store.Prepare(snap), true)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.snaps), func(i int) bool { return s.snaps[i].ID >= snap.ID })
	if i < len(s.snaps) && s.snaps[i].ID == snap.ID {
		return store.Snapshot{}, internalerr.ErrInvalidInput
	}
	s.snaps = append(s.snaps, store.Snapshot{})
	copy(s.snaps[i+1:], s.snaps[i:])
	s.snaps[i] = snap

	return copySnapshot(snap, true), nil
}

// GetSnapshot implements store.Store.
func (s *Store) GetSnapshot(ctx context.Context, id string) (store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, snap := range s.snaps {
		if snap.ID == id {
			return copySnapshot(snap, true), nil
		}
	}
	return store.Snapshot{}, internalerr.ErrNotFound
}

// LatestSnapshot implements store.Store.
func (s *Store) LatestSnapshot(ctx context.Context) (store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snaps) == 0 {
		return store.Snapshot{}, internalerr.ErrNotFound
	}
	return copySnapshot(s.snaps[len(s.snaps)-1], true), nil
}

// PreviousSnapshot implements store.Store.
func (s *Store) PreviousSnapshot(ctx context.Context, id string) (store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := sort.Search(len(s.snaps), func(i int) bool { return s.snaps[i].ID >= id })
	if i == 0 {
		return store.Snapshot{}, internalerr.ErrNotFound
	}
	return copySnapshot(s.snaps[i-1], true), nil
}

// ListSnapshots implements store.Store.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []store.Snapshot{}
	for i := len(s.snaps) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copySnapshot(s.snaps[i], false))
	}
	return out, nil
}

// Prune implements store.Store.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	if len(s.snaps) <= keep {
		return 0, nil
	}
	removed := len(s.snaps) - keep
	s.snaps = append([]store.Snapshot(nil), s.snaps[removed:]...)
	return removed, nil
}

func copySnapshot(snap store.Snapshot, withTitles bool) store.Snapshot {
	out := snap
	out.Titles = nil
	if withTitles && snap.Titles != nil {
		out.Titles = append([]string(nil), snap.Titles...)
	}
	out.Keywords = make([]rank.Keyword, len(snap.Keywords))
	for i, kw := range snap.Keywords {
		kw.Variants = append([]string(nil), kw.Variants...)
		out.Keywords[i] = kw
	}
	return out
}
