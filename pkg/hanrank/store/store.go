package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/hanrank/pkg/hanrank/rank"
)

// Store persists extraction snapshots. Snapshot IDs are ULIDs, so ID order
// is creation order.
type Store interface {
	Close() error

	// SaveSnapshot stores s, assigning ID and CreatedAt when they are zero,
	// and returns the stored snapshot.
	SaveSnapshot(ctx context.Context, s Snapshot) (Snapshot, error)
	// GetSnapshot returns internalerr.ErrNotFound for unknown IDs.
	GetSnapshot(ctx context.Context, id string) (Snapshot, error)
	// LatestSnapshot returns internalerr.ErrNotFound when the store is empty.
	LatestSnapshot(ctx context.Context) (Snapshot, error)
	// PreviousSnapshot returns the snapshot saved immediately before id.
	PreviousSnapshot(ctx context.Context, id string) (Snapshot, error)
	// ListSnapshots returns up to limit snapshots, newest first, without
	// their titles.
	ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error)
	// Prune deletes all but the newest keep snapshots and reports how many
	// were removed.
	Prune(ctx context.Context, keep int) (int, error)
}

// Snapshot is one extraction run over a headline batch.
type Snapshot struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Source     string         `json:"source,omitempty"`
	TitleCount int            `json:"title_count"`
	Titles     []string       `json:"titles,omitempty"`
	Keywords   []rank.Keyword `json:"keywords"`
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new ULID for time t.
func NewID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}

// Prepare fills in the ID, timestamp and title count of a snapshot about to
// be saved.
func Prepare(s Snapshot) Snapshot {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.CreatedAt = s.CreatedAt.UTC()
	if s.ID == "" {
		s.ID = NewID(s.CreatedAt)
	}
	if s.TitleCount == 0 {
		s.TitleCount = len(s.Titles)
	}
	if s.Keywords == nil {
		s.Keywords = []rank.Keyword{}
	}
	return s
}
