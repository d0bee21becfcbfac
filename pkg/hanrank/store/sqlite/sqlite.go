package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/hanrank/pkg/hanrank/internalerr"
	"github.com/cognicore/hanrank/pkg/hanrank/rank"
	"github.com/cognicore/hanrank/pkg/hanrank/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", internalerr.ErrStoreUnavailable, err)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	source TEXT,
	title_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS snapshot_titles (
	snapshot_id TEXT NOT NULL,
	pos INTEGER NOT NULL,
	title TEXT NOT NULL,
	PRIMARY KEY(snapshot_id, pos),
	FOREIGN KEY(snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS snapshot_keywords (
	snapshot_id TEXT NOT NULL,
	pos INTEGER NOT NULL,
	keyword TEXT NOT NULL,
	article_count INTEGER NOT NULL,
	variants TEXT NOT NULL,
	PRIMARY KEY(snapshot_id, pos),
	FOREIGN KEY(snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveSnapshot inserts a snapshot with its titles and keywords
func (s *sqliteStore) SaveSnapshot(ctx context.Context, snap store.Snapshot) (store.Snapshot, error) {
	snap = store.Prepare(snap)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Snapshot{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, created_at, source, title_count) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.CreatedAt.Format(time.RFC3339Nano), snap.Source, snap.TitleCount)
	if err != nil {
		return store.Snapshot{}, err
	}

	if err := insertTitles(ctx, tx, snap.ID, snap.Titles); err != nil {
		return store.Snapshot{}, err
	}
	if err := insertKeywords(ctx, tx, snap.ID, snap.Keywords); err != nil {
		return store.Snapshot{}, err
	}

	if err := tx.Commit(); err != nil {
		return store.Snapshot{}, err
	}
	return snap, nil
}

func insertTitles(ctx context.Context, tx *sql.Tx, id string, titles []string) error {
	if len(titles) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_titles (snapshot_id, pos, title) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, t := range titles {
		if _, err := stmt.ExecContext(ctx, id, i, t); err != nil {
			return err
		}
	}
	return nil
}

func insertKeywords(ctx context.Context, tx *sql.Tx, id string, kws []rank.Keyword) error {
	if len(kws) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_keywords (snapshot_id, pos, keyword, article_count, variants) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, kw := range kws {
		variants, err := json.Marshal(kw.Variants)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, id, i, kw.Keyword, kw.ArticleCount, string(variants)); err != nil {
			return err
		}
	}
	return nil
}

// GetSnapshot loads a snapshot by ID
func (s *sqliteStore) GetSnapshot(ctx context.Context, id string) (store.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, title_count FROM snapshots WHERE id = ?`, id)
	return s.load(ctx, row)
}

// LatestSnapshot loads the newest snapshot
func (s *sqliteStore) LatestSnapshot(ctx context.Context) (store.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, title_count FROM snapshots ORDER BY id DESC LIMIT 1`)
	return s.load(ctx, row)
}

// PreviousSnapshot loads the snapshot saved just before id
func (s *sqliteStore) PreviousSnapshot(ctx context.Context, id string) (store.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, title_count FROM snapshots WHERE id < ? ORDER BY id DESC LIMIT 1`, id)
	return s.load(ctx, row)
}

// ListSnapshots returns recent snapshots with keywords but without titles
func (s *sqliteStore) ListSnapshots(ctx context.Context, limit int) ([]store.Snapshot, error) {
	if limit <= 0 {
		return []store.Snapshot{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, title_count FROM snapshots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		kws, err := s.keywords(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Keywords = kws
	}
	if out == nil {
		out = []store.Snapshot{}
	}
	return out, nil
}

// Prune keeps the newest keep snapshots. Child rows are deleted explicitly
// since foreign_keys is a per-connection pragma.
func (s *sqliteStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	const stale = `SELECT id FROM snapshots ORDER BY id DESC LIMIT -1 OFFSET ?`
	for _, table := range []string{"snapshot_titles", "snapshot_keywords"} {
		q := `DELETE FROM ` + table + ` WHERE snapshot_id IN (` + stale + `)`
		if _, err := tx.ExecContext(ctx, q, keep); err != nil {
			return 0, err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (store.Snapshot, error) {
	var (
		snap    store.Snapshot
		created string
		source  sql.NullString
	)
	if err := sc.Scan(&snap.ID, &created, &source, &snap.TitleCount); err != nil {
		return store.Snapshot{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot %s: created_at: %w", snap.ID, err)
	}
	snap.CreatedAt = t
	snap.Source = source.String
	return snap, nil
}

func (s *sqliteStore) load(ctx context.Context, row *sql.Row) (store.Snapshot, error) {
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, internalerr.ErrNotFound
	}
	if err != nil {
		return store.Snapshot{}, err
	}

	if snap.Keywords, err = s.keywords(ctx, snap.ID); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Titles, err = s.titles(ctx, snap.ID); err != nil {
		return store.Snapshot{}, err
	}
	return snap, nil
}

func (s *sqliteStore) keywords(ctx context.Context, id string) ([]rank.Keyword, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT keyword, article_count, variants FROM snapshot_keywords WHERE snapshot_id = ? ORDER BY pos`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kws := []rank.Keyword{}
	for rows.Next() {
		var (
			kw       rank.Keyword
			variants string
		)
		if err := rows.Scan(&kw.Keyword, &kw.ArticleCount, &variants); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(variants), &kw.Variants); err != nil {
			return nil, fmt.Errorf("snapshot %s: variants of %q: %w", id, kw.Keyword, err)
		}
		kws = append(kws, kw)
	}
	return kws, rows.Err()
}

func (s *sqliteStore) titles(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title FROM snapshot_titles WHERE snapshot_id = ? ORDER BY pos`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}
