// Package service runs extraction cycles for the CLI and the HTTP API: it
// caches results, serializes refreshes, persists snapshots and swaps the
// lexicon at runtime.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/cognicore/hanrank/pkg/hanrank"
	"github.com/cognicore/hanrank/pkg/hanrank/internalerr"
	"github.com/cognicore/hanrank/pkg/hanrank/lexicon"
	"github.com/cognicore/hanrank/pkg/hanrank/rank"
	"github.com/cognicore/hanrank/pkg/hanrank/store"
)

// Batch is a set of headlines and a label for where they came from.
type Batch struct {
	Source string
	Titles []string
}

// Loader produces the next headline batch for a refresh.
type Loader func(ctx context.Context) (Batch, error)

// Overrides adjusts per-request extraction settings. Zero fields keep the
// service defaults.
type Overrides struct {
	Limit            int `json:"limit,omitempty"`
	KeywordsPerTitle int `json:"keywords_per_title,omitempty"`
}

// Config wires a Service.
type Config struct {
	// Options are the base extraction options; Lexicon may be nil.
	Options   hanrank.Options
	Store     store.Store
	Logger    *slog.Logger
	CacheSize int
	CacheTTL  time.Duration
	// Retention is the number of snapshots kept; zero keeps everything.
	Retention int
	// FreshFor lets Refresh reuse a snapshot younger than this instead of
	// loading a new batch. Zero always refreshes.
	FreshFor time.Duration
}

// Service is safe for concurrent use.
type Service struct {
	base      hanrank.Options
	store     store.Store
	logger    *slog.Logger
	cache     *expirable.LRU[string, hanrank.Result]
	retention int
	freshFor  time.Duration

	extractor  atomic.Pointer[hanrank.Extractor]
	generation atomic.Uint64

	// refreshSem holds one token; a refresh runs while holding it.
	refreshSem chan struct{}
	now        func() time.Time
}

// New builds a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: service needs a store", internalerr.ErrInvalidConfig)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 128
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = cfg.Logger
	}

	ext, err := hanrank.New(cfg.Options)
	if err != nil {
		return nil, err
	}

	s := &Service{
		base:      cfg.Options,
		store:     cfg.Store,
		logger:    cfg.Logger,
		cache:     expirable.NewLRU[string, hanrank.Result](cfg.CacheSize, nil, cfg.CacheTTL),
		retention: cfg.Retention,
		freshFor:  cfg.FreshFor,

		refreshSem: make(chan struct{}, 1),
		now:        time.Now,
	}
	s.extractor.Store(ext)
	return s, nil
}

// Extractor returns the extractor currently in use.
func (s *Service) Extractor() *hanrank.Extractor {
	return s.extractor.Load()
}

// Extract runs the pipeline over titles, serving repeated batches from the
// cache. Returned results are shared and must not be modified.
func (s *Service) Extract(titles []string, o Overrides) (hanrank.Result, error) {
	if o.Limit < 0 || o.KeywordsPerTitle < 0 {
		return hanrank.Result{}, fmt.Errorf("%w: negative override", internalerr.ErrInvalidInput)
	}

	ext := s.extractor.Load()
	opts := ext.Options()
	if o.Limit > 0 {
		opts.Limit = o.Limit
	}
	if o.KeywordsPerTitle > 0 {
		opts.KeywordsPerTitle = o.KeywordsPerTitle
	}

	key := s.cacheKey(opts, titles)
	if res, ok := s.cache.Get(key); ok {
		s.logger.Debug("extraction cache hit", "titles", len(titles))
		return res, nil
	}

	if opts.Limit != ext.Options().Limit || opts.KeywordsPerTitle != ext.Options().KeywordsPerTitle {
		derived, err := hanrank.New(opts)
		if err != nil {
			return hanrank.Result{}, err
		}
		ext = derived
	}

	res := ext.ExtractWithStats(titles)
	s.cache.Add(key, res)
	return res, nil
}

// cacheKey hashes the settings, the lexicon generation and the titles.
func (s *Service) cacheKey(opts hanrank.Options, titles []string) string {
	h := sha256.New()
	var buf [8]byte
	for _, v := range []uint64{
		s.generation.Load(),
		uint64(opts.Limit),
		uint64(opts.KeywordsPerTitle),
		uint64(len(titles)),
	} {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	for _, t := range titles {
		binary.BigEndian.PutUint64(buf[:], uint64(len(t)))
		h.Write(buf[:])
		h.Write([]byte(t))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Refresh loads a batch, extracts keywords and stores a snapshot. Only one
// refresh runs at a time; callers that waited behind another refresh get its
// snapshot when it is still fresh. A caller whose ctx ends while waiting
// returns ctx.Err().
func (s *Service) Refresh(ctx context.Context, load Loader) (store.Snapshot, error) {
	select {
	case s.refreshSem <- struct{}{}:
	case <-ctx.Done():
		return store.Snapshot{}, ctx.Err()
	}
	defer func() { <-s.refreshSem }()

	if s.freshFor > 0 {
		latest, err := s.store.LatestSnapshot(ctx)
		if err == nil && s.now().Sub(latest.CreatedAt) < s.freshFor {
			return latest, nil
		}
		if err != nil && !errors.Is(err, internalerr.ErrNotFound) {
			return store.Snapshot{}, err
		}
	}

	batch, err := load(ctx)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("load titles: %w", err)
	}

	res, err := s.Extract(batch.Titles, Overrides{})
	if err != nil {
		return store.Snapshot{}, err
	}

	snap, err := s.store.SaveSnapshot(ctx, store.Snapshot{
		CreatedAt: s.now(),
		Source:    batch.Source,
		Titles:    batch.Titles,
		Keywords:  res.Keywords,
	})
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	if s.retention > 0 {
		if n, err := s.store.Prune(ctx, s.retention); err != nil {
			s.logger.Warn("snapshot prune failed", "error", err)
		} else if n > 0 {
			s.logger.Debug("pruned snapshots", "removed", n)
		}
	}

	s.logger.Info("refresh complete",
		"snapshot", snap.ID,
		"source", batch.Source,
		"titles", len(batch.Titles),
		"skipped", res.Stats.Skipped,
		"keywords", len(res.Keywords))
	return snap, nil
}

// Run refreshes every interval until ctx is done. Failures are logged.
func (s *Service) Run(ctx context.Context, load Loader, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Refresh(ctx, load); err != nil && ctx.Err() == nil {
			s.logger.Error("refresh failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Latest returns the newest snapshot.
func (s *Service) Latest(ctx context.Context) (store.Snapshot, error) {
	return s.store.LatestSnapshot(ctx)
}

// History returns up to limit snapshots, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]store.Snapshot, error) {
	return s.store.ListSnapshots(ctx, limit)
}

// Changes compares the newest snapshot with the one before it. With no
// earlier snapshot every keyword is reported as new.
func (s *Service) Changes(ctx context.Context) (Diff, error) {
	cur, err := s.store.LatestSnapshot(ctx)
	if err != nil {
		return Diff{}, err
	}
	d := Diff{Current: cur.ID}
	prev, err := s.store.PreviousSnapshot(ctx, cur.ID)
	switch {
	case err == nil:
		d.Previous = prev.ID
	case errors.Is(err, internalerr.ErrNotFound):
	default:
		return Diff{}, err
	}
	d.Movements, d.Dropped = Compare(prev.Keywords, cur.Keywords)
	return d, nil
}

// Articles returns the titles of the newest snapshot that contain keyword.
func (s *Service) Articles(ctx context.Context, keyword string) ([]string, error) {
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword is required", internalerr.ErrInvalidInput)
	}
	snap, err := s.store.LatestSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := rank.Filter(snap.Titles, keyword)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// SetLexicon rebuilds the extractor around lex and swaps it in. In-flight
// extractions finish with the old one; cached results are dropped.
func (s *Service) SetLexicon(lex *lexicon.Lexicon) error {
	opts := s.base
	opts.Lexicon = lex
	ext, err := hanrank.New(opts)
	if err != nil {
		return err
	}
	s.extractor.Store(ext)
	s.generation.Add(1)
	s.cache.Purge()
	s.logger.Info("lexicon swapped", "stopwords", lex.Stats().Stopwords)
	return nil
}

// WatchLexicon swaps in path's lexicon whenever the file changes, until ctx
// is done. A broken file leaves the current lexicon in place.
func (s *Service) WatchLexicon(ctx context.Context, path string) error {
	return lexicon.Watch(ctx, path, s.logger, func(lex *lexicon.Lexicon) {
		if err := s.SetLexicon(lex); err != nil {
			s.logger.Error("lexicon swap failed", "error", err)
		}
	})
}
