package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cognicore/hanrank/internal/source"
)

// FeedLoader fetches every feed in urls and merges their titles. A feed that
// fails is logged and skipped; the load fails only when all of them do.
func FeedLoader(urls []string, timeout time.Duration, logger *slog.Logger) Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return func(ctx context.Context) (Batch, error) {
		if len(urls) == 0 {
			return Batch{}, fmt.Errorf("no feeds configured")
		}
		var (
			titles []string
			failed int
		)
		for _, u := range urls {
			fctx, cancel := context.WithTimeout(ctx, timeout)
			items, err := source.FetchFeed(fctx, u)
			cancel()
			if err != nil {
				failed++
				logger.Warn("feed fetch failed", "url", u, "error", err)
				continue
			}
			titles = append(titles, source.Titles(items)...)
		}
		if failed == len(urls) {
			return Batch{}, fmt.Errorf("all %d feeds failed", failed)
		}
		return Batch{Source: strings.Join(urls, ","), Titles: titles}, nil
	}
}

// StaticLoader always returns the same batch.
func StaticLoader(b Batch) Loader {
	return func(context.Context) (Batch, error) { return b, nil }
}
