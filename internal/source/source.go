// Package source loads headline batches from files, saved ranking pages and
// RSS/Atom feeds.
package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Item is one headline with whatever metadata the source provides.
type Item struct {
	URL         string    `json:"url,omitempty"`
	Title       string    `json:"title"`
	Outlet      string    `json:"outlet,omitempty"`
	Rank        int       `json:"rank,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Titles returns the non-empty titles of items in order.
func Titles(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it.Title); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ReadLines reads one title per line. Blank lines are skipped.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var titles []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		titles = append(titles, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read titles: %w", err)
	}
	return titles, nil
}

// LoadJSONL loads items from a JSONL file. Malformed lines are logged and
// skipped; a file without a single valid item is an error.
func LoadJSONL(path string, logger *slog.Logger) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	items, err := DecodeJSONL(f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// DecodeJSONL is LoadJSONL over a reader.
func DecodeJSONL(r io.Reader, logger *slog.Logger) ([]Item, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var items []Item
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			logger.Warn("skipping malformed JSON line", "line", lineNo, "error", err)
			continue
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found")
	}
	return items, nil
}
