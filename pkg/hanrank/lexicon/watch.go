package lexicon

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 100 * time.Millisecond

// Watch reloads the lexicon at path whenever the file changes and passes
// each successfully compiled lexicon to onChange. A file that fails to load
// is logged and skipped, so the caller keeps its previous lexicon. Watch
// blocks until ctx is done.
//
// The parent directory is watched rather than the file, since editors
// usually save by renaming a temporary file over the original.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Lexicon)) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	// Editors often write several times per save; reload once things settle.
	timer := time.NewTimer(debounceInterval)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(debounceInterval)
			}

		case <-timer.C:
			lex, err := Load(abs)
			if err != nil {
				logger.Error("lexicon reload failed", "path", abs, "error", err)
				continue
			}
			logger.Info("lexicon reloaded", "path", abs, "stopwords", lex.Stats().Stopwords)
			onChange(lex)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("lexicon watcher error", "error", err)
		}
	}
}
