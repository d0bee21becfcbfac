// Package cmd implements the hanrank command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/hanrank/internal/config"
	"github.com/cognicore/hanrank/internal/logger"
	"github.com/cognicore/hanrank/pkg/hanrank/lexicon"
	"github.com/cognicore/hanrank/pkg/hanrank/store"
	"github.com/cognicore/hanrank/pkg/hanrank/store/sqlite"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath  string
	lexiconPath string
	dbPath      string
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "hanrank",
		Short:        "Trending keyword extraction for Korean news headlines",
		Long:         "Extract, merge and rank the keywords of a batch of Korean news headlines.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default "+config.DefaultConfigPath()+")")
	root.PersistentFlags().StringVar(&g.lexiconPath, "lexicon", "", "lexicon YAML file (default: embedded lexicon)")
	root.PersistentFlags().StringVar(&g.dbPath, "db", "", "snapshot database path")

	root.AddCommand(newExtractCmd(g))
	root.AddCommand(newServeCmd(g))
	root.AddCommand(newHistoryCmd(g))
	root.AddCommand(newLexiconCmd(g))
	return root
}

// config loads the config file and applies flag overrides.
func (g *globals) config() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.lexiconPath != "" {
		cfg.LexiconPath = g.lexiconPath
	}
	if g.dbPath != "" {
		cfg.DBPath = g.dbPath
	}
	return cfg, nil
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default(), nil
	}
	return lexicon.Load(path)
}

func openStore(ctx context.Context, path string) (store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return sqlite.OpenSQLite(ctx, path)
}

func newLogger() *slog.Logger {
	return logger.New("hanrank")
}
