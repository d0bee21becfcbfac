package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/hanrank/internal/server"
	"github.com/cognicore/hanrank/internal/service"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic feed refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(g, addr)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return c
}

func runServe(g *globals, addr string) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	log := newLogger()

	lex, err := loadLexicon(cfg.LexiconPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	st, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := cfg.Extraction.Options()
	opts.Lexicon = lex
	svc, err := service.New(service.Config{
		Options:   opts,
		Store:     st,
		Logger:    log,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Retention: cfg.Retention,
		FreshFor:  cfg.RefreshInterval / 2,
	})
	if err != nil {
		return err
	}

	var load service.Loader
	if len(cfg.Feeds) > 0 {
		load = service.FeedLoader(cfg.Feeds, cfg.FetchTimeout, log)
		go svc.Run(ctx, load, cfg.RefreshInterval)
	} else {
		log.Info("no feeds configured, periodic refresh disabled")
	}

	if cfg.LexiconPath != "" {
		go func() {
			if err := svc.WatchLexicon(ctx, cfg.LexiconPath); err != nil {
				log.Error("lexicon watch stopped", slog.Any("err", err))
			}
		}()
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(svc, load, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", slog.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
	return nil
}
