package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/hanrank/internal/service"
	"github.com/cognicore/hanrank/internal/source"
	"github.com/cognicore/hanrank/pkg/hanrank"
)

type extractFlags struct {
	format       string
	feeds        []string
	limit        int
	perTitle     int
	stripNumeric bool
	asJSON       bool
	save         bool
	maxItems     int
}

func newExtractCmd(g *globals) *cobra.Command {
	f := &extractFlags{}
	c := &cobra.Command{
		Use:   "extract [file]",
		Short: "Rank the keywords of a headline batch",
		Long: `Read headlines from a file (or stdin when the file is omitted or "-"),
or from RSS/Atom feeds with --feed, and print the ranked keywords.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, g, f, args)
		},
	}
	c.Flags().StringVar(&f.format, "format", "lines", "input format: lines, jsonl or html")
	c.Flags().StringSliceVar(&f.feeds, "feed", nil, "RSS/Atom feed URL (repeatable)")
	c.Flags().IntVarP(&f.limit, "limit", "n", 0, "number of keywords to return")
	c.Flags().IntVar(&f.perTitle, "per-title", 0, "keywords kept per headline")
	c.Flags().BoolVar(&f.stripNumeric, "strip-numeric", false, "drop numeric tokens")
	c.Flags().BoolVar(&f.asJSON, "json", false, "print JSON")
	c.Flags().BoolVar(&f.save, "save", false, "store the result as a snapshot")
	c.Flags().IntVar(&f.maxItems, "max", 0, "read at most this many headlines from an html page")
	return c
}

func runExtract(cmd *cobra.Command, g *globals, f *extractFlags, args []string) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	log := newLogger()

	lex, err := loadLexicon(cfg.LexiconPath)
	if err != nil {
		return err
	}
	opts := cfg.Extraction.Options()
	opts.Lexicon = lex
	opts.Logger = log
	if f.limit > 0 {
		opts.Limit = f.limit
	}
	if f.perTitle > 0 {
		opts.KeywordsPerTitle = f.perTitle
	}
	if f.stripNumeric {
		opts.StripNumeric = true
	}

	ctx := cmd.Context()

	var load service.Loader
	if len(f.feeds) > 0 {
		if len(args) > 0 {
			return fmt.Errorf("use either a file or --feed, not both")
		}
		load = service.FeedLoader(f.feeds, cfg.FetchTimeout, log)
	} else {
		batch, err := readBatch(cmd.InOrStdin(), args, f.format, f.maxItems, log)
		if err != nil {
			return err
		}
		load = service.StaticLoader(batch)
	}

	var res hanrank.Result
	if f.save {
		st, err := openStore(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		svc, err := service.New(service.Config{Options: opts, Store: st, Logger: log, Retention: cfg.Retention})
		if err != nil {
			return err
		}
		snap, err := svc.Refresh(ctx, load)
		if err != nil {
			return err
		}
		log.Info("snapshot saved", "id", snap.ID)
		res = hanrank.Result{Keywords: snap.Keywords}
	} else {
		batch, err := load(ctx)
		if err != nil {
			return err
		}
		ext, err := hanrank.New(opts)
		if err != nil {
			return err
		}
		res = ext.ExtractWithStats(batch.Titles)
		log.Debug("extraction stats",
			"titles", res.Stats.Titles,
			"skipped", res.Stats.Skipped,
			"distinct", res.Stats.Distinct,
			"clusters", res.Stats.Clusters)
	}

	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Keywords)
	}
	printKeywords(out, res.Keywords)
	return nil
}

// readBatch reads titles from args[0] or stdin in the given format.
func readBatch(stdin io.Reader, args []string, format string, maxItems int, log *slog.Logger) (service.Batch, error) {
	name := "-"
	if len(args) > 0 {
		name = args[0]
	}
	r := stdin
	if name != "-" {
		fh, err := os.Open(name)
		if err != nil {
			return service.Batch{}, err
		}
		defer fh.Close()
		r = fh
	}

	var titles []string
	switch format {
	case "lines":
		t, err := source.ReadLines(r)
		if err != nil {
			return service.Batch{}, err
		}
		titles = t
	case "jsonl":
		items, err := source.DecodeJSONL(r, log)
		if err != nil {
			return service.Batch{}, err
		}
		titles = source.Titles(items)
	case "html":
		items, err := source.ParseRankingHTML(r, "", maxItems)
		if err != nil {
			return service.Batch{}, err
		}
		titles = source.Titles(items)
	default:
		return service.Batch{}, fmt.Errorf("unknown format %q (want lines, jsonl or html)", format)
	}
	if len(titles) == 0 {
		log.Warn("no headlines read", "input", name)
	}
	return service.Batch{Source: name, Titles: titles}, nil
}

func printKeywords(w io.Writer, kws []hanrank.Keyword) {
	if len(kws) == 0 {
		fmt.Fprintln(w, "no keywords")
		return
	}
	for i, k := range kws {
		line := fmt.Sprintf("%2d. %s (%d)", i+1, k.Keyword, k.ArticleCount)
		if len(k.Variants) > 1 {
			line += "  [" + strings.Join(k.Variants, ", ") + "]"
		}
		fmt.Fprintln(w, line)
	}
}
