package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/hanrank/pkg/hanrank"
	"github.com/cognicore/hanrank/pkg/hanrank/lexicon"
	"github.com/cognicore/hanrank/pkg/hanrank/stoplist"
)

func newLexiconCmd(g *globals) *cobra.Command {
	c := &cobra.Command{
		Use:   "lexicon",
		Short: "Inspect and tune lexicon files",
	}
	c.AddCommand(newLexiconCheckCmd())
	c.AddCommand(newLexiconDumpCmd())
	c.AddCommand(newLexiconSuggestCmd(g))
	return c
}

func newLexiconCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a lexicon file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lex, err := lexicon.Load(args[0])
			if err != nil {
				return err
			}
			st := lex.Stats()
			fmt.Fprintf(cmd.OutOrStdout(),
				"ok: %d stopwords, %d proper nouns, %d known nouns, %d compound patterns, %d person patterns\n",
				st.Stopwords, st.ProperNouns, st.KnownNouns, st.CompoundPatterns, st.PersonPatterns)
			return nil
		},
	}
}

func newLexiconDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the embedded lexicon as a starting point for a custom one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(lexicon.DefaultYAML())
			return err
		},
	}
}

func newLexiconSuggestCmd(g *globals) *cobra.Command {
	var (
		format string
		th     = stoplist.DefaultThresholds()
	)
	c := &cobra.Command{
		Use:   "suggest [file]",
		Short: "Suggest stopwords from a headline batch",
		Long: `Tokenize a headline batch with the current lexicon and list tokens that
appear in too many headlines to be useful keywords.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			lex, err := loadLexicon(cfg.LexiconPath)
			if err != nil {
				return err
			}
			batch, err := readBatch(cmd.InOrStdin(), args, format, 0, newLogger())
			if err != nil {
				return err
			}

			opts := cfg.Extraction.Options()
			opts.Lexicon = lex
			ext, err := hanrank.New(opts)
			if err != nil {
				return err
			}

			stats := stoplist.DocumentFrequency(ext.TitleTokens(batch.Titles))
			candidates := lex.Stopwords().SuggestCandidates(stats, th)

			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				fmt.Fprintln(out, "no candidates")
				return nil
			}
			for _, cand := range candidates {
				fmt.Fprintf(out, "%-12s df=%-4d %5.1f%%\n", cand.Token, cand.DF, cand.DFPercent)
			}
			return nil
		},
	}
	c.Flags().StringVar(&format, "format", "lines", "input format: lines, jsonl or html")
	c.Flags().Float64Var(&th.DFPercent, "df-percent", th.DFPercent, "minimum share of headlines, in percent")
	c.Flags().IntVar(&th.MinDF, "min-df", th.MinDF, "minimum number of headlines")
	return c
}
