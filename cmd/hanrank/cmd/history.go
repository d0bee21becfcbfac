package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/hanrank/internal/service"
)

func newHistoryCmd(g *globals) *cobra.Command {
	var (
		limit  int
		top    int
		asJSON bool
		diff   bool
	)
	c := &cobra.Command{
		Use:   "history",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			snaps, err := st.ListSnapshots(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snaps)
			}
			if len(snaps) == 0 {
				fmt.Fprintln(out, "no snapshots")
				return nil
			}
			for i, s := range snaps {
				names := make([]string, 0, top)
				for j, k := range s.Keywords {
					if j == top {
						break
					}
					names = append(names, k.Keyword)
				}
				fmt.Fprintf(out, "%s  %s  %4d titles  %s\n", s.ID, formatTime(s.CreatedAt), s.TitleCount, strings.Join(names, ", "))

				if diff && i+1 < len(snaps) {
					moves, dropped := service.Compare(snaps[i+1].Keywords, s.Keywords)
					for _, m := range moves {
						switch {
						case m.New:
							fmt.Fprintf(out, "    new  %s\n", m.Keyword)
						case m.Delta > 0:
							fmt.Fprintf(out, "    +%-3d %s\n", m.Delta, m.Keyword)
						case m.Delta < 0:
							fmt.Fprintf(out, "    %-4d %s\n", m.Delta, m.Keyword)
						}
					}
					for _, k := range dropped {
						fmt.Fprintf(out, "    out  %s\n", k)
					}
				}
			}
			return nil
		},
	}
	c.Flags().IntVarP(&limit, "limit", "n", 20, "number of snapshots to list")
	c.Flags().IntVar(&top, "top", 5, "keywords shown per snapshot")
	c.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	c.Flags().BoolVar(&diff, "diff", false, "show keyword movement against the previous snapshot")
	return c
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
