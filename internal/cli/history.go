package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crateful/unbox/internal/config"
	"github.com/crateful/unbox/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent extractions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			hist, err := history.NewSQLite(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer hist.Close()

			recs, err := hist.List(limit)
			if err != nil {
				return err
			}

			if len(recs) == 0 {
				fmt.Printf("%s No extractions recorded\n", dim("○"))
				return nil
			}

			for _, rec := range recs {
				status := green("✓")
				note := fmt.Sprintf("%d entries", rec.Entries)
				if rec.Outcome != "ok" {
					status = red("✗")
					note = rec.Outcome
				}

				line := fmt.Sprintf("%s %s %s %s %s",
					status,
					dim(rec.CreatedAt.Format("2006-01-02 15:04")),
					bold(rec.FileName),
					dim("("+rec.Format.String()+"/"+rec.Engine+")"),
					note)
				if rec.Encrypted {
					line += " " + yellow("encrypted")
				}
				fmt.Println(line)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show")
	return cmd
}
