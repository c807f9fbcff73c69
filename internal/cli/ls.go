package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newLsCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "ls <archive|url>",
		Short: "List the entries of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, cfg, closeFn, err := newWorker()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			w.Warmup(ctx)

			req, release, err := openRequest(ctx, cfg, args[0], password)
			if err != nil {
				return err
			}
			defer release()

			stop := withSpinner(ctx, fmt.Sprintf("Extracting %s...", req.FileName))
			result, failure := w.Extract(ctx, req)
			stop()

			if failure != nil {
				fmt.Printf("%s %s\n", red("✗"), failure.Message)
				if failure.Recoverable {
					fmt.Printf("  %s\n", dim("(recoverable: "+string(failure.Code)+")"))
				}
				return fmt.Errorf("extraction failed")
			}
			defer w.Release(result.SessionID)

			fmt.Printf("%s %s %s, %d entries",
				green("✓"), bold(req.FileName), dim("("+result.Format.ID.String()+")"), len(result.Entries))
			if result.Encrypted {
				fmt.Printf(" %s", yellow("encrypted"))
			}
			fmt.Printf(" %s\n\n", dim("via "+result.Engine))

			for _, entry := range result.Entries {
				if entry.IsDir {
					fmt.Printf(" %10s  %s\n", "", dim(entry.Path))
					continue
				}
				fmt.Printf(" %10s  %s\n", humanize.Bytes(uint64(entry.Size)), entry.Path)
			}

			for _, warning := range result.Warnings {
				fmt.Printf("\n%s %s\n", yellow("!"), warning)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Archive password")
	return cmd
}
