package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCatCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "cat <archive|url> <path>",
		Short: "Print one archive entry to stdout",
		Args:  cobra.ExactArgs(2),
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

			result, failure := w.Extract(ctx, req)
			if failure != nil {
				fmt.Fprintf(os.Stderr, "%s %s\n", red("✗"), failure.Message)
				return fmt.Errorf("extraction failed")
			}
			defer w.Release(result.SessionID)

			data, err := w.FetchEntry(result.SessionID, args[1])
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			_, err = os.Stdout.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Archive password")
	return cmd
}
