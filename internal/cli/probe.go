package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crateful/unbox/internal/detect"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Detect the archive format without extracting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			head := make([]byte, detect.SniffLen)
			n, err := io.ReadFull(f, head)
			if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
				return err
			}

			format := detect.Detect(head[:n], filepath.Base(args[0]))

			shape := "multi-entry container"
			if format.SingleStream {
				shape = "single-file compression"
			}
			fmt.Printf("%s %s %s\n", cyan("format:"), bold(format.ID), dim("("+shape+")"))
			return nil
		},
	}
}
