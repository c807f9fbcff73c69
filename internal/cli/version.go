package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/crateful/unbox/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the unbox version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("unbox %s %s/%s\n", version.Version, runtime.GOOS, runtime.GOARCH)
		},
	}
}
