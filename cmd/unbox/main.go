package main

import (
	"os"

	"github.com/crateful/unbox/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
