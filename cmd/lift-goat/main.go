package main

import (
	"os"

	"github.com/headline-goat/lift-goat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
