package main

import (
	"os"

	"github.com/docrunner/docrunner/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
