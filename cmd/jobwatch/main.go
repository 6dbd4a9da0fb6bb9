// Package main is the entry point for the jobwatch CLI.
package main

import (
	"os"

	"github.com/watchfire-io/jobwatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
