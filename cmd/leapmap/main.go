// Package main is the entry point of the leapmap CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapmap/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
