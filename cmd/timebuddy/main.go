// Package main provides the entry point for the timebuddy CLI.
package main

import (
	"os"

	"github.com/randalmurphal/timebuddy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
