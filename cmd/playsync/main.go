// Package main is the entry point for the playsync application.
package main

import (
	"os"

	"github.com/playsync/playsync/cmd/playsync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
