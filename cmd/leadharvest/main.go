// Package main is the entry point for the leadharvest CLI.
package main

import (
	"os"

	"github.com/leadharvest/leadharvest/cmd/leadharvest/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
