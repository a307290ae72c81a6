// Package main is the entry point for the dompick CLI.
package main

import (
	"os"

	"github.com/AmeRaino/dompick/cmd/dompick/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
