// Command kartwise is the entry point for the Kartwise shopping assistant.
// It provides a CLI chat interface (via Cobra) and an optional HTTP server
// exposing the assistant as a REST API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kartwise/kartwise/cmd/kartwise/commands"
)

func main() {
	// Load .env if present; real env vars are never overwritten.
	_ = godotenv.Load()

	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
