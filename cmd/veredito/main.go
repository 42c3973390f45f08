// veredito classifies customer-support chat transcripts: it decides whether
// a conversation needed a transfer to a human agent, whether one happened,
// and what went wrong, using either a remote model or a local rule engine.
//
// Usage:
//
//	veredito serve
//	veredito analyze --input conversas.xlsx --engine openai --out report.csv
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
