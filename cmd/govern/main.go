// Command govern is the council governance CLI: proposals, weighted
// voting, the voter registry, node scoring, voting strategies, and the
// live telemetry daemon.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Try to load .env from CWD if present; otherwise use environment as-is
	if _, statErr := os.Stat(".env"); statErr == nil {
		_ = godotenv.Load(".env")
	}

	Execute()
}
