// Package main provides the entry point for leaderboard-cli, the
// offline administration tool for the leaderboard registry store.
package main

import (
	"fmt"
	"os"

	"github.com/clickermsu/leaderboard-go/internal/cli/command"
)

func main() {
	app := command.App()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
