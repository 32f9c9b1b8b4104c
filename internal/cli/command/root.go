// Package command provides CLI command definitions for
// leaderboard-cli, the offline administration tool for the local
// registry store. It opens the Badger data directory directly, so the
// bot process must not be running against the same directory.
package command

import (
	"github.com/urfave/cli/v2"

	"github.com/clickermsu/leaderboard-go/internal/infra/buildinfo"
	"github.com/clickermsu/leaderboard-go/internal/storage"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "leaderboard-cli",
		Usage:   "ClickerMSU leaderboard administration tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TopCommand(),
			RankCommand(),
			ListCommand(),
			DeleteCommand(),
			ExportCommand(),
			ImportCommand(),
			VerifyCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Badger data directory of the server",
			EnvVars: []string{"LEADERBOARD_STORAGE_DATA_DIR"},
			Value:   "/var/lib/leaderboard-server/data",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

// openEngine opens the store named by the global flags.
func openEngine(c *cli.Context) (*storage.Engine, error) {
	level := "warn"
	if c.Bool("verbose") {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "text"})
	if err != nil {
		return nil, err
	}

	return storage.Open(storage.Config{
		Dir:    c.String("data-dir"),
		Logger: log,
	})
}
