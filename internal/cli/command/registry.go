// Package command provides CLI command definitions for leaderboard-cli.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/clickermsu/leaderboard-go/internal/core/rank"
	"github.com/clickermsu/leaderboard-go/internal/core/service"
)

// TopCommand returns the "top" command.
func TopCommand() *cli.Command {
	return &cli.Command{
		Name:      "top",
		Usage:     "Show the highest-scoring players",
		ArgsUsage: "[n]",
		Action: func(c *cli.Context) error {
			n := service.TopSize
			if c.Args().Present() {
				v, err := strconv.Atoi(c.Args().First())
				if err != nil || v < 1 {
					return fmt.Errorf("n must be a positive integer, got %q", c.Args().First())
				}
				n = v
			}

			eng, err := openEngine(c)
			if err != nil {
				return err
			}
			defer eng.Close()

			return runTop(c.Context, eng, c.App.Writer, n, c.String("output"))
		},
	}
}

// RankCommand returns the "rank" command.
func RankCommand() *cli.Command {
	return &cli.Command{
		Name:      "rank",
		Usage:     "Show a player's leaderboard position",
		ArgsUsage: "<username>",
		Action: func(c *cli.Context) error {
			if !c.Args().Present() {
				return fmt.Errorf("username is required")
			}

			eng, err := openEngine(c)
			if err != nil {
				return err
			}
			defer eng.Close()

			return runRank(c.Context, eng, c.App.Writer, c.Args().First(), c.String("output"))
		},
	}
}

// ListCommand returns the "list" command.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Dump every registry record in insertion order",
		Action: func(c *cli.Context) error {
			eng, err := openEngine(c)
			if err != nil {
				return err
			}
			defer eng.Close()

			return runList(c.Context, eng, c.App.Writer, c.String("output"))
		},
	}
}

// DeleteCommand returns the "delete" command.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete every record with the given id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if !c.Args().Present() {
				return fmt.Errorf("id is required")
			}
			id, err := strconv.ParseInt(c.Args().First(), 10, 64)
			if err != nil {
				return fmt.Errorf("id must be an integer, got %q", c.Args().First())
			}

			eng, err := openEngine(c)
			if err != nil {
				return err
			}
			defer eng.Close()

			return runDelete(c.Context, eng, c.App.Writer, id)
		},
	}
}

// repo is the slice of the storage engine the read commands need.
type repo = service.Repository

func runTop(ctx context.Context, r repo, w io.Writer, n int, format string) error {
	rows, err := r.All(ctx)
	if err != nil {
		return err
	}
	entries := rank.TopN(rows, n)

	if format == "json" {
		return writeJSON(w, entries)
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tUSERNAME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", e.Rank, e.ID, e.Username)
	}
	return tw.Flush()
}

func runRank(ctx context.Context, r repo, w io.Writer, username, format string) error {
	rows, err := r.All(ctx)
	if err != nil {
		return err
	}
	entries := rank.Placement(rows, username)
	if entries == nil {
		return fmt.Errorf("no record for username %q", username)
	}

	if format == "json" {
		return writeJSON(w, entries)
	}

	for _, e := range entries {
		fmt.Fprintf(w, "#%d  id=%d  username=%s\n", e.Rank, e.ID, e.Username)
	}
	return nil
}

func runList(ctx context.Context, r repo, w io.Writer, format string) error {
	rows, err := r.All(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME")
	for _, u := range rows {
		fmt.Fprintf(tw, "%d\t%s\n", u.ID, u.Username)
	}
	return tw.Flush()
}

func runDelete(ctx context.Context, r repo, w io.Writer, id int64) error {
	n, err := r.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "deleted %d record(s) for id %d\n", n, id)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
