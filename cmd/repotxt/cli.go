package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/repotxt/internal/config"
	"github.com/hpungsan/repotxt/internal/errors"
	"github.com/hpungsan/repotxt/internal/flatten"
	"github.com/hpungsan/repotxt/internal/ops"
	"github.com/hpungsan/repotxt/internal/web"
)

// stdout is where command output goes. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, fl *flatten.Flattener, logger *slog.Logger) *cli.App {
	app := &cli.App{
		Name:    "repotxt",
		Usage:   "Flatten a repository's source code into one text file",
		Version: Version,
		Commands: []*cli.Command{
			flattenCmd(db, cfg, fl),
			showCmd(db),
			listCmd(db),
			composeCmd(db),
			exportCmd(db, cfg),
			deleteCmd(db),
			purgeCmd(db),
			serveCmd(db, cfg, fl, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// flattenCmd creates the flatten command.
func flattenCmd(db *sql.DB, cfg *config.Config, fl *flatten.Flattener) *cli.Command {
	return &cli.Command{
		Name:      "flatten",
		Usage:     "Clone a repository and store its source files as a snapshot",
		ArgsUsage: "<repository-url>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "print", Aliases: []string{"p"}, Usage: "Print the combined text instead of the snapshot summary"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one repository URL is required"))
			}

			output, err := ops.Flatten(c.Context, db, cfg, fl, ops.FlattenInput{
				RepositoryURL: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("print") {
				composed, err := ops.Compose(c.Context, db, ops.ComposeInput{ID: output.ID})
				if err != nil {
					return outputError(err)
				}
				return outputText(composed.BundleText)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a snapshot's file list, or one file's content",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Relative path of a file to print"},
			&cli.BoolFlag{Name: "include-content", Usage: "Include content for every file"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{
				ID:             c.Args().First(),
				Path:           c.String("path"),
				IncludeContent: c.Bool("include-content"),
			}

			output, err := ops.Fetch(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			if output.File != nil {
				return outputText(output.File.Content)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored snapshots, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "repository", Aliases: []string{"r"}, Usage: "Filter by repository URL"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			}
			if repo := c.String("repository"); repo != "" {
				input.RepositoryURL = &repo
			}

			output, err := ops.List(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// composeCmd creates the compose command.
func composeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "compose",
		Usage:     "Print every file of a snapshot as one document",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: ops.FormatText, Usage: "Output format: text|markdown|json"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Compose(c.Context, db, ops.ComposeInput{
				ID:     c.Args().First(),
				Format: c.String("format"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputText(output.BundleText)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a snapshot's combined text to a .txt file",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.repotxt/exports/<repo>-<timestamp>.txt)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				ID:   c.Args().First(),
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a snapshot",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "repository", Aliases: []string{"r"}, Usage: "Filter by repository URL"},
			&cli.StringFlag{Name: "older-than", Usage: "Only purge snapshots created more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if repo := c.String("repository"); repo != "" {
				input.RepositoryURL = &repo
			}
			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config, fl *flatten.Flattener, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}

			srv := web.NewServer(db, cfg, fl, logger, Version, c.String("bind"), port)
			return web.Run(srv, logger)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputText writes s to stdout, ending with exactly one newline when non-empty.
func outputText(s string) error {
	if s == "" {
		return nil
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(stdout, s)
	return err
}

// outputError formats error for CLI.
func outputError(err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return cli.Exit(fmt.Sprintf("[%s] %s", e.Code, e.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
