package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/hpungsan/repotxt/internal/config"
	"github.com/hpungsan/repotxt/internal/db"
	"github.com/hpungsan/repotxt/internal/logging"
	"github.com/hpungsan/repotxt/internal/mcp"
	"github.com/hpungsan/repotxt/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"flatten": true, "show": true, "list": true, "compose": true,
	"export": true, "delete": true, "purge": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return isHelpOrVersion()
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  repotxt ` + Version + `

  Flatten a repository's source code into one text file

  Usage: repotxt <command> [options]
         repotxt serve          (web UI on http://127.0.0.1:8080)
         repotxt --help

  MCP server mode requires piped input.`)
}

func main() {
	// .env is optional; values already in the environment win.
	_ = godotenv.Load()
	logger := logging.New()

	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil, logger)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}
	baseDir := filepath.Join(homeDir, ".repotxt")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", "tools", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		logger.Warn("unknown types in disabled_types", "types", unknown)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	fl := ops.NewFlattener(cfg, logger)

	if isCLIMode() {
		app := newCLIApp(database, cfg, fl, logger)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			database.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'repotxt --help' for usage.\n")
		database.Close()
		os.Exit(1)
	}

	logger.Debug("starting MCP server", "version", Version)
	if err := mcp.Run(database, cfg, fl, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		database.Close()
		os.Exit(1)
	}
}
