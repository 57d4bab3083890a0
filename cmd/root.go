// Package cmd implements the CLI command structure for todos.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/todos/internal/config"
	"github.com/nibzard/todos/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the todos CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todos", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	// Determine the subcommand; ls is the default
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	cfg := cws.Config
	a := &app{
		cfg:    cfg,
		cws:    cws,
		in:     os.Stdin,
		out:    stdout,
		errOut: stderr,
		logger: logging.NewConsoleFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller),
	}

	switch subcommand {
	case "doctor":
		return a.doctorCommand(ctx, remainingArgs)
	case "config":
		return a.configCommand(remainingArgs)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Execute the subcommand
	switch subcommand {
	case "ls", "list":
		return a.lsCommand(ctx, remainingArgs)
	case "add":
		return a.addCommand(ctx, remainingArgs)
	case "edit":
		return a.editCommand(ctx, remainingArgs)
	case "toggle", "done":
		return a.toggleCommand(ctx, remainingArgs)
	case "rm", "delete":
		return a.rmCommand(ctx, remainingArgs)
	case "export":
		return a.exportCommand(ctx, remainingArgs)
	case "import":
		return a.importCommand(ctx, remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "watch":
		return a.watchCommand(ctx, remainingArgs)
	case "tail":
		return a.tailCommand(ctx, remainingArgs)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "todos version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todos - a local, single-user task tracker")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todos [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  ls [status]           List todos (default command)")
	fmt.Fprintln(w, "  add <title>           Add a todo")
	fmt.Fprintln(w, "  edit <id>             Change title, deadline or priority")
	fmt.Fprintln(w, "  toggle <id>...        Flip completed (alias: done)")
	fmt.Fprintln(w, "  rm <id>...            Delete todos")
	fmt.Fprintln(w, "  export                Write a JSON backup")
	fmt.Fprintln(w, "  import <file>         Replace all todos from a JSON backup")
	fmt.Fprintln(w, "  tui                   Launch terminal UI")
	fmt.Fprintln(w, "  watch                 Log overdue and due-soon todos on a schedule")
	fmt.Fprintln(w, "  doctor                Check config, storage and stored data")
	fmt.Fprintln(w, "  config                Show effective config and where each value came from")
	fmt.Fprintln(w, "  tail                  Show the activity journal")
	fmt.Fprintln(w, "  version               Show version information")
	fmt.Fprintln(w, "  help                  Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ids can be given in full or by a unique prefix or suffix.")
	fmt.Fprintln(w, "Deadlines are YYYY-MM-DD, today, tomorrow or +N (days from today).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add/Edit Options:")
	fmt.Fprintln(w, "  -title string")
	fmt.Fprintln(w, "        Title (add also accepts it as arguments)")
	fmt.Fprintln(w, "  -due string")
	fmt.Fprintln(w, "        Deadline")
	fmt.Fprintln(w, "  -priority string")
	fmt.Fprintln(w, "        high, medium or low (default medium)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -status string")
	fmt.Fprintln(w, "        all, pending or completed")
	fmt.Fprintln(w, "  -priority string")
	fmt.Fprintln(w, "        all, high, medium or low")
	fmt.Fprintln(w, "  -json")
	fmt.Fprintln(w, "        Print the listed todos as JSON")
	fmt.Fprintln(w, "  -l    Show full ids and timestamps")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export/Import Options:")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Export destination, - for stdout (default todos-backup-YYYY-MM-DD.json)")
	fmt.Fprintln(w, "  -strict")
	fmt.Fprintln(w, "        Reject imports with schema findings")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watch Options:")
	fmt.Fprintln(w, "  -once")
	fmt.Fprintln(w, "        Scan once and exit")
	fmt.Fprintln(w, "  -schedule string")
	fmt.Fprintln(w, "        Cron expression or @every <duration>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the journal (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}
