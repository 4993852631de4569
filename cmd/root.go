// Package cmd implements the CLI command structure for taskledger.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/taskledger-dev/taskledger/internal/config"
	"github.com/taskledger-dev/taskledger/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Exit codes distinguish "the ledger is bad" from "the tool broke".
const (
	ExitSuccess         = 0
	ExitSystemError     = 1
	ExitValidationError = 2
)

// ExitError carries a process exit code alongside the error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if ee, ok := err.(*ExitError); ok {
		return ee.Code
	}
	return ExitSystemError
}

func validationFailed(err error) error {
	return &ExitError{Code: ExitValidationError, Err: err}
}

// Run executes the taskledger CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskledger", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	logger := logging.NewConsoleFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	// Default to "run" when no subcommand is given.
	subcommand := "run"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "run":
		return runCommand(ctx, cfg, logger, remainingArgs)
	case "validate":
		return validateCommand(cfg, logger, remainingArgs)
	case "report":
		return reportCommand(ctx, cfg, logger, remainingArgs)
	case "add":
		return addCommand(cfg, logger, remainingArgs)
	case "archive":
		return archiveCommand(cfg, logger, remainingArgs)
	case "convert":
		return convertCommand(cfg, logger, remainingArgs)
	case "changelog":
		return changelogCommand(cfg, logger, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		// An existing file path stands in for the tasks file.
		if fi, err := os.Stat(subcommand); err == nil && !fi.IsDir() {
			cfg.TasksFile = subcommand
			cfg.Format = config.FormatForPath(subcommand)
			return runCommand(ctx, cfg, logger, remainingArgs)
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("taskledger version %s\n", Version)
	return nil
}

// resolveTasksFile applies an optional positional tasks-file argument.
func resolveTasksFile(cfg *config.Config, remaining []string) error {
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		cfg.TasksFile = remaining[0]
		cfg.Format = config.FormatForPath(remaining[0])
	}
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Taskledger - A markdown/YAML task ledger engine")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskledger [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run [file]       Run the test command and reconcile results (default)")
	fmt.Fprintln(w, "  validate [file]  Validate ledger fields and dependency graph")
	fmt.Fprintln(w, "  report [file]    Classify a test run without touching the ledger")
	fmt.Fprintln(w, "  add [file]       Add a task to the ledger")
	fmt.Fprintln(w, "  archive [file]   Move a completed task to the archive")
	fmt.Fprintln(w, "  convert [file]   Convert the ledger between markdown and yaml")
	fmt.Fprintln(w, "  changelog        Write a changelog entry")
	fmt.Fprintln(w, "  tui [file]       Browse the ledger in a terminal UI")
	fmt.Fprintln(w, "  version          Show version information")
	fmt.Fprintln(w, "  help             Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run Options (use with 'run' command):")
	fmt.Fprintln(w, "  -dry-run")
	fmt.Fprintln(w, "        Report changes without writing the ledger")
	fmt.Fprintln(w, "  -input string")
	fmt.Fprintln(w, "        Read test results from a file instead of running the test command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options (use with 'add' command):")
	fmt.Fprintln(w, "  -title string        Task title (required)")
	fmt.Fprintln(w, "  -priority string     Critical|High|Medium|Low (default Medium)")
	fmt.Fprintln(w, "  -description string  Task description")
	fmt.Fprintln(w, "  -estimate string     Estimated time (e.g. '30 minutes')")
	fmt.Fprintln(w, "  -after string        Comma-separated prerequisite titles")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Archive Options: -id int (task ID to archive)")
	fmt.Fprintln(w, "Convert Options: -to string (markdown|yaml), -out string")
	fmt.Fprintln(w, "Changelog Options: -title string, -body string")
}

// logResult prints a validation result through the logger.
func logResult(logger *charmlog.Logger, errs, warnings []string) {
	for _, w := range warnings {
		logger.Warn(w)
	}
	for _, e := range errs {
		logger.Error(e)
	}
}
