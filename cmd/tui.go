package cmd

import (
	"context"
	"flag"
	"time"

	"github.com/taskledger-dev/taskledger/internal/config"
	"github.com/taskledger-dev/taskledger/internal/ui"
)

// tuiCommand launches the read-only ledger browser.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskledger tui", flag.ContinueOnError)
	refresh := fs.Duration("refresh", 2*time.Second, "Ledger reload interval")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := resolveTasksFile(cfg, fs.Args()); err != nil {
		return err
	}

	return ui.RunTUI(ctx, cfg, cfg.TasksFile, ui.WithRefreshInterval(*refresh))
}
