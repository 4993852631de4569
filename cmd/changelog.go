package cmd

import (
	"flag"
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/taskledger-dev/taskledger/internal/changelog"
	"github.com/taskledger-dev/taskledger/internal/config"
	"github.com/taskledger-dev/taskledger/internal/gitinfo"
)

// changelogCommand writes a dated changelog entry, stamping it with git
// metadata when available.
func changelogCommand(cfg *config.Config, logger *charmlog.Logger, args []string) error {
	fs := flag.NewFlagSet("taskledger changelog", flag.ContinueOnError)
	title := fs.String("title", "", "Entry title (required)")
	body := fs.String("body", "", "Entry body")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if strings.TrimSpace(*title) == "" {
		return fmt.Errorf("changelog requires -title")
	}

	entry := changelog.Entry{Title: *title, Body: *body}
	if info, ok := gitinfo.Collect(cfg.ProjectRoot); ok {
		entry.Author = info.Author()
		entry.Branch = info.Branch
		if !info.Clean {
			logger.Warn("working tree has uncommitted changes", "files", info.Uncommitted)
		}
	}

	path, err := changelog.CreateEntry(cfg.ChangelogDir, entry)
	if err != nil {
		return err
	}
	logger.Info("changelog entry written", "path", path)
	return nil
}
