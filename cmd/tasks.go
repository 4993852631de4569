package cmd

import (
	"flag"
	"fmt"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/taskledger-dev/taskledger/internal/config"
	"github.com/taskledger-dev/taskledger/internal/ledger"
	"github.com/taskledger-dev/taskledger/internal/store"
	"github.com/taskledger-dev/taskledger/internal/validate"
)

// addCommand appends a task to the ledger.
func addCommand(cfg *config.Config, logger *charmlog.Logger, args []string) error {
	fs := flag.NewFlagSet("taskledger add", flag.ContinueOnError)
	title := fs.String("title", "", "Task title (required)")
	priority := fs.String("priority", string(ledger.PriorityMedium), "Critical|High|Medium|Low")
	description := fs.String("description", "", "Task description")
	estimate := fs.String("estimate", "", "Estimated time (e.g. '30 minutes')")
	assignee := fs.String("assignee", cfg.Assignee, "Assignee")
	after := fs.String("after", "", "Comma-separated prerequisite titles")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := resolveTasksFile(cfg, fs.Args()); err != nil {
		return err
	}
	if strings.TrimSpace(*title) == "" {
		return fmt.Errorf("add requires -title")
	}

	doc, err := store.Load(cfg.TasksFile, cfg.Format)
	if err != nil {
		return err
	}

	task := ledger.Task{
		ID:            doc.List.NextID(),
		Title:         strings.TrimSpace(*title),
		Status:        ledger.StatusPending,
		Priority:      ledger.Priority(*priority),
		Description:   strings.TrimSpace(*description),
		EstimatedTime: strings.TrimSpace(*estimate),
		Assignee:      strings.TrimSpace(*assignee),
		CreateDate:    ledger.Stamp(time.Now()),
		Prerequisites: splitTitles(*after),
	}

	doc.List.Add(task)
	if result := validate.List(doc.List); !result.Valid {
		logResult(logger, result.Errors, result.Warnings)
		return validationFailed(fmt.Errorf("ledger invalid after adding %q", task.Title))
	}

	if err := store.Save(doc, store.SaveOptions{BackupDir: cfg.BackupDir, BackupKeep: cfg.BackupKeep}); err != nil {
		return err
	}
	logger.Info("task added", "id", task.ID, "title", task.Title, "priority", task.Priority)
	return nil
}

// archiveCommand moves an active task to the archive.
func archiveCommand(cfg *config.Config, logger *charmlog.Logger, args []string) error {
	fs := flag.NewFlagSet("taskledger archive", flag.ContinueOnError)
	id := fs.Int("id", 0, "Task ID to archive (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := resolveTasksFile(cfg, fs.Args()); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("archive requires a positive -id")
	}

	doc, err := store.Load(cfg.TasksFile, cfg.Format)
	if err != nil {
		return err
	}

	task := doc.List.TaskByID(*id)
	if task == nil {
		return fmt.Errorf("task %d not found", *id)
	}
	title := task.Title

	if err := doc.List.ArchiveTask(*id, time.Now()); err != nil {
		return err
	}
	if err := store.Save(doc, store.SaveOptions{BackupDir: cfg.BackupDir, BackupKeep: cfg.BackupKeep}); err != nil {
		return err
	}
	logger.Info("task archived", "id", *id, "title", title)
	return nil
}

// convertCommand rewrites the ledger in the other serialization.
func convertCommand(cfg *config.Config, logger *charmlog.Logger, args []string) error {
	fs := flag.NewFlagSet("taskledger convert", flag.ContinueOnError)
	to := fs.String("to", "", "Target format (markdown|yaml, required)")
	out := fs.String("out", "", "Output path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := resolveTasksFile(cfg, fs.Args()); err != nil {
		return err
	}

	target := strings.ToLower(strings.TrimSpace(*to))
	if target != config.FormatMarkdown && target != config.FormatYAML {
		return fmt.Errorf("convert requires -to %s or -to %s", config.FormatMarkdown, config.FormatYAML)
	}
	if *out == "" {
		return fmt.Errorf("convert requires -out")
	}

	doc, err := store.Load(cfg.TasksFile, cfg.Format)
	if err != nil {
		return err
	}

	// A fresh markdown target has no preamble to preserve; Render starts
	// one from scratch.
	converted := &store.Document{Path: *out, Format: target, List: doc.List}
	if err := store.Save(converted, store.SaveOptions{}); err != nil {
		return err
	}
	logger.Info("ledger converted", "from", doc.Format, "to", target, "out", *out)
	return nil
}

func splitTitles(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
