package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/taskledger-dev/taskledger/internal/config"
	"github.com/taskledger-dev/taskledger/internal/ledger"
	"github.com/taskledger-dev/taskledger/internal/logging"
	"github.com/taskledger-dev/taskledger/internal/reconcile"
	"github.com/taskledger-dev/taskledger/internal/runner"
	"github.com/taskledger-dev/taskledger/internal/store"
	"github.com/taskledger-dev/taskledger/internal/validate"
)

// runCommand runs the test command and folds the results into the ledger.
func runCommand(ctx context.Context, cfg *config.Config, logger *charmlog.Logger, args []string) error {
	fs := flag.NewFlagSet("taskledger run", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", cfg.DryRun, "Report changes without writing the ledger")
	input := fs.String("input", "", "Read test results from a file instead of running the test command")
	testCommand := fs.String("test-command", cfg.TestCommand, "Command producing test results")
	assignee := fs.String("assignee", cfg.Assignee, "Assignee for generated tasks")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := resolveTasksFile(cfg, fs.Args()); err != nil {
		return err
	}
	cfg.TestCommand = *testCommand
	cfg.Assignee = *assignee

	doc, err := store.Load(cfg.TasksFile, cfg.Format)
	if err != nil {
		return err
	}

	run, err := collectResults(ctx, cfg, logger, *input)
	if err != nil {
		return err
	}

	outcome := reconcile.Reconcile(doc.List.ActiveTasks(), run, reconcile.Options{
		Assignee: cfg.Assignee,
		NextID:   doc.List.NextID(),
	})
	printReport(outcome.Report)

	if !outcome.Changed {
		logger.Info("ledger already up to date", "tasks", cfg.TasksFile)
		return nil
	}

	merged := reconcile.MergeTasks(doc.List.ActiveTasks(), outcome.Tasks)
	doc.List = rebuildList(doc.List, merged)

	if result := validate.List(doc.List); !result.Valid {
		logResult(logger, result.Errors, result.Warnings)
		return validationFailed(fmt.Errorf("reconciled ledger failed validation"))
	}

	if *dryRun {
		logger.Info("dry run, ledger not written", "tasks", cfg.TasksFile)
		return nil
	}

	if err := store.Save(doc, store.SaveOptions{BackupDir: cfg.BackupDir, BackupKeep: cfg.BackupKeep}); err != nil {
		return err
	}
	logger.Info("ledger updated", "tasks", cfg.TasksFile)

	logRunEvents(cfg, logger, outcome)
	return nil
}

// reportCommand classifies a test run against the ledger without writing.
func reportCommand(ctx context.Context, cfg *config.Config, logger *charmlog.Logger, args []string) error {
	fs := flag.NewFlagSet("taskledger report", flag.ContinueOnError)
	input := fs.String("input", "", "Read test results from a file instead of running the test command")
	testCommand := fs.String("test-command", cfg.TestCommand, "Command producing test results")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := resolveTasksFile(cfg, fs.Args()); err != nil {
		return err
	}
	cfg.TestCommand = *testCommand

	doc, err := store.Load(cfg.TasksFile, cfg.Format)
	if err != nil {
		return err
	}

	run, err := collectResults(ctx, cfg, logger, *input)
	if err != nil {
		return err
	}

	report := reconcile.Classify(run, reconcile.OpenTestTasks(doc.List.ActiveTasks()))
	printReport(report)
	return nil
}

// collectResults obtains test results from a file or by running the
// configured test command.
func collectResults(ctx context.Context, cfg *config.Config, logger *charmlog.Logger, input string) (*reconcile.RunResults, error) {
	var output string
	if input != "" {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("read results file: %w", err)
		}
		output = string(data)
	} else {
		logger.Info("running tests", "command", cfg.TestCommand)
		res, err := runner.Run(ctx, cfg.ProjectRoot, cfg.TestCommand)
		if err != nil {
			return nil, err
		}
		logger.Debug("test command finished", "exit_code", res.ExitCode)
		output = res.Output
	}

	parsed := reconcile.ParseResults(output)
	if len(parsed) == 0 {
		logger.Warn("no test results found in output")
	}
	return reconcile.GroupByFile(parsed), nil
}

// rebuildList refiles merged active tasks into priority buckets, keeping
// metadata and archive untouched.
func rebuildList(old *ledger.List, active []ledger.Task) *ledger.List {
	l := &ledger.List{Metadata: old.Metadata, Archive: old.Archive}
	for _, t := range active {
		l.Add(t)
	}
	return l
}

// printReport prints the classification to stdout.
func printReport(r *reconcile.Report) {
	if r.Empty() {
		fmt.Println("No test status changes.")
		return
	}
	for _, key := range r.NewlyFixed {
		fmt.Printf("  ✓ fixed: %s\n", key)
	}
	for _, key := range r.NewlyBroken {
		fmt.Printf("  ✗ broken: %s\n", key)
	}
	for _, key := range r.StillFailing {
		fmt.Printf("  ⚠ still failing: %s\n", key)
	}
	fmt.Printf("Fixed: %d  Broken: %d  Still failing: %d\n",
		len(r.NewlyFixed), len(r.NewlyBroken), len(r.StillFailing))
}

// logRunEvents appends the run's classification to the JSONL run log.
// Logging failures are warnings; the ledger write already succeeded.
func logRunEvents(cfg *config.Config, logger *charmlog.Logger, outcome *reconcile.Outcome) {
	rl, err := logging.NewRunLogger(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		logger.Warn("run log unavailable", "err", err)
		return
	}
	defer rl.Close()

	logEvents := func(kind string, keys []string) {
		for _, key := range keys {
			file, test, _ := strings.Cut(key, "::")
			if err := rl.Log(logging.Event{Type: kind, File: file, Test: test}); err != nil {
				logger.Warn("write run log event", "err", err)
				return
			}
		}
	}
	logEvents("newly_fixed", outcome.Report.NewlyFixed)
	logEvents("newly_broken", outcome.Report.NewlyBroken)
	logEvents("still_failing", outcome.Report.StillFailing)
	for _, t := range outcome.Tasks {
		if err := rl.Log(logging.Event{Type: "task", TaskID: t.ID, Message: t.Title}); err != nil {
			logger.Warn("write run log event", "err", err)
			return
		}
	}
}
