package config

import (
	"flag"
)

// parseFlags defines and parses CLI flags. Flags override every other
// configuration source.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskledger", flag.ContinueOnError)
	}

	// Path flags
	fs.StringVar(&cfg.TasksFile, "tasks", cfg.TasksFile, "Path to task ledger file")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "Path to JSON schema file")
	fs.StringVar(&cfg.BackupDir, "backup-dir", cfg.BackupDir, "Backup directory")
	fs.StringVar(&cfg.ChangelogDir, "changelog-dir", cfg.ChangelogDir, "Changelog entry directory")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Run log directory")

	// Ledger format
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Ledger format (markdown, yaml)")

	// Reconciliation
	fs.StringVar(&cfg.TestCommand, "test-command", cfg.TestCommand, "Command producing test results")
	fs.StringVar(&cfg.Assignee, "assignee", cfg.Assignee, "Assignee for generated tasks")
	fs.IntVar(&cfg.BackupKeep, "backup-keep", cfg.BackupKeep, "Backups to keep per ledger file (0 keeps all)")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Report changes without writing the ledger")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	return fs.Parse(args)
}
