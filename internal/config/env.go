package config

import (
	"fmt"
	"os"
)

// loadFromEnv overrides config from TASKLEDGER_* environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKLEDGER_TASKS"); v != "" {
		cfg.TasksFile = v
	}
	if v := os.Getenv("TASKLEDGER_SCHEMA"); v != "" {
		cfg.SchemaFile = v
	}
	if v := os.Getenv("TASKLEDGER_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("TASKLEDGER_BACKUP_DIR"); v != "" {
		cfg.BackupDir = v
	}
	if v := os.Getenv("TASKLEDGER_BACKUP_KEEP"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.BackupKeep = i
		}
	}
	if v := os.Getenv("TASKLEDGER_TEST_COMMAND"); v != "" {
		cfg.TestCommand = v
	}
	if v := os.Getenv("TASKLEDGER_ASSIGNEE"); v != "" {
		cfg.Assignee = v
	}
	if v := os.Getenv("TASKLEDGER_CHANGELOG_DIR"); v != "" {
		cfg.ChangelogDir = v
	}
	if v := os.Getenv("TASKLEDGER_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}

	// Logging configuration
	if v := os.Getenv("TASKLEDGER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKLEDGER_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TASKLEDGER_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
	}
	if v := os.Getenv("TASKLEDGER_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
	}
}
