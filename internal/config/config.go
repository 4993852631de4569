// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ledger file formats.
const (
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
)

// Default values.
const (
	DefaultTasksFile    = "tasks.md"
	DefaultSchemaFile   = "docs/tasks.schema.json"
	DefaultBackupDir    = ".taskledger/backups"
	DefaultBackupKeep   = 10
	DefaultTestCommand  = "python run_tests.py -v"
	DefaultAssignee     = "Roo"
	DefaultChangelogDir = "changelog"
	DefaultLogDir       = "~/.taskledger"
)

// Config holds the full configuration for taskledger.
type Config struct {
	// Paths
	TasksFile    string `toml:"tasks_file"`
	SchemaFile   string `toml:"schema_file"`
	BackupDir    string `toml:"backup_dir"`
	ChangelogDir string `toml:"changelog_dir"`
	LogDir       string `toml:"log_dir"`

	// Format is the ledger serialization: "markdown" or "yaml". Empty means
	// derive from the tasks file extension.
	Format string `toml:"format"`

	// Reconciliation
	TestCommand string `toml:"test_command"`
	Assignee    string `toml:"assignee"`
	BackupKeep  int    `toml:"backup_keep"`

	// DryRun prints what would change without writing (flag only).
	DryRun bool `toml:"-"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskledger/taskledger.toml or OS-specific config dir)
// 3. Project config file (taskledger.toml or .taskledger.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TasksFile = DefaultTasksFile
	cfg.SchemaFile = DefaultSchemaFile
	cfg.BackupDir = DefaultBackupDir
	cfg.ChangelogDir = DefaultChangelogDir
	cfg.LogDir = DefaultLogDir
	cfg.TestCommand = DefaultTestCommand
	cfg.Assignee = DefaultAssignee
	cfg.BackupKeep = DefaultBackupKeep

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
}

// finalizeConfig computes derived values and validates paths.
func finalizeConfig(cfg *Config) error {
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.TasksFile = expandPath(cfg.TasksFile)
	cfg.SchemaFile = expandPath(cfg.SchemaFile)

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	if !filepath.IsAbs(cfg.TasksFile) {
		cfg.TasksFile = filepath.Join(cfg.ProjectRoot, cfg.TasksFile)
	}
	if !filepath.IsAbs(cfg.SchemaFile) {
		cfg.SchemaFile = filepath.Join(cfg.ProjectRoot, cfg.SchemaFile)
	}
	if !filepath.IsAbs(cfg.BackupDir) {
		cfg.BackupDir = filepath.Join(cfg.ProjectRoot, cfg.BackupDir)
	}
	if !filepath.IsAbs(cfg.ChangelogDir) {
		cfg.ChangelogDir = filepath.Join(cfg.ProjectRoot, cfg.ChangelogDir)
	}

	if cfg.Format == "" {
		cfg.Format = FormatForPath(cfg.TasksFile)
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format != FormatMarkdown && cfg.Format != FormatYAML {
		return fmt.Errorf("format must be %q or %q, got: %q", FormatMarkdown, FormatYAML, cfg.Format)
	}

	if cfg.BackupKeep < 0 {
		return fmt.Errorf("backup_keep must be non-negative, got: %d", cfg.BackupKeep)
	}

	return nil
}

// FormatForPath derives the ledger format from a file extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatMarkdown
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
