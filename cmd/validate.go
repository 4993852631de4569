package cmd

import (
	"flag"
	"fmt"

	charmlog "github.com/charmbracelet/log"

	"github.com/taskledger-dev/taskledger/internal/config"
	"github.com/taskledger-dev/taskledger/internal/store"
	"github.com/taskledger-dev/taskledger/internal/validate"
)

// validateCommand checks ledger fields, the dependency graph, and (for the
// YAML form) the JSON schema.
func validateCommand(cfg *config.Config, logger *charmlog.Logger, args []string) error {
	fs := flag.NewFlagSet("taskledger validate", flag.ContinueOnError)
	schemaPath := fs.String("schema", cfg.SchemaFile, "Path to JSON schema file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := resolveTasksFile(cfg, fs.Args()); err != nil {
		return err
	}

	doc, err := store.Load(cfg.TasksFile, cfg.Format)
	if err != nil {
		return err
	}

	result := validate.List(doc.List)

	// The schema describes the YAML serialization only.
	if doc.Format == config.FormatYAML {
		sr := validate.YAMLContent([]byte(doc.Raw), validate.SchemaOptions{SchemaPath: *schemaPath})
		if sr.UsedSchema {
			logger.Debug("schema validation ran", "schema", *schemaPath)
		}
		result.Errors = append(result.Errors, sr.Errors...)
		result.Warnings = append(result.Warnings, sr.Warnings...)
		if !sr.Valid {
			result.Valid = false
		}
	}

	logResult(logger, result.Errors, result.Warnings)
	if !result.Valid {
		return validationFailed(fmt.Errorf("ledger validation failed: %d error(s)", len(result.Errors)))
	}

	s := doc.List.Summarize()
	fmt.Printf("✓ %s is valid (%d active, %d archived)\n", cfg.TasksFile, s.Total, s.Archived)
	return nil
}
