package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taskledger-dev/taskledger/internal/config"
	"github.com/taskledger-dev/taskledger/internal/ledger"
	"github.com/taskledger-dev/taskledger/internal/store"
)

const testLedger = `# Project Ledger

-------------------------------------------------------------------------------------------

## Critical Priority Tasks

- [ ] **Fix failing tests in tests/test_x.py**:
  - **ID**: 1
  - **Priority**: Critical
  - **Create Date**: 2026-03-01T08:00:00Z
  - **Subtasks**:
    - [ ] Fix test_foo
    - [x] Fix test_bar

-------------------------------------------------------------------------------------------
`

const testResults = `tests/test_x.py::test_foo PASSED
tests/test_x.py::test_bar PASSED
tests/test_x.py::test_baz FAILED
`

// setupProject isolates config discovery and lays down a ledger plus a
// results file in a temp project directory.
func setupProject(t *testing.T) (tasksPath, resultsPath string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	project := t.TempDir()
	t.Chdir(project)

	tasksPath = filepath.Join(project, "tasks.md")
	if err := os.WriteFile(tasksPath, []byte(testLedger), 0644); err != nil {
		t.Fatal(err)
	}
	resultsPath = filepath.Join(project, "results.txt")
	if err := os.WriteFile(resultsPath, []byte(testResults), 0644); err != nil {
		t.Fatal(err)
	}
	return tasksPath, resultsPath
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitSystemError},
		{"validation", validationFailed(errors.New("bad ledger")), ExitValidationError},
		{"explicit code", &ExitError{Code: 7, Err: errors.New("odd")}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitErrorUnwraps(t *testing.T) {
	inner := errors.New("inner")
	err := validationFailed(inner)
	if !errors.Is(err, inner) {
		t.Error("ExitError does not unwrap to the inner error")
	}
	if err.Error() != "inner" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestResolveTasksFile(t *testing.T) {
	cfg := &config.Config{TasksFile: "default.md", Format: config.FormatMarkdown}

	if err := resolveTasksFile(cfg, nil); err != nil {
		t.Fatal(err)
	}
	if cfg.TasksFile != "default.md" {
		t.Errorf("TasksFile = %q, want untouched default", cfg.TasksFile)
	}

	if err := resolveTasksFile(cfg, []string{"other.yaml"}); err != nil {
		t.Fatal(err)
	}
	if cfg.TasksFile != "other.yaml" || cfg.Format != config.FormatYAML {
		t.Errorf("TasksFile=%q Format=%q", cfg.TasksFile, cfg.Format)
	}

	if err := resolveTasksFile(cfg, []string{"a.md", "b.md"}); err == nil {
		t.Error("extra positional arguments did not error")
	}
}

func TestRunReconcilesLedger(t *testing.T) {
	tasksPath, resultsPath := setupProject(t)

	err := Run(context.Background(), []string{
		"-tasks", tasksPath, "run", "-input", resultsPath,
	})
	if err != nil {
		t.Fatal(err)
	}

	doc, err := store.Load(tasksPath, "")
	if err != nil {
		t.Fatal(err)
	}
	task := doc.List.TaskByTitle("Fix failing tests in tests/test_x.py")
	if task == nil {
		t.Fatal("reconciled task missing from ledger")
	}

	wantSubtasks := []ledger.Subtask{
		{Name: "Fix test_foo", Done: true},
		{Name: "Fix test_bar", Done: true},
		{Name: "Fix test_baz", Done: false},
	}
	if len(task.Subtasks) != len(wantSubtasks) {
		t.Fatalf("Subtasks = %v", task.Subtasks)
	}
	for i, want := range wantSubtasks {
		if task.Subtasks[i] != want {
			t.Errorf("Subtasks[%d] = %v, want %v", i, task.Subtasks[i], want)
		}
	}
	if task.Checked {
		t.Error("task closed while a failure remains")
	}
	if task.CreateDate != "2026-03-01T08:00:00Z" {
		t.Errorf("CreateDate = %q, want preserved", task.CreateDate)
	}

	// The rewrite must leave the document envelope intact.
	data, _ := os.ReadFile(tasksPath)
	if !strings.HasPrefix(string(data), "# Project Ledger") {
		t.Errorf("preamble lost:\n%s", data)
	}
}

func TestRunDryRunLeavesFileAlone(t *testing.T) {
	tasksPath, resultsPath := setupProject(t)
	before, _ := os.ReadFile(tasksPath)

	err := Run(context.Background(), []string{
		"-tasks", tasksPath, "run", "-dry-run", "-input", resultsPath,
	})
	if err != nil {
		t.Fatal(err)
	}

	after, _ := os.ReadFile(tasksPath)
	if string(before) != string(after) {
		t.Error("dry run modified the ledger")
	}
}

func TestRunIdempotent(t *testing.T) {
	tasksPath, resultsPath := setupProject(t)
	args := []string{"-tasks", tasksPath, "run", "-input", resultsPath}

	if err := Run(context.Background(), args); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(tasksPath)

	if err := Run(context.Background(), args); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(tasksPath)

	if string(first) != string(second) {
		t.Errorf("second run changed the ledger:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestValidateCommand(t *testing.T) {
	tasksPath, _ := setupProject(t)

	if err := Run(context.Background(), []string{"-tasks", tasksPath, "validate"}); err != nil {
		t.Errorf("valid ledger failed validation: %v", err)
	}
}

func TestValidateCommandRejectsDuplicates(t *testing.T) {
	tasksPath, _ := setupProject(t)
	bad := testLedger + `
- [ ] **Duplicate twin**:
  - **ID**: 1
  - **Priority**: Critical
`
	if err := os.WriteFile(tasksPath, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	err := Run(context.Background(), []string{"-tasks", tasksPath, "validate"})
	if err == nil {
		t.Fatal("duplicate IDs passed validation")
	}
	if ExitCode(err) != ExitValidationError {
		t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitValidationError)
	}
}

func TestUnknownCommand(t *testing.T) {
	setupProject(t)
	err := Run(context.Background(), []string{"frobnicate"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("err = %v, want unknown command", err)
	}
}

func TestAddAndArchiveCommands(t *testing.T) {
	tasksPath, _ := setupProject(t)

	err := Run(context.Background(), []string{
		"-tasks", tasksPath, "add", "-title", "Write release notes", "-priority", "Low",
	})
	if err != nil {
		t.Fatal(err)
	}

	doc, err := store.Load(tasksPath, "")
	if err != nil {
		t.Fatal(err)
	}
	added := doc.List.TaskByTitle("Write release notes")
	if added == nil {
		t.Fatal("added task not found")
	}
	if added.Priority != ledger.PriorityLow {
		t.Errorf("Priority = %q, want Low", added.Priority)
	}
	if added.ID != 2 {
		t.Errorf("ID = %d, want next free ID 2", added.ID)
	}

	err = Run(context.Background(), []string{
		"-tasks", tasksPath, "archive", "-id", "2",
	})
	if err != nil {
		t.Fatal(err)
	}

	doc, err = store.Load(tasksPath, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.List.Archive) != 1 || doc.List.Archive[0].Title != "Write release notes" {
		t.Errorf("Archive = %v", doc.List.Archive)
	}
	if doc.List.TaskByTitle("Write release notes").Status != ledger.StatusCompleted {
		t.Error("archived task not marked completed")
	}
}

func TestConvertCommand(t *testing.T) {
	tasksPath, _ := setupProject(t)
	outPath := filepath.Join(filepath.Dir(tasksPath), "tasks.yaml")

	err := Run(context.Background(), []string{
		"-tasks", tasksPath, "convert", "-to", "yaml", "-out", outPath,
	})
	if err != nil {
		t.Fatal(err)
	}

	doc, err := store.Load(outPath, "")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != config.FormatYAML {
		t.Errorf("Format = %q", doc.Format)
	}
	task := doc.List.TaskByTitle("Fix failing tests in tests/test_x.py")
	if task == nil || task.ID != 1 {
		t.Errorf("converted task = %v", task)
	}
}
