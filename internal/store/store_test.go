package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taskledger-dev/taskledger/internal/config"
	"github.com/taskledger-dev/taskledger/internal/ledger"
)

const markdownLedger = `# Project Ledger

-------------------------------------------------------------------------------------------

## Critical Priority Tasks

- [ ] **Fix failing tests in tests/test_x.py**:
  - **ID**: 1
  - **Priority**: Critical
  - **Subtasks**:
    - [ ] Fix test_foo

-------------------------------------------------------------------------------------------
`

func writeLedger(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMarkdown(t *testing.T) {
	path := writeLedger(t, "tasks.md", markdownLedger)

	doc, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != config.FormatMarkdown {
		t.Errorf("Format = %q, want derived markdown", doc.Format)
	}
	if len(doc.List.Critical) != 1 {
		t.Fatalf("Critical = %v", doc.List.Critical)
	}
	if doc.List.Critical[0].Title != "Fix failing tests in tests/test_x.py" {
		t.Errorf("Title = %q", doc.List.Critical[0].Title)
	}
	if doc.Raw != markdownLedger {
		t.Error("Raw does not hold the original text")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeLedger(t, "tasks.yaml", `critical:
  - id: 1
    title: Fix failing tests in tests/test_x.py
`)

	doc, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != config.FormatYAML {
		t.Errorf("Format = %q, want derived yaml", doc.Format)
	}
	if len(doc.List.Critical) != 1 {
		t.Errorf("Critical = %v", doc.List.Critical)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.md"), ""); err == nil {
		t.Error("missing file did not error")
	}
	path := writeLedger(t, "tasks.yaml", "critical: [unclosed")
	if _, err := Load(path, ""); err == nil {
		t.Error("bad yaml did not error")
	}
	good := writeLedger(t, "tasks.md", "")
	if _, err := Load(good, "ini"); err == nil {
		t.Error("unknown format did not error")
	}
}

func TestSaveMarkdownStable(t *testing.T) {
	path := writeLedger(t, "tasks.md", markdownLedger)

	doc, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	doc.List.Critical[0].Subtasks[0].Done = true

	if err := Save(doc, SaveOptions{}); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(first), "- [x] Fix test_foo") {
		t.Errorf("update not written:\n%s", first)
	}
	if !strings.HasPrefix(string(first), "# Project Ledger") {
		t.Errorf("preamble lost:\n%s", first)
	}

	// Saving again without changes must be byte-stable.
	if err := Save(doc, SaveOptions{}); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("second save changed bytes")
	}
}

func TestSaveTakesBackup(t *testing.T) {
	path := writeLedger(t, "tasks.md", markdownLedger)
	backupDir := filepath.Join(filepath.Dir(path), "backups")

	doc, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(doc, SaveOptions{BackupDir: backupDir, BackupKeep: 5}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d backups, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "tasks.md.") || !strings.HasSuffix(name, ".bak") {
		t.Errorf("backup name = %q", name)
	}

	data, err := os.ReadFile(filepath.Join(backupDir, name))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != markdownLedger {
		t.Error("backup does not hold the pre-save content")
	}
}

func TestSaveNewFileSkipsBackup(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	doc := &Document{
		Path:   filepath.Join(dir, "fresh.yaml"),
		Format: config.FormatYAML,
		List:   &ledger.List{},
	}
	doc.List.Add(ledger.Task{ID: 1, Title: "New", Priority: ledger.PriorityHigh})

	if err := Save(doc, SaveOptions{BackupDir: backupDir, BackupKeep: 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(backupDir); !os.IsNotExist(err) {
		t.Error("backup dir created for a file that did not exist yet")
	}
	if _, err := os.Stat(doc.Path); err != nil {
		t.Errorf("ledger not written: %v", err)
	}
}

func TestRenderYAML(t *testing.T) {
	doc := &Document{Format: config.FormatYAML, List: &ledger.List{}}
	doc.List.Add(ledger.Task{ID: 1, Title: "Only", Priority: ledger.PriorityLow})

	data, err := doc.Render()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "title: Only") {
		t.Errorf("yaml render:\n%s", data)
	}
}
