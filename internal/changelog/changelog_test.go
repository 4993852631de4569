package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCreateEntry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "changelog")
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	path, err := CreateEntry(dir, Entry{
		Title:   "Reconcile test results into the ledger",
		Author:  "Roo <roo@example.com>",
		Branch:  "main",
		Body:    "Merged 3 failing tests.",
		Created: created,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got, want := filepath.Base(path), "2026-03-14-reconcile-test-results-into-the-ledger.md"; got != want {
		t.Errorf("entry file = %q, want %q", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		"# Reconcile test results into the ledger\n",
		"- **Date**: 2026-03-14\n",
		"- **Author**: Roo <roo@example.com>\n",
		"- **Branch**: main\n",
		"Merged 3 failing tests.\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("entry missing %q:\n%s", want, text)
		}
	}
}

func TestCreateEntryOmitsEmptyFields(t *testing.T) {
	path, err := CreateEntry(t.TempDir(), Entry{
		Title:   "Minimal",
		Created: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "**Author**") || strings.Contains(string(data), "**Branch**") {
		t.Errorf("empty fields rendered:\n%s", data)
	}
}

func TestCreateEntryRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	e := Entry{Title: "Same day same title", Created: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}

	if _, err := CreateEntry(dir, e); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateEntry(dir, e); err == nil {
		t.Error("duplicate entry did not error")
	}
}

func TestCreateEntryRejectsEmptyTitle(t *testing.T) {
	if _, err := CreateEntry(t.TempDir(), Entry{Title: "   "}); err == nil {
		t.Error("blank title did not error")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fix failing tests", "fix-failing-tests"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"CAPS and 123", "caps-and-123"},
		{"!!!", "entry"},
		{"trailing punctuation!", "trailing-punctuation"},
		{strings.Repeat("a", 80), strings.Repeat("a", 60)},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
