// Package store loads and saves ledger documents in either serialization.
// Markdown documents keep their raw text so the managed region can be
// regenerated between the structural separators; YAML documents are
// re-encoded wholesale.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/taskledger-dev/taskledger/internal/backup"
	"github.com/taskledger-dev/taskledger/internal/config"
	"github.com/taskledger-dev/taskledger/internal/ledger"
	"github.com/taskledger-dev/taskledger/internal/markdown"
)

// Document is a ledger file loaded into memory.
type Document struct {
	Path   string
	Format string
	// Raw is the file text as read; markdown rendering preserves the
	// preamble and trailer around the managed region.
	Raw  string
	List *ledger.List
}

// Load reads a ledger file. An empty format derives from the extension.
func Load(path, format string) (*Document, error) {
	if format == "" {
		format = config.FormatForPath(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	doc := &Document{Path: path, Format: format, Raw: string(data)}
	switch format {
	case config.FormatYAML:
		list, err := ledger.ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parse ledger yaml: %w", err)
		}
		doc.List = list
	case config.FormatMarkdown:
		doc.List = markdown.ParseDocument(doc.Raw)
	default:
		return nil, fmt.Errorf("unknown ledger format: %q", format)
	}

	return doc, nil
}

// Render serializes the document's current task data.
func (d *Document) Render() ([]byte, error) {
	switch d.Format {
	case config.FormatYAML:
		return d.List.EncodeYAML()
	case config.FormatMarkdown:
		text := markdown.RenderDocument(d.Raw, d.List.ActiveTasks(), d.List.Archive)
		return []byte(text), nil
	default:
		return nil, fmt.Errorf("unknown ledger format: %q", d.Format)
	}
}

// SaveOptions controls how Save protects the file being rewritten.
type SaveOptions struct {
	// BackupDir receives a timestamped copy of the file before the write;
	// empty disables backups.
	BackupDir string
	// BackupKeep caps backups kept per file. 0 keeps all.
	BackupKeep int
}

// Save rewrites the ledger file atomically, snapshotting the previous
// content first. The in-memory Raw text is refreshed so a second Save is
// byte-stable.
func Save(d *Document, opts SaveOptions) error {
	data, err := d.Render()
	if err != nil {
		return err
	}

	if opts.BackupDir != "" {
		if _, err := os.Stat(d.Path); err == nil {
			if _, err := backup.Snapshot(d.Path, opts.BackupDir); err != nil {
				return fmt.Errorf("backup before save: %w", err)
			}
			if err := backup.Prune(opts.BackupDir, filepath.Base(d.Path), opts.BackupKeep); err != nil {
				return fmt.Errorf("prune backups: %w", err)
			}
		}
	}

	if err := backup.WriteFileAtomic(d.Path, data, 0644); err != nil {
		return err
	}
	d.Raw = string(data)
	return nil
}
