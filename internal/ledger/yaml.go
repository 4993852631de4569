package ledger

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes the structured ledger form. Empty content yields an
// empty ledger rather than an error.
func ParseYAML(data []byte) (*List, error) {
	var l List
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse ledger yaml: %w", err)
	}
	l.normalize()
	return &l, nil
}

// LoadYAML reads and decodes a ledger file.
func LoadYAML(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}
	return ParseYAML(data)
}

// EncodeYAML encodes the ledger with 2-space indentation and a fixed field
// order, so line-based diffs stay minimal across rewrites.
func (l *List) EncodeYAML() ([]byte, error) {
	l.normalize()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("marshal ledger: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal ledger: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveYAML writes the ledger to path.
func (l *List) SaveYAML(path string) error {
	data, err := l.EncodeYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write ledger file: %w", err)
	}
	return nil
}

// normalize keeps the checkbox and status views of completion consistent
// and ensures bucket slices are non-nil so the YAML form always carries the
// five named buckets.
func (l *List) normalize() {
	for _, bucket := range l.buckets() {
		if *bucket == nil {
			*bucket = []Task{}
		}
		for i := range *bucket {
			t := &(*bucket)[i]
			if t.Status == "" {
				if t.Checked {
					t.Status = StatusCompleted
				} else {
					t.Status = StatusPending
				}
			}
			if t.Status == StatusCompleted {
				t.Checked = true
			}
			if t.Priority == "" {
				t.Priority = PriorityCritical
			}
			if t.Prerequisites == nil {
				t.Prerequisites = []string{}
			}
			if t.Subtasks == nil {
				t.Subtasks = []Subtask{}
			}
		}
	}
}
