// Package changelog writes dated markdown entries describing ledger
// changes, one file per entry.
package changelog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry describes one changelog entry.
type Entry struct {
	Title   string
	Author  string
	Branch  string
	Body    string
	Created time.Time
}

// CreateEntry renders an entry into dir as <date>-<slug>.md and returns
// the file path. An existing entry with the same name is not overwritten.
func CreateEntry(dir string, e Entry) (string, error) {
	if strings.TrimSpace(e.Title) == "" {
		return "", fmt.Errorf("changelog entry title is empty")
	}
	if e.Created.IsZero() {
		e.Created = time.Now()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create changelog dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s.md", e.Created.UTC().Format("2006-01-02"), slug(e.Title))
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("changelog entry already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(render(e)), 0644); err != nil {
		return "", fmt.Errorf("write changelog entry: %w", err)
	}
	return path, nil
}

func render(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(e.Title))
	fmt.Fprintf(&b, "- **Date**: %s\n", e.Created.UTC().Format("2006-01-02"))
	if e.Author != "" {
		fmt.Fprintf(&b, "- **Author**: %s\n", e.Author)
	}
	if e.Branch != "" {
		fmt.Fprintf(&b, "- **Branch**: %s\n", e.Branch)
	}
	b.WriteString("\n")
	if body := strings.TrimSpace(e.Body); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

// slug lowercases the title and squeezes everything outside [a-z0-9] into
// single hyphens.
func slug(title string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "entry"
	}
	if len(s) > 60 {
		s = strings.Trim(s[:60], "-")
	}
	return s
}
