// Package validate checks task ledgers for schema and graph invariants.
//
// Validation never panics and never returns a Go error for bad task data:
// every check produces a Result separating hard errors, which block a save,
// from warnings, which are informational. Human-edited ledgers routinely
// carry soft inconsistencies (a completed task missing its finish date, a
// start date before the create date), so only structurally unusable data
// fails validation.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/taskledger-dev/taskledger/internal/ledger"
)

// Result is the outcome of a validation pass.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *Result) errorf(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// merge folds another result into r.
func (r *Result) merge(other *Result) {
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// datetimeRe is the strict ISO-8601 shape the ledger stores:
// YYYY-MM-DDTHH:MM:SS with optional fractional seconds and Z suffix.
var datetimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z?$`)

// durationRes are the humane time-estimate shapes recognized for the
// estimated-time warning, e.g. "30 minutes", "2 hours", "2h", "2:30".
var durationRes = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\s*minutes?`),
	regexp.MustCompile(`^\d+\s*hours?`),
	regexp.MustCompile(`^\d+\s*days?`),
	regexp.MustCompile(`^\d+\s*weeks?`),
	regexp.MustCompile(`^\d+[hm]`),
	regexp.MustCompile(`^\d+:\d+`),
}

// Task validates a single task's fields. Hard errors: empty title,
// non-positive ID, priority outside the closed enum, any populated date not
// matching the strict ISO-8601 shape. Everything else is a warning.
func Task(t *ledger.Task) *Result {
	r := &Result{Valid: true}

	if strings.TrimSpace(t.Title) == "" {
		r.errorf("task title is required and cannot be empty")
	}
	if t.ID <= 0 {
		r.errorf("task ID must be a positive integer, got: %d", t.ID)
	}
	if !t.Priority.Valid() {
		r.errorf("priority must be one of Critical, High, Medium, Low, got: %q", t.Priority)
	}
	if t.Status != "" && !t.Status.Valid() {
		r.errorf("invalid status: %q", t.Status)
	}

	for _, d := range []struct{ field, value string }{
		{"create_date", t.CreateDate},
		{"start_date", t.StartDate},
		{"finish_date", t.FinishDate},
	} {
		if d.value != "" && !datetimeRe.MatchString(d.value) {
			r.errorf("%s must be in ISO8601 format, got: %s", d.field, d.value)
		}
	}

	if create, start, ok := parseDates(t.CreateDate, t.StartDate); ok && start.Before(create) {
		r.warnf("start date is before create date")
	}

	if t.Checked && t.FinishDate == "" {
		r.warnf("completed task should have a finish date")
	}
	if !t.Checked && t.FinishDate != "" {
		r.warnf("incomplete task should not have a finish date")
	}

	if len(t.Subtasks) > 0 {
		if t.Checked && !t.AllSubtasksDone() {
			r.warnf("main task is completed but some subtasks are not")
		}
		if !t.Checked && t.AllSubtasksDone() {
			r.warnf("all subtasks completed but main task is not")
		}
	}

	if t.EstimatedTime != "" && !validDuration(t.EstimatedTime) {
		r.warnf("estimated time should look like '30 minutes', '2 hours', '1 day'")
	}

	return r
}

// parseDates parses two ledger date strings; ok is false unless both parse.
func parseDates(a, b string) (time.Time, time.Time, bool) {
	if a == "" || b == "" {
		return time.Time{}, time.Time{}, false
	}
	ta, err1 := parseStamp(a)
	tb, err2 := parseStamp(b)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	return ta, tb, true
}

func parseStamp(s string) (time.Time, error) {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %s", s)
}

func validDuration(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, re := range durationRes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
