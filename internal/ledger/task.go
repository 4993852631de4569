package ledger

import "fmt"

// Priority represents a task priority level. It determines which section of
// the rendered document the task is filed under.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Priorities returns all priority levels in document section order.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// Valid reports whether p is one of the closed set of priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Status refines the boolean done flag of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked, StatusCancelled:
		return true
	}
	return false
}

// Subtask is a named checklist entry within a task. Subtask order is
// significant: existing entries keep their position across edits and new
// entries are appended at the end.
type Subtask struct {
	Name string `yaml:"name"`
	Done bool   `yaml:"completed"`
}

// Task is a single work item in the ledger.
//
// Date fields hold ISO-8601 strings (YYYY-MM-DDTHH:MM:SS[.ffffff]Z) or are
// empty when unset. The zero ID is "unset" and is rejected by validation.
type Task struct {
	ID            int       `yaml:"id"`
	Title         string    `yaml:"title"`
	Checked       bool      `yaml:"checked"`
	Status        Status    `yaml:"status"`
	Priority      Priority  `yaml:"priority"`
	Description   string    `yaml:"description,omitempty"`
	Prerequisites []string  `yaml:"prerequisites"`
	EstimatedTime string    `yaml:"estimated_time,omitempty"`
	Assignee      string    `yaml:"assignee,omitempty"`
	CreateDate    string    `yaml:"create_date,omitempty"`
	StartDate     string    `yaml:"start_date,omitempty"`
	FinishDate    string    `yaml:"finish_date,omitempty"`
	Subtasks      []Subtask `yaml:"subtasks"`

	// RawBlock holds the original markdown span the task was parsed from,
	// kept for round-trip fidelity. Empty for tasks constructed in code.
	RawBlock string `yaml:"-"`
}

// IsZero reports whether the task is empty (has no title).
func (t *Task) IsZero() bool {
	return t.Title == ""
}

// Subtask returns the subtask with the given name, or nil.
func (t *Task) Subtask(name string) *Subtask {
	for i := range t.Subtasks {
		if t.Subtasks[i].Name == name {
			return &t.Subtasks[i]
		}
	}
	return nil
}

// SubtasksDone counts completed subtasks.
func (t *Task) SubtasksDone() int {
	n := 0
	for _, st := range t.Subtasks {
		if st.Done {
			n++
		}
	}
	return n
}

// AllSubtasksDone reports whether every subtask is checked. A task with no
// subtasks reports true.
func (t *Task) AllSubtasksDone() bool {
	return t.SubtasksDone() == len(t.Subtasks)
}

// Completed reports whether the task counts as done, from either the
// checkbox or the refined status.
func (t *Task) Completed() bool {
	return t.Checked || t.Status == StatusCompleted
}

// Summary returns a one-line description in the form
// "ID: title [status] (priority)".
func (t *Task) Summary() string {
	status := t.Status
	if status == "" {
		if t.Checked {
			status = StatusCompleted
		} else {
			status = StatusPending
		}
	}
	return fmt.Sprintf("%d: %s [%s] (%s)", t.ID, t.Title, status, t.Priority)
}
