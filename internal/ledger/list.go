package ledger

import (
	"fmt"
	"time"
)

// Stamp returns the current UTC time in the ledger's ISO-8601 format.
func Stamp(now time.Time) string {
	return now.UTC().Format("2006-01-02T15:04:05Z")
}

// List is the full ledger: four active priority buckets plus an archive.
// Tasks are never deleted; completed tasks move to the archive.
type List struct {
	Metadata map[string]any `yaml:"metadata,omitempty"`
	Critical []Task         `yaml:"critical"`
	High     []Task         `yaml:"high"`
	Medium   []Task         `yaml:"medium"`
	Low      []Task         `yaml:"low"`
	Archive  []Task         `yaml:"archive"`
}

// ActiveTasks returns all non-archived tasks in bucket order.
func (l *List) ActiveTasks() []Task {
	out := make([]Task, 0, len(l.Critical)+len(l.High)+len(l.Medium)+len(l.Low))
	out = append(out, l.Critical...)
	out = append(out, l.High...)
	out = append(out, l.Medium...)
	out = append(out, l.Low...)
	return out
}

// AllTasks returns every task including the archive.
func (l *List) AllTasks() []Task {
	return append(l.ActiveTasks(), l.Archive...)
}

// Bucket returns the active bucket slice for a priority, or nil for an
// unknown priority.
func (l *List) Bucket(p Priority) *[]Task {
	switch p {
	case PriorityCritical:
		return &l.Critical
	case PriorityHigh:
		return &l.High
	case PriorityMedium:
		return &l.Medium
	case PriorityLow:
		return &l.Low
	}
	return nil
}

// TaskByID finds a task by ID across all buckets, archive included.
// Returns nil if not found.
func (l *List) TaskByID(id int) *Task {
	for _, bucket := range l.buckets() {
		for i := range *bucket {
			if (*bucket)[i].ID == id {
				return &(*bucket)[i]
			}
		}
	}
	return nil
}

// TaskByTitle finds a task by its title across all buckets, archive included.
func (l *List) TaskByTitle(title string) *Task {
	for _, bucket := range l.buckets() {
		for i := range *bucket {
			if (*bucket)[i].Title == title {
				return &(*bucket)[i]
			}
		}
	}
	return nil
}

// NextID returns the next available task ID: one past the largest ID found
// anywhere in the ledger, archive included.
func (l *List) NextID() int {
	max := 0
	for _, t := range l.AllTasks() {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// Add files a task under its own priority bucket. Unknown priorities go to
// Medium rather than being dropped.
func (l *List) Add(t Task) {
	bucket := l.Bucket(t.Priority)
	if bucket == nil {
		bucket = &l.Medium
	}
	*bucket = append(*bucket, t)
}

// ArchiveTask moves a task out of its active bucket into the archive,
// marking it completed and stamping the finish date.
func (l *List) ArchiveTask(id int, now time.Time) error {
	for _, p := range Priorities() {
		bucket := l.Bucket(p)
		for i := range *bucket {
			if (*bucket)[i].ID != id {
				continue
			}
			t := (*bucket)[i]
			*bucket = append((*bucket)[:i], (*bucket)[i+1:]...)
			t.Checked = true
			t.Status = StatusCompleted
			t.FinishDate = Stamp(now)
			l.Archive = append(l.Archive, t)
			return nil
		}
	}
	return fmt.Errorf("task %d not found in active buckets", id)
}

// Filter selects tasks matching the given criteria. Nil criteria fields
// match everything.
type Filter struct {
	Priority        *Priority
	Checked         *bool
	Assignee        *string
	HasSubtasks     *bool
	IncludeArchived bool
}

// FindTasks returns active (and optionally archived) tasks matching f,
// preserving ledger order.
func (l *List) FindTasks(f Filter) []Task {
	tasks := l.ActiveTasks()
	if f.IncludeArchived {
		tasks = l.AllTasks()
	}
	var out []Task
	for _, t := range tasks {
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.Checked != nil && t.Checked != *f.Checked {
			continue
		}
		if f.Assignee != nil && t.Assignee != *f.Assignee {
			continue
		}
		if f.HasSubtasks != nil && (len(t.Subtasks) > 0) != *f.HasSubtasks {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Summary holds ledger-wide counters.
type Summary struct {
	Total    int
	Archived int
	ByStatus map[Status]int
	ByLevel  map[Priority]int
}

// Summarize counts active tasks by status and priority.
func (l *List) Summarize() Summary {
	s := Summary{
		ByStatus: make(map[Status]int),
		ByLevel:  make(map[Priority]int),
	}
	for _, t := range l.ActiveTasks() {
		s.Total++
		status := t.Status
		if status == "" {
			if t.Checked {
				status = StatusCompleted
			} else {
				status = StatusPending
			}
		}
		s.ByStatus[status]++
		s.ByLevel[t.Priority]++
	}
	s.Archived = len(l.Archive)
	return s
}

func (l *List) buckets() []*[]Task {
	return []*[]Task{&l.Critical, &l.High, &l.Medium, &l.Low, &l.Archive}
}
