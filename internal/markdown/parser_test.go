package markdown

import (
	"reflect"
	"strings"
	"testing"

	"github.com/taskledger-dev/taskledger/internal/ledger"
)

const sampleBlock = `- [ ] **Implement retry queue**:
  - **ID**: 12
  - **Description**: Back off and retry failed pushes
  - **Pre-requisites**:
    - Design the frobnicator
    - Write docs
  - **Priority**: High
  - **Estimated Time**: 2 hours
  - **Assignee**: Roo
  - **Create Date**: 2026-03-01T08:00:00Z
  - **Start Date**: 2026-03-01T09:00:00Z
  - **Finish Date**: None
  - **Subtasks**:
    - [x] Fix test_enqueue
    - [ ] Fix test_drain
`

func TestParseBlock(t *testing.T) {
	tasks := Parse(sampleBlock)
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}

	task := tasks[0]
	if task.Title != "Implement retry queue" {
		t.Errorf("Title = %q", task.Title)
	}
	if task.Checked {
		t.Error("Checked = true, want false")
	}
	if task.ID != 12 {
		t.Errorf("ID = %d, want 12", task.ID)
	}
	if task.Description != "Back off and retry failed pushes" {
		t.Errorf("Description = %q", task.Description)
	}
	if want := []string{"Design the frobnicator", "Write docs"}; !reflect.DeepEqual(task.Prerequisites, want) {
		t.Errorf("Prerequisites = %v, want %v", task.Prerequisites, want)
	}
	if task.Priority != ledger.PriorityHigh {
		t.Errorf("Priority = %q, want High", task.Priority)
	}
	if task.EstimatedTime != "2 hours" {
		t.Errorf("EstimatedTime = %q", task.EstimatedTime)
	}
	if task.FinishDate != "" {
		t.Errorf("FinishDate = %q, want empty for None", task.FinishDate)
	}
	if task.Status != ledger.StatusPending {
		t.Errorf("Status = %q, want pending for unchecked task", task.Status)
	}
	wantSubtasks := []ledger.Subtask{
		{Name: "Fix test_enqueue", Done: true},
		{Name: "Fix test_drain", Done: false},
	}
	if !reflect.DeepEqual(task.Subtasks, wantSubtasks) {
		t.Errorf("Subtasks = %v, want %v", task.Subtasks, wantSubtasks)
	}
	if !strings.HasPrefix(task.RawBlock, "- [ ] **Implement retry queue**:") {
		t.Errorf("RawBlock does not start with the header: %q", task.RawBlock)
	}
}

func TestParseDegradesGracefully(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, tasks []ledger.Task)
	}{
		{
			name: "bad id becomes zero",
			text: "- [ ] **T**:\n  - **ID**: twelve\n",
			check: func(t *testing.T, tasks []ledger.Task) {
				if tasks[0].ID != 0 {
					t.Errorf("ID = %d, want 0", tasks[0].ID)
				}
			},
		},
		{
			name: "none prerequisites means empty",
			text: "- [ ] **T**:\n  - **Pre-requisites**:\n    - None\n",
			check: func(t *testing.T, tasks []ledger.Task) {
				if len(tasks[0].Prerequisites) != 0 {
					t.Errorf("Prerequisites = %v, want empty", tasks[0].Prerequisites)
				}
			},
		},
		{
			name: "finished_date alias",
			text: "- [x] **T**:\n  - **Finished Date**: 2026-01-02T03:04:05Z\n",
			check: func(t *testing.T, tasks []ledger.Task) {
				if tasks[0].FinishDate != "2026-01-02T03:04:05Z" {
					t.Errorf("FinishDate = %q", tasks[0].FinishDate)
				}
			},
		},
		{
			name: "checked header implies completed",
			text: "- [x] **T**:\n  - **ID**: 1\n",
			check: func(t *testing.T, tasks []ledger.Task) {
				if !tasks[0].Checked || tasks[0].Status != ledger.StatusCompleted {
					t.Errorf("checked=%v status=%q", tasks[0].Checked, tasks[0].Status)
				}
			},
		},
		{
			name: "explicit status overrides checkbox default",
			text: "- [ ] **T**:\n  - **Status**: in_progress\n",
			check: func(t *testing.T, tasks []ledger.Task) {
				if tasks[0].Status != ledger.StatusInProgress {
					t.Errorf("Status = %q, want in_progress", tasks[0].Status)
				}
			},
		},
		{
			name: "unknown metadata keys ignored",
			text: "- [ ] **T**:\n  - **ID**: 3\n  - **Flavor**: grape\n",
			check: func(t *testing.T, tasks []ledger.Task) {
				if tasks[0].ID != 3 {
					t.Errorf("ID = %d, want 3", tasks[0].ID)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := Parse(tt.text)
			if len(tasks) != 1 {
				t.Fatalf("got %d tasks, want 1", len(tasks))
			}
			tt.check(t, tasks)
		})
	}
}

func TestParseMultipleBlocks(t *testing.T) {
	text := `- [ ] **First**:
  - **ID**: 1

- [x] **Second**:
  - **ID**: 2
- [ ] **Third**:
  - **ID**: 3
`
	tasks := Parse(text)
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if tasks[i].Title != want {
			t.Errorf("tasks[%d].Title = %q, want %q", i, tasks[i].Title, want)
		}
	}
	// Back-to-back headers close the previous block without a blank line.
	if !tasks[1].Checked || tasks[2].Checked {
		t.Errorf("checkbox mixup: second=%v third=%v", tasks[1].Checked, tasks[2].Checked)
	}
}

func TestParseDocumentSplitsArchive(t *testing.T) {
	text := `# Project Ledger

## Critical Priority Tasks

- [ ] **Live one**:
  - **ID**: 1
  - **Priority**: Critical

## Archive

*Completed tasks are moved here for historical reference.*

- [x] **Done one**:
  - **ID**: 2
  - **Priority**: High
`
	l := ParseDocument(text)

	if len(l.Critical) != 1 || l.Critical[0].Title != "Live one" {
		t.Errorf("Critical = %v", l.Critical)
	}
	if len(l.Archive) != 1 || l.Archive[0].Title != "Done one" {
		t.Errorf("Archive = %v", l.Archive)
	}
	if len(l.High) != 0 {
		t.Errorf("High = %v, want archived task not filed by priority", l.High)
	}
}

func TestParseDocumentArchiveAfterActiveBlock(t *testing.T) {
	// The scanner is mid-block when the Archive heading arrives; the
	// heading must terminate the block, not be swallowed as metadata.
	text := `## High Priority Tasks

- [ ] **Active one**:
  - **ID**: 1
  - **Priority**: High
## Archive
- [x] **Archived one**:
  - **ID**: 2
  - **Priority**: Medium
`
	l := ParseDocument(text)

	if len(l.High) != 1 || l.High[0].Title != "Active one" {
		t.Errorf("High = %v", l.High)
	}
	if len(l.Archive) != 1 || l.Archive[0].Title != "Archived one" {
		t.Fatalf("Archive = %v", l.Archive)
	}
	if len(l.Medium) != 0 {
		t.Errorf("Medium = %v, want archived task kept out of active buckets", l.Medium)
	}
	if strings.Contains(l.High[0].RawBlock, "## Archive") {
		t.Errorf("heading leaked into RawBlock: %q", l.High[0].RawBlock)
	}
}

func TestIndexLastWins(t *testing.T) {
	m := Index([]ledger.Task{
		{ID: 1, Title: "Same"},
		{ID: 2, Title: "Same"},
	})
	if m["Same"].ID != 2 {
		t.Errorf("Index kept ID %d, want last-wins 2", m["Same"].ID)
	}
}
