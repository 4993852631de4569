package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/taskledger-dev/taskledger/internal/ledger"
)

// Patterns for the TASKS.md grammar. These are compile-time constants in
// spirit: nothing mutates them after init.
var (
	taskHeaderRe     = regexp.MustCompile(`^- \[([ x])\] \*\*(.+?)\*\*:`)
	metadataRe       = regexp.MustCompile(`^- \*\*(.+?)\*\*: (.+)$`)
	subtaskRe        = regexp.MustCompile(`^    - \[([ x])\] (.+)$`)
	archiveHeadingRe = regexp.MustCompile(`^## Archive$`)
)

// parseState tracks where the scanner is inside a task block.
type parseState int

const (
	stateScanning parseState = iota // between task blocks
	stateBody                       // inside a block's metadata lines
	statePrereqs                    // inside the Pre-requisites list
	stateSubtasks                   // inside the Subtasks list
)

// Parse recovers all task blocks from ledger text in document order.
// It never fails: malformed fields degrade to zero values for the
// validator, and unrecognized metadata keys are ignored.
func Parse(text string) []ledger.Task {
	blocks := parseBlocks(text)
	tasks := make([]ledger.Task, 0, len(blocks))
	for _, b := range blocks {
		tasks = append(tasks, b.task)
	}
	return tasks
}

// ParseDocument recovers the whole ledger from markdown: blocks after the
// "## Archive" heading land in the archive bucket, everything else is filed
// under the task's own priority.
func ParseDocument(text string) *ledger.List {
	l := &ledger.List{}
	for _, b := range parseBlocks(text) {
		if b.archived {
			l.Archive = append(l.Archive, b.task)
		} else {
			l.Add(b.task)
		}
	}
	return l
}

// Index maps tasks by title, last block winning on duplicates.
func Index(tasks []ledger.Task) map[string]ledger.Task {
	m := make(map[string]ledger.Task, len(tasks))
	for _, t := range tasks {
		m[t.Title] = t
	}
	return m
}

type block struct {
	task     ledger.Task
	archived bool
}

// parseBlocks is the scanner: a single forward pass with an explicit state
// machine and one line of lookahead. A block ends at a blank line followed
// by a new top-level bullet, at the next task header, or at end of input.
func parseBlocks(text string) []block {
	lines := strings.Split(text, "\n")

	var (
		blocks     []block
		cur        *ledger.Task
		blockStart int
		inArchive  bool
		curArchive bool
		state      = stateScanning
	)

	finalize := func(end int) {
		if cur == nil {
			return
		}
		raw := strings.Join(lines[blockStart:end], "\n")
		cur.RawBlock = strings.TrimRight(raw, "\n")
		blocks = append(blocks, block{task: *cur, archived: curArchive})
		cur = nil
		state = stateScanning
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		redo := false

		switch state {
		case stateScanning:
			if archiveHeadingRe.MatchString(line) {
				inArchive = true
			}
			if m := taskHeaderRe.FindStringSubmatch(line); m != nil {
				cur = &ledger.Task{
					Title:    m[2],
					Checked:  m[1] == "x",
					Priority: ledger.PriorityCritical,
				}
				if cur.Checked {
					cur.Status = ledger.StatusCompleted
				} else {
					cur.Status = ledger.StatusPending
				}
				curArchive = inArchive
				blockStart = i
				state = stateBody
			}

		case stateBody:
			stripped := strings.TrimSpace(line)
			switch {
			case taskHeaderRe.MatchString(line):
				finalize(i)
				redo = true
			case strings.HasPrefix(line, "#"):
				// A top-level heading ("## Archive", a section header)
				// ends the block; rescan it so the archive split sees it.
				finalize(i)
				redo = true
			case stripped == "" && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "- ["):
				finalize(i + 1)
			case stripped == "- **Pre-requisites**:" || stripped == "- **Prerequisites**:":
				state = statePrereqs
			case stripped == "- **Subtasks**:":
				state = stateSubtasks
			default:
				if m := metadataRe.FindStringSubmatch(stripped); m != nil {
					applyField(cur, m[1], m[2])
				}
			}

		case statePrereqs:
			if strings.HasPrefix(line, "    - ") {
				item := strings.TrimPrefix(strings.TrimSpace(line), "- ")
				// The reserved title "None" means "no prerequisites".
				if !strings.EqualFold(item, "none") {
					cur.Prerequisites = append(cur.Prerequisites, item)
				}
			} else {
				state = stateBody
				redo = true
			}

		case stateSubtasks:
			if strings.HasPrefix(line, "    - ") {
				if m := subtaskRe.FindStringSubmatch(line); m != nil {
					cur.Subtasks = append(cur.Subtasks, ledger.Subtask{
						Name: m[2],
						Done: m[1] == "x",
					})
				}
			} else {
				state = stateBody
				redo = true
			}
		}

		if !redo {
			i++
		}
	}
	finalize(len(lines))

	return blocks
}

// applyField sets a recognized metadata field on the task. "None" and the
// empty string normalize to unset.
func applyField(t *ledger.Task, key, value string) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "none") {
		value = ""
	}

	switch strings.ReplaceAll(strings.ToLower(key), " ", "_") {
	case "id":
		id, err := strconv.Atoi(value)
		if err != nil {
			id = 0
		}
		t.ID = id
	case "description":
		t.Description = value
	case "priority":
		if value != "" {
			t.Priority = ledger.Priority(value)
		}
	case "estimated_time":
		t.EstimatedTime = value
	case "assignee":
		t.Assignee = value
	case "create_date":
		t.CreateDate = value
	case "start_date":
		t.StartDate = value
	case "finish_date", "finished_date":
		t.FinishDate = value
	case "status":
		if value != "" {
			t.Status = ledger.Status(value)
		}
	}
}
