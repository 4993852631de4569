package reconcile

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/taskledger-dev/taskledger/internal/ledger"
)

// testTaskTitleRe matches the ledger entry convention for test tasks. The
// reconciler only manages entries of this shape; everything else in the
// ledger is left alone.
var testTaskTitleRe = regexp.MustCompile(`^Fix failing tests in (.+)$`)

const subtaskPrefix = "Fix "

// TestTaskTitle returns the ledger title for a test file's task.
func TestTaskTitle(filePath string) string {
	return "Fix failing tests in " + filePath
}

// TestTaskFile extracts the file path from a test-task title; ok is false
// for titles outside the convention.
func TestTaskFile(title string) (string, bool) {
	m := testTaskTitleRe.FindStringSubmatch(title)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// OpenTestTasks indexes the open (unchecked) test tasks by file path.
// Completed entries are never touched by reconciliation.
func OpenTestTasks(tasks []ledger.Task) map[string]ledger.Task {
	open := make(map[string]ledger.Task)
	for _, t := range tasks {
		file, ok := TestTaskFile(t.Title)
		if !ok || t.Checked {
			continue
		}
		open[file] = t
	}
	return open
}

// recordedTest returns the test name a subtask stands for.
func recordedTest(st ledger.Subtask) string {
	return strings.TrimPrefix(st.Name, subtaskPrefix)
}

// Report lists classification outcomes as "file::test" strings, in the
// run's first-seen order.
type Report struct {
	NewlyFixed   []string
	NewlyBroken  []string
	StillFailing []string
}

// Empty reports whether nothing changed state.
func (r *Report) Empty() bool {
	return len(r.NewlyFixed) == 0 && len(r.NewlyBroken) == 0 && len(r.StillFailing) == 0
}

// Classify compares the current run against existing open ledger entries
// without mutating anything:
//
//   - PASSED and recorded as an unchecked subtask   → newly fixed
//   - FAILED and not recorded at all                → newly broken
//   - FAILED and already recorded                   → still failing
func Classify(run *RunResults, existing map[string]ledger.Task) *Report {
	report := &Report{}

	for _, file := range run.Files() {
		task, hasTask := existing[file]
		for _, test := range run.Tests(file) {
			status, _ := run.Status(file, test)
			key := file + "::" + test

			var recorded *ledger.Subtask
			if hasTask {
				recorded = task.Subtask(subtaskPrefix + test)
			}

			switch {
			case status == StatusPassed:
				if recorded != nil && !recorded.Done {
					report.NewlyFixed = append(report.NewlyFixed, key)
				}
			case recorded == nil:
				report.NewlyBroken = append(report.NewlyBroken, key)
			default:
				report.StillFailing = append(report.StillFailing, key)
			}
		}
	}

	return report
}

// Options configures a reconciliation pass.
type Options struct {
	// Assignee is stamped on entries the reconciler creates or that have
	// no assignee yet.
	Assignee string
	// NextID is the first ID to allocate for new entries; the caller
	// computes it as max+1 across the whole ledger, archive included.
	NextID int
	// Now supplies the timestamp source; zero means time.Now.
	Now time.Time
}

// Outcome is the result of a reconciliation pass.
type Outcome struct {
	// Tasks holds the updated and newly created test-task records, in the
	// run's file order. Untouched ledger entries are not included.
	Tasks []ledger.Task
	// Report is the pure classification of the run.
	Report *Report
	// Changed reports whether any entry actually needs rewriting.
	Changed bool
}

// Reconcile merges a test run into the open test entries of the ledger.
//
// Per file: a healthy file with no open entry produces nothing. An open
// entry keeps its ID, create date and start date; its subtasks keep their
// exact order, each checkbox updated from the run, with newly failing
// tests appended unchecked at the end. A subtask absent from the current
// run counts as passing. A file with failures and no entry gets a fresh
// record with a monotonically allocated ID and both dates stamped to now.
// The parent checkbox is recomputed as "all subtasks passing"; the finish
// date is stamped exactly when that flips to checked and cleared while
// failures remain.
func Reconcile(active []ledger.Task, run *RunResults, opts Options) *Outcome {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	stamp := ledger.Stamp(opts.Now)
	if opts.Assignee == "" {
		opts.Assignee = "Roo"
	}

	existing := OpenTestTasks(active)
	outcome := &Outcome{Report: Classify(run, existing)}
	nextID := opts.NextID

	for _, file := range run.Files() {
		prev, hasPrev := existing[file]
		if !run.HasFailures(file) && !hasPrev {
			continue
		}

		var task ledger.Task
		if hasPrev {
			task = mergeExisting(prev, run, file, opts, &outcome.Changed)
		} else {
			task = newEntry(run, file, nextID, stamp, opts.Assignee)
			nextID++
			outcome.Changed = true
		}

		task.Checked = task.AllSubtasksDone()
		if task.Checked {
			task.Status = ledger.StatusCompleted
			task.FinishDate = stamp
		} else {
			task.Status = ledger.StatusPending
			task.FinishDate = ""
		}
		task.Description = describeFailures(run.FailureCount(file), file)

		outcome.Tasks = append(outcome.Tasks, task)
	}

	return outcome
}

// mergeExisting updates an open entry from the run, preserving identity
// fields and exact subtask order.
func mergeExisting(prev ledger.Task, run *RunResults, file string, opts Options, changed *bool) ledger.Task {
	task := prev
	task.RawBlock = ""
	if task.CreateDate == "" {
		task.CreateDate = ledger.Stamp(opts.Now)
	}
	if task.StartDate == "" {
		task.StartDate = ledger.Stamp(opts.Now)
	}
	if task.Assignee == "" {
		task.Assignee = opts.Assignee
	}
	if task.EstimatedTime == "" {
		task.EstimatedTime = "30 minutes"
	}

	// Existing subtasks first, in their original order. A test missing
	// from the run is treated as fixed; see DESIGN.md for the ambiguity
	// this carries.
	subtasks := make([]ledger.Subtask, 0, len(prev.Subtasks))
	recorded := make(map[string]bool, len(prev.Subtasks))
	for _, st := range prev.Subtasks {
		test := recordedTest(st)
		recorded[test] = true
		status, seen := run.Status(file, test)
		failing := seen && status == StatusFailed
		// The checkbox flips in either direction: a failing test passes, or
		// a recorded fix regresses. Both must reach the disk.
		if st.Done == failing {
			*changed = true
		}
		subtasks = append(subtasks, ledger.Subtask{Name: st.Name, Done: !failing})
	}

	// Then newly failing tests, appended unchecked, never reordering
	// what came before.
	for _, test := range run.Tests(file) {
		if status, _ := run.Status(file, test); status != StatusFailed {
			continue
		}
		if recorded[test] {
			continue
		}
		subtasks = append(subtasks, ledger.Subtask{Name: subtaskPrefix + test, Done: false})
		*changed = true
	}

	task.Subtasks = subtasks
	return task
}

// newEntry creates a fresh test-task record: every failing test becomes an
// unchecked subtask.
func newEntry(run *RunResults, file string, id int, stamp, assignee string) ledger.Task {
	task := ledger.Task{
		ID:            id,
		Title:         TestTaskTitle(file),
		Priority:      ledger.PriorityCritical,
		Assignee:      assignee,
		EstimatedTime: "30 minutes",
		CreateDate:    stamp,
		StartDate:     stamp,
	}
	for _, test := range run.Tests(file) {
		if status, _ := run.Status(file, test); status == StatusFailed {
			task.Subtasks = append(task.Subtasks, ledger.Subtask{
				Name: subtaskPrefix + test,
				Done: false,
			})
		}
	}
	return task
}

func describeFailures(n int, file string) string {
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("Fix %d failing test%s in %s", n, plural, file)
}

// MergeTasks folds reconciled entries back into the active task list:
// entries replace same-titled tasks in place, new entries append at the
// end. Order of untouched tasks is never disturbed.
func MergeTasks(active []ledger.Task, updated []ledger.Task) []ledger.Task {
	byTitle := make(map[string]ledger.Task, len(updated))
	for _, t := range updated {
		byTitle[t.Title] = t
	}

	merged := make([]ledger.Task, 0, len(active)+len(updated))
	seen := make(map[string]bool, len(active))
	for _, t := range active {
		if repl, ok := byTitle[t.Title]; ok {
			merged = append(merged, repl)
		} else {
			merged = append(merged, t)
		}
		seen[t.Title] = true
	}
	for _, t := range updated {
		if !seen[t.Title] {
			merged = append(merged, t)
		}
	}
	return merged
}
