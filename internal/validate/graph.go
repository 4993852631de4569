package validate

import (
	"sort"
	"strings"

	"github.com/taskledger-dev/taskledger/internal/ledger"
)

// Tasks validates ledger-wide invariants over a set of tasks, then each
// task individually. Checks run in a fixed order: duplicate IDs, missing
// prerequisites, dependency cycles, completion consistency (warning only),
// per-task field checks.
func Tasks(tasks []ledger.Task) *Result {
	r := &Result{Valid: true}

	checkDuplicateIDs(tasks, r)
	checkPrerequisitesExist(tasks, r)
	checkCycles(tasks, r)
	checkCompletionConsistency(tasks, r)

	for i := range tasks {
		r.merge(Task(&tasks[i]))
	}

	return r
}

// List validates a whole ledger, archive included.
func List(l *ledger.List) *Result {
	return Tasks(l.AllTasks())
}

// checkDuplicateIDs reports a hard error naming every title sharing an ID.
func checkDuplicateIDs(tasks []ledger.Task, r *Result) {
	byID := make(map[int][]string)
	for _, t := range tasks {
		if t.ID > 0 {
			byID[t.ID] = append(byID[t.ID], t.Title)
		}
	}

	var dup []int
	for id, titles := range byID {
		if len(titles) > 1 {
			dup = append(dup, id)
		}
	}
	sort.Ints(dup)
	for _, id := range dup {
		r.errorf("duplicate task ID %d: '%s'", id, strings.Join(byID[id], "' and '"))
	}
}

// checkPrerequisitesExist requires every prerequisite to resolve to a known
// title in the set.
func checkPrerequisitesExist(tasks []ledger.Task, r *Result) {
	titles := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		titles[t.Title] = true
	}
	for _, t := range tasks {
		for _, p := range t.Prerequisites {
			if !titles[p] {
				r.errorf("task '%s' has unknown prerequisite: '%s'", t.Title, p)
			}
		}
	}
}

// checkCycles walks the task → prerequisite graph from every task as an
// independent DFS root. The on-path set is local to each root: it grows on
// descent and is copied rather than shared, so state never leaks between
// roots. O(V·(V+E)) worst case, fine for ledgers of this size.
func checkCycles(tasks []ledger.Task, r *Result) {
	byTitle := make(map[string]*ledger.Task, len(tasks))
	for i := range tasks {
		byTitle[tasks[i].Title] = &tasks[i]
	}

	for i := range tasks {
		t := &tasks[i]
		if onCycle(t.Title, t, byTitle, map[string]bool{}) {
			r.errorf("circular dependency detected involving task: '%s'", t.Title)
		}
	}
}

// onCycle reports whether following prerequisites from task revisits a
// title already on the current path.
func onCycle(title string, t *ledger.Task, byTitle map[string]*ledger.Task, onPath map[string]bool) bool {
	if onPath[title] {
		return true
	}
	onPath[title] = true
	defer delete(onPath, title)

	for _, p := range t.Prerequisites {
		next, ok := byTitle[p]
		if !ok {
			continue
		}
		if onCycle(p, next, byTitle, onPath) {
			return true
		}
	}
	return false
}

// checkCompletionConsistency warns when a completed task has incomplete
// prerequisites. Never a hard error.
func checkCompletionConsistency(tasks []ledger.Task, r *Result) {
	byTitle := make(map[string]*ledger.Task, len(tasks))
	for i := range tasks {
		byTitle[tasks[i].Title] = &tasks[i]
	}

	for i := range tasks {
		t := &tasks[i]
		if !t.Completed() {
			continue
		}
		var incomplete []string
		for _, p := range t.Prerequisites {
			if prereq, ok := byTitle[p]; ok && !prereq.Completed() {
				incomplete = append(incomplete, p)
			}
		}
		if len(incomplete) > 0 {
			r.warnf("task '%s' is complete but has incomplete prerequisites: %s",
				t.Title, strings.Join(incomplete, ", "))
		}
	}
}
