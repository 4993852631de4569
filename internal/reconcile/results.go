package reconcile

import (
	"regexp"
	"strings"
)

// Status is a single test outcome.
type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
)

// TestResult is the ephemeral (file, test, status) triple produced once per
// reconciliation run. It is never persisted.
type TestResult struct {
	FilePath string
	TestName string
	Status   Status
}

// resultLineRe matches the verbose runner output shape
// "<filePath>::<testName> PASSED|FAILED".
var resultLineRe = regexp.MustCompile(`^(.+?)::(.+?) (PASSED|FAILED)$`)

// ParseResults extracts individual test results from runner output. Lines
// that do not match the result shape are ignored.
func ParseResults(output string) []TestResult {
	var results []TestResult
	for _, line := range strings.Split(output, "\n") {
		m := resultLineRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		results = append(results, TestResult{
			FilePath: m[1],
			TestName: m[2],
			Status:   Status(m[3]),
		})
	}
	return results
}

// RunResults groups test results by file path. Files and tests keep their
// first-seen order; duplicate (file, test) entries are last-wins on status.
type RunResults struct {
	files []string
	tests map[string][]string
	state map[string]map[string]Status
}

// GroupByFile builds RunResults from a flat result list.
func GroupByFile(results []TestResult) *RunResults {
	r := &RunResults{
		tests: make(map[string][]string),
		state: make(map[string]map[string]Status),
	}
	for _, res := range results {
		r.Add(res)
	}
	return r
}

// Add records one result, keeping first-seen ordering and last-wins status.
func (r *RunResults) Add(res TestResult) {
	if _, ok := r.state[res.FilePath]; !ok {
		r.files = append(r.files, res.FilePath)
		r.state[res.FilePath] = make(map[string]Status)
	}
	if _, ok := r.state[res.FilePath][res.TestName]; !ok {
		r.tests[res.FilePath] = append(r.tests[res.FilePath], res.TestName)
	}
	r.state[res.FilePath][res.TestName] = res.Status
}

// Files returns file paths in first-seen order.
func (r *RunResults) Files() []string {
	return r.files
}

// Tests returns the test names for a file in first-seen order.
func (r *RunResults) Tests(file string) []string {
	return r.tests[file]
}

// Status returns the recorded status for a (file, test) pair; ok is false
// when the pair was not in the run.
func (r *RunResults) Status(file, test string) (Status, bool) {
	tests, ok := r.state[file]
	if !ok {
		return "", false
	}
	s, ok := tests[test]
	return s, ok
}

// HasFailures reports whether any test in the file failed.
func (r *RunResults) HasFailures(file string) bool {
	for _, s := range r.state[file] {
		if s == StatusFailed {
			return true
		}
	}
	return false
}

// FailureCount counts failing tests in the file.
func (r *RunResults) FailureCount(file string) int {
	n := 0
	for _, s := range r.state[file] {
		if s == StatusFailed {
			n++
		}
	}
	return n
}
