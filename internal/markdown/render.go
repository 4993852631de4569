package markdown

import (
	"fmt"
	"strings"

	"github.com/taskledger-dev/taskledger/internal/ledger"
)

// separatorLen is the minimum length for a "---" line to count as a
// structural document separator rather than a thematic break inside prose.
const separatorLen = 10

// archiveNote is the fixed line under the Archive heading.
const archiveNote = "*Completed tasks are moved here for historical reference.*"

// FormatTaskBlock renders a task in the canonical field order: checkbox,
// ID, description, prerequisites, priority, estimated time, assignee, the
// three dates, subtasks. Unset optional fields render as "None" so that
// parsing the output reproduces the task exactly.
func FormatTaskBlock(t ledger.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "- %s **%s**:\n", checkbox(t.Checked), t.Title)
	fmt.Fprintf(&b, "  - **ID**: %d\n", t.ID)
	fmt.Fprintf(&b, "  - **Description**: %s\n", orNone(t.Description))
	// The checkbox already encodes pending/completed; only a refined
	// status needs its own line.
	if t.Status != "" && t.Status != ledger.StatusPending && t.Status != ledger.StatusCompleted {
		fmt.Fprintf(&b, "  - **Status**: %s\n", t.Status)
	}
	b.WriteString("  - **Pre-requisites**:\n")
	if len(t.Prerequisites) == 0 {
		b.WriteString("    - None\n")
	} else {
		for _, p := range t.Prerequisites {
			fmt.Fprintf(&b, "    - %s\n", p)
		}
	}
	fmt.Fprintf(&b, "  - **Priority**: %s\n", t.Priority)
	fmt.Fprintf(&b, "  - **Estimated Time**: %s\n", orNone(t.EstimatedTime))
	fmt.Fprintf(&b, "  - **Assignee**: %s\n", orNone(t.Assignee))
	fmt.Fprintf(&b, "  - **Create Date**: %s\n", orNone(t.CreateDate))
	fmt.Fprintf(&b, "  - **Start Date**: %s\n", orNone(t.StartDate))
	fmt.Fprintf(&b, "  - **Finish Date**: %s\n", orNone(t.FinishDate))
	b.WriteString("  - **Subtasks**:\n")
	if len(t.Subtasks) == 0 {
		b.WriteString("    - None\n")
	} else {
		for _, st := range t.Subtasks {
			fmt.Fprintf(&b, "    - %s %s\n", checkbox(st.Done), st.Name)
		}
	}

	return b.String()
}

// RenderDocument regenerates the managed region of a ledger document from
// task data. The preamble up to and including the first structural
// separator is preserved verbatim, as is everything from the second
// separator on; the middle is rebuilt wholesale: one section per priority
// in the fixed Critical/High/Medium/Low order, then the archive. Active
// tasks are filed by their own priority field, keeping their given order.
func RenderDocument(original string, active, archived []ledger.Task) string {
	lines := strings.Split(original, "\n")

	var out []string
	first := findSeparator(lines, 0)
	if first >= 0 {
		out = append(out, lines[:first+1]...)
	} else {
		out = append(out, lines...)
		out = append(out, "", separator())
		first = len(out) - 1
	}
	out = append(out, "")

	for _, p := range ledger.Priorities() {
		out = append(out, fmt.Sprintf("## %s Priority Tasks", p), "")
		for _, t := range active {
			if t.Priority != p {
				continue
			}
			out = append(out, strings.Split(strings.TrimRight(FormatTaskBlock(t), "\n"), "\n")...)
			out = append(out, "")
		}
		out = append(out, "")
	}

	out = append(out, "## Archive", "", archiveNote, "")
	for _, t := range archived {
		out = append(out, strings.Split(strings.TrimRight(FormatTaskBlock(t), "\n"), "\n")...)
		out = append(out, "")
	}

	out = append(out, separator())
	if second := findSeparator(lines, first+1); second >= 0 {
		out = append(out, lines[second+1:]...)
	}

	return strings.Join(out, "\n")
}

// findSeparator returns the index of the first structural separator line at
// or after start, or -1.
func findSeparator(lines []string, start int) int {
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "---") && len(strings.TrimSpace(lines[i])) > separatorLen {
			return i
		}
	}
	return -1
}

func separator() string {
	return "---" + strings.Repeat("-", 90)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
