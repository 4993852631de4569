// Package ui provides a read-only terminal browser for ledger files.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskledger-dev/taskledger/internal/config"
	"github.com/taskledger-dev/taskledger/internal/ledger"
	"github.com/taskledger-dev/taskledger/internal/store"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	refreshInterval time.Duration
}

// WithRefreshInterval overrides how often the ledger file is re-read.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		if d > 0 {
			c.refreshInterval = d
		}
	}
}

// RunTUI starts the ledger browser over the given file.
func RunTUI(ctx context.Context, cfg *config.Config, path string, opts ...TUIOption) error {
	c := &tuiConfig{refreshInterval: 2 * time.Second}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newModel(cfg, path, c.refreshInterval)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle     = lipgloss.NewStyle().Faint(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle   = lipgloss.NewStyle().Faint(true)
	detailStyle   = lipgloss.NewStyle().PaddingLeft(6).Faint(true)
	countersStyle = lipgloss.NewStyle().Faint(true)
)

// row is one display line: either a section header or a task.
type row struct {
	section string
	task    *ledger.Task
}

type model struct {
	cfg      *config.Config
	path     string
	interval time.Duration

	list    *ledger.List
	rows    []row
	cursor  int
	loadErr error

	showHelp    bool
	showDetails bool
}

type tickMsg time.Time

func newModel(cfg *config.Config, path string, interval time.Duration) *model {
	return &model{cfg: cfg, path: path, interval: interval}
}

func (m *model) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.interval)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "g", "home":
			m.cursor = firstTaskRow(m.rows)
		case "G", "end":
			m.cursor = lastTaskRow(m.rows)
		case "r", "f5":
			m.refresh()
		case "d", "enter":
			m.showDetails = !m.showDetails
		case "h", "?":
			m.showHelp = !m.showHelp
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Task Ledger") + "  " + footerStyle.Render(m.path) + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		b.WriteString(m.footer())
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(errStyle.Render("Error loading ledger:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		b.WriteString(m.footer())
		return b.String()
	}
	if m.list == nil {
		b.WriteString("Loading...\n\n")
		b.WriteString(m.footer())
		return b.String()
	}

	writeCounters(&b, m.list)

	for i, r := range m.rows {
		if r.section != "" {
			b.WriteString("\n" + sectionStyle.Render(r.section) + "\n")
			continue
		}
		b.WriteString(m.renderTask(i, r.task))
	}

	b.WriteString("\n" + m.footer())
	return b.String()
}

func (m *model) renderTask(i int, t *ledger.Task) string {
	cursor := "  "
	if i == m.cursor {
		cursor = cursorStyle.Render("> ")
	}

	line := fmt.Sprintf("%s%s #%d %s", cursor, checkbox(t.Checked), t.ID, t.Title)
	if n := len(t.Subtasks); n > 0 {
		line += fmt.Sprintf(" (%d/%d)", t.SubtasksDone(), n)
	}
	if t.Checked {
		line = doneStyle.Render(line)
	}
	line += "\n"

	if m.showDetails && i == m.cursor {
		var details []string
		if t.Description != "" {
			details = append(details, t.Description)
		}
		if t.Assignee != "" {
			details = append(details, "assignee: "+t.Assignee)
		}
		if t.EstimatedTime != "" {
			details = append(details, "estimate: "+t.EstimatedTime)
		}
		if len(t.Prerequisites) > 0 {
			details = append(details, "after: "+strings.Join(t.Prerequisites, ", "))
		}
		for _, st := range t.Subtasks {
			details = append(details, fmt.Sprintf("%s %s", checkbox(st.Done), st.Name))
		}
		for _, d := range details {
			line += detailStyle.Render(d) + "\n"
		}
	}
	return line
}

func (m *model) footer() string {
	return footerStyle.Render(fmt.Sprintf(
		"j/k move | enter details | r refresh | h help | q quit | refresh every %s", m.interval))
}

func (m *model) moveCursor(delta int) {
	i := m.cursor
	for {
		i += delta
		if i < 0 || i >= len(m.rows) {
			return
		}
		if m.rows[i].task != nil {
			m.cursor = i
			return
		}
	}
}

func (m *model) refresh() {
	doc, err := store.Load(m.path, m.cfg.Format)
	if err != nil {
		m.loadErr = err
		m.list = nil
		m.rows = nil
		return
	}
	m.loadErr = nil
	m.list = doc.List
	m.rows = buildRows(doc.List)
	if m.cursor >= len(m.rows) || m.cursor < 0 || (len(m.rows) > 0 && m.rows[m.cursor].task == nil) {
		m.cursor = firstTaskRow(m.rows)
	}
}

func buildRows(l *ledger.List) []row {
	var rows []row
	for _, p := range ledger.Priorities() {
		bucket := l.Bucket(p)
		if len(*bucket) == 0 {
			continue
		}
		rows = append(rows, row{section: fmt.Sprintf("%s Priority", p)})
		for i := range *bucket {
			rows = append(rows, row{task: &(*bucket)[i]})
		}
	}
	if len(l.Archive) > 0 {
		rows = append(rows, row{section: "Archive"})
		for i := range l.Archive {
			rows = append(rows, row{task: &l.Archive[i]})
		}
	}
	return rows
}

func firstTaskRow(rows []row) int {
	for i := range rows {
		if rows[i].task != nil {
			return i
		}
	}
	return 0
}

func lastTaskRow(rows []row) int {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].task != nil {
			return i
		}
	}
	return 0
}

func writeCounters(b *strings.Builder, l *ledger.List) {
	s := l.Summarize()
	b.WriteString(countersStyle.Render(fmt.Sprintf(
		"Active: %d  Completed: %d  Archived: %d", s.Total, s.ByStatus[ledger.StatusCompleted], s.Archived)) + "\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  j/k, arrows  Move cursor\n")
	b.WriteString("  g / G        Jump to first / last task\n")
	b.WriteString("  enter, d     Toggle task details\n")
	b.WriteString("  r, F5        Reload the ledger file\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
