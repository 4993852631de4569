// Package gitinfo collects advisory repository metadata for reports and
// changelog entries. Every lookup degrades to an empty value outside a git
// repository; nothing here ever blocks a ledger operation.
package gitinfo

import (
	"fmt"
	"os/exec"
	"strings"
)

// Info is a snapshot of the repository state.
type Info struct {
	Branch      string
	Commit      string
	UserName    string
	UserEmail   string
	Clean       bool
	Uncommitted int
}

// RunGit runs a git command in dir and returns its trimmed stdout.
func RunGit(dir string, args ...string) (string, error) {
	gitArgs := append([]string{"-C", dir}, args...)
	out, err := exec.Command("git", gitArgs...).Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Collect gathers repository metadata from dir. Fields that cannot be
// determined stay empty; ok is false when dir is not a repository at all.
func Collect(dir string) (Info, bool) {
	info := Info{Clean: true}

	if _, err := RunGit(dir, "rev-parse", "--git-dir"); err != nil {
		return info, false
	}

	if branch, err := RunGit(dir, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		info.Branch = branch
	}
	if commit, err := RunGit(dir, "rev-parse", "--short", "HEAD"); err == nil {
		info.Commit = commit
	}
	if name, err := RunGit(dir, "config", "user.name"); err == nil {
		info.UserName = name
	}
	if email, err := RunGit(dir, "config", "user.email"); err == nil {
		info.UserEmail = email
	}
	if status, err := RunGit(dir, "status", "--porcelain"); err == nil {
		info.Uncommitted = countStatusLines(status)
		info.Clean = info.Uncommitted == 0
	}

	return info, true
}

func countStatusLines(status string) int {
	if status == "" {
		return 0
	}
	n := 0
	for _, line := range strings.Split(status, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// Author formats the configured identity as "Name <email>", falling back
// to whichever part is present.
func (i Info) Author() string {
	switch {
	case i.UserName != "" && i.UserEmail != "":
		return fmt.Sprintf("%s <%s>", i.UserName, i.UserEmail)
	case i.UserName != "":
		return i.UserName
	case i.UserEmail != "":
		return i.UserEmail
	default:
		return ""
	}
}
