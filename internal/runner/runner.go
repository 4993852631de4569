// Package runner executes the configured test command and captures its
// output for reconciliation. It is a thin subprocess boundary: exit codes
// are reported, never interpreted, since a failing test suite is expected
// input rather than an error.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result holds the outcome of one test command invocation.
type Result struct {
	Command  string
	ExitCode int
	Output   string
}

// Run executes command through the shell in dir and captures combined
// stdout and stderr. A non-zero exit code is not an error; err is non-nil
// only when the command could not be started or the context was canceled.
func Run(ctx context.Context, dir, command string) (*Result, error) {
	if command == "" {
		return nil, fmt.Errorf("test command is empty")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	res := &Result{Command: command, Output: buf.String()}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			if ctx.Err() != nil {
				return res, fmt.Errorf("test command interrupted: %w", ctx.Err())
			}
			return res, nil
		}
		return res, fmt.Errorf("running test command: %w", err)
	}

	return res, nil
}
