// Package warp wraps the warp-cli command-line tool.
// This file contains the process runner used to spawn warp-cli.
package warp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/warppulse/warppulse/common"
)

// Output is the captured result of one process run.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (o Output) Success() bool {
	return o.ExitCode == 0
}

// Runner spawns a process and captures its output.
//
// Run returns an error only when the process could not be run to
// completion (not found, not executable, context cancelled). A process
// that ran and exited non-zero yields a nil error and Output.ExitCode != 0.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return out, fmt.Errorf("%w: %s %s", common.ErrTimeout, name, strings.Join(args, " "))
		}
		return out, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return out, fmt.Errorf("%w: %v", common.ErrCLINotFound, err)
	}
	return out, err
}
