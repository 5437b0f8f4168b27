package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ExecSpec names an external program serving as an executable subcommand.
// Zero-value Dir and Env inherit the working directory and environment of
// the calling process.
type ExecSpec struct {
	Path string
	Dir  string
	Env  []string
}

// ProcessRunner launches external processes for executable subcommands.
// Tests supply fakes; production uses the os/exec backed runner.
type ProcessRunner interface {
	Run(ctx context.Context, spec ExecSpec, args []string) error
}

// DefaultRunner returns the os/exec backed runner. A nil stdout falls back
// to the process stdout.
func DefaultRunner(stdout io.Writer) ProcessRunner {
	if stdout == nil {
		stdout = os.Stdout
	}

	return &osRunner{stdout: stdout}
}

type osRunner struct {
	stdout io.Writer
}

// Run executes the program, wiring its output through the configured writer
// and translating non-zero exits into ExitError.
func (r *osRunner) Run(ctx context.Context, spec ExecSpec, args []string) error {
	cmd := exec.CommandContext(ctx, spec.Path, args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitError{Code: exitErr.ExitCode()}
	}

	return fmt.Errorf("running %s: %w", spec.Path, err)
}
