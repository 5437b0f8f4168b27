package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// RunEnv abstracts the runtime environment for testing.
type RunEnv interface {
	Args() []string
	LookupEnv(key string) (string, bool)
	Printf(format string, args ...any)
	Println(args ...any)
	Exit(code int)
	// Stdout returns a writer for stdout output (help text, version, etc.).
	// Production implementations return os.Stdout; test mocks return a buffer.
	Stdout() io.Writer
	// SupportsSignals returns true if signal handling should be enabled.
	// Production implementations return true; test mocks return false.
	SupportsSignals() bool
}

// OsEnv is the production RunEnv backed by the real process.
type OsEnv struct{}

// Args returns the command line arguments, program name excluded.
func (OsEnv) Args() []string {
	return os.Args[1:]
}

// Exit terminates the process.
func (OsEnv) Exit(code int) {
	os.Exit(code)
}

// LookupEnv reads the process environment.
func (OsEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Printf writes formatted output to stdout.
func (OsEnv) Printf(format string, args ...any) {
	fmt.Printf(format, args...)
}

// Println writes a line to stdout.
func (OsEnv) Println(args ...any) {
	fmt.Println(args...)
}

// Stdout returns the process stdout.
func (OsEnv) Stdout() io.Writer {
	return os.Stdout
}

// SupportsSignals reports that interrupt handling is wanted.
func (OsEnv) SupportsSignals() bool {
	return true
}

// OsLookupEnv adapts os.LookupEnv to the resolver's LookupEnv type.
func OsLookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// ExecuteEnv is a RunEnv implementation that captures output and serves a
// caller-supplied environment map, for testing.
type ExecuteEnv struct {
	args   []string
	env    map[string]string
	output strings.Builder
}

// NewExecuteEnv returns a RunEnv that captures output for testing. Args must
// exclude the program name.
func NewExecuteEnv(args []string) *ExecuteEnv {
	return &ExecuteEnv{args: args, env: map[string]string{}}
}

// Args returns the command line arguments.
func (e *ExecuteEnv) Args() []string {
	return e.args
}

// Exit is a no-op for testing environments.
func (e *ExecuteEnv) Exit(_ int) {
	_ = 0 // No-op stub for coverage
}

// LookupEnv reads the captured environment map.
func (e *ExecuteEnv) LookupEnv(key string) (string, bool) {
	v, ok := e.env[key]
	return v, ok
}

// Output returns the captured output from command execution.
func (e *ExecuteEnv) Output() string {
	return e.output.String()
}

// Printf writes formatted output to the captured buffer.
func (e *ExecuteEnv) Printf(format string, args ...any) {
	fmt.Fprintf(&e.output, format, args...)
}

// Println writes a line to the captured buffer.
func (e *ExecuteEnv) Println(args ...any) {
	fmt.Fprintln(&e.output, args...)
}

// Setenv installs a variable in the captured environment map.
func (e *ExecuteEnv) Setenv(key, value string) {
	e.env[key] = value
}

// Stdout returns the captured output buffer.
func (e *ExecuteEnv) Stdout() io.Writer {
	return &e.output
}

// SupportsSignals returns false for test environments.
func (e *ExecuteEnv) SupportsSignals() bool {
	return false
}

// ExitError represents a non-zero exit code from command execution.
type ExitError struct {
	Code int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExecuteResult carries the captured output of an Execute call.
type ExecuteResult struct {
	Output string
}

// Execute parses args against the command tree and returns captured output
// instead of exiting. Args must exclude the program name.
func Execute(root *Command, args []string) (ExecuteResult, error) {
	env := NewExecuteEnv(args)
	err := RunWithEnv(env, root)

	return ExecuteResult{Output: env.Output()}, err
}

// RunWithEnv parses the environment's arguments against the command tree.
// Help and version requests are satisfied, not failures; every other parse
// failure is printed and reported as ExitError.
func RunWithEnv(env RunEnv, root *Command) error {
	ctx := context.Background()

	if env.SupportsSignals() {
		sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()

		ctx = sigCtx
	}

	opts := ParseOptions{
		LookupEnv: env.LookupEnv,
		Stdout:    env.Stdout(),
		Report:    env.Printf,
	}

	err := root.ParseWith(ctx, env.Args(), opts)

	var helped *HelpRequested
	if errors.As(err, &helped) {
		return nil
	}

	if err != nil {
		var exit ExitError
		if errors.As(err, &exit) {
			return err
		}

		env.Printf("Error: %v\n", err)

		return ExitError{Code: 1}
	}

	return nil
}
