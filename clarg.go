package clarg

import (
	"errors"
	"io"
	"os"

	"github.com/toejough/clarg/internal/core"
)

// --- Re-exported types from core ---

// ActionFunc handles a fully parsed command invocation.
type ActionFunc = core.ActionFunc

// Argument describes one positional argument.
type Argument = core.Argument

// Command is one node of the dispatch tree.
type Command = core.Command

// ExecSpec names an external program serving as an executable subcommand.
type ExecSpec = core.ExecSpec

// ExecuteResult contains the captured output of an Execute call.
type ExecuteResult = core.ExecuteResult

// ExitError is returned when a command exits with a non-zero code.
type ExitError = core.ExitError

// FailureKind classifies parse failures.
type FailureKind = core.FailureKind

// GroupValidator inspects the resolved values of a group's members.
type GroupValidator = core.GroupValidator

// HelpRequested reports that the parse was satisfied by help or version
// output rather than an action.
type HelpRequested = core.HelpRequested

// HookFunc runs around actions and dispatches.
type HookFunc = core.HookFunc

// Invocation carries the bound inputs handed to an action.
type Invocation = core.Invocation

// Option describes one named option.
type Option = core.Option

// OptionGroup places a cardinality constraint over a set of options.
type OptionGroup = core.OptionGroup

// ParseError is the structured failure type for all parse-time errors.
type ParseError = core.ParseError

// ParseOptions configures one parse call.
type ParseOptions = core.ParseOptions

// ProcessRunner launches external processes for executable subcommands.
type ProcessRunner = core.ProcessRunner

// RunEnv abstracts the runtime environment for testing.
type RunEnv = core.RunEnv

// TransformFunc converts a raw token into an option or argument value.
type TransformFunc = core.TransformFunc

// Validator inspects the fully resolved value map.
type Validator = core.Validator

// ValueSource reports where a resolved value came from.
type ValueSource = core.ValueSource

// Re-export value source constants, in ascending precedence.
const (
	SourceNone    = core.SourceNone
	SourceDefault = core.SourceDefault
	SourceImplied = core.SourceImplied
	SourceEnv     = core.SourceEnv
	SourceCLI     = core.SourceCLI
)

// Re-export failure kind constants.
const (
	KindUnknownOption           = core.KindUnknownOption
	KindUnknownCommand          = core.KindUnknownCommand
	KindMissingOptionArgument   = core.KindMissingOptionArgument
	KindMissingArgument         = core.KindMissingArgument
	KindMissingMandatoryOption  = core.KindMissingMandatoryOption
	KindInvalidOptionValue      = core.KindInvalidOptionValue
	KindInvalidArgumentValue    = core.KindInvalidArgumentValue
	KindInvalidChoice           = core.KindInvalidChoice
	KindConflictingOptions      = core.KindConflictingOptions
	KindExcessArguments         = core.KindExcessArguments
	KindGroupConstraintViolated = core.KindGroupConstraintViolated
	KindCustomValidationFailed  = core.KindCustomValidationFailed
)

// --- Public API ---

// New creates a root command with the conventional help option installed.
func New(name string) *Command {
	return core.New(name)
}

// NewArgument creates a positional argument from a spec string like
// "<file>", "[file]", or "files...".
func NewArgument(spec string, desc string) *Argument {
	return core.NewArgument(spec, desc)
}

// NewExecuteEnv returns a RunEnv that captures output for testing.
func NewExecuteEnv(args []string) *core.ExecuteEnv {
	return core.NewExecuteEnv(args)
}

// NewOption creates an option from a flag spec string like
// "-p, --port <number>".
func NewOption(flags string, desc string) *Option {
	return core.NewOption(flags, desc)
}

// NewOptionGroup creates a named constraint group over the given options.
func NewOptionGroup(name string, options ...*Option) *OptionGroup {
	return core.NewOptionGroup(name, options...)
}

// Run parses os.Args against the command tree and exits on error.
func Run(root *Command) {
	err := core.RunWithEnv(core.OsEnv{}, root)
	if err != nil {
		var exitErr ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		os.Exit(1)
	}
}

// RunWithEnv parses the environment's arguments against the command tree.
func RunWithEnv(env RunEnv, root *Command) error {
	return core.RunWithEnv(env, root)
}

// Execute parses args against the command tree and returns captured output
// instead of exiting. Args must exclude the program name. This is useful
// for testing.
func Execute(root *Command, args []string) (ExecuteResult, error) {
	return core.Execute(root, args)
}

// --- Shell completion ---

// Complete writes completion candidates for a partial command line, one per
// line. The command line includes the binary name.
func Complete(w io.Writer, root *Command, commandLine string) error {
	return core.Complete(w, root, commandLine)
}

// CompletionScript writes a shell completion script for the given shell
// (bash, zsh, or fish).
func CompletionScript(w io.Writer, shell string, binName string) error {
	return core.CompletionScript(w, shell, binName)
}

// DetectShell returns the current shell name (bash, zsh, fish) or empty
// string.
func DetectShell() string {
	return core.DetectShell()
}
