package core

import (
	"fmt"
	"strings"
)

// FailureKind categorizes a parse failure.
type FailureKind int

// FailureKind values.
const (
	KindUnknown FailureKind = iota
	// KindUnknownOption is reported for an option token no registered option matches.
	KindUnknownOption
	// KindUnknownCommand is reported when leftover tokens match no command.
	KindUnknownCommand
	// KindMissingOptionArgument is reported when an option requires a value and none follows.
	KindMissingOptionArgument
	// KindMissingArgument is reported when a required positional has no bound value.
	KindMissingArgument
	// KindMissingMandatoryOption is reported when a mandatory option resolves to no value.
	KindMissingMandatoryOption
	// KindInvalidOptionValue is reported when an option's transform rejects its raw value.
	KindInvalidOptionValue
	// KindInvalidArgumentValue is reported when an argument's transform rejects its raw value.
	KindInvalidArgumentValue
	// KindInvalidChoice is reported when a value is not in the declared choice set.
	KindInvalidChoice
	// KindConflictingOptions is reported when two conflicting options both carry values.
	KindConflictingOptions
	// KindExcessArguments is reported when operands outnumber declared arguments.
	KindExcessArguments
	// KindGroupConstraintViolated is reported when an option group's cardinality fails.
	KindGroupConstraintViolated
	// KindCustomValidationFailed is reported when a caller-supplied validator rejects.
	KindCustomValidationFailed
)

func (k FailureKind) String() string {
	switch k {
	case KindUnknownOption:
		return "unknown option"
	case KindUnknownCommand:
		return "unknown command"
	case KindMissingOptionArgument:
		return "missing option argument"
	case KindMissingArgument:
		return "missing argument"
	case KindMissingMandatoryOption:
		return "missing mandatory option"
	case KindInvalidOptionValue:
		return "invalid option value"
	case KindInvalidArgumentValue:
		return "invalid argument value"
	case KindInvalidChoice:
		return "invalid choice"
	case KindConflictingOptions:
		return "conflicting options"
	case KindExcessArguments:
		return "excess arguments"
	case KindGroupConstraintViolated:
		return "group constraint violated"
	case KindCustomValidationFailed:
		return "custom validation failed"
	default:
		return "unknown failure"
	}
}

// ParseError is a structured parse failure. The parser never downgrades a
// failure to a message string; callers inspect Kind and the entity references
// to decide how to render it.
type ParseError struct {
	Kind     FailureKind
	Message  string
	Option   *Option  // offending option, if any
	Other    *Option  // second party for conflicts
	Argument *Argument
	Command  *Command // command level the failure was detected at
}

func (e *ParseError) Error() string {
	return e.Message
}

// HelpRequested signals the informational terminal state: a command with
// children, no action, and no tokens. It is not a parse failure; the caller
// decides whether it maps to a non-zero exit.
type HelpRequested struct {
	Command *Command
}

func (e *HelpRequested) Error() string {
	return "help requested"
}

func conflictingOptionsError(cmd *Command, opt, other *Option) *ParseError {
	return &ParseError{
		Kind:    KindConflictingOptions,
		Message: fmt.Sprintf("option %s cannot be used with option %s", opt.Flags(), other.Flags()),
		Option:  opt,
		Other:   other,
		Command: cmd,
	}
}

func customValidationError(cmd *Command, err error) *ParseError {
	return &ParseError{
		Kind:    KindCustomValidationFailed,
		Message: err.Error(),
		Command: cmd,
	}
}

func excessArgumentsError(cmd *Command, expected, received int) *ParseError {
	return &ParseError{
		Kind:    KindExcessArguments,
		Message: fmt.Sprintf("expected %d arguments but received %d", expected, received),
		Command: cmd,
	}
}

func groupConstraintError(cmd *Command, group *OptionGroup, detail string) *ParseError {
	return &ParseError{
		Kind:    KindGroupConstraintViolated,
		Message: fmt.Sprintf("option group %q: %s", group.name, detail),
		Command: cmd,
	}
}

func invalidArgumentValueError(cmd *Command, arg *Argument, err error) *ParseError {
	return &ParseError{
		Kind:     KindInvalidArgumentValue,
		Message:  fmt.Sprintf("invalid value for argument %q: %v", arg.name, err),
		Argument: arg,
		Command:  cmd,
	}
}

func invalidChoiceError(cmd *Command, opt *Option, arg *Argument, got string, allowed []string) *ParseError {
	name := ""

	switch {
	case opt != nil:
		name = opt.Flags()
	case arg != nil:
		name = arg.name
	}

	return &ParseError{
		Kind: KindInvalidChoice,
		Message: fmt.Sprintf(
			"%q is not an allowed value for %s (choices: %s)",
			got, name, strings.Join(allowed, ", "),
		),
		Option:   opt,
		Argument: arg,
		Command:  cmd,
	}
}

func invalidOptionValueError(cmd *Command, opt *Option, err error) *ParseError {
	return &ParseError{
		Kind:    KindInvalidOptionValue,
		Message: fmt.Sprintf("invalid value for option %s: %v", opt.Flags(), err),
		Option:  opt,
		Command: cmd,
	}
}

func missingArgumentError(cmd *Command, arg *Argument) *ParseError {
	return &ParseError{
		Kind:     KindMissingArgument,
		Message:  fmt.Sprintf("missing required argument %q", arg.name),
		Argument: arg,
		Command:  cmd,
	}
}

func missingMandatoryOptionError(cmd *Command, opt *Option) *ParseError {
	return &ParseError{
		Kind:    KindMissingMandatoryOption,
		Message: fmt.Sprintf("missing mandatory option %s", opt.Flags()),
		Option:  opt,
		Command: cmd,
	}
}

func missingOptionArgumentError(cmd *Command, opt *Option) *ParseError {
	return &ParseError{
		Kind:    KindMissingOptionArgument,
		Message: fmt.Sprintf("option %s requires a value", opt.Flags()),
		Option:  opt,
		Command: cmd,
	}
}

func unexpectedOptionValueError(cmd *Command, opt *Option, flag string) *ParseError {
	return &ParseError{
		Kind:    KindInvalidOptionValue,
		Message: fmt.Sprintf("option %s does not take a value", flag),
		Option:  opt,
		Command: cmd,
	}
}

func unknownCommandError(cmd *Command, token string) *ParseError {
	return &ParseError{
		Kind:    KindUnknownCommand,
		Message: fmt.Sprintf("unknown command: %s", token),
		Command: cmd,
	}
}

func unknownOptionError(cmd *Command, token string) *ParseError {
	return &ParseError{
		Kind:    KindUnknownOption,
		Message: fmt.Sprintf("unknown option: %s", token),
		Command: cmd,
	}
}
