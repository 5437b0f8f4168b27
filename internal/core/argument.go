package core

import (
	"fmt"
	"strings"
)

// Argument declares one positional slot. Structure is immutable after
// registration; binding happens once per parse.
type Argument struct {
	name         string
	desc         string
	required     bool
	variadic     bool
	defaultValue any
	choices      []string
	transform    TransformFunc
}

// NewArgument builds a positional argument from a name spec: "<file>" is
// required, "[file]" is optional, and a "..." suffix inside the brackets
// makes it variadic. A bare name is treated as required.
func NewArgument(name string, desc string) *Argument {
	arg := &Argument{desc: desc, required: true}

	switch {
	case strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">"):
		name = name[1 : len(name)-1]
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		name = name[1 : len(name)-1]
		arg.required = false
	}

	if after, ok := strings.CutSuffix(name, "..."); ok {
		arg.variadic = true
		name = after
	}

	if name == "" {
		panic("clarg.NewArgument: argument name cannot be empty")
	}

	arg.name = name

	return arg
}

// Choices restricts bound values to the given set.
func (a *Argument) Choices(allowed ...string) *Argument {
	a.choices = allowed
	return a
}

// Default sets the value bound when no operand fills this slot.
// A default on a required argument without a transform is rejected when the
// argument is registered on a command: it could never apply.
func (a *Argument) Default(v any) *Argument {
	a.defaultValue = v
	return a
}

// Name returns the declared argument name.
func (a *Argument) Name() string {
	return a.name
}

// Transform installs a custom value transform.
func (a *Argument) Transform(fn TransformFunc) *Argument {
	a.transform = fn
	return a
}

func (a *Argument) checkDefault() {
	if a.required && a.defaultValue != nil && a.transform == nil {
		panic(fmt.Sprintf(
			"clarg: required argument %q declares a default that could never apply", a.name,
		))
	}
}

// placeholder renders the argument for usage lines.
func (a *Argument) placeholder() string {
	name := a.name
	if a.variadic {
		name += "..."
	}

	if a.required {
		return "<" + name + ">"
	}

	return "[" + name + "]"
}
