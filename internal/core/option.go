package core

import (
	"fmt"
	"strings"
)

// ValueArity describes how many values an option consumes per occurrence.
type ValueArity int

// ValueArity values.
const (
	// ArityNone marks a boolean option that consumes no value.
	ArityNone ValueArity = iota
	// ArityOptional marks an option that may consume a following value.
	ArityOptional
	// ArityRequired marks an option that must consume a value.
	ArityRequired
)

// ValueSource records where a resolved value came from.
type ValueSource int

// ValueSource values, in ascending precedence order.
const (
	// SourceNone marks an attribute with no resolved value.
	SourceNone ValueSource = iota
	// SourceDefault marks a value seeded from the declared default.
	SourceDefault
	// SourceImplied marks a value set by another option's implication.
	SourceImplied
	// SourceEnv marks a value read from the environment lookup.
	SourceEnv
	// SourceCLI marks a value supplied on the command line.
	SourceCLI
)

func (s ValueSource) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceImplied:
		return "implied"
	case SourceEnv:
		return "env"
	case SourceCLI:
		return "cli"
	default:
		return "none"
	}
}

// TransformFunc converts a raw textual value into a typed one. It receives
// the previously stored value so accumulating transforms can build on it.
// A returned error aborts the parse as an invalid-value failure.
type TransformFunc func(raw string, previous any) (any, error)

// Option declares one flag: its identity, value arity, and constraints.
// Structure is immutable after registration; only the owning command's value
// store changes during a parse.
type Option struct {
	short            string // single character, no dash
	long             string // canonical positive long name, no dashes
	desc             string
	valueName        string // placeholder from the flag spec, e.g. "port"
	arity            ValueArity
	variadic         bool
	negatable        bool
	declaredNegative bool // declared as --no-x rather than --x
	defaultValue     any
	presetValue      any
	envVar           string
	choices          []string
	transform        TransformFunc
	conflictsWith    []string
	implies          []string
	mandatory        bool
	hidden           bool
}

// NewOption builds an option from a flag spec string like "-p, --port <number>".
// Angle brackets declare a required value, square brackets an optional one,
// and a "..." suffix inside the brackets makes the option variadic. A long
// form spelled "--no-x" declares a negatable boolean whose bare spelling also
// matches. Invalid specs panic: flag declarations are a programming error,
// not an input error.
func NewOption(flags string, desc string) *Option {
	opt := &Option{desc: desc}

	for _, part := range strings.FieldsFunc(flags, func(r rune) bool {
		return r == ' ' || r == ','
	}) {
		switch {
		case strings.HasPrefix(part, "--"):
			opt.setLong(strings.TrimPrefix(part, "--"))
		case strings.HasPrefix(part, "-"):
			opt.setShort(strings.TrimPrefix(part, "-"))
		case strings.HasPrefix(part, "<") && strings.HasSuffix(part, ">"):
			opt.setValueName(part[1:len(part)-1], ArityRequired)
		case strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]"):
			opt.setValueName(part[1:len(part)-1], ArityOptional)
		default:
			panic(fmt.Sprintf("clarg.NewOption: unrecognized flag spec part %q in %q", part, flags))
		}
	}

	if opt.short == "" && opt.long == "" {
		panic(fmt.Sprintf("clarg.NewOption: %q declares neither a short nor a long form", flags))
	}

	if opt.declaredNegative {
		// A negated declaration reads as "on unless switched off".
		opt.defaultValue = true
	}

	return opt
}

// AttributeName derives the stable identifier used in the value store and in
// conflict/implication lists: the long form if present, otherwise the short,
// with internal hyphens collapsed into a single hump ("dry-run" -> "dryRun").
func (o *Option) AttributeName() string {
	if o.long != "" {
		return kebabToCamel(o.long)
	}

	return o.short
}

// Choices restricts resolved values to the given set.
func (o *Option) Choices(allowed ...string) *Option {
	o.choices = allowed
	return o
}

// Conflicts declares attribute names this option cannot be combined with.
func (o *Option) Conflicts(names ...string) *Option {
	o.conflictsWith = append(o.conflictsWith, names...)
	return o
}

// Default sets the value used when no other source supplies one.
func (o *Option) Default(v any) *Option {
	o.defaultValue = v
	return o
}

// Env names an environment variable consulted when no CLI value was given.
func (o *Option) Env(name string) *Option {
	o.envVar = name
	return o
}

// Flags renders the declared forms for diagnostics, e.g. "-f, --file <path>".
func (o *Option) Flags() string {
	var parts []string

	if o.short != "" {
		parts = append(parts, "-"+o.short)
	}

	if o.long != "" {
		long := o.long
		if o.declaredNegative {
			long = "no-" + long
		}

		parts = append(parts, "--"+long)
	}

	out := strings.Join(parts, ", ")

	switch o.arity {
	case ArityRequired:
		out += " <" + o.placeholder() + ">"
	case ArityOptional:
		out += " [" + o.placeholder() + "]"
	case ArityNone:
	}

	return out
}

// Hidden excludes this option from help output. Parsing is unaffected.
func (o *Option) Hidden() *Option {
	o.hidden = true
	return o
}

// Implies declares attribute names set automatically (source=implied) when
// this option carries a non-default value.
func (o *Option) Implies(names ...string) *Option {
	o.implies = append(o.implies, names...)
	return o
}

// Is reports whether a token (dashes already irrelevant) addresses this
// option, including the negated spelling of a negatable option.
func (o *Option) Is(token string) bool {
	cleaned := cleanDashes(token)

	if o.short != "" && cleaned == o.short {
		return true
	}

	if o.long == "" {
		return false
	}

	if cleaned == o.long {
		return true
	}

	return o.negatable && cleaned == "no-"+o.long
}

// IsNegated reports the polarity of a textual match. It is false for every
// option that is not negatable.
func (o *Option) IsNegated(token string) bool {
	if !o.negatable {
		return false
	}

	return cleanDashes(token) == "no-"+o.long
}

// Mandatory requires a resolved value from any source.
func (o *Option) Mandatory() *Option {
	o.mandatory = true
	return o
}

// Negatable lets a boolean option match both "--x" and "--no-x".
// Panics if the option takes a value: negation only makes sense for booleans.
func (o *Option) Negatable() *Option {
	if o.arity != ArityNone {
		panic(fmt.Sprintf("clarg: option %s takes a value and cannot be negatable", o.Flags()))
	}

	o.negatable = true

	return o
}

// Preset sets the value used when the flag appears with no attached value and
// the arity is optional.
func (o *Option) Preset(v any) *Option {
	o.presetValue = v
	return o
}

// Transform installs a custom value transform.
func (o *Option) Transform(fn TransformFunc) *Option {
	o.transform = fn
	return o
}

// impliedValue picks the value an implication installs: true for booleans,
// otherwise the preset, otherwise the default.
func (o *Option) impliedValue() any {
	if o.arity == ArityNone {
		return true
	}

	if o.presetValue != nil {
		return o.presetValue
	}

	return o.defaultValue
}

func (o *Option) placeholder() string {
	name := o.valueName
	if o.variadic {
		name += "..."
	}

	return name
}

func (o *Option) setLong(name string) {
	if o.long != "" {
		panic(fmt.Sprintf("clarg.NewOption: duplicate long form --%s", name))
	}

	if after, ok := strings.CutPrefix(name, "no-"); ok {
		o.long = after
		o.negatable = true
		o.declaredNegative = true

		return
	}

	o.long = name
}

func (o *Option) setShort(name string) {
	if o.short != "" {
		panic(fmt.Sprintf("clarg.NewOption: duplicate short form -%s", name))
	}

	if len(name) != 1 {
		panic(fmt.Sprintf("clarg.NewOption: short form -%s must be a single character", name))
	}

	o.short = name
}

func (o *Option) setValueName(name string, arity ValueArity) {
	if o.negatable {
		panic(fmt.Sprintf("clarg.NewOption: negatable option --no-%s cannot take a value", o.long))
	}

	o.arity = arity

	if after, ok := strings.CutSuffix(name, "..."); ok {
		o.variadic = true
		name = after
	}

	o.valueName = name
}

// cleanDashes strips up to two leading dashes from a token.
func cleanDashes(token string) string {
	token = strings.TrimPrefix(token, "-")
	return strings.TrimPrefix(token, "-")
}

// kebabToCamel collapses internal hyphens into a single hump:
// "dry-run" -> "dryRun". The inverse direction is never needed; attribute
// names are derived once at registration and used verbatim afterwards.
func kebabToCamel(s string) string {
	var result strings.Builder

	upperNext := false

	for _, r := range s {
		if r == '-' {
			upperNext = true
			continue
		}

		if upperNext {
			result.WriteString(strings.ToUpper(string(r)))

			upperNext = false

			continue
		}

		result.WriteRune(r)
	}

	return result.String()
}
