package core

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/toejough/clarg/internal/help"
)

// ActionFunc handles a fully parsed command invocation.
type ActionFunc func(ctx context.Context, inv *Invocation) error

// HookFunc runs around actions and dispatches. Pre-subcommand hooks receive
// the child being dispatched to; action hooks receive their own command.
type HookFunc func(ctx context.Context, cmd *Command) error

// UnknownOptionHandler may claim an unrecognized option token. A claimed
// token is collected with the unknown tokens instead of failing the parse.
type UnknownOptionHandler func(token string) bool

// ExcessHandler receives operands left over after argument binding.
type ExcessHandler func(excess []string) error

// Validator inspects the fully resolved value map after all other checks.
type Validator func(values map[string]any) error

// Invocation carries the bound inputs handed to an action.
type Invocation struct {
	Args    []any          // bound positional values, in declaration order
	Values  map[string]any // resolved option values by attribute name
	Unknown []string       // tokens forwarded by the unknown-token policy
	Command *Command
}

// ParseOptions configures one parse call. Zero values mean: no environment,
// no help output, no post-action failure reporting, and the default process
// runner for executable subcommands.
type ParseOptions struct {
	LookupEnv LookupEnv
	Stdout    io.Writer
	Report    func(format string, args ...any)
	Runner    ProcessRunner
}

// Command is one node of the dispatch tree. Structure is built once during
// registration and stays immutable through parsing; only the value store and
// the per-parse scratch fields change.
type Command struct {
	name             string
	desc             string
	version          string
	parent           *Command
	children         []*Command
	options          []*Option
	arguments        []*Argument
	groups           []*OptionGroup
	aliases          []string
	hidden           bool
	defaultChildName string
	executablePath   string

	action        ActionFunc
	preAction     []HookFunc
	postAction    []HookFunc
	preSubcommand []HookFunc
	validators    []Validator

	allowUnknown      bool
	passThrough       bool
	unknownHandler    UnknownOptionHandler
	allowExcess       bool
	excessHandler     ExcessHandler
	positionalOptions []string

	helpOpt    *Option
	versionOpt *Option

	// Per-parse state, reset at the start of every parse.
	store     *valueStore
	boundArgs []any
	operands  []string
	unknown   []string
}

// New creates a command with the conventional "-h, --help" option installed.
func New(name string) *Command {
	c := &Command{name: name, store: newValueStore()}
	c.helpOpt = NewOption("-h, --help", "display help").Hidden()
	c.options = append(c.options, c.helpOpt)

	return c
}

// --- Registration ---

// Action sets the handler invoked after successful binding and validation.
func (c *Command) Action(fn ActionFunc) *Command {
	c.action = fn
	return c
}

// AddArgument registers a positional argument. Ordering violations are
// registration errors: a required argument cannot follow an optional one,
// and nothing can follow a variadic one.
func (c *Command) AddArgument(arg *Argument) *Command {
	if n := len(c.arguments); n > 0 && c.arguments[n-1].variadic {
		panic(fmt.Sprintf(
			"clarg: command %q cannot register argument %q after variadic %q",
			c.name, arg.name, c.arguments[n-1].name,
		))
	}

	if arg.required {
		for _, prior := range c.arguments {
			if !prior.required {
				panic(fmt.Sprintf(
					"clarg: command %q cannot register required argument %q after optional %q",
					c.name, arg.name, prior.name,
				))
			}
		}
	}

	arg.checkDefault()
	c.arguments = append(c.arguments, arg)

	return c
}

// AddCommand registers a child command. The parent link exists for error
// context and help paths; ownership runs parent to child.
func (c *Command) AddCommand(child *Command) *Command {
	for _, name := range append([]string{child.name}, child.aliases...) {
		if c.childNamed(name) != nil {
			panic(fmt.Sprintf("clarg: command %q already has a child named %q", c.name, name))
		}
	}

	child.parent = c
	c.children = append(c.children, child)

	return c
}

// AddGroup registers an option group. Every member must already be
// registered on this command.
func (c *Command) AddGroup(group *OptionGroup) *Command {
	for _, opt := range group.options {
		if c.optionByAttribute(opt.AttributeName()) == nil {
			panic(fmt.Sprintf(
				"clarg: group %q member %s is not registered on command %q",
				group.name, opt.Flags(), c.name,
			))
		}
	}

	c.groups = append(c.groups, group)

	return c
}

// AddOption registers an option. Duplicate short or long forms are
// registration errors, except that the built-in help option yields to a
// caller-registered replacement.
func (c *Command) AddOption(opt *Option) *Command {
	for i, existing := range c.options {
		if !collides(existing, opt) {
			continue
		}

		if existing == c.helpOpt {
			c.helpOpt = opt
			c.options[i] = opt

			return c
		}

		panic(fmt.Sprintf(
			"clarg: command %q already defines %s (conflicts with %s)",
			c.name, existing.Flags(), opt.Flags(),
		))
	}

	c.options = append(c.options, opt)

	return c
}

// Alias registers alternative dispatch names.
func (c *Command) Alias(names ...string) *Command {
	c.aliases = append(c.aliases, names...)
	return c
}

// AllowExcessArguments keeps operands beyond the declared arguments from
// failing the parse.
func (c *Command) AllowExcessArguments() *Command {
	c.allowExcess = true
	return c
}

// AllowUnknownOptions collects unrecognized option tokens instead of failing.
func (c *Command) AllowUnknownOptions() *Command {
	c.allowUnknown = true
	return c
}

// Argument is shorthand for AddArgument(NewArgument(spec, desc)).
func (c *Command) Argument(spec string, desc string) *Command {
	return c.AddArgument(NewArgument(spec, desc))
}

// Command creates, registers, and returns a child command.
func (c *Command) Command(name string) *Command {
	child := New(name)
	c.AddCommand(child)

	return child
}

// DefaultCommand names the child that receives the tokens when no child name
// matches and this command has no action of its own.
func (c *Command) DefaultCommand(name string) *Command {
	c.defaultChildName = name
	return c
}

// Description sets the help text for this command.
func (c *Command) Description(s string) *Command {
	c.desc = s
	return c
}

// Executable marks this command as delegated to an external process. The
// dispatcher hands it the remaining tokens instead of parsing them.
func (c *Command) Executable(path string) *Command {
	c.executablePath = path
	return c
}

// Hidden excludes this command from help output.
func (c *Command) Hidden() *Command {
	c.hidden = true
	return c
}

// Name sets the command's dispatch name.
func (c *Command) Name(s string) *Command {
	c.name = s
	return c
}

// OnExcessArguments installs a handler for operands beyond the declared
// arguments, replacing the excess-argument failure.
func (c *Command) OnExcessArguments(fn ExcessHandler) *Command {
	c.excessHandler = fn
	return c
}

// OnUnknownOption installs a handler consulted before the pass-through and
// allow-unknown policies.
func (c *Command) OnUnknownOption(fn UnknownOptionHandler) *Command {
	c.unknownHandler = fn
	return c
}

// Option is shorthand for AddOption(NewOption(flags, desc)).
func (c *Command) Option(flags string, desc string) *Command {
	return c.AddOption(NewOption(flags, desc))
}

// PassThroughOptions forwards the first unrecognized option and everything
// after it as unknown tokens.
func (c *Command) PassThroughOptions() *Command {
	c.passThrough = true
	return c
}

// PositionalOptions binds leading operand positions to option attribute
// names: the operand at position i resolves as the value of names[i].
func (c *Command) PositionalOptions(names ...string) *Command {
	c.positionalOptions = names
	return c
}

// PostAction appends a hook run after the action, even when the action
// failed. The action's failure is what propagates.
func (c *Command) PostAction(fn HookFunc) *Command {
	c.postAction = append(c.postAction, fn)
	return c
}

// PreAction appends a hook run before the action. A failing hook aborts the
// remaining hooks and the action.
func (c *Command) PreAction(fn HookFunc) *Command {
	c.preAction = append(c.preAction, fn)
	return c
}

// PreSubcommand appends a hook run before dispatching to a child. The hook
// receives the child being dispatched to.
func (c *Command) PreSubcommand(fn HookFunc) *Command {
	c.preSubcommand = append(c.preSubcommand, fn)
	return c
}

// Validate appends a global validator run after every other check.
func (c *Command) Validate(fn Validator) *Command {
	c.validators = append(c.validators, fn)
	return c
}

// Version installs a boolean option that short-circuits the parse and prints
// the given version string. Flags default to "-V, --version".
func (c *Command) Version(version string, flags ...string) *Command {
	spec := "-V, --version"
	if len(flags) > 0 {
		spec = flags[0]
	}

	c.version = version
	c.versionOpt = NewOption(spec, "output the version number")
	c.AddOption(c.versionOpt)

	return c
}

// --- Accessors ---

// BoundArgs returns the positional values bound by the last parse.
func (c *Command) BoundArgs() []any {
	return c.boundArgs
}

// GetDescription returns the configured description.
func (c *Command) GetDescription() string {
	return c.desc
}

// GetName returns the command's dispatch name.
func (c *Command) GetName() string {
	return c.name
}

// Operands returns the operand tokens from the last parse at this level.
func (c *Command) Operands() []string {
	return c.operands
}

// Source reports where the named attribute's value came from.
func (c *Command) Source(name string) ValueSource {
	return c.store.source(name)
}

// UnknownTokens returns tokens collected by the unknown-token policy during
// the last parse at this level.
func (c *Command) UnknownTokens() []string {
	return c.unknown
}

// Value returns the resolved value for an attribute name, or nil.
func (c *Command) Value(name string) any {
	v, _ := c.store.get(name)
	return v
}

// Values returns a copy of the resolved value map.
func (c *Command) Values() map[string]any {
	return c.store.snapshot()
}

// --- Parsing ---

// Parse resolves the token slice against this command tree using the
// process environment. Tokens must already exclude the program name.
func (c *Command) Parse(args []string) error {
	return c.ParseWith(context.Background(), args, ParseOptions{LookupEnv: OsLookupEnv})
}

// ParseWith resolves the token slice with an explicit environment lookup,
// output writer, and process runner.
func (c *Command) ParseWith(ctx context.Context, args []string, opts ParseOptions) error {
	if opts.LookupEnv == nil {
		opts.LookupEnv = NoEnv
	}

	return c.parseLevel(ctx, args, opts)
}

// RenderHelp writes this command's help text.
func (c *Command) RenderHelp(w io.Writer) {
	if w == nil {
		return
	}

	help.Render(w, c.helpModel())
}

// bindArguments consumes operands into the declared argument slots. The last
// argument, if variadic, takes every remaining operand. Returns the bound
// values and any excess operands.
func (c *Command) bindArguments(operands []string) ([]any, []string, error) {
	bound := make([]any, 0, len(c.arguments))
	next := 0

	for _, arg := range c.arguments {
		if arg.variadic {
			seq := []any{}

			for ; next < len(operands); next++ {
				value, err := c.bindValue(arg, operands[next])
				if err != nil {
					return nil, nil, err
				}

				seq = append(seq, value)
			}

			if len(seq) == 0 {
				if arg.defaultValue != nil {
					bound = append(bound, arg.defaultValue)
					continue
				}

				if arg.required {
					return nil, nil, missingArgumentError(c, arg)
				}
			}

			bound = append(bound, seq)

			continue
		}

		if next < len(operands) {
			value, err := c.bindValue(arg, operands[next])
			if err != nil {
				return nil, nil, err
			}

			bound = append(bound, value)
			next++

			continue
		}

		if arg.defaultValue != nil {
			bound = append(bound, arg.defaultValue)
			continue
		}

		if arg.required {
			return nil, nil, missingArgumentError(c, arg)
		}

		bound = append(bound, nil)
	}

	return bound, operands[next:], nil
}

// bindValue transforms and choice-checks one operand for an argument.
func (c *Command) bindValue(arg *Argument, raw string) (any, error) {
	var value any = raw

	if arg.transform != nil {
		transformed, err := arg.transform(raw, nil)
		if err != nil {
			return nil, invalidArgumentValueError(c, arg, err)
		}

		value = transformed
	}

	if len(arg.choices) > 0 && !isChoice(value, arg.choices) {
		return nil, invalidChoiceError(c, nil, arg, fmt.Sprint(value), arg.choices)
	}

	return value, nil
}

// childNamed finds a child by name or alias. Matching is exact.
func (c *Command) childNamed(name string) *Command {
	for _, child := range c.children {
		if child.name == name {
			return child
		}

		for _, alias := range child.aliases {
			if alias == name {
				return child
			}
		}
	}

	return nil
}

// dispatch runs the pre-subcommand hooks, then hands the input slice to the
// child: recursion for in-process commands, the process runner for
// executable ones.
func (c *Command) dispatch(ctx context.Context, child *Command, input []string, opts ParseOptions) error {
	for _, hook := range c.preSubcommand {
		err := hook(ctx, child)
		if err != nil {
			return err
		}
	}

	if child.executablePath != "" {
		runner := opts.Runner
		if runner == nil {
			runner = DefaultRunner(opts.Stdout)
		}

		return runner.Run(ctx, ExecSpec{Path: child.executablePath}, input)
	}

	return child.parseLevel(ctx, input, opts)
}

func (c *Command) helpModel() help.Command {
	model := help.Command{
		Path:        c.path(),
		Description: c.desc,
		Usage:       c.usageLine(),
	}

	for _, opt := range c.options {
		if opt.hidden {
			continue
		}

		model.Flags = append(model.Flags, help.Flag{
			Spec:        opt.Flags(),
			Description: opt.desc,
			Default:     defaultText(opt.defaultValue),
			Choices:     strings.Join(opt.choices, ", "),
			Required:    opt.mandatory,
		})
	}

	for _, arg := range c.arguments {
		model.Arguments = append(model.Arguments, help.Arg{
			Spec:        arg.placeholder(),
			Description: arg.desc,
		})
	}

	for _, child := range c.children {
		if child.hidden {
			continue
		}

		model.Subcommands = append(model.Subcommands, help.Sub{
			Name:        child.name,
			Description: child.desc,
		})
	}

	return model
}

func (c *Command) helpRequested() bool {
	if c.helpOpt == nil {
		return false
	}

	name := c.helpOpt.AttributeName()

	return c.store.source(name) == SourceCLI && c.Value(name) == true
}

// invoke runs the action between its hooks. Post-action hooks always run;
// their failures never replace the action's failure.
func (c *Command) invoke(ctx context.Context, opts ParseOptions) error {
	for _, hook := range c.preAction {
		err := hook(ctx, c)
		if err != nil {
			return err
		}
	}

	inv := &Invocation{
		Args:    c.boundArgs,
		Values:  c.store.snapshot(),
		Unknown: c.unknown,
		Command: c,
	}

	actionErr := c.action(ctx, inv)

	for _, hook := range c.postAction {
		err := hook(ctx, c)
		if err == nil {
			continue
		}

		if actionErr == nil {
			actionErr = err
			continue
		}

		if opts.Report != nil {
			opts.Report("post-action hook failed: %v\n", err)
		}
	}

	return actionErr
}

// optionByAttribute finds a registered option by its attribute name.
func (c *Command) optionByAttribute(name string) *Option {
	for _, opt := range c.options {
		if opt.AttributeName() == name {
			return opt
		}
	}

	return nil
}

// optionByFlag finds a registered option matching a flag token.
func (c *Command) optionByFlag(token string) *Option {
	for _, opt := range c.options {
		if opt.Is(token) {
			return opt
		}
	}

	return nil
}

// parseLevel is the per-node state machine: tokenize, then either dispatch
// to a child, fall back to the default child, emit help, or bind and invoke.
func (c *Command) parseLevel(ctx context.Context, tokens []string, opts ParseOptions) error {
	c.resetState()

	res := newResolver(c, opts.LookupEnv)
	tok := newTokenizer(c, res)

	err := tok.scan(tokens)
	if err != nil {
		return err
	}

	c.operands, c.unknown = tok.operands, tok.unknown

	if c.versionRequested() {
		if opts.Stdout != nil {
			fmt.Fprintln(opts.Stdout, c.version)
		}

		return &HelpRequested{Command: c}
	}

	if c.helpRequested() {
		c.RenderHelp(opts.Stdout)
		return &HelpRequested{Command: c}
	}

	// Each level enforces its own option constraints, whether or not it ends
	// up delegating to a child.
	err = res.applyEnv()
	if err != nil {
		return err
	}

	err = c.validateOptions()
	if err != nil {
		return err
	}

	if len(c.operands) > 0 {
		if child := c.childNamed(c.operands[0]); child != nil {
			return c.dispatch(ctx, child, append(c.operands[1:], c.unknown...), opts)
		}
	}

	if c.defaultChildName != "" && c.action == nil {
		child := c.childNamed(c.defaultChildName)
		if child == nil {
			panic(fmt.Sprintf(
				"clarg: command %q names default child %q but has no such child",
				c.name, c.defaultChildName,
			))
		}

		// The first operand was not a dispatch keyword, so the default child
		// must see it as ordinary input.
		return c.dispatch(ctx, child, append(c.operands, c.unknown...), opts)
	}

	if c.action == nil {
		if len(c.operands) == 0 && len(c.unknown) == 0 {
			c.RenderHelp(opts.Stdout)
			return &HelpRequested{Command: c}
		}

		if len(c.operands) > 0 {
			return unknownCommandError(c, c.operands[0])
		}

		return unknownOptionError(c, c.unknown[0])
	}

	if len(c.unknown) > 0 && !c.allowUnknown && !c.passThrough && c.unknownHandler == nil {
		return unknownOptionError(c, c.unknown[0])
	}

	bound, excess, err := c.bindArguments(c.operands)
	if err != nil {
		return err
	}

	c.boundArgs = bound

	if len(excess) > 0 {
		switch {
		case c.excessHandler != nil:
			err := c.excessHandler(excess)
			if err != nil {
				return customValidationError(c, err)
			}
		case c.allowExcess:
		default:
			return excessArgumentsError(c, len(c.arguments), len(c.operands))
		}
	}

	err = c.runValidators()
	if err != nil {
		return err
	}

	return c.invoke(ctx, opts)
}

// path walks parent links to produce the full command path for messages.
func (c *Command) path() string {
	names := []string{c.name}
	for cur := c.parent; cur != nil; cur = cur.parent {
		names = append([]string{cur.name}, names...)
	}

	return strings.Join(names, " ")
}

// resetState restores the defaults-only snapshot so re-parsing the same tree
// never accumulates values across calls.
func (c *Command) resetState() {
	c.store.reset(c.options)
	c.boundArgs = nil
	c.operands = nil
	c.unknown = nil
}

// usageLine summarizes the invocation shape for help output.
func (c *Command) usageLine() string {
	parts := []string{c.path()}

	visible := 0

	for _, opt := range c.options {
		if !opt.hidden {
			visible++
		}
	}

	if visible > 0 {
		parts = append(parts, "[options]")
	}

	if len(c.children) > 0 {
		parts = append(parts, "[command]")
	}

	for _, arg := range c.arguments {
		parts = append(parts, arg.placeholder())
	}

	return strings.Join(parts, " ")
}

func (c *Command) versionRequested() bool {
	if c.versionOpt == nil {
		return false
	}

	name := c.versionOpt.AttributeName()

	return c.store.source(name) == SourceCLI && c.Value(name) == true
}

// --- Helpers ---

func collides(a, b *Option) bool {
	if a.short != "" && a.short == b.short {
		return true
	}

	return a.long != "" && a.long == b.long
}

func defaultText(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}
