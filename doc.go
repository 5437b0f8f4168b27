// Package clarg builds command-line interfaces from declarative option,
// argument, and command definitions.
//
// A Command owns a set of Options, positional Arguments, and child
// Commands. Parsing walks the token stream left to right, resolves each
// option's value by precedence (command line over environment over preset
// over default), dispatches to subcommands by name, binds the remaining
// operands to declared arguments, validates the result, and invokes the
// command's action.
//
// A minimal program:
//
//	cmd := clarg.New("serve").
//		Option("-p, --port <number>", "port to listen on").
//		Argument("<dir>", "directory to serve").
//		Action(func(ctx context.Context, inv *clarg.Invocation) error {
//			fmt.Println(inv.Values["port"], inv.Args[0])
//			return nil
//		})
//
//	clarg.Run(cmd)
//
// Options support short and long forms, negation (--no-x), value choices,
// environment fallback, presets, implications, conflicts, and variadic
// accumulation. Parse failures carry a structured kind so callers can
// branch on what went wrong.
package clarg
