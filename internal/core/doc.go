// Package core implements the parsing, resolution, validation, and dispatch
// engine behind the clarg public API.
//
// The pieces fit together per parse: the tokenizer splits one command
// level's tokens into option events and operands, the resolver merges each
// option's occurrences with environment, preset, and default fallbacks, the
// command validates the resolved values, binds operands to declared
// arguments, and either dispatches to a child command or invokes its own
// action.
package core
