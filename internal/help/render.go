// Package help content structures and rendering.

package help

import (
	"fmt"
	"io"
	"strings"
)

// Arg represents a positional argument entry in help output.
type Arg struct {
	Spec        string
	Description string
}

// Command is the full help model for one command.
type Command struct {
	Path        string
	Description string
	Usage       string
	Flags       []Flag
	Arguments   []Arg
	Subcommands []Sub
}

// Flag represents an option entry in help output.
type Flag struct {
	Spec        string
	Description string
	Default     string
	Choices     string
	Required    bool
}

// Sub represents a subcommand entry in help output.
type Sub struct {
	Name        string
	Description string
}

// Render writes the help model to the given writer. Sections appear in a
// fixed order: usage, description, arguments, options, commands. Empty
// sections are omitted.
func Render(w io.Writer, model Command) {
	styles := DefaultStyles()

	fmt.Fprintf(w, "%s %s\n", styles.Header.Render("Usage:"), model.Usage)

	if model.Description != "" {
		fmt.Fprintf(w, "\n%s\n", model.Description)
	}

	if len(model.Arguments) > 0 {
		fmt.Fprintf(w, "\n%s\n", styles.Header.Render("Arguments:"))

		width := 0
		for _, arg := range model.Arguments {
			width = max(width, len(arg.Spec))
		}

		for _, arg := range model.Arguments {
			fmt.Fprintf(w, "  %s  %s\n",
				pad(styles.Placeholder.Render(arg.Spec), len(arg.Spec), width),
				arg.Description)
		}
	}

	if len(model.Flags) > 0 {
		fmt.Fprintf(w, "\n%s\n", styles.Header.Render("Options:"))

		width := 0
		for _, flag := range model.Flags {
			width = max(width, len(flag.Spec))
		}

		for _, flag := range model.Flags {
			fmt.Fprintf(w, "  %s  %s\n",
				pad(styles.Flag.Render(flag.Spec), len(flag.Spec), width),
				flagDescription(flag))
		}
	}

	if len(model.Subcommands) > 0 {
		fmt.Fprintf(w, "\n%s\n", styles.Header.Render("Commands:"))

		width := 0
		for _, sub := range model.Subcommands {
			width = max(width, len(sub.Name))
		}

		for _, sub := range model.Subcommands {
			fmt.Fprintf(w, "  %s  %s\n",
				pad(styles.Flag.Render(sub.Name), len(sub.Name), width),
				sub.Description)
		}
	}
}

// StripANSI removes ANSI escape codes from a string for length calculation.
func StripANSI(s string) string {
	var result strings.Builder

	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}

		if inEscape {
			if r == 'm' {
				inEscape = false
			}

			continue
		}

		result.WriteRune(r)
	}

	return result.String()
}

func flagDescription(flag Flag) string {
	desc := flag.Description

	var notes []string

	if flag.Required {
		notes = append(notes, "required")
	}

	if flag.Choices != "" {
		notes = append(notes, "choices: "+flag.Choices)
	}

	if flag.Default != "" {
		notes = append(notes, "default: "+flag.Default)
	}

	if len(notes) > 0 {
		desc += " (" + strings.Join(notes, ", ") + ")"
	}

	return strings.TrimSpace(desc)
}

// pad right-pads styled text to a column width computed from its unstyled
// length, so ANSI codes never skew alignment.
func pad(styled string, plainLen, width int) string {
	if plainLen >= width {
		return styled
	}

	return styled + strings.Repeat(" ", width-plainLen)
}
