package core

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// CompletionScript writes a shell completion script for the given shell.
// The generated script calls back into the binary with "__complete" and the
// current command line.
func CompletionScript(w io.Writer, shell string, binName string) error {
	switch shell {
	case "bash":
		fmt.Fprintf(w, _bashCompletion, binName, binName, binName, binName)
	case "zsh":
		fmt.Fprintf(w, _zshCompletion, binName, binName, binName, binName, binName)
	case "fish":
		fmt.Fprintf(w, _fishCompletion, binName, binName, binName, binName)
	default:
		return fmt.Errorf("unsupported shell: %s", shell)
	}

	return nil
}

// DetectShell returns the current shell name (bash, zsh, fish) or empty string.
func DetectShell() string {
	shell := strings.TrimSpace(os.Getenv("SHELL"))
	if shell == "" {
		return ""
	}

	base := shell
	if idx := strings.LastIndex(base, "/"); idx != -1 {
		base = base[idx+1:]
	}

	if idx := strings.LastIndex(base, "\\"); idx != -1 {
		base = base[idx+1:]
	}

	switch base {
	case "bash", "zsh", "fish":
		return base
	default:
		return ""
	}
}

// Complete writes completion candidates for a partial command line, one per
// line. The command line includes the binary name.
func Complete(w io.Writer, root *Command, commandLine string) error {
	parts, isNewArg := tokenizeCommandLine(commandLine)
	if len(parts) == 0 {
		return nil
	}

	// Drop the binary name.
	parts = parts[1:]

	prefix := ""
	if !isNewArg && len(parts) > 0 {
		prefix = parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}

	cur := root

	// Walk completed tokens down the tree, skipping options and their values.
	for i := 0; i < len(parts); i++ {
		token := parts[i]

		if token == "--" {
			return nil
		}

		if len(token) > 1 && strings.HasPrefix(token, "-") {
			// "=" carries the value inside the token; nothing else consumed.
			if strings.Contains(token, "=") {
				continue
			}

			if opt := cur.optionByFlag(token); opt != nil && opt.arity == ArityRequired {
				i++
			}

			continue
		}

		if child := cur.childNamed(token); child != nil {
			cur = child
			continue
		}
	}

	// A pending value-taking option completes from its choices.
	if len(parts) > 0 {
		last := parts[len(parts)-1]
		if opt := cur.optionByFlag(last); opt != nil && opt.arity != ArityNone {
			for _, choice := range opt.choices {
				if strings.HasPrefix(choice, prefix) {
					fmt.Fprintln(w, choice)
				}
			}

			return nil
		}
	}

	if strings.HasPrefix(prefix, "-") {
		suggestFlags(w, cur, prefix)
		return nil
	}

	for _, child := range cur.children {
		if child.hidden {
			continue
		}

		if strings.HasPrefix(child.name, prefix) {
			fmt.Fprintln(w, child.name)
		}
	}

	if prefix == "" {
		suggestFlags(w, cur, prefix)
	}

	return nil
}

// unexported variables.
var (
	_bashCompletion = `
_%s_completion() {
    local request="${COMP_LINE}"
    local completions
    completions=$(%s __complete "$request")

    COMPREPLY=( $(compgen -W "$completions" -- "${COMP_WORDS[COMP_CWORD]}") )
}
complete -F _%s_completion %s
`
	_fishCompletion = `
function __%s_complete
    set -l request (commandline -cp)
    %s __complete "$request"
end
complete -c %s -a "(__%s_complete)" -f
`
	_zshCompletion = `
#compdef %s

_%s_completion() {
    local request="${words[*]}"
    local completions
    completions=("${(@f)$(%s __complete "$request")}")

    compadd -a completions
}
compdef _%s_completion %s
`
)

func suggestFlags(w io.Writer, cmd *Command, prefix string) {
	seen := map[string]bool{}

	for _, opt := range cmd.options {
		if opt.hidden {
			continue
		}

		if opt.long != "" {
			flag := "--" + opt.long
			if strings.HasPrefix(flag, prefix) && !seen[flag] {
				fmt.Fprintln(w, flag)

				seen[flag] = true
			}

			if opt.negatable {
				negated := "--no-" + opt.long
				if strings.HasPrefix(negated, prefix) && !seen[negated] {
					fmt.Fprintln(w, negated)

					seen[negated] = true
				}
			}
		}

		if opt.short != "" {
			flag := "-" + opt.short
			if strings.HasPrefix(flag, prefix) && !seen[flag] {
				fmt.Fprintln(w, flag)

				seen[flag] = true
			}
		}
	}
}

func tokenizeCommandLine(commandLine string) ([]string, bool) {
	var parts []string

	var current strings.Builder

	inSingle := false
	inDouble := false
	escaped := false
	isNewArg := false

	for i := 0; i < len(commandLine); i++ {
		ch := commandLine[i]
		if escaped {
			current.WriteByte(ch)

			escaped = false
			isNewArg = false

			continue
		}

		if ch == '\\' && !inSingle {
			escaped = true
			isNewArg = false

			continue
		}

		if ch == '\'' && !inDouble {
			inSingle = !inSingle
			isNewArg = false

			continue
		}

		if ch == '"' && !inSingle {
			inDouble = !inDouble
			isNewArg = false

			continue
		}

		if (ch == ' ' || ch == '\t' || ch == '\n') && !inSingle && !inDouble {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}

			isNewArg = true

			continue
		}

		current.WriteByte(ch)

		isNewArg = false
	}

	if escaped {
		current.WriteByte('\\')
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	if inSingle || inDouble {
		isNewArg = false
	}

	return parts, isNewArg
}
