package core

import "strings"

// tokenizer splits one command level's token slice into operands, unknown
// tokens, and option events delivered to the resolver. It never dispatches:
// the command decides what the operands mean.
type tokenizer struct {
	cmd *Command
	res *resolver

	operands []string
	unknown  []string

	onlyOperands      bool // saw "--": everything left is data
	collectingUnknown bool // saw an unclaimed option: the rest rides along
	posOptIndex       int  // next positional-option mapping slot
}

func newTokenizer(cmd *Command, res *resolver) *tokenizer {
	return &tokenizer{cmd: cmd, res: res}
}

// scan walks the tokens left to right. Option events are applied to the
// resolver as they are seen; operands and unknown tokens accumulate for the
// dispatcher.
func (t *tokenizer) scan(tokens []string) error {
	for i := 0; i < len(tokens); i++ {
		consumed, err := t.scanToken(tokens, i)
		if err != nil {
			return err
		}

		i += consumed
	}

	return nil
}

// deliverOperand routes a non-option token: positional-option mapping first,
// then the unknown stream if it is already flowing, then the operand list.
func (t *tokenizer) deliverOperand(token string) error {
	if t.collectingUnknown {
		t.unknown = append(t.unknown, token)
		return nil
	}

	pos := t.posOptIndex + len(t.operands)
	if pos < len(t.cmd.positionalOptions) {
		if opt := t.cmd.optionByAttribute(t.cmd.positionalOptions[pos]); opt != nil {
			t.posOptIndex++
			return t.res.applyCLI(opt, &token, false)
		}
	}

	t.operands = append(t.operands, token)

	return nil
}

// deliverUnknown applies the unknown-token policy chain: caller handler,
// pass-through flag, allow-unknown flag, deferral to a child command, and
// finally a hard failure.
func (t *tokenizer) deliverUnknown(token string) error {
	switch {
	case t.cmd.unknownHandler != nil && t.cmd.unknownHandler(token):
	case t.cmd.passThrough:
		t.collectingUnknown = true
	case t.cmd.allowUnknown:
	case len(t.cmd.children) > 0:
		// A child may claim it; the dispatcher re-judges leftovers.
		t.collectingUnknown = true
	default:
		return unknownOptionError(t.cmd, token)
	}

	t.unknown = append(t.unknown, token)

	return nil
}

// scanCluster expands a combined short-flag token ("-abc"). Every flag except
// the last must be boolean; the last may consume a following token under the
// single-flag rules.
func (t *tokenizer) scanCluster(tokens []string, index int) (int, error) {
	group := []rune(strings.TrimPrefix(tokens[index], "-"))

	// Any unregistered character makes the whole token unknown.
	for _, ch := range group {
		if t.cmd.optionByFlag(string(ch)) == nil {
			return 0, t.deliverUnknown(tokens[index])
		}
	}

	for i, ch := range group {
		opt := t.cmd.optionByFlag(string(ch))
		last := i == len(group)-1

		if !last {
			if opt.arity != ArityNone {
				return 0, missingOptionArgumentError(t.cmd, opt)
			}

			err := t.res.applyCLI(opt, nil, false)
			if err != nil {
				return 0, err
			}

			continue
		}

		return t.scanValue(opt, tokens, index, false)
	}

	return 0, nil
}

// scanOption handles a single candidate option token.
func (t *tokenizer) scanOption(tokens []string, index int) (int, error) {
	token := tokens[index]

	// "=" binds the attached value directly; no lookahead is consumed.
	if flag, attached, ok := strings.Cut(token, "="); ok {
		opt := t.cmd.optionByFlag(flag)
		if opt == nil {
			return 0, t.deliverUnknown(token)
		}

		// A negated spelling switches the flag off; it has no value slot.
		if opt.IsNegated(flag) {
			return 0, unexpectedOptionValueError(t.cmd, opt, flag)
		}

		return 0, t.res.applyCLI(opt, &attached, false)
	}

	if opt := t.cmd.optionByFlag(token); opt != nil {
		return t.scanValue(opt, tokens, index, opt.IsNegated(token))
	}

	// Short token with more than one trailing character: try a cluster.
	if !strings.HasPrefix(token, "--") && len(token) > 2 {
		return t.scanCluster(tokens, index)
	}

	return 0, t.deliverUnknown(token)
}

// scanToken processes tokens[index], returning how many extra tokens were
// consumed as option values.
func (t *tokenizer) scanToken(tokens []string, index int) (int, error) {
	token := tokens[index]

	if t.onlyOperands {
		return 0, t.deliverOperand(token)
	}

	if token == "--" {
		// One-time, irreversible switch for the rest of this level.
		t.onlyOperands = true
		return 0, nil
	}

	if len(token) > 1 && strings.HasPrefix(token, "-") {
		return t.scanOption(tokens, index)
	}

	return 0, t.deliverOperand(token)
}

// scanValue applies arity-driven lookahead for a matched single flag.
func (t *tokenizer) scanValue(opt *Option, tokens []string, index int, negated bool) (int, error) {
	switch opt.arity {
	case ArityRequired:
		if index+1 >= len(tokens) {
			return 0, missingOptionArgumentError(t.cmd, opt)
		}

		return 1, t.res.applyCLI(opt, &tokens[index+1], negated)

	case ArityOptional:
		if index+1 < len(tokens) && !looksLikeOption(tokens[index+1]) {
			return 1, t.res.applyCLI(opt, &tokens[index+1], negated)
		}

		return 0, t.res.applyCLI(opt, nil, negated)

	default:
		return 0, t.res.applyCLI(opt, nil, negated)
	}
}

// looksLikeOption reports whether a token would be scanned as an option,
// which blocks optional-arity lookahead from swallowing it.
func looksLikeOption(token string) bool {
	return len(token) > 1 && strings.HasPrefix(token, "-")
}
