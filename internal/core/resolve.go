package core

import "fmt"

// LookupEnv is the injected environment capability. The resolver never reads
// process globals directly, so tests can supply deterministic environments.
type LookupEnv func(key string) (string, bool)

// NoEnv is a LookupEnv that finds nothing.
func NoEnv(string) (string, bool) {
	return "", false
}

// resolver merges values from CLI tokens, environment variables, presets, and
// defaults into one value per attribute, tagging each with its source.
type resolver struct {
	cmd     *Command
	store   *valueStore
	lookup  LookupEnv
	cliSeen map[string]bool
	seeded  map[string]bool // variadic attributes already seeded this parse
}

func newResolver(cmd *Command, lookup LookupEnv) *resolver {
	if lookup == nil {
		lookup = NoEnv
	}

	return &resolver{
		cmd:     cmd,
		store:   cmd.store,
		lookup:  lookup,
		cliSeen: map[string]bool{},
		seeded:  map[string]bool{},
	}
}

// applyCLI resolves one command-line occurrence of an option.
func (r *resolver) applyCLI(opt *Option, raw *string, negated bool) error {
	err := r.resolve(opt, raw, negated, SourceCLI)
	if err != nil {
		return err
	}

	r.cliSeen[opt.AttributeName()] = true

	return nil
}

// applyEnv installs environment values for options the CLI never touched.
// Runs after tokenizing so CLI values always win.
func (r *resolver) applyEnv() error {
	for _, opt := range r.cmd.options {
		if opt.envVar == "" || r.cliSeen[opt.AttributeName()] {
			continue
		}

		value, ok := r.lookup(opt.envVar)
		if !ok {
			continue
		}

		err := r.resolve(opt, &value, false, SourceEnv)
		if err != nil {
			return err
		}
	}

	return nil
}

// accumulate appends one element to a variadic option's sequence. The first
// occurrence of a parse discards any carried-over default and seeds a fresh
// sequence; each element is independently transformed and choice-checked.
func (r *resolver) accumulate(opt *Option, raw *string, source ValueSource) error {
	name := opt.AttributeName()

	var seq []any

	if r.seeded[name] {
		if cur, ok := r.store.get(name); ok {
			seq, _ = cur.([]any)
		}
	}

	r.seeded[name] = true

	if seq == nil {
		seq = []any{}
	}

	if raw == nil {
		r.store.set(name, seq, source)
		return nil
	}

	value, err := r.finish(opt, *raw, seq)
	if err != nil {
		return err
	}

	r.store.set(name, append(seq, value), source)

	return nil
}

// finish applies the custom transform and the choice check to a raw value.
func (r *resolver) finish(opt *Option, raw string, previous any) (any, error) {
	var value any = raw

	if opt.transform != nil {
		transformed, err := opt.transform(raw, previous)
		if err != nil {
			return nil, invalidOptionValueError(r.cmd, opt, err)
		}

		value = transformed
	}

	if len(opt.choices) > 0 && !isChoice(value, opt.choices) {
		return nil, invalidChoiceError(r.cmd, opt, nil, fmt.Sprint(value), opt.choices)
	}

	return value, nil
}

// resolve walks the precedence ladder for a single occurrence:
// negation, variadic accumulation, preset, boolean true, declared default;
// then transform and choice validation. Environment fallback is a separate
// phase (applyEnv) so an occurrence here always outranks it.
func (r *resolver) resolve(opt *Option, raw *string, negated bool, source ValueSource) error {
	name := opt.AttributeName()

	if opt.negatable && negated {
		r.store.set(name, false, source)
		return nil
	}

	if opt.variadic {
		return r.accumulate(opt, raw, source)
	}

	if raw == nil && opt.presetValue != nil {
		if s, ok := opt.presetValue.(string); ok {
			raw = &s
		} else {
			r.store.set(name, opt.presetValue, source)
			return nil
		}
	}

	if raw == nil && opt.arity == ArityNone {
		r.store.set(name, true, source)
		return nil
	}

	if raw == nil {
		if s, ok := opt.defaultValue.(string); ok {
			raw = &s
		} else if opt.defaultValue != nil {
			r.store.set(name, opt.defaultValue, source)
			return nil
		} else {
			// Optional arity, no attached value, nothing to fall back on:
			// presence alone flips the attribute on.
			r.store.set(name, true, source)
			return nil
		}
	}

	previous, _ := r.store.get(name)

	value, err := r.finish(opt, *raw, previous)
	if err != nil {
		return err
	}

	r.store.set(name, value, source)

	return nil
}

// isChoice reports membership of a (possibly transformed) value in a choice
// set, comparing by printed form so transformed values still participate.
func isChoice(value any, choices []string) bool {
	printed := fmt.Sprint(value)

	for _, choice := range choices {
		if printed == choice {
			return true
		}
	}

	return false
}
