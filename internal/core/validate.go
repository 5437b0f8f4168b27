package core

import (
	"fmt"
	"strings"
)

// nonDefaultSource reports whether a source outranks declared defaults.
// Only such values participate in conflicts and group cardinality.
func nonDefaultSource(src ValueSource) bool {
	return src == SourceCLI || src == SourceEnv || src == SourceImplied
}

// applyImplications installs implied values for options triggered by a
// non-default-source value. Implied values never override cli or env.
func (c *Command) applyImplications() {
	for _, opt := range c.options {
		if !nonDefaultSource(c.store.source(opt.AttributeName())) {
			continue
		}

		for _, name := range opt.implies {
			implied := c.optionByAttribute(name)
			if implied == nil {
				continue
			}

			src := c.store.source(name)
			if src == SourceNone || src == SourceDefault {
				c.store.set(name, implied.impliedValue(), SourceImplied)
			}
		}
	}
}

// checkConflicts fails when two options with non-default sources declare each
// other incompatible. Runs before implications so implied values cannot
// manufacture a conflict.
func (c *Command) checkConflicts() error {
	for _, opt := range c.options {
		if !nonDefaultSource(c.store.source(opt.AttributeName())) {
			continue
		}

		for _, name := range opt.conflictsWith {
			other := c.optionByAttribute(name)
			if other == nil || other == opt {
				continue
			}

			if nonDefaultSource(c.store.source(name)) {
				return conflictingOptionsError(c, opt, other)
			}
		}
	}

	return nil
}

// checkGroups enforces each group's cardinality and custom validator.
func (c *Command) checkGroups() error {
	for _, group := range c.groups {
		err := c.checkGroup(group)
		if err != nil {
			return err
		}
	}

	return nil
}

// checkMandatory requires a stored value, from any source, for every
// mandatory option.
func (c *Command) checkMandatory() error {
	for _, opt := range c.options {
		if !opt.mandatory {
			continue
		}

		if _, ok := c.store.get(opt.AttributeName()); !ok {
			return missingMandatoryOptionError(c, opt)
		}
	}

	return nil
}

// runValidators runs caller-supplied global validators, in registration
// order, over the fully resolved value map.
func (c *Command) runValidators() error {
	for _, validate := range c.validators {
		err := validate(c.store.snapshot())
		if err != nil {
			return customValidationError(c, err)
		}
	}

	return nil
}

// validateOptions runs the option-level checks in their required order:
// mandatory, conflicts, implications, groups. Excess-argument and global
// validators run after argument binding.
func (c *Command) validateOptions() error {
	err := c.checkMandatory()
	if err != nil {
		return err
	}

	err = c.checkConflicts()
	if err != nil {
		return err
	}

	c.applyImplications()

	return c.checkGroups()
}

func (c *Command) checkGroup(group *OptionGroup) error {
	count := 0
	values := map[string]any{}

	var active []string

	for _, opt := range group.options {
		name := opt.AttributeName()
		if v, ok := c.store.get(name); ok {
			values[name] = v
		}

		if nonDefaultSource(c.store.source(name)) {
			count++

			active = append(active, opt.Flags())
		}
	}

	if group.exclusive && count > 1 {
		return groupConstraintError(c, group,
			fmt.Sprintf("options %s are mutually exclusive", strings.Join(active, ", ")))
	}

	if group.required && count == 0 {
		return groupConstraintError(c, group, "at least one option must be supplied")
	}

	if group.minCount > 0 && count < group.minCount {
		return groupConstraintError(c, group,
			fmt.Sprintf("at least %d options must be supplied, got %d", group.minCount, count))
	}

	if group.maxCount > 0 && count > group.maxCount {
		return groupConstraintError(c, group,
			fmt.Sprintf("at most %d options may be supplied, got %d", group.maxCount, count))
	}

	if group.validate != nil {
		err := group.validate(values)
		if err != nil {
			return groupConstraintError(c, group, err.Error())
		}
	}

	return nil
}
