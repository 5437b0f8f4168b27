package core

import "fmt"

// OptionGroup places a cardinality constraint over a set of options.
// Membership counts an option only when it carries a non-default-source
// value: defaults never trip a group constraint.
type OptionGroup struct {
	name      string
	options   []*Option
	exclusive bool
	required  bool
	minCount  int // 0 = unset
	maxCount  int // 0 = unset
	validate  GroupValidator
}

// GroupValidator inspects the resolved values of a group's members.
// A returned error aborts the parse as a group-constraint failure.
type GroupValidator func(values map[string]any) error

// NewOptionGroup creates a named constraint group over the given options.
func NewOptionGroup(name string, options ...*Option) *OptionGroup {
	if name == "" {
		panic("clarg.NewOptionGroup: name cannot be empty")
	}

	if len(options) == 0 {
		panic(fmt.Sprintf("clarg.NewOptionGroup: group %q has no members", name))
	}

	return &OptionGroup{name: name, options: options}
}

// Exclusive permits at most one member to carry a non-default value.
func (g *OptionGroup) Exclusive() *OptionGroup {
	g.exclusive = true
	return g
}

// MaxCount caps how many members may carry non-default values.
func (g *OptionGroup) MaxCount(n int) *OptionGroup {
	g.maxCount = n
	return g
}

// MinCount requires at least n members to carry non-default values.
func (g *OptionGroup) MinCount(n int) *OptionGroup {
	g.minCount = n
	return g
}

// Name returns the group's name.
func (g *OptionGroup) Name() string {
	return g.name
}

// Required requires at least one member to carry a non-default value.
func (g *OptionGroup) Required() *OptionGroup {
	g.required = true
	return g
}

// Validate installs a custom validator over the members' resolved values.
func (g *OptionGroup) Validate(fn GroupValidator) *OptionGroup {
	g.validate = fn
	return g
}
