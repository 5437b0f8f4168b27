package core

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestNewOption_ShortAndLongForms(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	opt := NewOption("-p, --port <number>", "port to listen on")

	g.Expect(opt.AttributeName()).To(Equal("port"))
	g.Expect(opt.Is("-p")).To(BeTrue())
	g.Expect(opt.Is("--port")).To(BeTrue())
	g.Expect(opt.Is("--proxy")).To(BeFalse())
	g.Expect(opt.arity).To(Equal(ArityRequired))
	g.Expect(opt.Flags()).To(Equal("-p, --port <number>"))
}

func TestNewOption_OptionalValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	opt := NewOption("--donate [amount]", "donation amount")

	g.Expect(opt.arity).To(Equal(ArityOptional))
	g.Expect(opt.Flags()).To(Equal("--donate [amount]"))
}

func TestNewOption_Variadic(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	opt := NewOption("-n, --number <value...>", "numbers")

	g.Expect(opt.variadic).To(BeTrue())
	g.Expect(opt.arity).To(Equal(ArityRequired))
	g.Expect(opt.Flags()).To(Equal("-n, --number <value...>"))
}

func TestNewOption_NegatedDeclaration(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	opt := NewOption("--no-color", "disable color")

	g.Expect(opt.AttributeName()).To(Equal("color"))
	g.Expect(opt.defaultValue).To(Equal(true))
	g.Expect(opt.Is("--no-color")).To(BeTrue())
	g.Expect(opt.Is("--color")).To(BeTrue())
	g.Expect(opt.IsNegated("--no-color")).To(BeTrue())
	g.Expect(opt.IsNegated("--color")).To(BeFalse())
	g.Expect(opt.Flags()).To(Equal("--no-color"))
}

func TestNewOption_KebabLongBecomesCamelAttribute(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	opt := NewOption("--dry-run", "do not write")

	g.Expect(opt.AttributeName()).To(Equal("dryRun"))
}

func TestNewOption_ShortOnlyAttribute(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	opt := NewOption("-x", "mystery")

	g.Expect(opt.AttributeName()).To(Equal("x"))
}

func TestNewOption_InvalidSpecsPanic(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(func() { NewOption("<value>", "no flag forms") }).To(Panic())
	g.Expect(func() { NewOption("-ab, --thing", "multi-char short") }).To(Panic())
	g.Expect(func() { NewOption("--a --b", "duplicate long") }).To(Panic())
	g.Expect(func() { NewOption("what", "bare word") }).To(Panic())
}

func TestOption_NegatablePanicsWithValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	opt := NewOption("--level <n>", "level")

	g.Expect(func() { opt.Negatable() }).To(Panic())
}

func TestOption_ImpliedValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(NewOption("--force", "").impliedValue()).To(Equal(true))
	g.Expect(NewOption("--out [path]", "").Preset("dist").impliedValue()).To(Equal("dist"))
	g.Expect(NewOption("--port <n>", "").Default("8080").impliedValue()).To(Equal("8080"))
}

func TestKebabToCamel(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(kebabToCamel("dry-run")).To(Equal("dryRun"))
	g.Expect(kebabToCamel("no-op-mode")).To(Equal("noOpMode"))
	g.Expect(kebabToCamel("plain")).To(Equal("plain"))
}
