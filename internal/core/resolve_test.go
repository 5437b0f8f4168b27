package core

import (
	"context"
	"errors"
	"strconv"
	"testing"

	. "github.com/onsi/gomega"
)

func envOf(vars map[string]string) LookupEnv {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func parseEnv(cmd *Command, vars map[string]string, tokens ...string) error {
	return cmd.ParseWith(context.Background(), tokens, ParseOptions{LookupEnv: envOf(vars)})
}

func TestResolve_DefaultApplies(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").AddOption(NewOption("-p, --port <number>", "port").Default("3000"))
	got := capture(cmd)

	g.Expect(parse(cmd)).To(Succeed())
	g.Expect((*got).Values["port"]).To(Equal("3000"))
	g.Expect(cmd.Source("port")).To(Equal(SourceDefault))
}

func TestResolve_EnvBeatsDefault(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").AddOption(
		NewOption("-p, --port <number>", "port").Default("3000").Env("PORT"))
	got := capture(cmd)

	g.Expect(parseEnv(cmd, map[string]string{"PORT": "4000"})).To(Succeed())
	g.Expect((*got).Values["port"]).To(Equal("4000"))
	g.Expect(cmd.Source("port")).To(Equal(SourceEnv))
}

func TestResolve_CLIBeatsEnv(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").AddOption(
		NewOption("-p, --port <number>", "port").Default("3000").Env("PORT"))
	got := capture(cmd)

	g.Expect(parseEnv(cmd, map[string]string{"PORT": "4000"}, "--port", "5000")).To(Succeed())
	g.Expect((*got).Values["port"]).To(Equal("5000"))
	g.Expect(cmd.Source("port")).To(Equal(SourceCLI))
}

func TestResolve_CLIBooleanUnaffectedByEnv(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").AddOption(
		NewOption("-v, --verbose", "noisy").Env("APP_VERBOSE"))
	got := capture(cmd)

	g.Expect(parseEnv(cmd, map[string]string{"APP_VERBOSE": "0"}, "-v")).To(Succeed())
	g.Expect((*got).Values["verbose"]).To(Equal(true))
	g.Expect(cmd.Source("verbose")).To(Equal(SourceCLI))
}

func TestResolve_PresetUsedWhenFlagBare(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("fund").AddOption(
		NewOption("--donate [amount]", "donation").Preset("20"))
	got := capture(cmd)

	g.Expect(parse(cmd, "--donate")).To(Succeed())
	g.Expect((*got).Values["donate"]).To(Equal("20"))
}

func TestResolve_AttachedValueBeatsPreset(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("fund").AddOption(
		NewOption("--donate [amount]", "donation").Preset("20"))
	got := capture(cmd)

	g.Expect(parse(cmd, "--donate", "50")).To(Succeed())
	g.Expect((*got).Values["donate"]).To(Equal("50"))
}

func TestResolve_NegationStoresFalse(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").Option("--no-color", "disable color")
	got := capture(cmd)

	g.Expect(parse(cmd, "--no-color")).To(Succeed())
	g.Expect((*got).Values["color"]).To(Equal(false))

	g.Expect(parse(cmd, "--color")).To(Succeed())
	g.Expect(cmd.Value("color")).To(Equal(true))
}

func TestResolve_NegationLastOccurrenceWins(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").Option("--no-color", "disable color")
	capture(cmd)

	g.Expect(parse(cmd, "--color", "--no-color")).To(Succeed())
	g.Expect(cmd.Value("color")).To(Equal(false))

	g.Expect(parse(cmd, "--no-color", "--color")).To(Succeed())
	g.Expect(cmd.Value("color")).To(Equal(true))
}

func TestResolve_NegatedDeclarationDefaultsTrue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").Option("--no-color", "disable color")
	got := capture(cmd)

	g.Expect(parse(cmd)).To(Succeed())
	g.Expect((*got).Values["color"]).To(Equal(true))
	g.Expect(cmd.Source("color")).To(Equal(SourceDefault))
}

func TestResolve_TransformApplied(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").AddOption(
		NewOption("-p, --port <number>", "port").
			Transform(func(raw string, _ any) (any, error) {
				return strconv.Atoi(raw)
			}))
	got := capture(cmd)

	g.Expect(parse(cmd, "--port", "8080")).To(Succeed())
	g.Expect((*got).Values["port"]).To(Equal(8080))
}

func TestResolve_TransformErrorIsInvalidValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").AddOption(
		NewOption("-p, --port <number>", "port").
			Transform(func(raw string, _ any) (any, error) {
				return strconv.Atoi(raw)
			}))
	capture(cmd)

	err := parse(cmd, "--port", "nope")

	var parseErr *ParseError
	g.Expect(errors.As(err, &parseErr)).To(BeTrue())
	g.Expect(parseErr.Kind).To(Equal(KindInvalidOptionValue))
}

func TestResolve_ChoiceEnforced(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").AddOption(
		NewOption("--level <name>", "log level").Choices("debug", "info", "warn"))
	capture(cmd)

	g.Expect(parse(cmd, "--level", "info")).To(Succeed())
	g.Expect(cmd.Value("level")).To(Equal("info"))

	err := parse(cmd, "--level", "loud")

	var parseErr *ParseError
	g.Expect(errors.As(err, &parseErr)).To(BeTrue())
	g.Expect(parseErr.Kind).To(Equal(KindInvalidChoice))
	g.Expect(parseErr.Message).To(ContainSubstring("loud"))
}

func TestResolve_ChoiceCheckedAfterTransform(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").AddOption(
		NewOption("--level <name>", "log level").
			Choices("1", "2").
			Transform(func(raw string, _ any) (any, error) {
				return strconv.Atoi(raw)
			}))
	got := capture(cmd)

	g.Expect(parse(cmd, "--level", "2")).To(Succeed())
	g.Expect((*got).Values["level"]).To(Equal(2))
}

func TestResolve_VariadicAccumulates(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("calc").Option("-n, --number <value...>", "numbers")
	got := capture(cmd)

	g.Expect(parse(cmd, "-n", "1", "-n", "2", "-n", "3")).To(Succeed())
	g.Expect((*got).Values["number"]).To(Equal([]any{"1", "2", "3"}))
}

func TestResolve_VariadicAbsentIsEmptySequence(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("calc").Option("-n, --number <value...>", "numbers")
	got := capture(cmd)

	g.Expect(parse(cmd)).To(Succeed())
	g.Expect((*got).Values["number"]).To(Equal([]any{}))
	g.Expect(cmd.Source("number")).To(Equal(SourceDefault))
}

func TestResolve_VariadicElementsTransformedIndependently(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("calc").AddOption(
		NewOption("-n, --number <value...>", "numbers").
			Transform(func(raw string, _ any) (any, error) {
				return strconv.Atoi(raw)
			}))
	got := capture(cmd)

	g.Expect(parse(cmd, "-n", "1", "-n", "2")).To(Succeed())
	g.Expect((*got).Values["number"]).To(Equal([]any{1, 2}))
}

func TestResolve_ReparseResetsState(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("calc").
		Option("-n, --number <value...>", "numbers").
		Option("-v, --verbose", "noisy")
	capture(cmd)

	g.Expect(parse(cmd, "-n", "1", "-v")).To(Succeed())
	g.Expect(cmd.Value("number")).To(Equal([]any{"1"}))
	g.Expect(cmd.Value("verbose")).To(Equal(true))

	g.Expect(parse(cmd, "-n", "9")).To(Succeed())
	g.Expect(cmd.Value("number")).To(Equal([]any{"9"}))
	g.Expect(cmd.Value("verbose")).To(BeNil())
	g.Expect(cmd.Source("verbose")).To(Equal(SourceNone))
}

func TestResolve_BoolEnvFallback(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").AddOption(
		NewOption("--trace <state>", "trace state").Env("TRACE"))
	got := capture(cmd)

	g.Expect(parseEnv(cmd, map[string]string{"TRACE": "on"})).To(Succeed())
	g.Expect((*got).Values["trace"]).To(Equal("on"))
	g.Expect(cmd.Source("trace")).To(Equal(SourceEnv))
}
