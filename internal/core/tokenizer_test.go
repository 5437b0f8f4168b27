package core

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
)

// capture registers an action that records its invocation.
func capture(cmd *Command) **Invocation {
	var got *Invocation

	cmd.Action(func(_ context.Context, inv *Invocation) error {
		got = inv
		return nil
	})

	return &got
}

func parse(cmd *Command, tokens ...string) error {
	return cmd.ParseWith(context.Background(), tokens, ParseOptions{})
}

func TestTokenizer_BooleanFlag(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").Option("-v, --verbose", "noisy output")
	got := capture(cmd)

	g.Expect(parse(cmd, "--verbose")).To(Succeed())
	g.Expect((*got).Values["verbose"]).To(Equal(true))
	g.Expect(cmd.Source("verbose")).To(Equal(SourceCLI))
}

func TestTokenizer_ValueByLookahead(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").Option("-p, --port <number>", "port")
	got := capture(cmd)

	g.Expect(parse(cmd, "--port", "8080")).To(Succeed())
	g.Expect((*got).Values["port"]).To(Equal("8080"))
}

func TestTokenizer_ValueByEquals(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").Option("-p, --port <number>", "port")
	got := capture(cmd)

	g.Expect(parse(cmd, "--port=8080")).To(Succeed())
	g.Expect((*got).Values["port"]).To(Equal("8080"))
}

func TestTokenizer_EqualsValueMayLookLikeOption(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("grep").Option("-e, --pattern <expr>", "pattern")
	got := capture(cmd)

	g.Expect(parse(cmd, "--pattern=-v")).To(Succeed())
	g.Expect((*got).Values["pattern"]).To(Equal("-v"))
}

func TestTokenizer_RequiredValueConsumesOptionLikeToken(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("grep").Option("-e, --pattern <expr>", "pattern")
	got := capture(cmd)

	// Required arity consumes the next token unconditionally.
	g.Expect(parse(cmd, "--pattern", "--not-a-flag")).To(Succeed())
	g.Expect((*got).Values["pattern"]).To(Equal("--not-a-flag"))
}

func TestTokenizer_MissingRequiredValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").Option("-p, --port <number>", "port")
	capture(cmd)

	err := parse(cmd, "--port")

	var parseErr *ParseError
	g.Expect(err).To(HaveOccurred())
	g.Expect(errors.As(err, &parseErr)).To(BeTrue())
	g.Expect(parseErr.Kind).To(Equal(KindMissingOptionArgument))
}

func TestTokenizer_OptionalValueSkipsOptionLikeToken(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").
		Option("--log [level]", "log level").
		Option("-v, --verbose", "noisy")
	got := capture(cmd)

	g.Expect(parse(cmd, "--log", "--verbose")).To(Succeed())
	g.Expect((*got).Values["log"]).To(Equal(true))
	g.Expect((*got).Values["verbose"]).To(Equal(true))
}

func TestTokenizer_ShortCluster(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("tar").
		Option("-x", "extract").
		Option("-z", "gzip").
		Option("-f <archive>", "archive file")
	got := capture(cmd)

	g.Expect(parse(cmd, "-xzf", "out.tgz")).To(Succeed())
	g.Expect((*got).Values["x"]).To(Equal(true))
	g.Expect((*got).Values["z"]).To(Equal(true))
	g.Expect((*got).Values["f"]).To(Equal("out.tgz"))
}

func TestTokenizer_ClusterValueFlagMustBeLast(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("tar").
		Option("-x", "extract").
		Option("-f <archive>", "archive file")
	capture(cmd)

	err := parse(cmd, "-fx", "out.tgz")

	var parseErr *ParseError
	g.Expect(errors.As(err, &parseErr)).To(BeTrue())
	g.Expect(parseErr.Kind).To(Equal(KindMissingOptionArgument))
}

func TestTokenizer_ClusterWithUnknownCharIsUnknownToken(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("tar").Option("-x", "extract")
	capture(cmd)

	err := parse(cmd, "-xq")

	var parseErr *ParseError
	g.Expect(errors.As(err, &parseErr)).To(BeTrue())
	g.Expect(parseErr.Kind).To(Equal(KindUnknownOption))
	g.Expect(parseErr.Message).To(ContainSubstring("-xq"))
}

func TestTokenizer_NegatedSpellingRejectsAttachedValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").Option("--no-color", "disable color")
	capture(cmd)

	err := parse(cmd, "--no-color=1")

	var parseErr *ParseError
	g.Expect(errors.As(err, &parseErr)).To(BeTrue())
	g.Expect(parseErr.Kind).To(Equal(KindInvalidOptionValue))
	g.Expect(parseErr.Message).To(ContainSubstring("--no-color"))
}

func TestTokenizer_DoubleDashStopsOptionScanning(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("run").
		Option("-v, --verbose", "noisy").
		Argument("[args...]", "forwarded args")
	got := capture(cmd)

	g.Expect(parse(cmd, "--", "--verbose", "-x")).To(Succeed())
	g.Expect((*got).Values).NotTo(HaveKey("verbose"))
	g.Expect((*got).Args[0]).To(Equal([]any{"--verbose", "-x"}))
}

func TestTokenizer_SingleDashIsOperand(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("cat").Argument("[file]", "file or - for stdin")
	got := capture(cmd)

	g.Expect(parse(cmd, "-")).To(Succeed())
	g.Expect((*got).Args[0]).To(Equal("-"))
}

func TestTokenizer_NegativeNumberLikeTokenNeedsDoubleDash(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("calc").Argument("<value>", "value")
	got := capture(cmd)

	g.Expect(parse(cmd, "--", "-5")).To(Succeed())
	g.Expect((*got).Args[0]).To(Equal("-5"))
}

func TestTokenizer_PositionalOptionMapping(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("build").
		Option("--mode <m>", "build mode").
		PositionalOptions("mode")
	got := capture(cmd)

	g.Expect(parse(cmd, "fast")).To(Succeed())
	g.Expect((*got).Values["mode"]).To(Equal("fast"))
	g.Expect(cmd.Source("mode")).To(Equal(SourceCLI))
	g.Expect(cmd.Operands()).To(BeEmpty())
}

func TestTokenizer_UnknownOptionFailsByDefault(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve")
	capture(cmd)

	err := parse(cmd, "--nope")

	var parseErr *ParseError
	g.Expect(errors.As(err, &parseErr)).To(BeTrue())
	g.Expect(parseErr.Kind).To(Equal(KindUnknownOption))
}

func TestTokenizer_AllowUnknownCollects(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("serve").AllowUnknownOptions()
	got := capture(cmd)

	g.Expect(parse(cmd, "--nope", "-q")).To(Succeed())
	g.Expect((*got).Unknown).To(Equal([]string{"--nope", "-q"}))
}

func TestTokenizer_PassThroughForwardsEverythingAfterFirstUnknown(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cmd := New("wrap").
		Option("-v, --verbose", "noisy").
		PassThroughOptions()
	got := capture(cmd)

	g.Expect(parse(cmd, "-v", "--other", "value", "more")).To(Succeed())
	g.Expect((*got).Values["verbose"]).To(Equal(true))
	g.Expect((*got).Unknown).To(Equal([]string{"--other", "value", "more"}))
}

func TestTokenizer_UnknownHandlerClaimsTokens(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var claimed []string

	cmd := New("serve").OnUnknownOption(func(token string) bool {
		claimed = append(claimed, token)
		return true
	})
	got := capture(cmd)

	g.Expect(parse(cmd, "--custom")).To(Succeed())
	g.Expect(claimed).To(Equal([]string{"--custom"}))
	g.Expect((*got).Unknown).To(Equal([]string{"--custom"}))
}
