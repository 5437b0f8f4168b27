//go:build dev

// Dev tasks for this repository, built on the library itself.
// Run with: go run -tags dev ./dev <command>
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/toejough/clarg"
	"github.com/toejough/go-reorder"
	"github.com/toejough/testredundancy"
)

func main() {
	root := clarg.New("dev").
		Description("dev tasks for the clarg repository")

	root.Command("check").
		Description("run all checks and fixes, in order of correctness").
		Action(func(ctx context.Context, _ *clarg.Invocation) error {
			return check(ctx)
		})

	root.Command("fmt").
		Description("format the codebase").
		Action(func(ctx context.Context, _ *clarg.Invocation) error {
			return run(ctx, "golangci-lint", "fmt")
		})

	root.Command("lint").
		Description("lint the codebase").
		Action(func(ctx context.Context, _ *clarg.Invocation) error {
			return run(ctx, "golangci-lint", "run")
		})

	root.Command("test").
		Option("-r, --race", "enable the race detector").
		Description("run the unit tests with coverage").
		Action(func(ctx context.Context, inv *clarg.Invocation) error {
			return test(ctx, inv.Values["race"] == true)
		})

	root.Command("coverage").
		Option("--html", "open the HTML report in a browser").
		Description("display the coverage report").
		Action(func(ctx context.Context, inv *clarg.Invocation) error {
			if inv.Values["html"] == true {
				return run(ctx, "go", "tool", "cover", "-html=coverage.out")
			}

			return run(ctx, "go", "tool", "cover", "-func=coverage.out")
		})

	root.Command("reorder-decls").
		Description("reorder declarations in Go files per conventions").
		Action(func(_ context.Context, _ *clarg.Invocation) error {
			return reorderDecls(true)
		})

	root.Command("reorder-check").
		Description("check declaration order without modifying files").
		Action(func(_ context.Context, _ *clarg.Invocation) error {
			return reorderDecls(false)
		})

	root.Command("redundant-tests").
		Description("find unit tests with no unique coverage").
		Action(func(_ context.Context, _ *clarg.Invocation) error {
			return findRedundantTests()
		})

	root.Command("mutate").
		Description("run the mutation tests").
		Action(func(ctx context.Context, _ *clarg.Invocation) error {
			return run(ctx, "go", "test", "-timeout=0", "-tags=mutation", "-v",
				"./dev/...", "-run=TestMutation")
		})

	root.Command("tidy").
		Description("tidy go.mod").
		Action(func(ctx context.Context, _ *clarg.Invocation) error {
			return run(ctx, "go", "mod", "tidy")
		})

	clarg.Run(root)
}

func check(ctx context.Context) error {
	fmt.Println("Checking...")

	steps := []func() error{
		func() error { return run(ctx, "golangci-lint", "fmt") },
		func() error { return run(ctx, "go", "mod", "tidy") },
		func() error { return test(ctx, true) },
		func() error { return reorderDecls(false) },
		func() error { return run(ctx, "golangci-lint", "run") },
	}

	for _, step := range steps {
		err := step()
		if err != nil {
			return err
		}
	}

	return nil
}

func findRedundantTests() error {
	config := testredundancy.Config{
		BaselineTests: []testredundancy.BaselineTestSpec{
			{Package: ".", TestPattern: "TestExecute"},
		},
		CoverageThreshold: 80.0,
		PackageToAnalyze:  "./...",
		CoveragePackages:  "./internal/...",
	}

	return testredundancy.Find(config)
}

// goFiles lists the repo's hand-written Go files.
func goFiles() ([]string, error) {
	matches, err := doublestar.FilepathGlob("**/*.go")
	if err != nil {
		return nil, fmt.Errorf("failed to find Go files: %w", err)
	}

	files := make([]string, 0, len(matches))

	for _, file := range matches {
		if strings.HasPrefix(file, "_examples/") || strings.Contains(file, "/.") {
			continue
		}

		files = append(files, file)
	}

	return files, nil
}

// reorderDecls reorders declarations in Go files. In check mode it reports
// the needed changes as diffs and fails instead of writing.
func reorderDecls(write bool) error {
	if write {
		fmt.Println("Reordering declarations...")
	} else {
		fmt.Println("Checking declaration order...")
	}

	files, err := goFiles()
	if err != nil {
		return err
	}

	changed := 0

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		reordered, err := reorder.Source(string(content))
		if err != nil {
			fmt.Printf("Warning: failed to reorder %s: %v\n", file, err)
			continue
		}

		if string(content) == reordered {
			continue
		}

		changed++

		if write {
			err = os.WriteFile(file, []byte(reordered), 0o600)
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", file, err)
			}

			fmt.Printf("  Reordered: %s\n", file)

			continue
		}

		diff := textdiff.Unified(file+" (current)", file+" (reordered)", string(content), reordered)
		if diff != "" {
			fmt.Printf("\n%s\n", diff)
		}
	}

	if !write && changed > 0 {
		return fmt.Errorf("%d file(s) need reordering", changed)
	}

	fmt.Printf("%d file(s) changed.\n", changed)

	return nil
}

func run(ctx context.Context, command string, args ...string) error {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

func test(ctx context.Context, race bool) error {
	fmt.Println("Running unit tests...")

	args := []string{"test", "-timeout=2m", "-count=1", "-coverprofile=coverage.out", "-cover", "./..."}
	if race {
		args = append(args, "-race")
	}

	return run(ctx, "go", args...)
}
