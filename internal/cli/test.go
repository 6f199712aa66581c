package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/synthscroll/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
	Golden string // golden file directory
	Update bool   // regenerate golden files
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario files",
		Long: `Run YAML scenarios against a wired driver and deck.

Each scenario's step expectations and assertions are checked. With
--golden the trace is also compared with <golden-dir>/<name>.golden;
--update rewrites those files instead.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  synthscroll test ./scenarios
  synthscroll test ./scenarios --filter "click_*"
  synthscroll test ./scenarios --golden ./golden --update
  synthscroll test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden trace directory")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files (needs --golden)")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return f.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", dir), nil)
	}
	if opts.Update && opts.Golden == "" {
		return f.fail(ExitCommandError, ErrCodeGeneric, "--update needs --golden", nil)
	}

	suite, err := harness.RunSuite(dir, opts.Filter)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeScanError, "failed to find scenarios", err)
	}

	failures := make(map[string][]string)
	for _, fl := range suite.Failures {
		failures[fl.ScenarioPath] = append(failures[fl.ScenarioPath], fl.Error)
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, suite.Total), Total: suite.Total}
	for _, nr := range suite.Results {
		sr := ScenarioResult{Name: nr.Name, Errors: failures[nr.Path]}
		if len(sr.Errors) == 0 && opts.Golden != "" {
			if msg := checkGolden(opts, nr); msg != "" {
				sr.Errors = append(sr.Errors, msg)
			}
		}
		sr.Pass = len(sr.Errors) == 0
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, sr)
	}

	if f.JSON() {
		if result.Failed > 0 {
			if err := f.Failure(ErrCodeScenarioFailed, fmt.Sprintf("%d scenario(s) failed", result.Failed), result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
		}
		return f.Success(result)
	}

	return outputTestText(f, result)
}

// checkGolden compares or rewrites the golden file of one scenario and
// returns a failure message, or "".
func checkGolden(opts *TestOptions, nr harness.NamedResult) string {
	data, err := harness.Snapshot(nr.Name, nr.Result)
	if err != nil {
		return fmt.Sprintf("snapshot: %v", err)
	}
	path := filepath.Join(opts.Golden, nr.Name+".golden")

	if opts.Update {
		if err := os.MkdirAll(opts.Golden, 0o755); err != nil {
			return fmt.Sprintf("%s: %v", ErrCodeWriteFailed, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Sprintf("%s: %v", ErrCodeWriteFailed, err)
		}
		return ""
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("%s: golden file: %v", ErrCodeGoldenMismatch, err)
	}
	if !bytes.Equal(want, data) {
		return fmt.Sprintf("%s: trace differs from %s", ErrCodeGoldenMismatch, path)
	}
	return ""
}

func outputTestText(f *OutputFormatter, result TestResult) error {
	if result.Total == 0 {
		f.Printf("No scenarios found.\n")
		return nil
	}

	for _, s := range result.Scenarios {
		if s.Pass {
			f.Printf("✓ %s\n", s.Name)
			continue
		}
		f.Printf("✗ %s\n", s.Name)
		for _, e := range s.Errors {
			f.Printf("  %s\n", e)
		}
	}
	f.Printf("\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}
