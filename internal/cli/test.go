package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pgcheck/internal/harness"
	"github.com/roach88/pgcheck/internal/pgparse"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Cases  int      `json:"cases"`
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
		Short: "Run conformance scenarios",
		Long: `Run YAML conformance scenarios through the conversion pipeline.

Each case gives a CHECK clause (or a raw parse tree) and the expected
constraint record, unreduced outcome or structural error. When a golden
file exists under <scenarios-dir>/golden the full result must also match it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  pgcheck test ./scenarios
  pgcheck test ./scenarios --filter "length-*"
  pgcheck test ./scenarios --update
  pgcheck test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(scenariosDir); errors.Is(err, fs.ErrNotExist) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := harness.FindScenarios(scenariosDir, opts.Filter)
	if err != nil {
		_ = formatter.Error(ErrCodeScanError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}
	if len(scenarioFiles) == 0 {
		if formatter.IsJSON() {
			return formatter.Success(result)
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	runner := &scenarioRunner{opts: opts, parser: pgparse.New(), w: formatter.Writer, text: !formatter.IsJSON()}
	for _, file := range scenarioFiles {
		formatter.VerboseLog("Running %s", file)
		sr := runner.run(file)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	var exitErr error
	if result.Failed > 0 {
		exitErr = NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", result.Failed, result.Total))
	}

	if formatter.IsJSON() {
		if exitErr != nil {
			if err := formatter.Failure(result, ErrCodeScenario, exitErr.Error()); err != nil {
				return err
			}
			return exitErr
		}
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	return exitErr
}

// scenarioRunner runs scenario files and reports each one as it finishes.
type scenarioRunner struct {
	opts   *TestOptions
	parser *pgparse.Parser
	w      io.Writer
	text   bool
}

func (r *scenarioRunner) run(file string) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return r.fail(filepath.Base(file), 0, fmt.Sprintf("failed to load scenario: %v", err))
	}

	result, err := harness.Run(scenario, r.parser)
	if err != nil {
		return r.fail(scenario.Name, len(scenario.Cases), fmt.Sprintf("execution failed: %v", err))
	}
	if !result.Pass {
		return r.fail(scenario.Name, len(scenario.Cases), result.Errors...)
	}

	snapshot, err := harness.MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return r.fail(scenario.Name, len(scenario.Cases), fmt.Sprintf("failed to marshal snapshot: %v", err))
	}

	goldenPath := goldenFilePath(file)
	if r.opts.Update {
		if err := writeGolden(goldenPath, snapshot); err != nil {
			return r.fail(scenario.Name, len(scenario.Cases), err.Error())
		}
		return r.pass(scenario.Name, len(scenario.Cases), " (golden updated)")
	}

	golden, err := os.ReadFile(goldenPath)
	if errors.Is(err, fs.ErrNotExist) {
		// No golden file - expectation-based validation only
		return r.pass(scenario.Name, len(scenario.Cases), "")
	}
	if err != nil {
		return r.fail(scenario.Name, len(scenario.Cases), fmt.Sprintf("failed to read golden file: %v", err))
	}
	if !bytes.Equal(golden, snapshot) {
		return r.fail(scenario.Name, len(scenario.Cases), "golden file mismatch (run with --update to regenerate)")
	}
	return r.pass(scenario.Name, len(scenario.Cases), "")
}

func (r *scenarioRunner) pass(name string, cases int, note string) ScenarioResult {
	if r.text {
		fmt.Fprintf(r.w, "✓ %s (%d case(s))%s\n", name, cases, note)
	}
	return ScenarioResult{Name: name, Pass: true, Cases: cases}
}

func (r *scenarioRunner) fail(name string, cases int, errs ...string) ScenarioResult {
	if r.text {
		fmt.Fprintf(r.w, "✗ %s\n", name)
		for _, e := range errs {
			fmt.Fprintf(r.w, "  %s\n", e)
		}
	}
	return ScenarioResult{Name: name, Pass: false, Cases: cases, Errors: errs}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// writeGolden writes a snapshot, creating the golden directory if needed.
func writeGolden(path string, snapshot []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, snapshot, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
