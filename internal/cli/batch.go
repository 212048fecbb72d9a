package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/roach88/pgcheck/internal/engine"
	"github.com/roach88/pgcheck/internal/ir"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Database    string
	Concurrency int
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <specs-dir>",
		Short: "Analyze every check declared in a specs directory",
		Long: `Analyze every table column and domain check declared in the CUE
specs of a directory and print a markdown report.

With --db, analyses are memoized in a SQLite file and the run summary is
recorded; unchanged checks are served from the cache on the next run.

Exit codes:
  0 - Every check reduced or was reported unreduced
  1 - One or more checks failed to parse or canonicalize
  2 - Command error (invalid paths, database errors, etc.)

Examples:
  pgcheck batch ./specs
  pgcheck batch ./specs --db ./pgcheck.db --concurrency 8
  pgcheck batch ./specs --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite memo cache (optional)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", engine.DefaultConcurrency, "number of checks analyzed in parallel")

	return cmd
}

func runBatch(opts *BatchOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := LoadChecks(specsDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d check(s) from %d CUE file(s)", len(loaded.Checks), loaded.FileCount)

	eng, closeStore, err := openEngine(opts.Database, engine.WithConcurrency(opts.Concurrency))
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer closeStore()

	// Stop scheduling on Ctrl-C; in-flight checks finish
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := eng.AnalyzeBatch(ctx, loaded.Checks)
	if err != nil {
		code := ErrCodeStore
		if ctx.Err() != nil {
			code = ErrCodeGeneric
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "batch failed", err)
	}

	return outputBatch(formatter, report)
}

func outputBatch(formatter *OutputFormatter, report *engine.Report) error {
	var exitErr error
	if report.Summary.Failed > 0 {
		exitErr = NewExitError(ExitFailure, fmt.Sprintf("%d of %d check(s) failed", report.Summary.Failed, report.Summary.Total))
	}

	if formatter.IsJSON() {
		if exitErr != nil {
			if err := formatter.Failure(report, ErrCodeAnalysis, exitErr.Error()); err != nil {
				return err
			}
			return exitErr
		}
		return formatter.Success(report)
	}

	fmt.Fprint(formatter.Writer, formatReport(report.Results))
	fmt.Fprintln(formatter.Writer)
	printSummary(formatter.Writer, report)
	return exitErr
}

// formatReport renders batch results as a markdown table.
func formatReport(results []ir.Analysis) string {
	if len(results) == 0 {
		return "_No checks_\n"
	}

	rows := make([][]string, 0, len(results))
	for _, a := range results {
		rows = append(rows, []string{
			string(a.Kind),
			a.Relation,
			a.Column,
			string(a.Outcome),
			resultCell(a),
			fmt.Sprintf("%t", a.Cached),
		})
	}
	return renderMarkdown([]string{"kind", "relation", "column", "outcome", "result", "cached"}, rows)
}

func renderMarkdown(headers []string, rows [][]string) string {
	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	out := &strings.Builder{}
	table := tablewriter.NewTable(out,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	return out.String()
}

func resultCell(a ir.Analysis) string {
	if a.Outcome == ir.OutcomeReduced {
		return a.Constraints.String()
	}
	return a.Diagnostic
}

func printSummary(w io.Writer, report *engine.Report) {
	s := report.Summary
	failed := fmt.Sprintf("%d failed", s.Failed)
	if s.Failed > 0 {
		failed = color.RedString("%d failed", s.Failed)
	}
	fmt.Fprintf(w, "%d check(s): %s, %s, %s, %d cached (run %s)\n",
		s.Total,
		color.GreenString("%d reduced", s.Reduced),
		color.YellowString("%d unreduced", s.Unreduced),
		failed,
		s.Cached,
		report.RunID,
	)
}

