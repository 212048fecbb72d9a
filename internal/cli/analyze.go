package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/pgcheck/internal/engine"
	"github.com/roach88/pgcheck/internal/ir"
	"github.com/roach88/pgcheck/internal/pgparse"
	"github.com/roach88/pgcheck/internal/store"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Column   string
	Database string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <check>",
		Short: "Convert one CHECK clause into a constraint record",
		Long: `Convert one CHECK clause into a declarative constraint record.

The clause is parsed with the Postgres parser and reduced against the
column named by --column. A clause with no declarative equivalent is
reported as unreduced, which is not an error.

Exit codes:
  0 - Reduced or unreduced
  1 - Parse or structural error
  2 - Command error (database errors, etc.)

Examples:
  pgcheck analyze "CHECK (length(bio) < 10000)" --column bio
  pgcheck analyze "CHECK ((VALUE >= 0))" -c value --format json
  pgcheck analyze "CHECK (length(bio) < 10000)" -c bio --db ./pgcheck.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Column, "column", "c", "", "column the check constrains, folded to lower case unless double-quoted (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite memo cache (optional)")
	_ = cmd.MarkFlagRequired("column")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, check string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	eng, closeStore, err := openEngine(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer closeStore()

	cc := ir.ColumnCheck{Kind: ir.KindTable, Column: foldIdentifier(opts.Column), Check: check}
	a, err := eng.Analyze(cmd.Context(), cc)
	if engine.IsStoreError(err) {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "memo cache failed", err)
	}

	if formatter.IsJSON() {
		if err != nil {
			if ferr := formatter.Failure(a, ErrCodeAnalysis, err.Error()); ferr != nil {
				return ferr
			}
		} else if ferr := formatter.Success(a); ferr != nil {
			return ferr
		}
	} else {
		printAnalysis(formatter, a)
	}

	if err != nil {
		return WrapExitError(ExitFailure, "analysis failed", err)
	}
	return nil
}

// foldIdentifier applies Postgres identifier rules to a column name typed on
// the command line: unquoted names fold to lower case, a double-quoted name
// keeps its case with the quotes removed.
func foldIdentifier(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) {
		return strings.ReplaceAll(name[1:len(name)-1], `""`, `"`)
	}
	return strings.ToLower(name)
}

// openEngine builds an engine over the Postgres parser, memoizing into the
// SQLite file at dbPath when it is set. The returned func closes the store.
func openEngine(dbPath string, opts ...engine.EngineOption) (*engine.Engine, func(), error) {
	opts = append(opts, engine.WithLogger(slog.Default()))
	if dbPath == "" {
		return engine.New(pgparse.New(), opts...), func() {}, nil
	}

	slog.Debug("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := st.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}
	opts = append(opts, engine.WithStore(st))
	return engine.New(pgparse.New(), opts...), closeStore, nil
}

// printAnalysis renders one analysis as text.
func printAnalysis(f *OutputFormatter, a ir.Analysis) {
	cached := ""
	if a.Cached {
		cached = " (cached)"
	}
	switch a.Outcome {
	case ir.OutcomeReduced:
		fmt.Fprintf(f.Writer, "%s %s%s\n", outcomeLabel(a.Outcome), a.Constraints, cached)
	default:
		fmt.Fprintf(f.Writer, "%s %s%s\n", outcomeLabel(a.Outcome), a.Diagnostic, cached)
	}
}

// outcomeLabel colors an outcome for terminals. color disables itself when
// stdout is not a TTY.
func outcomeLabel(o ir.Outcome) string {
	switch o {
	case ir.OutcomeReduced:
		return color.GreenString("✓ reduced")
	case ir.OutcomeUnreduced:
		return color.YellowString("~ unreduced")
	default:
		return color.RedString("✗ error")
	}
}
