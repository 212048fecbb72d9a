package cli

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/pgcheck/internal/ir"
	"github.com/roach88/pgcheck/internal/store"
)

// CacheOptions holds flags for the cache command.
type CacheOptions struct {
	*RootOptions
	Database string
	Column   string
	Outcome  string
	Runs     bool
}

// CacheResult is the JSON payload of the cache command.
type CacheResult struct {
	Analyses []ir.Analysis `json:"analyses"`
	Runs     []store.Run   `json:"runs,omitempty"`
}

var cacheOutcomes = []string{"", string(ir.OutcomeReduced), string(ir.OutcomeUnreduced)}

// NewCacheCommand creates the cache command.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "List memoized analyses and batch runs",
		Long: `List the analyses memoized in a SQLite cache written by analyze or batch.

Rows are listed in the order they were written. Rows from another engine
version are listed but never served as cache hits.

Exit codes:
  0 - Listed
  2 - Command error (missing or unreadable database)

Examples:
  pgcheck cache --db ./pgcheck.db
  pgcheck cache --db ./pgcheck.db --column bio --outcome unreduced
  pgcheck cache --db ./pgcheck.db --runs --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCache(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite memo cache (required)")
	cmd.Flags().StringVarP(&opts.Column, "column", "c", "", "only list analyses of this column")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only list this outcome (reduced|unreduced)")
	cmd.Flags().BoolVar(&opts.Runs, "runs", false, "also list batch runs")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runCache(opts *CacheOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if !slices.Contains(cacheOutcomes, opts.Outcome) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid outcome %q: must be reduced or unreduced", opts.Outcome))
	}

	if _, err := os.Stat(opts.Database); err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	result := CacheResult{}
	result.Analyses, err = st.ListAnalyses(ctx, store.AnalysisFilter{
		Column:  opts.Column,
		Outcome: ir.Outcome(opts.Outcome),
	})
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing analyses", err)
	}
	if opts.Runs {
		if result.Runs, err = st.ListRuns(ctx); err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "listing runs", err)
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprint(formatter.Writer, formatCache(result.Analyses))
	if opts.Runs {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprint(formatter.Writer, formatRuns(result.Runs))
	}
	return nil
}

func formatCache(analyses []ir.Analysis) string {
	if len(analyses) == 0 {
		return "_No cached analyses_\n"
	}
	rows := make([][]string, 0, len(analyses))
	for _, a := range analyses {
		rows = append(rows, []string{a.Column, string(a.Outcome), resultCell(a), a.Check})
	}
	return renderMarkdown([]string{"column", "outcome", "result", "check"}, rows)
}

func formatRuns(runs []store.Run) string {
	if len(runs) == 0 {
		return "_No runs_\n"
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			strconv.FormatInt(r.Seq, 10),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Reduced),
			strconv.Itoa(r.Unreduced),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Cached),
		})
	}
	return renderMarkdown([]string{"run", "seq", "total", "reduced", "unreduced", "failed", "cached"}, rows)
}
