package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pgcheck/internal/canon"
	"github.com/roach88/pgcheck/internal/ir"
	"github.com/roach88/pgcheck/internal/pgparse"
	"github.com/roach88/pgcheck/internal/simplify"
)

// CanonOptions holds flags for the canon command.
type CanonOptions struct {
	*RootOptions
	Simplify bool
}

// CanonResult is the JSON payload of the canon command.
type CanonResult struct {
	Text string          `json:"text"`
	Tree json.RawMessage `json:"tree"`
	Hash string          `json:"hash"`
}

// NewCanonCommand creates the canon command.
func NewCanonCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CanonOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "canon <check>",
		Short: "Print the canonical tree of a CHECK clause",
		Long: `Parse a CHECK clause and print its canonical tree.

Useful for seeing why a clause does not reduce. With --simplify the
tree is printed after length(column) calls are folded.

Examples:
  pgcheck canon "CHECK ((length(name) > 0))"
  pgcheck canon "CHECK ((length(name) > 0))" --simplify
  pgcheck canon "CHECK (((email)::text ~* '^.+@.+$'::text))" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanon(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Simplify, "simplify", false, "apply the simplifier before printing")

	return cmd
}

func runCanon(opts *CanonOptions, check string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	raw, err := pgparse.New().ParseCheck(cmd.Context(), check)
	if err != nil {
		_ = formatter.Error(ErrCodeAnalysis, err.Error(), nil)
		return WrapExitError(ExitFailure, "parse failed", err)
	}

	node, err := canon.Canonicalize(raw)
	if err != nil {
		_ = formatter.Error(ErrCodeAnalysis, err.Error(), nil)
		return WrapExitError(ExitFailure, "canonicalization failed", err)
	}
	if opts.Simplify {
		node = simplify.Simplify(node)
	}

	result, err := canonResult(node)
	if err != nil {
		return WrapExitError(ExitCommandError, "encoding tree", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.Text)
	formatter.VerboseLog("tree: %s", result.Tree)
	formatter.VerboseLog("hash: %s", result.Hash)
	return nil
}

func canonResult(n ir.Node) (CanonResult, error) {
	tree, err := ir.MarshalNode(n)
	if err != nil {
		return CanonResult{}, err
	}
	hash, err := ir.TreeHash(n)
	if err != nil {
		return CanonResult{}, err
	}
	return CanonResult{Text: n.String(), Tree: tree, Hash: hash}, nil
}
