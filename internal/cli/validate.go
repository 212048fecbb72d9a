package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pgcheck/internal/compiler"
	"github.com/roach88/pgcheck/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Checks int                        `json:"checks"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate batch specs without analyzing them",
		Long: `Validate the CUE batch specs in a directory.

Loads the specs, compiles every table column and domain check, and runs
the schema checks (empty clauses, missing CHECK prefix, duplicate columns)
without parsing any SQL. Faster than batch for development feedback.

Example:
  pgcheck validate ./specs`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := LoadChecks(specsDir)
	var loadErr *LoadError
	if errors.As(err, &loadErr) && loadErr.Field != "" {
		// The specs were read but a check is malformed
		return outputValidationErrors(formatter, 0, []compiler.ValidationError{{
			Field:   loadErr.Field,
			Message: loadErr.Message,
			Code:    loadErr.Code,
		}})
	}
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsDir)

	validationErrors := validateChecks(loaded.Checks, formatter)
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, len(loaded.Checks), validationErrors)
	}

	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Checks: len(loaded.Checks)})
	}
	fmt.Fprintf(formatter.Writer, "✓ All specs valid (%d check(s))\n", len(loaded.Checks))
	return nil
}

func validateChecks(checks []ir.ColumnCheck, formatter *OutputFormatter) []compiler.ValidationError {
	for _, cc := range checks {
		formatter.VerboseLog("Validating %s %s.%s", cc.Kind, cc.Relation, cc.Column)
	}
	return compiler.Validate(checks)
}

// outputLoadError reports a spec loading failure. Load failures are
// command-level errors (exit code 2).
func outputLoadError(formatter *OutputFormatter, err error) error {
	code, message := ErrCodeGeneric, err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
		if loadErr.Field != "" {
			message = loadErr.Field + ": " + message
		}
		if line := loadErr.Line(); line > 0 {
			message = fmt.Sprintf("line %d: %s", line, message)
		}
	}
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, checks int, errs []compiler.ValidationError) error {
	// Validation failures = exit code 1
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.IsJSON() {
		result := ValidationResult{Valid: false, Checks: checks, Errors: errs}
		if err := formatter.Failure(result, errs[0].Code, errs[0].Message); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
	}
	return exitErr
}
