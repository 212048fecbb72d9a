// Command pgcheck converts Postgres CHECK clauses into declarative
// validation records.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/pgcheck/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		os.Exit(cli.ExitSuccess)
	}

	// ExitErrors were already rendered by the command's formatter
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}

	// Flag and argument errors
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(cli.ExitCommandError)
}
