// Package cmd implements the homotopy-check batch CLI (§6): a thin driver
// around internal/persist and internal/diagram's well-formedness check, kept
// entirely outside the core engine per §1. It does not run internal/typecheck.
package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var verbose bool

func binName() string {
	if len(os.Args) == 0 {
		return "homotopy-check"
	}
	return os.Args[0]
}

func newRunID() string {
	return uuid.New().String()
}

// Execute runs the root command, returning the process exit code (§6).
func Execute() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "homotopy-check",
		Short:         "Verify persisted n-diagrams against the engine's well-formedness rules",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: fmt.Sprintf(`  %s verify --in diagram.blob
  %s verify --in diagram.blob --mode shallow`, binName(), binName()),
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each check's run id and outcome")
	root.AddCommand(newVerifyCmd())
	return root
}

func logf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
