package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/herr"
	"github.com/homotopy-io/homotopy-go/internal/persist"
)

// Exit codes for the verify subcommand (§6): 0 on success, otherwise the code
// of the first herr sentinel that matches in exitCodeFor's order
// (UnknownGenerator, IllTyped, Ambiguous, NotInvertible, Dimension,
// Incompatible, Invalid); any other error gives exitIOError.
const (
	exitOK = iota
	exitInvalid
	exitIncompatible
	exitDimension
	exitIllTyped
	exitAmbiguous
	exitNotInvertible
	exitUnknownGenerator
	exitIOError
)

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, herr.ErrUnknownGenerator):
		return exitUnknownGenerator
	case errors.Is(err, herr.ErrIllTyped):
		return exitIllTyped
	case errors.Is(err, herr.ErrAmbiguous):
		return exitAmbiguous
	case errors.Is(err, herr.ErrNotInvertible):
		return exitNotInvertible
	case errors.Is(err, herr.ErrDimension):
		return exitDimension
	case errors.Is(err, herr.ErrIncompatible):
		return exitIncompatible
	case errors.Is(err, herr.ErrInvalid):
		return exitInvalid
	default:
		return exitIOError
	}
}

func newVerifyCmd() *cobra.Command {
	var (
		in       string
		modeFlag string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Load a persisted diagram and check it is well-formed",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseMode(modeFlag)
			if err != nil {
				return err
			}
			runID := newRunID()
			logf("run %s: verifying %s (mode=%s)", runID, in, modeFlag)

			f, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("run %s: open %s: %w", runID, in, err)
			}
			defer f.Close()

			d, err := persist.Read(f)
			if err != nil {
				return fmt.Errorf("run %s: decode %s: %w", runID, in, err)
			}

			if err := diagram.CheckWellFormed(d, mode); err != nil {
				logf("run %s: rejected: %v", runID, err)
				return err
			}
			logf("run %s: accepted", runID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: well-formed\n", in)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "path to a persisted diagram blob")
	cmd.Flags().StringVar(&modeFlag, "mode", "deep", "check depth: shallow or deep")
	cmd.MarkFlagRequired("in")
	return cmd
}

func parseMode(s string) (diagram.Mode, error) {
	switch s {
	case "shallow":
		return diagram.Shallow, nil
	case "deep":
		return diagram.Deep, nil
	default:
		return 0, fmt.Errorf("unknown mode %q, want shallow or deep: %w", s, herr.ErrInvalid)
	}
}
