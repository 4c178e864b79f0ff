// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/pdiddy/stoich-engine/internal/project"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project-file>",
	Short: "Check a project file without solving it",
	Long: `Validate checks a project file against the project schema (non-empty
names, positive molar weights, mole fractions between 0 and 1) and reports
reaction participants that are not declared as components. Such names are
ignored by the solver, so they are reported as warnings. Missing reactions,
reactants, products, or reactant mass flow are reported the same way, since
solve records them as failed runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	p, err := project.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return WrapExitError(ExitCommandError, "loading project", err)
		}
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	warnings := 0
	for _, ref := range project.CheckReferences(p) {
		fmt.Fprintf(out, "warning: %s\n", ref)
		warnings++
	}
	if err := project.Preconditions(p); err != nil {
		fmt.Fprintf(out, "warning: %v\n", err)
		warnings++
	}

	fmt.Fprintf(out, "%s: %d reactant(s), %d product(s), %d reaction(s), %d warning(s)\n",
		path, len(p.Reactants), len(p.Products), len(p.Reactions), warnings)
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
