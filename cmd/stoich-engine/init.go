// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/stoich-engine/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write an example project file",
	Long: `Init writes a methane combustion project to path as a starting point.
The format follows the extension: .yaml or .yml for YAML, JSON otherwise.
An existing file is left alone unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s already exists (use --force to overwrite)", path))
	}
	if err := project.Save(path, project.Example()); err != nil {
		return WrapExitError(ExitCommandError, "writing project", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote example project to %s\n", path)
	return nil
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	rootCmd.AddCommand(initCmd)
}
