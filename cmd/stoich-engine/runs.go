// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/stoich-engine/internal/report"
	"github.com/pdiddy/stoich-engine/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the history of solved projects",
	Long: `Runs reads the SQLite run history kept in the data directory. Use
subcommands to list recent runs, show one run in full, or export the
history.`,
}

// --- list subcommand ---

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

func runRunsList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if runs == nil {
			runs = []store.RunSummary{}
		}
		return report.WriteJSON(out, runs)
	}
	writeRunTable(out, runs)
	return nil
}

func writeRunTable(w io.Writer, runs []store.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-19s  %-6s  %-9s  %-10s  %s\n",
		"ID", "Created", "Status", "Reactions", "Max Error", "Name")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Fprintf(w, "%-36s  %-19s  %-6s  %-9d  %-10.6f  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), status,
			r.Reactions, r.MaxMassError, r.Name)
		if methods := formatMethods(r.Methods); methods != "" {
			fmt.Fprintf(w, "%-36s  %s\n", "", methods)
		}
	}
	fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
}

// formatMethods renders method counts as "algebraic=2 skipped=1" in name
// order.
func formatMethods(methods map[string]int) string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, methods[name])
	}
	return strings.Join(parts, " ")
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run with its coefficients and flows",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return WrapExitError(ExitFailure, "showing run", err)
		}
		return WrapExitError(ExitCommandError, "showing run", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return report.WriteJSON(out, run)
	}

	fmt.Fprintf(out, "Run:     %s\n", run.ID)
	fmt.Fprintf(out, "Project: %s\n", run.Name)
	fmt.Fprintf(out, "Created: %s\n\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if err := report.WriteResult(out, run.Result); err != nil {
		return err
	}
	if run.Result.Success {
		fmt.Fprintln(out)
		return report.WriteFlows(out, run.Project.TotalReactantMass, run.Project.Reactants, run.Products)
	}
	return nil
}

// --- export subcommand ---

var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the run history to YAML or JSON",
	Long: `Export writes stored runs, newest first, to export.yaml or export.json
in the data directory.`,
	Args: cobra.NoArgs,
	RunE: runRunsExport,
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(cmd.Context(), limit)
	case "json":
		path, err = s.ExportJSON(cmd.Context(), limit)
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unsupported format %q: use yaml or json", format))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "exporting runs", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening run history", err)
	}
	return s, nil
}

func init() {
	runsListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = store.max_results)")
	runsListCmd.Flags().Bool("json", false, "output runs as JSON")

	runsShowCmd.Flags().Bool("json", false, "output the run as JSON")

	runsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	runsExportCmd.Flags().Int("limit", 0, "maximum runs to export (0 = all)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)

	rootCmd.AddCommand(runsCmd)
}
