// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/stoich-engine/internal/engine"
	"github.com/pdiddy/stoich-engine/internal/logging"
	"github.com/pdiddy/stoich-engine/internal/metrics"
	"github.com/pdiddy/stoich-engine/internal/project"
	"github.com/pdiddy/stoich-engine/internal/report"
	"github.com/pdiddy/stoich-engine/internal/store"
	"github.com/pdiddy/stoich-engine/pkg/types"
)

var solveCmd = &cobra.Command{
	Use:   "solve <project-file>...",
	Short: "Solve the stoichiometric coefficients of one or more projects",
	Long: `Solve loads each project file, validates it, and balances every reaction.
Reactions are tried with an exhaustive small-integer search first; reactions
without an acceptable integer balance fall back to a bounded continuous
optimization. Coefficients are normalized per reaction so the largest
magnitude is 1.

Several project files are solved concurrently (see --workers). Each run is
saved to the history database unless --no-save is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSolve,
}

func runSolve(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	showFlows, _ := cmd.Flags().GetBool("flows")
	noSave, _ := cmd.Flags().GetBool("no-save")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	ctx := cmd.Context()

	jobs := make([]engine.Job, 0, len(args))
	for _, path := range args {
		p, err := project.Load(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading project", err)
		}
		for _, ref := range project.CheckReferences(p) {
			logger.Warn(ctx, "reaction participant ignored",
				logging.String("project", path), logging.String("reference", ref.String()))
		}
		jobs = append(jobs, engine.Job{Name: path, Project: p})
	}

	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return WrapExitError(ExitCommandError, "registering metrics", err)
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMetrics(collector),
		engine.WithWorkers(cfg.Engine.Workers),
	}
	if !noSave {
		s, err := store.NewStore(cfg.Store)
		if err != nil {
			return WrapExitError(ExitCommandError, "opening run history", err)
		}
		defer s.Close()
		opts = append(opts, engine.WithStore(s))
	}

	runs, err := engine.New(cfg.Solver, opts...).RunAll(ctx, jobs)
	if err != nil {
		return WrapExitError(ExitCommandError, "running projects", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return WrapExitError(ExitCommandError, "exporting metrics", err)
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := report.WriteJSON(out, runs); err != nil {
			return err
		}
	} else if err := writeRuns(out, runs, showFlows); err != nil {
		return err
	}

	failed := 0
	for _, run := range runs {
		if !run.Result.Success {
			failed++
		}
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d project(s) failed to solve", failed, len(runs)))
	}
	return nil
}

func writeRuns(w io.Writer, runs []types.Run, showFlows bool) error {
	for i, run := range runs {
		if len(runs) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "## %s\n", run.Name)
		}
		if err := report.WriteResult(w, run.Result); err != nil {
			return err
		}
		if showFlows && run.Result.Success {
			fmt.Fprintln(w)
			if err := report.WriteFlows(w, run.Project.TotalReactantMass, run.Project.Reactants, run.Products); err != nil {
				return err
			}
		}
		if run.ID != "" {
			fmt.Fprintf(w, "\nSaved run %s\n", run.ID)
		}
	}
	return nil
}

func init() {
	solveCmd.Flags().Bool("json", false, "output runs as JSON")
	solveCmd.Flags().Bool("flows", false, "include reactant and product flow tables")
	solveCmd.Flags().Bool("no-save", false, "do not record the runs in the history database")
	solveCmd.Flags().Int("workers", 0, "projects solved at once (default from engine.workers)")

	bindFlag("engine.workers", solveCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(solveCmd)
}
