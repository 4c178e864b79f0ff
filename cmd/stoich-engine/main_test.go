// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

// execute runs the root command with args and returns stdout and stderr.
// Flags are reset first because the command tree is package state.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func exampleFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "methane.json")
	_, _, err := execute(t, "init", path)
	require.NoError(t, err)
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stoich-engine dev\n", out)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.yaml")

	out, _, err := execute(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote example project to "+path)
	assert.FileExists(t, path)

	_, _, err = execute(t, "init", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "init", "--force", path)
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	path := exampleFile(t, dir)

	out, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 reactant(s), 2 product(s), 1 reaction(s), 0 warning(s)")
}

func TestValidate_Warnings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "partial.json", `{
    "reactants": [{"name": "A", "molar_weight": 2}],
    "products": [{"name": "B", "molar_weight": 2}],
    "reactions": [{"name": "r", "reactants": ["A", "X"], "products": ["B"]}]
}`)

	out, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, `warning: reaction "r": component "X" is not defined`)
	assert.Contains(t, out, "warning: total reactant mass flow must be greater than 0")
	assert.Contains(t, out, "2 warning(s)")
}

func TestValidate_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"reactants": [{"name": "A", "molar_weight": -1}]}`)

	_, _, err := execute(t, "validate", bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, _, err = execute(t, "validate", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSolve_SavesAndListsRuns(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	path := exampleFile(t, dir)

	out, _, err := execute(t, "solve", "--data-dir", dataDir, "--flows", path)
	require.NoError(t, err)
	assert.Contains(t, out, "STOICHIOMETRIC COEFFICIENTS:")
	assert.Contains(t, out, "0.50000 CH4 + 1.00000 O2 -> 0.50000 CO2 + 1.00000 H2O")
	assert.Contains(t, out, "method: algebraic")
	assert.Contains(t, out, "REACTANT FLOWS (total 1000.00 kg/h):")
	assert.Contains(t, out, "PRODUCT FLOWS:")

	m := regexp.MustCompile(`Saved run (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2)
	id := m[1]

	out, _, err = execute(t, "runs", "list", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "algebraic=1")
	assert.Contains(t, out, "1 run(s)")

	out, _, err = execute(t, "runs", "show", "--data-dir", dataDir, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Run:     "+id)
	assert.Contains(t, out, "0.50000 CH4 + 1.00000 O2 -> 0.50000 CO2 + 1.00000 H2O")

	out, _, err = execute(t, "runs", "export", "--data-dir", dataDir, "--format", "json")
	require.NoError(t, err)
	exported := filepath.Join(dataDir, "export.json")
	assert.Contains(t, out, "Exported to "+exported)

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	var runs []types.Run
	require.NoError(t, json.Unmarshal(data, &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
}

func TestSolve_JSONWithoutSaving(t *testing.T) {
	dir := t.TempDir()
	path := exampleFile(t, dir)

	out, _, err := execute(t, "solve", "--no-save", "--json", path, path)
	require.NoError(t, err)

	var runs []types.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Empty(t, run.ID)
		assert.True(t, run.Result.Success)
		assert.InDeltaSlice(t, []float64{-0.5, -1, 0.5, 1}, run.Result.Column(0), 1e-9)
	}
}

func TestSolve_FailedProject(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.json", `{
    "total_reactant_mass": 10,
    "reactants": [{"name": "A", "molar_weight": 2}],
    "products": [{"name": "B", "molar_weight": 2}]
}`)

	out, _, err := execute(t, "solve", "--no-save", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "SOLUTION FAILED")
	assert.Contains(t, out, "Error: no reactions defined")
}

func TestSolve_MetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	path := exampleFile(t, dir)
	metricsFile := filepath.Join(dir, "stoich.prom")

	_, _, err := execute(t, "solve", "--no-save", "--metrics-textfile", metricsFile, path)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `stoich_solves_total{outcome="success"} 1`)
	assert.Contains(t, string(data), `stoich_reactions_total{method="algebraic"} 1`)
}

func TestSolve_MissingFile(t *testing.T) {
	_, _, err := execute(t, "solve", "--no-save", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFlows(t *testing.T) {
	dir := t.TempDir()
	path := exampleFile(t, dir)

	out, _, err := execute(t, "flows", path)
	require.NoError(t, err)
	assert.Contains(t, out, "REACTANT FLOWS (total 1000.00 kg/h):")
	assert.Contains(t, out, "Total product mass: 1000.00 kg/h")

	out, _, err = execute(t, "flows", "--json", path)
	require.NoError(t, err)
	var doc struct {
		Reactants []types.Component    `json:"reactants"`
		Products  types.ProductBalance `json:"products"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.InDelta(t, 333.3, doc.Reactants[0].MassFlow, 1e-9)
	assert.Len(t, doc.Products.Flows, 2)
}

func TestFlows_NoMass(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nomass.yaml", "reactants:\n  - name: A\n    molar_weight: 2\n")

	_, _, err := execute(t, "flows", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRuns_EmptyHistory(t *testing.T) {
	dataDir := t.TempDir()

	out, _, err := execute(t, "runs", "list", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)

	out, _, err = execute(t, "runs", "list", "--json", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, _, err = execute(t, "runs", "show", "--data-dir", dataDir, "missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, _, err = execute(t, "runs", "export", "--data-dir", dataDir, "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitCommandError},
		{"failure", NewExitError(ExitFailure, "failed"), ExitFailure},
		{"wrapped", fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", errors.New("x"))), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestFormatMethods(t *testing.T) {
	assert.Equal(t, "algebraic=2 optimization=1 skipped=3",
		formatMethods(map[string]int{"skipped": 3, "algebraic": 2, "optimization": 1}))
	assert.Equal(t, "", formatMethods(nil))
}
