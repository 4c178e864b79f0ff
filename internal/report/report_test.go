// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sampleResult() types.Result {
	return types.Result{
		Success: true,
		Coefficients: [][]float64{
			{-1, 0, -0.25},
			{-1, 0, 0},
			{1, 0, 1},
		},
		MassBalanceErrors: []float64{0, 0, 0.0123456},
		ComponentNames:    []string{"A", "B", "C"},
		Outcomes: []types.ReactionOutcome{
			{Name: "join", Method: types.MethodAlgebraic, Participants: 3, Converged: true},
			{Name: "ghost", Method: types.MethodSkipped, Converged: true},
			{Name: "loose", Method: types.MethodOptimization, Participants: 2, Converged: false},
		},
	}
}

func TestWriteResult_Success(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, sampleResult()))
	newGoldie(t).Assert(t, "result_success", buf.Bytes())
}

func TestWriteResult_Failure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, types.Result{Success: false, Error: "no reactions defined"}))
	newGoldie(t).Assert(t, "result_failure", buf.Bytes())
}

func TestWriteResult_FailureWithoutMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, types.Result{}))
	assert.Contains(t, buf.String(), "Error: Unknown error occurred")
}

func TestWriteResult_UnnamedReactionWithoutOutcome(t *testing.T) {
	res := types.Result{
		Success:           true,
		Coefficients:      [][]float64{{-2}, {1}},
		MassBalanceErrors: []float64{0.5},
		ComponentNames:    []string{"X", "Y"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, res))
	assert.Contains(t, buf.String(), "Reaction 1:\n  2.00000 X -> 1.00000 Y\n  mass balance error: 0.500000\n")
}

func TestWriteFlows(t *testing.T) {
	reactants := []types.Component{
		{Name: "CH4", MolarWeight: 16.04, MoleFraction: 0.2, MassFlow: 200, MolarFlow: 12.5},
		{Name: "O2", MolarWeight: 32, MoleFraction: 0.8, MassFlow: 800, MolarFlow: 25},
	}
	balance := &types.ProductBalance{
		TotalMass:          1000,
		AverageMolarWeight: 31,
		TotalMolarFlow:     32.5,
		CalculatedMass:     900,
		MassBalanceError:   100,
		FractionSum:        0.9,
		Flows: []types.ProductFlow{
			{Name: "CO2", MoleFraction: 0.4, MolarFlow: 13, MassFlow: 572},
			{Name: "H2O", MoleFraction: 0.5, MolarFlow: 16.25, MassFlow: 292.5},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFlows(&buf, 1000, reactants, balance))
	newGoldie(t).Assert(t, "flows", buf.Bytes())
}

func TestWriteFlows_ReactantsOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFlows(&buf, 10, []types.Component{{Name: "A", MolarWeight: 2, MoleFraction: 1, MassFlow: 10, MolarFlow: 5}}, nil))
	assert.NotContains(t, buf.String(), "PRODUCT FLOWS")
	assert.Contains(t, buf.String(), "REACTANT FLOWS (total 10.00 kg/h):")
}

func TestEquation(t *testing.T) {
	names := []string{"H2", "O2", "H2O"}
	tests := []struct {
		name   string
		column []float64
		want   string
	}{
		{"balanced", []float64{-1, -0.5, 1}, "1.00000 H2 + 0.50000 O2 -> 1.00000 H2O"},
		{"drops negligible", []float64{-1, 1e-7, 1}, "1.00000 H2 -> 1.00000 H2O"},
		{"no products", []float64{-1, -1, 0}, "(No significant coefficients found)"},
		{"all zero", []float64{0, 0, 0}, "(No significant coefficients found)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equation(names, tt.column))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))
	assert.Contains(t, buf.String(), "\n  \"success\": true,")

	var got types.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"A", "B", "C"}, got.ComponentNames)
	assert.Equal(t, -0.25, got.Coefficients[0][2])
}

func TestWriteJSON_FailureOmitsNothingRequired(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, types.Result{Success: false, Error: "boom"}))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, false, raw["success"])
	assert.Equal(t, "boom", raw["error"])
	assert.Contains(t, raw, "stoichiometric_coefficients")
}
