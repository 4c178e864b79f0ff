// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SolveMethod names how a reaction's coefficient column was produced.
type SolveMethod string

const (
	MethodSkipped      SolveMethod = "skipped"
	MethodAlgebraic    SolveMethod = "algebraic"
	MethodOptimization SolveMethod = "optimization"
)

// ReactionOutcome describes how one reaction column was solved.
type ReactionOutcome struct {
	// Name is the reaction name as declared.
	Name string `json:"name" yaml:"name"`

	// Method is how the column was produced.
	Method SolveMethod `json:"method" yaml:"method"`

	// Participants is the number of resolvable participant slots.
	Participants int `json:"participants" yaml:"participants"`

	// Candidates is the number of integer vectors the search examined.
	Candidates int `json:"candidates" yaml:"candidates"`

	// Converged reports whether the optimization fallback met its
	// convergence criterion. Always true for algebraic and skipped columns.
	Converged bool `json:"converged" yaml:"converged"`
}

// Result is the output record of a solve. Coefficients is indexed
// [component][reaction]; the component axis follows ComponentNames.
type Result struct {
	Success           bool              `json:"success" yaml:"success"`
	Error             string            `json:"error,omitempty" yaml:"error,omitempty"`
	Coefficients      [][]float64       `json:"stoichiometric_coefficients" yaml:"stoichiometric_coefficients"`
	MassBalanceErrors []float64         `json:"mass_balance_errors" yaml:"mass_balance_errors"`
	ComponentNames    []string          `json:"component_names" yaml:"component_names"`
	Outcomes          []ReactionOutcome `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
}

// Column returns the coefficients of reaction r in component order.
func (r Result) Column(reaction int) []float64 {
	col := make([]float64, len(r.Coefficients))
	for i, row := range r.Coefficients {
		col[i] = row[reaction]
	}
	return col
}

// ProductFlow is one row of the product flow table.
type ProductFlow struct {
	Name         string  `json:"name" yaml:"name"`
	MoleFraction float64 `json:"mole_fraction" yaml:"mole_fraction"`
	MolarFlow    float64 `json:"molar_flow" yaml:"molar_flow"`
	MassFlow     float64 `json:"mass_flow" yaml:"mass_flow"`
}

// ProductBalance holds product flows derived from the reactant mass flow.
type ProductBalance struct {
	TotalMass          float64       `json:"total_mass" yaml:"total_mass"`
	AverageMolarWeight float64       `json:"average_molar_weight" yaml:"average_molar_weight"`
	TotalMolarFlow     float64       `json:"total_molar_flow" yaml:"total_molar_flow"`
	CalculatedMass     float64       `json:"calculated_mass" yaml:"calculated_mass"`
	MassBalanceError   float64       `json:"mass_balance_error" yaml:"mass_balance_error"`
	FractionSum        float64       `json:"fraction_sum" yaml:"fraction_sum"`
	Flows              []ProductFlow `json:"flows" yaml:"flows"`
}

// FractionWarning reports whether product mole fractions stray from 1 by
// more than 0.01.
func (b ProductBalance) FractionWarning() bool {
	d := b.FractionSum - 1.0
	return d > 0.01 || d < -0.01
}

// Run is one engine invocation on one project, as persisted in the store.
type Run struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	Project   Project         `json:"project" yaml:"project"`
	Result    Result          `json:"result" yaml:"result"`
	Products  *ProductBalance `json:"products,omitempty" yaml:"products,omitempty"`
}
