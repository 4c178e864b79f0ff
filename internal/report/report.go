// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders solve results and flow tables for the terminal
// and as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

// significant is the smallest coefficient magnitude shown in an equation.
const significant = 1e-6

var troubleshooting = []string{
	"Check that all component names in reactions match your defined components",
	"Verify molar weights are positive numbers",
	"Ensure you have both reactants and products defined",
	"Check that reactions have at least one reactant and one product",
	"Verify total reactant mass flow is set and greater than 0",
}

// WriteResult renders res as a text report: one balanced equation per
// reaction with its method and mass-balance error, or the failure reason
// followed by troubleshooting tips.
func WriteResult(w io.Writer, res types.Result) error {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\nSTOICHIOMETRY SOLUTION RESULTS\n%s\n\n", rule, rule)

	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "Unknown error occurred"
		}
		fmt.Fprintf(&b, "SOLUTION FAILED\nError: %s\n\nTroubleshooting tips:\n", msg)
		for i, tip := range troubleshooting {
			fmt.Fprintf(&b, "%d. %s\n", i+1, tip)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "STOICHIOMETRIC COEFFICIENTS:\n%s\n", strings.Repeat("-", 40))
	reactions := len(res.MassBalanceErrors)
	for r := 0; r < reactions; r++ {
		name := ""
		if r < len(res.Outcomes) {
			name = res.Outcomes[r].Name
		}
		if name != "" {
			fmt.Fprintf(&b, "Reaction %d (%s):\n", r+1, name)
		} else {
			fmt.Fprintf(&b, "Reaction %d:\n", r+1)
		}
		fmt.Fprintf(&b, "  %s\n", Equation(res.ComponentNames, res.Column(r)))
		if r < len(res.Outcomes) {
			o := res.Outcomes[r]
			fmt.Fprintf(&b, "  method: %s", o.Method)
			if !o.Converged {
				b.WriteString(" (not converged)")
			}
			b.WriteString(", ")
		} else {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "mass balance error: %.6f\n", res.MassBalanceErrors[r])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Equation formats one coefficient column as "a X + b Y -> c Z".
// Coefficients at or below 1e-6 in magnitude are left out.
func Equation(names []string, column []float64) string {
	var lhs, rhs []string
	for i, v := range column {
		if math.Abs(v) <= significant {
			continue
		}
		if v < 0 {
			lhs = append(lhs, fmt.Sprintf("%.5f %s", -v, names[i]))
		} else {
			rhs = append(rhs, fmt.Sprintf("%.5f %s", v, names[i]))
		}
	}
	if len(lhs) == 0 || len(rhs) == 0 {
		return "(No significant coefficients found)"
	}
	return strings.Join(lhs, " + ") + " -> " + strings.Join(rhs, " + ")
}

// WriteFlows renders the reactant flow table and, when b is not nil, the
// product flows derived from the mass balance.
func WriteFlows(w io.Writer, totalMass float64, reactants []types.Component, b *types.ProductBalance) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "REACTANT FLOWS (total %.2f kg/h):\n", totalMass)
	fmt.Fprintf(&sb, "%-10s %-10s %-10s %-12s %-12s\n", "Reactant", "Mole Frac", "MW", "Mass Flow", "Molar Flow")
	sb.WriteString(strings.Repeat("-", 58) + "\n")
	for _, r := range reactants {
		fmt.Fprintf(&sb, "%-10s %-10.4f %-10.4f %-12.4f %-12.6f\n",
			r.Name, r.MoleFraction, r.MolarWeight, r.MassFlow, r.MolarFlow)
	}

	if b != nil {
		sb.WriteString("\nPRODUCT FLOWS:\n")
		sb.WriteString(strings.Repeat("=", 50) + "\n")
		fmt.Fprintf(&sb, "Total reactant mass: %.2f kg/h\n", b.TotalMass)
		fmt.Fprintf(&sb, "Average product MW: %.2f kg/kmol\n", b.AverageMolarWeight)
		fmt.Fprintf(&sb, "Total product molar flow: %.2f kmol/h\n", b.TotalMolarFlow)
		fmt.Fprintf(&sb, "Total product mass: %.2f kg/h\n", b.CalculatedMass)
		fmt.Fprintf(&sb, "Mass balance error: %.2f kg/h\n", b.MassBalanceError)
		if b.FractionWarning() {
			fmt.Fprintf(&sb, "Warning: product mole fractions sum to %.3f (should be 1.0)\n", b.FractionSum)
		}
		fmt.Fprintf(&sb, "\n%-10s %-10s %-12s %-12s\n", "Product", "Mole Frac", "Molar Flow", "Mass Flow")
		sb.WriteString(strings.Repeat("-", 50) + "\n")
		for _, f := range b.Flows {
			fmt.Fprintf(&sb, "%-10s %-10.4f %-12.2f %-12.2f\n", f.Name, f.MoleFraction, f.MolarFlow, f.MassFlow)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
