// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/stoich-engine/internal/flows"
	"github.com/pdiddy/stoich-engine/internal/project"
	"github.com/pdiddy/stoich-engine/internal/report"
	"github.com/pdiddy/stoich-engine/pkg/types"
)

var flowsCmd = &cobra.Command{
	Use:   "flows <project-file>",
	Short: "Compute reactant and product flows from the mass balance",
	Long: `Flows distributes the project's total reactant mass flow over the
reactants by mole fraction, then derives product molar and mass flows from
the product mole fractions and molar weights so that product mass equals
reactant mass. No coefficients are solved.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlows,
}

func runFlows(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	p, err := project.Load(args[0])
	if err != nil {
		return WrapExitError(ExitCommandError, "loading project", err)
	}
	if p.TotalReactantMass <= 0 {
		return WrapExitError(ExitFailure, "computing flows", flows.ErrNonPositiveMass)
	}

	reactants := flows.ReactantFlows(p.Reactants, p.TotalReactantMass)

	var balance *types.ProductBalance
	b, err := flows.ProductFlowsFromMassBalance(p.Products, p.TotalReactantMass)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: product flows unavailable: %v\n", err)
	} else {
		balance = &b
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return report.WriteJSON(out, struct {
			TotalReactantMass float64               `json:"total_reactant_mass"`
			Reactants         []types.Component     `json:"reactants"`
			Products          *types.ProductBalance `json:"products,omitempty"`
		}{p.TotalReactantMass, reactants, balance})
	}
	return report.WriteFlows(out, p.TotalReactantMass, reactants, balance)
}

func init() {
	flowsCmd.Flags().Bool("json", false, "output flows as JSON")

	rootCmd.AddCommand(flowsCmd)
}
