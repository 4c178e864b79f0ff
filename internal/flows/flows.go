// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flows computes component mass and molar flows for a project's
// reactant and product streams.
package flows

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

var (
	// ErrNonPositiveMass is returned when the total reactant mass flow is
	// zero or negative.
	ErrNonPositiveMass = errors.New("total reactant mass flow must be greater than 0")

	// ErrNoProducts is returned when product flows are requested for an
	// empty product list.
	ErrNoProducts = errors.New("no products defined")

	// ErrZeroAverageMolarWeight is returned when the mole-fraction-weighted
	// product molar weight is zero.
	ErrZeroAverageMolarWeight = errors.New("average product molar weight is zero")
)

// ComponentMassFlow returns totalMass × moleFraction, or 0 when the molar
// weight is not positive.
func ComponentMassFlow(moleFraction, molarWeight, totalMass float64) float64 {
	if molarWeight <= 0 {
		return 0
	}
	return totalMass * moleFraction
}

// MolarFlow returns massFlow / molarWeight, or 0 when the molar weight is
// not positive.
func MolarFlow(massFlow, molarWeight float64) float64 {
	if molarWeight <= 0 {
		return 0
	}
	return massFlow / molarWeight
}

// ReactantFlows returns a copy of reactants with MassFlow and MolarFlow set
// from their mole fractions and the total reactant mass flow.
func ReactantFlows(reactants []types.Component, totalMass float64) []types.Component {
	out := make([]types.Component, len(reactants))
	for i, r := range reactants {
		r.MassFlow = ComponentMassFlow(r.MoleFraction, r.MolarWeight, totalMass)
		r.MolarFlow = MolarFlow(r.MassFlow, r.MolarWeight)
		out[i] = r
	}
	return out
}

// ProductFlowsFromMassBalance distributes the total reactant mass flow over
// the products by mole fraction. The total product molar flow is
// totalMass / Σ xᵢ·MWᵢ; each product gets its mole fraction of it.
func ProductFlowsFromMassBalance(products []types.Component, totalMass float64) (types.ProductBalance, error) {
	if totalMass <= 0 {
		return types.ProductBalance{}, ErrNonPositiveMass
	}
	if len(products) == 0 {
		return types.ProductBalance{}, ErrNoProducts
	}

	b := types.ProductBalance{TotalMass: totalMass}
	for _, p := range products {
		b.FractionSum += p.MoleFraction
		b.AverageMolarWeight += p.MoleFraction * p.MolarWeight
	}
	if b.AverageMolarWeight == 0 {
		return types.ProductBalance{}, fmt.Errorf("%w: check product mole fractions", ErrZeroAverageMolarWeight)
	}

	b.TotalMolarFlow = totalMass / b.AverageMolarWeight
	b.Flows = make([]types.ProductFlow, len(products))
	for i, p := range products {
		molar := b.TotalMolarFlow * p.MoleFraction
		mass := molar * p.MolarWeight
		b.Flows[i] = types.ProductFlow{
			Name:         p.Name,
			MoleFraction: p.MoleFraction,
			MolarFlow:    molar,
			MassFlow:     mass,
		}
		b.CalculatedMass += mass
	}
	b.MassBalanceError = math.Abs(totalMass - b.CalculatedMass)
	return b, nil
}

// ApplyProductFlows returns a copy of products with the flows of b set on
// the matching names.
func ApplyProductFlows(products []types.Component, b types.ProductBalance) []types.Component {
	byName := make(map[string]types.ProductFlow, len(b.Flows))
	for _, f := range b.Flows {
		byName[f.Name] = f
	}
	out := make([]types.Component, len(products))
	for i, p := range products {
		if f, ok := byName[p.Name]; ok {
			p.MassFlow = f.MassFlow
			p.MolarFlow = MolarFlow(f.MassFlow, p.MolarWeight)
		}
		out[i] = p
	}
	return out
}
