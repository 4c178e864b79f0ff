// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package solver determines stoichiometric coefficients for declared
// reactions from component molar weights and reactant/product membership.
//
// A solve builds a participant Registry and a sign Skeleton once, then
// handles each reaction in turn: an exhaustive small-integer Search for a
// mass-balanced vector, and when that fails, a bounded continuous Minimize.
// The assembled coefficient matrix is normalized column by column so the
// largest magnitude in each reaction is 1.
//
// The solver keeps no state between calls and does not log. Malformed
// reactions degrade to all-zero columns instead of errors.
package solver

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

// Solver balances reactions using the settings in its SolverConfig.
type Solver struct {
	cfg types.SolverConfig
}

// New returns a Solver. Zero-valued fields of cfg are not defaulted; start
// from types.DefaultSolverConfig.
func New(cfg types.SolverConfig) *Solver {
	return &Solver{cfg: cfg}
}

// Config returns the solver's settings.
func (s *Solver) Config() types.SolverConfig { return s.cfg }

// Solve computes the normalized coefficient matrix for reactions.
//
// Participants are the reactants in input order followed by the products in
// input order. Result.Coefficients is indexed [participant][reaction].
// Reaction names not found among the participants are ignored; a reaction
// left with fewer than two participants is skipped and keeps an all-zero
// column and a zero mass-balance error.
//
// The context is checked between reactions and periodically inside the
// integer search; its error is the only one Solve returns.
func (s *Solver) Solve(ctx context.Context, reactants, products []types.Component, reactions []types.Reaction) (types.Result, error) {
	reg := NewRegistry(reactants, products)
	skel := BuildSkeleton(reg, reactions)
	n, m := skel.Dims()

	var nu *mat.Dense
	if n > 0 && m > 0 {
		nu = mat.NewDense(n, m, nil)
	}

	outcomes := make([]types.ReactionOutcome, m)
	for r, rxn := range reactions {
		if err := ctx.Err(); err != nil {
			return types.Result{}, err
		}

		slots := reactionSlots(reg, skel, rxn, r)
		outcomes[r] = types.ReactionOutcome{
			Name:         rxn.Name,
			Method:       types.MethodSkipped,
			Participants: len(slots),
			Converged:    true,
		}
		if len(slots) < 2 {
			continue
		}

		coeffs, err := s.solveReaction(ctx, slots, &outcomes[r])
		if err != nil {
			return types.Result{}, err
		}
		for i, slot := range slots {
			nu.Set(slot.ID, r, coeffs[i])
		}
	}

	errs := MassBalanceErrors(nu, reg.MolarWeights(), m)
	Normalize(nu)

	return types.Result{
		Success:           true,
		Coefficients:      rows(nu, n, m),
		MassBalanceErrors: errs,
		ComponentNames:    reg.Names(),
		Outcomes:          outcomes,
	}, nil
}

// solveReaction runs the integer search and falls back to Minimize when it
// finds nothing or its residual fails the acceptance tolerance.
func (s *Solver) solveReaction(ctx context.Context, slots []Slot, out *types.ReactionOutcome) ([]float64, error) {
	cand, ok, err := Search(ctx, slots, s.cfg)
	if err != nil {
		return nil, err
	}
	out.Candidates = cand.Examined
	if ok && math.Abs(cand.Residual) < s.cfg.AcceptTolerance {
		out.Method = types.MethodAlgebraic
		return cand.Coefficients, nil
	}

	est := Minimize(slots, s.cfg)
	out.Method = types.MethodOptimization
	out.Converged = est.Converged
	return est.Coefficients, nil
}

// reactionSlots resolves a reaction's reactant then product names against
// the registry, dropping names that are not registered.
func reactionSlots(reg *Registry, skel Skeleton, rxn types.Reaction, r int) []Slot {
	slots := make([]Slot, 0, len(rxn.Reactants)+len(rxn.Products))
	for _, list := range [][]string{rxn.Reactants, rxn.Products} {
		for _, name := range list {
			p, ok := reg.Lookup(name)
			if !ok {
				continue
			}
			slots = append(slots, Slot{
				ID:          p.ID,
				Name:        p.Name,
				MolarWeight: p.MolarWeight,
				Sign:        skel.At(p.ID, r),
			})
		}
	}
	return slots
}

// MassBalanceErrors returns |Σ ν[c, r] × w[c]| for every reaction column of
// nu. A nil nu yields m zeros.
func MassBalanceErrors(nu *mat.Dense, weights []float64, m int) []float64 {
	errs := make([]float64, m)
	if nu == nil {
		return errs
	}
	col := make([]float64, len(weights))
	for r := 0; r < m; r++ {
		mat.Col(col, r, nu)
		errs[r] = math.Abs(floats.Dot(col, weights))
	}
	return errs
}

// Normalize divides each column of nu by its largest absolute entry.
// All-zero columns are left untouched.
func Normalize(nu *mat.Dense) {
	if nu == nil {
		return
	}
	n, m := nu.Dims()
	col := make([]float64, n)
	for r := 0; r < m; r++ {
		mat.Col(col, r, nu)
		var peak float64
		for _, v := range col {
			peak = math.Max(peak, math.Abs(v))
		}
		if peak == 0 {
			continue
		}
		for i := range col {
			col[i] /= peak
		}
		nu.SetCol(r, col)
	}
}

func rows(nu *mat.Dense, n, m int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		if nu == nil {
			out[i] = make([]float64, m)
			continue
		}
		out[i] = mat.Row(nil, i, nu)
	}
	return out
}
