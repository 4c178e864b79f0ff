// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

// Estimate is the continuous coefficient vector produced by Minimize.
type Estimate struct {
	Coefficients []float64
	Residual     float64
	Converged    bool
}

// box is the bounds and starting point of one slot.
type box struct {
	lo, hi, start float64
}

// startMargin keeps the starting point off the box edges, where the
// logistic transform has no finite preimage.
const startMargin = 0.01

// slotBox returns the box of a slot with the given sign. The start is ±1,
// clamped into the box when the configured bounds exclude it.
func slotBox(s Sign, cfg types.SolverConfig) box {
	var b box
	switch {
	case s < 0:
		b = box{lo: -cfg.UpperBound, hi: -cfg.LowerBound, start: -1}
	case s > 0:
		b = box{lo: cfg.LowerBound, hi: cfg.UpperBound, start: 1}
	default:
		return box{}
	}
	b.start = math.Min(math.Max(b.start, b.lo), b.hi)
	return b
}

// startFraction is the start's position within the box, in
// [startMargin, 1-startMargin].
func (b box) startFraction() float64 {
	f := (b.start - b.lo) / (b.hi - b.lo)
	return math.Min(math.Max(f, startMargin), 1-startMargin)
}

// Objective returns the fallback objective (Σ x·w)² plus the sign penalty
// for a full slot vector.
func Objective(x []float64, slots []Slot, cfg types.SolverConfig) float64 {
	var balance, penalty float64
	for i, s := range slots {
		balance += x[i] * s.MolarWeight
		switch {
		case s.Sign < 0 && x[i] > 0,
			s.Sign > 0 && x[i] < 0,
			s.Sign == 0 && math.Abs(x[i]) > cfg.ZeroThreshold:
			penalty += cfg.PenaltyWeight * math.Abs(x[i])
		}
	}
	return balance*balance + penalty
}

// Minimize runs a box-constrained quasi-Newton minimization of Objective
// over one real coefficient per slot. Reactant slots live in
// [-UpperBound, -LowerBound] starting at -1, product slots in
// [LowerBound, UpperBound] starting at 1, and absent slots are pinned at 0.
// A start outside its box is moved to the nearest bound.
//
// The box is enforced with a logistic change of variables and the
// transformed problem is solved with L-BFGS. Whatever the minimizer ends on
// is returned; Converged only reports its status.
func Minimize(slots []Slot, cfg types.SolverConfig) Estimate {
	n := len(slots)
	boxes := make([]box, n)
	x := make([]float64, n)
	weights := make([]float64, n)
	var free []int
	for i, s := range slots {
		boxes[i] = slotBox(s.Sign, cfg)
		x[i] = boxes[i].start
		weights[i] = s.MolarWeight
		if boxes[i].hi > boxes[i].lo {
			free = append(free, i)
		}
	}

	if len(free) == 0 {
		return Estimate{Coefficients: x, Residual: floats.Dot(x, weights), Converged: true}
	}

	expand := func(u []float64) {
		for k, i := range free {
			b := boxes[i]
			x[i] = b.lo + (b.hi-b.lo)*logistic(u[k])
		}
	}

	u0 := make([]float64, len(free))
	for k, i := range free {
		u0[k] = logit(boxes[i].startFraction())
	}

	problem := optimize.Problem{
		Func: func(u []float64) float64 {
			expand(u)
			return Objective(x, slots, cfg)
		},
		// Inside the box every slot keeps its required sign, so the
		// penalty is identically zero and only the balance term has a
		// gradient.
		Grad: func(grad, u []float64) {
			expand(u)
			balance := floats.Dot(x, weights)
			for k, i := range free {
				b := boxes[i]
				p := logistic(u[k])
				grad[k] = 2 * balance * weights[i] * (b.hi - b.lo) * p * (1 - p)
			}
		},
	}

	settings := &optimize.Settings{MajorIterations: cfg.MaxIterations}
	res, err := optimize.Minimize(problem, u0, settings, &optimize.LBFGS{})
	converged := err == nil
	if res != nil {
		expand(res.X)
		converged = converged && res.Status != optimize.IterationLimit
	} else {
		expand(u0)
	}

	out := make([]float64, n)
	copy(out, x)
	return Estimate{
		Coefficients: out,
		Residual:     floats.Dot(out, weights),
		Converged:    converged,
	}
}

func logistic(u float64) float64 {
	return 1 / (1 + math.Exp(-u))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
