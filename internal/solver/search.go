// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"context"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

// cancelCheckInterval is how many candidates the search examines between
// context checks.
const cancelCheckInterval = 4096

// Slot is one participant position of a single reaction.
type Slot struct {
	// ID is the participant's registry ID, i.e. its row in the
	// coefficient matrix.
	ID          int
	Name        string
	MolarWeight float64
	Sign        Sign
}

// Candidate is a coefficient vector for the slots of one reaction.
type Candidate struct {
	Coefficients []float64

	// Residual is the signed mass balance Σ coefficient × molar weight.
	Residual float64

	// Examined counts the integer vectors scored by the search.
	Examined int
}

// Search enumerates small integer coefficients matching the slots' required
// signs and returns the first vector whose mass residual is below
// cfg.ExactTolerance. Reactant slots take values from
// -MaxCoefficient to -MinReactantMagnitude and product slots from 1 to
// MaxCoefficient. Reactant combinations form the outer loop and product
// combinations the inner loop, both ascending, so the first acceptable
// vector is deterministic.
//
// When no vector meets ExactTolerance, the lowest-residual vector is
// returned if its residual is below cfg.SearchTolerance. ok is false when
// the slots lack a reactant or a product, when they exceed cfg.MaxSlots, or
// when nothing was close enough. The returned Candidate carries Examined
// even when ok is false. The only error is ctx's.
func Search(ctx context.Context, slots []Slot, cfg types.SolverConfig) (c Candidate, ok bool, err error) {
	var reactantPos, productPos []int
	for i, s := range slots {
		switch {
		case s.Sign < 0:
			reactantPos = append(reactantPos, i)
		case s.Sign > 0:
			productPos = append(productPos, i)
		}
	}
	if len(reactantPos) == 0 || len(productPos) == 0 {
		return Candidate{}, false, nil
	}
	if cfg.MaxSlots > 0 && len(reactantPos)+len(productPos) > cfg.MaxSlots {
		return Candidate{}, false, nil
	}

	reactantChoices := cfg.MaxCoefficient - cfg.MinReactantMagnitude + 1
	productChoices := cfg.MaxCoefficient
	if reactantChoices <= 0 || productChoices <= 0 {
		return Candidate{}, false, nil
	}

	// Reactant positions first: the generator varies its last index
	// fastest, which makes product combinations the inner loop.
	lens := make([]int, 0, len(reactantPos)+len(productPos))
	for range reactantPos {
		lens = append(lens, reactantChoices)
	}
	for range productPos {
		lens = append(lens, productChoices)
	}

	weights := make([]float64, len(slots))
	for i, s := range slots {
		weights[i] = s.MolarWeight
	}

	gen := combin.NewCartesianGenerator(lens)
	pick := make([]int, len(lens))
	coeffs := make([]float64, len(slots))
	best := Candidate{Residual: math.Inf(1)}
	found := false
	examined := 0

	for gen.Next() {
		if examined%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Candidate{Examined: examined}, false, err
			}
		}
		examined++

		pick = gen.Product(pick)
		for k, pos := range reactantPos {
			coeffs[pos] = float64(pick[k] - cfg.MaxCoefficient)
		}
		for k, pos := range productPos {
			coeffs[pos] = float64(pick[len(reactantPos)+k] + 1)
		}
		assertSigns(coeffs, slots)

		residual := floats.Dot(coeffs, weights)
		if math.Abs(residual) < math.Abs(best.Residual) {
			best = Candidate{Coefficients: slices.Clone(coeffs), Residual: residual}
			found = true
		}
		if math.Abs(residual) < cfg.ExactTolerance {
			best.Examined = examined
			return best, true, nil
		}
	}

	best.Examined = examined
	if found && math.Abs(best.Residual) < cfg.SearchTolerance {
		return best, true, nil
	}
	return Candidate{Examined: examined}, false, nil
}

// assertSigns panics when a coefficient's sign differs from its slot's
// required sign. Reaching it means the skeleton or slot assembly is broken.
func assertSigns(coeffs []float64, slots []Slot) {
	for i, s := range slots {
		var ok bool
		switch {
		case s.Sign < 0:
			ok = coeffs[i] < 0
		case s.Sign > 0:
			ok = coeffs[i] > 0
		default:
			ok = coeffs[i] == 0
		}
		if !ok {
			panic(fmt.Sprintf("solver: coefficient %v for %q contradicts required sign %d", coeffs[i], s.Name, s.Sign))
		}
	}
}
