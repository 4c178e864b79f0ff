// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"slices"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

// Sign is the required polarity of a component's coefficient in a reaction.
type Sign int8

const (
	SignReactant Sign = -1
	SignAbsent   Sign = 0
	SignProduct  Sign = 1
)

// Skeleton is the components × reactions grid of required signs.
type Skeleton struct {
	components int
	reactions  int
	signs      []Sign
}

// BuildSkeleton derives the required sign of every participant in every
// reaction. A name listed as both reactant and product of one reaction
// takes the reactant sign.
func BuildSkeleton(reg *Registry, reactions []types.Reaction) Skeleton {
	s := Skeleton{
		components: reg.Len(),
		reactions:  len(reactions),
		signs:      make([]Sign, reg.Len()*len(reactions)),
	}
	for r, rxn := range reactions {
		for c := 0; c < reg.Len(); c++ {
			name := reg.At(c).Name
			switch {
			case slices.Contains(rxn.Reactants, name):
				s.signs[c*s.reactions+r] = SignReactant
			case slices.Contains(rxn.Products, name):
				s.signs[c*s.reactions+r] = SignProduct
			}
		}
	}
	return s
}

// At returns the required sign of component c in reaction r.
func (s Skeleton) At(c, r int) Sign {
	return s.signs[c*s.reactions+r]
}

// Dims returns the number of components and reactions.
func (s Skeleton) Dims() (components, reactions int) {
	return s.components, s.reactions
}
