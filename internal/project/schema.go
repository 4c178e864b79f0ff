// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package project

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// schemaSource constrains the project file layout. Unknown keys are
// tolerated so files written by other tools still load. Lists may be null,
// which is how a nil slice is written to JSON.
const schemaSource = `
#Component: {
	name:          string & =~"\\S"
	molar_weight:  number & >0
	mole_fraction?: number & >=0 & <=1
	mass_flow?:     number | null
	molar_flow?:    number | null
	...
}

#Reaction: {
	name?:      string
	reactants?: [...string] | null
	products?:  [...string] | null
	...
}

#Project: {
	total_reactant_mass?: number & >=0
	reactants?: [...#Component] | null
	products?:  [...#Component] | null
	reactions?: [...#Reaction] | null
	...
}
`

// Validate checks a decoded project document (the generic value produced
// by a JSON or YAML decoder) against the project schema.
func Validate(doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding project for validation: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling project schema: %w", err)
	}

	value := ctx.CompileBytes(data)
	if err := value.Err(); err != nil {
		return fmt.Errorf("reading project: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Project")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid project:\n%s", cueerrors.Details(err, nil))
	}
	return nil
}
