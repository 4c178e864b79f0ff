// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Role records which list a component was declared in.
type Role string

const (
	RoleReactant Role = "reactant"
	RoleProduct  Role = "product"
)

// Component is a chemical species supplied by the caller. Only Name and
// MolarWeight reach the solver; the flow fields belong to the workflow layer.
type Component struct {
	// Name identifies the component. Reactions refer to components by name.
	Name string `json:"name" yaml:"name"`

	// MolarWeight is the molar mass (g/mol or kg/kmol), expected positive.
	MolarWeight float64 `json:"molar_weight" yaml:"molar_weight"`

	// MoleFraction is the component's share of its stream, in [0, 1].
	MoleFraction float64 `json:"mole_fraction,omitempty" yaml:"mole_fraction,omitempty"`

	// MassFlow is the component mass flow (kg/h), filled by flow calculations.
	MassFlow float64 `json:"mass_flow,omitempty" yaml:"mass_flow,omitempty"`

	// MolarFlow is the component molar flow (kmol/h), filled by flow calculations.
	MolarFlow float64 `json:"molar_flow,omitempty" yaml:"molar_flow,omitempty"`
}

// Reaction declares which components are consumed and produced. The name is
// used for diagnostics only.
type Reaction struct {
	Name      string   `json:"name" yaml:"name"`
	Reactants []string `json:"reactants" yaml:"reactants"`
	Products  []string `json:"products" yaml:"products"`
}

// Project is the full set of inputs for one solve, in the layout of the
// project save file.
type Project struct {
	// TotalReactantMass is the total reactant mass flow (kg/h).
	TotalReactantMass float64 `json:"total_reactant_mass" yaml:"total_reactant_mass"`

	Reactants []Component `json:"reactants" yaml:"reactants"`
	Products  []Component `json:"products" yaml:"products"`
	Reactions []Reaction  `json:"reactions" yaml:"reactions"`
}
