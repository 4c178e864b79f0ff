// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import "github.com/pdiddy/stoich-engine/pkg/types"

// Participant is one component registered for a solve, addressed by its
// stable integer ID.
type Participant struct {
	ID          int
	Name        string
	MolarWeight float64
	Role        types.Role
}

// Registry is the indexed participant set of one solve. IDs follow order of
// first appearance: reactants in input order, then products in input order.
// A Registry is never modified after NewRegistry returns.
type Registry struct {
	participants []Participant
	index        map[string]int
}

// NewRegistry builds the participant set. A name declared twice keeps the
// ID and role of its first declaration and the molar weight of its last.
func NewRegistry(reactants, products []types.Component) *Registry {
	r := &Registry{
		participants: make([]Participant, 0, len(reactants)+len(products)),
		index:        make(map[string]int, len(reactants)+len(products)),
	}
	r.add(reactants, types.RoleReactant)
	r.add(products, types.RoleProduct)
	return r
}

func (r *Registry) add(components []types.Component, role types.Role) {
	for _, c := range components {
		if id, ok := r.index[c.Name]; ok {
			r.participants[id].MolarWeight = c.MolarWeight
			continue
		}
		id := len(r.participants)
		r.index[c.Name] = id
		r.participants = append(r.participants, Participant{
			ID:          id,
			Name:        c.Name,
			MolarWeight: c.MolarWeight,
			Role:        role,
		})
	}
}

// Len returns the number of participants.
func (r *Registry) Len() int { return len(r.participants) }

// At returns the participant with the given ID.
func (r *Registry) At(id int) Participant { return r.participants[id] }

// Lookup resolves a participant by name.
func (r *Registry) Lookup(name string) (Participant, bool) {
	id, ok := r.index[name]
	if !ok {
		return Participant{}, false
	}
	return r.participants[id], true
}

// Names returns participant names in ID order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.participants))
	for i, p := range r.participants {
		names[i] = p.Name
	}
	return names
}

// MolarWeights returns participant molar weights in ID order.
func (r *Registry) MolarWeights() []float64 {
	w := make([]float64, len(r.participants))
	for i, p := range r.participants {
		w[i] = p.MolarWeight
	}
	return w
}
