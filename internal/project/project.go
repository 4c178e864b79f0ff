// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package project loads, validates, and saves project files: the
// components, reactions, and reactant mass flow that make up one solve.
//
// Project files are JSON or YAML, selected by extension, and share the
// layout of types.Project.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

// Precondition errors reported before a solve is attempted.
var (
	ErrNoReactions    = errors.New("no reactions defined")
	ErrNoReactants    = errors.New("no reactants defined")
	ErrNoProducts     = errors.New("no products defined")
	ErrNoReactantMass = errors.New("total reactant mass flow must be greater than 0")
)

// Format is a project file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads, validates, and normalizes the project file at path.
func Load(path string) (types.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Project{}, fmt.Errorf("reading project %s: %w", path, err)
	}
	p, err := Parse(data, FormatFor(path))
	if err != nil {
		return types.Project{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes data in the given format, validates it against the project
// schema, and normalizes names.
func Parse(data []byte, format Format) (types.Project, error) {
	var doc any
	if err := unmarshal(data, format, &doc); err != nil {
		return types.Project{}, fmt.Errorf("parsing project: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err := Validate(doc); err != nil {
		return types.Project{}, err
	}

	var p types.Project
	if err := unmarshal(data, format, &p); err != nil {
		return types.Project{}, fmt.Errorf("decoding project: %w", err)
	}
	return Normalize(p), nil
}

func unmarshal(data []byte, format Format, v any) error {
	if format == FormatYAML {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// Save writes p to path in the format implied by its extension.
func Save(path string, p types.Project) error {
	var (
		data []byte
		err  error
	)
	switch FormatFor(path) {
	case FormatYAML:
		data, err = yaml.Marshal(&p)
	default:
		data, err = json.MarshalIndent(&p, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// NormalizeName trims surrounding whitespace and applies Unicode NFC so
// that visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Normalize returns a copy of p with every component and reaction name
// passed through NormalizeName. Empty participant names are dropped.
func Normalize(p types.Project) types.Project {
	out := p
	out.Reactants = normalizeComponents(p.Reactants)
	out.Products = normalizeComponents(p.Products)
	out.Reactions = make([]types.Reaction, len(p.Reactions))
	for i, r := range p.Reactions {
		out.Reactions[i] = types.Reaction{
			Name:      strings.TrimSpace(r.Name),
			Reactants: normalizeNames(r.Reactants),
			Products:  normalizeNames(r.Products),
		}
	}
	return out
}

func normalizeComponents(in []types.Component) []types.Component {
	out := make([]types.Component, len(in))
	for i, c := range in {
		c.Name = NormalizeName(c.Name)
		out[i] = c
	}
	return out
}

func normalizeNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n = NormalizeName(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Preconditions reports the first reason p cannot be solved: no reactions,
// no reactants, no products, or a non-positive reactant mass flow.
func Preconditions(p types.Project) error {
	switch {
	case len(p.Reactions) == 0:
		return ErrNoReactions
	case len(p.Reactants) == 0:
		return ErrNoReactants
	case len(p.Products) == 0:
		return ErrNoProducts
	case p.TotalReactantMass <= 0:
		return ErrNoReactantMass
	}
	return nil
}

// UnresolvedReference is a reaction participant that names no component.
type UnresolvedReference struct {
	Reaction string
	Name     string
}

func (u UnresolvedReference) String() string {
	return fmt.Sprintf("reaction %q: component %q is not defined", u.Reaction, u.Name)
}

// CheckReferences lists reaction participants that are not declared as a
// reactant or product. The solver ignores such names.
func CheckReferences(p types.Project) []UnresolvedReference {
	known := make(map[string]bool, len(p.Reactants)+len(p.Products))
	for _, c := range p.Reactants {
		known[c.Name] = true
	}
	for _, c := range p.Products {
		known[c.Name] = true
	}

	var missing []UnresolvedReference
	for i, r := range p.Reactions {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		for _, list := range [][]string{r.Reactants, r.Products} {
			for _, n := range list {
				if !known[n] {
					missing = append(missing, UnresolvedReference{Reaction: name, Name: n})
				}
			}
		}
	}
	return missing
}

// Example returns a small methane combustion project.
func Example() types.Project {
	return types.Project{
		TotalReactantMass: 1000,
		Reactants: []types.Component{
			{Name: "CH4", MolarWeight: 16.04, MoleFraction: 0.3333},
			{Name: "O2", MolarWeight: 32.0, MoleFraction: 0.6667},
		},
		Products: []types.Component{
			{Name: "CO2", MolarWeight: 44.01, MoleFraction: 0.3333},
			{Name: "H2O", MolarWeight: 18.02, MoleFraction: 0.6667},
		},
		Reactions: []types.Reaction{
			{Name: "combustion", Reactants: []string{"CH4", "O2"}, Products: []string{"CO2", "H2O"}},
		},
	}
}
