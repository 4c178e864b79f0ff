// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

// savedProject is a project file as written by the desktop editor,
// including fields the solver never reads.
const savedProject = `{
    "total_reactant_mass": 500.0,
    "reactants": [
        {"name": " CH4", "mole_fraction": 0.5, "molar_weight": 16.04, "mass_flow": 250.0, "molar_flow": 15.58},
        {"name": "O2", "mole_fraction": 0.5, "molar_weight": 32, "mass_flow": 250.0, "molar_flow": 7.81}
    ],
    "products": [
        {"name": "CO2", "mole_fraction": 0.4, "molar_weight": 44.01},
        {"name": "H2O", "mole_fraction": 0.6, "molar_weight": 18.02}
    ],
    "reactions": [
        {"name": "combustion", "reactants": ["CH4", "O2 "], "products": ["CO2", "H2O"]}
    ]
}`

func TestParse_JSON(t *testing.T) {
	p, err := Parse([]byte(savedProject), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 500.0, p.TotalReactantMass)
	require.Len(t, p.Reactants, 2)
	assert.Equal(t, "CH4", p.Reactants[0].Name)
	assert.Equal(t, 250.0, p.Reactants[0].MassFlow)
	require.Len(t, p.Reactions, 1)
	assert.Equal(t, []string{"CH4", "O2"}, p.Reactions[0].Reactants)
}

func TestParse_YAML(t *testing.T) {
	src := `
total_reactant_mass: 100
reactants:
  - name: A
    molar_weight: 2
products:
  - name: C
    molar_weight: 4
reactions:
  - name: r1
    reactants: [A]
    products: [C]
`
	p, err := Parse([]byte(src), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "A", p.Reactants[0].Name)
	assert.Equal(t, 4.0, p.Products[0].MolarWeight)
	assert.Equal(t, []string{"C"}, p.Reactions[0].Products)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "non-positive molar weight", src: `{"reactants": [{"name": "A", "molar_weight": 0}]}`},
		{name: "mole fraction above one", src: `{"products": [{"name": "C", "molar_weight": 4, "mole_fraction": 1.5}]}`},
		{name: "blank name", src: `{"reactants": [{"name": "  ", "molar_weight": 2}]}`},
		{name: "missing molar weight", src: `{"reactants": [{"name": "A"}]}`},
		{name: "negative reactant mass", src: `{"total_reactant_mass": -1}`},
		{name: "participant is not a string", src: `{"reactions": [{"name": "r", "reactants": [1], "products": []}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), FormatJSON)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid project")
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte(`{"reactants": [`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing project")
}

func TestParse_EmptyDocument(t *testing.T) {
	p, err := Parse([]byte(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, p.Reactions)
}

func TestNormalizeName(t *testing.T) {
	decomposed := "Fe\u0301"
	composed := "F\u00e9"
	require.NotEqual(t, decomposed, composed)

	assert.Equal(t, composed, NormalizeName(" "+decomposed+"\t"))
	assert.Equal(t, composed, NormalizeName(composed))
}

func TestNormalize_DropsEmptyParticipants(t *testing.T) {
	p := Normalize(types.Project{
		Reactions: []types.Reaction{{Name: " r ", Reactants: []string{"A", " ", ""}, Products: []string{" B"}}},
	})
	assert.Equal(t, "r", p.Reactions[0].Name)
	assert.Equal(t, []string{"A"}, p.Reactions[0].Reactants)
	assert.Equal(t, []string{"B"}, p.Reactions[0].Products)
}

func TestPreconditions(t *testing.T) {
	valid := Example()
	require.NoError(t, Preconditions(valid))

	tests := []struct {
		name   string
		mutate func(p *types.Project)
		want   error
	}{
		{name: "no reactions", mutate: func(p *types.Project) { p.Reactions = nil }, want: ErrNoReactions},
		{name: "no reactants", mutate: func(p *types.Project) { p.Reactants = nil }, want: ErrNoReactants},
		{name: "no products", mutate: func(p *types.Project) { p.Products = nil }, want: ErrNoProducts},
		{name: "no mass", mutate: func(p *types.Project) { p.TotalReactantMass = 0 }, want: ErrNoReactantMass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Example()
			tt.mutate(&p)
			assert.ErrorIs(t, Preconditions(p), tt.want)
		})
	}
}

func TestCheckReferences(t *testing.T) {
	p := Example()
	assert.Empty(t, CheckReferences(p))

	p.Reactions = append(p.Reactions, types.Reaction{Reactants: []string{"CH4", "N2"}, Products: []string{"NO"}})
	missing := CheckReferences(p)
	require.Len(t, missing, 2)
	assert.Equal(t, UnresolvedReference{Reaction: "#2", Name: "N2"}, missing[0])
	assert.Equal(t, `reaction "#2": component "NO" is not defined`, missing[1].String())
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"project.json", "nested/project.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, Example()))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, Example(), got)
		})
	}
}

func TestSaveLoad_ReactantsOnlyReaction(t *testing.T) {
	p := Example()
	p.Reactions = append(p.Reactions, types.Reaction{Name: "decay", Reactants: []string{"CH4"}})

	for _, name := range []string{"project.json", "project.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, p))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, Normalize(p), got)
			assert.Empty(t, got.Reactions[1].Products)
		})
	}
}

func TestParse_NullLists(t *testing.T) {
	doc := `{
    "total_reactant_mass": 1,
    "reactants": [{"name": "A", "molar_weight": 2}],
    "products": null,
    "reactions": [{"name": "r", "reactants": ["A"], "products": null}]
}`
	p, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, p.Products)
	require.Len(t, p.Reactions, 1)
	assert.Equal(t, []string{"A"}, p.Reactions[0].Reactants)
	assert.Empty(t, p.Reactions[0].Products)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("a.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("a.YML"))
	assert.Equal(t, FormatJSON, FormatFor("a.json"))
	assert.Equal(t, FormatJSON, FormatFor("a"))
}
