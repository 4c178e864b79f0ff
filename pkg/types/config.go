// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SolverConfig holds the search ranges, tolerances, and fallback settings of
// the coefficient solver.
type SolverConfig struct {
	// MaxCoefficient is the largest coefficient magnitude the algebraic
	// search tries (default 6).
	MaxCoefficient int `json:"max_coefficient" yaml:"max_coefficient" mapstructure:"max_coefficient"`

	// MinReactantMagnitude is the smallest reactant coefficient magnitude
	// the search tries (default 2). Products always start at 1.
	MinReactantMagnitude int `json:"min_reactant_magnitude" yaml:"min_reactant_magnitude" mapstructure:"min_reactant_magnitude"`

	// ExactTolerance ends the search early at the first candidate whose
	// residual is below it (default 0.01).
	ExactTolerance float64 `json:"exact_tolerance" yaml:"exact_tolerance" mapstructure:"exact_tolerance"`

	// SearchTolerance is the largest best-so-far residual the search still
	// reports as a solution (default 1.0).
	SearchTolerance float64 `json:"search_tolerance" yaml:"search_tolerance" mapstructure:"search_tolerance"`

	// AcceptTolerance is the residual the orchestrator requires before it
	// takes a search result instead of running the fallback (default 0.1).
	AcceptTolerance float64 `json:"accept_tolerance" yaml:"accept_tolerance" mapstructure:"accept_tolerance"`

	// MaxSlots caps the number of signed slots the search enumerates.
	// Reactions above the cap go straight to the fallback. Zero disables
	// the cap.
	MaxSlots int `json:"max_slots" yaml:"max_slots" mapstructure:"max_slots"`

	// PenaltyWeight scales the sign-violation penalty of the fallback
	// objective (default 1000).
	PenaltyWeight float64 `json:"penalty_weight" yaml:"penalty_weight" mapstructure:"penalty_weight"`

	// ZeroThreshold is the magnitude above which a slot required to be
	// zero is penalized (default 0.001).
	ZeroThreshold float64 `json:"zero_threshold" yaml:"zero_threshold" mapstructure:"zero_threshold"`

	// LowerBound and UpperBound are the fallback's coefficient magnitude
	// box (defaults 0.1 and 10).
	LowerBound float64 `json:"lower_bound" yaml:"lower_bound" mapstructure:"lower_bound"`
	UpperBound float64 `json:"upper_bound" yaml:"upper_bound" mapstructure:"upper_bound"`

	// MaxIterations bounds the fallback minimizer's major iterations
	// (default 1000).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`
}

// DefaultSolverConfig returns the solver settings used when no
// configuration is supplied.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MaxCoefficient:       6,
		MinReactantMagnitude: 2,
		ExactTolerance:       0.01,
		SearchTolerance:      1.0,
		AcceptTolerance:      0.1,
		MaxSlots:             10,
		PenaltyWeight:        1000,
		ZeroThreshold:        0.001,
		LowerBound:           0.1,
		UpperBound:           10,
		MaxIterations:        1000,
	}
}

// StoreConfig holds settings for the run history database.
type StoreConfig struct {
	// DataDir contains runs.db and the export files (default ".stoich").
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// MaxResults is the default number of runs listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LogConfig selects the structured logger's level and output format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	// Textfile is the path written in Prometheus text format after each
	// command. Empty disables export.
	Textfile string `json:"textfile" yaml:"textfile" mapstructure:"textfile"`
}

// EngineConfig holds settings for running projects.
type EngineConfig struct {
	// Workers bounds how many projects are solved at once (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// Config groups all configuration sections.
type Config struct {
	Solver  SolverConfig  `json:"solver" yaml:"solver" mapstructure:"solver"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Engine  EngineConfig  `json:"engine" yaml:"engine" mapstructure:"engine"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Solver: DefaultSolverConfig(),
		Store:  StoreConfig{DataDir: ".stoich", MaxResults: 20},
		Log:    LogConfig{Level: "info", Format: "text"},
		Engine: EngineConfig{Workers: 4},
	}
}
