// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records solve statistics as Prometheus collectors.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

// Collector bundles the solve metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Solves           *prometheus.CounterVec
	Reactions        *prometheus.CounterVec
	SearchCandidates prometheus.Counter
	SolveDuration    prometheus.Histogram
}

// NewCollector registers the solve metrics against reg, defaulting to the
// global registry when reg is nil. Registering twice on one registry
// returns the collectors already there.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	solves, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stoich_solves_total",
		Help: "Projects run through the solver, labeled by outcome (success or failure).",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	reactions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stoich_reactions_total",
		Help: "Reaction columns produced, labeled by method (skipped, algebraic, optimization).",
	}, []string{"method"}))
	if err != nil {
		return nil, err
	}

	candidates, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stoich_search_candidates_total",
		Help: "Integer coefficient vectors examined by the algebraic search.",
	}))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "stoich_solve_duration_seconds",
		Help:    "Wall time of one project solve in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		Solves:           solves,
		Reactions:        reactions,
		SearchCandidates: candidates,
		SolveDuration:    duration,
	}, nil
}

// ObserveSolve records one project run. A nil Collector ignores the call.
func (c *Collector) ObserveSolve(res types.Result, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := "success"
	if !res.Success {
		outcome = "failure"
	}
	c.Solves.WithLabelValues(outcome).Inc()
	c.SolveDuration.Observe(elapsed.Seconds())
	for _, o := range res.Outcomes {
		c.Reactions.WithLabelValues(string(o.Method)).Inc()
		c.SearchCandidates.Add(float64(o.Candidates))
	}
}

// WriteTextfile writes every metric of the collector's gatherer to path in
// the Prometheus text format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
