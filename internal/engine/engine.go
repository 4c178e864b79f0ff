// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine runs projects end to end: precondition checks, reactant
// flows, the coefficient solve, product flows, metrics, logging, and
// persistence of the resulting run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pdiddy/stoich-engine/internal/flows"
	"github.com/pdiddy/stoich-engine/internal/logging"
	"github.com/pdiddy/stoich-engine/internal/metrics"
	"github.com/pdiddy/stoich-engine/internal/project"
	"github.com/pdiddy/stoich-engine/internal/solver"
	"github.com/pdiddy/stoich-engine/pkg/types"
)

// RunSaver persists a finished run and returns it with its ID and
// timestamp filled in.
type RunSaver interface {
	SaveRun(ctx context.Context, run types.Run) (types.Run, error)
}

// Engine runs projects through the solver.
type Engine struct {
	solver  *solver.Solver
	logger  logging.Logger
	metrics *metrics.Collector
	store   RunSaver
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default drops everything.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the collector that records each run.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// WithStore sets where finished runs are saved. Without one, runs are not
// persisted.
func WithStore(s RunSaver) Option {
	return func(e *Engine) { e.store = s }
}

// WithWorkers bounds how many projects RunAll solves at once. Values below
// 1 mean 1.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// New returns an Engine using the solver settings in cfg.
func New(cfg types.SolverConfig, opts ...Option) *Engine {
	e := &Engine{
		solver:  solver.New(cfg),
		logger:  logging.Noop(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

// Job names one project for RunAll.
type Job struct {
	Name    string
	Project types.Project
}

// Run solves p and returns the run record.
//
// A project that fails its preconditions yields a run whose Result has
// Success false and the reason in Error; that is not an error of Run.
// Run returns an error only when the context is done or the run cannot be
// saved.
func (e *Engine) Run(ctx context.Context, name string, p types.Project) (types.Run, error) {
	log := e.logger.With(logging.String("project", name))
	p = project.Normalize(p)
	run := types.Run{Name: name, Project: p}

	start := time.Now()
	if err := project.Preconditions(p); err != nil {
		run.Result = types.Result{Success: false, Error: err.Error()}
		e.metrics.ObserveSolve(run.Result, time.Since(start))
		log.Warn(ctx, "project not solvable", logging.Err(err))
		return e.save(ctx, run)
	}

	run.Project.Reactants = flows.ReactantFlows(p.Reactants, p.TotalReactantMass)

	res, err := e.solver.Solve(ctx, p.Reactants, p.Products, p.Reactions)
	elapsed := time.Since(start)
	if err != nil {
		return run, fmt.Errorf("solving %s: %w", name, err)
	}
	run.Result = res

	balance, err := flows.ProductFlowsFromMassBalance(p.Products, p.TotalReactantMass)
	if err != nil {
		log.Warn(ctx, "product flows unavailable", logging.Err(err))
	} else {
		run.Products = &balance
		run.Project.Products = flows.ApplyProductFlows(p.Products, balance)
		if balance.FractionWarning() {
			log.Warn(ctx, "product mole fractions do not sum to 1",
				logging.Float("fraction_sum", balance.FractionSum))
		}
	}

	e.metrics.ObserveSolve(res, elapsed)
	for i, o := range res.Outcomes {
		log.Debug(ctx, "reaction solved",
			logging.Int("reaction", i+1),
			logging.String("name", o.Name),
			logging.String("method", string(o.Method)),
			logging.Int("candidates", o.Candidates),
			logging.Any("converged", o.Converged),
			logging.Float("mass_balance_error", res.MassBalanceErrors[i]),
		)
	}
	log.Info(ctx, "project solved",
		logging.Int("components", len(res.ComponentNames)),
		logging.Int("reactions", len(res.Outcomes)),
		logging.Any("elapsed", elapsed),
	)

	return e.save(ctx, run)
}

func (e *Engine) save(ctx context.Context, run types.Run) (types.Run, error) {
	if e.store == nil {
		return run, nil
	}
	saved, err := e.store.SaveRun(ctx, run)
	if err != nil {
		return run, fmt.Errorf("saving run %s: %w", run.Name, err)
	}
	e.logger.Debug(ctx, "run saved", logging.String("id", saved.ID), logging.String("project", run.Name))
	return saved, nil
}

// RunAll runs every job with at most the configured number of workers.
// Runs are returned in job order. Jobs that fail leave their run with only
// the name and project set; their errors are joined into the returned
// error.
func (e *Engine) RunAll(ctx context.Context, jobs []Job) ([]types.Run, error) {
	runs := make([]types.Run, len(jobs))
	errs := make([]error, len(jobs))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				runs[i] = types.Run{Name: job.Name, Project: job.Project}
				errs[i] = fmt.Errorf("solving %s: %w", job.Name, ctx.Err())
				return
			}
			defer func() { <-sem }()
			runs[i], errs[i] = e.Run(ctx, job.Name, job.Project)
		}(i, job)
	}
	wg.Wait()

	return runs, errors.Join(errs...)
}
