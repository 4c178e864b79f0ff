// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists solve runs in a local SQLite database and exports
// them to YAML or JSON.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

const dbFile = "runs.db"

// ErrRunNotFound is returned by GetRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

// Store manages the run history database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int

	// now is replaced in tests.
	now func() time.Time
}

// NewStore opens or creates the database at DataDir/runs.db and creates
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Concurrent engine workers share the store; one connection keeps
	// SQLite writers from tripping over each other's locks.
	db.SetMaxOpenConns(1)

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
		now:        time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT,
			project TEXT NOT NULL,
			result TEXT NOT NULL,
			products TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS reaction_outcomes (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT,
			method TEXT NOT NULL,
			mass_balance_error REAL NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_method ON reaction_outcomes(method)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores run with its per-reaction outcomes. An empty ID is
// replaced with a new UUID and a zero CreatedAt with the current time; the
// stored run is returned.
func (s *Store) SaveRun(ctx context.Context, run types.Run) (types.Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}

	projectJSON, err := json.Marshal(run.Project)
	if err != nil {
		return run, fmt.Errorf("encoding project: %w", err)
	}
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return run, fmt.Errorf("encoding result: %w", err)
	}
	var productsJSON sql.NullString
	if run.Products != nil {
		data, err := json.Marshal(run.Products)
		if err != nil {
			return run, fmt.Errorf("encoding product flows: %w", err)
		}
		productsJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return run, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, created_at, success, error, project, result, products)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.CreatedAt.Format(time.RFC3339Nano), run.Result.Success,
		run.Result.Error, string(projectJSON), string(resultJSON), productsJSON,
	)
	if err != nil {
		return run, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reaction_outcomes (run_id, position, name, method, mass_balance_error)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return run, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range run.Result.Outcomes {
		var massErr float64
		if i < len(run.Result.MassBalanceErrors) {
			massErr = run.Result.MassBalanceErrors[i]
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, o.Name, string(o.Method), massErr); err != nil {
			return run, fmt.Errorf("inserting outcome %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return run, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// GetRun loads the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (types.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, project, result, products FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// RunSummary is one row of ListRuns.
type RunSummary struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	CreatedAt    time.Time      `json:"created_at" yaml:"created_at"`
	Success      bool           `json:"success" yaml:"success"`
	Error        string         `json:"error,omitempty" yaml:"error,omitempty"`
	Reactions    int            `json:"reactions" yaml:"reactions"`
	Methods      map[string]int `json:"methods" yaml:"methods"`
	MaxMassError float64        `json:"max_mass_balance_error" yaml:"max_mass_balance_error"`
}

// ListRuns returns the most recent runs, newest first. A limit of zero
// uses the store default.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.name, r.created_at, r.success, COALESCE(r.error, ''),
			COUNT(o.position), COALESCE(MAX(o.mass_balance_error), 0)
		 FROM runs r
		 LEFT JOIN reaction_outcomes o ON o.run_id = r.id
		 GROUP BY r.id
		 ORDER BY r.created_at DESC, r.id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			sum     RunSummary
			created string
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &created, &sum.Success, &sum.Error,
			&sum.Reactions, &sum.MaxMassError); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing run time %q: %w", created, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	rows.Close()

	for i := range out {
		methods, err := s.methodCounts(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Methods = methods
	}
	return out, nil
}

func (s *Store) methodCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT method, COUNT(*) FROM reaction_outcomes WHERE run_id = ? GROUP BY method`, runID)
	if err != nil {
		return nil, fmt.Errorf("counting methods: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			method string
			n      int
		)
		if err := rows.Scan(&method, &n); err != nil {
			return nil, fmt.Errorf("scanning method count: %w", err)
		}
		counts[method] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (types.Run, error) {
	var (
		run                     types.Run
		created                 string
		projectJSON, resultJSON string
		productsJSON            sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Name, &created, &projectJSON, &resultJSON, &productsJSON); err != nil {
		return types.Run{}, err
	}

	var err error
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return types.Run{}, fmt.Errorf("parsing run time %q: %w", created, err)
	}
	if err := json.Unmarshal([]byte(projectJSON), &run.Project); err != nil {
		return types.Run{}, fmt.Errorf("decoding project of run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &run.Result); err != nil {
		return types.Run{}, fmt.Errorf("decoding result of run %s: %w", run.ID, err)
	}
	if productsJSON.Valid {
		run.Products = &types.ProductBalance{}
		if err := json.Unmarshal([]byte(productsJSON.String), run.Products); err != nil {
			return types.Run{}, fmt.Errorf("decoding product flows of run %s: %w", run.ID, err)
		}
	}
	return run, nil
}
