// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/stoich-engine/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes the stored runs, newest first, to DataDir/export.yaml
// and returns the path written.
func (s *Store) ExportYAML(ctx context.Context, limit int) (string, error) {
	runs, err := s.exportRuns(ctx, limit)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "export.yaml")
	data, err := yaml.Marshal(runs)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the stored runs, newest first, to DataDir/export.json
// and returns the path written.
func (s *Store) ExportJSON(ctx context.Context, limit int) (string, error) {
	runs, err := s.exportRuns(ctx, limit)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "export.json")
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportRuns(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = exportLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, project, result, products
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	runs := []types.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}
