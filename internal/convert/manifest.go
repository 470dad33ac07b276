// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rowdoc/pkg/types"
)

// Manifest summarizes a conversion run for later inspection.
type Manifest struct {
	RunID       string            `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	Input       string            `json:"input" yaml:"input"`
	OutputDir   string            `json:"output_dir" yaml:"output_dir"`
	Written     int               `json:"written" yaml:"written"`
	Skipped     int               `json:"skipped" yaml:"skipped"`
	Failed      int               `json:"failed" yaml:"failed"`
	Degraded    int               `json:"degraded" yaml:"degraded"`
	Rows        []types.RowResult `json:"rows" yaml:"rows"`
}

// NewManifest builds a Manifest for result under a fresh run id.
func NewManifest(cfg types.ConvertConfig, result BatchResult) Manifest {
	cfg = cfg.WithDefaults()
	return Manifest{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Input:       cfg.InputPath,
		OutputDir:   cfg.OutputDir,
		Written:     result.Written,
		Skipped:     result.Skipped,
		Failed:      result.Failed,
		Degraded:    result.Degraded,
		Rows:        result.Rows,
	}
}

// WriteManifest writes m as YAML to path, creating parent directories.
func WriteManifest(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a manifest previously written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}
