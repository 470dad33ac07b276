// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rowdoc/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes the catalogued documents matching opts to
// catalogDir/export.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	docs, err := s.exportDocuments(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.catalogDir, "export.yaml")
	data, err := yaml.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the catalogued documents matching opts to
// catalogDir/export.json and returns the path.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	docs, err := s.exportDocuments(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.catalogDir, "export.json")
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportDocuments(ctx context.Context, opts QueryOptions) ([]types.Document, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	docs, err := s.Search(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if docs == nil {
		docs = []types.Document{}
	}
	return docs, nil
}
