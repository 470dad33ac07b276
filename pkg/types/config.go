// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

const (
	// DefaultInputPath is the spreadsheet export read when no input is given.
	DefaultInputPath = "Please Convert - Sheet1.csv"

	// DefaultOutputDir receives one JSON file per converted row.
	DefaultOutputDir = "output"

	// DefaultSlugMaxLength bounds the length of generated slugs, in runes.
	DefaultSlugMaxLength = 50

	// DefaultSource is written to metadata.source when the row has no Source column value.
	DefaultSource = "google-sheets"

	// DefaultProgressEvery is how many processed rows pass between progress lines.
	DefaultProgressEvery = 10
)

// ConvertConfig holds settings for a conversion run.
type ConvertConfig struct {
	// InputPath is the CSV file to read.
	InputPath string `json:"input" yaml:"input"`

	// OutputDir is the directory that receives the JSON documents.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// SlugMaxLength bounds generated slugs (default 50).
	SlugMaxLength int `json:"slug_max_length" yaml:"slug_max_length"`

	// Source is the default metadata.source value (default "google-sheets").
	Source string `json:"source" yaml:"source"`

	// ProgressEvery controls the progress marker interval (default 10).
	ProgressEvery int `json:"progress_every" yaml:"progress_every"`

	// ManifestPath, when set, receives a YAML summary of the run.
	ManifestPath string `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

// WithDefaults returns a copy of c with zero-valued fields replaced by defaults.
func (c ConvertConfig) WithDefaults() ConvertConfig {
	if c.InputPath == "" {
		c.InputPath = DefaultInputPath
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.SlugMaxLength <= 0 {
		c.SlugMaxLength = DefaultSlugMaxLength
	}
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = DefaultProgressEvery
	}
	return c
}

// CatalogConfig holds settings for the document catalog.
type CatalogConfig struct {
	// CatalogDir holds the SQLite database and exports.
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
