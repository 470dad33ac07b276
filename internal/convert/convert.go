// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns spreadsheet rows into JSON documents, one file per
// row. A run is a single sequential pass over the CSV: blank rows are
// skipped, malformed fields fall back to empty defaults and are reported on
// the row's result, and only setup or write failures abort the run.
package convert

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/rowdoc/internal/slug"
	"github.com/pdiddy/rowdoc/pkg/types"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("input has no header row")

// BatchResult holds the outcome of a conversion run.
type BatchResult struct {
	Written  int
	Skipped  int
	Failed   int
	Degraded int
	Rows     []types.RowResult
}

// Total returns the number of data rows read.
func (r BatchResult) Total() int {
	return r.Written + r.Skipped + r.Failed
}

// HasFailures reports whether any row could not be parsed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// DegradedRows returns the written rows that had at least one field
// replaced by its default.
func (r BatchResult) DegradedRows() []types.RowResult {
	var rows []types.RowResult
	for _, row := range r.Rows {
		if len(row.Degraded) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// Converter runs the row-to-document transformation. It owns the slug
// registry for the run, so a Converter should be used for a single run.
type Converter struct {
	cfg      types.ConvertConfig
	registry *slug.Registry
	logger   *zap.Logger
}

// New creates a Converter. A nil registry is replaced by a fresh one and a
// nil logger by a no-op logger.
func New(cfg types.ConvertConfig, registry *slug.Registry, logger *zap.Logger) *Converter {
	if registry == nil {
		registry = slug.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		cfg:      cfg.WithDefaults(),
		registry: registry,
		logger:   logger,
	}
}

// Run reads the configured CSV and writes one JSON document per non-blank
// row into the output directory, printing progress and a summary to w.
// A missing or unreadable input, a missing header, or a failure to create
// the output directory or write a document returns an error; the result
// then covers the rows handled before the failure.
func (c *Converter) Run(ctx context.Context, w io.Writer) (BatchResult, error) {
	f, err := os.Open(c.cfg.InputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return BatchResult{}, fmt.Errorf("input file %s not found: %w", c.cfg.InputPath, err)
		}
		return BatchResult{}, fmt.Errorf("opening input file %s: %w", c.cfg.InputPath, err)
	}
	defer f.Close()

	if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating output directory %s: %w", c.cfg.OutputDir, err)
	}

	fmt.Fprintf(w, "Reading CSV: %s\n", c.cfg.InputPath)
	fmt.Fprintf(w, "Output directory: %s\n", c.cfg.OutputDir)

	result, err := c.convert(ctx, newCSVReader(f), w)
	fmt.Fprintf(w, "\nBatch summary: %d written, %d skipped, %d failed, %d degraded (total: %d)\n",
		result.Written, result.Skipped, result.Failed, result.Degraded, result.Total())
	return result, err
}

func (c *Converter) convert(ctx context.Context, r *csv.Reader, w io.Writer) (BatchResult, error) {
	var result BatchResult

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return result, fmt.Errorf("reading %s: %w", c.cfg.InputPath, ErrNoHeader)
	}
	if err != nil {
		return result, fmt.Errorf("reading header of %s: %w", c.cfg.InputPath, err)
	}

	cols := mapColumns(header)
	if missing := cols.missing(); len(missing) > 0 {
		c.logger.Warn("columns missing from header, using empty defaults",
			zap.Strings("columns", missing))
	}

	for ordinal := 1; ; ordinal++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return result, fmt.Errorf("reading %s: %w", c.cfg.InputPath, err)
			}
			c.logger.Warn("row could not be parsed", zap.Int("row", ordinal), zap.Error(err))
			fmt.Fprintf(w, "failed:  row %d (%v)\n", ordinal, err)
			result.Failed++
			result.Rows = append(result.Rows, types.RowResult{
				RowIndex: ordinal,
				Status:   types.RowFailed,
				Error:    err.Error(),
			})
			continue
		}

		if blank(record) {
			c.logger.Debug("skipping blank row", zap.Int("row", ordinal))
			result.Skipped++
			result.Rows = append(result.Rows, types.RowResult{RowIndex: ordinal, Status: types.RowSkipped})
			continue
		}

		doc, degraded := c.buildDocument(record, cols, ordinal)
		path := filepath.Join(c.cfg.OutputDir, doc.ID+".json")
		if err := writeDocument(path, doc); err != nil {
			return result, fmt.Errorf("writing %s: %w", path, err)
		}

		for _, d := range degraded {
			c.logger.Warn("field defaulted",
				zap.Int("row", ordinal),
				zap.String("id", doc.ID),
				zap.String("field", d.Field),
				zap.String("reason", d.Reason))
		}
		c.logger.Debug("wrote document", zap.Int("row", ordinal), zap.String("path", path))

		result.Written++
		if len(degraded) > 0 {
			result.Degraded++
		}
		result.Rows = append(result.Rows, types.RowResult{
			RowIndex: ordinal,
			Status:   types.RowWritten,
			ID:       doc.ID,
			Path:     path,
			Degraded: degraded,
		})

		if result.Written%c.cfg.ProgressEvery == 0 {
			fmt.Fprintf(w, "Processed %d rows...\n", result.Written)
		}
	}

	return result, nil
}

// buildDocument maps one non-blank record to a Document and claims its id
// from the registry. It returns the fields that fell back to defaults.
func (c *Converter) buildDocument(record []string, cols columnMap, ordinal int) (types.Document, []types.DegradedField) {
	var degraded []types.DegradedField

	rowIndex := ParseRowIndex(cols.get(record, colRowIndex), ordinal)
	if rowIndex.Degraded() {
		degraded = append(degraded, types.DegradedField{Field: "row_index", Reason: rowIndex.Reason})
	}

	rubric := ParseRubric(cols.get(record, colRubric))
	if rubric.Degraded() {
		degraded = append(degraded, types.DegradedField{Field: "rubric", Reason: rubric.Reason})
	}

	question := cols.get(record, colQuestion)
	title := question
	base := slug.Make(question, c.cfg.SlugMaxLength)
	if question == "" {
		title = fmt.Sprintf("Question %d", rowIndex.Value)
		base = fmt.Sprintf("row-%d", rowIndex.Value)
	}

	source := cols.get(record, colSource)
	if source == "" {
		source = c.cfg.Source
	}

	doc := types.Document{
		ID:          c.registry.Claim(base),
		Title:       title,
		Description: cols.get(record, colDescription),
		Answer:      cols.get(record, colAnswer),
		Rubric:      rubric.Value,
		Metadata: types.Metadata{
			Source:      source,
			RowIndex:    rowIndex.Value,
			FilingLinks: SplitLinks(cols.get(record, colFilingLinks)),
			PassAt10:    cols.get(record, colPassAt10),
			Mean:        cols.get(record, colMean),
			Variance:    cols.get(record, colVariance),
		},
	}
	return doc, degraded
}
