// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/rowdoc/pkg/types"
)

// QueryOptions holds parameters for catalog searches.
type QueryOptions struct {
	// Query is matched as a substring of title, description and answer.
	Query string

	// Operator keeps documents with at least one criterion using it.
	Operator string

	// Source filters by metadata.source.
	Source string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Operator == "" && q.Source == ""
}

const documentColumns = `d.id, d.title, d.description, d.answer, d.source, d.row_index,
	d.filing_links, d.pass_at_10, d.mean, d.variance`

// Search returns documents matching opts ordered by row index, then id.
// An empty QueryOptions returns every document up to the result limit.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]types.Document, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + documentColumns + ` FROM documents d WHERE 1=1`)

	if opts.Query != "" {
		pattern := "%" + escapeLike(opts.Query) + "%"
		qb.WriteString(` AND (d.title LIKE ? ESCAPE '\' OR d.description LIKE ? ESCAPE '\' OR d.answer LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	if opts.Operator != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM rubric_items r WHERE r.document_id = d.id AND r.operator = ?)`)
		args = append(args, opts.Operator)
	}

	if opts.Source != "" {
		qb.WriteString(` AND d.source = ?`)
		args = append(args, opts.Source)
	}

	qb.WriteString(` ORDER BY d.row_index, d.id LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	for i := range docs {
		rubric, err := s.loadRubric(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		docs[i].Rubric = rubric
	}
	return docs, nil
}

// Get returns the document with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents d WHERE d.id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Document{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Document{}, err
	}

	doc.Rubric, err = s.loadRubric(ctx, id)
	if err != nil {
		return types.Document{}, err
	}
	return doc, nil
}

// Operators returns each rubric operator with the number of criteria using it.
func (s *Store) Operators(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT operator, count(*) FROM rubric_items GROUP BY operator`)
	if err != nil {
		return nil, fmt.Errorf("counting operators: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			op sql.NullString
			n  int
		)
		if err := rows.Scan(&op, &n); err != nil {
			return nil, fmt.Errorf("scanning operator: %w", err)
		}
		counts[op.String] += n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (types.Document, error) {
	var (
		doc       types.Document
		desc      sql.NullString
		answer    sql.NullString
		source    sql.NullString
		linksJSON sql.NullString
		passAt10  sql.NullString
		mean      sql.NullString
		variance  sql.NullString
	)
	err := row.Scan(&doc.ID, &doc.Title, &desc, &answer, &source, &doc.Metadata.RowIndex,
		&linksJSON, &passAt10, &mean, &variance)
	if errors.Is(err, sql.ErrNoRows) {
		return doc, err
	}
	if err != nil {
		return doc, fmt.Errorf("scanning row: %w", err)
	}

	doc.Description = desc.String
	doc.Answer = answer.String
	doc.Metadata.Source = source.String
	doc.Metadata.PassAt10 = passAt10.String
	doc.Metadata.Mean = mean.String
	doc.Metadata.Variance = variance.String
	doc.Metadata.FilingLinks = []string{}
	if linksJSON.Valid {
		json.Unmarshal([]byte(linksJSON.String), &doc.Metadata.FilingLinks)
	}
	if doc.Metadata.FilingLinks == nil {
		doc.Metadata.FilingLinks = []string{}
	}
	return doc, nil
}

func (s *Store) loadRubric(ctx context.Context, id string) ([]types.RubricItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT criteria, operator FROM rubric_items WHERE document_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading rubric for %s: %w", id, err)
	}
	defer rows.Close()

	rubric := []types.RubricItem{}
	for rows.Next() {
		var criteria, operator sql.NullString
		if err := rows.Scan(&criteria, &operator); err != nil {
			return nil, fmt.Errorf("scanning criterion: %w", err)
		}
		rubric = append(rubric, types.RubricItem{Criteria: criteria.String, Operator: operator.String})
	}
	return rubric, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
