// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog indexes a directory of converted documents in a local
// SQLite database so they can be searched and exported without rereading
// every JSON file.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/rowdoc/pkg/types"
)

const (
	dbFile = "rowdoc.db"

	defaultMaxResults = 20
)

// ErrNotFound is returned when a document id is not in the catalog.
var ErrNotFound = errors.New("document not found")

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	catalogDir string
	maxResults int
}

// NewStore opens or creates the catalog database at catalogDir/rowdoc.db
// and creates the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.CatalogDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.CatalogDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		catalogDir: cfg.CatalogDir,
		maxResults: maxResults,
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
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			answer TEXT,
			source TEXT,
			row_index INTEGER,
			filing_links TEXT,
			pass_at_10 TEXT,
			mean TEXT,
			variance TEXT,
			path TEXT,
			file_mod_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS rubric_items (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			criteria TEXT,
			operator TEXT,
			PRIMARY KEY (document_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rubric_operator ON rubric_items(operator)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from a catalog indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int

	// Removed counts catalog entries dropped because their file is gone.
	Removed int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads every *.json document in docsDir and stores it. Files whose
// modification time matches the stored one are skipped. A document whose id
// does not match its file name is counted as failed. Entries whose file no
// longer exists are removed after the scan.
func (s *Store) Ingest(ctx context.Context, docsDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(docsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading documents directory %s: %w", docsDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		path := filepath.Join(docsDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM documents WHERE id = ?`, id,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", id)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		doc, err := readDocument(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		if doc.ID != id {
			fmt.Fprintf(w, "failed  %s: document id %q does not match file name\n", id, doc.ID)
			summary.Failed++
			continue
		}

		if err := s.put(ctx, doc, path, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d criteria)\n", id, len(doc.Rubric))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d criteria)\n", id, len(doc.Rubric))
			summary.Indexed++
		}
	}

	removed, err := s.prune(ctx, w)
	if err != nil {
		return summary, err
	}
	summary.Removed = removed

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d, removed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.Removed)

	return summary, nil
}

// prune deletes documents whose source file has been removed.
func (s *Store) prune(ctx context.Context, w io.Writer) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, path FROM documents`)
	if err != nil {
		return 0, fmt.Errorf("listing catalogued documents: %w", err)
	}
	var stale []string
	for rows.Next() {
		var (
			id   string
			path sql.NullString
		)
		if err := rows.Scan(&id, &path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning document path: %w", err)
		}
		if _, err := os.Stat(path.String); errors.Is(err, os.ErrNotExist) {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating documents: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rubric_items WHERE document_id = ?`, id); err != nil {
			return 0, fmt.Errorf("deleting rubric of %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("deleting %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing removals: %w", err)
	}

	for _, id := range stale {
		fmt.Fprintf(w, "removed %s (file deleted)\n", id)
	}
	return len(stale), nil
}

// put replaces the stored copy of doc and its rubric in one transaction.
func (s *Store) put(ctx context.Context, doc types.Document, path, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rubric_items WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("deleting old rubric: %w", err)
	}

	linksJSON, _ := json.Marshal(doc.Metadata.FilingLinks)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, description, answer, source, row_index,
			filing_links, pass_at_10, mean, variance, path, file_mod_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, description=excluded.description, answer=excluded.answer,
			source=excluded.source, row_index=excluded.row_index,
			filing_links=excluded.filing_links, pass_at_10=excluded.pass_at_10,
			mean=excluded.mean, variance=excluded.variance,
			path=excluded.path, file_mod_time=excluded.file_mod_time`,
		doc.ID, doc.Title, doc.Description, doc.Answer,
		doc.Metadata.Source, doc.Metadata.RowIndex, string(linksJSON),
		doc.Metadata.PassAt10, doc.Metadata.Mean, doc.Metadata.Variance,
		path, modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rubric_items (document_id, position, criteria, operator) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range doc.Rubric {
		if _, err := stmt.ExecContext(ctx, doc.ID, i, item.Criteria, item.Operator); err != nil {
			return fmt.Errorf("inserting criterion %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func readDocument(path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, err
	}
	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return types.Document{}, fmt.Errorf("parse error: %w", err)
	}
	return doc, nil
}
