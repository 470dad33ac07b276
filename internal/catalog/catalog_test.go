// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rowdoc/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	docsDir := filepath.Join(tmpDir, "output")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		t.Fatal(err)
	}

	store, err := NewStore(types.CatalogConfig{
		CatalogDir: filepath.Join(tmpDir, "catalog"),
		MaxResults: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, docsDir
}

func writeDoc(t *testing.T, docsDir string, doc types.Document) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docsDir, doc.ID+".json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func sampleDocs() []types.Document {
	return []types.Document{
		{
			ID: "calculate-x", Title: "Calculate X?", Answer: "42",
			Description: "Apply the formula",
			Rubric: []types.RubricItem{
				{Criteria: "uses correct formula", Operator: "correctness"},
				{Criteria: "shows work", Operator: "presence"},
			},
			Metadata: types.Metadata{
				Source: "google-sheets", RowIndex: 1,
				FilingLinks: []string{"https://sec.example/10k"},
				PassAt10:    "0.9", Mean: "0.7", Variance: "0.02",
			},
		},
		{
			ID: "net-margin", Title: "What is the net margin?", Answer: "12%",
			Rubric: []types.RubricItem{
				{Criteria: "states percentage", Operator: "correctness"},
			},
			Metadata: types.Metadata{Source: "google-sheets", RowIndex: 2, FilingLinks: []string{}},
		},
		{
			ID: "revenue_growth", Title: "Revenue growth 100%", Answer: "doubled",
			Rubric:   []types.RubricItem{},
			Metadata: types.Metadata{Source: "manual", RowIndex: 3, FilingLinks: []string{}},
		},
	}
}

func ingestSamples(t *testing.T) (*Store, string) {
	t.Helper()
	store, docsDir := testSetup(t)
	for _, d := range sampleDocs() {
		writeDoc(t, docsDir, d)
	}
	if _, err := store.Ingest(context.Background(), docsDir, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	return store, docsDir
}

// --- store ---

func TestNewStoreCreatesDBFile(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewStore(types.CatalogConfig{CatalogDir: filepath.Join(tmpDir, "catalog")})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "catalog", dbFile)); err != nil {
		t.Errorf("expected database file: %v", err)
	}
	if store.maxResults != defaultMaxResults {
		t.Errorf("maxResults = %d, want %d", store.maxResults, defaultMaxResults)
	}
}

func TestIngest(t *testing.T) {
	store, docsDir := testSetup(t)
	for _, d := range sampleDocs() {
		writeDoc(t, docsDir, d)
	}
	if err := os.WriteFile(filepath.Join(docsDir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	summary, err := store.Ingest(context.Background(), docsDir, &log)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Indexed != 3 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 3 indexed", summary)
	}
	if summary.Total() != 3 {
		t.Errorf("total = %d, want 3", summary.Total())
	}
	if !strings.Contains(log.String(), "indexing calculate-x (2 criteria)") {
		t.Errorf("log missing indexing line: %s", log.String())
	}
}

func TestIngestRoundTripsDocument(t *testing.T) {
	store, _ := ingestSamples(t)

	want := sampleDocs()[0]
	got, err := store.Get(context.Background(), "calculate-x")
	if err != nil {
		t.Fatal(err)
	}

	wantJSON, _ := json.Marshal(want)
	gotJSON, _ := json.Marshal(got)
	if string(wantJSON) != string(gotJSON) {
		t.Errorf("document mismatch:\nwant %s\ngot  %s", wantJSON, gotJSON)
	}
}

func TestIngestSkipsUnchanged(t *testing.T) {
	store, docsDir := ingestSamples(t)

	summary, err := store.Ingest(context.Background(), docsDir, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 3 || summary.Indexed != 0 {
		t.Errorf("summary = %+v, want 3 skipped", summary)
	}
}

func TestIngestUpdatesChanged(t *testing.T) {
	store, docsDir := ingestSamples(t)

	doc := sampleDocs()[1]
	doc.Answer = "15%"
	doc.Rubric = []types.RubricItem{}
	writeDoc(t, docsDir, doc)
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(docsDir, doc.ID+".json"), future, future); err != nil {
		t.Fatal(err)
	}

	summary, err := store.Ingest(context.Background(), docsDir, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 || summary.Skipped != 2 {
		t.Errorf("summary = %+v, want 1 updated, 2 skipped", summary)
	}

	got, err := store.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Answer != "15%" {
		t.Errorf("answer = %q, want 15%%", got.Answer)
	}
	if len(got.Rubric) != 0 {
		t.Errorf("rubric = %v, want old criteria removed", got.Rubric)
	}
}

func TestIngestRejectsBadFiles(t *testing.T) {
	store, docsDir := testSetup(t)

	if err := os.WriteFile(filepath.Join(docsDir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	mismatched := sampleDocs()[0]
	mismatched.ID = "other-id"
	data, _ := json.Marshal(mismatched)
	if err := os.WriteFile(filepath.Join(docsDir, "renamed.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	summary, err := store.Ingest(context.Background(), docsDir, &log)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 2 {
		t.Errorf("failed = %d, want 2", summary.Failed)
	}
	if !strings.Contains(log.String(), "does not match file name") {
		t.Errorf("log missing id mismatch: %s", log.String())
	}
}

func TestIngestRemovesDeletedFiles(t *testing.T) {
	store, docsDir := ingestSamples(t)

	if err := os.Remove(filepath.Join(docsDir, "net-margin.json")); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	summary, err := store.Ingest(context.Background(), docsDir, &log)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Removed != 1 || summary.Skipped != 2 {
		t.Errorf("summary = %+v, want 1 removed, 2 skipped", summary)
	}
	if !strings.Contains(log.String(), "removed net-margin") {
		t.Errorf("log missing removal line: %s", log.String())
	}

	if _, err := store.Get(context.Background(), "net-margin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	docs, err := store.Search(context.Background(), QueryOptions{Operator: "correctness"})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].ID != "calculate-x" {
		t.Errorf("search after delete = %+v, want only calculate-x", docs)
	}
	counts, err := store.Operators(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts["correctness"] != 1 {
		t.Errorf("correctness count = %d, want 1 after rubric removal", counts["correctness"])
	}
}

func TestIngestMissingDirectory(t *testing.T) {
	store, docsDir := testSetup(t)
	_, err := store.Ingest(context.Background(), filepath.Join(docsDir, "nope"), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

// --- search ---

func TestSearch(t *testing.T) {
	store, _ := ingestSamples(t)

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{name: "all documents in row order", opts: QueryOptions{}, want: []string{"calculate-x", "net-margin", "revenue_growth"}},
		{name: "title substring", opts: QueryOptions{Query: "margin"}, want: []string{"net-margin"}},
		{name: "description substring", opts: QueryOptions{Query: "formula"}, want: []string{"calculate-x"}},
		{name: "case insensitive", opts: QueryOptions{Query: "CALCULATE"}, want: []string{"calculate-x"}},
		{name: "percent is literal", opts: QueryOptions{Query: "100%"}, want: []string{"revenue_growth"}},
		{name: "operator filter", opts: QueryOptions{Operator: "correctness"}, want: []string{"calculate-x", "net-margin"}},
		{name: "operator and query", opts: QueryOptions{Operator: "presence", Query: "margin"}, want: nil},
		{name: "source filter", opts: QueryOptions{Source: "manual"}, want: []string{"revenue_growth"}},
		{name: "max results", opts: QueryOptions{MaxResults: 1}, want: []string{"calculate-x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := store.Search(context.Background(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, d := range docs {
				got = append(got, d.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchLoadsRubricInOrder(t *testing.T) {
	store, _ := ingestSamples(t)

	docs, err := store.Search(context.Background(), QueryOptions{Query: "Calculate"})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || len(docs[0].Rubric) != 2 {
		t.Fatalf("docs = %+v, want one document with two criteria", docs)
	}
	if docs[0].Rubric[0].Operator != "correctness" || docs[0].Rubric[1].Operator != "presence" {
		t.Errorf("rubric order = %+v", docs[0].Rubric)
	}
}

func TestGetNotFound(t *testing.T) {
	store, _ := testSetup(t)
	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOperators(t *testing.T) {
	store, _ := ingestSamples(t)

	counts, err := store.Operators(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts["correctness"] != 2 || counts["presence"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	if !(QueryOptions{MaxResults: 5}).IsEmpty() {
		t.Error("MaxResults alone should be empty")
	}
	if (QueryOptions{Operator: "x"}).IsEmpty() {
		t.Error("operator filter should not be empty")
	}
}

// --- export ---

func TestExportYAML(t *testing.T) {
	store, _ := ingestSamples(t)

	path, err := store.ExportYAML(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var docs []types.Document
	if err := yaml.Unmarshal(data, &docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Errorf("exported %d documents, want 3", len(docs))
	}
}

func TestExportJSONFiltered(t *testing.T) {
	store, _ := ingestSamples(t)

	path, err := store.ExportJSON(context.Background(), QueryOptions{Source: "manual"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var docs []types.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].ID != "revenue_growth" {
		t.Errorf("docs = %+v, want revenue_growth only", docs)
	}
}

func TestExportEmptyCatalog(t *testing.T) {
	store, _ := testSetup(t)

	path, err := store.ExportJSON(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("export = %s, want []", data)
	}
}
