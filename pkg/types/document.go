// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for rowdoc.
// Document and its parts mirror the JSON written for each spreadsheet row;
// FieldStatus and RowResult describe how each row was converted.
package types

// RubricItem is one grading criterion paired with its operator name.
type RubricItem struct {
	// Criteria describes what the grader checks.
	Criteria string `json:"criteria" yaml:"criteria"`

	// Operator names the comparison used (e.g. "correctness").
	Operator string `json:"operator" yaml:"operator"`
}

// Metadata holds the auxiliary columns of a row. Every key is always present
// in the serialized form; absent columns become "" or an empty list.
type Metadata struct {
	Source      string   `json:"source" yaml:"source"`
	RowIndex    int      `json:"row_index" yaml:"row_index"`
	FilingLinks []string `json:"filing_links" yaml:"filing_links"`
	PassAt10    string   `json:"pass_at_10" yaml:"pass_at_10"`
	Mean        string   `json:"mean" yaml:"mean"`
	Variance    string   `json:"variance" yaml:"variance"`
}

// Document is the structured record produced from one CSV row and written
// to <id>.json. It is never modified after it is written.
type Document struct {
	// ID is the unique slug for this run; it is also the file's base name.
	ID string `json:"id" yaml:"id"`

	// Title is the question text, or "Question <n>" when the row has none.
	Title string `json:"title" yaml:"title"`

	// Description holds the step-by-step text.
	Description string `json:"description" yaml:"description"`

	Answer string `json:"answer" yaml:"answer"`

	// Rubric is never nil so that it serializes as [] rather than null.
	Rubric []RubricItem `json:"rubric" yaml:"rubric"`

	Metadata Metadata `json:"metadata" yaml:"metadata"`
}
