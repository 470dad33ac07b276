// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FieldStatus records how a parsed field was obtained.
type FieldStatus string

const (
	// FieldOK means the column held a value that parsed cleanly.
	FieldOK FieldStatus = "ok"
	// FieldEmpty means the column was blank or absent; the default is expected.
	FieldEmpty FieldStatus = "empty"
	// FieldDefaulted means the column held a value that could not be parsed
	// and the empty default was substituted.
	FieldDefaulted FieldStatus = "defaulted"
)

// FieldResult carries a parsed value together with its status. Reason is
// set only when Status is FieldDefaulted.
type FieldResult[T any] struct {
	Value  T
	Status FieldStatus
	Reason string
}

// Degraded reports whether the value is a substitute for unparseable input.
func (r FieldResult[T]) Degraded() bool {
	return r.Status == FieldDefaulted
}

// RowStatus is the outcome of converting one CSV row.
type RowStatus string

const (
	RowWritten RowStatus = "written"
	RowSkipped RowStatus = "skipped"
	RowFailed  RowStatus = "failed"
)

// DegradedField names a field that fell back to its default, and why.
type DegradedField struct {
	Field  string `json:"field" yaml:"field"`
	Reason string `json:"reason" yaml:"reason"`
}

// RowResult describes what happened to a single CSV data row.
type RowResult struct {
	// RowIndex is the 1-based position of the row among the data rows.
	RowIndex int `json:"row_index" yaml:"row_index"`

	Status RowStatus `json:"status" yaml:"status"`

	// ID and Path are empty for skipped and failed rows.
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	Degraded []DegradedField `json:"degraded,omitempty" yaml:"degraded,omitempty"`

	// Error records a per-row parse failure. Empty otherwise.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
