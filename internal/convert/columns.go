// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"strings"
	"unicode"
)

// column identifies a known spreadsheet column.
type column int

const (
	colQuestion column = iota
	colAnswer
	colDescription
	colRubric
	colSource
	colRowIndex
	colFilingLinks
	colPassAt10
	colMean
	colVariance
	numColumns
)

// columnNames are the canonical header names, used in warnings.
var columnNames = [numColumns]string{
	colQuestion:    "Question",
	colAnswer:      "Answer",
	colDescription: "Steps",
	colRubric:      "Rubric",
	colSource:      "Source",
	colRowIndex:    "Row Index",
	colFilingLinks: "Filing Links",
	colPassAt10:    "Pass@10",
	colMean:        "Mean",
	colVariance:    "Variance",
}

// columnAliases lists accepted headers per column, already normalized.
var columnAliases = [numColumns][]string{
	colQuestion:    {"question", "title", "prompt"},
	colAnswer:      {"answer"},
	colDescription: {"steps", "description", "stepbystep"},
	colRubric:      {"rubric", "rubrics"},
	colSource:      {"source"},
	colRowIndex:    {"rowindex", "row", "rownumber"},
	colFilingLinks: {"filinglinks", "filinglink", "filings", "links"},
	colPassAt10:    {"pass10", "passat10"},
	colMean:        {"mean"},
	colVariance:    {"variance"},
}

// columnMap holds the record position of each known column, or -1.
type columnMap [numColumns]int

// mapColumns matches header cells against the known columns. Matching
// ignores case, spaces and punctuation. The first matching header wins.
func mapColumns(header []string) columnMap {
	var m columnMap
	for c := range m {
		m[c] = -1
	}

	lookup := make(map[string]column)
	for c, aliases := range columnAliases {
		for _, a := range aliases {
			lookup[a] = column(c)
		}
	}

	for i, h := range header {
		c, ok := lookup[normalizeHeader(h)]
		if ok && m[c] < 0 {
			m[c] = i
		}
	}
	return m
}

// get returns the trimmed value of column c, or "" when the column is
// absent from the header or the record is short.
func (m columnMap) get(record []string, c column) string {
	i := m[c]
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// missing returns the canonical names of columns absent from the header.
func (m columnMap) missing() []string {
	var names []string
	for c, i := range m {
		if i < 0 {
			names = append(names, columnNames[c])
		}
	}
	return names
}

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// blank reports whether every field of record is empty after trimming.
func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
