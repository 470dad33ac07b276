// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newCSVReader wraps r in a CSV reader that tolerates spreadsheet exports:
// a leading byte order mark is stripped (UTF-16 input with a BOM is
// transcoded), invalid UTF-8 is replaced, rows may have differing field
// counts, and stray quotes inside unquoted fields are kept.
func newCSVReader(r io.Reader) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}
