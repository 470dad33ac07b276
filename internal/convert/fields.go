// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/rowdoc/pkg/types"
)

// ParseRubric decodes the rubric column: a JSON array of objects with
// "criteria" and "operator" keys. A single object is accepted as a
// one-element rubric. Blank input yields an empty rubric with FieldEmpty;
// input that does not decode yields an empty rubric with FieldDefaulted.
// The returned Value is never nil.
func ParseRubric(text string) types.FieldResult[[]types.RubricItem] {
	text = strings.TrimSpace(text)
	empty := []types.RubricItem{}
	if text == "" || text == "null" {
		return types.FieldResult[[]types.RubricItem]{Value: empty, Status: types.FieldEmpty}
	}

	var items []types.RubricItem
	err := json.Unmarshal([]byte(text), &items)
	if err != nil && strings.HasPrefix(text, "{") {
		var item types.RubricItem
		if objErr := json.Unmarshal([]byte(text), &item); objErr == nil {
			items, err = []types.RubricItem{item}, nil
		}
	}
	if err != nil {
		return types.FieldResult[[]types.RubricItem]{
			Value:  empty,
			Status: types.FieldDefaulted,
			Reason: fmt.Sprintf("decoding rubric JSON: %v", err),
		}
	}
	if items == nil {
		items = empty
	}
	return types.FieldResult[[]types.RubricItem]{Value: items, Status: types.FieldOK}
}

// ParseRowIndex reads the row index column. Integral spreadsheet numbers
// such as "12.0" are accepted. Blank input falls back to ordinal with
// FieldEmpty; anything else unparseable falls back to ordinal with
// FieldDefaulted.
func ParseRowIndex(text string, ordinal int) types.FieldResult[int] {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.FieldResult[int]{Value: ordinal, Status: types.FieldEmpty}
	}
	if n, err := strconv.Atoi(text); err == nil {
		return types.FieldResult[int]{Value: n, Status: types.FieldOK}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
		return types.FieldResult[int]{Value: int(f), Status: types.FieldOK}
	}
	return types.FieldResult[int]{
		Value:  ordinal,
		Status: types.FieldDefaulted,
		Reason: fmt.Sprintf("row index %q is not an integer", text),
	}
}

// SplitLinks splits a filing links cell on commas, semicolons and line
// breaks, trimming each entry and dropping empty ones. The result is never nil.
func SplitLinks(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	links := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			links = append(links, p)
		}
	}
	return links
}
