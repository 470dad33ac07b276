// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package slug derives filesystem- and URL-safe identifiers from free text
// and keeps them unique within a run.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Separator joins the words of a slug.
	Separator = '-'

	// Untitled is returned when the text contains no letters or digits.
	Untitled = "untitled"
)

// Make returns a slug for text: lower-cased, diacritics folded, runs of
// non-alphanumeric characters collapsed to a single '-', no leading or
// trailing '-', and at most maxLen runes long. When the cut lands inside a
// word the partial word is dropped. A maxLen of zero or less disables
// truncation.
func Make(text string, maxLen int) string {
	folded := fold(text)

	var b strings.Builder
	pendingSep := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteRune(Separator)
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}

	s := truncate(b.String(), maxLen)
	if s == "" {
		return Untitled
	}
	return s
}

// fold strips combining marks so "Café" and "Cafe" produce the same slug.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func truncate(s string, maxLen int) string {
	rs := []rune(s)
	if maxLen <= 0 || len(rs) <= maxLen {
		return s
	}
	cut := string(rs[:maxLen])
	if rs[maxLen] != Separator {
		if i := strings.LastIndexByte(cut, byte(Separator)); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, string(Separator))
}

// Registry hands out unique names within one run. The first claim of a base
// slug returns it unchanged; later claims return base-2, base-3, and so on.
// A Registry is not safe for concurrent use.
type Registry struct {
	counts map[string]int
	next   map[string]int
	issued map[string]bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		counts: make(map[string]int),
		next:   make(map[string]int),
		issued: make(map[string]bool),
	}
}

// Claim records an occurrence of base and returns a name not issued before
// in this registry.
func (r *Registry) Claim(base string) string {
	r.counts[base]++
	if !r.issued[base] {
		r.issued[base] = true
		return base
	}

	n := max(r.next[base], 2)
	name := suffixed(base, n)
	for r.issued[name] {
		n++
		name = suffixed(base, n)
	}
	r.next[base] = n + 1
	r.issued[name] = true
	return name
}

// Count returns how many times base has been claimed.
func (r *Registry) Count(base string) int {
	return r.counts[base]
}

// Len returns the number of names issued so far.
func (r *Registry) Len() int {
	return len(r.issued)
}

func suffixed(base string, n int) string {
	return base + string(Separator) + strconv.Itoa(n)
}
