// Package params implements the request argument map and field decoding
// the dispatcher uses to pull typed values out of loosely-typed HTTP
// request parameters. Values stay raw strings until a handler asks for a
// typed read; the map's key comparison is chosen at parse time because the
// query string is case-insensitive while PUT bodies are not.
package params

import (
	"strconv"
	"strings"

	"github.com/nexstar-alpaca/bridge/pkg/ascomerr"
	"github.com/nexstar-alpaca/bridge/pkg/result"
)

// Map is an ordered key→string argument map. GET requests are parsed with
// CaseInsensitive (ASCOM clients vary key casing in query strings); PUT
// requests are parsed with CaseSensitive (body form fields are contractually
// exact-cased).
type Map struct {
	values        map[string]string
	caseSensitive bool
	keys          []string // insertion order, for deterministic iteration
}

// NewCaseSensitive builds a Map that compares keys exactly (PUT bodies).
func NewCaseSensitive() *Map {
	return &Map{values: make(map[string]string), caseSensitive: true}
}

// NewCaseInsensitive builds a Map that compares keys ignoring case (GET
// query strings).
func NewCaseInsensitive() *Map {
	return &Map{values: make(map[string]string), caseSensitive: false}
}

func (m *Map) normalize(key string) string {
	if m.caseSensitive {
		return key
	}
	return strings.ToLower(key)
}

// Set stores a raw string value for key.
func (m *Map) Set(key, value string) {
	k := m.normalize(key)
	if _, exists := m.values[k]; !exists {
		m.keys = append(m.keys, k)
	}
	m.values[k] = value
}

// Lookup returns the raw string for key and whether it was present.
func (m *Map) Lookup(key string) (string, bool) {
	v, ok := m.values[m.normalize(key)]
	return v, ok
}

// GetBool decodes field as a bool. Accepts "true"/"false" case-insensitively.
func GetBool(m *Map, field string) result.Result[bool] {
	raw, ok := m.Lookup(field)
	if !ok {
		return result.Err[bool](ascomerr.FieldMissing(field))
	}
	switch strings.ToLower(raw) {
	case "true":
		return result.Ok(true)
	case "false":
		return result.Ok(false)
	default:
		return result.Err[bool](ascomerr.FieldInvalid(field))
	}
}

// GetInt decodes field as a decimal integer, optionally signed.
func GetInt(m *Map, field string) result.Result[int] {
	raw, ok := m.Lookup(field)
	if !ok {
		return result.Err[int](ascomerr.FieldMissing(field))
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return result.Err[int](ascomerr.FieldInvalid(field))
	}
	return result.Ok(v)
}

// GetFloat decodes field as a float64.
func GetFloat(m *Map, field string) result.Result[float64] {
	raw, ok := m.Lookup(field)
	if !ok {
		return result.Err[float64](ascomerr.FieldMissing(field))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return result.Err[float64](ascomerr.FieldInvalid(field))
	}
	return result.Ok(v)
}

// GetString decodes field as a raw string (no validation beyond presence).
func GetString(m *Map, field string) result.Result[string] {
	raw, ok := m.Lookup(field)
	if !ok {
		return result.Err[string](ascomerr.FieldMissing(field))
	}
	return result.Ok(raw)
}

// Build2 joins two field reads and constructs S from the decoded pair,
// short-circuiting on the first failure.
func Build2[A, B, S any](ra result.Result[A], rb result.Result[B], f func(A, B) S) result.Result[S] {
	return result.Join2(ra, rb, f)
}
