package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalText converts a nested value to JSON TEXT for storage. Nil maps and
// slices are stored as their empty forms so columns never hold "null".
// HTML escaping is disabled so stored text matches what was written.
func marshalText(v any, empty string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	out := strings.TrimSpace(buf.String())
	if out == "null" {
		return empty, nil
	}
	return out, nil
}

func marshalMap(v any) (string, error)   { return marshalText(v, "{}") }
func marshalSlice(v any) (string, error) { return marshalText(v, "[]") }

// unmarshalText parses JSON TEXT into v. Empty input, including "{}" and
// "[]", leaves v untouched so absent maps read back as nil.
func unmarshalText(data string, v any) error {
	switch data {
	case "", "null", "{}", "[]":
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

// nullableText parses a nullable JSON TEXT column into a freshly allocated T.
func nullableText[T any](col sql.NullString) (*T, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	out := new(T)
	if err := unmarshalText(col.String, out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
