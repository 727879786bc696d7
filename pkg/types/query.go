package types

import "errors"

// Query is a tagged filter descriptor for Table.Search. The translator
// pattern-matches on the structured fields rather than parsing strings,
// and binds every value as a placeholder.
//
// Recognized shapes:
//   - accounts, Field "email":        single-row lookup by email.
//   - portfolios, Field "owner_email": rows for an owner, newest first;
//     NewestOnly caps the result to the most recent row.
//   - zero-value Query: every row in the table ("all rows" is an
//     explicit request, not a fallback).
//
// Raw is a transitional escape hatch: the statement is passed through
// with RawArgs bound as placeholders, and every use logs a warning since
// it bypasses the shape check.
type Query struct {
	Field      string
	Value      string
	NewestOnly bool
	Limit      int
	Raw        string
	RawArgs    []any
}

// Filter field names recognized by the translator.
const (
	FieldEmail      = "email"
	FieldOwnerEmail = "owner_email"
)

// IsRaw reports whether the query is a raw passthrough.
func (q Query) IsRaw() bool { return q.Raw != "" }

// IsEmpty reports whether the query requests all rows.
func (q Query) IsEmpty() bool {
	return q.Field == "" && q.Raw == "" && !q.NewestOnly && q.Limit == 0
}

// ErrUnsupportedQuery is returned for filter shapes outside the
// recognized sub-grammar.
var ErrUnsupportedQuery = errors.New("unsupported query shape")
