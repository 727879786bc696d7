package types

import "errors"

// Table provides uniform CRUD operations for a single table variant.
// InsertRow and Search return any; callers type-assert to the concrete
// entity struct for the table (*Account or *PortfolioSnapshot).
type Table interface {
	// InsertRow inserts a new row. Generated identifiers and defaulted
	// timestamps are filled in on the returned row. Returns ErrConflict
	// when the insert would violate a uniqueness invariant.
	InsertRow(record any) (any, error)

	// UpdateRow locates rows matching criteria and applies patch.
	// Returns the number of rows changed; zero changes is not an error.
	UpdateRow(criteria Criteria, patch Patch) (int64, error)

	// Search returns zero or more rows matching the query. The query is
	// translated to a parameterized native statement; shapes outside the
	// recognized sub-grammar return ErrUnsupportedQuery.
	Search(q Query) ([]any, error)

	// DeleteRows removes rows matching criteria and returns the number
	// of rows removed. Deleting an account cascades to its portfolio
	// snapshots atomically.
	DeleteRows(criteria Criteria) (int64, error)
}

// Criteria selects rows by exact match on a single field.
type Criteria struct {
	Field string
	Value string
}

// Patch holds the field values applied by UpdateRow, keyed by column
// name. Each table variant accepts a fixed set of keys; unknown keys
// return ErrInvalidPatch.
type Patch map[string]any

// Patch keys accepted by UpdateRow.
const (
	PatchPayload      = "payload"
	PatchDisplayName  = "display_name"
	PatchPasswordHash = "password_hash"
)

// Table operation errors.
var (
	ErrConflict        = errors.New("row conflicts with an existing row")
	ErrInvalidData     = errors.New("invalid row data")
	ErrInvalidCriteria = errors.New("invalid criteria")
	ErrInvalidPatch    = errors.New("invalid patch")
)
