// Query translation for the SQLite backend. The translator accepts the
// tagged filter descriptor from pkg/types and produces a parameterized
// statement; every value binds as a placeholder, never by concatenation.

package sqlite

import (
	"context"
	"fmt"

	"github.com/folioforge/depot/pkg/types"
)

// Column lists for row hydration; kept next to the translator so the
// SELECT shape and the scanners stay in sync.
const (
	selectAccounts   = "SELECT account_id, email, password_hash, display_name, created_at, updated_at FROM accounts"
	selectPortfolios = "SELECT snapshot_id, owner_email, payload, last_updated FROM portfolios"
)

// translate converts a query descriptor into a statement and bound
// arguments. Shapes outside the recognized sub-grammar return
// ErrUnsupportedQuery with no partial translation.
//
// Raw queries are passed through as-is with RawArgs bound. This exists
// only for the transitional migration period and logs a warning on
// every use, since it bypasses the shape check.
func (b *Backend) translate(tableName string, q types.Query) (string, []any, error) {
	if q.IsRaw() {
		b.log.Warn(context.Background(), "raw query passthrough, shape check bypassed",
			"table", tableName, "stmt", q.Raw)
		return q.Raw, q.RawArgs, nil
	}

	switch tableName {
	case types.AccountsTable:
		return translateAccounts(q)
	case types.PortfoliosTable:
		return translatePortfolios(q)
	default:
		return "", nil, fmt.Errorf("%w: %q", types.ErrUnknownTable, tableName)
	}
}

// translateAccounts recognizes two shapes: all rows, and equality on
// email (a single-row lookup, by the unique index).
func translateAccounts(q types.Query) (string, []any, error) {
	if q.IsEmpty() {
		return selectAccounts + " ORDER BY created_at", nil, nil
	}
	if q.Field == types.FieldEmail && !q.NewestOnly && q.Limit == 0 {
		return selectAccounts + " WHERE email = ?", []any{q.Value}, nil
	}
	return "", nil, fmt.Errorf("%w: accounts filter on %q", types.ErrUnsupportedQuery, q.Field)
}

// translatePortfolios recognizes two shapes: all rows, and equality on
// owner_email. Both order newest first; NewestOnly caps the owner
// lookup to the most recent row.
func translatePortfolios(q types.Query) (string, []any, error) {
	if q.IsEmpty() {
		return selectPortfolios + " ORDER BY last_updated DESC", nil, nil
	}
	if q.Field == types.FieldOwnerEmail {
		stmt := selectPortfolios + " WHERE owner_email = ? ORDER BY last_updated DESC"
		args := []any{q.Value}
		switch {
		case q.NewestOnly:
			stmt += " LIMIT 1"
		case q.Limit > 0:
			stmt += " LIMIT ?"
			args = append(args, q.Limit)
		}
		return stmt, args, nil
	}
	return "", nil, fmt.Errorf("%w: portfolios filter on %q", types.ErrUnsupportedQuery, q.Field)
}
