// Accounts table accessor for the SQLite backend. Hydrates between
// accounts rows and *types.Account, enforces the email uniqueness
// invariant, and cascades deletes to portfolio snapshots.

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/folioforge/depot/pkg/types"
)

// timeFormat is the storage representation of timestamps. The fraction
// is fixed-width (RFC3339Nano trims trailing zeros) so that the TEXT
// column sorts chronologically and newest-first ordering stays stable
// for writes that land inside the same second. Values are normalized
// to UTC on write; a non-UTC offset would defeat the lexicographic
// ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Compile-time interface check: accountsTable must implement Table.
var _ types.Table = (*accountsTable)(nil)

// accountsTable implements the Table interface for the accounts table.
type accountsTable struct {
	backend *Backend
}

// InsertRow inserts a new account. Fills a generated account_id and
// defaulted timestamps, and returns the inserted *types.Account.
// Returns ErrConflict when the email is already taken.
func (at *accountsTable) InsertRow(record any) (any, error) {
	acc, ok := record.(*types.Account)
	if !ok {
		return nil, types.ErrInvalidData
	}
	if err := acc.Validate(); err != nil {
		return nil, err
	}

	at.backend.mu.Lock()
	defer at.backend.mu.Unlock()
	if !at.backend.attached {
		return nil, types.ErrStoreDetached
	}

	// Existence pre-check under the write lock. The unique index is the
	// backstop if a future caller reaches the engine another way.
	var one int
	err := at.backend.db.QueryRow(
		"SELECT 1 FROM accounts WHERE email = ?", acc.Email,
	).Scan(&one)
	if err == nil {
		return nil, fmt.Errorf("%w: account email %q", types.ErrConflict, acc.Email)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("checking account existence: %w", err)
	}

	now := time.Now().UTC()
	if acc.AccountID == "" {
		acc.AccountID = newRowID()
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = now

	_, err = at.backend.db.Exec(
		`INSERT INTO accounts (account_id, email, password_hash, display_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		acc.AccountID, acc.Email, acc.PasswordHash, acc.DisplayName,
		acc.CreatedAt.UTC().Format(timeFormat), acc.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: account email %q", types.ErrConflict, acc.Email)
		}
		return nil, fmt.Errorf("inserting account: %w", err)
	}

	return acc, nil
}

// UpdateRow is the dedicated non-key update path: criteria must match
// on email, and the patch may change display_name and password_hash.
// Changing the email itself is modeled as delete+insert by the caller;
// a patch that touches email returns ErrInvalidPatch.
// Returns the number of rows changed; zero is not an error.
func (at *accountsTable) UpdateRow(criteria types.Criteria, patch types.Patch) (int64, error) {
	if criteria.Field != types.FieldEmail {
		return 0, fmt.Errorf("%w: accounts update by %q", types.ErrInvalidCriteria, criteria.Field)
	}
	if len(patch) == 0 {
		return 0, types.ErrInvalidPatch
	}

	var sets []string
	var args []any
	for key, val := range patch {
		switch key {
		case types.PatchDisplayName, types.PatchPasswordHash:
			s, ok := val.(string)
			if !ok {
				return 0, fmt.Errorf("%w: %s must be a string", types.ErrInvalidPatch, key)
			}
			sets = append(sets, key+" = ?")
			args = append(args, s)
		default:
			return 0, fmt.Errorf("%w: accounts patch key %q", types.ErrInvalidPatch, key)
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(timeFormat), criteria.Value)

	at.backend.mu.Lock()
	defer at.backend.mu.Unlock()
	if !at.backend.attached {
		return 0, types.ErrStoreDetached
	}

	res, err := at.backend.db.Exec(
		"UPDATE accounts SET "+strings.Join(sets, ", ")+" WHERE email = ?", args...,
	)
	if err != nil {
		return 0, fmt.Errorf("updating account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting updated accounts: %w", err)
	}
	return n, nil
}

// Search returns accounts matching the query, translated through the
// query translator.
func (at *accountsTable) Search(q types.Query) ([]any, error) {
	at.backend.mu.RLock()
	defer at.backend.mu.RUnlock()
	if !at.backend.attached {
		return nil, types.ErrStoreDetached
	}

	stmt, args, err := at.backend.translate(types.AccountsTable, q)
	if err != nil {
		return nil, err
	}

	rows, err := at.backend.db.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("searching accounts: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching accounts: %w", err)
	}
	return out, nil
}

// DeleteRows removes accounts matching criteria (exact match on email)
// and cascades to the owner's portfolio snapshots. Both deletes run in
// one transaction so a failure leaves no orphaned snapshot.
// Returns the number of account rows removed; zero is not an error.
func (at *accountsTable) DeleteRows(criteria types.Criteria) (int64, error) {
	if criteria.Field != types.FieldEmail {
		return 0, fmt.Errorf("%w: accounts delete by %q", types.ErrInvalidCriteria, criteria.Field)
	}

	at.backend.mu.Lock()
	defer at.backend.mu.Unlock()
	if !at.backend.attached {
		return 0, types.ErrStoreDetached
	}

	tx, err := at.backend.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM portfolios WHERE owner_email = ?", criteria.Value,
	); err != nil {
		return 0, fmt.Errorf("deleting owned portfolios: %w", err)
	}

	res, err := tx.Exec("DELETE FROM accounts WHERE email = ?", criteria.Value)
	if err != nil {
		return 0, fmt.Errorf("deleting account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted accounts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete: %w", err)
	}
	return n, nil
}

// scanAccount hydrates one accounts row into *types.Account.
func scanAccount(rows *sql.Rows) (*types.Account, error) {
	var acc types.Account
	var createdAt, updatedAt string
	if err := rows.Scan(
		&acc.AccountID, &acc.Email, &acc.PasswordHash, &acc.DisplayName,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	var err error
	acc.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing account created_at: %w", err)
	}
	acc.UpdatedAt, err = time.Parse(timeFormat, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing account updated_at: %w", err)
	}
	return &acc, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure. The modernc driver exposes constraint errors by message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
