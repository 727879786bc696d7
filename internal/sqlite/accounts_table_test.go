package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioforge/depot/pkg/types"
)

func accountsOf(t *testing.T, b *Backend) types.Table {
	t.Helper()
	table, err := b.GetTable(types.AccountsTable)
	require.NoError(t, err)
	return table
}

func TestAccountInsert(t *testing.T) {
	t.Run("fills generated id and timestamps", func(t *testing.T) {
		b := setupBackend(t)
		row, err := accountsOf(t, b).InsertRow(&types.Account{
			Email:        "a@x.com",
			PasswordHash: "$2a$10$hash",
			DisplayName:  "A",
		})
		require.NoError(t, err)

		acc := row.(*types.Account)
		assert.NotEmpty(t, acc.AccountID)
		assert.False(t, acc.CreatedAt.IsZero())
		assert.False(t, acc.UpdatedAt.IsZero())
	})

	t.Run("duplicate email yields exactly one conflict", func(t *testing.T) {
		b := setupBackend(t)
		table := accountsOf(t, b)

		_, err := table.InsertRow(&types.Account{Email: "dup@x.com", PasswordHash: "h1"})
		require.NoError(t, err)

		_, err = table.InsertRow(&types.Account{Email: "dup@x.com", PasswordHash: "h2"})
		assert.ErrorIs(t, err, types.ErrConflict)

		rows, err := table.Search(types.Query{Field: types.FieldEmail, Value: "dup@x.com"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "h1", rows[0].(*types.Account).PasswordHash)
	})

	t.Run("timestamps are normalized to UTC", func(t *testing.T) {
		b := setupBackend(t)
		table := accountsOf(t, b)

		east := time.FixedZone("UTC+5", 5*60*60)
		// 23:00+05:00 is 18:00 UTC, before the second account's 19:00 UTC.
		_, err := table.InsertRow(&types.Account{
			Email:        "first@x.com",
			PasswordHash: "h",
			CreatedAt:    time.Date(2026, 4, 1, 23, 0, 0, 0, east),
		})
		require.NoError(t, err)
		_, err = table.InsertRow(&types.Account{
			Email:        "second@x.com",
			PasswordHash: "h",
			CreatedAt:    time.Date(2026, 4, 1, 19, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		rows, err := table.Search(types.Query{})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		// All-rows ordering is by creation time, zone offsets notwithstanding.
		assert.Equal(t, "first@x.com", rows[0].(*types.Account).Email)
		assert.Equal(t, time.UTC, rows[0].(*types.Account).CreatedAt.Location())
	})

	t.Run("empty email is rejected", func(t *testing.T) {
		b := setupBackend(t)
		_, err := accountsOf(t, b).InsertRow(&types.Account{PasswordHash: "h"})
		assert.ErrorIs(t, err, types.ErrInvalidEmail)
	})

	t.Run("non-account record is rejected", func(t *testing.T) {
		b := setupBackend(t)
		_, err := accountsOf(t, b).InsertRow("not a row")
		assert.ErrorIs(t, err, types.ErrInvalidData)
	})
}

func TestAccountUpdate(t *testing.T) {
	t.Run("updates non-key fields by email", func(t *testing.T) {
		b := setupBackend(t)
		table := accountsOf(t, b)
		_, err := table.InsertRow(&types.Account{Email: "u@x.com", PasswordHash: "old", DisplayName: "Old"})
		require.NoError(t, err)

		n, err := table.UpdateRow(
			types.Criteria{Field: types.FieldEmail, Value: "u@x.com"},
			types.Patch{types.PatchDisplayName: "New", types.PatchPasswordHash: "new"},
		)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		rows, err := table.Search(types.Query{Field: types.FieldEmail, Value: "u@x.com"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		acc := rows[0].(*types.Account)
		assert.Equal(t, "New", acc.DisplayName)
		assert.Equal(t, "new", acc.PasswordHash)
	})

	t.Run("zero matches is a zero count, not an error", func(t *testing.T) {
		b := setupBackend(t)
		n, err := accountsOf(t, b).UpdateRow(
			types.Criteria{Field: types.FieldEmail, Value: "missing@x.com"},
			types.Patch{types.PatchDisplayName: "X"},
		)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("patching the natural key is rejected", func(t *testing.T) {
		b := setupBackend(t)
		_, err := accountsOf(t, b).UpdateRow(
			types.Criteria{Field: types.FieldEmail, Value: "u@x.com"},
			types.Patch{"email": "other@x.com"},
		)
		assert.ErrorIs(t, err, types.ErrInvalidPatch)
	})

	t.Run("criteria must match on email", func(t *testing.T) {
		b := setupBackend(t)
		_, err := accountsOf(t, b).UpdateRow(
			types.Criteria{Field: "display_name", Value: "A"},
			types.Patch{types.PatchDisplayName: "B"},
		)
		assert.ErrorIs(t, err, types.ErrInvalidCriteria)
	})
}

func TestAccountDeleteCascades(t *testing.T) {
	b := setupBackend(t)
	accounts := accountsOf(t, b)
	portfolios, err := b.GetTable(types.PortfoliosTable)
	require.NoError(t, err)

	_, err = accounts.InsertRow(&types.Account{Email: "gone@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = accounts.InsertRow(&types.Account{Email: "stays@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = portfolios.InsertRow(&types.PortfolioSnapshot{
			OwnerEmail: "gone@x.com",
			Payload:    map[string]any{"cash": 1.0},
		})
		require.NoError(t, err)
	}
	_, err = portfolios.InsertRow(&types.PortfolioSnapshot{
		OwnerEmail: "stays@x.com",
		Payload:    map[string]any{"cash": 2.0},
	})
	require.NoError(t, err)

	n, err := accounts.DeleteRows(types.Criteria{Field: types.FieldEmail, Value: "gone@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Every snapshot owned by the deleted account is gone.
	rows, err := portfolios.Search(types.Query{Field: types.FieldOwnerEmail, Value: "gone@x.com"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	// The other owner's snapshot is untouched.
	rows, err = portfolios.Search(types.Query{Field: types.FieldOwnerEmail, Value: "stays@x.com"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	t.Run("deleting nothing returns zero", func(t *testing.T) {
		n, err := accounts.DeleteRows(types.Criteria{Field: types.FieldEmail, Value: "gone@x.com"})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
