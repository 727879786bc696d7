package migrate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/folioforge/depot/internal/sqlite"
	"github.com/folioforge/depot/pkg/types"
)

// setupStore creates an attached SQLite store over a temp data dir.
func setupStore(t *testing.T) types.Store {
	t.Helper()
	store := sqlite.NewBackend(nil)
	require.NoError(t, store.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { store.Detach() })
	return store
}

// writeSnapshot writes a legacy snapshot file and returns its path.
func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func searchAccount(t *testing.T, store types.Store, email string) *types.Account {
	t.Helper()
	table, err := store.GetTable(types.AccountsTable)
	require.NoError(t, err)
	rows, err := table.Search(types.Query{Field: types.FieldEmail, Value: email})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0].(*types.Account)
}

func TestMigratePlaintextPassword(t *testing.T) {
	store := setupStore(t)
	path := writeSnapshot(t, `{"a@x.com": {"password": "plain123", "name": "A"}}`)

	summary, err := NewJob(store, path, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AccountsMigrated)
	assert.Zero(t, summary.AccountsSkipped)

	acc := searchAccount(t, store, "a@x.com")
	assert.Equal(t, "A", acc.DisplayName)
	assert.NotEqual(t, "plain123", acc.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("plain123")))

	// The original snapshot is preserved as a timestamped backup.
	assert.FileExists(t, summary.BackupPath)
	matches, err := filepath.Glob(path + ".*.bak")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMigratePrehashedPasswordUntouched(t *testing.T) {
	store := setupStore(t)
	prehashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	path := writeSnapshot(t,
		`{"h@x.com": {"password": `+string(mustJSON(t, string(prehashed)))+`, "fullName": "H"}}`)

	_, err = NewJob(store, path, nil).Run(context.Background())
	require.NoError(t, err)

	acc := searchAccount(t, store, "h@x.com")
	assert.Equal(t, string(prehashed), acc.PasswordHash)
	assert.Equal(t, "H", acc.DisplayName)
}

func TestMigratePortfolioCarryOver(t *testing.T) {
	store := setupStore(t)
	path := writeSnapshot(t, `{
		"p@x.com": {
			"password": "pw",
			"name": "P",
			"portfolio": {"positions": [{"symbol": "VTI", "shares": 3}], "cash": 10}
		},
		"q@x.com": {"password": "pw", "name": "Q"}
	}`)

	summary, err := NewJob(store, path, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.AccountsMigrated)
	assert.Equal(t, 1, summary.PortfoliosCarried)

	portfolios, err := store.GetTable(types.PortfoliosTable)
	require.NoError(t, err)

	rows, err := portfolios.Search(types.Query{Field: types.FieldOwnerEmail, Value: "p@x.com", NewestOnly: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{
		"positions": []any{map[string]any{"symbol": "VTI", "shares": 3.0}},
		"cash":      10.0,
	}, rows[0].(*types.PortfolioSnapshot).Payload)

	rows, err = portfolios.Search(types.Query{Field: types.FieldOwnerEmail, Value: "q@x.com"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// Running the job twice produces the same final rows as running it once:
// no duplicates, and already-hashed passwords are not re-hashed.
func TestMigrateIdempotence(t *testing.T) {
	store := setupStore(t)
	path := writeSnapshot(t, `{
		"i@x.com": {"password": "pw1", "name": "I", "portfolio": {"cash": 1}}
	}`)

	first, err := NewJob(store, path, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.AccountsMigrated)
	hashAfterFirst := searchAccount(t, store, "i@x.com").PasswordHash

	second, err := NewJob(store, path, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.AccountsMigrated)
	assert.Equal(t, 1, second.AccountsSkipped)

	accounts, err := store.GetTable(types.AccountsTable)
	require.NoError(t, err)
	rows, err := accounts.Search(types.Query{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, hashAfterFirst, searchAccount(t, store, "i@x.com").PasswordHash)

	portfolios, err := store.GetTable(types.PortfoliosTable)
	require.NoError(t, err)
	rows, err = portfolios.Search(types.Query{Field: types.FieldOwnerEmail, Value: "i@x.com"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMigrateSkipsBadRecordAndContinues(t *testing.T) {
	store := setupStore(t)

	// Pre-seed one account so its snapshot entry conflicts.
	accounts, err := store.GetTable(types.AccountsTable)
	require.NoError(t, err)
	_, err = accounts.InsertRow(&types.Account{Email: "taken@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	path := writeSnapshot(t, `{
		"taken@x.com": {"password": "pw", "name": "Dup"},
		"fresh@x.com": {"password": "pw", "name": "Fresh"}
	}`)

	summary, err := NewJob(store, path, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AccountsMigrated)
	assert.Equal(t, 1, summary.AccountsSkipped)

	// The conflicting entry did not clobber the existing row.
	assert.Equal(t, "h", searchAccount(t, store, "taken@x.com").PasswordHash)
	assert.Equal(t, "Fresh", searchAccount(t, store, "fresh@x.com").DisplayName)
}

func TestMigrateAbsentSnapshot(t *testing.T) {
	store := setupStore(t)
	path := filepath.Join(t.TempDir(), "missing.json")

	summary, err := NewJob(store, path, nil).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.NothingToMigrate)
	assert.Empty(t, summary.BackupPath)
}

func TestMigrateMalformedSnapshotIsFatal(t *testing.T) {
	store := setupStore(t)
	path := writeSnapshot(t, `{not json`)

	_, err := NewJob(store, path, nil).Run(context.Background())
	require.Error(t, err)
}

func TestPasswordPrefixDetection(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"2a prefix", "$2a$10$abcdefghij", true},
		{"2b prefix", "$2b$12$abcdefghij", true},
		{"2y prefix", "$2y$10$abcdefghij", true},
		{"plaintext", "plain123", false},
		{"dollar but not bcrypt", "$1$old-md5-crypt", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isHashed(tt.password))
		})
	}
}

// mustJSON marshals a string to a JSON literal for snapshot fixtures.
func mustJSON(t *testing.T, s string) []byte {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return data
}
