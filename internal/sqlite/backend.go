// Package sqlite implements the SQLite storage backend for Depot. It
// emulates a managed, table-oriented datastore service locally: callers
// address tables by name and never construct native queries themselves.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/folioforge/depot/pkg/logging"
	"github.com/folioforge/depot/pkg/types"
)

// dbFileName is the SQLite database file created inside DataDir.
const dbFileName = "depot.db"

// Backend implements the Store interface using an embedded SQLite
// engine. Mutating operations take the write lock so the uniqueness and
// cascade invariants hold across the existence pre-checks; multi-
// statement cascades additionally run inside a single transaction.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      logging.Logger
	tables   map[string]types.Table
}

// Compile-time interface check: Backend must implement Store.
var _ types.Store = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance. The backend is not
// attached; call Attach with a Config to initialize. A nil logger
// discards output.
func NewBackend(log logging.Logger) *Backend {
	if log == nil {
		log = logging.Nop()
	}
	return &Backend{
		log:    log,
		tables: make(map[string]types.Table),
	}
}

// GetTable returns a Table accessor for the specified table name.
// Returns ErrUnknownTable if the name is not recognized and
// ErrStoreDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	table, ok := b.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownTable, name)
	}
	return table, nil
}

// Attach initializes the backend with the given configuration. Creates
// DataDir if it does not exist, opens the database file, and ensures
// the schema is in place. Schema failure is fatal: the error is
// propagated and the backend stays detached.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true

	b.tables = map[string]types.Table{
		types.AccountsTable:   &accountsTable{backend: b},
		types.PortfoliosTable: &portfoliosTable{backend: b},
	}

	return nil
}

// Detach releases all resources held by the backend. After Detach, all
// operations return ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
		b.db = nil
	}

	b.attached = false
	b.tables = make(map[string]types.Table)

	return nil
}

// initSchema runs the table and index DDL. Every statement is
// IF NOT EXISTS, so this is safe on every Attach.
func initSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create indexes: %w", err)
		}
	}
	return nil
}

// newRowID generates a UUID v7 string for generated row identifiers.
func newRowID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails.
		return uuid.New().String()
	}
	return id.String()
}
