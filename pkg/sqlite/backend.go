// Package sqlite provides the public API for the SQLite Depot backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/folioforge/depot/pkg/logging"
	"github.com/folioforge/depot/internal/sqlite"
	"github.com/folioforge/depot/pkg/types"
)

// NewBackend creates a new SQLite backend instance. The backend is not
// attached; call Attach with a Config to initialize. A nil logger
// discards output.
//
// Example:
//
//	store := sqlite.NewBackend(nil)
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".depot-db",
//	})
//	defer store.Detach()
func NewBackend(log logging.Logger) types.Store {
	return sqlite.NewBackend(log)
}
