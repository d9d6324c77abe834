// Package sqlite provides the public API for the SQLite inventory backend.
// It exposes the factory function while keeping implementation details
// internal.
package sqlite

import (
	"github.com/mesh-intelligence/binlid/internal/sqlite"
	"github.com/mesh-intelligence/binlid/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	inv := sqlite.NewBackend()
//	err := inv.Attach(types.Config{DBPath: "binlid.db"})
//	defer inv.Detach()
func NewBackend() types.Inventory {
	return sqlite.NewBackend()
}
