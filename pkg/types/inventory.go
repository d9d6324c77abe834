package types

import "context"

// Inventory defines the data access layer for spaces, items and their move
// history. It is the only component allowed to mutate entities.
type Inventory interface {
	// Attach opens the store described by config and applies the schema.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases the store. Idempotent: multiple calls succeed.
	// After Detach, every operation returns ErrDetached.
	Detach() error

	// Ping reports whether the underlying store is reachable.
	Ping(ctx context.Context) error

	// CreateSpace inserts a space, or returns the existing one with
	// Created=false when a space with the same name already exists.
	CreateSpace(ctx context.Context, name, description string) (SpaceResult, error)

	// GetSpace resolves a space by id or by exact name.
	GetSpace(ctx context.Context, ref SpaceRef) (Space, error)

	// ListSpaces returns every space ordered by name.
	ListSpaces(ctx context.Context) ([]Space, error)

	// CreateItem inserts an item into an existing space and indexes it for
	// search within the same transaction.
	CreateItem(ctx context.Context, item NewItem) (ItemView, error)

	// GetItem returns one item joined with its space name.
	GetItem(ctx context.Context, id int64) (ItemView, error)

	// MoveItem relocates an item and records the move atomically.
	MoveItem(ctx context.Context, req MoveRequest) (Move, error)

	// ListItems returns items, most recently touched first.
	ListItems(ctx context.Context, filter ItemFilter) ([]ItemView, error)

	// SearchItems runs a full-text query and returns ranked matches.
	// An empty query matches nothing.
	SearchItems(ctx context.Context, opts SearchOptions) ([]ItemView, error)

	// ListMoves returns the move history of an item, oldest first.
	ListMoves(ctx context.Context, itemID int64) ([]Move, error)

	// Export writes a JSONL snapshot of every table into dir.
	Export(ctx context.Context, dir string) error

	// Import restores a snapshot written by Export. The inventory must be
	// empty; ids and timestamps are preserved.
	Import(ctx context.Context, dir string) (ImportResult, error)
}
