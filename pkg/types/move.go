package types

import "time"

// Move is an immutable audit record of one relocation. FromSpaceID is the
// space the item occupied immediately before the move.
type Move struct {
	ID          int64     `json:"id"`
	ItemID      int64     `json:"item_id"`
	FromSpaceID int64     `json:"from_space_id"`
	ToSpaceID   int64     `json:"to_space_id"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// MoveRequest describes a relocation.
type MoveRequest struct {
	ItemID    int64
	ToSpaceID int64
	Note      string
}
