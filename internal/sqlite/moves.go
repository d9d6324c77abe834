package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

const selectMove = `SELECT id, item_id, from_space_id, to_space_id, note, created_at FROM moves`

// MoveItem relocates an item. Reading the current space, appending the move
// record and updating the item happen in one transaction: either all three
// are visible afterwards or none are.
func (b *Backend) MoveItem(ctx context.Context, req types.MoveRequest) (types.Move, error) {
	if req.ItemID <= 0 {
		return types.Move{}, invalid("item id must be positive")
	}
	if req.ToSpaceID <= 0 {
		return types.Move{}, invalid("destination space id must be positive")
	}

	var move types.Move
	err := b.withTx(ctx, func(tx *sql.Tx) error {
		var (
			fromSpaceID int64
			updatedAt   string
		)
		err := tx.QueryRowContext(ctx,
			"SELECT space_id, updated_at FROM items WHERE id = ?", req.ItemID,
		).Scan(&fromSpaceID, &updatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("item %d", req.ItemID)
		}
		if err != nil {
			return classify("reading item", err)
		}

		prev, err := parseTime(updatedAt)
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrStorageFailure, err)
		}
		now := nextTimestamp(b.timestamp(), prev)

		res, err := tx.ExecContext(ctx,
			`INSERT INTO moves (item_id, from_space_id, to_space_id, note, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			req.ItemID, fromSpaceID, req.ToSpaceID, req.Note, formatTime(now),
		)
		if err != nil {
			return classify("recording move", err)
		}
		moveID, err := res.LastInsertId()
		if err != nil {
			return classify("recording move", err)
		}

		res, err = tx.ExecContext(ctx,
			"UPDATE items SET space_id = ?, updated_at = ? WHERE id = ?",
			req.ToSpaceID, formatTime(now), req.ItemID,
		)
		if err != nil {
			return classify("relocating item", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return classify("relocating item", err)
		}
		if n != 1 {
			return fmt.Errorf("%w: relocating item %d: %d rows updated", types.ErrStorageFailure, req.ItemID, n)
		}

		move = types.Move{
			ID:          moveID,
			ItemID:      req.ItemID,
			FromSpaceID: fromSpaceID,
			ToSpaceID:   req.ToSpaceID,
			Note:        req.Note,
			CreatedAt:   now,
		}
		return nil
	})
	if err != nil {
		return types.Move{}, err
	}

	b.log.WithFields(logrus.Fields{
		"item_id":       move.ItemID,
		"from_space_id": move.FromSpaceID,
		"to_space_id":   move.ToSpaceID,
		"move_id":       move.ID,
	}).Debug("move item")
	return move, nil
}

// ListMoves returns every move of an item, oldest first.
func (b *Backend) ListMoves(ctx context.Context, itemID int64) ([]types.Move, error) {
	if itemID <= 0 {
		return nil, invalid("item id must be positive")
	}

	db, release, err := b.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	var exists int
	err = db.QueryRowContext(ctx, "SELECT 1 FROM items WHERE id = ?", itemID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("item %d", itemID)
	}
	if err != nil {
		return nil, classify("reading item", err)
	}

	return queryMoves(ctx, db, selectMove+" WHERE item_id = ? ORDER BY id ASC", itemID)
}

func queryMoves(ctx context.Context, q querier, query string, args ...any) ([]types.Move, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("listing moves", err)
	}
	defer rows.Close()

	moves := []types.Move{}
	for rows.Next() {
		var (
			m         types.Move
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.ItemID, &m.FromSpaceID, &m.ToSpaceID, &m.Note, &createdAt); err != nil {
			return nil, classify("scanning move", err)
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, classify("scanning move", err)
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("listing moves", err)
	}
	return moves, nil
}

// nextTimestamp returns now, or the smallest representable instant after
// prev when the clock has not moved past it. updated_at never goes
// backwards and every relocation advances it.
func nextTimestamp(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Nanosecond)
}
