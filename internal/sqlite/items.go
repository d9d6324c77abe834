package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

// selectItemView joins items to the space that holds them. Queries append
// their own WHERE and ORDER BY clauses.
const selectItemView = `SELECT i.id, i.name, i.description, i.space_id, i.location_within_space,
	i.created_at, i.updated_at, s.name
	FROM items i
	JOIN spaces s ON s.id = i.space_id`

// CreateItem inserts an item into the space named by item.Space. The FTS
// index is updated by trigger inside the same transaction, so the item is
// searchable as soon as CreateItem returns.
func (b *Backend) CreateItem(ctx context.Context, item types.NewItem) (types.ItemView, error) {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		return types.ItemView{}, invalid("item name must not be empty")
	}
	if item.Space.IsZero() {
		return types.ItemView{}, invalid("item space must not be empty")
	}

	var view types.ItemView
	err := b.withTx(ctx, func(tx *sql.Tx) error {
		space, err := lookupSpace(ctx, tx, item.Space)
		if err != nil {
			return err
		}

		now := b.timestamp()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO items (name, description, space_id, location_within_space, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			name, item.Description, space.ID, item.Location, formatTime(now), formatTime(now),
		)
		if err != nil {
			return classify("inserting item", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return classify("inserting item", err)
		}

		view = types.ItemView{
			Item: types.Item{
				ID:                  id,
				Name:                name,
				Description:         item.Description,
				SpaceID:             space.ID,
				LocationWithinSpace: item.Location,
				CreatedAt:           now,
				UpdatedAt:           now,
			},
			SpaceName: space.Name,
		}
		return nil
	})
	if err != nil {
		return types.ItemView{}, err
	}

	b.log.WithFields(logrus.Fields{
		"item_id":  view.ID,
		"space_id": view.SpaceID,
	}).Debug("create item")
	return view, nil
}

// GetItem returns the item with the given id joined with its space name.
func (b *Backend) GetItem(ctx context.Context, id int64) (types.ItemView, error) {
	if id <= 0 {
		return types.ItemView{}, invalid("item id must be positive")
	}

	db, release, err := b.handle()
	if err != nil {
		return types.ItemView{}, err
	}
	defer release()

	view, err := scanItemView(db.QueryRowContext(ctx, selectItemView+" WHERE i.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.ItemView{}, notFound("item %d", id)
	}
	if err != nil {
		return types.ItemView{}, classify("reading item", err)
	}
	return view, nil
}

// ListItems returns items ordered by updated_at descending, optionally
// restricted to one space.
func (b *Backend) ListItems(ctx context.Context, filter types.ItemFilter) ([]types.ItemView, error) {
	db, release, err := b.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	query := selectItemView
	var args []any
	if filter.SpaceID > 0 {
		query += " WHERE i.space_id = ?"
		args = append(args, filter.SpaceID)
	}
	query += " ORDER BY i.updated_at DESC, i.id DESC"

	return queryItemViews(ctx, db, "listing items", query, args...)
}

func queryItemViews(ctx context.Context, q querier, op, query string, args ...any) ([]types.ItemView, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	views := []types.ItemView{}
	for rows.Next() {
		v, err := scanItemView(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return views, nil
}

// scanItemView reads the columns of selectItemView, optionally followed by
// extra destinations such as a rank.
func scanItemView(s scanner, extra ...any) (types.ItemView, error) {
	var (
		v                    types.ItemView
		createdAt, updatedAt string
	)
	dest := []any{
		&v.ID, &v.Name, &v.Description, &v.SpaceID, &v.LocationWithinSpace,
		&createdAt, &updatedAt, &v.SpaceName,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return types.ItemView{}, err
	}

	var err error
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return types.ItemView{}, err
	}
	if v.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return types.ItemView{}, err
	}
	return v, nil
}
