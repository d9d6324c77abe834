package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

const selectSpace = `SELECT id, name, description, created_at FROM spaces`

// CreateSpace inserts a space named name. When the name is taken the
// existing space is returned with Created=false; that is not an error.
func (b *Backend) CreateSpace(ctx context.Context, name, description string) (types.SpaceResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.SpaceResult{}, invalid("space name must not be empty")
	}

	var result types.SpaceResult
	err := b.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO spaces (name, description, created_at) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO NOTHING`,
			name, description, formatTime(b.timestamp()),
		)
		if err != nil {
			return classify("inserting space", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return classify("inserting space", err)
		}

		space, err := scanSpace(tx.QueryRowContext(ctx, selectSpace+" WHERE name = ?", name))
		if err != nil {
			return classify("reading space", err)
		}
		result = types.SpaceResult{Space: space, Created: n == 1}
		return nil
	})
	if err != nil {
		return types.SpaceResult{}, err
	}

	b.log.WithFields(logrus.Fields{
		"space_id": result.ID,
		"name":     result.Name,
		"created":  result.Created,
	}).Debug("create space")
	return result, nil
}

// GetSpace resolves ref to a space. Returns ErrNotFound if nothing matches.
func (b *Backend) GetSpace(ctx context.Context, ref types.SpaceRef) (types.Space, error) {
	db, release, err := b.handle()
	if err != nil {
		return types.Space{}, err
	}
	defer release()

	return lookupSpace(ctx, db, ref)
}

// ListSpaces returns every space ordered by name.
func (b *Backend) ListSpaces(ctx context.Context) ([]types.Space, error) {
	db, release, err := b.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, selectSpace+" ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, classify("listing spaces", err)
	}
	defer rows.Close()

	spaces := []types.Space{}
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, classify("scanning space", err)
		}
		spaces = append(spaces, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("listing spaces", err)
	}
	return spaces, nil
}

// lookupSpace resolves ref using q, which may be a transaction.
func lookupSpace(ctx context.Context, q querier, ref types.SpaceRef) (types.Space, error) {
	if ref.IsZero() {
		return types.Space{}, invalid("space reference must not be empty")
	}

	var row *sql.Row
	if ref.ID > 0 {
		row = q.QueryRowContext(ctx, selectSpace+" WHERE id = ?", ref.ID)
	} else {
		row = q.QueryRowContext(ctx, selectSpace+" WHERE name = ?", strings.TrimSpace(ref.Name))
	}

	space, err := scanSpace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Space{}, notFound("space %s", ref)
	}
	if err != nil {
		return types.Space{}, classify("reading space", err)
	}
	return space, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSpace(s scanner) (types.Space, error) {
	var (
		space     types.Space
		createdAt string
	)
	if err := s.Scan(&space.ID, &space.Name, &space.Description, &createdAt); err != nil {
		return types.Space{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return types.Space{}, err
	}
	space.CreatedAt = t
	return space, nil
}
