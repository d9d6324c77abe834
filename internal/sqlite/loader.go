package sqlite

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

// maxRecordSize bounds a single JSONL line.
const maxRecordSize = 1 << 20

// Import restores a snapshot written by Export into an empty inventory.
// Ids and timestamps are kept, so move history and ordering survive the
// round trip. Files are loaded spaces first, then items, then moves, in one
// transaction: either the whole snapshot lands or nothing does.
//
// A missing file counts as empty. Lines that are not valid JSON are skipped
// and counted; unknown fields are ignored. A record that breaks a constraint
// (an item in a space the snapshot does not contain, say) aborts the import,
// as does a record without a positive id or its timestamps.
func (b *Backend) Import(ctx context.Context, dir string) (types.ImportResult, error) {
	var res types.ImportResult
	if dir == "" {
		return res, invalid("import directory must not be empty")
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return res, invalid("import directory %s does not exist", dir)
	}

	spaces, skipped, err := readJSONL[types.Space](filepath.Join(dir, SpacesFile))
	if err != nil {
		return res, err
	}
	res.Skipped += skipped
	items, skipped, err := readJSONL[types.Item](filepath.Join(dir, ItemsFile))
	if err != nil {
		return res, err
	}
	res.Skipped += skipped
	moves, skipped, err := readJSONL[types.Move](filepath.Join(dir, MovesFile))
	if err != nil {
		return res, err
	}
	res.Skipped += skipped
	if err := checkRecords(spaces, items, moves); err != nil {
		return res, err
	}

	err = b.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			"SELECT (SELECT COUNT(*) FROM spaces) + (SELECT COUNT(*) FROM items) + (SELECT COUNT(*) FROM moves)",
		).Scan(&n); err != nil {
			return classify("checking inventory is empty", err)
		}
		if n > 0 {
			return invalid("import requires an empty inventory")
		}

		for _, s := range spaces {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO spaces (id, name, description, created_at) VALUES (?, ?, ?, ?)",
				s.ID, s.Name, s.Description, formatTime(s.CreatedAt),
			); err != nil {
				return classify(fmt.Sprintf("importing space %d", s.ID), err)
			}
		}
		for _, it := range items {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO items (id, name, description, space_id, location_within_space, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				it.ID, it.Name, it.Description, it.SpaceID, it.LocationWithinSpace,
				formatTime(it.CreatedAt), formatTime(it.UpdatedAt),
			); err != nil {
				return classify(fmt.Sprintf("importing item %d", it.ID), err)
			}
		}
		for _, m := range moves {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO moves (id, item_id, from_space_id, to_space_id, note, created_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				m.ID, m.ItemID, m.FromSpaceID, m.ToSpaceID, m.Note, formatTime(m.CreatedAt),
			); err != nil {
				return classify(fmt.Sprintf("importing move %d", m.ID), err)
			}
		}
		return nil
	})
	if err != nil {
		return types.ImportResult{}, err
	}

	res.Spaces, res.Items, res.Moves = len(spaces), len(items), len(moves)
	entry := b.log.WithFields(logrus.Fields{
		"dir":     dir,
		"spaces":  res.Spaces,
		"items":   res.Items,
		"moves":   res.Moves,
		"skipped": res.Skipped,
	})
	if res.Skipped > 0 {
		entry.Warn("import skipped malformed records")
	} else {
		entry.Debug("import")
	}
	return res, nil
}

// checkRecords rejects records whose rows could not be addressed or ordered
// once stored: ids must be positive and timestamps set.
func checkRecords(spaces []types.Space, items []types.Item, moves []types.Move) error {
	for i, s := range spaces {
		switch {
		case s.ID <= 0:
			return invalid("space record %d: id must be positive", i+1)
		case s.CreatedAt.IsZero():
			return invalid("space record %d: created_at is required", i+1)
		}
	}
	for i, it := range items {
		switch {
		case it.ID <= 0:
			return invalid("item record %d: id must be positive", i+1)
		case it.CreatedAt.IsZero(), it.UpdatedAt.IsZero():
			return invalid("item record %d: created_at and updated_at are required", i+1)
		}
	}
	for i, m := range moves {
		switch {
		case m.ID <= 0:
			return invalid("move record %d: id must be positive", i+1)
		case m.CreatedAt.IsZero():
			return invalid("move record %d: created_at is required", i+1)
		}
	}
	return nil
}

// readJSONL decodes one T per non-blank line of path. It returns the
// records and the number of lines that did not decode. A missing file
// yields no records.
func readJSONL[T any](path string) ([]T, int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: opening %s: %w", types.ErrStorageFailure, filepath.Base(path), err)
	}
	defer f.Close()

	var (
		records []T
		skipped int
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: reading %s: %w", types.ErrStorageFailure, filepath.Base(path), err)
	}
	return records, skipped, nil
}
