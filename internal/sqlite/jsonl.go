package sqlite

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

// Snapshot file names written by Export.
const (
	SpacesFile = "spaces.jsonl"
	ItemsFile  = "items.jsonl"
	MovesFile  = "moves.jsonl"
)

// Export writes one JSONL file per table into dir. The three reads share a
// transaction so the files describe one consistent state; each file is
// replaced atomically.
func (b *Backend) Export(ctx context.Context, dir string) error {
	if dir == "" {
		return invalid("export directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating export directory: %w", types.ErrStorageFailure, err)
	}

	var spaces, items, moves []json.RawMessage
	err := b.withTx(ctx, func(tx *sql.Tx) error {
		s, err := exportSpaces(ctx, tx)
		if err != nil {
			return err
		}
		i, err := queryItemViews(ctx, tx, "exporting items", selectItemView+" ORDER BY i.id ASC")
		if err != nil {
			return err
		}
		m, err := queryMoves(ctx, tx, selectMove+" ORDER BY id ASC")
		if err != nil {
			return err
		}

		if spaces, err = marshalRecords(s); err != nil {
			return err
		}
		if items, err = marshalRecords(i); err != nil {
			return err
		}
		moves, err = marshalRecords(m)
		return err
	})
	if err != nil {
		return err
	}

	for name, records := range map[string][]json.RawMessage{
		SpacesFile: spaces,
		ItemsFile:  items,
		MovesFile:  moves,
	} {
		if err := writeJSONL(filepath.Join(dir, name), records); err != nil {
			return fmt.Errorf("%w: writing %s: %w", types.ErrStorageFailure, name, err)
		}
	}

	b.log.WithFields(logrus.Fields{
		"dir":    dir,
		"spaces": len(spaces),
		"items":  len(items),
		"moves":  len(moves),
	}).Debug("export")
	return nil
}

func exportSpaces(ctx context.Context, tx *sql.Tx) ([]types.Space, error) {
	rows, err := tx.QueryContext(ctx, selectSpace+" ORDER BY id ASC")
	if err != nil {
		return nil, classify("exporting spaces", err)
	}
	defer rows.Close()

	var spaces []types.Space
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, classify("exporting spaces", err)
		}
		spaces = append(spaces, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("exporting spaces", err)
	}
	return spaces, nil
}

func marshalRecords[T any](entities []T) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0, len(entities))
	for _, e := range entities {
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("%w: marshaling record: %w", types.ErrStorageFailure, err)
		}
		records = append(records, data)
	}
	return records, nil
}

// writeJSONL replaces path with records, one per line. The data is written
// to a sibling temp file and synced before it is renamed over path, so
// readers see either the old file or the complete new one.
func writeJSONL(path string, records []json.RawMessage) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		w.Write(rec)
		w.WriteByte('\n')
	}
	// bufio.Writer keeps the first write error and returns it from Flush.
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
