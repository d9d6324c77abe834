package sqlite

import (
	"context"
	"strings"
	"unicode"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

// SearchItems matches opts.Query against the FTS index over item name,
// description and location, and returns the hits joined with their space
// name, best match first. A blank query returns no results.
func (b *Backend) SearchItems(ctx context.Context, opts types.SearchOptions) ([]types.ItemView, error) {
	match := ftsQuery(opts.Query)
	if match == "" {
		return []types.ItemView{}, nil
	}

	db, release, err := b.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	query := `SELECT i.id, i.name, i.description, i.space_id, i.location_within_space,
		i.created_at, i.updated_at, s.name, items_fts.rank
		FROM items_fts
		JOIN items i ON i.id = items_fts.rowid
		JOIN spaces s ON s.id = i.space_id
		WHERE items_fts MATCH ?`
	args := []any{match}

	if opts.SpaceID > 0 {
		query += " AND i.space_id = ?"
		args = append(args, opts.SpaceID)
	}

	query += " ORDER BY items_fts.rank, i.updated_at DESC, i.id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("searching items", err)
	}
	defer rows.Close()

	views := []types.ItemView{}
	for rows.Next() {
		var rank float64
		v, err := scanItemView(rows, &rank)
		if err != nil {
			return nil, classify("scanning search result", err)
		}
		v.Rank = rank
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("searching items", err)
	}
	return views, nil
}

// ftsQuery turns free text into an FTS5 query that ANDs one quoted string
// per whitespace-separated token. Quoting keeps user input from being read
// as FTS5 syntax; the table tokenizer still splits and stems each string,
// so "Bin-lid" and "bin lid" both reach the same terms. Tokens with no
// letter or digit are dropped. Returns "" when nothing searchable remains.
func ftsQuery(q string) string {
	var terms []string
	for _, tok := range strings.Fields(q) {
		if !strings.ContainsFunc(tok, isWordRune) {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
