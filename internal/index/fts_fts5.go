//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS windows_fts USING fts5(
			path UNINDEXED,
			uuid UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path, uuid, title, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM windows_fts WHERE path = ?`, path)
	_, err := tx.Exec(`INSERT INTO windows_fts (path, uuid, title, body, tags) VALUES (?, ?, ?, ?, ?)`,
		path, uuid, title, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM windows_fts WHERE path = ?`, path)
}

// Search performs an FTS5 full-text search over window titles, text, and
// tags, returning matches with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       uuid,
		       title,
		       snippet(windows_fts, 3, '<b>', '</b>', '...', 64)
		FROM windows_fts
		WHERE windows_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.UUID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
