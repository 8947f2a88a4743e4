package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/laguz/internal/models"
)

// WindowRow represents a row in the windows table: the parsed window plus
// its vault location and content checksum.
type WindowRow struct {
	Path     string
	Checksum string
	Window   models.WindowSource
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	UUID    string `json:"uuid"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertWindow inserts or replaces a window row and its FTS entry within a
// transaction.
func (db *DB) UpsertWindow(row WindowRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	w := row.Window
	tagsJSON, _ := json.Marshal(nonNil(w.Tags))
	statesJSON, _ := json.Marshal(nonNil(w.TaskStates))

	_, err = tx.Exec(`
		INSERT INTO windows (path, uuid, title, checksum, tags, body, starred, archived,
			created_at, updated_at, due_at, due_time, due_timezone, due_precision, mode, task_states)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			uuid          = excluded.uuid,
			title         = excluded.title,
			checksum      = excluded.checksum,
			tags          = excluded.tags,
			body          = excluded.body,
			starred       = excluded.starred,
			archived      = excluded.archived,
			created_at    = excluded.created_at,
			updated_at    = excluded.updated_at,
			due_at        = excluded.due_at,
			due_time      = excluded.due_time,
			due_timezone  = excluded.due_timezone,
			due_precision = excluded.due_precision,
			mode          = excluded.mode,
			task_states   = excluded.task_states
	`, row.Path, w.UUID, w.Title, row.Checksum, string(tagsJSON), w.Text,
		boolInt(w.IsStarred), boolInt(w.IsArchived),
		w.CreatedAt, w.UpdatedAt, w.DueAt, w.DueTime, w.DueTimezone,
		w.DuePrecision, models.NormalizeContentMode(w.ContentMode), string(statesJSON))
	if err != nil {
		return fmt.Errorf("index: upsert window: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Path, w.UUID, w.Title, w.Text, w.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteWindow removes a window row and its FTS entry.
func (db *DB) DeleteWindow(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM windows WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a window, or empty string if
// not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM windows WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// PathByUUID resolves the vault path of a window by its uuid, or empty
// string when unknown.
func (db *DB) PathByUUID(uuid string) (string, error) {
	var p string
	err := db.conn.QueryRow(`SELECT path FROM windows WHERE uuid = ?`, uuid).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: path by uuid: %w", err)
	}
	return p, nil
}

// AllPaths returns every indexed window path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM windows`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed window.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM windows`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

const windowColumns = `path, uuid, title, checksum, tags, body, starred, archived,
	created_at, updated_at, due_at, due_time, due_timezone, due_precision, mode, task_states`

func scanWindowRow(scan func(dest ...any) error) (WindowRow, error) {
	var row WindowRow
	var tagsJSON, statesJSON string
	var starred, archived int
	err := scan(&row.Path, &row.Window.UUID, &row.Window.Title, &row.Checksum,
		&tagsJSON, &row.Window.Text, &starred, &archived,
		&row.Window.CreatedAt, &row.Window.UpdatedAt,
		&row.Window.DueAt, &row.Window.DueTime, &row.Window.DueTimezone,
		&row.Window.DuePrecision, &row.Window.ContentMode, &statesJSON)
	if err != nil {
		return row, err
	}
	row.Window.IsStarred = starred != 0
	row.Window.IsArchived = archived != 0
	_ = json.Unmarshal([]byte(tagsJSON), &row.Window.Tags)
	_ = json.Unmarshal([]byte(statesJSON), &row.Window.TaskStates)
	return row, nil
}

// GetWindow returns one window row by path, or nil when absent.
func (db *DB) GetWindow(path string) (*WindowRow, error) {
	r := db.conn.QueryRow(`SELECT `+windowColumns+` FROM windows WHERE path = ?`, path)
	row, err := scanWindowRow(r.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get window: %w", err)
	}
	return &row, nil
}

// ListWindows returns paginated window rows with an optional exact tag
// filter and sort key (updated_at, title, or path; updated_at default).
func (db *DB) ListWindows(limit, offset int, tag, sort string) ([]WindowRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if tag != "" {
		// Tags are stored as a JSON array; match the quoted element.
		where = `WHERE tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	orderBy := "updated_at DESC"
	switch sort {
	case "title":
		orderBy = "title COLLATE NOCASE ASC"
	case "path":
		orderBy = "path ASC"
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM windows `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count windows: %w", err)
	}

	query := `SELECT ` + windowColumns + ` FROM windows ` + where +
		` ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list windows: %w", err)
	}
	defer rows.Close()

	var out []WindowRow
	for rows.Next() {
		row, err := scanWindowRow(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// Sources loads every cataloged window as a WindowSource snapshot for the
// info index engine.
func (db *DB) Sources() ([]*models.WindowSource, error) {
	rows, err := db.conn.Query(`SELECT ` + windowColumns + ` FROM windows`)
	if err != nil {
		return nil, fmt.Errorf("index: sources: %w", err)
	}
	defer rows.Close()

	var out []*models.WindowSource
	for rows.Next() {
		row, err := scanWindowRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		w := row.Window
		out = append(out, &w)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
