// Package infoindex builds a flat, queryable index over a collection of
// text-window snapshots: one TaskItem per checklist line of every task-mode
// window plus one NoteItem per window, with filtering, multi-key sorting,
// summary statistics, and grouping on top. Every operation is a pure
// function over its inputs; malformed input degrades to defaults, never to
// an error.
package infoindex

import (
	"fmt"

	"github.com/starford/laguz/internal/duedate"
)

// TaskItem is the derived record for one checklist line. It inherits the
// owning window's metadata identically across all lines and is an immutable
// snapshot: rebuilding from unchanged sources yields identical items.
type TaskItem struct {
	ItemKey      string            `json:"item_key"`
	WindowUUID   string            `json:"window_uuid"`
	Title        string            `json:"title"`
	Text         string            `json:"text"`
	LineIndex    int               `json:"line_index"`
	Done         bool              `json:"done"`
	Tags         []string          `json:"tags"`
	IsStarred    bool              `json:"is_starred"`
	CreatedAt    string            `json:"created_at,omitempty"`
	UpdatedAt    string            `json:"updated_at,omitempty"`
	DueAt        string            `json:"due_at,omitempty"`
	DueTime      string            `json:"due_time,omitempty"`
	DueTimezone  string            `json:"due_timezone,omitempty"`
	DuePrecision duedate.Precision `json:"due_precision"`
	IsArchived   bool              `json:"is_archived"`
}

// NoteItem is the derived record for one window. Every window produces
// exactly one NoteItem regardless of content mode.
type NoteItem struct {
	WindowUUID   string            `json:"window_uuid"`
	Title        string            `json:"title"`
	FirstLine    string            `json:"first_line"`
	ContentMode  string            `json:"content_mode"`
	Tags         []string          `json:"tags"`
	IsStarred    bool              `json:"is_starred"`
	CreatedAt    string            `json:"created_at,omitempty"`
	UpdatedAt    string            `json:"updated_at,omitempty"`
	DueAt        string            `json:"due_at,omitempty"`
	DueTime      string            `json:"due_time,omitempty"`
	DueTimezone  string            `json:"due_timezone,omitempty"`
	DuePrecision duedate.Precision `json:"due_precision"`
	IsArchived   bool              `json:"is_archived"`
}

// displayTitle picks the display title for a window: the explicit title,
// else the first text line, else a short-uuid placeholder.
func displayTitle(title, firstLine, windowUUID string) string {
	if title != "" {
		return title
	}
	if firstLine != "" {
		return firstLine
	}
	if windowUUID != "" {
		short := windowUUID
		if len(short) > 8 {
			short = short[:8]
		}
		return fmt.Sprintf("TextWindow %s", short)
	}
	return "TextWindow"
}
