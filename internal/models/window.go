// Package models defines the domain types for Laguz.
package models

import (
	"strings"
	"time"
)

// Content modes for a text window.
const (
	ModeTask = "task"
	ModeNote = "note"
)

// NormalizeContentMode coerces any value to "task" or "note".
func NormalizeContentMode(raw string) string {
	if strings.TrimSpace(strings.ToLower(raw)) == ModeTask {
		return ModeTask
	}
	return ModeNote
}

// WindowSource is the read-only snapshot of one free-floating text window,
// the unit of raw data the info index consumes. Timestamps and due values
// are ISO-8601 strings and may be empty; defaults are applied downstream.
type WindowSource struct {
	UUID         string   `json:"uuid"`
	Title        string   `json:"title,omitempty"`
	Text         string   `json:"text"`
	Tags         []string `json:"tags,omitempty"`
	IsStarred    bool     `json:"is_starred"`
	IsArchived   bool     `json:"is_archived"`
	CreatedAt    string   `json:"created_at,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty"`
	DueAt        string   `json:"due_at,omitempty"`
	DueTime      string   `json:"due_time,omitempty"`
	DueTimezone  string   `json:"due_timezone,omitempty"`
	DuePrecision string   `json:"due_precision,omitempty"`
	ContentMode  string   `json:"content_mode"`
	TaskStates   []bool   `json:"task_states,omitempty"`
}

// TaskLine is one checklist line of a task-mode window.
type TaskLine struct {
	Index int
	Text  string
	Done  bool
}

// Lines splits the window text into lines. An empty text yields no lines.
func (w *WindowSource) Lines() []string {
	if w.Text == "" {
		return nil
	}
	return strings.Split(w.Text, "\n")
}

// TaskLines returns the per-line task triples for a task-mode window, with
// the state array aligned to the line count: missing states default to
// false, extra states are ignored. Non-task windows yield nil.
func (w *WindowSource) TaskLines() []TaskLine {
	if NormalizeContentMode(w.ContentMode) != ModeTask {
		return nil
	}
	lines := w.Lines()
	out := make([]TaskLine, 0, len(lines))
	for i, line := range lines {
		done := false
		if i < len(w.TaskStates) {
			done = w.TaskStates[i]
		}
		out = append(out, TaskLine{Index: i, Text: line, Done: done})
	}
	return out
}

// WindowMetadata is a lightweight representation returned by list operations.
type WindowMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
