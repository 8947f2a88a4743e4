// Package parser encodes and decodes window documents: YAML frontmatter
// (between leading --- delimiters) carrying window metadata, followed by the
// window text as the body.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/laguz/internal/models"
)

// frontmatter is the on-disk metadata block of a window document.
type frontmatter struct {
	UUID         string   `yaml:"uuid,omitempty"`
	Title        string   `yaml:"title,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
	Starred      bool     `yaml:"starred,omitempty"`
	Archived     bool     `yaml:"archived,omitempty"`
	Created      string   `yaml:"created,omitempty"`
	Updated      string   `yaml:"updated,omitempty"`
	Due          string   `yaml:"due,omitempty"`
	DueTime      string   `yaml:"due_time,omitempty"`
	DueTimezone  string   `yaml:"due_timezone,omitempty"`
	DuePrecision string   `yaml:"due_precision,omitempty"`
	Mode         string   `yaml:"mode,omitempty"`
	TaskStates   []bool   `yaml:"task_states,omitempty"`
}

// Parse decodes a window document. A document without frontmatter (or with
// invalid YAML) falls back to a bare note-mode window whose text is the
// entire content.
func Parse(data []byte) (*models.WindowSource, error) {
	fm, body := splitFrontmatter(data)
	w := &models.WindowSource{
		Text:        body,
		ContentMode: models.ModeNote,
	}
	if fm != nil {
		w.UUID = fm.UUID
		w.Title = fm.Title
		w.Tags = fm.Tags
		w.IsStarred = fm.Starred
		w.IsArchived = fm.Archived
		w.CreatedAt = fm.Created
		w.UpdatedAt = fm.Updated
		w.DueAt = fm.Due
		w.DueTime = fm.DueTime
		w.DueTimezone = fm.DueTimezone
		w.DuePrecision = fm.DuePrecision
		w.ContentMode = models.NormalizeContentMode(fm.Mode)
		w.TaskStates = fm.TaskStates
	}
	return w, nil
}

// splitFrontmatter separates the YAML block (between leading --- delimiters)
// from the body. If no frontmatter is found, or the YAML is invalid, the
// entire content is body.
func splitFrontmatter(data []byte) (*frontmatter, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	// Strip only the newline that terminates the closing delimiter line, so
	// Parse and Compose stay inverses even when the text starts with blank
	// lines.
	body := strings.TrimPrefix(string(afterDelim), "\n")

	var fm frontmatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return &fm, body
}

// Compose serializes a window into its document form. The inverse of Parse
// for every field the frontmatter carries.
func Compose(w *models.WindowSource) ([]byte, error) {
	fm := frontmatter{
		UUID:         w.UUID,
		Title:        w.Title,
		Tags:         w.Tags,
		Starred:      w.IsStarred,
		Archived:     w.IsArchived,
		Created:      w.CreatedAt,
		Updated:      w.UpdatedAt,
		Due:          w.DueAt,
		DueTime:      w.DueTime,
		DueTimezone:  w.DueTimezone,
		DuePrecision: w.DuePrecision,
		Mode:         models.NormalizeContentMode(w.ContentMode),
	}
	if fm.Mode == models.ModeTask {
		fm.TaskStates = w.TaskStates
	}

	block, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("parser: marshal frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(block)
	buf.WriteString("---\n")
	buf.WriteString(w.Text)
	return buf.Bytes(), nil
}
