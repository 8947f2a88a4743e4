package infoindex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/laguz/internal/duedate"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/tags"
)

// Build walks the window collection once and derives the two flat item
// lists. Nil sources are skipped, tag lists are normalized, the content mode
// is coerced to task/note, and negative line indices are dropped. Both lists
// come back in the default order (updated desc, created desc, uuid asc, line
// asc); empty or unparsable timestamps compare as the minimum instant and so
// land at the end.
func Build(sources []*models.WindowSource) ([]TaskItem, []NoteItem) {
	var taskItems []TaskItem
	var noteItems []NoteItem

	for _, w := range sources {
		if w == nil {
			continue
		}

		firstLine := ""
		if w.Text != "" {
			firstLine = strings.TrimSpace(strings.SplitN(w.Text, "\n", 2)[0])
		}
		title := displayTitle(strings.TrimSpace(w.Title), firstLine, w.UUID)
		normTags := tags.Normalize(w.Tags)
		mode := models.NormalizeContentMode(w.ContentMode)
		precision := duedate.NormalizePrecision(w.DuePrecision)

		noteItems = append(noteItems, NoteItem{
			WindowUUID:   w.UUID,
			Title:        title,
			FirstLine:    firstLine,
			ContentMode:  mode,
			Tags:         normTags,
			IsStarred:    w.IsStarred,
			CreatedAt:    w.CreatedAt,
			UpdatedAt:    w.UpdatedAt,
			DueAt:        w.DueAt,
			DueTime:      w.DueTime,
			DueTimezone:  w.DueTimezone,
			DuePrecision: precision,
			IsArchived:   w.IsArchived,
		})

		if mode != models.ModeTask {
			continue
		}

		for _, line := range w.TaskLines() {
			if line.Index < 0 {
				continue
			}
			taskItems = append(taskItems, TaskItem{
				ItemKey:      itemKey(w.UUID, line.Index),
				WindowUUID:   w.UUID,
				Title:        title,
				Text:         line.Text,
				LineIndex:    line.Index,
				Done:         line.Done,
				Tags:         normTags,
				IsStarred:    w.IsStarred,
				CreatedAt:    w.CreatedAt,
				UpdatedAt:    w.UpdatedAt,
				DueAt:        w.DueAt,
				DueTime:      w.DueTime,
				DueTimezone:  w.DueTimezone,
				DuePrecision: precision,
				IsArchived:   w.IsArchived,
			})
		}
	}

	sort.Slice(taskItems, func(i, j int) bool {
		return defaultTaskLess(taskItems[i], taskItems[j])
	})
	sort.Slice(noteItems, func(i, j int) bool {
		return defaultNoteLess(noteItems[i], noteItems[j])
	})
	return taskItems, noteItems
}

// defaultTaskLess orders the pre-query task list: timestamps descending,
// then window uuid and line index ascending. Unlike the query comparators,
// the tie-break direction here is fixed per key.
func defaultTaskLess(a, b TaskItem) bool {
	if c := cmpTime(parseTS(a.UpdatedAt), parseTS(b.UpdatedAt)); c != 0 {
		return c > 0
	}
	if c := cmpTime(parseTS(a.CreatedAt), parseTS(b.CreatedAt)); c != 0 {
		return c > 0
	}
	if c := strings.Compare(a.WindowUUID, b.WindowUUID); c != 0 {
		return c < 0
	}
	return a.LineIndex < b.LineIndex
}

func defaultNoteLess(a, b NoteItem) bool {
	if c := cmpTime(parseTS(a.UpdatedAt), parseTS(b.UpdatedAt)); c != 0 {
		return c > 0
	}
	if c := cmpTime(parseTS(a.CreatedAt), parseTS(b.CreatedAt)); c != 0 {
		return c > 0
	}
	return a.WindowUUID < b.WindowUUID
}

func itemKey(windowUUID string, lineIndex int) string {
	return fmt.Sprintf("%s:%d", windowUUID, lineIndex)
}
