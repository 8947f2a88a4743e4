package infoindex

import (
	"fmt"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/laguz/internal/duedate"
)

// Group is one labeled, ordered partition of an item list. Key is the only
// machine-comparable field; the label carries presentation detail (icon and
// count suffix).
type Group[T any] struct {
	Label string `json:"label"`
	Key   string `json:"group_key"`
	Items []T    `json:"items"`
}

// Smart bucket keys, in emission order.
const (
	KeyOverdue = "overdue"
	KeyToday   = "today"
	KeyStarred = "starred"
	KeyOther   = "other"
)

// MixedItem wraps either a task or a note for the mixed grouping variants.
// Exactly one of the two fields is set.
type MixedItem struct {
	Task *TaskItem `json:"task,omitempty"`
	Note *NoteItem `json:"note,omitempty"`
}

// IsTask reports whether the mixed item wraps a task.
func (m MixedItem) IsTask() bool { return m.Task != nil }

func (m MixedItem) windowUUID() string {
	if m.Task != nil {
		return m.Task.WindowUUID
	}
	return m.Note.WindowUUID
}

func (m MixedItem) title() string {
	if m.Task != nil {
		return m.Task.Title
	}
	return m.Note.Title
}

func (m MixedItem) tags() []string {
	if m.Task != nil {
		return m.Task.Tags
	}
	return m.Note.Tags
}

func (m MixedItem) starred() bool {
	if m.Task != nil {
		return m.Task.IsStarred
	}
	return m.Note.IsStarred
}

func mixed(tasks []TaskItem, notes []NoteItem) []MixedItem {
	out := make([]MixedItem, 0, len(tasks)+len(notes))
	for i := range tasks {
		t := tasks[i]
		out = append(out, MixedItem{Task: &t})
	}
	for i := range notes {
		n := notes[i]
		out = append(out, MixedItem{Note: &n})
	}
	return out
}

// smartTaskKey classifies one task in priority order: an undone overdue task
// lands in "overdue" even when it is also due today or starred.
func smartTaskKey(t TaskItem, now time.Time) string {
	if !t.Done && duedate.IsOverdue(t.DueAt, t.DueTime, t.DuePrecision, now) {
		return KeyOverdue
	}
	if !t.Done && duedate.IsToday(t.DueAt, t.DueTime, t.DuePrecision, now) {
		return KeyToday
	}
	if t.IsStarred {
		return KeyStarred
	}
	return KeyOther
}

func smartNoteKey(n NoteItem) string {
	if n.IsStarred {
		return KeyStarred
	}
	return KeyOther
}

func smartLabel(key string, count int) string {
	switch key {
	case KeyOverdue:
		return fmt.Sprintf("Overdue (%d)", count)
	case KeyToday:
		return fmt.Sprintf("Today (%d)", count)
	case KeyStarred:
		return fmt.Sprintf("★ Starred (%d)", count)
	default:
		return fmt.Sprintf("Other (%d)", count)
	}
}

// emitSmart turns the four fixed buckets into groups, omitting empty ones.
func emitSmart[T any](buckets map[string][]T) []Group[T] {
	out := []Group[T]{}
	for _, key := range []string{KeyOverdue, KeyToday, KeyStarred, KeyOther} {
		items := buckets[key]
		if len(items) == 0 {
			continue
		}
		out = append(out, Group[T]{Key: key, Label: smartLabel(key, len(items)), Items: items})
	}
	return out
}

// GroupTasksSmart partitions tasks into overdue, today, starred, and other,
// tested in that priority order.
func GroupTasksSmart(tasks []TaskItem, now time.Time) []Group[TaskItem] {
	buckets := make(map[string][]TaskItem, 4)
	for _, t := range tasks {
		key := smartTaskKey(t, now)
		buckets[key] = append(buckets[key], t)
	}
	return emitSmart(buckets)
}

// GroupNotesSmart partitions notes into starred and other.
func GroupNotesSmart(notes []NoteItem) []Group[NoteItem] {
	buckets := make(map[string][]NoteItem, 2)
	for _, n := range notes {
		key := smartNoteKey(n)
		buckets[key] = append(buckets[key], n)
	}
	return emitSmart(buckets)
}

// GroupMixedSmart runs tasks and notes through the smart classification
// concurrently: tasks use the four-bucket task rule, notes use starred/other,
// and each bucket keeps tasks before notes in their original relative order.
func GroupMixedSmart(tasks []TaskItem, notes []NoteItem, now time.Time) []Group[MixedItem] {
	buckets := make(map[string][]MixedItem, 4)
	for _, m := range mixed(tasks, notes) {
		var key string
		if m.IsTask() {
			key = smartTaskKey(*m.Task, now)
		} else {
			key = smartNoteKey(*m.Note)
		}
		buckets[key] = append(buckets[key], m)
	}
	return emitSmart(buckets)
}

// groupBy buckets items in first-appearance order of keyOf, then labels the
// finished groups. The ordered map keeps the emission order explicit rather
// than incidental.
func groupBy[T any](items []T, keyOf func(T) string, labelOf func(key string, items []T) string) []Group[T] {
	buckets := orderedmap.New[string, []T]()
	for _, item := range items {
		key := keyOf(item)
		existing, _ := buckets.Get(key)
		buckets.Set(key, append(existing, item))
	}
	out := []Group[T]{}
	for pair := buckets.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Group[T]{
			Key:   pair.Key,
			Label: labelOf(pair.Key, pair.Value),
			Items: pair.Value,
		})
	}
	return out
}

// tagKey classifies an item solely by its first tag; untagged items share
// the bare "tag:" bucket.
func tagKey(itemTags []string) string {
	if len(itemTags) == 0 {
		return "tag:"
	}
	return "tag:" + strings.ToLower(itemTags[0])
}

func tagLabel[T any](key string, items []T, firstTagOf func(T) string) string {
	if key == "tag:" {
		return fmt.Sprintf("\U0001F4C1 Untagged (%d)", len(items))
	}
	// First member's casing wins for display.
	return fmt.Sprintf("#%s (%d)", firstTagOf(items[0]), len(items))
}

func firstTag(itemTags []string) string {
	if len(itemTags) == 0 {
		return ""
	}
	return itemTags[0]
}

// GroupTasksByTag buckets tasks by their first tag in first-appearance
// order; untagged tasks form the "tag:" bucket wherever first encountered.
func GroupTasksByTag(tasks []TaskItem) []Group[TaskItem] {
	return groupBy(tasks,
		func(t TaskItem) string { return tagKey(t.Tags) },
		func(key string, items []TaskItem) string {
			return tagLabel(key, items, func(t TaskItem) string { return firstTag(t.Tags) })
		})
}

// GroupNotesByTag buckets notes by their first tag.
func GroupNotesByTag(notes []NoteItem) []Group[NoteItem] {
	return groupBy(notes,
		func(n NoteItem) string { return tagKey(n.Tags) },
		func(key string, items []NoteItem) string {
			return tagLabel(key, items, func(n NoteItem) string { return firstTag(n.Tags) })
		})
}

// GroupMixedByTag buckets the concatenation of tasks then notes by first tag.
func GroupMixedByTag(tasks []TaskItem, notes []NoteItem) []Group[MixedItem] {
	return groupBy(mixed(tasks, notes),
		func(m MixedItem) string { return tagKey(m.tags()) },
		func(key string, items []MixedItem) string {
			return tagLabel(key, items, func(m MixedItem) string { return firstTag(m.tags()) })
		})
}

func windowLabel(title string, starred bool, count int) string {
	star := ""
	if starred {
		star = " ★"
	}
	return fmt.Sprintf("%s%s (%d)", title, star, count)
}

// GroupTasksByWindow buckets tasks by source window in first-appearance
// order. The label is the window's display title, a star marker when any
// member is starred, and a count suffix.
func GroupTasksByWindow(tasks []TaskItem) []Group[TaskItem] {
	return groupBy(tasks,
		func(t TaskItem) string { return "window:" + t.WindowUUID },
		func(_ string, items []TaskItem) string {
			starred := false
			for _, t := range items {
				starred = starred || t.IsStarred
			}
			return windowLabel(items[0].Title, starred, len(items))
		})
}

// GroupNotesByWindow buckets notes by source window.
func GroupNotesByWindow(notes []NoteItem) []Group[NoteItem] {
	return groupBy(notes,
		func(n NoteItem) string { return "window:" + n.WindowUUID },
		func(_ string, items []NoteItem) string {
			starred := false
			for _, n := range items {
				starred = starred || n.IsStarred
			}
			return windowLabel(items[0].Title, starred, len(items))
		})
}

// GroupMixedByWindow buckets the concatenation of tasks then notes by
// source window, so a window's tasks and its note land in the same group.
func GroupMixedByWindow(tasks []TaskItem, notes []NoteItem) []Group[MixedItem] {
	return groupBy(mixed(tasks, notes),
		func(m MixedItem) string { return "window:" + m.windowUUID() },
		func(_ string, items []MixedItem) string {
			starred := false
			for _, m := range items {
				starred = starred || m.starred()
			}
			return windowLabel(items[0].title(), starred, len(items))
		})
}
