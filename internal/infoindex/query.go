package infoindex

import (
	"sort"
	"strings"
	"time"

	"github.com/starford/laguz/internal/duedate"
	"github.com/starford/laguz/internal/models"
)

// ArchiveScope selects which archive states a query sees.
type ArchiveScope string

const (
	ScopeActive   ArchiveScope = "active"
	ScopeArchived ArchiveScope = "archived"
	ScopeAll      ArchiveScope = "all"
)

// DueFilter buckets items by their due classification.
type DueFilter string

const (
	DueAll      DueFilter = "all"
	DueToday    DueFilter = "today"
	DueOverdue  DueFilter = "overdue"
	DueUpcoming DueFilter = "upcoming"
	DueDated    DueFilter = "dated"
	DueUndated  DueFilter = "undated"
)

// ItemScope restricts a query to task items, note items, or both.
type ItemScope string

const (
	ItemsAll   ItemScope = "all"
	ItemsTasks ItemScope = "tasks"
	ItemsNotes ItemScope = "notes"
)

// SortBy selects the primary sort comparator. Tie-breaks are fixed per key
// and follow the primary direction; there is no per-key direction.
type SortBy string

const (
	SortUpdated SortBy = "updated"
	SortDue     SortBy = "due"
	SortCreated SortBy = "created"
	SortTitle   SortBy = "title"
)

// Query is the filter/sort specification for QueryTasks and QueryNotes.
// Unknown enum-like values are silently coerced to each field's default.
// The zero value means: match everything active, sorted by updated
// ascending; use NewQuery for the conventional updated-descending default.
type Query struct {
	Text            string       `json:"text,omitempty"`
	Tag             string       `json:"tag,omitempty"`
	StarredOnly     bool         `json:"starred_only,omitempty"`
	OpenTasksOnly   bool         `json:"open_tasks_only,omitempty"`
	ArchiveScope    ArchiveScope `json:"archive_scope,omitempty"`
	IncludeArchived bool         `json:"include_archived,omitempty"`
	DueFilter       DueFilter    `json:"due_filter,omitempty"`
	ItemScope       ItemScope    `json:"item_scope,omitempty"`
	ContentMode     string       `json:"content_mode_filter,omitempty"`
	SortBy          SortBy       `json:"sort_by,omitempty"`
	SortDesc        bool         `json:"sort_desc"`
}

// NewQuery returns a Query with the documented defaults: active scope, all
// due states, both item kinds, sorted by updated descending.
func NewQuery() Query {
	return Query{
		ArchiveScope: ScopeActive,
		DueFilter:    DueAll,
		ItemScope:    ItemsAll,
		ContentMode:  "all",
		SortBy:       SortUpdated,
		SortDesc:     true,
	}
}

// effectiveScope resolves the archive scope, honoring the legacy
// include_archived alias only when the scope is (or defaults to) active.
func (q Query) effectiveScope() ArchiveScope {
	scope := ArchiveScope(strings.TrimSpace(strings.ToLower(string(q.ArchiveScope))))
	switch scope {
	case ScopeArchived, ScopeAll:
		return scope
	default:
		if q.IncludeArchived {
			return ScopeAll
		}
		return ScopeActive
	}
}

func matchesArchive(scope ArchiveScope, archived bool) bool {
	switch scope {
	case ScopeArchived:
		return archived
	case ScopeAll:
		return true
	default:
		return !archived
	}
}

// effectiveItemScope coerces unknown scopes to "all".
func (q Query) effectiveItemScope() ItemScope {
	switch ItemScope(strings.TrimSpace(strings.ToLower(string(q.ItemScope)))) {
	case ItemsTasks:
		return ItemsTasks
	case ItemsNotes:
		return ItemsNotes
	default:
		return ItemsAll
	}
}

// effectiveContentMode resolves the content-mode filter, implicitly
// narrowing "all" to the item scope when the scope is tasks or notes.
func (q Query) effectiveContentMode() string {
	mode := strings.TrimSpace(strings.ToLower(q.ContentMode))
	if mode != models.ModeTask && mode != models.ModeNote {
		mode = "all"
	}
	if mode == "all" {
		switch q.effectiveItemScope() {
		case ItemsTasks:
			return models.ModeTask
		case ItemsNotes:
			return models.ModeNote
		}
	}
	return mode
}

func matchesMode(filter, itemMode string) bool {
	if filter == "all" {
		return true
	}
	return filter == models.NormalizeContentMode(itemMode)
}

func (q Query) effectiveDueFilter() DueFilter {
	switch DueFilter(strings.TrimSpace(strings.ToLower(string(q.DueFilter)))) {
	case DueToday:
		return DueToday
	case DueOverdue:
		return DueOverdue
	case DueUpcoming:
		return DueUpcoming
	case DueDated:
		return DueDated
	case DueUndated:
		return DueUndated
	default:
		return DueAll
	}
}

func matchesDue(filter DueFilter, dueAt, dueTime string, precision duedate.Precision, now time.Time) bool {
	switch filter {
	case DueAll:
		return true
	case DueDated:
		_, ok := duedate.Compose(dueAt, dueTime, precision)
		return ok
	case DueUndated:
		_, ok := duedate.Compose(dueAt, dueTime, precision)
		return !ok
	case DueToday:
		return duedate.IsToday(dueAt, dueTime, precision, now)
	case DueOverdue:
		return duedate.IsOverdue(dueAt, dueTime, precision, now)
	case DueUpcoming:
		return duedate.IsUpcoming(dueAt, dueTime, precision, now)
	}
	return true
}

// matchesSearch checks a case-insensitive substring of the query against
// the joined haystack parts. An empty query matches everything.
func matchesSearch(search string, parts ...string) bool {
	query := strings.TrimSpace(strings.ToLower(search))
	if query == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join(parts, " "))
	return strings.Contains(haystack, query)
}

// matchesTag checks a case-insensitive substring against any one tag.
func matchesTag(tagFilter string, itemTags []string) bool {
	query := strings.TrimSpace(strings.ToLower(tagFilter))
	if query == "" {
		return true
	}
	for _, tag := range itemTags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// QueryTasks filters and sorts task items. A query scoped to notes yields an
// empty result; now anchors the due classification.
func QueryTasks(items []TaskItem, q Query, now time.Time) []TaskItem {
	out := []TaskItem{}
	if q.effectiveItemScope() == ItemsNotes {
		return out
	}
	scope := q.effectiveScope()
	mode := q.effectiveContentMode()
	due := q.effectiveDueFilter()

	for _, item := range items {
		if !matchesArchive(scope, item.IsArchived) {
			continue
		}
		if !matchesMode(mode, models.ModeTask) {
			continue
		}
		if q.StarredOnly && !item.IsStarred {
			continue
		}
		if q.OpenTasksOnly && item.Done {
			continue
		}
		if !matchesDue(due, item.DueAt, item.DueTime, item.DuePrecision, now) {
			continue
		}
		if !matchesTag(q.Tag, item.Tags) {
			continue
		}
		if !matchesSearch(q.Text, item.Title, item.Text, strings.Join(item.Tags, " ")) {
			continue
		}
		out = append(out, item)
	}
	sortTasks(out, q)
	return out
}

// QueryNotes filters and sorts note items. The item scope restricts by the
// item's own content mode.
func QueryNotes(items []NoteItem, q Query, now time.Time) []NoteItem {
	out := []NoteItem{}
	scope := q.effectiveScope()
	itemScope := q.effectiveItemScope()
	mode := q.effectiveContentMode()
	due := q.effectiveDueFilter()

	for _, item := range items {
		if !matchesArchive(scope, item.IsArchived) {
			continue
		}
		switch itemScope {
		case ItemsTasks:
			if item.ContentMode != models.ModeTask {
				continue
			}
		case ItemsNotes:
			if item.ContentMode != models.ModeNote {
				continue
			}
		}
		if !matchesMode(mode, item.ContentMode) {
			continue
		}
		if q.StarredOnly && !item.IsStarred {
			continue
		}
		if !matchesDue(due, item.DueAt, item.DueTime, item.DuePrecision, now) {
			continue
		}
		if !matchesTag(q.Tag, item.Tags) {
			continue
		}
		if !matchesSearch(q.Text, item.Title, item.FirstLine, strings.Join(item.Tags, " ")) {
			continue
		}
		out = append(out, item)
	}
	sortNotes(out, q)
	return out
}

func (q Query) effectiveSortBy() SortBy {
	switch SortBy(strings.TrimSpace(strings.ToLower(string(q.SortBy)))) {
	case SortDue:
		return SortDue
	case SortCreated:
		return SortCreated
	case SortTitle:
		return SortTitle
	default:
		return SortUpdated
	}
}

func cmpTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func parseTS(value string) time.Time {
	t, _ := duedate.ParseISO(value)
	return t
}

func cmpChain(cmps ...int) int {
	for _, c := range cmps {
		if c != 0 {
			return c
		}
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareTasksDefault(a, b TaskItem) int {
	return cmpChain(
		cmpTime(parseTS(a.UpdatedAt), parseTS(b.UpdatedAt)),
		cmpTime(parseTS(a.CreatedAt), parseTS(b.CreatedAt)),
		strings.Compare(a.WindowUUID, b.WindowUUID),
		cmpInt(a.LineIndex, b.LineIndex),
	)
}

func compareNotesDefault(a, b NoteItem) int {
	return cmpChain(
		cmpTime(parseTS(a.UpdatedAt), parseTS(b.UpdatedAt)),
		cmpTime(parseTS(a.CreatedAt), parseTS(b.CreatedAt)),
		strings.Compare(a.WindowUUID, b.WindowUUID),
	)
}

func sortTasks(items []TaskItem, q Query) {
	var cmp func(a, b TaskItem) int
	switch q.effectiveSortBy() {
	case SortTitle:
		cmp = func(a, b TaskItem) int {
			return cmpChain(
				strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
				strings.Compare(a.WindowUUID, b.WindowUUID),
				cmpInt(a.LineIndex, b.LineIndex),
			)
		}
	case SortDue:
		cmp = func(a, b TaskItem) int {
			return cmpChain(
				cmpTime(
					duedate.ForSort(a.DueAt, a.DueTime, a.DuePrecision),
					duedate.ForSort(b.DueAt, b.DueTime, b.DuePrecision),
				),
				cmpTime(parseTS(a.UpdatedAt), parseTS(b.UpdatedAt)),
				strings.Compare(a.WindowUUID, b.WindowUUID),
				cmpInt(a.LineIndex, b.LineIndex),
			)
		}
	case SortCreated:
		cmp = func(a, b TaskItem) int {
			return cmpChain(
				cmpTime(parseTS(a.CreatedAt), parseTS(b.CreatedAt)),
				cmpTime(parseTS(a.UpdatedAt), parseTS(b.UpdatedAt)),
				strings.Compare(a.WindowUUID, b.WindowUUID),
				cmpInt(a.LineIndex, b.LineIndex),
			)
		}
	default:
		cmp = compareTasksDefault
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if q.SortDesc {
			return c > 0
		}
		return c < 0
	})
}

func sortNotes(items []NoteItem, q Query) {
	var cmp func(a, b NoteItem) int
	switch q.effectiveSortBy() {
	case SortTitle:
		cmp = func(a, b NoteItem) int {
			return cmpChain(
				strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
				strings.Compare(a.WindowUUID, b.WindowUUID),
			)
		}
	case SortDue:
		cmp = func(a, b NoteItem) int {
			return cmpChain(
				cmpTime(
					duedate.ForSort(a.DueAt, a.DueTime, a.DuePrecision),
					duedate.ForSort(b.DueAt, b.DueTime, b.DuePrecision),
				),
				cmpTime(parseTS(a.UpdatedAt), parseTS(b.UpdatedAt)),
				strings.Compare(a.WindowUUID, b.WindowUUID),
			)
		}
	case SortCreated:
		cmp = func(a, b NoteItem) int {
			return cmpChain(
				cmpTime(parseTS(a.CreatedAt), parseTS(b.CreatedAt)),
				cmpTime(parseTS(a.UpdatedAt), parseTS(b.UpdatedAt)),
				strings.Compare(a.WindowUUID, b.WindowUUID),
			)
		}
	default:
		cmp = compareNotesDefault
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if q.SortDesc {
			return c > 0
		}
		return c < 0
	})
}
