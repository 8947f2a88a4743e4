package infoindex

import (
	"reflect"
	"testing"
	"time"

	"github.com/starford/laguz/internal/models"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func noteUUIDs(items []NoteItem) []string {
	out := []string{}
	for _, n := range items {
		out = append(out, n.WindowUUID)
	}
	return out
}

func taskUUIDs(items []TaskItem) []string {
	out := []string{}
	for _, task := range items {
		out = append(out, task.WindowUUID)
	}
	return out
}

func TestQueryTasks_FiltersOpenStarTagAndSearch(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "Buy milk\nDone", "task", func(w *models.WindowSource) {
			w.Title = "Home"
			w.Tags = []string{"home"}
			w.IsStarred = true
			w.TaskStates = []bool{false, true}
		}),
		makeWindow("w2", "Ship release", "task", func(w *models.WindowSource) {
			w.Title = "Work"
			w.Tags = []string{"work"}
		}),
	}
	tasks, _ := Build(windows)

	q := NewQuery()
	q.Text = "buy"
	q.Tag = "home"
	q.StarredOnly = true
	q.OpenTasksOnly = true

	filtered := QueryTasks(tasks, q, testNow)
	if len(filtered) != 1 {
		t.Fatalf("len = %d, want 1", len(filtered))
	}
	if filtered[0].WindowUUID != "w1" || filtered[0].Text != "Buy milk" || filtered[0].Done {
		t.Errorf("unexpected match: %+v", filtered[0])
	}
}

func TestQueryTasks_WindowMetadataAppliesToAllLines(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "buy milk\ncall", "task", func(w *models.WindowSource) {
			w.Tags = []string{"home"}
			w.IsStarred = true
			w.CreatedAt = "2026-02-10T10:00:00"
			w.UpdatedAt = "2026-02-10T10:10:00"
		}),
		makeWindow("w2", "meeting memo", "note", func(w *models.WindowSource) {
			w.Tags = []string{"work"}
		}),
	}
	tasks, notes := Build(windows)
	if len(tasks) != 2 || len(notes) != 2 {
		t.Fatalf("tasks, notes = %d, %d, want 2, 2", len(tasks), len(notes))
	}

	q := NewQuery()
	q.Tag = "home"
	q.StarredOnly = true
	// Ascending so the line-index tie-break yields a deterministic order;
	// query sorts apply one direction to every key in the chain.
	q.SortDesc = false
	filtered := QueryTasks(tasks, q, testNow)
	keys := []string{}
	for _, task := range filtered {
		keys = append(keys, task.ItemKey)
	}
	want := []string{"w1:0", "w1:1"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestQueryNotes_DefaultScopeExcludesArchived(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "visible", "note"),
		makeWindow("n2", "hidden", "note", func(w *models.WindowSource) { w.IsArchived = true }),
	}
	_, notes := Build(windows)

	got := QueryNotes(notes, NewQuery(), testNow)
	if !reflect.DeepEqual(noteUUIDs(got), []string{"n1"}) {
		t.Errorf("default scope = %v, want [n1]", noteUUIDs(got))
	}

	q := NewQuery()
	q.IncludeArchived = true
	got = QueryNotes(notes, q, testNow)
	if len(got) != 2 {
		t.Errorf("include_archived len = %d, want 2", len(got))
	}
}

func TestQueryNotes_ArchiveScopes(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "visible", "note"),
		makeWindow("n2", "hidden", "note", func(w *models.WindowSource) { w.IsArchived = true }),
	}
	_, notes := Build(windows)

	q := NewQuery()
	q.ArchiveScope = ScopeActive
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"n1"}) {
		t.Errorf("active = %v, want [n1]", got)
	}
	q.ArchiveScope = ScopeArchived
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"n2"}) {
		t.Errorf("archived = %v, want [n2]", got)
	}
	q.ArchiveScope = ScopeAll
	if got := QueryNotes(notes, q, testNow); len(got) != 2 {
		t.Errorf("all len = %d, want 2", len(got))
	}
}

func TestQueryNotes_IncludeArchivedOnlyAffectsActiveScope(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "visible", "note"),
		makeWindow("n2", "hidden", "note", func(w *models.WindowSource) { w.IsArchived = true }),
	}
	_, notes := Build(windows)

	q := NewQuery()
	q.IncludeArchived = true
	q.ArchiveScope = ScopeActive
	if got := QueryNotes(notes, q, testNow); len(got) != 2 {
		t.Errorf("legacy alias on active scope: len = %d, want 2", len(got))
	}

	q.ArchiveScope = ScopeArchived
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"n2"}) {
		t.Errorf("archived scope wins over alias: %v, want [n2]", got)
	}
}

func TestQueryTasks_DueFilterOverdueAndUpcoming(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "old", "task", func(w *models.WindowSource) { w.DueAt = "2001-01-01T00:00:00" }),
		makeWindow("w2", "future", "task", func(w *models.WindowSource) { w.DueAt = "2999-01-01T00:00:00" }),
	}
	tasks, _ := Build(windows)

	q := NewQuery()
	q.DueFilter = DueOverdue
	if got := taskUUIDs(QueryTasks(tasks, q, testNow)); !reflect.DeepEqual(got, []string{"w1"}) {
		t.Errorf("overdue = %v, want [w1]", got)
	}
	q.DueFilter = DueUpcoming
	if got := taskUUIDs(QueryTasks(tasks, q, testNow)); !reflect.DeepEqual(got, []string{"w2"}) {
		t.Errorf("upcoming = %v, want [w2]", got)
	}
}

func TestQueryNotes_DueFilterDatedAndUndated(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "dated", "note", func(w *models.WindowSource) { w.DueAt = "2026-03-01T00:00:00" }),
		makeWindow("n2", "undated", "note"),
	}
	_, notes := Build(windows)

	q := NewQuery()
	q.DueFilter = DueDated
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"n1"}) {
		t.Errorf("dated = %v, want [n1]", got)
	}
	q.DueFilter = DueUndated
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"n2"}) {
		t.Errorf("undated = %v, want [n2]", got)
	}
}

func TestQueryTasks_DueFilterDateTimePrecision(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "future", "task", func(w *models.WindowSource) {
			w.DueAt = "2099-01-01T00:00:00"
			w.DueTime = "09:30"
			w.DuePrecision = "datetime"
		}),
	}
	tasks, _ := Build(windows)
	q := NewQuery()
	q.DueFilter = DueUpcoming
	if got := taskUUIDs(QueryTasks(tasks, q, testNow)); !reflect.DeepEqual(got, []string{"w1"}) {
		t.Errorf("upcoming = %v, want [w1]", got)
	}
}

func TestQuery_ItemScopeContractIsPrimary(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "memo", "note"),
		makeWindow("t1", "task line", "task"),
	}
	tasks, notes := Build(windows)

	q := NewQuery()
	q.ItemScope = ItemsNotes
	if got := QueryTasks(tasks, q, testNow); len(got) != 0 {
		t.Errorf("tasks query with notes scope = %v, want empty", got)
	}

	q = NewQuery()
	q.ItemScope = ItemsTasks
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"t1"}) {
		t.Errorf("notes query with tasks scope = %v, want [t1]", got)
	}

	q = NewQuery()
	q.ItemScope = ItemsNotes
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"n1"}) {
		t.Errorf("notes query with notes scope = %v, want [n1]", got)
	}
}

func TestQuery_ContentModeFilterNarrowsImplicitly(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "memo", "note"),
		makeWindow("t1", "task line", "task"),
	}
	_, notes := Build(windows)

	// Scope tasks with filter left at "all": implicitly narrowed to task.
	q := NewQuery()
	q.ItemScope = ItemsTasks
	q.ContentMode = "all"
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"t1"}) {
		t.Errorf("implicit narrowing = %v, want [t1]", got)
	}
}

func TestQuery_UnknownEnumValuesCoerceToDefaults(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "memo", "note"),
		makeWindow("n2", "hidden", "note", func(w *models.WindowSource) { w.IsArchived = true }),
	}
	_, notes := Build(windows)

	q := Query{
		ArchiveScope: "warp",
		DueFilter:    "someday",
		ItemScope:    "gadgets",
		ContentMode:  "sketch",
		SortBy:       "entropy",
	}
	got := QueryNotes(notes, q, testNow)
	if !reflect.DeepEqual(noteUUIDs(got), []string{"n1"}) {
		t.Errorf("coerced defaults = %v, want [n1]", noteUUIDs(got))
	}
}

func TestQueryNotes_SortByDueAscending(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "a", "note", func(w *models.WindowSource) { w.DueAt = "2026-03-01T00:00:00" }),
		makeWindow("n2", "b", "note", func(w *models.WindowSource) { w.DueAt = "2026-02-01T00:00:00" }),
	}
	_, notes := Build(windows)

	q := NewQuery()
	q.SortBy = SortDue
	q.SortDesc = false
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"n2", "n1"}) {
		t.Errorf("due ascending = %v, want [n2 n1]", got)
	}
}

func TestQueryNotes_SortByDueAscendingUndatedLast(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "a", "note"),
		makeWindow("n2", "b", "note", func(w *models.WindowSource) { w.DueAt = "2026-02-01T00:00:00" }),
	}
	_, notes := Build(windows)

	q := NewQuery()
	q.SortBy = SortDue
	q.SortDesc = false
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"n2", "n1"}) {
		t.Errorf("undated should sort last ascending, got %v", got)
	}
}

func TestQueryNotes_SortByTitle(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "x", "note", func(w *models.WindowSource) { w.Title = "banana" }),
		makeWindow("n2", "x", "note", func(w *models.WindowSource) { w.Title = "Apple" }),
	}
	_, notes := Build(windows)

	q := NewQuery()
	q.SortBy = SortTitle
	q.SortDesc = false
	if got := noteUUIDs(QueryNotes(notes, q, testNow)); !reflect.DeepEqual(got, []string{"n2", "n1"}) {
		t.Errorf("title ascending is case-insensitive, got %v", got)
	}
}

func TestQueryTasks_SortByCreated(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "a", "task", func(w *models.WindowSource) { w.CreatedAt = "2026-01-02T00:00:00" }),
		makeWindow("w2", "b", "task", func(w *models.WindowSource) { w.CreatedAt = "2026-01-01T00:00:00" }),
	}
	tasks, _ := Build(windows)

	q := NewQuery()
	q.SortBy = SortCreated
	if got := taskUUIDs(QueryTasks(tasks, q, testNow)); !reflect.DeepEqual(got, []string{"w1", "w2"}) {
		t.Errorf("created descending = %v, want [w1 w2]", got)
	}
}

func TestQuery_TighteningFiltersNeverGrowsResults(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "a\nb", "task", func(w *models.WindowSource) {
			w.IsStarred = true
			w.TaskStates = []bool{false, true}
		}),
		makeWindow("w2", "c", "task"),
		makeWindow("w3", "d", "task", func(w *models.WindowSource) { w.IsArchived = true }),
	}
	tasks, _ := Build(windows)

	loose := NewQuery()
	loose.ArchiveScope = ScopeAll
	base := len(QueryTasks(tasks, loose, testNow))

	tighter := loose
	tighter.StarredOnly = true
	if n := len(QueryTasks(tasks, tighter, testNow)); n > base {
		t.Errorf("starred_only grew results: %d > %d", n, base)
	}
	tighter.OpenTasksOnly = true
	if n := len(QueryTasks(tasks, tighter, testNow)); n > base {
		t.Errorf("open_tasks_only grew results: %d > %d", n, base)
	}
}
