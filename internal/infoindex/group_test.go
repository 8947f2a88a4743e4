package infoindex

import (
	"reflect"
	"strings"
	"testing"

	"github.com/starford/laguz/internal/models"
)

func groupKeys[T any](groups []Group[T]) []string {
	keys := []string{}
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	return keys
}

func findGroup[T any](t *testing.T, groups []Group[T], key string) Group[T] {
	t.Helper()
	for _, g := range groups {
		if g.Key == key {
			return g
		}
	}
	t.Fatalf("group %q not found in %v", key, groupKeys(groups))
	return Group[T]{}
}

func TestGroupTasksSmart_PriorityOrder(t *testing.T) {
	// An undone task that is overdue, due today, and starred must land in
	// overdue only.
	windows := []*models.WindowSource{
		makeWindow("w1", "everything at once", "task", func(w *models.WindowSource) {
			w.IsStarred = true
			w.DueAt = "2026-03-01T00:00:00"
			w.DueTime = "09:00"
			w.DuePrecision = "datetime"
		}),
		makeWindow("w2", "due later today", "task", func(w *models.WindowSource) {
			w.DueAt = "2026-03-01T00:00:00"
			w.DueTime = "23:00"
			w.DuePrecision = "datetime"
		}),
		makeWindow("w3", "starred", "task", func(w *models.WindowSource) { w.IsStarred = true }),
		makeWindow("w4", "plain", "task"),
	}
	tasks, _ := Build(windows)
	groups := GroupTasksSmart(tasks, testNow)

	want := []string{KeyOverdue, KeyToday, KeyStarred, KeyOther}
	if got := groupKeys(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	overdue := findGroup(t, groups, KeyOverdue)
	if len(overdue.Items) != 1 || overdue.Items[0].WindowUUID != "w1" {
		t.Errorf("overdue items = %v", overdue.Items)
	}
	starred := findGroup(t, groups, KeyStarred)
	if len(starred.Items) != 1 || starred.Items[0].WindowUUID != "w3" {
		t.Errorf("starred items = %v", starred.Items)
	}
}

func TestGroupTasksSmart_DoneTasksGoToStarredOrOther(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "done but old", "task", func(w *models.WindowSource) {
			w.DueAt = "2001-01-01T00:00:00"
			w.TaskStates = []bool{true}
		}),
	}
	tasks, _ := Build(windows)
	groups := GroupTasksSmart(tasks, testNow)
	if got := groupKeys(groups); !reflect.DeepEqual(got, []string{KeyOther}) {
		t.Errorf("keys = %v, want [other]", got)
	}
}

func TestGroupNotesSmart_StarredAndOther(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "memo", "note", func(w *models.WindowSource) { w.IsStarred = true }),
		makeWindow("n2", "other memo", "note"),
	}
	_, notes := Build(windows)
	groups := GroupNotesSmart(notes)
	if got := groupKeys(groups); !reflect.DeepEqual(got, []string{KeyStarred, KeyOther}) {
		t.Errorf("keys = %v, want [starred other]", got)
	}
}

func TestGroupMixedSmart(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "starred task", "task", func(w *models.WindowSource) { w.IsStarred = true }),
		makeWindow("n1", "memo", "note", func(w *models.WindowSource) { w.IsStarred = true }),
		makeWindow("n2", "other memo", "note"),
	}
	tasks, notes := Build(windows)
	groups := GroupMixedSmart(tasks, notes, testNow)

	starred := findGroup(t, groups, KeyStarred)
	// w1 contributes a task and a note item, n1 a note item.
	if len(starred.Items) != 3 {
		t.Errorf("starred items = %d, want 3", len(starred.Items))
	}
	findGroup(t, groups, KeyOther)
}

func TestGroupTasksByTag(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "task1", "task", func(w *models.WindowSource) { w.Tags = []string{"work"} }),
		makeWindow("w2", "task2", "task", func(w *models.WindowSource) { w.Tags = []string{"home"} }),
		makeWindow("w3", "untagged", "task"),
	}
	tasks, _ := Build(windows)
	groups := GroupTasksByTag(tasks)
	keys := groupKeys(groups)
	for _, want := range []string{"tag:work", "tag:home", "tag:"} {
		found := false
		for _, k := range keys {
			found = found || k == want
		}
		if !found {
			t.Errorf("missing key %q in %v", want, keys)
		}
	}
	for _, g := range groups {
		if len(g.Items) != 1 {
			t.Errorf("group %q has %d items, want 1", g.Key, len(g.Items))
		}
	}
}

func TestGroupTasksByTag_FirstTagWinsAndOrderFollowsInput(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "multi", "task", func(w *models.WindowSource) {
			w.Tags = []string{"Alpha", "beta"}
			w.UpdatedAt = "2026-02-10T12:00:00"
		}),
		makeWindow("w2", "untagged first", "task", func(w *models.WindowSource) {
			w.UpdatedAt = "2026-02-10T11:00:00"
		}),
		makeWindow("w3", "beta", "task", func(w *models.WindowSource) {
			w.Tags = []string{"beta"}
			w.UpdatedAt = "2026-02-10T10:00:00"
		}),
	}
	tasks, _ := Build(windows)
	groups := GroupTasksByTag(tasks)
	// Default order is updated desc, so buckets appear alpha, untagged, beta;
	// the untagged bucket is not forced to the end.
	want := []string{"tag:alpha", "tag:", "tag:beta"}
	if got := groupKeys(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
	if label := groups[0].Label; !strings.Contains(label, "Alpha") {
		t.Errorf("label should keep first-seen casing, got %q", label)
	}
}

func TestGroupNotesByTag(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("n1", "memo1", "note", func(w *models.WindowSource) { w.Tags = []string{"work"} }),
		makeWindow("n2", "memo2", "note", func(w *models.WindowSource) { w.Tags = []string{"home"} }),
		makeWindow("n3", "memo3", "note"),
	}
	_, notes := Build(windows)
	groups := GroupNotesByTag(notes)
	if len(groups) != 3 {
		t.Fatalf("len(groups) = %d, want 3", len(groups))
	}
}

func TestGroupTasksByWindow_StarMarkerAndCount(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "t1\nt2", "task", func(w *models.WindowSource) {
			w.Title = "Project A"
			w.IsStarred = true
			w.TaskStates = []bool{false, true}
		}),
		makeWindow("w2", "t3", "task", func(w *models.WindowSource) { w.Title = "Project B" }),
	}
	tasks, _ := Build(windows)
	groups := GroupTasksByWindow(tasks)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	g1 := findGroup(t, groups, "window:w1")
	if !strings.Contains(g1.Label, "★") {
		t.Errorf("starred window label missing marker: %q", g1.Label)
	}
	if !strings.Contains(g1.Label, "(2)") {
		t.Errorf("window label missing count suffix: %q", g1.Label)
	}
	g2 := findGroup(t, groups, "window:w2")
	if strings.Contains(g2.Label, "★") {
		t.Errorf("unstarred window label has marker: %q", g2.Label)
	}
}

func TestGroupMixedByTag(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "task", "task", func(w *models.WindowSource) { w.Tags = []string{"work"} }),
		makeWindow("n1", "memo", "note", func(w *models.WindowSource) { w.Tags = []string{"work"} }),
	}
	tasks, notes := Build(windows)
	groups := GroupMixedByTag(tasks, notes)
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	if groups[0].Key != "tag:work" {
		t.Errorf("key = %q, want tag:work", groups[0].Key)
	}
	// w1 contributes a task and a note item, n1 a note item.
	if len(groups[0].Items) != 3 {
		t.Errorf("items = %d, want 3", len(groups[0].Items))
	}
}

func TestGroupMixedByWindow(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "task", "task", func(w *models.WindowSource) { w.Title = "Proj" }),
	}
	tasks, notes := Build(windows)
	groups := GroupMixedByWindow(tasks, notes)
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	if groups[0].Key != "window:w1" {
		t.Errorf("key = %q, want window:w1", groups[0].Key)
	}
	if len(groups[0].Items) != 2 {
		t.Errorf("items = %d, want 2 (task + note from same window)", len(groups[0].Items))
	}
}

func TestGrouping_IsAPartition(t *testing.T) {
	windows := []*models.WindowSource{
		makeWindow("w1", "a\nb\nc", "task", func(w *models.WindowSource) {
			w.Tags = []string{"work"}
			w.IsStarred = true
			w.DueAt = "2001-01-01"
			w.TaskStates = []bool{false, true, false}
		}),
		makeWindow("w2", "d", "task"),
		makeWindow("n1", "memo", "note", func(w *models.WindowSource) { w.IsStarred = true }),
	}
	tasks, notes := Build(windows)

	checkTasks := func(name string, groups []Group[TaskItem]) {
		seen := map[string]int{}
		for _, g := range groups {
			for _, item := range g.Items {
				seen[item.ItemKey]++
			}
		}
		if len(seen) != len(tasks) {
			t.Errorf("%s: covered %d keys, want %d", name, len(seen), len(tasks))
		}
		for key, n := range seen {
			if n != 1 {
				t.Errorf("%s: key %q appears %d times", name, key, n)
			}
		}
	}
	checkTasks("smart", GroupTasksSmart(tasks, testNow))
	checkTasks("by_tag", GroupTasksByTag(tasks))
	checkTasks("by_window", GroupTasksByWindow(tasks))

	mixedGroups := GroupMixedSmart(tasks, notes, testNow)
	total := 0
	for _, g := range mixedGroups {
		total += len(g.Items)
	}
	if total != len(tasks)+len(notes) {
		t.Errorf("mixed smart covered %d items, want %d", total, len(tasks)+len(notes))
	}
}

func TestGrouping_OmitsEmptyBuckets(t *testing.T) {
	windows := []*models.WindowSource{makeWindow("w1", "plain", "task")}
	tasks, _ := Build(windows)
	groups := GroupTasksSmart(tasks, testNow)
	if got := groupKeys(groups); !reflect.DeepEqual(got, []string{KeyOther}) {
		t.Errorf("keys = %v, want [other]", got)
	}
}
