package index

import (
	"os"
	"reflect"
	"testing"

	"github.com/starford/laguz/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "laguz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRow(path, uuid string) WindowRow {
	return WindowRow{
		Path:     path,
		Checksum: "cs-" + path,
		Window: models.WindowSource{
			UUID:      uuid,
			Title:     "Window " + uuid,
			Text:      "body of " + path,
			Tags:      []string{"work"},
			CreatedAt: "2026-01-01T09:00:00",
			UpdatedAt: "2026-01-02T09:00:00",
		},
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM windows`).Scan(&count); err != nil {
		t.Fatalf("windows table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertWindow(testRow("hello.md", "u1")); err != nil {
		t.Fatalf("UpsertWindow: %v", err)
	}
	cs, err := db.GetChecksum("hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "cs-hello.md" {
		t.Errorf("checksum = %q, want %q", cs, "cs-hello.md")
	}
}

func TestGetWindow_RoundTrip(t *testing.T) {
	db := testDB(t)
	row := WindowRow{
		Path:     "rt.md",
		Checksum: "abc",
		Window: models.WindowSource{
			UUID:         "rt-uuid",
			Title:        "Groceries",
			Text:         "milk\neggs",
			Tags:         []string{"home", "errands"},
			IsStarred:    true,
			IsArchived:   false,
			CreatedAt:    "2026-02-01T08:00:00",
			UpdatedAt:    "2026-02-02T08:00:00",
			DueAt:        "2026-02-10T00:00:00",
			DueTime:      "14:30",
			DueTimezone:  "Europe/Berlin",
			DuePrecision: "datetime",
			ContentMode:  models.ModeTask,
			TaskStates:   []bool{true, false},
		},
	}
	if err := db.UpsertWindow(row); err != nil {
		t.Fatalf("UpsertWindow: %v", err)
	}

	got, err := db.GetWindow("rt.md")
	if err != nil {
		t.Fatalf("GetWindow: %v", err)
	}
	if got == nil {
		t.Fatal("GetWindow returned nil for existing path")
	}
	if !reflect.DeepEqual(*got, row) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", *got, row)
	}
}

func TestGetWindow_Missing(t *testing.T) {
	db := testDB(t)
	got, err := db.GetWindow("nope.md")
	if err != nil {
		t.Fatalf("GetWindow: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing window, got %+v", got)
	}
}

func TestPathByUUID(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertWindow(testRow("a.md", "uuid-a"))

	p, err := db.PathByUUID("uuid-a")
	if err != nil {
		t.Fatalf("PathByUUID: %v", err)
	}
	if p != "a.md" {
		t.Errorf("path = %q, want %q", p, "a.md")
	}

	p, err = db.PathByUUID("uuid-missing")
	if err != nil {
		t.Fatalf("PathByUUID: %v", err)
	}
	if p != "" {
		t.Errorf("expected empty path for unknown uuid, got %q", p)
	}
}

func TestDeleteWindow(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertWindow(testRow("del.md", "u-del"))

	if err := db.DeleteWindow("del.md"); err != nil {
		t.Fatalf("DeleteWindow: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted window still has checksum %q", cs)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	row := testRow("up.md", "u-up")
	_ = db.UpsertWindow(row)

	row.Checksum = "cs-2"
	row.Window.Title = "Renamed"
	row.Window.Tags = []string{"new"}
	if err := db.UpsertWindow(row); err != nil {
		t.Fatalf("UpsertWindow (update): %v", err)
	}

	got, err := db.GetWindow("up.md")
	if err != nil {
		t.Fatalf("GetWindow: %v", err)
	}
	if got.Checksum != "cs-2" {
		t.Errorf("checksum = %q, want %q", got.Checksum, "cs-2")
	}
	if got.Window.Title != "Renamed" {
		t.Errorf("title = %q, want %q", got.Window.Title, "Renamed")
	}
	if !reflect.DeepEqual(got.Window.Tags, []string{"new"}) {
		t.Errorf("tags = %v, want [new]", got.Window.Tags)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	row := testRow("s.md", "u-s")
	row.Window.Title = "Search Me"
	row.Window.Text = "uniqueword appears here"
	_ = db.UpsertWindow(row)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Fatalf("search results = %+v, want 1 hit for s.md", results)
	}
	if results[0].UUID != "u-s" {
		t.Errorf("result uuid = %q, want %q", results[0].UUID, "u-s")
	}
}

func TestListWindows(t *testing.T) {
	db := testDB(t)
	a := testRow("a.md", "u-a")
	a.Window.UpdatedAt = "2026-01-03T00:00:00"
	b := testRow("b.md", "u-b")
	b.Window.UpdatedAt = "2026-01-05T00:00:00"
	b.Window.Tags = []string{"special"}
	_ = db.UpsertWindow(a)
	_ = db.UpsertWindow(b)

	rows, total, err := db.ListWindows(10, 0, "", "")
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("total = %d, len = %d, want 2/2", total, len(rows))
	}
	// Default sort is updated_at DESC.
	if rows[0].Path != "b.md" {
		t.Errorf("first row = %q, want b.md", rows[0].Path)
	}

	rows, total, err = db.ListWindows(10, 0, "special", "")
	if err != nil {
		t.Fatalf("ListWindows(tag): %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Path != "b.md" {
		t.Errorf("tag filter: total = %d, rows = %+v, want single b.md", total, rows)
	}
}

func TestSources(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertWindow(testRow("a.md", "u-a"))
	_ = db.UpsertWindow(testRow("b.md", "u-b"))

	sources, err := db.Sources()
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("len(sources) = %d, want 2", len(sources))
	}
	seen := map[string]bool{}
	for _, s := range sources {
		seen[s.UUID] = true
	}
	if !seen["u-a"] || !seen["u-b"] {
		t.Errorf("sources missing uuids: %v", seen)
	}
}
