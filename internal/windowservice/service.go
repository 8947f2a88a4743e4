// Package windowservice coordinates the vault, the catalog, and the
// in-memory info index.
package windowservice

import (
	"context"
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/duedate"
	"github.com/starford/laguz/internal/index"
	"github.com/starford/laguz/internal/infoindex"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/parser"
	"github.com/starford/laguz/internal/storage"
	"github.com/starford/laguz/internal/tags"
)

// timestampLayout is the naive local timestamp stored in frontmatter.
const timestampLayout = "2006-01-02T15:04:05"

// WindowDetail is the full representation of a window.
type WindowDetail struct {
	models.WindowSource
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

// WindowListItem is a lightweight item in a list response.
type WindowListItem struct {
	UUID        string   `json:"uuid"`
	Path        string   `json:"path"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	IsStarred   bool     `json:"is_starred"`
	IsArchived  bool     `json:"is_archived"`
	ContentMode string   `json:"content_mode"`
	UpdatedAt   string   `json:"updated_at"`
	Checksum    string   `json:"checksum"`
}

// CreateInput describes a new window.
type CreateInput struct {
	Title       string   `json:"title"`
	Text        string   `json:"text"`
	Tags        []string `json:"tags"`
	ContentMode string   `json:"content_mode"`
	IsStarred   bool     `json:"is_starred"`
}

// UpdateInput carries a partial window update; nil fields are left alone.
type UpdateInput struct {
	Title       *string  `json:"title"`
	Text        *string  `json:"text"`
	Tags        []string `json:"tags"`
	ContentMode *string  `json:"content_mode"`
	TaskStates  []bool   `json:"task_states"`
}

// Service coordinates storage, catalog, and info index operations.
type Service struct {
	store storage.Provider
	db    *index.DB

	// snapshot cache: rebuilt only when the catalog signature changes.
	mu       sync.RWMutex
	snapSig  string
	snapTask []infoindex.TaskItem
	snapNote []infoindex.NoteItem

	now func() time.Time
}

// NewService creates a new window service.
func NewService(store storage.Provider, db *index.DB) *Service {
	return &Service{store: store, db: db, now: time.Now}
}

func (s *Service) nowStamp() string {
	return s.now().Format(timestampLayout)
}

// CreateWindow writes a new window document and catalogs it.
func (s *Service) CreateWindow(_ context.Context, in CreateInput) (*WindowDetail, error) {
	now := s.nowStamp()
	w := models.WindowSource{
		UUID:         uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Text:         in.Text,
		Tags:         tags.Normalize(in.Tags),
		IsStarred:    in.IsStarred,
		CreatedAt:    now,
		UpdatedAt:    now,
		DuePrecision: string(duedate.PrecisionDate),
		ContentMode:  models.NormalizeContentMode(in.ContentMode),
	}
	if w.ContentMode == models.ModeTask {
		w.TaskStates = make([]bool, len(w.Lines()))
	}

	path := w.UUID + ".md"
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	return s.persist(path, &w)
}

// GetWindow reads a window by uuid from the vault.
func (s *Service) GetWindow(_ context.Context, windowUUID string) (*WindowDetail, error) {
	path, w, data, err := s.load(windowUUID)
	if err != nil {
		return nil, err
	}
	return detail(path, w, data), nil
}

// UpdateWindow applies a partial update with optimistic concurrency: when
// ifMatch is non-empty it must equal the stored content checksum.
func (s *Service) UpdateWindow(_ context.Context, windowUUID string, in UpdateInput, ifMatch string) (*WindowDetail, error) {
	path, w, data, err := s.load(windowUUID)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(data) {
		return nil, apperr.ErrConflict
	}

	if in.Title != nil {
		w.Title = strings.TrimSpace(*in.Title)
	}
	if in.Text != nil {
		w.Text = *in.Text
	}
	if in.Tags != nil {
		w.Tags = tags.Normalize(in.Tags)
	}
	if in.ContentMode != nil {
		w.ContentMode = models.NormalizeContentMode(*in.ContentMode)
	}
	if in.TaskStates != nil {
		w.TaskStates = in.TaskStates
	}
	if w.ContentMode == models.ModeTask {
		w.TaskStates = alignStates(w.TaskStates, len(w.Lines()))
	}
	w.UpdatedAt = s.nowStamp()

	return s.persist(path, w)
}

// DeleteWindow removes a window from the vault and the catalog.
func (s *Service) DeleteWindow(_ context.Context, windowUUID string) error {
	path, err := s.resolve(windowUUID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteWindow(path)
}

// ListWindows returns paginated windows with optional tag filter.
func (s *Service) ListWindows(_ context.Context, limit, offset int, tag, sortKey string) ([]WindowListItem, int, error) {
	rows, total, err := s.db.ListWindows(limit, offset, tag, sortKey)
	if err != nil {
		return nil, 0, err
	}
	items := make([]WindowListItem, len(rows))
	for i, r := range rows {
		items[i] = WindowListItem{
			UUID:        r.Window.UUID,
			Path:        r.Path,
			Title:       r.Window.Title,
			Tags:        nonNilSlice(r.Window.Tags),
			IsStarred:   r.Window.IsStarred,
			IsArchived:  r.Window.IsArchived,
			ContentMode: r.Window.ContentMode,
			UpdatedAt:   r.Window.UpdatedAt,
			Checksum:    r.Checksum,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// --- task operations ---

// ParseItemKey splits a task item key ("uuid:line") into its parts.
func ParseItemKey(key string) (windowUUID string, lineIndex int, ok bool) {
	i := strings.LastIndex(key, ":")
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return key[:i], n, true
}

// SetTaskLine sets a single task line's done state. Out-of-range indices
// and non-task windows are a no-op; updated_at is only touched on change.
func (s *Service) SetTaskLine(ctx context.Context, itemKey string, done bool) error {
	windowUUID, lineIndex, ok := ParseItemKey(itemKey)
	if !ok {
		return apperr.ErrValidation
	}
	return s.mutate(ctx, windowUUID, func(w *models.WindowSource) bool {
		return setTaskState(w, []int{lineIndex}, done)
	})
}

// ToggleTask flips a single task line's done state.
func (s *Service) ToggleTask(ctx context.Context, itemKey string) error {
	windowUUID, lineIndex, ok := ParseItemKey(itemKey)
	if !ok {
		return apperr.ErrValidation
	}
	return s.mutate(ctx, windowUUID, func(w *models.WindowSource) bool {
		if w.ContentMode != models.ModeTask {
			return false
		}
		states := alignStates(w.TaskStates, len(w.Lines()))
		if lineIndex >= len(states) {
			return false
		}
		states[lineIndex] = !states[lineIndex]
		w.TaskStates = states
		return true
	})
}

// BulkSetTaskDone sets the done state for a batch of item keys, grouped by
// window so each window is rewritten at most once. Malformed keys and
// out-of-range indices are skipped. Returns the number of changed lines.
func (s *Service) BulkSetTaskDone(ctx context.Context, itemKeys []string, done bool) (int, error) {
	targets := map[string][]int{}
	var order []string
	for _, key := range itemKeys {
		windowUUID, lineIndex, ok := ParseItemKey(strings.TrimSpace(key))
		if !ok {
			continue
		}
		if _, seen := targets[windowUUID]; !seen {
			order = append(order, windowUUID)
		}
		targets[windowUUID] = append(targets[windowUUID], lineIndex)
	}

	changed := 0
	for _, windowUUID := range order {
		indices := uniqueSorted(targets[windowUUID])
		n := 0
		err := s.mutate(ctx, windowUUID, func(w *models.WindowSource) bool {
			n = countStateChanges(w, indices, done)
			return setTaskState(w, indices, done)
		})
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return changed, err
		}
		changed += n
	}
	return changed, nil
}

func setTaskState(w *models.WindowSource, indices []int, done bool) bool {
	if w.ContentMode != models.ModeTask {
		return false
	}
	states := alignStates(w.TaskStates, len(w.Lines()))
	changed := false
	for _, idx := range indices {
		if idx < 0 || idx >= len(states) {
			continue
		}
		if states[idx] != done {
			states[idx] = done
			changed = true
		}
	}
	if changed {
		w.TaskStates = states
	}
	return changed
}

func countStateChanges(w *models.WindowSource, indices []int, done bool) int {
	if w.ContentMode != models.ModeTask {
		return 0
	}
	states := alignStates(w.TaskStates, len(w.Lines()))
	n := 0
	for _, idx := range indices {
		if idx >= 0 && idx < len(states) && states[idx] != done {
			n++
		}
	}
	return n
}

// --- metadata operations ---

// SetStarred updates a window's starred state; no-op when unchanged.
func (s *Service) SetStarred(ctx context.Context, windowUUID string, value bool) error {
	return s.mutate(ctx, windowUUID, func(w *models.WindowSource) bool {
		if w.IsStarred == value {
			return false
		}
		w.IsStarred = value
		return true
	})
}

// SetArchived updates a window's archived state; no-op when unchanged.
func (s *Service) SetArchived(ctx context.Context, windowUUID string, value bool) error {
	return s.mutate(ctx, windowUUID, func(w *models.WindowSource) bool {
		if w.IsArchived == value {
			return false
		}
		w.IsArchived = value
		return true
	})
}

// BulkSetStarred stars or unstars a batch of windows, skipping unknown
// uuids. Returns the number of windows actually changed.
func (s *Service) BulkSetStarred(ctx context.Context, windowUUIDs []string, value bool) (int, error) {
	return s.bulkMutate(ctx, windowUUIDs, func(w *models.WindowSource) bool {
		if w.IsStarred == value {
			return false
		}
		w.IsStarred = value
		return true
	})
}

// BulkSetArchived archives or restores a batch of windows.
func (s *Service) BulkSetArchived(ctx context.Context, windowUUIDs []string, value bool) (int, error) {
	return s.bulkMutate(ctx, windowUUIDs, func(w *models.WindowSource) bool {
		if w.IsArchived == value {
			return false
		}
		w.IsArchived = value
		return true
	})
}

// SetTitleTags updates title and tags together; no-op when both unchanged.
func (s *Service) SetTitleTags(ctx context.Context, windowUUID, title string, tagList []string) error {
	normalizedTitle := strings.TrimSpace(title)
	normalizedTags := tags.Normalize(tagList)
	return s.mutate(ctx, windowUUID, func(w *models.WindowSource) bool {
		changed := false
		if w.Title != normalizedTitle {
			w.Title = normalizedTitle
			changed = true
		}
		if !equalStrings(w.Tags, normalizedTags) {
			w.Tags = normalizedTags
			changed = true
		}
		return changed
	})
}

// MergeTags applies an add/remove tag merge to a batch of windows.
// Returns the number of windows actually changed.
func (s *Service) MergeTags(ctx context.Context, windowUUIDs, add, remove []string) (int, error) {
	addNorm := tags.Normalize(add)
	removeNorm := tags.Normalize(remove)
	if len(addNorm) == 0 && len(removeNorm) == 0 {
		return 0, nil
	}
	return s.bulkMutate(ctx, windowUUIDs, func(w *models.WindowSource) bool {
		merged := tags.Merge(tags.Normalize(w.Tags), addNorm, removeNorm)
		if equalStrings(w.Tags, merged) {
			return false
		}
		w.Tags = merged
		return true
	})
}

// SetDue sets a date-precision due date, resetting any time-of-day,
// timezone, and datetime precision. An empty input clears the due date.
// Unparseable input is a validation error.
func (s *Service) SetDue(ctx context.Context, windowUUID, dueISO string) error {
	normalized, ok := duedate.NormalizeISO(dueISO)
	if !ok {
		return apperr.ErrValidation
	}
	return s.mutate(ctx, windowUUID, func(w *models.WindowSource) bool {
		changed := false
		if w.DueAt != normalized {
			w.DueAt = normalized
			changed = true
		}
		if w.DueTime != "" {
			w.DueTime = ""
			changed = true
		}
		if w.DueTimezone != "" {
			w.DueTimezone = ""
			changed = true
		}
		if duedate.NormalizePrecision(w.DuePrecision) != duedate.PrecisionDate {
			changed = true
		}
		w.DuePrecision = string(duedate.PrecisionDate)
		return changed
	})
}

// ClearDue removes the due date and resets the due metadata to defaults.
func (s *Service) ClearDue(ctx context.Context, windowUUID string) error {
	return s.SetDue(ctx, windowUUID, "")
}

// --- info index snapshot and queries ---

// Snapshot returns the built task and note items for the current catalog
// contents. The build is cached and only redone when the catalog's
// checksum signature changes.
func (s *Service) Snapshot(_ context.Context) ([]infoindex.TaskItem, []infoindex.NoteItem, error) {
	sig, err := s.catalogSignature()
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	if sig == s.snapSig {
		t, n := s.snapTask, s.snapNote
		s.mu.RUnlock()
		return t, n, nil
	}
	s.mu.RUnlock()

	sources, err := s.db.Sources()
	if err != nil {
		return nil, nil, err
	}
	taskItems, noteItems := infoindex.Build(sources)

	s.mu.Lock()
	s.snapSig = sig
	s.snapTask = taskItems
	s.snapNote = noteItems
	s.mu.Unlock()

	return taskItems, noteItems, nil
}

// QueryTasks runs a filtered, sorted task query against the snapshot.
func (s *Service) QueryTasks(ctx context.Context, q infoindex.Query) ([]infoindex.TaskItem, error) {
	taskItems, _, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return infoindex.QueryTasks(taskItems, q, s.now()), nil
}

// QueryNotes runs a filtered, sorted note query against the snapshot.
func (s *Service) QueryNotes(ctx context.Context, q infoindex.Query) ([]infoindex.NoteItem, error) {
	_, noteItems, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return infoindex.QueryNotes(noteItems, q, s.now()), nil
}

// Stats returns aggregate counters over the full snapshot.
func (s *Service) Stats(ctx context.Context) (infoindex.Stats, error) {
	taskItems, noteItems, err := s.Snapshot(ctx)
	if err != nil {
		return infoindex.Stats{}, err
	}
	return infoindex.BuildStats(taskItems, noteItems, s.now()), nil
}

// GroupTasks filters tasks by q and groups them by kind
// (smart, tag, or window; unknown kinds fall back to smart).
func (s *Service) GroupTasks(ctx context.Context, q infoindex.Query, kind string) ([]infoindex.Group[infoindex.TaskItem], error) {
	taskItems, err := s.QueryTasks(ctx, q)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "tag":
		return infoindex.GroupTasksByTag(taskItems), nil
	case "window":
		return infoindex.GroupTasksByWindow(taskItems), nil
	default:
		return infoindex.GroupTasksSmart(taskItems, s.now()), nil
	}
}

// GroupNotes filters notes by q and groups them by kind.
func (s *Service) GroupNotes(ctx context.Context, q infoindex.Query, kind string) ([]infoindex.Group[infoindex.NoteItem], error) {
	noteItems, err := s.QueryNotes(ctx, q)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "tag":
		return infoindex.GroupNotesByTag(noteItems), nil
	case "window":
		return infoindex.GroupNotesByWindow(noteItems), nil
	default:
		return infoindex.GroupNotesSmart(noteItems), nil
	}
}

// GroupMixed filters tasks and notes by q and groups the combined list.
func (s *Service) GroupMixed(ctx context.Context, q infoindex.Query, kind string) ([]infoindex.Group[infoindex.MixedItem], error) {
	taskItems, err := s.QueryTasks(ctx, q)
	if err != nil {
		return nil, err
	}
	noteItems, err := s.QueryNotes(ctx, q)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "tag":
		return infoindex.GroupMixedByTag(taskItems, noteItems), nil
	case "window":
		return infoindex.GroupMixedByWindow(taskItems, noteItems), nil
	default:
		return infoindex.GroupMixedSmart(taskItems, noteItems, s.now()), nil
	}
}

// --- plumbing ---

// indexFile parses window data and upserts it into the catalog.
func (s *Service) indexFile(path string, data []byte) error {
	w, err := parser.Parse(data)
	if err != nil {
		return err
	}
	return s.db.UpsertWindow(index.WindowRow{
		Path:     path,
		Checksum: checksum.Sum(data),
		Window:   *w,
	})
}

func (s *Service) resolve(windowUUID string) (string, error) {
	path, err := s.db.PathByUUID(windowUUID)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", apperr.ErrNotFound
	}
	return path, nil
}

func (s *Service) load(windowUUID string) (string, *models.WindowSource, []byte, error) {
	path, err := s.resolve(windowUUID)
	if err != nil {
		return "", nil, nil, err
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, nil, apperr.ErrNotFound
		}
		return "", nil, nil, err
	}
	w, err := parser.Parse(data)
	if err != nil {
		return "", nil, nil, err
	}
	return path, w, data, nil
}

// mutate loads a window, applies fn, and persists the result when fn
// reports a change. updated_at is only touched on change.
func (s *Service) mutate(_ context.Context, windowUUID string, fn func(w *models.WindowSource) bool) error {
	path, w, _, err := s.load(windowUUID)
	if err != nil {
		return err
	}
	if !fn(w) {
		return nil
	}
	w.UpdatedAt = s.nowStamp()
	_, err = s.persist(path, w)
	return err
}

// bulkMutate applies fn to each distinct uuid, skipping unknown windows,
// and returns the number of windows changed.
func (s *Service) bulkMutate(ctx context.Context, windowUUIDs []string, fn func(w *models.WindowSource) bool) (int, error) {
	changed := 0
	for _, windowUUID := range uniqueUUIDs(windowUUIDs) {
		n := 0
		err := s.mutate(ctx, windowUUID, func(w *models.WindowSource) bool {
			if fn(w) {
				n = 1
				return true
			}
			return false
		})
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return changed, err
		}
		changed += n
	}
	return changed, nil
}

// persist composes, writes, and recatalogs a window.
func (s *Service) persist(path string, w *models.WindowSource) (*WindowDetail, error) {
	data, err := parser.Compose(w)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.indexFile(path, data); err != nil {
		return nil, err
	}
	return detail(path, w, data), nil
}

// catalogSignature derives a snapshot cache key from the catalog's
// path→checksum map.
func (s *Service) catalogSignature() (string, error) {
	checksums, err := s.db.AllChecksums()
	if err != nil {
		return "", err
	}
	return checksum.SumPairs(checksums), nil
}

func detail(path string, w *models.WindowSource, data []byte) *WindowDetail {
	d := &WindowDetail{WindowSource: *w, Path: path, Checksum: checksum.Sum(data)}
	d.Tags = nonNilSlice(d.Tags)
	return d
}

func alignStates(states []bool, n int) []bool {
	out := make([]bool, n)
	copy(out, states)
	return out
}

func uniqueSorted(indices []int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, i := range indices {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func uniqueUUIDs(uuids []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, u := range uuids {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
