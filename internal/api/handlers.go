package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/windowservice"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *windowservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *windowservice.Service) *Handler {
	return &Handler{svc: svc}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("window already exists"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody("invalid input"))
	default:
		slog.Error(action+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListWindows handles GET /api/windows.
//
//	@Summary		List windows with optional pagination and tag filtering
//	@Tags			windows
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			tag		query		string	false	"Filter by tag"
//	@Param			sort	query		string	false	"Sort field"	Enums(updated_at, title, path)
//	@Success		200		{object}	WindowListResponse
//	@Security		BearerAuth
//	@Router			/windows [get]
func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := cast.ToInt(q.Get("limit"))
	offset := cast.ToInt(q.Get("offset"))

	items, total, err := h.svc.ListWindows(r.Context(), limit, offset, q.Get("tag"), q.Get("sort"))
	if err != nil {
		writeError(w, err, "list windows")
		return
	}
	writeJSON(w, http.StatusOK, WindowListResponse{Windows: items, Total: total})
}

// CreateWindow handles POST /api/windows.
//
//	@Summary		Create a new window
//	@Tags			windows
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateWindowRequest	true	"Window to create"
//	@Success		201		{object}	WindowDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/windows [post]
func (h *Handler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	var req CreateWindowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	detail, err := h.svc.CreateWindow(r.Context(), req)
	if err != nil {
		writeError(w, err, "create window")
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// GetWindow handles GET /api/windows/{uuid}.
//
//	@Summary		Get a single window by uuid
//	@Tags			windows
//	@Produce		json
//	@Param			uuid	path		string	true	"Window uuid"
//	@Success		200		{object}	WindowDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/windows/{uuid} [get]
func (h *Handler) GetWindow(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetWindow(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, err, "get window")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateWindow handles PATCH /api/windows/{uuid}.
//
//	@Summary		Partially update a window with optimistic concurrency
//	@Tags			windows
//	@Accept			json
//	@Produce		json
//	@Param			uuid		path	string				true	"Window uuid"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateWindowRequest	true	"Fields to update"
//	@Success		200		{object}	WindowDetail
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/windows/{uuid} [patch]
func (h *Handler) UpdateWindow(w http.ResponseWriter, r *http.Request) {
	var req UpdateWindowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	detail, err := h.svc.UpdateWindow(r.Context(), chi.URLParam(r, "uuid"), req, ifMatch)
	if err != nil {
		writeError(w, err, "update window")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DeleteWindow handles DELETE /api/windows/{uuid}.
//
//	@Summary		Delete a window
//	@Tags			windows
//	@Param			uuid	path	string	true	"Window uuid"
//	@Success		204		"Window deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/windows/{uuid} [delete]
func (h *Handler) DeleteWindow(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteWindow(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		writeError(w, err, "delete window")
		return
	}
	writeNoContent(w)
}

// SetStar handles PUT /api/windows/{uuid}/star.
func (h *Handler) SetStar(w http.ResponseWriter, r *http.Request) {
	var req flagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.SetStarred(r.Context(), chi.URLParam(r, "uuid"), req.Value); err != nil {
		writeError(w, err, "set star")
		return
	}
	writeNoContent(w)
}

// SetArchive handles PUT /api/windows/{uuid}/archive.
func (h *Handler) SetArchive(w http.ResponseWriter, r *http.Request) {
	var req flagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.SetArchived(r.Context(), chi.URLParam(r, "uuid"), req.Value); err != nil {
		writeError(w, err, "set archive")
		return
	}
	writeNoContent(w)
}

// SetDue handles PUT /api/windows/{uuid}/due. An empty due_at clears the
// due date, same as DELETE.
func (h *Handler) SetDue(w http.ResponseWriter, r *http.Request) {
	var req dueRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.SetDue(r.Context(), chi.URLParam(r, "uuid"), req.DueAt); err != nil {
		writeError(w, err, "set due")
		return
	}
	writeNoContent(w)
}

// ClearDue handles DELETE /api/windows/{uuid}/due.
func (h *Handler) ClearDue(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearDue(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		writeError(w, err, "clear due")
		return
	}
	writeNoContent(w)
}

// SetMeta handles PUT /api/windows/{uuid}/meta (title + tags together).
func (h *Handler) SetMeta(w http.ResponseWriter, r *http.Request) {
	var req metaRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.SetTitleTags(r.Context(), chi.URLParam(r, "uuid"), req.Title, req.Tags); err != nil {
		writeError(w, err, "set meta")
		return
	}
	writeNoContent(w)
}

// BulkStar handles POST /api/windows/bulk/star.
func (h *Handler) BulkStar(w http.ResponseWriter, r *http.Request) {
	var req bulkFlagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	changed, err := h.svc.BulkSetStarred(r.Context(), req.UUIDs, req.Value)
	if err != nil {
		writeError(w, err, "bulk star")
		return
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: changed})
}

// BulkArchive handles POST /api/windows/bulk/archive.
func (h *Handler) BulkArchive(w http.ResponseWriter, r *http.Request) {
	var req bulkFlagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	changed, err := h.svc.BulkSetArchived(r.Context(), req.UUIDs, req.Value)
	if err != nil {
		writeError(w, err, "bulk archive")
		return
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: changed})
}

// BulkTags handles POST /api/windows/bulk/tags.
func (h *Handler) BulkTags(w http.ResponseWriter, r *http.Request) {
	var req mergeTagsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	changed, err := h.svc.MergeTags(r.Context(), req.UUIDs, req.Add, req.Remove)
	if err != nil {
		writeError(w, err, "bulk tags")
		return
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: changed})
}

// SetTask handles PUT /api/tasks/{key} (key is "uuid:line").
func (h *Handler) SetTask(w http.ResponseWriter, r *http.Request) {
	var req flagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.SetTaskLine(r.Context(), chi.URLParam(r, "key"), req.Value); err != nil {
		writeError(w, err, "set task")
		return
	}
	writeNoContent(w)
}

// ToggleTask handles POST /api/tasks/{key}/toggle.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ToggleTask(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeError(w, err, "toggle task")
		return
	}
	writeNoContent(w)
}

// BulkTasks handles POST /api/tasks/bulk.
func (h *Handler) BulkTasks(w http.ResponseWriter, r *http.Request) {
	var req bulkTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	changed, err := h.svc.BulkSetTaskDone(r.Context(), req.ItemKeys, req.Value)
	if err != nil {
		writeError(w, err, "bulk tasks")
		return
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: changed})
}

// QueryTasks handles GET /api/tasks.
//
//	@Summary		Query task items across all windows
//	@Tags			items
//	@Produce		json
//	@Param			q				query	string	false	"Substring search over title and line text"
//	@Param			tag				query	string	false	"Exact tag (case-insensitive)"
//	@Param			starred			query	bool	false	"Starred windows only"
//	@Param			open_only		query	bool	false	"Open (not done) tasks only"
//	@Param			archive_scope	query	string	false	"Archive scope"	Enums(active, archived, all)
//	@Param			due				query	string	false	"Due filter"	Enums(all, today, overdue, upcoming, dated, undated)
//	@Param			sort			query	string	false	"Sort key"		Enums(updated, created, due, title)
//	@Param			sort_desc		query	bool	false	"Descending sort (default true)"
//	@Success		200	{object}	TaskListResponse
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (h *Handler) QueryTasks(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.QueryTasks(r.Context(), queryFromParams(r.URL.Query()))
	if err != nil {
		writeError(w, err, "query tasks")
		return
	}
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: nonNil(items), Total: len(items)})
}

// QueryNotes handles GET /api/notes.
func (h *Handler) QueryNotes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.QueryNotes(r.Context(), queryFromParams(r.URL.Query()))
	if err != nil {
		writeError(w, err, "query notes")
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: nonNil(items), Total: len(items)})
}

// Stats handles GET /api/stats.
//
//	@Summary		Aggregate task and note counters
//	@Tags			items
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse(stats))
}

// Groups handles GET /api/groups.
//
// kind selects the strategy (smart, tag, window; smart default) and scope
// selects the item population (tasks, notes, mixed; mixed default). The
// remaining parameters filter the population before grouping.
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	kind := vals.Get("kind")
	q := queryFromParams(vals)
	ctx := r.Context()

	switch vals.Get("scope") {
	case "tasks":
		groups, err := h.svc.GroupTasks(ctx, q, kind)
		if err != nil {
			writeError(w, err, "group tasks")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
	case "notes":
		groups, err := h.svc.GroupNotes(ctx, q, kind)
		if err != nil {
			writeError(w, err, "group notes")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
	default:
		groups, err := h.svc.GroupMixed(ctx, q, kind)
		if err != nil {
			writeError(w, err, "group mixed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
	}
}

// Search handles GET /api/search (catalog full-text search).
//
//	@Summary		Full-text search across windows
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit := cast.ToInt(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, err, "search")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: nonNil(results)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
