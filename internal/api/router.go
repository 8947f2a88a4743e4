package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/laguz/internal/windowservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// vaultRoot is used to resolve the attachments directory.
func NewRouter(svc *windowservice.Service, authEnabled bool, token string, sseHandler http.Handler, vaultRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAttachmentHandler(vaultRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Windows CRUD.
	r.Get("/windows", h.ListWindows)
	r.Post("/windows", h.CreateWindow)
	r.Get("/windows/{uuid}", h.GetWindow)
	r.Patch("/windows/{uuid}", h.UpdateWindow)
	r.Delete("/windows/{uuid}", h.DeleteWindow)

	// Window metadata sub-resources.
	r.Put("/windows/{uuid}/star", h.SetStar)
	r.Put("/windows/{uuid}/archive", h.SetArchive)
	r.Put("/windows/{uuid}/due", h.SetDue)
	r.Delete("/windows/{uuid}/due", h.ClearDue)
	r.Put("/windows/{uuid}/meta", h.SetMeta)

	// Bulk window operations.
	r.Post("/windows/bulk/star", h.BulkStar)
	r.Post("/windows/bulk/archive", h.BulkArchive)
	r.Post("/windows/bulk/tags", h.BulkTags)

	// Task line operations (key is "uuid:line").
	r.Put("/tasks/{key}", h.SetTask)
	r.Post("/tasks/{key}/toggle", h.ToggleTask)
	r.Post("/tasks/bulk", h.BulkTasks)

	// Info index queries.
	r.Get("/tasks", h.QueryTasks)
	r.Get("/notes", h.QueryNotes)
	r.Get("/stats", h.Stats)
	r.Get("/groups", h.Groups)

	// Catalog full-text search.
	r.Get("/search", h.Search)

	// Attachments (auth-protected).
	r.Post("/attachments", ah.Upload)
	r.Get("/attachments/{filename}", ah.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
