package api

import (
	"github.com/starford/laguz/internal/index"
	"github.com/starford/laguz/internal/infoindex"
	"github.com/starford/laguz/internal/windowservice"
)

// CreateWindowRequest is the request body for creating a window.
type CreateWindowRequest = windowservice.CreateInput

// UpdateWindowRequest is the request body for a partial window update.
type UpdateWindowRequest = windowservice.UpdateInput

// WindowDetail is the full window response type (aliased from the domain layer).
type WindowDetail = windowservice.WindowDetail

// WindowListItem is a lightweight item in a list response (aliased from the domain layer).
type WindowListItem = windowservice.WindowListItem

// WindowListResponse wraps paginated window listings.
type WindowListResponse struct {
	Windows []WindowListItem `json:"windows" validate:"required"`
	Total   int              `json:"total" example:"42" validate:"required"`
}

// flagRequest carries a boolean toggle for star/archive/task endpoints.
type flagRequest struct {
	Value bool `json:"value"`
}

// bulkFlagRequest applies a boolean toggle to a batch of windows.
type bulkFlagRequest struct {
	UUIDs []string `json:"uuids"`
	Value bool     `json:"value"`
}

// bulkTaskRequest applies a done state to a batch of task item keys.
type bulkTaskRequest struct {
	ItemKeys []string `json:"item_keys"`
	Value    bool     `json:"value"`
}

// mergeTagsRequest applies an add/remove tag merge to a batch of windows.
type mergeTagsRequest struct {
	UUIDs  []string `json:"uuids"`
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// metaRequest updates a window's title and tags together.
type metaRequest struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// dueRequest sets a window's due date.
type dueRequest struct {
	DueAt string `json:"due_at"`
}

// changedResponse reports how many targets a bulk operation touched.
type changedResponse struct {
	Changed int `json:"changed"`
}

// SearchResult is a single catalog search hit (aliased from the index layer).
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// TaskListResponse wraps a task query result.
type TaskListResponse struct {
	Tasks []infoindex.TaskItem `json:"tasks" validate:"required"`
	Total int                  `json:"total" example:"7" validate:"required"`
}

// NoteListResponse wraps a note query result.
type NoteListResponse struct {
	Notes []infoindex.NoteItem `json:"notes" validate:"required"`
	Total int                  `json:"total" example:"3" validate:"required"`
}

// StatsResponse is the aggregate counters payload.
type StatsResponse = infoindex.Stats

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"image.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/image.png" validate:"required"`
}
