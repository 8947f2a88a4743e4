package api

import (
	"net/url"

	"github.com/spf13/cast"

	"github.com/starford/laguz/internal/infoindex"
)

// queryFromParams builds an info index query from URL parameters. Unknown
// enum values pass through untouched; the engine coerces them to defaults.
// sort_desc defaults to true and only flips when the parameter is present.
func queryFromParams(vals url.Values) infoindex.Query {
	q := infoindex.NewQuery()

	q.Text = vals.Get("q")
	q.Tag = vals.Get("tag")
	q.StarredOnly = cast.ToBool(vals.Get("starred"))
	q.OpenTasksOnly = cast.ToBool(vals.Get("open_only"))
	q.IncludeArchived = cast.ToBool(vals.Get("include_archived"))

	if v := vals.Get("archive_scope"); v != "" {
		q.ArchiveScope = infoindex.ArchiveScope(v)
	}
	if v := vals.Get("due"); v != "" {
		q.DueFilter = infoindex.DueFilter(v)
	}
	if v := vals.Get("item_scope"); v != "" {
		q.ItemScope = infoindex.ItemScope(v)
	}
	if v := vals.Get("content_mode"); v != "" {
		q.ContentMode = v
	}
	if v := vals.Get("sort"); v != "" {
		q.SortBy = infoindex.SortBy(v)
	}
	if vals.Has("sort_desc") {
		q.SortDesc = cast.ToBool(vals.Get("sort_desc"))
	}
	return q
}
