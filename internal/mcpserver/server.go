// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Laguz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/starford/laguz/internal/infoindex"
	"github.com/starford/laguz/internal/storage"
	"github.com/starford/laguz/internal/tags"
	"github.com/starford/laguz/internal/windowservice"
)

// Server wraps the MCP server with Laguz tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *windowservice.Service
	store storage.Provider
}

// New creates a new MCP server with all Laguz tools registered.
func New(svc *windowservice.Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Laguz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("query_tasks",
		mcp.WithDescription("List task lines across all windows with filters. "+
			"All parameters are optional strings; booleans accept true/false."),
		mcp.WithString("query", mcp.Description("Substring match against line text and window title")),
		mcp.WithString("tag", mcp.Description("Only items from windows carrying this tag")),
		mcp.WithString("due", mcp.Description("Due filter: all, today, overdue, upcoming, dated, undated")),
		mcp.WithString("open_only", mcp.Description("true to hide completed tasks")),
		mcp.WithString("starred", mcp.Description("true to restrict to starred windows")),
		mcp.WithString("archive_scope", mcp.Description("active, archived, or all (default active)")),
		mcp.WithString("sort", mcp.Description("Sort key: updated, created, title, due (default updated)")),
		mcp.WithString("sort_desc", mcp.Description("true/false; default true")),
	), s.queryTasks)

	s.mcp.AddTool(mcp.NewTool("query_notes",
		mcp.WithDescription("List note lines across all windows with filters. "+
			"Same parameters as query_tasks except open_only."),
		mcp.WithString("query", mcp.Description("Substring match against line text and window title")),
		mcp.WithString("tag", mcp.Description("Only items from windows carrying this tag")),
		mcp.WithString("due", mcp.Description("Due filter: all, today, overdue, upcoming, dated, undated")),
		mcp.WithString("starred", mcp.Description("true to restrict to starred windows")),
		mcp.WithString("archive_scope", mcp.Description("active, archived, or all (default active)")),
		mcp.WithString("sort", mcp.Description("Sort key: updated, created, title, due (default updated)")),
		mcp.WithString("sort_desc", mcp.Description("true/false; default true")),
	), s.queryNotes)

	s.mcp.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Return aggregate counters: open, done, and overdue tasks plus starred notes."),
	), s.getStats)

	s.mcp.AddTool(mcp.NewTool("search_windows",
		mcp.WithDescription("Full-text search through window content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchWindows)

	s.mcp.AddTool(mcp.NewTool("read_window",
		mcp.WithDescription("Read the raw document of a window by its UUID, including frontmatter."),
		mcp.WithString("uuid", mcp.Required(), mcp.Description("UUID of the window to read")),
	), s.readWindow)

	s.mcp.AddTool(mcp.NewTool("create_window",
		mcp.WithDescription("Create a new window with the given title and text. "+
			"Read the contract first via the get_window_contract tool or the "+
			"laguz://window-format resource to understand the document format."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Window title")),
		mcp.WithString("text", mcp.Description("Body text, one item per line")),
		mcp.WithString("tags", mcp.Description("Comma-separated list of tags")),
		mcp.WithString("mode", mcp.Description("Content mode: task or note (default note)")),
	), s.createWindow)

	s.mcp.AddTool(mcp.NewTool("set_task_done",
		mcp.WithDescription("Mark a single task line done or not done. "+
			"Item keys have the form <window-uuid>:<line-index> as returned by query_tasks."),
		mcp.WithString("item_key", mcp.Required(), mcp.Description("Item key, e.g. 3f2a...:0")),
		mcp.WithString("done", mcp.Required(), mcp.Description("true or false")),
	), s.setTaskDone)

	s.mcp.AddTool(mcp.NewTool("list_windows",
		mcp.WithDescription("List windows (uuid, title, tags), most recently updated first."),
		mcp.WithString("tag", mcp.Description("Optional tag filter")),
	), s.listWindows)

	s.mcp.AddTool(mcp.NewTool("get_window_contract",
		mcp.WithDescription("Returns the canonical Laguz window document contract. "+
			"Call this before creating windows to ensure correct structure."),
	), s.getWindowContract)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Download an image or PDF from a URL (or decode a base64 data URI) "+
			"and store it in the shared attachments directory. Returns a markdownImage "+
			"snippet ready to paste into a window body."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data: URI of the asset")),
		mcp.WithString("filename", mcp.Description("Optional filename override")),
	), s.uploadAsset)

	// Resource: window format contract.
	s.mcp.AddResource(
		mcp.NewResource("laguz://window-format", "Window Format Contract",
			mcp.WithResourceDescription("Canonical window document format used by Laguz."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readWindowFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// queryFromRequest builds an item query from the tool's string parameters.
// Absent parameters leave the query defaults intact.
func queryFromRequest(req mcp.CallToolRequest) infoindex.Query {
	q := infoindex.NewQuery()

	if v, err := req.RequireString("query"); err == nil {
		q.Text = v
	}
	if v, err := req.RequireString("tag"); err == nil {
		q.Tag = v
	}
	if v, err := req.RequireString("due"); err == nil && v != "" {
		q.DueFilter = infoindex.DueFilter(v)
	}
	if v, err := req.RequireString("open_only"); err == nil {
		q.OpenTasksOnly = cast.ToBool(v)
	}
	if v, err := req.RequireString("starred"); err == nil {
		q.StarredOnly = cast.ToBool(v)
	}
	if v, err := req.RequireString("archive_scope"); err == nil && v != "" {
		q.ArchiveScope = infoindex.ArchiveScope(v)
	}
	if v, err := req.RequireString("sort"); err == nil && v != "" {
		q.SortBy = infoindex.SortBy(v)
	}
	if v, err := req.RequireString("sort_desc"); err == nil && v != "" {
		q.SortDesc = cast.ToBool(v)
	}
	return q
}

func (s *Server) queryTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.QueryTasks(ctx, queryFromRequest(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) queryNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.QueryNotes(ctx, queryFromRequest(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.svc.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchWindows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readWindow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	windowUUID, err := req.RequireString("uuid")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetWindow(ctx, windowUUID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", windowUUID)), nil
	}
	data, err := s.store.Read(detail.Path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", windowUUID)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createWindow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := windowservice.CreateInput{Title: title}
	if v, tErr := req.RequireString("text"); tErr == nil {
		in.Text = v
	}
	if v, tErr := req.RequireString("tags"); tErr == nil {
		in.Tags = tags.ParseCSV(v)
	}
	if v, mErr := req.RequireString("mode"); mErr == nil {
		in.ContentMode = v
	}

	detail, err := s.svc.CreateWindow(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", detail.UUID)), nil
}

func (s *Server) setTaskDone(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemKey, err := req.RequireString("item_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doneStr, err := req.RequireString("done")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.SetTaskLine(ctx, itemKey, cast.ToBool(doneStr)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", itemKey)), nil
}

func (s *Server) listWindows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := ""
	if v, err := req.RequireString("tag"); err == nil {
		tag = v
	}

	items, _, err := s.svc.ListWindows(ctx, 0, 0, tag, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, it := range items {
		line := it.UUID + "\t" + it.Title
		if len(it.Tags) > 0 {
			line += "\t[" + strings.Join(it.Tags, ", ") + "]"
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getWindowContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(WindowFormatContract), nil
}

func (s *Server) readWindowFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "laguz://window-format",
			MIMEType: "text/markdown",
			Text:     WindowFormatContract,
		},
	}, nil
}
