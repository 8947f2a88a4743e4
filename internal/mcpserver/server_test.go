package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/laguz/internal/testutil"
	"github.com/starford/laguz/internal/windowservice"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)

	svc := windowservice.NewService(store, db)
	return New(svc, store)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we invoke
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "query_tasks":
		result, err = srv.queryTasks(ctx, req)
	case "query_notes":
		result, err = srv.queryNotes(ctx, req)
	case "get_stats":
		result, err = srv.getStats(ctx, req)
	case "search_windows":
		result, err = srv.searchWindows(ctx, req)
	case "read_window":
		result, err = srv.readWindow(ctx, req)
	case "create_window":
		result, err = srv.createWindow(ctx, req)
	case "set_task_done":
		result, err = srv.setTaskDone(ctx, req)
	case "list_windows":
		result, err = srv.listWindows(ctx, req)
	case "get_window_contract":
		result, err = srv.getWindowContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func createdUUID(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	text := resultText(r)
	if !strings.HasPrefix(text, "created: ") {
		t.Fatalf("create result = %q", text)
	}
	return strings.TrimPrefix(text, "created: ")
}

func TestCreateAndReadWindow(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_window", map[string]interface{}{
		"title": "Groceries",
		"text":  "Buy milk\nReturn bottles",
		"tags":  "errands, home",
		"mode":  "task",
	})
	id := createdUUID(t, r)

	r = callTool(t, srv, "read_window", map[string]interface{}{"uuid": id})
	text := resultText(r)
	if !strings.Contains(text, "title: Groceries") {
		t.Errorf("read result missing title: %q", text)
	}
	if !strings.Contains(text, "Buy milk") {
		t.Errorf("read result missing body: %q", text)
	}
}

func TestReadWindowMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_window", map[string]interface{}{"uuid": "nope"})
	if !r.IsError {
		t.Error("expected error for missing window")
	}
}

func TestListWindows(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_window", map[string]interface{}{"title": "Alpha"})
	callTool(t, srv, "create_window", map[string]interface{}{"title": "Beta", "tags": "work"})

	r := callTool(t, srv, "list_windows", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Alpha") || !strings.Contains(text, "Beta") {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "list_windows", map[string]interface{}{"tag": "work"})
	text = resultText(r)
	if strings.Contains(text, "Alpha") || !strings.Contains(text, "Beta") {
		t.Errorf("tag-filtered list = %q", text)
	}
}

func TestQueryTasksAndSetDone(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "create_window", map[string]interface{}{
		"title": "Chores",
		"text":  "Sweep\nDust",
		"mode":  "task",
	})
	id := createdUUID(t, r)

	r = callTool(t, srv, "query_tasks", map[string]interface{}{"open_only": "true"})
	text := resultText(r)
	if !strings.Contains(text, "Sweep") || !strings.Contains(text, "Dust") {
		t.Fatalf("query_tasks = %q", text)
	}

	r = callTool(t, srv, "set_task_done", map[string]interface{}{
		"item_key": id + ":0",
		"done":     "true",
	})
	if r.IsError {
		t.Fatalf("set_task_done failed: %q", resultText(r))
	}

	r = callTool(t, srv, "query_tasks", map[string]interface{}{"open_only": "true"})
	text = resultText(r)
	if strings.Contains(text, "Sweep") {
		t.Errorf("completed task still listed: %q", text)
	}
	if !strings.Contains(text, "Dust") {
		t.Errorf("open task missing: %q", text)
	}
}

func TestQueryTasks_DueFilterValues(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "create_window", map[string]interface{}{
		"title": "Dated",
		"text":  "File taxes",
		"mode":  "task",
	})
	dated := createdUUID(t, r)
	callTool(t, srv, "create_window", map[string]interface{}{
		"title": "Undated",
		"text":  "Someday",
		"mode":  "task",
	})

	if err := srv.svc.SetDue(context.Background(), dated, "2001-01-01"); err != nil {
		t.Fatal(err)
	}

	// Every advertised due value must narrow the result, not coerce to all.
	r = callTool(t, srv, "query_tasks", map[string]interface{}{"due": "undated"})
	text := resultText(r)
	if strings.Contains(text, "File taxes") || !strings.Contains(text, "Someday") {
		t.Errorf("due=undated = %q", text)
	}

	r = callTool(t, srv, "query_tasks", map[string]interface{}{"due": "overdue"})
	text = resultText(r)
	if !strings.Contains(text, "File taxes") || strings.Contains(text, "Someday") {
		t.Errorf("due=overdue = %q", text)
	}
}

func TestSetTaskDoneMalformedKey(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "set_task_done", map[string]interface{}{
		"item_key": "garbage",
		"done":     "true",
	})
	if !r.IsError {
		t.Error("expected error for malformed item key")
	}
}

func TestQueryNotes(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_window", map[string]interface{}{
		"title": "Reading list",
		"text":  "The Go Programming Language",
	})

	r := callTool(t, srv, "query_notes", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "The Go Programming Language") {
		t.Errorf("query_notes = %q", text)
	}
}

func TestGetStats(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_window", map[string]interface{}{
		"title": "Chores",
		"text":  "Sweep\nDust",
		"mode":  "task",
	})

	r := callTool(t, srv, "get_stats", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, `"open_tasks": 2`) {
		t.Errorf("stats = %q", text)
	}
}

func TestSearchWindows(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_window", map[string]interface{}{
		"title": "Quarterly planning",
		"text":  "Draft the roadmap",
	})

	r := callTool(t, srv, "search_windows", map[string]interface{}{"query": "roadmap"})
	text := resultText(r)
	if !strings.Contains(text, "Quarterly planning") {
		t.Errorf("search = %q", text)
	}
}

func TestGetWindowContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_window_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Window Format Contract") {
		t.Errorf("contract = %q", text)
	}
}
