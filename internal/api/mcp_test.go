package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fieldkit/jobwalk/internal/catalog"
	"github.com/fieldkit/jobwalk/internal/session"
	"github.com/fieldkit/jobwalk/internal/storage"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) (MCPDeps, *session.Manager) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}

	mgr := session.NewManagerWithClock(store, cat, testClock{t: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)})
	return MCPDeps{Sessions: mgr, Catalog: cat}, mgr
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tests ---

func TestMCPTool_ListSessions(t *testing.T) {
	deps, mgr := newTestMCPDeps(t)
	handler := mcpListSessions(deps)

	rec, err := mgr.Create(context.Background(), "45 Oak Ln, Decatur, GA 30030", "J. Whitfield")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	result, err := handler(context.Background(), makeCallToolRequest("list_sessions", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var summaries []struct {
		ID      string `json:"id"`
		Address string `json:"address"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &summaries); err != nil {
		t.Fatalf("parsing summaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 session, got %d", len(summaries))
	}
	if summaries[0].ID != rec.ID || summaries[0].Address != "45 Oak Ln, Decatur, GA 30030" {
		t.Errorf("unexpected summary: %+v", summaries[0])
	}
	if summaries[0].Status != "unknown" {
		t.Errorf("status = %q, want unknown", summaries[0].Status)
	}
}

func TestMCPTool_GetSummary(t *testing.T) {
	deps, mgr := newTestMCPDeps(t)
	handler := mcpGetSummary(deps)

	rec, err := mgr.Create(context.Background(), "45 Oak Ln, Decatur, GA 30030", "J. Whitfield")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	result, err := handler(context.Background(), makeCallToolRequest("get_summary", map[string]interface{}{
		"session_id": rec.ID,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	text := toolText(t, result)
	if !strings.Contains(text, "CFI JOB HANDOFF") {
		t.Errorf("summary missing header block:\n%s", text)
	}
	if !strings.Contains(text, "45 Oak Ln") {
		t.Errorf("summary missing address:\n%s", text)
	}
}

func TestMCPTool_GetSummary_MissingID(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpGetSummary(deps)

	result, err := handler(context.Background(), makeCallToolRequest("get_summary", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing session_id")
	}
}

func TestMCPTool_AnswerQuestion(t *testing.T) {
	deps, mgr := newTestMCPDeps(t)
	handler := mcpAnswerQuestion(deps)

	rec, err := mgr.Create(context.Background(), "45 Oak Ln", "")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	for _, args := range []map[string]interface{}{
		{"session_id": rec.ID, "question_id": "foundation_type", "value": "crawlspace"},
		{"session_id": rec.ID, "question_id": "humidity", "value": "high"},
	} {
		result, err := handler(context.Background(), makeCallToolRequest("answer_question", args))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", toolText(t, result))
		}
	}

	got, err := mgr.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	found := false
	for _, id := range got.State.SuggestedSolutionIDs {
		if id == "encap" {
			found = true
		}
	}
	if !found {
		t.Errorf("suggested = %v, want encap", got.State.SuggestedSolutionIDs)
	}
}

func TestMCPTool_AnswerQuestion_Unknown(t *testing.T) {
	deps, mgr := newTestMCPDeps(t)
	handler := mcpAnswerQuestion(deps)

	rec, err := mgr.Create(context.Background(), "45 Oak Ln", "")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	result, err := handler(context.Background(), makeCallToolRequest("answer_question", map[string]interface{}{
		"session_id":  rec.ID,
		"question_id": "nope",
		"value":       "yes",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for unknown question")
	}
}

func TestMCPTool_SetDisposition(t *testing.T) {
	deps, mgr := newTestMCPDeps(t)
	handler := mcpSetDisposition(deps)

	rec, err := mgr.Create(context.Background(), "45 Oak Ln", "")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	result, err := handler(context.Background(), makeCallToolRequest("set_disposition", map[string]interface{}{
		"session_id":      rec.ID,
		"status":          "needs_followup",
		"followup_date":   "2026-04-09",
		"followup_method": "text",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	got, err := mgr.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	if string(got.State.Dispo.Status) != "needs_followup" {
		t.Errorf("status = %q, want needs_followup", got.State.Dispo.Status)
	}
	if got.State.Dispo.FollowupDate != "2026-04-09" || got.State.Dispo.FollowupMethod != "text" {
		t.Errorf("followup = %q via %q", got.State.Dispo.FollowupDate, got.State.Dispo.FollowupMethod)
	}
}

func TestMCPResource_Catalog(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpResourceCatalog(deps)

	contents, err := handler(context.Background(), makeReadResourceRequest("jobwalk://catalog"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 resource content, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if tc.MIMEType != "application/json" {
		t.Errorf("mime type = %q", tc.MIMEType)
	}

	var payload struct {
		Model struct {
			Version string `json:"version"`
		} `json:"model"`
	}
	if err := json.Unmarshal([]byte(tc.Text), &payload); err != nil {
		t.Fatalf("parsing catalog resource: %v", err)
	}
	if payload.Model.Version == "" {
		t.Error("catalog resource missing model version")
	}
}

func TestNewMCPServer(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	if s := NewMCPServer(deps); s == nil {
		t.Fatal("expected server")
	}
}
