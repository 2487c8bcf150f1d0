package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fieldkit/jobwalk/internal/catalog"
	"github.com/fieldkit/jobwalk/internal/handoff"
	"github.com/fieldkit/jobwalk/internal/session"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Sessions *session.Manager
	Catalog  *catalog.Catalog
}

// NewMCPServer creates an MCP server exposing the inspection sessions to
// local assistants: listing, handoff summaries, answering checklist
// questions, and setting the visit outcome.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"jobwalk",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("jobwalk: local field data collection for foundation inspections. Sessions, checklists, and handoff summaries."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("list_sessions",
			mcp.WithDescription("List inspection sessions with address, date, and suggested solutions."),
		),
		mcpListSessions(deps),
	)

	s.AddTool(
		mcp.NewTool("get_summary",
			mcp.WithDescription("Return the plain-text job handoff summary for one session."),
			mcp.WithString("session_id", mcp.Description("Session id"), mcp.Required()),
		),
		mcpGetSummary(deps),
	)

	s.AddTool(
		mcp.NewTool("answer_question",
			mcp.WithDescription("Record a checklist answer on a session and recompute suggestions. An empty value clears the answer."),
			mcp.WithString("session_id", mcp.Description("Session id"), mcp.Required()),
			mcp.WithString("question_id", mcp.Description("Checklist question id (see the catalog resource)"), mcp.Required()),
			mcp.WithString("value", mcp.Description("Option value to record, or empty to clear")),
		),
		mcpAnswerQuestion(deps),
	)

	s.AddTool(
		mcp.NewTool("set_disposition",
			mcp.WithDescription("Set the visit outcome on a session: status, follow-up date, and contact method."),
			mcp.WithString("session_id", mcp.Description("Session id"), mcp.Required()),
			mcp.WithString("status", mcp.Description("One of: unknown, sold, not_sold, needs_followup"), mcp.Required()),
			mcp.WithString("followup_date", mcp.Description("Follow-up date, YYYY-MM-DD")),
			mcp.WithString("followup_method", mcp.Description("Contact method, e.g. call or text")),
		),
		mcpSetDisposition(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"jobwalk://catalog",
			"Decision Catalog",
			mcp.WithResourceDescription("Checklist questions, rules, and the solution catalog as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCatalog(deps),
	)

	return s
}

func mcpListSessions(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		recs, err := deps.Sessions.List(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list sessions: %v", err)), nil
		}

		type sessionSummary struct {
			ID        string   `json:"id"`
			Address   string   `json:"address"`
			Date      string   `json:"date"`
			Status    string   `json:"status"`
			Suggested []string `json:"suggested"`
			UpdatedAt string   `json:"updated_at"`
		}

		summaries := make([]sessionSummary, len(recs))
		for i, rec := range recs {
			summaries[i] = sessionSummary{
				ID:        rec.ID,
				Address:   rec.State.Job.Address,
				Date:      rec.State.Job.Date,
				Status:    string(rec.State.Dispo.Status),
				Suggested: rec.State.SolutionNames(deps.Catalog),
				UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal sessions: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetSummary(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		rec, err := deps.Sessions.Get(ctx, id)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load session: %v", err)), nil
		}
		return mcpText(handoff.Text(rec.State, deps.Catalog)), nil
	}
}

func mcpAnswerQuestion(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		questionID, err := req.RequireString("question_id")
		if err != nil {
			return mcpError("question_id is required"), nil
		}
		value := req.GetString("value", "")

		rec, err := deps.Sessions.Answer(ctx, id, questionID, value)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to record answer: %v", err)), nil
		}

		names := rec.State.SolutionNames(deps.Catalog)
		b, err := json.Marshal(map[string]any{
			"tags":      rec.State.Tags,
			"suggested": names,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSetDisposition(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		status, err := req.RequireString("status")
		if err != nil {
			return mcpError("status is required"), nil
		}

		upd := session.DispoUpdate{Status: &status}
		if v := req.GetString("followup_date", ""); v != "" {
			upd.FollowupDate = &v
		}
		if v := req.GetString("followup_method", ""); v != "" {
			upd.FollowupMethod = &v
		}

		rec, err := deps.Sessions.SetDisposition(ctx, id, upd)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to set disposition: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Disposition for %s set to %s", rec.ID, rec.State.Dispo.Status)), nil
	}
}

func mcpResourceCatalog(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(map[string]any{
			"model":   deps.Catalog.Model,
			"addOns":  deps.Catalog.Products.AddOns,
			"arcsite": deps.Catalog.ArcSite,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
