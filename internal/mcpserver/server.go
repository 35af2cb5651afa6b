// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Jera goal tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jera/internal/goalservice"
	"github.com/starford/jera/internal/models"
)

// Server wraps the MCP server with Jera tools. All tool calls run as the
// configured local user.
type Server struct {
	mcp  *server.MCPServer
	svc  *goalservice.Service
	user models.UserID
}

// New creates a new MCP server with all Jera tools registered.
func New(svc *goalservice.Service, user models.UserID) *Server {
	s := &Server{svc: svc, user: user}

	s.mcp = server.NewMCPServer(
		"Jera",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_goals",
		mcp.WithDescription("List active goals, optionally only those with dates."),
		mcp.WithBoolean("dated_only", mcp.Description("Only return goals with at least one date bound")),
	), s.listGoals)

	s.mcp.AddTool(mcp.NewTool("get_goal",
		mcp.WithDescription("Read a single goal by its ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Goal ID")),
	), s.getGoal)

	s.mcp.AddTool(mcp.NewTool("create_goal",
		mcp.WithDescription("Create a goal, optionally placed on the calendar. "+
			"Dates use YYYY-MM-DD form and each calendar day holds at most one "+
			"goal; read the scheduling rules first via the get_scheduling_rules "+
			"tool or the jera://scheduling-rules resource."),
		mcp.WithString("title", mcp.Description("Goal title (defaults to \"Untitled\")")),
		mcp.WithString("content", mcp.Description("Free-form notes")),
		mcp.WithString("color", mcp.Description("Hex color like #3366ff, or \"transparent\"")),
		mcp.WithString("start_date", mcp.Description("Start date, YYYY-MM-DD")),
		mcp.WithString("end_date", mcp.Description("End date, YYYY-MM-DD")),
	), s.createGoal)

	s.mcp.AddTool(mcp.NewTool("check_dates",
		mcp.WithDescription("Check whether a date range collides with existing goals "+
			"before creating or rescheduling one."),
		mcp.WithString("start_date", mcp.Description("Start date, YYYY-MM-DD")),
		mcp.WithString("end_date", mcp.Description("End date, YYYY-MM-DD")),
		mcp.WithString("exclude_id", mcp.Description("Goal ID to ignore, for reschedules")),
	), s.checkDates)

	s.mcp.AddTool(mcp.NewTool("search_goals",
		mcp.WithDescription("Full-text search through goal titles and notes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchGoals)

	s.mcp.AddTool(mcp.NewTool("archive_goal",
		mcp.WithDescription("Move a goal to the trash, freeing its calendar days."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Goal ID")),
	), s.archiveGoal)

	s.mcp.AddTool(mcp.NewTool("get_scheduling_rules",
		mcp.WithDescription("Returns the calendar scheduling rules. Call this before "+
			"creating dated goals to understand how overlaps are decided."),
	), s.getSchedulingRules)

	// Resource: scheduling rules.
	s.mcp.AddResource(
		mcp.NewResource("jera://scheduling-rules", "Scheduling Rules",
			mcp.WithResourceDescription("How goals occupy calendar days and when two ranges collide."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSchedulingRulesResource,
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

// parseDay parses a YYYY-MM-DD argument; empty means absent.
func parseDay(req mcp.CallToolRequest, key string) (*time.Time, error) {
	v := req.GetString(key, "")
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%s: want YYYY-MM-DD, got %q", key, v)
	}
	return &t, nil
}

type goalSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Color     string `json:"color,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Archived  bool   `json:"archived,omitempty"`
}

func summarize(g *models.Goal) goalSummary {
	out := goalSummary{
		ID:       g.ID,
		Title:    g.Title,
		Content:  g.Content,
		Color:    g.Color,
		Archived: g.Archived,
	}
	if g.Range.Start != nil {
		out.StartDate = models.Day(*g.Range.Start).Format("2006-01-02")
	}
	if g.Range.End != nil {
		out.EndDate = models.Day(*g.Range.End).Format("2006-01-02")
	}
	return out
}

func summaryJSON(goals []models.Goal) string {
	out := make([]goalSummary, len(goals))
	for i := range goals {
		out[i] = summarize(&goals[i])
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return string(data)
}

func (s *Server) listGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goals, err := s.svc.List(ctx, s.user)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.GetBool("dated_only", false) {
		dated := goals[:0]
		for _, g := range goals {
			if g.Range.HasDates() {
				dated = append(dated, g)
			}
		}
		goals = dated
	}
	return mcp.NewToolResultText(summaryJSON(goals)), nil
}

func (s *Server) getGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.svc.Get(ctx, s.user, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(summarize(g), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := parseDay(req, "start_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := parseDay(req, "end_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	g, err := s.svc.Create(ctx, s.user, goalservice.CreateRequest{
		Title:   req.GetString("title", ""),
		Content: req.GetString("content", ""),
		Color:   req.GetString("color", ""),
		Start:   start,
		End:     end,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", g.ID)), nil
}

func (s *Server) checkDates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := parseDay(req, "start_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := parseDay(req, "end_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	conflict, err := s.svc.Check(ctx, s.user, models.DateRange{Start: start, End: end},
		req.GetString("exclude_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if conflict {
		return mcp.NewToolResultText("conflict: the range collides with an existing goal"), nil
	}
	return mcp.NewToolResultText("free: the range is available"), nil
}

func (s *Server) searchGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	goals, err := s.svc.Search(ctx, s.user, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(summaryJSON(goals)), nil
}

func (s *Server) archiveGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.Archive(ctx, s.user, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("archived: %s", id)), nil
}

func (s *Server) getSchedulingRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SchedulingRules), nil
}

func (s *Server) readSchedulingRulesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "jera://scheduling-rules",
			MIMEType: "text/markdown",
			Text:     SchedulingRules,
		},
	}, nil
}
