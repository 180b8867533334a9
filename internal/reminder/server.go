package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "remind"
	serverVersion = "1.0.0"
)

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer *server.MCPServer
	store     *Store
	loc       *time.Location
	now       func() time.Time
}

// NewServer creates a new Reminder MCP server backed by the given store.
// Due times without an explicit zone are read in loc.
func NewServer(store *Store, loc *time.Location) *Server {
	if loc == nil {
		loc = time.UTC
	}
	s := &Server{
		store: store,
		loc:   loc,
		now:   time.Now,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a new reminder with text, due time, optional priority and project"),
			mcp.WithString("text", mcp.Required(), mcp.Description("Reminder text (1-1000 characters)")),
			mcp.WithString("due", mcp.Description("Due time: RFC3339, '2025-01-15 09:00', 'tomorrow 3pm', 'in 2 hours' (default: today 09:00)")),
			mcp.WithString("priority", mcp.Description("Priority: low, medium, high (default: medium)")),
			mcp.WithString("project", mcp.Description("Optional project tag")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders filtered by status"),
			mcp.WithString("status", mcp.Description("Filter by status: active (default), done, or all")),
			mcp.WithString("project", mcp.Description("Only reminders with this project tag")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_due_reminders",
			mcp.WithDescription("Get all active reminders that are due now or overdue"),
		),
		s.handleGetDueReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("search_reminders",
			mcp.WithDescription("Search reminders by text, ignoring case"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Substring to look for")),
		),
		s.handleSearchReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Mark a reminder as done"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleCompleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Update a reminder's text, due time, priority or project"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("text", mcp.Description("New text")),
			mcp.WithString("due", mcp.Description("New due time")),
			mcp.WithString("priority", mcp.Description("New priority: low, medium, high")),
			mcp.WithString("project", mcp.Description("New project tag")),
		),
		s.handleUpdateReminder,
	)
}

func (s *Server) handleAddReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	now := s.now()
	due := DefaultDue(now, s.loc)
	if v := req.GetString("due", ""); v != "" {
		t, err := ParseDue(v, now, s.loc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		due = t
	}

	priority := PriorityMedium
	if v := req.GetString("priority", ""); v != "" {
		p, err := ParsePriority(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		priority = p
	}

	added, err := s.store.Add(text, due, priority, req.GetString("project", ""), "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}

	return jsonResult(added)
}

func (s *Server) handleListReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "active")
	project := req.GetString("project", "")

	var reminders []Reminder
	var err error
	switch {
	case project != "":
		reminders, err = s.store.ListByProject(project, status != "active")
	case status == "active":
		reminders, err = s.store.ListActive()
	case status == "done", status == "all":
		reminders, err = s.store.ListAll()
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown status %q (use active, done or all)", status)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if status == "done" {
		done := reminders[:0]
		for _, r := range reminders {
			if !r.Active() {
				done = append(done, r)
			}
		}
		reminders = done
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(reminders)
}

func (s *Server) handleGetDueReminders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders, err := s.store.DueNow(s.now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get due reminders: %v", err)), nil
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No due reminders."), nil
	}
	return jsonResult(reminders)
}

func (s *Server) handleSearchReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	reminders, err := s.store.Search(query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search reminders: %v", err)), nil
	}
	if len(reminders) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No reminders matching %q.", query)), nil
	}
	return jsonResult(reminders)
}

func (s *Server) handleCompleteReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	if _, err := s.store.MarkDone(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d marked as done.", id)), nil
}

func (s *Server) handleDeleteReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	deleted, err := s.store.Delete(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}
	if !deleted {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %d not found", id)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d deleted.", id)), nil
}

func (s *Server) handleUpdateReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	var fields UpdateFields

	if v := req.GetString("text", ""); v != "" {
		fields.Text = &v
	}
	if v := req.GetString("due", ""); v != "" {
		t, err := ParseDue(v, s.now(), s.loc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fields.DueAt = &t
	}
	if v := req.GetString("priority", ""); v != "" {
		p, err := ParsePriority(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fields.Priority = &p
	}
	if v := req.GetString("project", ""); v != "" {
		fields.Project = &v
	}

	updated, err := s.store.Update(id, fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("reminder %d not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}

	return jsonResult(updated)
}

func requireID(req mcp.CallToolRequest) (int64, *mcp.CallToolResult) {
	idFloat := req.GetFloat("id", -1)
	if idFloat < 1 {
		return 0, mcp.NewToolResultError("id is required and must be a positive number")
	}
	return int64(idFloat), nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}
