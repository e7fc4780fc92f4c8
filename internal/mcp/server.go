// Package mcp exposes the project and journal services as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/internal/service"
	"github.com/ldi/tasker/pkg/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server.
func NewServer(projects *service.ProjectService, journal *service.JournalService, version string) *server.MCPServer {
	s := server.NewMCPServer("Tasker", version)

	// Projects
	s.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a new, empty project."),
		mcp.WithString("name", mcp.Description("Project name"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Project description"), mcp.Required()),
	), createProjectHandler(projects))

	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects with their tasks and backlog."),
	), listProjectsHandler(projects))

	s.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Get a single project by id."),
		mcp.WithString("project_id", mcp.Description("Project ID"), mcp.Required()),
	), getProjectHandler(projects))

	s.AddTool(mcp.NewTool("update_project",
		mcp.WithDescription("Replace a project's name, description, tasks and backlog. "+
			"Tasks without an id get a new one; tasks left out are deleted."),
		mcp.WithString("project_id", mcp.Description("Project ID"), mcp.Required()),
		mcp.WithString("name", mcp.Description("Project name"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Project description"), mcp.Required()),
		mcp.WithString("tasks_json", mcp.Description("JSON array of active tasks, in order")),
		mcp.WithString("backlog_json", mcp.Description("JSON array of backlog tasks, in order")),
	), updateProjectHandler(projects))

	s.AddTool(mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project with all its tasks."),
		mcp.WithString("project_id", mcp.Description("Project ID"), mcp.Required()),
	), deleteProjectHandler(projects))

	// Journal
	s.AddTool(mcp.NewTool("create_journal_entry",
		mcp.WithDescription("Write a new journal entry."),
		mcp.WithString("entry_date", mcp.Description("Date (YYYY-MM-DD)"), mcp.Required()),
		mcp.WithString("entry_body", mcp.Description("Entry text"), mcp.Required()),
	), createJournalEntryHandler(journal))

	s.AddTool(mcp.NewTool("edit_journal_entry",
		mcp.WithDescription("Replace the date and text of a journal entry."),
		mcp.WithString("entry_id", mcp.Description("Entry ID"), mcp.Required()),
		mcp.WithString("entry_date", mcp.Description("Date (YYYY-MM-DD)"), mcp.Required()),
		mcp.WithString("entry_body", mcp.Description("Entry text"), mcp.Required()),
	), editJournalEntryHandler(journal))

	s.AddTool(mcp.NewTool("list_journal_entries",
		mcp.WithDescription("List all journal entries ordered by date."),
	), listJournalEntriesHandler(journal))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// optString returns the argument as a pointer, or nil when it was not given.
func optString(request mcp.CallToolRequest, key string) *string {
	args, _ := request.Params.Arguments.(map[string]any)
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}

func parseTasks(request mcp.CallToolRequest, key string) ([]*models.Task, error) {
	raw := mcp.ParseString(request, key, "")
	if raw == "" {
		return []*models.Task{}, nil
	}
	var tasks []*models.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("%s is not a valid JSON array of tasks: %v", key, err)
	}
	return tasks, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(apperr.Message(err)), nil
}

func createProjectHandler(projects *service.ProjectService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := projects.CreateProject(ctx, models.NewProjectRequest{
			Name:        optString(request, "name"),
			Description: optString(request, "description"),
		})
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(p)
	}
}

func listProjectsHandler(projects *service.ProjectService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		all, err := projects.GetAllProjects(ctx)
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(map[string]any{"projects": all})
	}
}

func getProjectHandler(projects *service.ProjectService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := projects.GetProjectByID(ctx, mcp.ParseString(request, "project_id", ""))
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(p)
	}
}

func updateProjectHandler(projects *service.ProjectService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := parseTasks(request, "tasks_json")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		backlog, err := parseTasks(request, "backlog_json")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		p, err := projects.UpdateProject(ctx, models.UpdateProjectRequest{
			ID:          optString(request, "project_id"),
			Name:        optString(request, "name"),
			Description: optString(request, "description"),
			Tasks:       tasks,
			Backlog:     backlog,
		})
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(p)
	}
}

func deleteProjectHandler(projects *service.ProjectService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "project_id", "")
		if err := projects.DeleteProject(ctx, id); err != nil {
			return errorResult(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Project %s deleted successfully", id)), nil
	}
}

func createJournalEntryHandler(journal *service.JournalService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		e, err := journal.CreateJournalEntry(ctx, models.NewJournalEntryRequest{
			Date: optString(request, "entry_date"),
			Body: optString(request, "entry_body"),
		})
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(e)
	}
}

func editJournalEntryHandler(journal *service.JournalService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		e, err := journal.EditJournalEntry(ctx, models.EditJournalEntryRequest{
			ID:   optString(request, "entry_id"),
			Date: optString(request, "entry_date"),
			Body: optString(request, "entry_body"),
		})
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(e)
	}
}

func listJournalEntriesHandler(journal *service.JournalService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := journal.GetAllJournalEntries(ctx)
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(map[string]any{"journal_entries": entries})
	}
}
