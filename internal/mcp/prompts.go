package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("export_content_type",
		mcp.WithPromptDescription("Guide through exporting one Sanity content type to CSV with a column selection"),
		mcp.WithArgument("contentName",
			mcp.ArgumentDescription("Sanity document type to export"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("columns",
			mcp.ArgumentDescription("Comma-separated columns to keep (optional)"),
		),
	), s.handleExportPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("schedule_export",
		mcp.WithPromptDescription("Set up a recurring export of a content type into a directory or database sink"),
		mcp.WithArgument("contentName",
			mcp.ArgumentDescription("Sanity document type to export"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("schedule",
			mcp.ArgumentDescription("When to run, in words or as a cron expression"),
			mcp.RequiredArgument(),
		),
	), s.handleSchedulePrompt)
}

func (s *Server) handleExportPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := req.Params.Arguments["contentName"]
	columns := req.Params.Arguments["columns"]
	if columns == "" {
		columns = "whichever columns look useful to a spreadsheet reader (skip internal _rev and _updatedAt unless asked)"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Export %s to CSV", name),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Export the "%s" documents to CSV. Follow these steps:

1. Call get_export_state for %s. If it is ready from an earlier attempt, call reset_export first.
2. Call fetch_export and look at the returned columns.
3. Keep %s using select_export_fields (or toggle_export_field for single columns).
4. Call preview_export to check the first rows.
5. Call download_export and report the saved path and row count.`, name, name, columns),
				},
			},
		},
	}, nil
}

func (s *Server) handleSchedulePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := req.Params.Arguments["contentName"]
	schedule := req.Params.Arguments["schedule"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Schedule an export of %s", name),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Schedule a recurring export of "%s" (%s). Follow these steps:

1. Call fetch_export for %s to see which columns exist, then reset_export.
2. Decide the destination: a directory, or one of the sinks from list_sinks (run test_sink first).
3. Convert the schedule to a standard 5-field cron expression.
4. Call create_export_job with the columns to keep.
5. Call run_export_job once and report the result.`, name, schedule, name),
				},
			},
		},
	}, nil
}
