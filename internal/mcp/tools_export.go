package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sanitycsv/internal/domain"
	"sanitycsv/internal/export"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerExportTools() {
	s.mcp.AddTool(mcp.NewTool("fetch_export",
		mcp.WithDescription("Fetch every document of a Sanity content type and start a column selection. All columns start selected. Only allowed while the content type is idle; call reset_export first to refetch."),
		mcp.WithString("contentName", mcp.Description("Sanity document type, e.g. \"movie\""), mcp.Required()),
	), s.handleFetchExport)

	s.mcp.AddTool(mcp.NewTool("get_export_state",
		mcp.WithDescription("Show the state (idle, loading, ready), row count and columns of a content type's export"),
		mcp.WithString("contentName", mcp.Description("Sanity document type"), mcp.Required()),
	), s.handleGetExportState)

	s.mcp.AddTool(mcp.NewTool("toggle_export_field",
		mcp.WithDescription("Flip the selection of one column by its index (see get_export_state). Out-of-range indexes are ignored."),
		mcp.WithString("contentName", mcp.Description("Sanity document type"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Zero-based column index"), mcp.Required()),
	), s.handleToggleExportField)

	s.mcp.AddTool(mcp.NewTool("select_export_fields",
		mcp.WithDescription("Select exactly the named columns; every other column is deselected. Unknown names are ignored."),
		mcp.WithString("contentName", mcp.Description("Sanity document type"), mcp.Required()),
		mcp.WithArray("fields", mcp.Description("Column names to keep"), mcp.WithStringItems(), mcp.Required()),
	), s.handleSelectExportFields)

	s.mcp.AddTool(mcp.NewTool("reset_export",
		mcp.WithDescription("Cancel the column selection and drop the fetched rows"),
		mcp.WithString("contentName", mcp.Description("Sanity document type"), mcp.Required()),
	), s.handleResetExport)

	s.mcp.AddTool(mcp.NewTool("preview_export",
		mcp.WithDescription("Render the CSV for the selected columns without saving it. Long output is truncated to maxRows data rows."),
		mcp.WithString("contentName", mcp.Description("Sanity document type"), mcp.Required()),
		mcp.WithNumber("maxRows", mcp.Description("Data rows to include (default 20)")),
	), s.handlePreviewExport)

	s.mcp.AddTool(mcp.NewTool("download_export",
		mcp.WithDescription("Write {contentName}.csv with the selected columns into a directory and record the run"),
		mcp.WithString("contentName", mcp.Description("Sanity document type"), mcp.Required()),
		mcp.WithString("dir", mcp.Description("Output directory (defaults to export.output_dir)")),
	), s.handleDownloadExport)

	s.mcp.AddTool(mcp.NewTool("list_export_runs",
		mcp.WithDescription("List recent export runs, newest first"),
		mcp.WithString("contentName", mcp.Description("Only runs of this content type (optional)")),
		mcp.WithNumber("limit", mcp.Description("Maximum runs to return (default 20)")),
	), s.handleListExportRuns)
}

func (s *Server) handleFetchExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := contentName(req)
	if err != nil {
		return nil, err
	}
	st, err := s.exports.Fetch(ctx, name)
	if errors.Is(err, export.ErrEmptyResult) {
		return textResult(fmt.Sprintf("%s has no documents in dataset %s", name, s.exports.Config().Sanity.Dataset)), nil
	}
	if err != nil {
		return nil, err
	}
	return stateResult(st)
}

func (s *Server) handleGetExportState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := contentName(req)
	if err != nil {
		return nil, err
	}
	return stateResult(s.exports.State(name))
}

func (s *Server) handleToggleExportField(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := contentName(req)
	if err != nil {
		return nil, err
	}
	index, err := req.RequireInt("index")
	if err != nil {
		return nil, err
	}
	st, err := s.exports.Toggle(ctx, name, index)
	if err != nil {
		return nil, err
	}
	return stateResult(st)
}

func (s *Server) handleSelectExportFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := contentName(req)
	if err != nil {
		return nil, err
	}
	fields, err := req.RequireStringSlice("fields")
	if err != nil {
		return nil, err
	}
	st, err := s.exports.SelectFields(ctx, name, fields)
	if err != nil {
		return nil, err
	}
	return stateResult(st)
}

func (s *Server) handleResetExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := contentName(req)
	if err != nil {
		return nil, err
	}
	st, err := s.exports.Reset(ctx, name)
	if err != nil {
		return nil, err
	}
	return stateResult(st)
}

func (s *Server) handlePreviewExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := contentName(req)
	if err != nil {
		return nil, err
	}
	maxRows := req.GetInt("maxRows", 20)

	snap := s.exports.State(name)
	if snap.State != export.StateReady {
		return nil, &export.StateError{State: snap.State, Event: "preview"}
	}
	rows := snap.Rows
	if maxRows >= 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	selected := domain.SelectedNames(snap.Fields)
	if len(selected) == 0 {
		return nil, export.ErrNoFieldsSelected
	}
	text, err := export.EncodeRecords(rows, selected)
	if err != nil {
		return nil, err
	}
	if len(rows) < len(snap.Rows) {
		text += fmt.Sprintf("\r\n... %d more row(s)", len(snap.Rows)-len(rows))
	}
	return textResult(text), nil
}

func (s *Server) handleDownloadExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := contentName(req)
	if err != nil {
		return nil, err
	}
	dir := strings.TrimSpace(req.GetString("dir", ""))
	if dir == "" {
		dir = s.exports.Config().Export.OutputDir
	}
	run, err := s.exports.Download(ctx, name, export.DirSaver{Dir: dir})
	if err != nil {
		return nil, err
	}
	return jsonResult(run)
}

func (s *Server) handleListExportRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runs, err := s.exports.ListRuns(req.GetString("contentName", ""), req.GetInt("limit", 20))
	if err != nil {
		return nil, err
	}
	return jsonResult(runs)
}
