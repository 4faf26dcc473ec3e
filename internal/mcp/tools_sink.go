package mcpserver

import (
	"context"
	"fmt"

	"sanitycsv/internal/sink"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSinkTools() {
	s.mcp.AddTool(mcp.NewTool("list_sinks",
		mcp.WithDescription("List the database sinks configured in the config file (passwords are never shown)"),
	), s.handleListSinks)

	s.mcp.AddTool(mcp.NewTool("test_sink",
		mcp.WithDescription("Open a configured sink and ping it"),
		mcp.WithString("sink", mcp.Description("Sink name"), mcp.Required()),
	), s.handleTestSink)

	s.mcp.AddTool(mcp.NewTool("export_to_sink",
		mcp.WithDescription("Write the selected columns of a ready export into a database table (or MongoDB collection). Every column is stored as text. Replace mode drops the existing table first."),
		mcp.WithString("contentName", mcp.Description("Sanity document type"), mcp.Required()),
		mcp.WithString("sink", mcp.Description("Sink name"), mcp.Required()),
		mcp.WithString("table", mcp.Description("Table or collection (defaults to contentName)")),
		mcp.WithString("mode", mcp.Description("replace (default) or append"), mcp.Enum("replace", "append")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleExportToSink)
}

func (s *Server) handleListSinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.sinks.ListSinks())
}

func (s *Server) handleTestSink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("sink")
	if err != nil {
		return nil, err
	}
	if err := s.sinks.TestSink(ctx, name); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("sink %s is reachable", name)), nil
}

func (s *Server) handleExportToSink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := contentName(req)
	if err != nil {
		return nil, err
	}
	sinkName, err := req.RequireString("sink")
	if err != nil {
		return nil, err
	}
	mode, err := sink.ParseWriteMode(req.GetString("mode", ""))
	if err != nil {
		return nil, err
	}
	run, err := s.exports.ExportToSink(ctx, name, sinkName, req.GetString("table", ""), mode)
	if err != nil {
		return nil, err
	}
	return jsonResult(run)
}
