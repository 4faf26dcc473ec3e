package mcpserver

import (
	"encoding/json"
	"fmt"
	"log"

	"sanitycsv/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for sanitycsv.
// It exposes the export flow as tools so AI agents can fetch a content
// type, pick columns and deliver the CSV.
type Server struct {
	mcp *server.MCPServer

	// Services (injected from app layer)
	exports *service.ExportService
	jobs    *service.JobService
	sinks   *service.SinkService
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Exports *service.ExportService
	Jobs    *service.JobService // optional: job tools are skipped when nil
	Sinks   *service.SinkService
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		exports: deps.Exports,
		jobs:    deps.Jobs,
		sinks:   deps.Sinks,
	}

	s.mcp = server.NewMCPServer(
		"sanitycsv-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerExportTools()
	s.registerSinkTools()
	if s.jobs != nil {
		s.registerJobTools()
	}
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }

// contentName reads the required contentName argument.
func contentName(req mcp.CallToolRequest) (string, error) {
	name := req.GetString("contentName", "")
	if name == "" {
		return "", fmt.Errorf("contentName is required")
	}
	return name, nil
}

// stateResult renders a session state for an agent. Rows are summarised
// by count; the CSV is left out since download_export delivers it.
func stateResult(st service.ExportState) (*mcp.CallToolResult, error) {
	type fieldView struct {
		Index    int    `json:"index"`
		Name     string `json:"name"`
		Selected bool   `json:"selected"`
	}
	fields := make([]fieldView, len(st.Fields))
	for i, f := range st.Fields {
		fields[i] = fieldView{Index: i, Name: f.Name, Selected: f.Selected}
	}
	return jsonResult(map[string]any{
		"contentName": st.ContentName,
		"state":       st.State,
		"rowCount":    len(st.Rows),
		"fields":      fields,
	})
}
