package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── sanitycsv://settings ───────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"sanitycsv://settings",
		"Export Target and Widget Settings",
		mcp.WithMIMEType("application/json"),
	), s.handleSettingsResource)

	// ── sanitycsv://runs ───────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"sanitycsv://runs",
		"Recent Export Runs",
		mcp.WithMIMEType("application/json"),
	), s.handleRunsResource)

	// ── sanitycsv://export/{contentName}.csv ───────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"sanitycsv://export/{contentName}.csv",
			"CSV of a Ready Export (selected columns)",
			mcp.WithTemplateMIMEType("text/csv"),
		),
		s.handleExportCSVResource,
	)
}

func (s *Server) handleSettingsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, _ := json.MarshalIndent(s.exports.Config().WidgetSettings(), "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "sanitycsv://settings",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleRunsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	runs, err := s.exports.ListRuns("", 50)
	if err != nil {
		return nil, err
	}
	data, _ := json.MarshalIndent(runs, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "sanitycsv://runs",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleExportCSVResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	name := contentNameFromURI(uri)
	if name == "" {
		return nil, fmt.Errorf("could not extract contentName from URI: %s", uri)
	}

	text, err := s.exports.Render(name)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/csv",
			Text:     text,
		},
	}, nil
}

// contentNameFromURI extracts the type from "sanitycsv://export/{name}.csv".
func contentNameFromURI(uri string) string {
	name, ok := strings.CutPrefix(uri, "sanitycsv://export/")
	if !ok {
		return ""
	}
	name, ok = strings.CutSuffix(name, ".csv")
	if !ok || strings.Contains(name, "/") {
		return ""
	}
	return name
}
