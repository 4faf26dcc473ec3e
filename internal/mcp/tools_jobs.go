package mcpserver

import (
	"context"

	"sanitycsv/internal/domain"
	"sanitycsv/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerJobTools() {
	s.mcp.AddTool(mcp.NewTool("list_export_jobs",
		mcp.WithDescription("List saved export jobs with their schedule and last status, plus the IDs of jobs running right now"),
	), s.handleListExportJobs)

	s.mcp.AddTool(mcp.NewTool("create_export_job",
		mcp.WithDescription("Save an export that runs on demand or on a cron schedule. It writes {contentName}.csv into a directory, or into a sink table when sink is set."),
		mcp.WithString("name", mcp.Description("Job name"), mcp.Required()),
		mcp.WithString("contentName", mcp.Description("Sanity document type"), mcp.Required()),
		mcp.WithArray("fields", mcp.Description("Columns to keep (empty keeps every column)"), mcp.WithStringItems()),
		mcp.WithString("schedule", mcp.Description("Standard 5-field cron expression, e.g. \"0 3 * * *\" (empty = manual only)")),
		mcp.WithString("dir", mcp.Description("Output directory for file jobs (defaults to export.output_dir)")),
		mcp.WithString("sink", mcp.Description("Sink name; makes this a sink job")),
		mcp.WithString("table", mcp.Description("Sink table (defaults to contentName)")),
		mcp.WithString("mode", mcp.Description("Sink write mode"), mcp.Enum("replace", "append")),
	), s.handleCreateExportJob)

	s.mcp.AddTool(mcp.NewTool("run_export_job",
		mcp.WithDescription("Run a saved export job now"),
		mcp.WithString("jobId", mcp.Description("Export job ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRunExportJob)

	s.mcp.AddTool(mcp.NewTool("delete_export_job",
		mcp.WithDescription("Delete a saved export job and its run history"),
		mcp.WithString("jobId", mcp.Description("Export job ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteExportJob)
}

func (s *Server) handleListExportJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs, err := s.jobs.ListJobs()
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{
		"jobs":    jobs,
		"running": s.jobs.RunningJobs(),
	})
}

func (s *Server) handleCreateExportJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := service.CreateJobInput{
		Name:        req.GetString("name", ""),
		ContentName: req.GetString("contentName", ""),
		Fields:      req.GetStringSlice("fields", nil),
		Schedule:    req.GetString("schedule", ""),
		Enabled:     true,
		Destination: domain.Destination{
			Kind: domain.DestinationFile,
			Dir:  req.GetString("dir", ""),
		},
	}
	if sinkName := req.GetString("sink", ""); sinkName != "" {
		input.Destination = domain.Destination{
			Kind:  domain.DestinationSink,
			Sink:  sinkName,
			Table: req.GetString("table", ""),
			Mode:  req.GetString("mode", ""),
		}
	}
	job, err := s.jobs.CreateJob(ctx, input)
	if err != nil {
		return nil, err
	}
	return jsonResult(job)
}

func (s *Server) handleRunExportJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("jobId")
	if err != nil {
		return nil, err
	}
	run, err := s.jobs.RunJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonResult(run)
}

func (s *Server) handleDeleteExportJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("jobId")
	if err != nil {
		return nil, err
	}
	if err := s.jobs.DeleteJob(ctx, id); err != nil {
		return nil, err
	}
	return textResult("deleted job " + id), nil
}
