package app

import (
	"context"
	"fmt"
	"log"

	"sanitycsv/internal/export"
	"sanitycsv/internal/service"
	"sanitycsv/internal/sink"
)

// ExportOptions configures a headless export.
type ExportOptions struct {
	ContentName string
	Fields      []string // empty keeps every column
	OutDir      string   // defaults to export.output_dir
	Sink        string   // write to this sink instead of a file
	Table       string
	Mode        string
}

// RunExport fetches one content type and writes it to a file or a sink
// without opening a window. The run is recorded like any other.
func RunExport(ctx context.Context, cfgPath string, opts ExportOptions) error {
	c, err := bootstrap(cfgPath, service.NoopEmitter{})
	if err != nil {
		return err
	}
	defer c.Close()

	req := service.HeadlessExport{
		ContentName: opts.ContentName,
		Fields:      opts.Fields,
		Sink:        opts.Sink,
		Table:       opts.Table,
	}
	if opts.Sink != "" {
		if req.Mode, err = sink.ParseWriteMode(opts.Mode); err != nil {
			return err
		}
	} else if opts.OutDir != "" {
		req.Saver = export.DirSaver{Dir: opts.OutDir}
	}

	run, err := c.exports.RunHeadless(ctx, req)
	if err != nil {
		return fmt.Errorf("export %s: %w", opts.ContentName, err)
	}
	log.Printf("[EXPORT] %s: %d row(s) -> %s", opts.ContentName, run.RowCount, run.Destination)
	return nil
}
