package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "sanitycsv/internal/mcp"
	"sanitycsv/internal/service"
)

// ServeMCP runs sanitycsv as a standalone MCP server on stdin/stdout with
// no GUI. The cron scheduler stays with the GUI so scheduled jobs never run
// twice; jobs can still be listed and run on demand.
func ServeMCP(cfgPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := bootstrap(cfgPath, service.NoopEmitter{})
	if err != nil {
		return err
	}
	defer c.Close()

	srv := mcpserver.New(mcpserver.Deps{
		Exports: c.exports,
		Jobs:    c.jobs,
		Sinks:   c.sinks,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("[MCP] Shutting down...")
		c.jobs.WaitRunning(context.Background())
		return nil
	}
}
