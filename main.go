package main

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	sanityApp "sanitycsv/internal/app"
	"sanitycsv/internal/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "sanitycsv",
		Short:        "Export Sanity content types to CSV",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "path to the YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "mcp",
		Short: "Serve the export tools over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sanityApp.ServeMCP(cfgPath)
		},
	})

	root.AddCommand(newExportCmd(&cfgPath))
	return root
}

func newExportCmd(cfgPath *string) *cobra.Command {
	var (
		fields string
		opts   sanityApp.ExportOptions
	)
	cmd := &cobra.Command{
		Use:   "export <contentName>",
		Short: "Export one content type to {contentName}.csv or a sink table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ContentName = args[0]
			for _, f := range strings.Split(fields, ",") {
				if f = strings.TrimSpace(f); f != "" {
					opts.Fields = append(opts.Fields, f)
				}
			}
			return sanityApp.RunExport(cmd.Context(), *cfgPath, opts)
		},
	}
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated columns to keep (default: all)")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "output directory (default: export.output_dir)")
	cmd.Flags().StringVar(&opts.Sink, "sink", "", "write into this configured sink instead of a file")
	cmd.Flags().StringVar(&opts.Table, "table", "", "sink table or collection (default: contentName)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "replace", "sink write mode: replace or append")
	return cmd
}

func runGUI(cfgPath string) error {
	app, err := sanityApp.New(cfgPath)
	if err != nil {
		return err
	}
	size := app.WindowSize()

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	err = wails.Run(&options.App{
		Title:     "Sanity CSV",
		Width:     size.Width,
		Height:    size.Height,
		MinWidth:  640,
		MinHeight: 480,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 15, G: 15, B: 20, A: 1},
		Menu:             appMenu,
		OnStartup:        app.Startup,
		OnBeforeClose:    app.OnBeforeClose,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: mac.TitleBarHiddenInset(),
			About: &mac.AboutInfo{
				Title:   "Sanity CSV",
				Message: "Export Sanity content types to CSV",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}
