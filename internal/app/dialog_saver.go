package app

import (
	"context"
	"fmt"
	"os"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"sanitycsv/internal/export"
)

// dialogSaver asks the user where to put the file with the native save
// dialog, starting in defaultDir.
type dialogSaver struct {
	ctx        context.Context
	defaultDir string
}

func (d dialogSaver) Save(_ context.Context, f export.File) (string, error) {
	path, err := wailsRuntime.SaveFileDialog(d.ctx, wailsRuntime.SaveDialogOptions{
		DefaultDirectory: d.defaultDir,
		DefaultFilename:  f.Name,
		Title:            "Save CSV export",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "CSV (*.csv)", Pattern: "*.csv"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("save dialog: %w", err)
	}
	if path == "" {
		return "", nil
	}
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
