package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// CSVMimeType is the content type of every downloaded file.
const CSVMimeType = "text/csv"

// File is a generated download.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Saver delivers a generated file to its destination and returns where it went.
// An empty path with a nil error means the user cancelled.
type Saver interface {
	Save(ctx context.Context, f File) (string, error)
}

// DirSaver writes files into Dir, creating it when missing.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(_ context.Context, f File) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(f.Name))
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
