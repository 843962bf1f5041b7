// Package export writes an exported transcript to its destination.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink stores an export blob and returns where it ended up.
type Sink interface {
	Export(ctx context.Context, name string, text string) (string, error)
}

// FileSink writes exports into a local directory.
type FileSink struct {
	Dir string
}

// Export writes text to Dir/name, replacing an existing file.
func (s FileSink) Export(_ context.Context, name, text string) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// PathSink writes to one exact file path, ignoring the suggested name.
type PathSink struct {
	Path string
}

func (s PathSink) Export(ctx context.Context, _ string, text string) (string, error) {
	return FileSink{Dir: filepath.Dir(s.Path)}.Export(ctx, filepath.Base(s.Path), text)
}
