package filemanager

import (
	"context"
	"os"
)

// FileChecker reports whether a path exists on the target host.
type FileChecker interface {
	Exists(ctx context.Context, path string) bool
}

// LocalFileManager probes the local filesystem directly.
type LocalFileManager struct{}

func (LocalFileManager) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
