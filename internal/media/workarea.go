package media

import (
	"fmt"
	"os"
	"path/filepath"

	"video-library/internal/logging"
)

// WorkAreaPattern names the scoped directories holding extracted frames. The
// prefix keeps sweeps of a shared temp dir off other programs' directories.
const WorkAreaPattern = "video-library-frames-*"

// WorkArea is a private directory for one ingestion's frames.
// Callers must defer Close right after NewWorkArea succeeds.
type WorkArea struct {
	dir string
}

// NewWorkArea creates a fresh directory under parent (the OS temp dir when
// parent is empty).
func NewWorkArea(parent string) (*WorkArea, error) {
	dir, err := os.MkdirTemp(parent, WorkAreaPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create work area: %w", err)
	}
	return &WorkArea{dir: dir}, nil
}

// Dir returns the work area path.
func (w *WorkArea) Dir() string {
	return w.dir
}

// FramePath returns the path for the frame with the given ordinal.
func (w *WorkArea) FramePath(ordinal int) string {
	return filepath.Join(w.dir, fmt.Sprintf("frame_%03d.png", ordinal))
}

// Close removes the work area and everything in it. It is safe to call more
// than once.
func (w *WorkArea) Close() error {
	if w == nil || w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	if err != nil {
		logging.Warn("Failed to remove work area %s: %v", w.dir, err)
		return err
	}
	w.dir = ""
	return nil
}
