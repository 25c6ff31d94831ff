package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"video-library/internal/mediatypes"
)

// Layout describes where permanent and transient files live.
// VideoDir and StagingDir must be on the same filesystem.
type Layout struct {
	VideoDir   string
	PreviewDir string
	StagingDir string
}

// VideoFileName returns the permanent name for a video with the given digest.
func VideoFileName(hash, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return hash
	}
	return hash + "." + ext
}

// PreviewFileName returns the permanent name of the preview for a digest.
func PreviewFileName(hash string) string {
	return hash + "." + mediatypes.PreviewExtension
}

// VideoPath joins a stored video file name onto the video root.
func (l Layout) VideoPath(name string) string {
	return filepath.Join(l.VideoDir, name)
}

// PreviewPath joins a stored preview file name onto the preview root.
func (l Layout) PreviewPath(name string) string {
	return filepath.Join(l.PreviewDir, name)
}

// Ensure creates every directory of the layout.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.VideoDir, l.PreviewDir, l.StagingDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// FindVideosByHash returns the names of stored videos whose stem is hash,
// whatever their extension.
func (l Layout) FindVideosByHash(hash string) ([]string, error) {
	// hash is hex, so it carries no glob metacharacters
	matches, err := filepath.Glob(filepath.Join(l.VideoDir, hash+".*"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	if len(names) == 0 {
		if _, err := StatWithRetry(l.VideoPath(hash), DefaultRetryConfig()); err == nil {
			names = append(names, hash)
		}
	}
	return names, nil
}

// SafeName reports whether name is a bare file name that cannot escape its
// directory.
func SafeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}

// RemoveIfExists removes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
