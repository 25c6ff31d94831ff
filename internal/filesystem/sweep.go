package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"video-library/internal/logging"
)

// SweepStale removes entries of dir whose names match any of patterns and
// whose modification time is older than olderThan. Directories are removed
// recursively. It returns how many entries were removed.
func SweepStale(dir string, patterns []string, olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		if !matchesAny(entry.Name(), patterns) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logging.Warn("Failed to remove stale %s: %v", path, err)
			continue
		}
		logging.Debug("Removed stale %s", path)
		removed++
	}
	return removed, nil
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
