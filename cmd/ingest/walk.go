package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"video-library/internal/logging"
	"video-library/internal/mediatypes"
)

// expandPaths turns the command-line arguments into the list of files to
// ingest. Files are kept as given, even with an unsupported extension, so
// they are reported. Directories are walked recursively for supported
// videos; hidden entries are skipped, which also keeps the library's own
// staging area out.
func expandPaths(ctx context.Context, args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}

		found, err := walkVideos(ctx, arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			logging.Warn("No supported videos under %s", arg)
		}
		files = append(files, found...)
	}
	return files, nil
}

func walkVideos(ctx context.Context, root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil {
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && mediatypes.IsAllowedVideo(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Strings(found)
	return found, nil
}
