package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StagingPrefix starts the name of every staged upload.
const StagingPrefix = "temp_"

// ErrTooLarge is returned by Stage when the body exceeds the byte limit.
var ErrTooLarge = errors.New("staged content exceeds size limit")

// Staged is an upload written to the private staging area.
type Staged struct {
	Path string
	Ext  string
	Size int64
}

// Stage copies r into a new file named temp_<uuid>.<ext> under dir.
// A maxBytes of zero or less disables the limit. On any error the partial
// file is removed.
func Stage(dir, ext string, r io.Reader, maxBytes int64) (*Staged, error) {
	name := StagingPrefix + uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file: %w", err)
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}

	n, err := io.Copy(f, src)
	if err == nil && maxBytes > 0 && n > maxBytes {
		err = ErrTooLarge
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to write staged file: %w", err)
	}

	return &Staged{Path: path, Ext: ext, Size: n}, nil
}

// Discard removes the staged file.
func (s *Staged) Discard() error {
	return RemoveIfExists(s.Path)
}
