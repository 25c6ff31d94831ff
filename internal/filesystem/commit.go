package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"syscall"

	"video-library/internal/logging"
	"video-library/internal/metrics"
)

// ErrTargetExists is returned by CommitNoReplace when the destination is
// already taken.
var ErrTargetExists = errors.New("commit target already exists")

// CrossDeviceError reports a commit whose source and destination live on
// different filesystems. It is never turned into copy+delete because that
// would lose atomicity.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cannot move %q to %q across filesystems (EXDEV); staging and storage must share a filesystem: %v",
		e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// replaceable for tests
var (
	renameNoReplaceFunc = renameNoReplace
	linkFunc            = os.Link
	removeFunc          = os.Remove
)

// CommitNoReplace atomically moves src to dst, failing with ErrTargetExists
// when dst already exists. Exactly one of several concurrent commits to the
// same dst succeeds. On success src no longer exists.
func CommitNoReplace(src, dst string) error {
	err := renameNoReplaceFunc(src, dst)
	if errors.Is(err, errNoReplaceUnsupported) {
		err = linkThenUnlink(src, dst)
	}

	switch {
	case err == nil:
		metrics.FilesystemCommitsTotal.WithLabelValues("committed").Inc()
		syncDirBestEffort(filepath.Dir(dst))
		return nil
	case errors.Is(err, os.ErrExist):
		metrics.FilesystemCommitsTotal.WithLabelValues("exists").Inc()
		return fmt.Errorf("%w: %s", ErrTargetExists, dst)
	case errors.Is(err, syscall.EXDEV):
		metrics.FilesystemCommitsTotal.WithLabelValues("error").Inc()
		return &CrossDeviceError{Src: src, Dst: dst, Err: err}
	default:
		metrics.FilesystemCommitsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to commit %s: %w", filepath.Base(dst), err)
	}
}

// linkThenUnlink uses link(2), which fails with EEXIST instead of replacing,
// then drops the source name. Once the link exists dst is committed, so a
// failure to drop src is only logged; the staged name is discarded later or
// swept at startup.
func linkThenUnlink(src, dst string) error {
	if err := linkFunc(src, dst); err != nil {
		return err
	}
	if err := removeFunc(src); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Committed %s but failed to remove staged name %s: %v", filepath.Base(dst), src, err)
	}
	return nil
}

func syncDirBestEffort(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}
