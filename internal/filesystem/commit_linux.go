//go:build linux

package filesystem

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var errNoReplaceUnsupported = errors.New("renameat2 RENAME_NOREPLACE unsupported")

// renameNoReplace uses renameat2(RENAME_NOREPLACE). Kernels or filesystems
// without support report ENOSYS or EINVAL, in which case the caller falls back
// to link+unlink.
func renameNoReplace(src, dst string) error {
	err := unix.Renameat2(unix.AT_FDCWD, src, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOSYS), errors.Is(err, unix.EINVAL):
		return errNoReplaceUnsupported
	default:
		return &os.LinkError{Op: "renameat2", Old: src, New: dst, Err: err}
	}
}
