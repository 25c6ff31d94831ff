//go:build unix

package startup

import (
	"golang.org/x/sys/unix"
)

// sameDevice reports whether a and b live on the same filesystem.
func sameDevice(a, b string) (bool, error) {
	var sa, sb unix.Stat_t
	if err := unix.Stat(a, &sa); err != nil {
		return false, err
	}
	if err := unix.Stat(b, &sb); err != nil {
		return false, err
	}
	return sa.Dev == sb.Dev, nil
}
