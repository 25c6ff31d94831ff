//go:build !unix

package startup

import "errors"

func sameDevice(a, b string) (bool, error) {
	return false, errors.New("device comparison not supported on this platform")
}
