//go:build !linux

package filesystem

import "errors"

var errNoReplaceUnsupported = errors.New("no-replace rename unsupported")

func renameNoReplace(src, dst string) error {
	return errNoReplaceUnsupported
}
