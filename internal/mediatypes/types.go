package mediatypes

import (
	"path/filepath"
	"strings"
)

// PreviewExtension is the extension of every preview animation, without the dot.
const PreviewExtension = "gif"

// PreviewMimeType is served for preview animations.
const PreviewMimeType = "image/gif"

// VideoExtensions maps lowercase extensions (without the dot) accepted for upload.
var VideoExtensions = map[string]bool{
	"mp4":  true,
	"avi":  true,
	"mov":  true,
	"mkv":  true,
	"webm": true,
	"m4v":  true,
}

// MimeTypes maps extensions (without the dot) to their MIME types.
var MimeTypes = map[string]string{
	"mp4":  "video/mp4",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"mkv":  "video/x-matroska",
	"webm": "video/webm",
	"m4v":  "video/x-m4v",
	"gif":  PreviewMimeType,
}

// Extension returns the lowercase extension of name without the leading dot,
// or "" if name has none.
func Extension(name string) string {
	ext := filepath.Ext(filepath.Base(name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedVideo reports whether name carries an accepted video extension.
func IsAllowedVideo(name string) bool {
	return VideoExtensions[Extension(name)]
}

// GetMimeType returns the MIME type for an extension (without the dot).
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}
