// Package hashing computes the content fingerprint used as both the
// deduplication key and the storage filename stem for uploaded videos.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ChunkSize is the fixed read size used while streaming content into the
// digest. Memory use is independent of file size.
const ChunkSize = 4 * 1024

// DigestLength is the length of a hex-encoded SHA-256 digest.
const DigestLength = sha256.Size * 2

// HashReader streams r in ChunkSize reads and returns the lowercase hex
// SHA-256 digest of everything read.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(onlyWriter{h}, onlyReader{r}, buf); err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile opens path and returns its digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return HashReader(f)
}

// IsDigest reports whether s looks like a digest produced by this package.
func IsDigest(s string) bool {
	if len(s) != DigestLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// onlyReader and onlyWriter hide ReaderFrom/WriterTo so io.CopyBuffer
// always goes through the fixed-size buffer.
type onlyReader struct{ io.Reader }

type onlyWriter struct{ io.Writer }
