package streaming

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"video-library/internal/logging"
	"video-library/internal/metrics"
)

var (
	// ErrWriteTimeout means a write did not complete within the configured
	// timeout, usually because the client stopped reading.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone means the request context ended before the response did.
	ErrClientGone = errors.New("client disconnected")
)

// Config bounds how long a response may take to reach the client.
type Config struct {
	// WriteTimeout is the deadline for each chunk written to the client.
	WriteTimeout time.Duration
	// MaxDuration caps the whole response (0 = unlimited).
	MaxDuration time.Duration
	// ChunkSize splits large writes so each gets a fresh deadline
	// (0 = write as received).
	ChunkSize int
}

// DefaultConfig returns the settings used for stored-file downloads.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// Writer is an http.ResponseWriter whose writes carry a per-chunk deadline.
// The server runs without a global write timeout so long downloads can
// finish; Writer stops a stalled client from pinning a goroutine and an open
// file forever.
type Writer struct {
	http.ResponseWriter

	ctx    context.Context
	rc     *http.ResponseController
	config Config
	start  time.Time

	mu           sync.Mutex
	bytesWritten int64
	noDeadline   bool
	failed       error
}

// NewWriter wraps w. ctx is normally the request context.
func NewWriter(ctx context.Context, w http.ResponseWriter, config Config) *Writer {
	return &Writer{
		ResponseWriter: w,
		ctx:            ctx,
		rc:             http.NewResponseController(w),
		config:         config,
		start:          time.Now(),
	}
}

// Write writes p in chunks, each under its own deadline.
func (sw *Writer) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.failed != nil {
		return 0, sw.failed
	}

	total := 0
	for len(p) > 0 {
		if sw.ctx.Err() != nil {
			return total, sw.fail(ErrClientGone)
		}
		if sw.config.MaxDuration > 0 && time.Since(sw.start) > sw.config.MaxDuration {
			return total, sw.fail(fmt.Errorf("%w: response exceeded %v", ErrWriteTimeout, sw.config.MaxDuration))
		}

		n := len(p)
		if sw.config.ChunkSize > 0 && n > sw.config.ChunkSize {
			n = sw.config.ChunkSize
		}

		sw.setDeadline()
		written, err := sw.ResponseWriter.Write(p[:n])
		total += written
		sw.bytesWritten += int64(written)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				metrics.StreamWriteTimeouts.Inc()
				return total, sw.fail(fmt.Errorf("%w after %d bytes", ErrWriteTimeout, sw.bytesWritten))
			}
			return total, sw.fail(err)
		}
		p = p[n:]
	}
	return total, nil
}

// fail latches err so later writes return it at once. Caller holds mu.
func (sw *Writer) fail(err error) error {
	sw.failed = err
	return err
}

func (sw *Writer) setDeadline() {
	if sw.noDeadline || sw.config.WriteTimeout <= 0 {
		return
	}
	if err := sw.rc.SetWriteDeadline(time.Now().Add(sw.config.WriteTimeout)); err != nil {
		// recorders and some wrappers cannot carry deadlines
		sw.noDeadline = true
		logging.Debug("Write deadlines unavailable: %v", err)
	}
}

// Close clears the write deadline so the connection can be reused for the
// next request on a kept-alive connection.
func (sw *Writer) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.noDeadline || sw.config.WriteTimeout <= 0 {
		return nil
	}
	if err := sw.rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// Err returns the error that ended the response early, if any.
func (sw *Writer) Err() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.failed
}

// Stats returns the bytes written and the time since the writer was created.
func (sw *Writer) Stats() (bytesWritten int64, duration time.Duration) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.bytesWritten, time.Since(sw.start)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *Writer) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
