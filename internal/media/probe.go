package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrProbeUnavailable marks every duration probe failure. Callers treat it
// as "unknown duration" and skip the preview, never as a failed upload.
var ErrProbeUnavailable = errors.New("video duration unavailable")

// ProbeError describes why a duration could not be determined.
// errors.Is(err, ErrProbeUnavailable) holds for every ProbeError.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *ProbeError) Unwrap() []error {
	return []error{ErrProbeUnavailable, e.Err}
}

// DurationProber returns the duration of a stored video in seconds.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// ProbeDuration asks ffprobe for the container duration of path.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	res, err := f.run(ctx, "ffprobe", f.cfg.FFprobePath, f.cfg.ProbeTimeout,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, &ProbeError{Path: path, Err: err}
	}

	d, err := parseDuration(res.Stdout)
	if err != nil {
		return 0, &ProbeError{Path: path, Err: err}
	}
	return d, nil
}

// parseDuration accepts exactly one positive, finite decimal number.
func parseDuration(out []byte) (float64, error) {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return 0, errors.New("empty probe output")
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable probe output %q", truncate(s, 64))
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", s)
	}
	return d, nil
}
