package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"video-library/internal/logging"
	"video-library/internal/metrics"
)

const (
	maxStderrBytes = 8 * 1024 // tail of stderr kept for diagnostics
	maxStdoutBytes = 64 * 1024
	logStderrBytes = 512
)

// ErrToolMissing is returned when ffmpeg or ffprobe cannot be executed.
var ErrToolMissing = errors.New("media tool not found")

// ToolConfig locates the external tools and bounds each invocation.
type ToolConfig struct {
	FFmpegPath     string
	FFprobePath    string
	ProbeTimeout   time.Duration
	ExtractTimeout time.Duration
}

// DefaultToolConfig returns the tools from PATH with 30 second timeouts.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		ProbeTimeout:   30 * time.Second,
		ExtractTimeout: 30 * time.Second,
	}
}

// FFmpeg runs ffprobe and ffmpeg as subprocesses. It implements both
// DurationProber and FrameExtractor and is safe for concurrent use.
type FFmpeg struct {
	cfg ToolConfig
}

// NewFFmpeg fills unset fields of cfg with defaults.
func NewFFmpeg(cfg ToolConfig) *FFmpeg {
	def := DefaultToolConfig()
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = def.FFmpegPath
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = def.FFprobePath
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = def.ProbeTimeout
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = def.ExtractTimeout
	}
	return &FFmpeg{cfg: cfg}
}

// Config returns the effective tool configuration.
func (f *FFmpeg) Config() ToolConfig {
	return f.cfg
}

// Available reports which tools can be resolved on this host.
func (f *FFmpeg) Available() map[string]bool {
	_, probeErr := exec.LookPath(f.cfg.FFprobePath)
	_, ffmpegErr := exec.LookPath(f.cfg.FFmpegPath)
	return map[string]bool{
		"ffprobe": probeErr == nil,
		"ffmpeg":  ffmpegErr == nil,
	}
}

// RunResult describes one finished tool invocation.
type RunResult struct {
	ExitCode   int
	Stdout     []byte
	StderrTail string
	Duration   time.Duration
}

// run executes bin with its own timeout layered on ctx. A non-nil error
// always means the invocation did not produce a usable result.
func (f *FFmpeg) run(ctx context.Context, tool, bin string, timeout time.Duration, args ...string) (RunResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(runCtx, bin, args...)
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, limit: maxStdoutBytes}
	cmd.Stderr = &limitedWriter{w: &stderr, limit: maxStderrBytes}

	err := cmd.Run()
	res := RunResult{
		Stdout:     stdout.Bytes(),
		StderrTail: stderr.String(),
		Duration:   time.Since(start),
	}
	metrics.SubprocessDuration.WithLabelValues(tool).Observe(res.Duration.Seconds())

	if err == nil {
		return res, nil
	}

	res.ExitCode = -1
	var exitErr *exec.ExitError
	var reason string
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		reason = "missing"
		err = fmt.Errorf("%w: %s: %v", ErrToolMissing, bin, err)
	case ctx.Err() != nil:
		reason = "canceled"
		err = fmt.Errorf("%s canceled: %w", tool, ctx.Err())
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		reason = "timeout"
		err = fmt.Errorf("%s timed out after %v: %w", tool, timeout, context.DeadlineExceeded)
	case errors.As(err, &exitErr):
		reason = "exit"
		res.ExitCode = exitErr.ExitCode()
		err = fmt.Errorf("%s exited with code %d: %s", tool, res.ExitCode, truncate(res.StderrTail, logStderrBytes))
	default:
		reason = "exit"
		err = fmt.Errorf("%s failed: %w", tool, err)
	}
	metrics.SubprocessFailures.WithLabelValues(tool, reason).Inc()
	logging.Debug("%s failed after %v (%s): %s", tool, res.Duration.Round(time.Millisecond), reason,
		truncate(res.StderrTail, logStderrBytes))

	return res, err
}

// truncate keeps the last max bytes of s.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}

// limitedWriter is an io.Writer that keeps only the last limit bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		b := lw.w.Bytes()
		tail := append([]byte(nil), b[len(b)-lw.limit:]...)
		lw.w.Reset()
		lw.w.Write(tail)
	}
	return n, nil
}
