package media

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLimitedWriterKeepsTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 4}

	n, err := lw.Write([]byte("abcdef"))
	if err != nil || n != 6 {
		t.Fatalf("Write() = %d, %v, want 6, nil", n, err)
	}
	if _, err := lw.Write([]byte("gh")); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "efgh" {
		t.Errorf("buffer = %q, want %q", got, "efgh")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q, want %q", got, "short")
	}
	if got := truncate("0123456789", 3); got != "...789" {
		t.Errorf("truncate() = %q, want %q", got, "...789")
	}
}

func TestNewFFmpegDefaults(t *testing.T) {
	cfg := NewFFmpeg(ToolConfig{}).Config()
	if cfg.FFmpegPath != "ffmpeg" || cfg.FFprobePath != "ffprobe" {
		t.Errorf("paths = %q/%q, want ffmpeg/ffprobe", cfg.FFmpegPath, cfg.FFprobePath)
	}
	if cfg.ProbeTimeout != 30*time.Second || cfg.ExtractTimeout != 30*time.Second {
		t.Errorf("timeouts = %v/%v, want 30s/30s", cfg.ProbeTimeout, cfg.ExtractTimeout)
	}
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	f := NewFFmpeg(testTools(dir))

	t.Run("missing tool", func(t *testing.T) {
		_, err := f.run(context.Background(), "ffmpeg", filepath.Join(dir, "nope"), time.Second)
		if !errors.Is(err, ErrToolMissing) {
			t.Errorf("run() error = %v, want ErrToolMissing", err)
		}
	})

	t.Run("non-zero exit keeps stderr", func(t *testing.T) {
		bin := writeScript(t, dir, "exit3", `echo "bad input" >&2; exit 3`)
		res, err := f.run(context.Background(), "ffmpeg", bin, 5*time.Second)
		if err == nil {
			t.Fatal("run() error = nil, want exit error")
		}
		if res.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", res.ExitCode)
		}
		if !strings.Contains(res.StderrTail, "bad input") {
			t.Errorf("StderrTail = %q, want it to contain %q", res.StderrTail, "bad input")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		bin := writeScript(t, dir, "slow", `exec sleep 10`)
		start := time.Now()
		_, err := f.run(context.Background(), "ffprobe", bin, 100*time.Millisecond)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("run() error = %v, want DeadlineExceeded", err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("run() took %v, want the timeout to stop it", elapsed)
		}
	})

	t.Run("parent canceled", func(t *testing.T) {
		bin := writeScript(t, dir, "slow2", `exec sleep 10`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.run(ctx, "ffmpeg", bin, 5*time.Second)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("run() error = %v, want Canceled", err)
		}
	})

	t.Run("success captures stdout", func(t *testing.T) {
		bin := writeScript(t, dir, "ok", `echo hello`)
		res, err := f.run(context.Background(), "ffprobe", bin, 5*time.Second)
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if got := strings.TrimSpace(string(res.Stdout)); got != "hello" {
			t.Errorf("Stdout = %q, want %q", got, "hello")
		}
	})
}
