// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - UPLOAD_DIR: Permanent video root (default: uploads/videos)
//   - THUMBNAIL_DIR: Permanent preview root (default: uploads/thumbnails)
//   - STAGING_DIR: Private staging area, same filesystem as UPLOAD_DIR (default: UPLOAD_DIR/.staging)
//   - WORK_DIR: Parent of per-ingestion frame work areas (default: OS temp dir)
//   - DATABASE_DIR: Directory for video_library.db (default: .)
//   - PORT: HTTP server port (default: 5001)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - SAMPLE_FRAME_COUNT: Frames sampled per preview (default: 10)
//   - FRAME_DISPLAY_MS: Display time of each preview frame (default: 500)
//   - PREVIEW_WIDTH: Preview width in pixels (default: 320)
//   - FRAME_WORKERS: Frame extraction pool size (default: min(GOMAXPROCS, 4))
//   - MIN_PREVIEW_DURATION: Shorter clips get no preview (default: 1s)
//   - MAX_UPLOAD_BYTES: Upload size cap (default: 500 MiB)
//   - FFMPEG_PATH, FFPROBE_PATH: Tool binaries (default: ffmpeg, ffprobe)
//   - PROBE_TIMEOUT, EXTRACT_TIMEOUT: Subprocess timeouts (default: 30s)
//   - ORPHAN_GRACE: Age before leftover files are reclaimed (default: 1h)
//   - LOG_LEVEL, DEBUG: Logging level
//
// Invalid numeric and duration values log a warning and fall back to the
// default.
//
// # Directory Setup
//
// Every directory is resolved to an absolute path, created if missing and
// tested for write access. The staging directory must be on the same
// filesystem as the video root; LoadConfig fails otherwise.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
