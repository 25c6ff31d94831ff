// Package main provides the entry point for the Video Library server.
//
// Video Library accepts video uploads over HTTP, stores each distinct piece
// of content exactly once under a name derived from its SHA-256 digest, and
// builds an animated GIF preview from frames sampled across the video.
//
// # Application Lifecycle
//
//  1. Configuration Loading: Reads environment variables and prepares directories
//  2. Database Initialization: Opens the SQLite asset store
//  3. Component Initialization:
//     - libvips for frame decoding (falls back to pure Go when unavailable)
//     - FFmpeg/FFprobe tool wrapper
//     - Ingestion pipeline
//     - Storage reconciliation of interrupted ingestions
//     - Metrics Collector
//  4. HTTP Server Setup: Configures routes, middleware, and starts server
//  5. Graceful Shutdown: Handles SIGINT/SIGTERM, cancels in-flight
//     ingestions so they roll back, then drains requests
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 5001):
//     - POST /api/upload
//     - GET /api/videos/{id}
//     - Stored videos under /videos/ and previews under /thumbnails/
//     - Health, liveness and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// # Environment Variables
//
//   - UPLOAD_DIR: Directory for stored videos (default: uploads/videos)
//   - THUMBNAIL_DIR: Directory for previews (default: uploads/thumbnails)
//   - STAGING_DIR: Staging area, same filesystem as UPLOAD_DIR
//   - WORK_DIR: Scratch space for sampled frames
//   - DATABASE_DIR: Directory for the SQLite database
//   - PORT, METRICS_PORT, METRICS_ENABLED
//   - SAMPLE_FRAME_COUNT, FRAME_DISPLAY_MS, PREVIEW_WIDTH, FRAME_WORKERS
//   - MIN_PREVIEW_DURATION, MAX_UPLOAD_BYTES
//   - FFMPEG_PATH, FFPROBE_PATH, PROBE_TIMEOUT, EXTRACT_TIMEOUT
//   - ORPHAN_GRACE: Age after which unreferenced files are reclaimed at startup
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//
// # Build Requirements
//
// CGO is required for SQLite and libvips. FFmpeg and FFprobe must be on PATH
// or configured explicitly; without them uploads are still stored but get
// no duration or preview.
//
// # Related Packages
//
//   - [video-library/internal/ingest]: Ingestion pipeline and reconciliation
//   - [video-library/internal/media]: Probing, frame sampling, preview composition
//   - [video-library/internal/filesystem]: Staging and no-replace commits
//   - [video-library/internal/database]: SQLite asset store
//   - [video-library/internal/handlers]: HTTP request handlers
//   - [video-library/internal/startup]: Configuration and initialization
package main
