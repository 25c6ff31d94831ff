package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_library_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Ingestion metrics
var (
	IngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_ingestions_total",
			Help: "Total number of ingestions by terminal outcome",
		},
		[]string{"outcome"}, // "created", "duplicate_rejected", "failed"
	)

	IngestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_library_ingestion_duration_seconds",
			Help:    "Ingestion duration in seconds by terminal outcome",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"outcome"},
	)

	IngestionsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_ingestions_in_progress",
			Help: "Number of ingestions currently running",
		},
	)

	IngestedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_library_ingested_bytes_total",
			Help: "Total bytes staged by ingestions",
		},
	)

	RollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_rollbacks_total",
			Help: "Total number of ingestion rollbacks by reason",
		},
		[]string{"reason"}, // "metadata_conflict", "duplicate_key", "canceled", "io"
	)

	InconsistenciesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_inconsistencies_total",
			Help: "Disagreements between stored files and asset records",
		},
		[]string{"kind"}, // "file_without_record", "record_without_file"
	)

	OrphansReclaimedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_library_orphans_reclaimed_total",
			Help: "Committed video files removed at startup because no asset record referenced them",
		},
	)
)

// Preview metrics
var (
	PreviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_previews_total",
			Help: "Total number of preview attempts by result",
		},
		[]string{"status"}, // "created", "no_duration", "too_short", "no_frames", "compose_error", "skipped"
	)

	PreviewFramesUsed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_library_preview_frames",
			Help:    "Number of frames composed into each preview",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20},
		},
	)

	FrameExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_frame_extractions_total",
			Help: "Total number of single-frame extractions by status",
		},
		[]string{"status"}, // "success", "error", "timeout", "decode_error"
	)

	PreviewComposeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_library_preview_compose_duration_seconds",
			Help:    "Time spent encoding preview animations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)

// Subprocess metrics
var (
	SubprocessDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_library_subprocess_duration_seconds",
			Help:    "External tool invocation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tool"}, // "ffprobe", "ffmpeg"
	)

	SubprocessFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_subprocess_failures_total",
			Help: "External tool invocations that did not exit cleanly",
		},
		[]string{"tool", "reason"}, // reason: "missing", "timeout", "exit", "canceled"
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_library_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Filesystem metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_filesystem_retry_attempts_total",
			Help: "Filesystem operations retried after a stale file handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_filesystem_retry_failures_total",
			Help: "Filesystem operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_filesystem_stale_errors_total",
			Help: "Stale file handle (ESTALE) errors observed",
		},
		[]string{"operation", "volume"},
	)

	StreamWriteTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_library_stream_write_timeouts_total",
			Help: "Stored-file downloads aborted because the client stopped reading",
		},
	)

	FilesystemCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_filesystem_commits_total",
			Help: "Staged file commits by result",
		},
		[]string{"status"}, // "committed", "exists", "error"
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_memory_paused",
			Help: "1 while preview generation is held back by memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_library_memory_gc_pauses_total",
			Help: "Times preview generation was paused for memory pressure",
		},
	)

	PreviewWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_library_preview_memory_wait_seconds",
			Help:    "Time ingestions waited for memory before sampling frames",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 5, 15, 30, 60},
		},
	)
)

// Library metrics
var (
	AssetsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_assets_total",
			Help: "Number of asset records in the library",
		},
	)

	AssetsWithPreviewTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_assets_with_preview_total",
			Help: "Number of asset records that have a preview animation",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_library_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
