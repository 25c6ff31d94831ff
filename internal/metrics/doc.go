// Package metrics provides Prometheus instrumentation for the video library.
//
// All metrics are prefixed with "video_library_" and registered on the
// default registry through promauto.
//
// # Metric Categories
//
// ## Ingestion
//
//   - IngestionsTotal / IngestionDuration: terminal outcome of each upload
//   - RollbacksTotal: files removed because the attempt could not finish
//   - InconsistenciesTotal: stored files and asset records that disagree
//
// ## Preview
//
//   - PreviewsTotal: preview attempts by result, including every soft failure
//   - FrameExtractionsTotal: per-frame extraction results
//   - SubprocessDuration / SubprocessFailures: ffprobe and ffmpeg invocations
//
// ## Storage
//
//   - DBQueryTotal / DBQueryDuration: asset store queries
//   - Filesystem*: stale-handle retries and staged commit results
//
// The Collector refreshes library gauges (AssetsTotal, AssetsWithPreviewTotal)
// from a StatsProvider on a fixed interval.
package metrics
