package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range []string{"created", "duplicate_rejected", "failed"} {
		IngestionsTotal.WithLabelValues(outcome)
		IngestionDuration.WithLabelValues(outcome)
	}

	for _, reason := range []string{"metadata_conflict", "duplicate_key", "canceled", "io"} {
		RollbacksTotal.WithLabelValues(reason)
	}

	for _, kind := range []string{"file_without_record", "record_without_file"} {
		InconsistenciesTotal.WithLabelValues(kind)
	}

	for _, status := range []string{"created", "no_duration", "too_short", "no_frames", "compose_error", "skipped"} {
		PreviewsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"success", "error", "timeout", "decode_error"} {
		FrameExtractionsTotal.WithLabelValues(status)
	}

	for _, tool := range []string{"ffprobe", "ffmpeg"} {
		SubprocessDuration.WithLabelValues(tool)
		for _, reason := range []string{"missing", "timeout", "exit", "canceled"} {
			SubprocessFailures.WithLabelValues(tool, reason)
		}
	}

	for _, op := range []string{"initialize_schema", "exists_by_hash", "persist", "get_by_id",
		"get_by_hash", "list_file_names", "stats"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	volumes := []string{"videos", "previews", "staging", "unknown"}
	for _, op := range []string{"stat", "open"} {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}

	for _, status := range []string{"committed", "exists", "error"} {
		FilesystemCommitsTotal.WithLabelValues(status)
	}
}
