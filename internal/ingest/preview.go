package ingest

import (
	"context"
	"errors"

	"video-library/internal/filesystem"
	"video-library/internal/media"
	"video-library/internal/metrics"
)

// Preview statuses, as counted in video_library_previews_total.
const (
	previewCreated      = "created"
	previewNoDuration   = "no_duration"
	previewTooShort     = "too_short"
	previewNoFrames     = "no_frames"
	previewComposeError = "compose_error"
	previewSkipped      = "skipped"
)

// attemptPreview probes, samples and composes the preview for a committed
// video. Every failure here is soft: it is logged and counted, and the
// ingestion continues without a preview. The frame work area is removed on
// every path. The returned duration is set whenever the probe succeeded.
func (p *Pipeline) attemptPreview(ctx context.Context, a *attempt, videoPath, hash string) (*string, *float64) {
	d, err := p.prober.ProbeDuration(ctx, videoPath)
	if err != nil {
		metrics.PreviewsTotal.WithLabelValues(previewNoDuration).Inc()
		a.log.Warn("No preview: %v", err)
		return nil, nil
	}
	duration := &d

	if d < p.cfg.MinPreviewDuration.Seconds() {
		metrics.PreviewsTotal.WithLabelValues(previewTooShort).Inc()
		a.log.Info("No preview: clip is %.2fs, shorter than %v", d, p.cfg.MinPreviewDuration)
		return nil, duration
	}

	if p.cfg.Memory != nil {
		if err := p.cfg.Memory.Wait(ctx); err != nil {
			metrics.PreviewsTotal.WithLabelValues(previewSkipped).Inc()
			a.log.Warn("No preview: gave up waiting for memory: %v", err)
			return nil, duration
		}
	}

	area, err := media.NewWorkArea(p.cfg.WorkDir)
	if err != nil {
		metrics.PreviewsTotal.WithLabelValues(previewSkipped).Inc()
		a.log.Warn("No preview: %v", err)
		return nil, duration
	}
	defer area.Close()

	frames, report := p.sampler.Sample(ctx, videoPath, d, area)
	for _, f := range report.Failures {
		a.log.Debug("Frame %d at %.3fs skipped: %v", f.Ordinal, f.Timestamp, f.Err)
	}
	if len(frames) == 0 {
		metrics.PreviewsTotal.WithLabelValues(previewNoFrames).Inc()
		a.log.Warn("No preview: all %d frame extractions failed", report.Requested)
		return nil, duration
	}
	if len(report.Failures) > 0 {
		a.log.Info("Extracted %d of %d frames", report.Extracted, report.Requested)
	}

	name := filesystem.PreviewFileName(hash)
	path := p.cfg.Layout.PreviewPath(name)
	if err := p.composer.Compose(frames, path); err != nil {
		if errors.Is(err, filesystem.ErrTargetExists) {
			// another ingestion of the same content owns it
			metrics.PreviewsTotal.WithLabelValues(previewSkipped).Inc()
			a.log.Info("No preview: %s already exists", name)
			return nil, duration
		}
		metrics.PreviewsTotal.WithLabelValues(previewComposeError).Inc()
		a.log.Warn("No preview: %v", err)
		return nil, duration
	}
	a.previewPath = path

	metrics.PreviewsTotal.WithLabelValues(previewCreated).Inc()
	metrics.PreviewFramesUsed.Observe(float64(len(frames)))
	a.log.Debug("Preview %s composed from %d frames in %v", name, len(frames), report.Duration)
	return &name, duration
}
