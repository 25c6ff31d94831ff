package media

import (
	"context"
	"errors"
	"image"
	"sort"
	"sync"
	"time"

	"video-library/internal/logging"
	"video-library/internal/metrics"
)

// DefaultSampleCount is the number of frames sampled per video.
const DefaultSampleCount = 10

// SampleTimestamps returns n timestamps evenly spaced strictly inside
// (0, duration): t_i = duration*i/(n+1) for i = 1..n. The first and last
// instants of the clip are never sampled.
func SampleTimestamps(duration float64, n int) []float64 {
	if n <= 0 || !(duration > 0) {
		return nil
	}
	ts := make([]float64, n)
	for i := 1; i <= n; i++ {
		ts[i-1] = duration * float64(i) / float64(n+1)
	}
	return ts
}

// SampleFrame is one successfully extracted and decoded frame.
type SampleFrame struct {
	Ordinal   int
	Timestamp float64
	Path      string
	Image     image.Image
}

// FrameFailure records why a single timestamp produced no frame.
type FrameFailure struct {
	Ordinal   int
	Timestamp float64
	Err       error
}

// SampleReport summarises a sampling run.
type SampleReport struct {
	Requested int
	Extracted int
	Failures  []FrameFailure
	Duration  time.Duration
}

// SamplerConfig configures a Sampler.
type SamplerConfig struct {
	// Count is the number of timestamps to sample.
	Count int
	// Width is the preview width frames are scaled to.
	Width int
	// Workers bounds concurrent extractions; 1 runs them sequentially.
	Workers int
}

// DefaultSamplerConfig returns 10 frames at 320px with two workers.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		Count:   DefaultSampleCount,
		Width:   DefaultPreviewWidth,
		Workers: 2,
	}
}

// Sampler extracts still frames at evenly spaced timestamps.
type Sampler struct {
	extractor FrameExtractor
	config    SamplerConfig
	decode    func(path string, width int) (image.Image, error)
}

// NewSampler creates a sampler backed by extractor.
func NewSampler(extractor FrameExtractor, config SamplerConfig) *Sampler {
	def := DefaultSamplerConfig()
	if config.Count <= 0 {
		config.Count = def.Count
	}
	if config.Width <= 0 {
		config.Width = def.Width
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &Sampler{
		extractor: extractor,
		config:    config,
		decode:    DecodeFrame,
	}
}

type frameJob struct {
	ordinal   int
	timestamp float64
	path      string
}

type frameResult struct {
	frame   SampleFrame
	failure *FrameFailure
}

// Sample extracts one frame per timestamp into area. A failure at one
// timestamp never affects the others. The returned frames are the successful
// ones in timestamp order; the slice is empty when every extraction failed.
func (s *Sampler) Sample(ctx context.Context, videoPath string, duration float64, area *WorkArea) ([]SampleFrame, SampleReport) {
	start := time.Now()
	timestamps := SampleTimestamps(duration, s.config.Count)
	report := SampleReport{Requested: len(timestamps)}
	if len(timestamps) == 0 {
		return nil, report
	}

	workers := s.config.Workers
	if workers > len(timestamps) {
		workers = len(timestamps)
	}

	jobs := make(chan frameJob, len(timestamps))
	results := make(chan frameResult, len(timestamps))

	for i, ts := range timestamps {
		jobs <- frameJob{ordinal: i, timestamp: ts, path: area.FramePath(i)}
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- s.extract(ctx, videoPath, job)
			}
		}()
	}
	wg.Wait()
	close(results)

	frames := make([]SampleFrame, 0, len(timestamps))
	for r := range results {
		if r.failure != nil {
			report.Failures = append(report.Failures, *r.failure)
			continue
		}
		frames = append(frames, r.frame)
	}

	// completion order is arbitrary; composition needs chronological order
	sort.Slice(frames, func(i, j int) bool { return frames[i].Ordinal < frames[j].Ordinal })
	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].Ordinal < report.Failures[j].Ordinal })

	report.Extracted = len(frames)
	report.Duration = time.Since(start)
	return frames, report
}

func (s *Sampler) extract(ctx context.Context, videoPath string, job frameJob) frameResult {
	fail := func(status string, err error) frameResult {
		metrics.FrameExtractionsTotal.WithLabelValues(status).Inc()
		return frameResult{failure: &FrameFailure{Ordinal: job.ordinal, Timestamp: job.timestamp, Err: err}}
	}

	if err := ctx.Err(); err != nil {
		return frameResult{failure: &FrameFailure{Ordinal: job.ordinal, Timestamp: job.timestamp, Err: err}}
	}

	if err := s.extractor.ExtractFrame(ctx, videoPath, job.timestamp, job.path, s.config.Width); err != nil {
		logging.Debug("Frame %d at %.3fs failed: %v", job.ordinal, job.timestamp, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return fail("timeout", err)
		}
		return fail("error", err)
	}

	img, err := s.decode(job.path, s.config.Width)
	if err != nil {
		logging.Debug("Frame %d at %.3fs could not be decoded: %v", job.ordinal, job.timestamp, err)
		return fail("decode_error", err)
	}

	metrics.FrameExtractionsTotal.WithLabelValues("success").Inc()
	return frameResult{frame: SampleFrame{
		Ordinal:   job.ordinal,
		Timestamp: job.timestamp,
		Path:      job.path,
		Image:     img,
	}}
}
