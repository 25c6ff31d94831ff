package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"video-library/internal/database"
	"video-library/internal/filesystem"
	"video-library/internal/hashing"
	"video-library/internal/logging"
	"video-library/internal/media"
	"video-library/internal/mediatypes"
	"video-library/internal/metrics"
)

// Store is the asset store as seen by the pipeline.
type Store interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	GetByHash(ctx context.Context, hash string) (*database.Asset, error)
	// Persist returns database.ErrDuplicateKey when the hash is taken.
	Persist(ctx context.Context, a *database.Asset) (int64, error)
}

// Gate holds back preview work until it may proceed. memory.Monitor is one.
type Gate interface {
	Wait(ctx context.Context) error
}

// Config holds the pipeline settings.
type Config struct {
	Layout filesystem.Layout
	// WorkDir is the parent of per-ingestion frame work areas.
	WorkDir            string
	SampleCount        int
	PreviewWidth       int
	FrameDelay         time.Duration
	FrameWorkers       int
	MinPreviewDuration time.Duration
	// MaxBytes caps staged uploads; zero disables the cap.
	MaxBytes int64
	// Memory, if set, is waited on before frames are sampled.
	Memory Gate
	// OrphanGrace is how old a video without an asset record must be before
	// an ingestion of the same content reclaims it. Zero never reclaims.
	OrphanGrace time.Duration
}

// Pipeline ingests uploads: stage, hash, dedup check, commit, preview,
// persist. It is safe for concurrent use; concurrent ingestions of the same
// content are arbitrated by the atomic commit and the store's unique key.
type Pipeline struct {
	cfg      Config
	store    Store
	prober   media.DurationProber
	sampler  *media.Sampler
	composer *media.Composer
}

// New creates a pipeline.
func New(cfg Config, store Store, prober media.DurationProber, extractor media.FrameExtractor) *Pipeline {
	if cfg.MinPreviewDuration < 0 {
		cfg.MinPreviewDuration = 0
	}
	return &Pipeline{
		cfg:    cfg,
		store:  store,
		prober: prober,
		sampler: media.NewSampler(extractor, media.SamplerConfig{
			Count:   cfg.SampleCount,
			Width:   cfg.PreviewWidth,
			Workers: cfg.FrameWorkers,
		}),
		composer: media.NewComposer(media.ComposerConfig{
			Width:      cfg.PreviewWidth,
			FrameDelay: cfg.FrameDelay,
		}),
	}
}

// attempt carries the files one ingestion owns, so they can be rolled back.
type attempt struct {
	log         logging.Logger
	videoPath   string
	previewPath string
}

// rollback removes every file the attempt committed. Removal is not bound to
// any context so it also runs after cancellation.
func (a *attempt) rollback(reason string) {
	metrics.RollbacksTotal.WithLabelValues(reason).Inc()
	for _, path := range []string{a.previewPath, a.videoPath} {
		if path == "" {
			continue
		}
		if err := filesystem.RemoveIfExists(path); err != nil {
			a.log.Error("Rollback failed to remove %s: %v", path, err)
			continue
		}
		a.log.Debug("Rolled back %s", path)
	}
	a.videoPath = ""
	a.previewPath = ""
}

// Ingest runs one upload to a terminal outcome. The error is non-nil exactly
// when the outcome is Failed, and is then an *Error.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (res Result, err error) {
	start := time.Now()
	id := uuid.NewString()[:8]
	a := &attempt{log: logging.With("ingest " + id)}

	metrics.IngestionsInProgress.Inc()
	defer func() {
		metrics.IngestionsInProgress.Dec()
		label := res.Outcome.String()
		metrics.IngestionsTotal.WithLabelValues(label).Inc()
		metrics.IngestionDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		if err != nil {
			a.log.Warn("Ingestion of %q failed after %v: %v", req.OriginalName, time.Since(start).Round(time.Millisecond), err)
		} else {
			a.log.Info("Ingestion of %q finished: %s (%v)", req.OriginalName, res.Outcome, time.Since(start).Round(time.Millisecond))
		}
	}()

	fail := func(kind Kind, op string, cause error) (Result, error) {
		if ctx.Err() != nil && kind != KindInconsistentState {
			kind = KindCanceled
		}
		if a.videoPath != "" || a.previewPath != "" {
			a.rollback(string(kind))
		}
		return Result{Outcome: Failed, ContentHash: res.ContentHash}, &Error{Kind: kind, Op: op, Err: cause}
	}

	// Staged
	ext := mediatypes.Extension(req.OriginalName)
	staged, err := filesystem.Stage(p.cfg.Layout.StagingDir, ext, req.Body, p.cfg.MaxBytes)
	if err != nil {
		return fail(KindIO, "stage", err)
	}
	defer func() {
		if err := staged.Discard(); err != nil {
			a.log.Warn("Failed to discard staged file %s: %v", staged.Path, err)
		}
	}()
	metrics.IngestedBytesTotal.Add(float64(staged.Size))
	a.log.Debug("Staged %q (%d bytes) at %s", req.OriginalName, staged.Size, staged.Path)

	// Hashed
	hash, err := hashStaged(staged.Path)
	if err != nil {
		return fail(KindIO, "hash", err)
	}
	res.ContentHash = hash
	a.log = logging.With("ingest " + id + " " + hash[:12])

	if err := ctx.Err(); err != nil {
		return fail(KindCanceled, "hash", err)
	}

	// DedupChecked
	if existing, dup, kind, err := p.checkDuplicate(ctx, a, hash); err != nil {
		return fail(kind, "dedup_check", err)
	} else if dup {
		res.Outcome = DuplicateRejected
		res.StoredFileName = existing
		return res, nil
	}

	// Committed
	videoName := filesystem.VideoFileName(hash, ext)
	videoPath := p.cfg.Layout.VideoPath(videoName)
	if err := filesystem.CommitNoReplace(staged.Path, videoPath); err != nil {
		if errors.Is(err, filesystem.ErrTargetExists) {
			a.log.Info("Lost commit race for %s, treating as duplicate", videoName)
			res.Outcome = DuplicateRejected
			res.StoredFileName = videoName
			return res, nil
		}
		return fail(KindIO, "commit", err)
	}
	a.videoPath = videoPath
	res.StoredFileName = videoName

	// PreviewAttempted
	previewName, duration := p.attemptPreview(ctx, a, videoPath, hash)
	res.PreviewFileName = previewName
	res.DurationSeconds = duration

	// Finalized
	if err := ctx.Err(); err != nil {
		return fail(KindCanceled, "persist", err)
	}

	asset := &database.Asset{
		Title:             req.Title,
		Artist:            req.Artist,
		Genre:             req.Genre,
		Description:       req.Description,
		FileName:          videoName,
		Hash:              hash,
		ThumbnailFileName: previewName,
		DurationSeconds:   duration,
	}
	assetID, err := p.store.Persist(ctx, asset)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			a.log.Info("Asset record for %s already exists, rolling back", hash)
			a.rollback("duplicate_key")
			dup := Result{Outcome: DuplicateRejected, ContentHash: hash}
			if existing, err := p.store.GetByHash(context.WithoutCancel(ctx), hash); err != nil {
				a.log.Warn("Failed to look up winning asset for %s: %v", hash, err)
			} else {
				dup.AssetID = existing.ID
				dup.StoredFileName = existing.FileName
			}
			return dup, nil
		}
		return fail(KindMetadataConflict, "persist", err)
	}

	res.Outcome = Created
	res.AssetID = assetID
	return res, nil
}

// checkDuplicate consults both the store and the video directory. A file
// without a record counts as a duplicate: it may belong to an ingestion that
// committed but has not persisted yet. A record without a file is an error.
func (p *Pipeline) checkDuplicate(ctx context.Context, a *attempt, hash string) (string, bool, Kind, error) {
	recorded, err := p.store.ExistsByHash(ctx, hash)
	if err != nil {
		return "", false, KindStore, err
	}

	files, err := p.cfg.Layout.FindVideosByHash(hash)
	if err != nil {
		return "", false, KindIO, err
	}

	switch {
	case recorded && len(files) > 0:
		a.log.Info("Content already in library as %s", files[0])
		return files[0], true, "", nil
	case recorded:
		metrics.InconsistenciesTotal.WithLabelValues("record_without_file").Inc()
		a.log.Error("Asset %s is recorded but no video file exists", hash)
		return "", false, KindInconsistentState, ErrInconsistentState
	case len(files) > 0:
		metrics.InconsistenciesTotal.WithLabelValues("file_without_record").Inc()
		if p.reclaimOrphans(a, hash, files) {
			return "", false, "", nil
		}
		a.log.Warn("Video file %s exists without an asset record, treating as duplicate", files[0])
		return files[0], true, "", nil
	default:
		return "", false, "", nil
	}
}

// reclaimOrphans removes record-less videos of hash, and their preview, once
// every one of them is older than the orphan grace. Younger files may belong
// to an ingestion that has not persisted yet and are left alone.
func (p *Pipeline) reclaimOrphans(a *attempt, hash string, files []string) bool {
	if p.cfg.OrphanGrace <= 0 {
		return false
	}
	cutoff := time.Now().Add(-p.cfg.OrphanGrace)
	paths := make([]string, 0, len(files)+1)
	for _, name := range files {
		path := p.cfg.Layout.VideoPath(name)
		info, err := os.Stat(path)
		if err != nil || info.ModTime().After(cutoff) {
			return false
		}
		paths = append(paths, path)
	}
	paths = append(paths, p.cfg.Layout.PreviewPath(filesystem.PreviewFileName(hash)))

	for _, path := range paths {
		if err := filesystem.RemoveIfExists(path); err != nil {
			a.log.Error("Failed to reclaim orphan %s: %v", path, err)
			return false
		}
	}
	metrics.OrphansReclaimedTotal.Add(float64(len(files)))
	a.log.Warn("Reclaimed orphaned %v without an asset record", files)
	return true
}

func hashStaged(path string) (string, error) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", fmt.Errorf("failed to open staged file: %w", err)
	}
	defer f.Close()
	return hashing.HashReader(f)
}
