package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"video-library/internal/filesystem"
	"video-library/internal/hashing"
	"video-library/internal/logging"
	"video-library/internal/media"
	"video-library/internal/mediatypes"
	"video-library/internal/metrics"
)

// FileLister lists the stored video file names of every recorded asset.
type FileLister interface {
	ListFileNames(ctx context.Context) ([]string, error)
}

// ReconcileReport counts what Reconcile removed.
type ReconcileReport struct {
	StagedFiles    int
	WorkAreas      int
	PreviewTemps   int
	OrphanVideos   int
	OrphanPreviews int
}

// Reconcile cleans up after interrupted ingestions. Run it before the
// pipeline accepts work and then periodically with a Reconciler. Only entries
// older than grace are touched, so files of an ingestion that is still in
// flight survive.
//
// It removes stale staged uploads, frame work areas and preview temp files,
// then committed videos and previews that no asset record references.
func (p *Pipeline) Reconcile(ctx context.Context, lister FileLister, grace time.Duration) (ReconcileReport, error) {
	var report ReconcileReport
	var err error
	layout := p.cfg.Layout

	if report.StagedFiles, err = filesystem.SweepStale(layout.StagingDir, []string{filesystem.StagingPrefix + "*"}, grace); err != nil {
		return report, fmt.Errorf("failed to sweep staging area: %w", err)
	}

	workParent := p.cfg.WorkDir
	if workParent == "" {
		workParent = os.TempDir()
	}
	if report.WorkAreas, err = filesystem.SweepStale(workParent, []string{media.WorkAreaPattern}, grace); err != nil {
		return report, fmt.Errorf("failed to sweep work areas: %w", err)
	}

	if report.PreviewTemps, err = filesystem.SweepStale(layout.PreviewDir, []string{".*.tmp-*"}, grace); err != nil {
		return report, fmt.Errorf("failed to sweep preview temp files: %w", err)
	}

	names, err := lister.ListFileNames(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list recorded files: %w", err)
	}
	recordedFiles := make(map[string]bool, len(names))
	recordedHashes := make(map[string]bool, len(names))
	for _, name := range names {
		recordedFiles[name] = true
		recordedHashes[hashOf(name)] = true
	}

	cutoff := time.Now().Add(-grace)

	report.OrphanVideos = removeOrphans(layout.VideoDir, cutoff, func(name string) bool {
		return !recordedFiles[name] && hashing.IsDigest(hashOf(name))
	})
	report.OrphanPreviews = removeOrphans(layout.PreviewDir, cutoff, func(name string) bool {
		return mediatypes.Extension(name) == mediatypes.PreviewExtension &&
			hashing.IsDigest(hashOf(name)) && !recordedHashes[hashOf(name)]
	})

	metrics.OrphansReclaimedTotal.Add(float64(report.OrphanVideos + report.OrphanPreviews))
	logging.Info("Reconciled storage: %d staged, %d work areas, %d preview temps, %d orphan videos, %d orphan previews removed",
		report.StagedFiles, report.WorkAreas, report.PreviewTemps, report.OrphanVideos, report.OrphanPreviews)
	return report, nil
}

// removeOrphans deletes regular files in dir older than cutoff for which
// orphan returns true.
func removeOrphans(dir string, cutoff time.Time, orphan func(name string) bool) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Warn("Failed to read %s during reconciliation: %v", dir, err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || !orphan(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := filesystem.RemoveIfExists(filepath.Join(dir, name)); err != nil {
			logging.Warn("Failed to remove orphan %s: %v", name, err)
			continue
		}
		logging.Warn("Removed orphan %s with no asset record", name)
		removed++
	}
	return removed
}

// hashOf returns the stem of a stored file name.
func hashOf(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
