package ingest

import (
	"context"
	"time"

	"video-library/internal/logging"
)

// Reconciler runs Reconcile on a fixed interval while the service is up, so
// orphans left behind after startup are reclaimed without a restart.
type Reconciler struct {
	pipeline *Pipeline
	lister   FileLister
	grace    time.Duration
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewReconciler creates a reconciler. A non-positive interval means hourly.
func NewReconciler(p *Pipeline, lister FileLister, grace, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Reconciler{
		pipeline: p,
		lister:   lister,
		grace:    grace,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the reconcile loop. The first pass runs after one interval.
func (r *Reconciler) Start() {
	go r.loop()
}

// Stop ends the loop and waits for a running pass to finish.
func (r *Reconciler) Stop() {
	close(r.stopChan)
	<-r.doneChan
}

func (r *Reconciler) loop() {
	defer close(r.doneChan)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.run()
		case <-r.stopChan:
			return
		}
	}
}

func (r *Reconciler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	report, err := r.pipeline.Reconcile(ctx, r.lister, r.grace)
	if err != nil {
		logging.Warn("Periodic reconciliation failed: %v", err)
		return
	}
	removed := report.StagedFiles + report.WorkAreas + report.PreviewTemps + report.OrphanVideos + report.OrphanPreviews
	if removed > 0 {
		logging.Info("Periodic reconciliation removed %d entries in %v", removed, time.Since(start).Round(time.Millisecond))
	} else {
		logging.Debug("Periodic reconciliation found nothing to remove")
	}
}
