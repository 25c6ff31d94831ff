package metrics

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetGauge().GetValue()
}

func seriesCount(c prometheus.Collector) int {
	ch := make(chan prometheus.Metric, 256)
	go func() {
		c.Collect(ch)
		close(ch)
	}()
	n := 0
	for range ch {
		n++
	}
	return n
}

type fakeStatsProvider struct {
	stats Stats
	err   error
	calls atomic.Int32
}

func (f *fakeStatsProvider) Stats(context.Context) (Stats, error) {
	f.calls.Add(1)
	return f.stats, f.err
}

func TestCollectorUpdatesGauges(t *testing.T) {
	provider := &fakeStatsProvider{stats: Stats{TotalAssets: 7, AssetsWithPreview: 5}}
	c := NewCollector(provider, time.Hour)

	c.collect()

	if got := gaugeValue(t, AssetsTotal); got != 7 {
		t.Errorf("AssetsTotal = %v, want 7", got)
	}
	if got := gaugeValue(t, AssetsWithPreviewTotal); got != 5 {
		t.Errorf("AssetsWithPreviewTotal = %v, want 5", got)
	}
}

func TestCollectorKeepsGaugesOnError(t *testing.T) {
	AssetsTotal.Set(3)
	provider := &fakeStatsProvider{err: errors.New("db closed")}
	c := NewCollector(provider, time.Hour)

	c.collect()

	if got := gaugeValue(t, AssetsTotal); got != 3 {
		t.Errorf("AssetsTotal = %v, want 3 (unchanged)", got)
	}
}

func TestCollectorStartStop(t *testing.T) {
	provider := &fakeStatsProvider{}
	c := NewCollector(provider, 10*time.Millisecond)
	c.Start()

	deadline := time.Now().Add(2 * time.Second)
	for provider.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()

	if provider.calls.Load() < 2 {
		t.Errorf("collector ran %d times, want at least 2", provider.calls.Load())
	}
}

func TestNewCollectorDefaultsInterval(t *testing.T) {
	c := NewCollector(nil, 0)
	if c.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", c.interval)
	}
	// nil provider is a no-op
	c.collect()
}

func TestInitializeMetricsPopulatesLabels(t *testing.T) {
	InitializeMetrics()

	if n := seriesCount(IngestionsTotal); n < 3 {
		t.Errorf("IngestionsTotal series = %d, want >= 3", n)
	}
	if n := seriesCount(PreviewsTotal); n < 6 {
		t.Errorf("PreviewsTotal series = %d, want >= 6", n)
	}
}
