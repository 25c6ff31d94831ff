package handlers

import (
	"context"
	"time"

	"video-library/internal/database"
	"video-library/internal/filesystem"
	"video-library/internal/ingest"
	"video-library/internal/metrics"
	"video-library/internal/startup"
)

// Ingester runs one upload through the ingestion pipeline.
type Ingester interface {
	Ingest(ctx context.Context, req ingest.Request) (ingest.Result, error)
}

// AssetStore is the read side of the asset database used by the handlers.
type AssetStore interface {
	GetByID(ctx context.Context, id int64) (*database.Asset, error)
	Stats(ctx context.Context) (metrics.Stats, error)
	Ping(ctx context.Context) error
}

// ToolChecker reports which external media tools can be run.
type ToolChecker interface {
	Available() map[string]bool
}

type Handlers struct {
	store          AssetStore
	pipeline       Ingester
	tools          ToolChecker
	layout         filesystem.Layout
	maxUploadBytes int64
	started        time.Time
}

func New(store AssetStore, pipeline Ingester, tools ToolChecker, config *startup.Config) *Handlers {
	return &Handlers{
		store:          store,
		pipeline:       pipeline,
		tools:          tools,
		layout:         config.Layout(),
		maxUploadBytes: config.MaxUploadBytes,
		started:        time.Now(),
	}
}
