package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"video-library/internal/startup"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status   string          `json:"status"`
	Version  string          `json:"version"`
	Uptime   string          `json:"uptime"`
	Database bool            `json:"database"`
	Tools    map[string]bool `json:"tools"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`

	// Stats summary
	TotalAssets       int `json:"totalAssets"`
	AssetsWithPreview int `json:"assetsWithPreview"`
}

// HealthCheck reports liveness, store reachability and preview tool
// availability. Missing tools only degrade the service: uploads are still
// accepted, without previews.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:       statusHealthy,
		Version:      startup.Version,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		Database:     h.store.Ping(ctx) == nil,
		Tools:        h.tools.Available(),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if response.Database {
		if stats, err := h.store.Stats(ctx); err == nil {
			response.TotalAssets = stats.TotalAssets
			response.AssetsWithPreview = stats.AssetsWithPreview
		}
	}

	for _, ok := range response.Tools {
		if !ok {
			response.Status = statusDegraded
		}
	}

	code := http.StatusOK
	if !response.Database {
		response.Status = statusUnhealthy
		code = http.StatusServiceUnavailable
	}

	writeJSONStatus(w, code, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}
