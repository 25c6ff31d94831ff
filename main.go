package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-library/internal/database"
	"video-library/internal/filesystem"
	"video-library/internal/handlers"
	"video-library/internal/ingest"
	"video-library/internal/logging"
	"video-library/internal/media"
	"video-library/internal/memory"
	"video-library/internal/metrics"
	"video-library/internal/middleware"
	"video-library/internal/startup"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Must run before frames are decoded
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(config.Volumes()))

	if err := media.InitVips(config.FrameWorkers); err != nil {
		logging.Warn("libvips unavailable, decoding frames in Go: %v", err)
	} else {
		defer media.ShutdownVips()
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	layout := config.Layout()
	if err := layout.Ensure(); err != nil {
		startup.LogFatal("Failed to prepare storage: %v", err)
	}

	startup.LogToolsInit(config.FFmpegPath, config.FFprobePath)
	tools := media.NewFFmpeg(media.ToolConfig{
		FFmpegPath:     config.FFmpegPath,
		FFprobePath:    config.FFprobePath,
		ProbeTimeout:   config.ProbeTimeout,
		ExtractTimeout: config.ExtractTimeout,
	})

	memMonitor := memory.NewMonitor(memory.DefaultConfig())
	memMonitor.Start()

	pipeline := ingest.New(ingest.Config{
		Layout:             layout,
		WorkDir:            config.WorkDir,
		SampleCount:        config.SampleCount,
		PreviewWidth:       config.PreviewWidth,
		FrameDelay:         config.FrameDelay,
		FrameWorkers:       config.FrameWorkers,
		MinPreviewDuration: config.MinPreviewDuration,
		Memory:             memMonitor,
		OrphanGrace:        config.OrphanGrace,
	}, db, tools, tools)

	// Clean up after interrupted ingestions before accepting uploads
	reconcileStart := time.Now()
	report, err := pipeline.Reconcile(context.Background(), db, config.OrphanGrace)
	if err != nil {
		startup.LogFatal("Storage reconciliation failed: %v", err)
	}
	startup.LogReconcile(time.Since(reconcileStart),
		report.StagedFiles+report.WorkAreas+report.PreviewTemps+report.OrphanVideos+report.OrphanPreviews)

	reconciler := ingest.NewReconciler(pipeline, db, config.OrphanGrace, config.ReconcileInterval)
	reconciler.Start()

	collector := metrics.NewCollector(db, time.Minute)
	collector.Start()

	h := handlers.New(db, pipeline, tools, config)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	// Request contexts derive from baseCtx; canceling it on shutdown makes
	// in-flight ingestions roll back.
	baseCtx, cancelIngestions := context.WithCancel(context.Background())

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           middleware.Logger(loggingConfig)(router),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return baseCtx },
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsRouter := mux.NewRouter()
		metricsRouter.Handle("/metrics", h.MetricsHandler()).Methods("GET")
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsRouter,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, reconciler, collector, memMonitor, cancelIngestions)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-shutdownDone
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.RegisterRoutes(router)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})
	return router
}

// shutdownDone is closed once handleShutdown has finished, so deferred
// cleanup in main runs after in-flight requests are drained.
var shutdownDone = make(chan struct{})

func handleShutdown(srv, metricsSrv *http.Server, reconciler *ingest.Reconciler, collector *metrics.Collector, memMonitor *memory.Monitor, cancelIngestions context.CancelFunc) {
	defer close(shutdownDone)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Canceling in-flight ingestions")
	cancelIngestions()
	memMonitor.Stop()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	startup.LogShutdownStep("Stopping reconciler")
	reconciler.Stop()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownComplete()
}
