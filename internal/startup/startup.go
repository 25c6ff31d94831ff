package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"video-library/internal/filesystem"
	"video-library/internal/logging"
	"video-library/internal/workers"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Defaults for the environment configuration.
const (
	DefaultSampleCount        = 10
	DefaultFrameDisplayMs     = 500
	DefaultPreviewWidth       = 320
	DefaultToolTimeout        = 30 * time.Second
	DefaultMinPreviewDuration = time.Second
	DefaultMaxUploadBytes     = 500 << 20
	DefaultOrphanGrace        = time.Hour
	DefaultReconcileInterval  = time.Hour
)

// Config holds all application configuration
type Config struct {
	VideoDir    string
	PreviewDir  string
	StagingDir  string
	WorkDir     string
	DatabaseDir string
	Port        string
	MetricsPort string

	MetricsEnabled  bool
	LogStaticFiles  bool
	LogHealthChecks bool

	SampleCount        int
	FrameDelay         time.Duration
	PreviewWidth       int
	FrameWorkers       int
	MinPreviewDuration time.Duration
	MaxUploadBytes     int64

	FFmpegPath     string
	FFprobePath    string
	ProbeTimeout   time.Duration
	ExtractTimeout time.Duration

	OrphanGrace       time.Duration
	ReconcileInterval time.Duration

	// Derived paths
	DatabasePath string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	config, err := readConfig()
	if err != nil {
		return nil, err
	}
	if err := config.prepareDirectories(); err != nil {
		return nil, err
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:    ENABLED (required)")
	logging.Info("    Previews:    %s", enabledString(config.SampleCount > 0))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// readConfig reads the environment without touching the filesystem.
func readConfig() (*Config, error) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	videoDir := getEnv("UPLOAD_DIR", filepath.Join("uploads", "videos"))
	config := &Config{
		VideoDir:           videoDir,
		PreviewDir:         getEnv("THUMBNAIL_DIR", filepath.Join("uploads", "thumbnails")),
		StagingDir:         getEnv("STAGING_DIR", filepath.Join(videoDir, ".staging")),
		WorkDir:            getEnv("WORK_DIR", os.TempDir()),
		DatabaseDir:        getEnv("DATABASE_DIR", "."),
		Port:               getEnv("PORT", "5001"),
		MetricsPort:        getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		LogStaticFiles:     getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks:    getEnvBool("LOG_HEALTH_CHECKS", true),
		SampleCount:        getEnvInt("SAMPLE_FRAME_COUNT", DefaultSampleCount),
		FrameDelay:         time.Duration(getEnvInt("FRAME_DISPLAY_MS", DefaultFrameDisplayMs)) * time.Millisecond,
		PreviewWidth:       getEnvInt("PREVIEW_WIDTH", DefaultPreviewWidth),
		FrameWorkers:       workers.ForFrames(),
		MinPreviewDuration: getEnvDuration("MIN_PREVIEW_DURATION", DefaultMinPreviewDuration),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:        getEnv("FFPROBE_PATH", "ffprobe"),
		ProbeTimeout:       getEnvDuration("PROBE_TIMEOUT", DefaultToolTimeout),
		ExtractTimeout:     getEnvDuration("EXTRACT_TIMEOUT", DefaultToolTimeout),
		OrphanGrace:        getEnvDuration("ORPHAN_GRACE", DefaultOrphanGrace),
		ReconcileInterval:  getEnvDuration("RECONCILE_INTERVAL", DefaultReconcileInterval),
	}

	logging.Info("  UPLOAD_DIR:            %s", config.VideoDir)
	logging.Info("  THUMBNAIL_DIR:         %s", config.PreviewDir)
	logging.Info("  STAGING_DIR:           %s", config.StagingDir)
	logging.Info("  WORK_DIR:              %s", config.WorkDir)
	logging.Info("  DATABASE_DIR:          %s", config.DatabaseDir)
	logging.Info("  PORT:                  %s", config.Port)
	logging.Info("  METRICS_PORT:          %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:       %v", config.MetricsEnabled)
	logging.Info("  SAMPLE_FRAME_COUNT:    %d", config.SampleCount)
	logging.Info("  FRAME_DISPLAY_MS:      %d", config.FrameDelay.Milliseconds())
	logging.Info("  PREVIEW_WIDTH:         %d", config.PreviewWidth)
	logging.Info("  FRAME_WORKERS:         %d", config.FrameWorkers)
	logging.Info("  MIN_PREVIEW_DURATION:  %v", config.MinPreviewDuration)
	logging.Info("  MAX_UPLOAD_BYTES:      %d", config.MaxUploadBytes)
	logging.Info("  FFMPEG_PATH:           %s", config.FFmpegPath)
	logging.Info("  FFPROBE_PATH:          %s", config.FFprobePath)
	logging.Info("  PROBE_TIMEOUT:         %v", config.ProbeTimeout)
	logging.Info("  EXTRACT_TIMEOUT:       %v", config.ExtractTimeout)
	logging.Info("  ORPHAN_GRACE:          %v", config.OrphanGrace)
	logging.Info("  RECONCILE_INTERVAL:    %v", config.ReconcileInterval)
	logging.Info("  LOG_STATIC_FILES:      %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:     %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())

	if config.SampleCount < 0 {
		return nil, fmt.Errorf("SAMPLE_FRAME_COUNT must not be negative, got %d", config.SampleCount)
	}
	if config.PreviewWidth <= 0 {
		return nil, fmt.Errorf("PREVIEW_WIDTH must be positive, got %d", config.PreviewWidth)
	}
	if config.FrameDelay <= 0 {
		return nil, fmt.Errorf("FRAME_DISPLAY_MS must be positive, got %v", config.FrameDelay)
	}

	return config, nil
}

// prepareDirectories resolves every directory to an absolute path, creates
// the ones the service owns and verifies write access. Staging must share a
// filesystem with the video root for the no-replace commit to be atomic.
func (c *Config) prepareDirectories() error {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	for _, dir := range []struct {
		name string
		path *string
	}{
		{"video", &c.VideoDir},
		{"preview", &c.PreviewDir},
		{"staging", &c.StagingDir},
		{"work", &c.WorkDir},
		{"database", &c.DatabaseDir},
	} {
		abs, err := filepath.Abs(*dir.path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s directory path: %w", dir.name, err)
		}
		*dir.path = abs
		logging.Info("  %-8s directory (absolute): %s", dir.name, abs)

		if err := ensureDirectory(abs, dir.name); err != nil {
			return fmt.Errorf("%s directory error: %w", dir.name, err)
		}
		logging.Debug("  Testing %s directory write access...", dir.name)
		if err := testWriteAccess(abs); err != nil {
			return fmt.Errorf("%s directory is not writable: %w", dir.name, err)
		}
		logging.Info("  [OK] %s directory is writable", dir.name)
	}

	if same, err := sameDevice(c.StagingDir, c.VideoDir); err != nil {
		logging.Warn("  Could not compare staging and video filesystems: %v", err)
	} else if !same {
		return fmt.Errorf("staging directory %s is not on the same filesystem as %s", c.StagingDir, c.VideoDir)
	}

	c.DatabasePath = filepath.Join(c.DatabaseDir, "video_library.db")
	return nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogToolsInit checks the ffmpeg and ffprobe binaries. Missing tools do not
// stop the service: uploads still succeed, only without previews.
func LogToolsInit(ffmpegPath, ffprobePath string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PREVIEW TOOLS")
	logging.Info("------------------------------------------------------------")

	for _, tool := range []struct{ name, path string }{
		{"ffmpeg", ffmpegPath},
		{"ffprobe", ffprobePath},
	} {
		if err := checkTool(tool.path); err != nil {
			logging.Warn("  %s check failed: %v", tool.name, err)
			logging.Warn("  Uploads will be stored without previews")
			continue
		}
		logging.Info("  [OK] %s is available", tool.name)
	}
}

// LogReconcile logs the startup storage reconciliation
func LogReconcile(duration time.Duration, removed int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("STORAGE RECONCILIATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Removed %d leftover entries in %v", removed, duration)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("  Failed to walk routes: %v", err)
		}

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
 _   _ _     _               _     _ _
| | | (_) __| | ___  ___    | |   (_) |__  _ __ __ _ _ __ _   _
| | | | |/ _' |/ _ \/ _ \   | |   | | '_ \| '__/ _' | '__| | | |
 \ V /| | (_| |  __/ (_) |  | |___| | |_) | | | (_| | |  | |_| |
  \_/ |_|\__,_|\___|\___/   |_____|_|_.__/|_|  \__,_|_|   \__, |
                                                          |___/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

// checkTool resolves an ffmpeg-family binary and logs its version line.
func checkTool(bin string) error {
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", bin)
	}
	logging.Debug("  %s path: %s", bin, path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", bin, err)
	}

	if line, _, _ := strings.Cut(string(output), "\n"); line != "" {
		logging.Debug("  %s version: %s", bin, strings.TrimSpace(line))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		logging.Warn("Invalid duration value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// Layout returns the storage layout of the configured directories.
func (c *Config) Layout() filesystem.Layout {
	return filesystem.Layout{
		VideoDir:   c.VideoDir,
		PreviewDir: c.PreviewDir,
		StagingDir: c.StagingDir,
	}
}

// Volumes labels the configured directories for filesystem metrics.
func (c *Config) Volumes() map[string]string {
	return map[string]string{
		c.VideoDir:   "videos",
		c.PreviewDir: "previews",
		c.StagingDir: "staging",
	}
}
