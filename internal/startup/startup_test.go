package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Errorf("Expected OS/Arch to be set, got %q/%q", info.OS, info.Arch)
	}
	if info.GoVersion != GoVersion {
		t.Errorf("GoVersion = %s, want %s", info.GoVersion, GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
		{
			name:         "Returns default when env var is empty",
			key:          "TEST_EMPTY_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

// clearConfigEnv blanks every variable readConfig looks at.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"UPLOAD_DIR", "THUMBNAIL_DIR", "STAGING_DIR", "WORK_DIR", "DATABASE_DIR",
		"PORT", "METRICS_PORT", "METRICS_ENABLED", "SAMPLE_FRAME_COUNT", "FRAME_DISPLAY_MS",
		"PREVIEW_WIDTH", "FRAME_WORKERS", "MIN_PREVIEW_DURATION", "MAX_UPLOAD_BYTES",
		"FFMPEG_PATH", "FFPROBE_PATH", "PROBE_TIMEOUT", "EXTRACT_TIMEOUT", "ORPHAN_GRACE",
		"RECONCILE_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestReadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	c, err := readConfig()
	if err != nil {
		t.Fatalf("readConfig() error = %v", err)
	}

	if c.VideoDir != filepath.Join("uploads", "videos") {
		t.Errorf("VideoDir = %q", c.VideoDir)
	}
	if c.StagingDir != filepath.Join("uploads", "videos", ".staging") {
		t.Errorf("StagingDir = %q, want it under the video root", c.StagingDir)
	}
	if c.Port != "5001" || c.MetricsPort != "9090" {
		t.Errorf("ports = %s/%s, want 5001/9090", c.Port, c.MetricsPort)
	}
	if c.SampleCount != 10 || c.PreviewWidth != 320 || c.FrameDelay != 500*time.Millisecond {
		t.Errorf("preview settings = %d/%d/%v, want 10/320/500ms", c.SampleCount, c.PreviewWidth, c.FrameDelay)
	}
	if c.MinPreviewDuration != time.Second {
		t.Errorf("MinPreviewDuration = %v, want 1s", c.MinPreviewDuration)
	}
	if c.ProbeTimeout != 30*time.Second || c.ExtractTimeout != 30*time.Second {
		t.Errorf("timeouts = %v/%v, want 30s", c.ProbeTimeout, c.ExtractTimeout)
	}
	if c.MaxUploadBytes != 500<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", c.MaxUploadBytes, 500<<20)
	}
	if c.FFmpegPath != "ffmpeg" || c.FFprobePath != "ffprobe" {
		t.Errorf("tool paths = %s/%s", c.FFmpegPath, c.FFprobePath)
	}
	if c.OrphanGrace != time.Hour || c.ReconcileInterval != time.Hour {
		t.Errorf("OrphanGrace/ReconcileInterval = %v/%v, want 1h/1h", c.OrphanGrace, c.ReconcileInterval)
	}
	if c.FrameWorkers < 1 || c.FrameWorkers > 4 {
		t.Errorf("FrameWorkers = %d, want 1..4", c.FrameWorkers)
	}
	if !c.MetricsEnabled {
		t.Error("MetricsEnabled = false, want true")
	}
}

func TestReadConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("UPLOAD_DIR", "/srv/videos")
	t.Setenv("STAGING_DIR", "/srv/videos/tmp")
	t.Setenv("SAMPLE_FRAME_COUNT", "6")
	t.Setenv("FRAME_DISPLAY_MS", "250")
	t.Setenv("PREVIEW_WIDTH", "480")
	t.Setenv("FRAME_WORKERS", "1")
	t.Setenv("MIN_PREVIEW_DURATION", "0s")
	t.Setenv("PROBE_TIMEOUT", "5s")
	t.Setenv("METRICS_ENABLED", "false")

	c, err := readConfig()
	if err != nil {
		t.Fatalf("readConfig() error = %v", err)
	}
	if c.VideoDir != "/srv/videos" || c.StagingDir != "/srv/videos/tmp" {
		t.Errorf("dirs = %s, %s", c.VideoDir, c.StagingDir)
	}
	if c.SampleCount != 6 || c.FrameDelay != 250*time.Millisecond || c.PreviewWidth != 480 {
		t.Errorf("preview settings = %d/%v/%d", c.SampleCount, c.FrameDelay, c.PreviewWidth)
	}
	if c.FrameWorkers != 1 {
		t.Errorf("FrameWorkers = %d, want 1", c.FrameWorkers)
	}
	if c.MinPreviewDuration != 0 || c.ProbeTimeout != 5*time.Second {
		t.Errorf("durations = %v/%v", c.MinPreviewDuration, c.ProbeTimeout)
	}
	if c.MetricsEnabled {
		t.Error("MetricsEnabled = true, want false")
	}
}

func TestReadConfigRejectsInvalidPreviewSettings(t *testing.T) {
	for key, value := range map[string]string{
		"SAMPLE_FRAME_COUNT": "-1",
		"PREVIEW_WIDTH":      "0",
		"FRAME_DISPLAY_MS":   "0",
	} {
		t.Run(key, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(key, value)
			if _, err := readConfig(); err == nil {
				t.Errorf("readConfig() with %s=%s succeeded, want error", key, value)
			}
		})
	}
}

func TestPrepareDirectories(t *testing.T) {
	root := t.TempDir()
	c := &Config{
		VideoDir:    filepath.Join(root, "videos"),
		PreviewDir:  filepath.Join(root, "thumbnails"),
		StagingDir:  filepath.Join(root, "videos", ".staging"),
		WorkDir:     filepath.Join(root, "work"),
		DatabaseDir: filepath.Join(root, "db"),
	}

	if err := c.prepareDirectories(); err != nil {
		t.Fatalf("prepareDirectories() error = %v", err)
	}

	for _, dir := range []string{c.VideoDir, c.PreviewDir, c.StagingDir, c.WorkDir, c.DatabaseDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
		if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
			t.Errorf("write test file left in %s", dir)
		}
	}
	if c.DatabasePath != filepath.Join(root, "db", "video_library.db") {
		t.Errorf("DatabasePath = %s", c.DatabasePath)
	}
}

func TestPrepareDirectoriesRejectsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := &Config{
		VideoDir:    file,
		PreviewDir:  filepath.Join(root, "thumbnails"),
		StagingDir:  filepath.Join(root, "staging"),
		WorkDir:     filepath.Join(root, "work"),
		DatabaseDir: root,
	}

	if err := c.prepareDirectories(); err == nil {
		t.Error("prepareDirectories() succeeded with a file as video dir")
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/upload", func(http.ResponseWriter, *http.Request) {}).Methods("POST").Name("upload")
	router.HandleFunc("/health", func(http.ResponseWriter, *http.Request) {}).Methods("GET", "HEAD")

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 3 {
		t.Fatalf("len(routes) = %d, want 3: %+v", len(routes), routes)
	}
	if routes[0] != (RouteInfo{Method: "POST", Path: "/api/upload", Name: "upload"}) {
		t.Errorf("routes[0] = %+v", routes[0])
	}
}

func TestConfigLayoutAndVolumes(t *testing.T) {
	c := &Config{VideoDir: "/v", PreviewDir: "/p", StagingDir: "/v/.staging"}

	layout := c.Layout()
	if layout.VideoDir != "/v" || layout.PreviewDir != "/p" || layout.StagingDir != "/v/.staging" {
		t.Errorf("Layout() = %+v", layout)
	}

	volumes := c.Volumes()
	want := map[string]string{"/v": "videos", "/p": "previews", "/v/.staging": "staging"}
	for dir, label := range want {
		if volumes[dir] != label {
			t.Errorf("Volumes()[%q] = %q, want %q", dir, volumes[dir], label)
		}
	}
}
