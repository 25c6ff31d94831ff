package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"video-library/internal/database"
	"video-library/internal/handlers"
	"video-library/internal/ingest"
	"video-library/internal/startup"
)

type stubIngester struct{}

func (stubIngester) Ingest(context.Context, ingest.Request) (ingest.Result, error) {
	return ingest.Result{}, nil
}

type stubTools map[string]bool

func (s stubTools) Available() map[string]bool { return s }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	root := t.TempDir()
	db, err := database.New(context.Background(), filepath.Join(root, database.FileName))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})

	config := &startup.Config{
		VideoDir:       filepath.Join(root, "videos"),
		PreviewDir:     filepath.Join(root, "thumbnails"),
		StagingDir:     filepath.Join(root, "videos", ".staging"),
		MaxUploadBytes: 1 << 20,
	}
	if err := config.Layout().Ensure(); err != nil {
		t.Fatal(err)
	}

	h := handlers.New(db, stubIngester{}, stubTools{"ffmpeg": true, "ffprobe": true}, config)
	return setupRouter(h)
}

func TestSetupRouter(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/livez", http.StatusOK},
		{"HEAD", "/livez", http.StatusOK},
		{"GET", "/health", http.StatusOK},
		{"GET", "/version", http.StatusOK},
		{"GET", "/api/videos/1", http.StatusNotFound},
		{"GET", "/api/videos/abc", http.StatusNotFound},
		{"GET", "/videos/missing.mp4", http.StatusNotFound},
		{"GET", "/no/such/route", http.StatusNotFound},
		{"POST", "/health", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
		})
	}
}
