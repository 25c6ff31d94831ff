package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"video-library/internal/database"
	"video-library/internal/filesystem"
	"video-library/internal/ingest"
	"video-library/internal/startup"
)

type stubProber struct{ duration float64 }

func (p stubProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if p.duration <= 0 {
		return 0, errors.New("video duration unavailable")
	}
	return p.duration, nil
}

type stubExtractor struct{}

func (stubExtractor) ExtractFrame(ctx context.Context, videoPath string, ts float64, outPath string, width int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, width/2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: uint8(ts), A: 0xff})
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func newIntegrationServer(t *testing.T) (*mux.Router, *database.Database, filesystem.Layout) {
	t.Helper()
	root := t.TempDir()
	config := &startup.Config{
		VideoDir:       filepath.Join(root, "videos"),
		PreviewDir:     filepath.Join(root, "thumbnails"),
		StagingDir:     filepath.Join(root, "videos", ".staging"),
		WorkDir:        filepath.Join(root, "work"),
		MaxUploadBytes: 8 << 20,
	}
	layout := filesystem.Layout{VideoDir: config.VideoDir, PreviewDir: config.PreviewDir, StagingDir: config.StagingDir}
	if err := layout.Ensure(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		t.Fatal(err)
	}

	db, err := database.New(context.Background(), filepath.Join(root, database.FileName))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	pipeline := ingest.New(ingest.Config{
		Layout:             layout,
		WorkDir:            config.WorkDir,
		SampleCount:        3,
		PreviewWidth:       32,
		FrameDelay:         500 * time.Millisecond,
		FrameWorkers:       2,
		MinPreviewDuration: time.Second,
	}, db, stubProber{duration: 6}, stubExtractor{})

	router := mux.NewRouter()
	New(db, pipeline, fakeTools{"ffmpeg": true, "ffprobe": true}, config).RegisterRoutes(router)
	return router, db, layout
}

func TestUploadEndToEnd(t *testing.T) {
	router, db, layout := newIntegrationServer(t)
	content := bytes.Repeat([]byte("frame data "), 1000)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, validFields(), "clip.MKV", content))
	if w.Code != http.StatusCreated {
		t.Fatalf("first upload = %d: %s", w.Code, w.Body.String())
	}
	var created UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.FileName != created.Hash+".mkv" || created.ThumbnailFileName == nil {
		t.Fatalf("created = %+v", created)
	}

	asset, err := db.GetByHash(context.Background(), created.Hash)
	if err != nil {
		t.Fatalf("GetByHash() error = %v", err)
	}
	if asset.ID != created.ID || asset.Title != "Clip" {
		t.Errorf("stored asset = %+v", asset)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thumbnails/"+*created.ThumbnailFileName, http.NoBody))
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("GIF8")) {
		t.Errorf("preview fetch = %d, %d bytes", w.Code, w.Body.Len())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, validFields(), "other-name.mp4", content))
	if w.Code != http.StatusConflict {
		t.Errorf("second upload = %d, want 409", w.Code)
	}

	entries, err := os.ReadDir(layout.VideoDir)
	if err != nil {
		t.Fatal(err)
	}
	files := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			files++
		}
	}
	if files != 1 {
		t.Errorf("video files = %d, want 1", files)
	}
}

func TestConcurrentUploadsEndToEnd(t *testing.T) {
	router, db, _ := newIntegrationServer(t)
	content := bytes.Repeat([]byte("same bytes "), 2000)

	const n = 6
	reqs := make([]*http.Request, n)
	for i := range reqs {
		reqs[i] = uploadRequest(t, validFields(), "clip.mp4", content)
	}
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, reqs[i])
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	if created != 1 || conflicts != n-1 {
		t.Errorf("codes = %v, want one 201 and %d 409", codes, n-1)
	}

	count, err := db.Count(context.Background())
	if err != nil || count != 1 {
		t.Errorf("Count() = %d, %v, want 1", count, err)
	}
}
