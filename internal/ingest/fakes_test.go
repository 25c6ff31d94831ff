package ingest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"video-library/internal/database"
	"video-library/internal/filesystem"
)

type fakeStore struct {
	mu     sync.Mutex
	assets map[string]*database.Asset
	nextID int64

	existsErr  error
	persistErr error
	// hideExisting makes ExistsByHash always answer false, as if another
	// ingestion persisted between our check and our persist.
	hideExisting  bool
	beforePersist func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{assets: map[string]*database.Asset{}}
}

func (s *fakeStore) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	if s.hideExisting {
		return false, nil
	}
	_, ok := s.assets[hash]
	return ok, nil
}

func (s *fakeStore) GetByHash(ctx context.Context, hash string) (*database.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[hash]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) Persist(ctx context.Context, a *database.Asset) (int64, error) {
	if s.beforePersist != nil {
		s.beforePersist()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persistErr != nil {
		return 0, s.persistErr
	}
	if _, ok := s.assets[a.Hash]; ok {
		return 0, fmt.Errorf("%w: %s", database.ErrDuplicateKey, a.Hash)
	}
	s.nextID++
	copied := *a
	copied.ID = s.nextID
	s.assets[a.Hash] = &copied
	return s.nextID, nil
}

func (s *fakeStore) ListFileNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.assets))
	for _, a := range s.assets {
		names = append(names, a.FileName)
	}
	return names, nil
}

func (s *fakeStore) get(hash string) *database.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets[hash]
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

type fakeProber struct {
	duration float64
	err      error
	hook     func()
}

func (p *fakeProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if p.hook != nil {
		p.hook()
	}
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}
	return p.duration, p.err
}

// fakeExtractor writes a small PNG per timestamp, or fails every call.
type fakeExtractor struct {
	failAll bool
}

func (e *fakeExtractor) ExtractFrame(ctx context.Context, videoPath string, ts float64, outPath string, width int) error {
	if e.failAll {
		return errors.New("ffmpeg exited with code 1")
	}
	img := image.NewRGBA(image.Rect(0, 0, width, width/2))
	shade := uint8(int(ts*10) % 255)
	for y := 0; y < width/2; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: 80, B: 200, A: 255})
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

type testEnv struct {
	layout  filesystem.Layout
	workDir string
	store   *fakeStore
	prober  *fakeProber
	extract *fakeExtractor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		layout: filesystem.Layout{
			VideoDir:   filepath.Join(root, "videos"),
			PreviewDir: filepath.Join(root, "thumbnails"),
			StagingDir: filepath.Join(root, "videos", ".staging"),
		},
		workDir: filepath.Join(root, "work"),
		store:   newFakeStore(),
		prober:  &fakeProber{duration: 9},
		extract: &fakeExtractor{},
	}
	if err := env.layout.Ensure(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(env.workDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return env
}

func (env *testEnv) pipeline() *Pipeline {
	return New(Config{
		Layout:             env.layout,
		WorkDir:            env.workDir,
		SampleCount:        4,
		PreviewWidth:       16,
		FrameDelay:         500 * time.Millisecond,
		FrameWorkers:       2,
		MinPreviewDuration: time.Second,
	}, env.store, env.prober, env.extract)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s) error = %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// videoFiles lists the video root without the staging directory.
func (env *testEnv) videoFiles(t *testing.T) []string {
	var names []string
	for _, n := range listDir(t, env.layout.VideoDir) {
		if n != filepath.Base(env.layout.StagingDir) {
			names = append(names, n)
		}
	}
	return names
}

// assertNoScratch checks that no staged file or work area survived.
func (env *testEnv) assertNoScratch(t *testing.T) {
	t.Helper()
	if left := listDir(t, env.layout.StagingDir); len(left) != 0 {
		t.Errorf("staging area not empty: %v", left)
	}
	if left := listDir(t, env.workDir); len(left) != 0 {
		t.Errorf("work dir not empty: %v", left)
	}
}
