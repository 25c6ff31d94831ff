package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"video-library/internal/database"
)

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	when := time.Now().Add(-age)
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatal(err)
	}
}

func mkdirAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(path, "frame_001.png"), age)
	when := time.Now().Add(-age)
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatal(err)
	}
}

func TestReconcile(t *testing.T) {
	env := newTestEnv(t)
	p := env.pipeline()
	old, fresh := 2*time.Hour, time.Duration(0)

	kept := strings.Repeat("a", 64)
	orphan := strings.Repeat("b", 64)
	young := strings.Repeat("c", 64)

	if _, err := env.store.Persist(context.Background(), &database.Asset{Hash: kept, FileName: kept + ".mp4"}); err != nil {
		t.Fatal(err)
	}

	touch(t, filepath.Join(env.layout.StagingDir, "temp_old.mp4"), old)
	touch(t, filepath.Join(env.layout.StagingDir, "temp_new.mp4"), fresh)
	mkdirAged(t, filepath.Join(env.workDir, "video-library-frames-123"), old)
	// another program's scratch dir in a shared temp dir
	mkdirAged(t, filepath.Join(env.workDir, "frames-999"), old)
	touch(t, filepath.Join(env.layout.PreviewDir, "."+orphan+".gif.tmp-42"), old)

	touch(t, env.layout.VideoPath(kept+".mp4"), old)
	touch(t, env.layout.VideoPath(orphan+".mkv"), old)
	touch(t, env.layout.VideoPath(young+".mp4"), fresh)
	touch(t, env.layout.VideoPath("notes.txt"), old)

	touch(t, env.layout.PreviewPath(kept+".gif"), old)
	touch(t, env.layout.PreviewPath(orphan+".gif"), old)

	report, err := p.Reconcile(context.Background(), env.store, time.Hour)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := ReconcileReport{StagedFiles: 1, WorkAreas: 1, PreviewTemps: 1, OrphanVideos: 1, OrphanPreviews: 1}
	if report != want {
		t.Errorf("report = %+v, want %+v", report, want)
	}

	videos := env.videoFiles(t)
	sort.Strings(videos)
	wantVideos := []string{kept + ".mp4", young + ".mp4", "notes.txt"}
	sort.Strings(wantVideos)
	if strings.Join(videos, ",") != strings.Join(wantVideos, ",") {
		t.Errorf("videos = %v, want %v", videos, wantVideos)
	}

	if previews := listDir(t, env.layout.PreviewDir); len(previews) != 1 || previews[0] != kept+".gif" {
		t.Errorf("previews = %v, want only %s.gif", previews, kept)
	}
	if staged := listDir(t, env.layout.StagingDir); len(staged) != 1 || staged[0] != "temp_new.mp4" {
		t.Errorf("staging = %v, want only the fresh upload", staged)
	}
	if work := listDir(t, env.workDir); len(work) != 1 || work[0] != "frames-999" {
		t.Errorf("work dir = %v, want only the foreign frames-999", work)
	}
}

func TestReconcilerRemovesOrphansPeriodically(t *testing.T) {
	env := newTestEnv(t)
	orphan := env.layout.VideoPath(strings.Repeat("d", 64) + ".mp4")
	touch(t, orphan, 2*time.Hour)

	r := NewReconciler(env.pipeline(), env.store, time.Hour, 10*time.Millisecond)
	r.Start()
	defer r.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(orphan); os.IsNotExist(err) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("orphan video not reclaimed by the periodic reconcile")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReconcileAfterIngest(t *testing.T) {
	env := newTestEnv(t)
	p := env.pipeline()

	res, err := p.Ingest(context.Background(), request("a.mp4", "kept"))
	if err != nil || res.Outcome != Created {
		t.Fatalf("Ingest() = %v, %v", res.Outcome, err)
	}

	report, err := p.Reconcile(context.Background(), env.store, 0)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if report.OrphanVideos != 0 || report.OrphanPreviews != 0 {
		t.Errorf("report = %+v, want nothing removed", report)
	}
	if _, err := os.Stat(env.layout.VideoPath(res.StoredFileName)); err != nil {
		t.Errorf("recorded video removed: %v", err)
	}
	if _, err := os.Stat(env.layout.PreviewPath(*res.PreviewFileName)); err != nil {
		t.Errorf("recorded preview removed: %v", err)
	}
}

func TestHashOf(t *testing.T) {
	tests := map[string]string{
		"abc.mp4":     "abc",
		"abc.tar.gz":  "abc",
		"abc":         "abc",
		".hidden.gif": "",
	}
	for in, want := range tests {
		if got := hashOf(in); got != want {
			t.Errorf("hashOf(%q) = %q, want %q", in, got, want)
		}
	}
}
