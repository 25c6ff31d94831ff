package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func testAsset(hash string) *Asset {
	return &Asset{
		Title:    "Title " + hash,
		Artist:   "Artist",
		Genre:    "Rock",
		FileName: hash + ".mp4",
		Hash:     hash,
	}
}

func TestPersistAndLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := testAsset("aaa")
	a.Description = "live set"
	a.ThumbnailFileName = strPtr("aaa.gif")
	d := 9.5
	a.DurationSeconds = &d

	id, err := db.Persist(ctx, a)
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if id <= 0 || a.ID != id {
		t.Errorf("Persist() id = %d, asset.ID = %d", id, a.ID)
	}

	got, err := db.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Hash != "aaa" || got.FileName != "aaa.mp4" || got.Description != "live set" {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.ThumbnailFileName == nil || *got.ThumbnailFileName != "aaa.gif" {
		t.Errorf("ThumbnailFileName = %v, want aaa.gif", got.ThumbnailFileName)
	}
	if got.DurationSeconds == nil || *got.DurationSeconds != 9.5 {
		t.Errorf("DurationSeconds = %v, want 9.5", got.DurationSeconds)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	byHash, err := db.GetByHash(ctx, "aaa")
	if err != nil || byHash.ID != id {
		t.Errorf("GetByHash() = %+v, %v", byHash, err)
	}
}

func TestNullablePreviewAndDuration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Persist(ctx, testAsset("bbb"))
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	got, err := db.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ThumbnailFileName != nil || got.DurationSeconds != nil {
		t.Errorf("nullable fields = %v, %v, want nil, nil", got.ThumbnailFileName, got.DurationSeconds)
	}
}

func TestExistsByHash(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	exists, err := db.ExistsByHash(ctx, "ccc")
	if err != nil || exists {
		t.Fatalf("ExistsByHash() before insert = %v, %v", exists, err)
	}
	if _, err := db.Persist(ctx, testAsset("ccc")); err != nil {
		t.Fatal(err)
	}
	exists, err = db.ExistsByHash(ctx, "ccc")
	if err != nil || !exists {
		t.Errorf("ExistsByHash() after insert = %v, %v", exists, err)
	}
}

func TestPersistDuplicateKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.Persist(ctx, testAsset("ddd")); err != nil {
		t.Fatal(err)
	}
	dup := testAsset("ddd")
	dup.FileName = "ddd.mkv"
	_, err := db.Persist(ctx, dup)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Persist(duplicate) error = %v, want ErrDuplicateKey", err)
	}
}

func TestPersistConcurrentSingleWinner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = db.Persist(ctx, testAsset("eee"))
		}(i)
	}
	wg.Wait()

	wins := 0
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDuplicateKey):
		default:
			t.Errorf("Persist %d error = %v", i, err)
		}
	}
	if wins != 1 {
		t.Errorf("winners = %d, want 1", wins)
	}
}

func TestGetNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.GetByID(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetByHash(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByHash() error = %v, want ErrNotFound", err)
	}
}

func TestListFileNamesAndStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		a := testAsset(fmt.Sprintf("h%d", i))
		if i == 0 {
			a.ThumbnailFileName = strPtr("h0.gif")
		}
		if _, err := db.Persist(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	names, err := db.ListFileNames(ctx)
	if err != nil {
		t.Fatalf("ListFileNames() error = %v", err)
	}
	sort.Strings(names)
	if len(names) != 3 || names[0] != "h0.mp4" || names[2] != "h2.mp4" {
		t.Errorf("ListFileNames() = %v", names)
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalAssets != 3 || stats.AssetsWithPreview != 1 {
		t.Errorf("Stats() = %+v, want 3 total, 1 with preview", stats)
	}

	count, err := db.Count(ctx)
	if err != nil || count != 3 {
		t.Errorf("Count() = %d, %v, want 3", count, err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	ctx := context.Background()

	db, err := New(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Persist(ctx, testAsset("fff")); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = New(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()
	if exists, err := db.ExistsByHash(ctx, "fff"); err != nil || !exists {
		t.Errorf("ExistsByHash() after reopen = %v, %v", exists, err)
	}
}
