package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"video-library/internal/metrics"
)

// Asset is one uploaded video and its optional preview.
type Asset struct {
	ID                int64     `db:"id" json:"id"`
	Title             string    `db:"title" json:"title"`
	Artist            string    `db:"artist" json:"artist"`
	Genre             string    `db:"genre" json:"genre"`
	Description       string    `db:"description" json:"description"`
	ViewCount         int64     `db:"view_count" json:"viewCount"`
	FileName          string    `db:"file_name" json:"fileName"`
	Hash              string    `db:"hash" json:"hash"`
	ThumbnailFileName *string   `db:"thumbnail_file_name" json:"thumbnailFileName"`
	DurationSeconds   *float64  `db:"duration_seconds" json:"durationSeconds"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

const assetColumns = `id, title, artist, genre, description, view_count, file_name, hash,
	thumbnail_file_name, duration_seconds, created_at`

// ExistsByHash reports whether an asset with the content hash is recorded.
func (d *Database) ExistsByHash(ctx context.Context, hash string) (exists bool, err error) {
	start := time.Now()
	defer func() { recordQuery("exists_by_hash", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM videos WHERE hash = ?)`, hash)
	return exists, err
}

// Persist inserts a new asset and returns its id. It returns ErrDuplicateKey
// when the content hash is already recorded.
func (d *Database) Persist(ctx context.Context, a *Asset) (id int64, err error) {
	start := time.Now()
	defer func() { recordQuery("persist", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.NamedExecContext(ctx, `
		INSERT INTO videos (title, artist, genre, description, file_name, hash,
			thumbnail_file_name, duration_seconds)
		VALUES (:title, :artist, :genre, :description, :file_name, :hash,
			:thumbnail_file_name, :duration_seconds)
	`, a)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateKey, a.Hash)
		}
		return 0, fmt.Errorf("failed to insert asset: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read asset id: %w", err)
	}
	a.ID = id
	return id, nil
}

// GetByID returns the asset with the given id.
func (d *Database) GetByID(ctx context.Context, id int64) (*Asset, error) {
	return d.getOne(ctx, "get_by_id", `SELECT `+assetColumns+` FROM videos WHERE id = ?`, id)
}

// GetByHash returns the asset with the given content hash.
func (d *Database) GetByHash(ctx context.Context, hash string) (*Asset, error) {
	return d.getOne(ctx, "get_by_hash", `SELECT `+assetColumns+` FROM videos WHERE hash = ?`, hash)
}

func (d *Database) getOne(ctx context.Context, op, query string, arg any) (a *Asset, err error) {
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var asset Asset
	if err = d.db.GetContext(ctx, &asset, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// ListFileNames returns the stored video file name of every asset.
func (d *Database) ListFileNames(ctx context.Context) (names []string, err error) {
	start := time.Now()
	defer func() { recordQuery("list_file_names", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.SelectContext(ctx, &names, `SELECT file_name FROM videos`)
	return names, err
}

// Count returns the number of recorded assets.
func (d *Database) Count(ctx context.Context) (int, error) {
	stats, err := d.Stats(ctx)
	return stats.TotalAssets, err
}

// Stats implements metrics.StatsProvider.
func (d *Database) Stats(ctx context.Context) (stats metrics.Stats, err error) {
	start := time.Now()
	defer func() { recordQuery("stats", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row struct {
		Total       int `db:"total"`
		WithPreview int `db:"with_preview"`
	}
	err = d.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS total, COUNT(thumbnail_file_name) AS with_preview FROM videos
	`)
	if err != nil {
		return metrics.Stats{}, err
	}

	d.UpdateDBMetrics()
	return metrics.Stats{TotalAssets: row.Total, AssetsWithPreview: row.WithPreview}, nil
}
