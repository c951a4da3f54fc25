package clinicseo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/clinicseo/seo"
)

// Store wraps a SQLite database holding admin-edited page overrides and share
// image metadata. It serves as an seo.OverrideSource layered in front of the
// primary settings source.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the resolver read while the admin writes; writers wait on a
	// busy database instead of failing.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS overrides (
    page_id TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

// PageOverride implements seo.OverrideSource.
func (s *Store) PageOverride(ctx context.Context, pageID string) (*seo.PageOverride, error) {
	rec, err := s.GetOverride(ctx, pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, seo.ErrOverrideNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec.Override, nil
}

// GetOverride returns the stored override for pageID, or sql.ErrNoRows.
func (s *Store) GetOverride(ctx context.Context, pageID string) (OverrideRecord, error) {
	var data, updated string
	err := s.db.QueryRowContext(ctx, `SELECT data, updated_at FROM overrides WHERE page_id = ?`, pageID).
		Scan(&data, &updated)
	if err != nil {
		return OverrideRecord{}, err
	}
	rec := OverrideRecord{PageID: pageID, UpdatedAt: updated}
	if err := json.Unmarshal([]byte(data), &rec.Override); err != nil {
		return OverrideRecord{}, err
	}
	return rec, nil
}

// ListOverrides returns every stored override ordered by page id.
func (s *Store) ListOverrides(ctx context.Context) ([]OverrideRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT page_id, data, updated_at FROM overrides ORDER BY page_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []OverrideRecord
	for rows.Next() {
		var rec OverrideRecord
		var data string
		if err := rows.Scan(&rec.PageID, &data, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &rec.Override); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SaveOverride upserts the override for pageID.
func (s *Store) SaveOverride(ctx context.Context, pageID string, o seo.PageOverride) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO overrides (page_id, data, updated_at) VALUES (?, ?, ?)`,
		pageID, string(data), time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeleteOverride removes the override for pageID.
func (s *Store) DeleteOverride(ctx context.Context, pageID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM overrides WHERE page_id = ?`, pageID)
	return err
}

// ListImages returns all share images, newest first.
func (s *Store) ListImages(ctx context.Context) ([]ShareImage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []ShareImage
	for rows.Next() {
		var img ShareImage
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ImageExists reports whether filename is recorded.
func (s *Store) ImageExists(ctx context.Context, filename string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE filename = ?`, filename).Scan(&n)
	return n > 0, err
}

// SaveImage records share image metadata.
func (s *Store) SaveImage(ctx context.Context, img ShareImage) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// DeleteImage removes share image metadata.
func (s *Store) DeleteImage(ctx context.Context, filename string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE filename = ?`, filename)
	return err
}
