package download

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one row in the download ledger. ExpiresAt drives the cleanup
// loop; a record and its file are removed together.
type Record struct {
	VideoID         string `json:"video_id"`
	Title           string `json:"title"`
	FilePath        string `json:"file_path"`
	SizeBytes       int64  `json:"size_bytes"`
	DurationSeconds int    `json:"duration_seconds"`
	CreatedAt       string `json:"created_at"`
	ExpiresAt       string `json:"expires_at"`
}

// Store is the SQLite ledger of downloaded audio files.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the ledger database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("download store: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("download store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("download store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS downloads (
		video_id         TEXT PRIMARY KEY,
		title            TEXT,
		file_path        TEXT NOT NULL,
		size_bytes       INTEGER NOT NULL DEFAULT 0,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		expires_at       TEXT NOT NULL
	)`)
	return err
}

// Upsert inserts or replaces the record for rec.VideoID.
func (s *Store) Upsert(rec Record) error {
	_, err := s.db.Exec(
		`INSERT INTO downloads (video_id, title, file_path, size_bytes, duration_seconds, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO UPDATE SET
		   title=excluded.title, file_path=excluded.file_path, size_bytes=excluded.size_bytes,
		   duration_seconds=excluded.duration_seconds, created_at=excluded.created_at, expires_at=excluded.expires_at`,
		rec.VideoID, rec.Title, rec.FilePath, rec.SizeBytes, rec.DurationSeconds, rec.CreatedAt, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("download store: upsert: %w", err)
	}
	return nil
}

// GetByVideoID returns the record for videoID, if any.
func (s *Store) GetByVideoID(videoID string) (Record, bool, error) {
	var rec Record
	var title sql.NullString
	err := s.db.QueryRow(
		`SELECT video_id, title, file_path, size_bytes, duration_seconds, created_at, expires_at
		 FROM downloads WHERE video_id = ?`, videoID,
	).Scan(&rec.VideoID, &title, &rec.FilePath, &rec.SizeBytes, &rec.DurationSeconds, &rec.CreatedAt, &rec.ExpiresAt)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("download store: get: %w", err)
	}
	rec.Title = title.String
	return rec, true, nil
}

// ListExpired returns every record whose expiry is at or before now.
func (s *Store) ListExpired(now time.Time) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT video_id, title, file_path, size_bytes, duration_seconds, created_at, expires_at
		 FROM downloads WHERE expires_at <= ?`,
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("download store: list expired: %w", err)
	}
	defer rows.Close()

	var expired []Record
	for rows.Next() {
		var rec Record
		var title sql.NullString
		if err := rows.Scan(&rec.VideoID, &title, &rec.FilePath, &rec.SizeBytes,
			&rec.DurationSeconds, &rec.CreatedAt, &rec.ExpiresAt); err != nil {
			continue
		}
		rec.Title = title.String
		expired = append(expired, rec)
	}
	return expired, rows.Err()
}

// Delete removes the record for videoID.
func (s *Store) Delete(videoID string) error {
	if _, err := s.db.Exec(`DELETE FROM downloads WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("download store: delete: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
