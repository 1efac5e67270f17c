// Package history records completed extractions in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sportsdl/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
	extractor    TEXT    NOT NULL,
	video_id     TEXT    NOT NULL,
	display_id   TEXT    NOT NULL DEFAULT '',
	title        TEXT    NOT NULL DEFAULT '',
	webpage_url  TEXT    NOT NULL DEFAULT '',
	is_live      INTEGER NOT NULL DEFAULT 0,
	format_count INTEGER NOT NULL DEFAULT 0,
	best_url     TEXT    NOT NULL DEFAULT '',
	extracted_at INTEGER NOT NULL,
	PRIMARY KEY (extractor, video_id)
);
CREATE INDEX IF NOT EXISTS extractions_extracted_at ON extractions (extracted_at);
`

// Entry is one stored extraction.
type Entry struct {
	Extractor   string
	ID          string
	DisplayID   string
	Title       string
	WebpageURL  string
	IsLive      bool
	FormatCount int
	BestURL     string
	ExtractedAt time.Time
}

// EntryFromInfo builds an entry for a finished extraction.
func EntryFromInfo(info *media.Info, at time.Time) Entry {
	e := Entry{
		Extractor:   info.Extractor,
		ID:          info.ID,
		DisplayID:   info.DisplayID,
		Title:       info.Title,
		WebpageURL:  info.WebpageURL,
		IsLive:      info.IsLive,
		FormatCount: len(info.Formats),
		ExtractedAt: at,
	}
	if best, ok := info.Best(); ok {
		e.BestURL = best.URL
	}
	return e
}

// Store is a history database handle.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// one connection keeps the pragmas below in effect
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initialising history: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes or updates an entry. Entries are keyed by extractor and id.
func (s *Store) Save(ctx context.Context, e Entry) error {
	if e.Extractor == "" || e.ID == "" {
		return errors.New("history entry needs an extractor and an id")
	}
	if e.ExtractedAt.IsZero() {
		e.ExtractedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO extractions (extractor, video_id, display_id, title, webpage_url, is_live, format_count, best_url, extracted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (extractor, video_id) DO UPDATE SET
	display_id = excluded.display_id,
	title = excluded.title,
	webpage_url = excluded.webpage_url,
	is_live = excluded.is_live,
	format_count = excluded.format_count,
	best_url = excluded.best_url,
	extracted_at = excluded.extracted_at`,
		e.Extractor, e.ID, e.DisplayID, e.Title, e.WebpageURL, e.IsLive, e.FormatCount, e.BestURL, e.ExtractedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT extractor, video_id, display_id, title, webpage_url, is_live, format_count, best_url, extracted_at
FROM extractions
ORDER BY extracted_at DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.Extractor, &e.ID, &e.DisplayID, &e.Title, &e.WebpageURL, &e.IsLive, &e.FormatCount, &e.BestURL, &ms); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.ExtractedAt = time.UnixMilli(ms)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM extractions`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// FormatForDisplay creates one display line per entry.
func FormatForDisplay(entries []Entry) []string {
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		display := fmt.Sprintf("%s  %-12s %s", e.ExtractedAt.Format("2006-01-02 15:04"), e.Extractor, e.Title)
		if e.IsLive {
			display += " [live]"
		}
		display += fmt.Sprintf(" (%d formats)", e.FormatCount)
		items = append(items, display)
	}
	return items
}
