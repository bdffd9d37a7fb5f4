// Package history keeps the recent midpoint searches in a local SQLite file
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"midlo/internal/domain"
)

// DefaultKeep is how many searches are retained when no limit is configured
const DefaultKeep = 100

// Entry is one stored search
type Entry struct {
	ID int64
	domain.Search
}

// Store persists searches
type Store struct {
	db   *sql.DB
	keep int
	log  *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS searches (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	address_a   TEXT    NOT NULL,
	address_b   TEXT    NOT NULL,
	lat         REAL    NOT NULL,
	lng         REAL    NOT NULL,
	place_count INTEGER NOT NULL DEFAULT 0,
	searched_at INTEGER NOT NULL,
	UNIQUE(address_a, address_b)
);
CREATE INDEX IF NOT EXISTS idx_searches_searched_at ON searches(searched_at DESC);
`

// Open opens or creates the database at path. keep bounds the number of
// retained searches; zero or less uses DefaultKeep.
func Open(path string, keep int, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if keep <= 0 {
		keep = DefaultKeep
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	// a single connection keeps :memory: databases alive and writes serialized
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db, keep: keep, log: logger.Named("history")}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record saves a search. Searching the same pair again moves it to the top.
func (s *Store) Record(ctx context.Context, search domain.Search) error {
	at := search.At
	if at.IsZero() {
		at = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO searches (address_a, address_b, lat, lng, place_count, searched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(address_a, address_b) DO UPDATE SET
			lat = excluded.lat,
			lng = excluded.lng,
			place_count = excluded.place_count,
			searched_at = excluded.searched_at`,
		search.AddressA, search.AddressB, search.Midpoint.Lat, search.Midpoint.Lng, search.PlaceCount, at.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM searches WHERE id NOT IN (
			SELECT id FROM searches ORDER BY searched_at DESC, id DESC LIMIT ?
		)`, s.keep)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit search: %w", err)
	}
	s.log.Debug("search recorded", zap.String("a", search.AddressA), zap.String("b", search.AddressB))
	return nil
}

// Recent returns up to limit searches, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.keep
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, address_a, address_b, lat, lng, place_count, searched_at
		FROM searches ORDER BY searched_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.ID, &e.AddressA, &e.AddressB, &e.Midpoint.Lat, &e.Midpoint.Lng, &e.PlaceCount, &at); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.At = time.Unix(0, at)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return out, nil
}

// Clear deletes every stored search
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM searches"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
