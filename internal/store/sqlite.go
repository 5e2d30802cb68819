package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-trading-insights/internal/common"
	"github.com/i474232898/weather-trading-insights/internal/weather"
)

const createFavorites = `
	CREATE TABLE IF NOT EXISTS favorites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		country TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(latitude, longitude)
	);
`

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// SQLiteStore persists favorites in a single SQLite file. Writes are
// serialized through one connection.
type SQLiteStore struct {
	mu  sync.Mutex
	db  *sql.DB
	log logrus.FieldLogger
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string, log logrus.FieldLogger) (*SQLiteStore, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "sqlite-store")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		log.WithError(err).Warn("failed to set WAL mode")
	}
	if _, err := db.ExecContext(ctx, createFavorites); err != nil {
		db.Close()
		return nil, fmt.Errorf("create favorites table: %w", err)
	}

	log.WithField("path", path).Info("favorites database ready")
	return &SQLiteStore{db: db, log: log, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) List(ctx context.Context) ([]weather.Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, latitude, longitude, country, created_at FROM favorites ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	favs := []weather.Favorite{}
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		favs = append(favs, fav)
	}
	return favs, rows.Err()
}

func (s *SQLiteStore) Add(ctx context.Context, in weather.FavoriteInput) (weather.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var country any
	if in.Country != "" {
		country = in.Country
	}
	created := s.now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO favorites (name, latitude, longitude, country, created_at) VALUES (?, ?, ?, ?, ?)",
		in.Name, in.Latitude, in.Longitude, country, created)
	if err != nil {
		if common.HasAny(err.Error(), "UNIQUE constraint failed", "constraint failed: UNIQUE") {
			return weather.Favorite{}, ErrConflict
		}
		return weather.Favorite{}, fmt.Errorf("insert favorite: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return weather.Favorite{}, fmt.Errorf("favorite id: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, latitude, longitude, country, created_at FROM favorites WHERE id = ?", id)
	return scanFavorite(row)
}

func (s *SQLiteStore) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM favorites WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFavorite(row scanner) (weather.Favorite, error) {
	var (
		fav     weather.Favorite
		country sql.NullString
		created sql.NullString
	)
	if err := row.Scan(&fav.ID, &fav.Name, &fav.Latitude, &fav.Longitude, &country, &created); err != nil {
		return weather.Favorite{}, fmt.Errorf("scan favorite: %w", err)
	}
	if country.Valid {
		c := country.String
		fav.Country = &c
	}
	if created.Valid {
		fav.CreatedAt = parseTimestamp(created.String)
	}
	return fav, nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
