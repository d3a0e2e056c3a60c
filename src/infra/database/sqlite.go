package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/contre95/musevault/src/music"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore is a SQLite implementation of the RatingStore and HistoryStore interfaces.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the database at path.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ratings (
			release_id TEXT PRIMARY KEY,
			rating REAL NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS search_history (
			query_key TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			searched_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_search_history_searched_at ON search_history(searched_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (d *SqliteStore) Close() error {
	return d.db.Close()
}

// SaveRating inserts or replaces the rating of a release.
func (d *SqliteStore) SaveRating(ctx context.Context, rating music.Rating) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO ratings (release_id, rating, updated_at)
		VALUES (?, ?, ?)
	`, rating.ReleaseID, rating.Rating, rating.UpdatedAt.UnixNano())
	return err
}

// GetRating returns the stored rating of a release, or nil when there is none.
func (d *SqliteStore) GetRating(ctx context.Context, releaseID string) (*music.Rating, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT release_id, rating, updated_at
		FROM ratings
		WHERE release_id = ?
	`, releaseID)

	var rating music.Rating
	var updatedAt int64
	if err := row.Scan(&rating.ReleaseID, &rating.Rating, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rating.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &rating, nil
}

// GetRatings returns every stored rating, most recently updated first.
func (d *SqliteStore) GetRatings(ctx context.Context) ([]music.Rating, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT release_id, rating, updated_at
		FROM ratings
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []music.Rating{}
	for rows.Next() {
		var rating music.Rating
		var updatedAt int64
		if err := rows.Scan(&rating.ReleaseID, &rating.Rating, &updatedAt); err != nil {
			return nil, err
		}
		rating.UpdatedAt = time.Unix(0, updatedAt).UTC()
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

// DeleteRating removes the rating of a release.
func (d *SqliteStore) DeleteRating(ctx context.Context, releaseID string) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM ratings WHERE release_id = ?", releaseID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return music.ErrRatingNotFound
	}
	return nil
}

// AddSearch records a query, replacing an earlier entry with the same key.
func (d *SqliteStore) AddSearch(ctx context.Context, key string, entry music.SearchEntry) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO search_history (query_key, query, searched_at)
		VALUES (?, ?, ?)
	`, key, entry.Query, entry.SearchedAt.UnixNano())
	return err
}

// GetSearches returns up to limit entries, newest first.
func (d *SqliteStore) GetSearches(ctx context.Context, limit int) ([]music.SearchEntry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT query, searched_at
		FROM search_history
		ORDER BY searched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []music.SearchEntry{}
	for rows.Next() {
		var entry music.SearchEntry
		var searchedAt int64
		if err := rows.Scan(&entry.Query, &searchedAt); err != nil {
			return nil, err
		}
		entry.SearchedAt = time.Unix(0, searchedAt).UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// RemoveSearch deletes one entry. Missing keys are not an error.
func (d *SqliteStore) RemoveSearch(ctx context.Context, key string) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM search_history WHERE query_key = ?", key)
	return err
}

// TrimSearches keeps only the newest keep entries.
func (d *SqliteStore) TrimSearches(ctx context.Context, keep int) error {
	_, err := d.db.ExecContext(ctx, `
		DELETE FROM search_history
		WHERE query_key NOT IN (
			SELECT query_key FROM search_history ORDER BY searched_at DESC LIMIT ?
		)
	`, keep)
	return err
}

// ClearSearches removes the whole history.
func (d *SqliteStore) ClearSearches(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM search_history")
	return err
}
