package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/contre95/musevault/src/music"
)

// MaxEntries is how many searches are remembered.
const MaxEntries = 10

// ErrEmptyQuery is returned when a blank query is added.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Service keeps the recent search history. Queries are deduplicated case-insensitively
// and the newest entry wins.
type Service struct {
	store music.HistoryStore
	now   func() time.Time
}

// NewService creates a new history service.
func NewService(store music.HistoryStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Key normalizes a query for deduplication.
func Key(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Add records a query and returns the updated history.
func (s *Service) Add(ctx context.Context, query string) ([]music.SearchEntry, error) {
	slog.Debug("Add history service called", "query", query)
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, ErrEmptyQuery
	}
	entry := music.SearchEntry{Query: trimmed, SearchedAt: s.now().UTC()}
	if err := s.store.AddSearch(ctx, Key(trimmed), entry); err != nil {
		slog.Error("Failed to add search", "query", trimmed, "error", err)
		return nil, fmt.Errorf("failed to add search: %w", err)
	}
	if err := s.store.TrimSearches(ctx, MaxEntries); err != nil {
		return nil, fmt.Errorf("failed to trim history: %w", err)
	}
	return s.List(ctx)
}

// List returns the remembered searches, newest first.
func (s *Service) List(ctx context.Context) ([]music.SearchEntry, error) {
	entries, err := s.store.GetSearches(ctx, MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// Remove forgets one query.
func (s *Service) Remove(ctx context.Context, query string) error {
	slog.Debug("Remove history service called", "query", query)
	if err := s.store.RemoveSearch(ctx, Key(query)); err != nil {
		return fmt.Errorf("failed to remove search: %w", err)
	}
	return nil
}

// Clear forgets every query.
func (s *Service) Clear(ctx context.Context) error {
	slog.Debug("Clear history service called")
	if err := s.store.ClearSearches(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
