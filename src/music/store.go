package music

import (
	"context"
	"time"
)

// Rating is a user's own star rating for a release.
type Rating struct {
	ReleaseID string    `json:"releaseId"`
	Rating    float64   `json:"rating"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SearchEntry is one remembered search query.
type SearchEntry struct {
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searchedAt"`
}

// RatingStore keeps user ratings keyed by release id.
type RatingStore interface {
	SaveRating(ctx context.Context, rating Rating) error
	GetRating(ctx context.Context, releaseID string) (*Rating, error)
	GetRatings(ctx context.Context) ([]Rating, error)
	DeleteRating(ctx context.Context, releaseID string) error
}

// HistoryStore keeps search history keyed by a normalized query.
type HistoryStore interface {
	AddSearch(ctx context.Context, key string, entry SearchEntry) error
	GetSearches(ctx context.Context, limit int) ([]SearchEntry, error)
	RemoveSearch(ctx context.Context, key string) error
	TrimSearches(ctx context.Context, keep int) error
	ClearSearches(ctx context.Context) error
}
