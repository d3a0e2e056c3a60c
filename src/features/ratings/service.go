package ratings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/contre95/musevault/src/features/catalog"
	"github.com/contre95/musevault/src/music"
	"github.com/go-playground/validator/v10"
)

// ReleaseLookup resolves a release by id.
type ReleaseLookup interface {
	GetDetails(ctx context.Context, id string) (*music.Release, error)
}

// RatingInput is the body of a rating update.
type RatingInput struct {
	Rating float64 `json:"rating" validate:"required,min=0.5,max=5"`
}

// Service manages the user's own ratings.
type Service struct {
	store    music.RatingStore
	releases ReleaseLookup
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a new ratings service.
func NewService(store music.RatingStore, releases ReleaseLookup) *Service {
	return &Service{
		store:    store,
		releases: releases,
		validate: validator.New(),
		now:      time.Now,
	}
}

// SetRating validates and stores a rating for a release.
func (s *Service) SetRating(ctx context.Context, releaseID string, input RatingInput) (*music.Rating, error) {
	slog.Debug("SetRating service called", "releaseID", releaseID, "rating", input.Rating)
	releaseID = strings.TrimSpace(releaseID)
	if releaseID == "" {
		return nil, music.ErrMissingID
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Err: err}
	}

	rating := music.Rating{ReleaseID: releaseID, Rating: input.Rating, UpdatedAt: s.now().UTC()}
	if err := s.store.SaveRating(ctx, rating); err != nil {
		slog.Error("Failed to save rating", "releaseID", releaseID, "error", err)
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}
	return &rating, nil
}

// GetRating returns the stored rating of a release.
func (s *Service) GetRating(ctx context.Context, releaseID string) (*music.Rating, error) {
	slog.Debug("GetRating service called", "releaseID", releaseID)
	rating, err := s.store.GetRating(ctx, releaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	if rating == nil {
		return nil, music.ErrRatingNotFound
	}
	return rating, nil
}

// ListRatings returns every stored rating.
func (s *Service) ListRatings(ctx context.Context) ([]music.Rating, error) {
	slog.Debug("ListRatings service called")
	ratings, err := s.store.GetRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}

// DeleteRating removes the stored rating of a release.
func (s *Service) DeleteRating(ctx context.Context, releaseID string) error {
	slog.Debug("DeleteRating service called", "releaseID", releaseID)
	if err := s.store.DeleteRating(ctx, releaseID); err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	return nil
}

// Community returns the release aggregate nudged by the user's own rating.
func (s *Service) Community(ctx context.Context, releaseID string) (catalog.CommunitySnapshot, error) {
	slog.Debug("Community service called", "releaseID", releaseID)
	release, err := s.releases.GetDetails(ctx, releaseID)
	if err != nil {
		return catalog.CommunitySnapshot{}, err
	}

	var userRating *float64
	rating, err := s.store.GetRating(ctx, release.ID)
	if err != nil {
		slog.Warn("Failed to read user rating, ignoring it", "releaseID", release.ID, "error", err)
	} else if rating != nil {
		userRating = &rating.Rating
	}

	base := catalog.CommunitySnapshot{Average: release.CommunityRating, Total: release.ReviewCount}
	return catalog.Nudge(base, userRating), nil
}

// ValidationError wraps a rejected rating input.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rating: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
