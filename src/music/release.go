package music

import (
	"fmt"
	"strings"
)

// UnknownArtist is the display name used when a release carries no artist credit.
const UnknownArtist = "Unknown Artist"

// Rating bounds for CommunityRating.
const (
	MinCommunityRating = 1.2
	MaxCommunityRating = 5.0
)

// ExternalURLs links a release to its upstream pages.
type ExternalURLs struct {
	Discogs string `json:"discogs,omitempty"`
}

// Release is the canonical album entity served by the catalog.
type Release struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	RawTitle        string       `json:"rawTitle,omitempty"`
	Artists         []string     `json:"artists"`
	ReleaseDate     *string      `json:"releaseDate"`
	ReleaseYear     *int         `json:"releaseYear"`
	Cover           string       `json:"cover"`
	TotalTracks     int          `json:"totalTracks"`
	AlbumType       string       `json:"albumType"`
	Label           string       `json:"label,omitempty"`
	Popularity      int          `json:"popularity"`
	ExternalURLs    ExternalURLs `json:"external_urls"`
	Genres          []string     `json:"genres"`
	CommunityRating float64      `json:"communityRating"`
	ReviewCount     int          `json:"reviewCount"`
	Tracks          []Track      `json:"tracks"`
}

// PrimaryArtist returns the first credited artist.
func (r *Release) PrimaryArtist() string {
	if len(r.Artists) == 0 {
		return ""
	}
	return r.Artists[0]
}

// HasYear reports whether a release year could be resolved.
func (r *Release) HasYear() bool {
	return r.ReleaseYear != nil && *r.ReleaseYear > 0
}

// Clone returns a deep copy so callers never share slices with the cache.
func (r Release) Clone() Release {
	c := r
	c.Artists = cloneSlice(r.Artists)
	c.Genres = cloneSlice(r.Genres)
	c.Tracks = cloneSlice(r.Tracks)
	if r.ReleaseDate != nil {
		d := *r.ReleaseDate
		c.ReleaseDate = &d
	}
	if r.ReleaseYear != nil {
		y := *r.ReleaseYear
		c.ReleaseYear = &y
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// CloneReleases deep-copies a list of releases.
func CloneReleases(releases []Release) []Release {
	out := make([]Release, len(releases))
	for i, r := range releases {
		out[i] = r.Clone()
	}
	return out
}

// Validate checks the invariants every normalized release must hold.
func (r *Release) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("release id cannot be empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("release name cannot be empty: id -> %s", r.ID)
	}
	if len(r.Artists) == 0 {
		return fmt.Errorf("release must have at least one artist: id -> %s", r.ID)
	}
	if len(r.Genres) == 0 {
		return fmt.Errorf("release must have at least one genre: id -> %s", r.ID)
	}
	if r.CommunityRating < MinCommunityRating || r.CommunityRating > MaxCommunityRating {
		return fmt.Errorf("community rating out of range, got %.1f: id -> %s", r.CommunityRating, r.ID)
	}
	if r.ReviewCount < 0 {
		return fmt.Errorf("review count cannot be negative, got %d", r.ReviewCount)
	}
	if r.TotalTracks < 0 {
		return fmt.Errorf("total tracks cannot be negative, got %d", r.TotalTracks)
	}
	for i, t := range r.Tracks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("invalid track at index %d: %w", i, err)
		}
	}
	return nil
}
