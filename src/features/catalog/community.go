package catalog

import (
	"math"

	"github.com/contre95/musevault/src/music"
)

const defaultSnapshotPopularity = 52

// SnapshotInput identifies the release a community snapshot is generated for.
type SnapshotInput struct {
	ID         string
	Name       string
	Popularity *int
}

// CommunitySnapshot is a synthetic aggregate rating.
type CommunitySnapshot struct {
	Average float64 `json:"average"`
	Total   int     `json:"total"`
}

// Snapshot estimates a community rating for releases whose upstream record carries none.
// A non-zero userRating nudges the average by userRating/50.
func Snapshot(in SnapshotInput, userRating *float64) CommunitySnapshot {
	popularity := defaultSnapshotPopularity
	if in.Popularity != nil {
		popularity = *in.Popularity
	}
	seed := Seed(identity(in.ID, in.Name))

	rating := 3.2 + (float64(popularity)/100)*1.4 + float64(seed%20)/100 + userNudge(userRating)

	total := 120 + int(math.Round(float64(popularity)*6)) + seed%90
	return CommunitySnapshot{
		Average: clampRating(rating),
		Total:   max(total, 0),
	}
}

func clampRating(v float64) float64 {
	v = math.Min(music.MaxCommunityRating, math.Max(music.MinCommunityRating, v))
	return math.Round(v*10) / 10
}

// Nudge shifts an existing aggregate by the user's own rating.
func Nudge(s CommunitySnapshot, userRating *float64) CommunitySnapshot {
	s.Average = clampRating(s.Average + userNudge(userRating))
	return s
}

func userNudge(userRating *float64) float64 {
	if userRating == nil || *userRating == 0 {
		return 0
	}
	return *userRating / 50
}
