package music

import "fmt"

// Track is a single entry of a release's tracklist.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DurationMs  int    `json:"duration_ms"`
	TrackNumber int    `json:"track_number"`
}

// Validate validates the track fields.
func (t *Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track id cannot be empty")
	}
	if t.DurationMs < 0 {
		return fmt.Errorf("duration cannot be negative, got %d", t.DurationMs)
	}
	if t.TrackNumber < 1 {
		return fmt.Errorf("track number must be at least 1, got %d", t.TrackNumber)
	}
	return nil
}
