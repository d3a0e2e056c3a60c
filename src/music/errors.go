package music

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable covers transport failures and non-2xx answers from the release source.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMissingID is returned when a detail lookup is made without an identifier.
	ErrMissingID = errors.New("release id missing")
	// ErrNormalizationFailed is returned when the upstream answered but the record is unusable.
	ErrNormalizationFailed = errors.New("unable to normalize release")
	// ErrRatingNotFound is returned when no user rating is stored for a release.
	ErrRatingNotFound = errors.New("rating not found")
)

// UpstreamError represents a non-2xx answer from the release source.
type UpstreamError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream request failed: %d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("upstream request failed: %d %s - %s", e.StatusCode, e.Status, e.Message)
}

// Is makes every UpstreamError match ErrUpstreamUnavailable.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// UpstreamStatus extracts the HTTP status carried by err, or 0 when there is none.
func UpstreamStatus(err error) int {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.StatusCode
	}
	return 0
}
