package music

import "context"

// SearchQuery describes a database search against the release source.
type SearchQuery struct {
	Query     string
	Type      string
	Format    string
	Year      int
	Sort      string
	SortOrder string
	PerPage   int
	Page      int
}

// ReleaseSource is the upstream collaborator the catalog reads raw records from.
type ReleaseSource interface {
	// SearchReleases runs a database search and returns the raw result entries.
	SearchReleases(ctx context.Context, query SearchQuery) ([]RawRecord, error)
	// GetRelease looks up a single release. A nil record with a nil error means the
	// source answered with an empty payload.
	GetRelease(ctx context.Context, id string) (*RawRecord, error)
}
