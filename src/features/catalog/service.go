package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/contre95/musevault/src/features/config"
	"github.com/contre95/musevault/src/music"
	"golang.org/x/sync/singleflight"
)

// maxPerPage is the largest page the upstream search accepts.
const maxPerPage = 100

// Recorder receives catalog measurements.
type Recorder interface {
	CacheLookup(cache, result string)
	UpstreamRequest(endpoint, outcome string, elapsed time.Duration)
	Curated(stats CurationStats)
}

type nopRecorder struct{}

func (nopRecorder) CacheLookup(string, string)                    {}
func (nopRecorder) UpstreamRequest(string, string, time.Duration) {}
func (nopRecorder) Curated(CurationStats)                         {}

// Service is the catalog query façade: every read of release data goes through it.
type Service struct {
	source        music.ReleaseSource
	cache         *Cache
	configManager *config.Manager
	recorder      Recorder
	group         singleflight.Group
	now           func() time.Time
}

// NewService creates a new catalog service. A nil recorder discards measurements.
func NewService(source music.ReleaseSource, cache *Cache, cfgManager *config.Manager, recorder Recorder) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		source:        source,
		cache:         cache,
		configManager: cfgManager,
		recorder:      recorder,
		now:           time.Now,
	}
}

// NewCacheFromConfig builds the cache matching a catalog config section.
func NewCacheFromConfig(cfg config.Catalog, now func() time.Time) *Cache {
	return NewCache(ttlsFromConfig(cfg), cfg.MaxEntries, now)
}

func ttlsFromConfig(cfg config.Catalog) TTLs {
	return TTLs{Featured: cfg.FeaturedTTL, Search: cfg.SearchTTL, Detail: cfg.DetailTTL}
}

// ApplyConfig picks up reloadable catalog settings.
func (s *Service) ApplyConfig(cfg *config.Config) {
	s.cache.SetTTLs(ttlsFromConfig(cfg.Catalog))
	slog.Info("Catalog cache windows updated",
		"featured", cfg.Catalog.FeaturedTTL,
		"search", cfg.Catalog.SearchTTL,
		"detail", cfg.Catalog.DetailTTL,
	)
}

func (s *Service) options() config.Catalog {
	if s.configManager == nil {
		return config.Default().Catalog
	}
	return s.configManager.Get().Catalog
}

// GetFeatured returns up to limit curated albums ranked by demand.
func (s *Service) GetFeatured(ctx context.Context, limit int, forceRefresh bool) ([]music.Release, error) {
	return s.GetFeed(ctx, FeedFeatured, limit, forceRefresh)
}

// GetRecentPopular returns up to limit curated albums of the current year ranked by demand.
func (s *Service) GetRecentPopular(ctx context.Context, limit int, forceRefresh bool) ([]music.Release, error) {
	return s.GetFeed(ctx, FeedRecentPopular, limit, forceRefresh)
}

// GetFeed serves one of the featured feeds.
func (s *Service) GetFeed(ctx context.Context, mode FeedMode, limit int, forceRefresh bool) ([]music.Release, error) {
	slog.Debug("GetFeed service called", "mode", mode, "limit", limit, "force", forceRefresh)
	opts := s.options()
	if limit <= 0 {
		limit = opts.DefaultLimit
	}

	if forceRefresh {
		s.recorder.CacheLookup("featured", "bypass")
	} else if data, ok := s.cache.Featured(mode, limit); ok {
		s.recorder.CacheLookup("featured", "hit")
		return head(data, limit), nil
	} else {
		s.recorder.CacheLookup("featured", "miss")
	}

	perPage := min(max(2*limit, opts.FeaturedFloor), maxPerPage)
	key := fmt.Sprintf("feed:%s:%d", mode, perPage)
	v, err, shared := s.group.Do(key, func() (any, error) {
		raws, err := s.search(ctx, "featured", s.feedQuery(mode, perPage))
		if err != nil {
			return nil, err
		}
		curated := s.curate(raws)
		s.cache.StoreFeatured(mode, curated, max(limit, perPage/2))
		return curated, nil
	})
	if err != nil {
		if opts.ServeStaleOnError {
			if data, ok := s.cache.StaleFeatured(mode); ok {
				slog.Warn("Serving stale featured releases", "mode", mode, "error", err)
				return head(data, limit), nil
			}
		}
		slog.Error("Failed to load featured releases", "mode", mode, "error", err)
		return nil, fmt.Errorf("failed to load %s releases: %w", mode, err)
	}

	releases := music.CloneReleases(v.([]music.Release))
	slog.Debug("GetFeed completed", "mode", mode, "count", len(releases), "shared", shared)
	return head(releases, limit), nil
}

func (s *Service) feedQuery(mode FeedMode, perPage int) music.SearchQuery {
	query := music.SearchQuery{
		Type:      "release",
		Format:    "album",
		Sort:      "want",
		SortOrder: "desc",
		PerPage:   perPage,
		Page:      1,
	}
	if mode == FeedRecentPopular {
		query.Year = s.now().Year()
	}
	return query
}

// Search runs a free-text release search. Blank queries never reach the upstream.
func (s *Service) Search(ctx context.Context, query string) ([]music.Release, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []music.Release{}, nil
	}
	key := strings.ToLower(trimmed)
	slog.Debug("Search service called", "query", key)

	if data, ok := s.cache.Search(key); ok {
		s.recorder.CacheLookup("search", "hit")
		return data, nil
	}
	s.recorder.CacheLookup("search", "miss")

	opts := s.options()
	v, err, _ := s.group.Do("search:"+key, func() (any, error) {
		raws, err := s.search(ctx, "search", music.SearchQuery{
			Query:   trimmed,
			Type:    "release",
			PerPage: opts.SearchPageSize,
			Page:    1,
		})
		if err != nil {
			return nil, err
		}
		curated := s.curate(raws)
		s.cache.StoreSearch(key, curated)
		return curated, nil
	})
	if err != nil {
		if opts.ServeStaleOnError {
			if data, ok := s.cache.StaleSearch(key); ok {
				slog.Warn("Serving stale search results", "query", key, "error", err)
				return data, nil
			}
		}
		slog.Error("Search failed", "query", key, "error", err)
		return nil, fmt.Errorf("failed to search releases: %w", err)
	}
	return music.CloneReleases(v.([]music.Release)), nil
}

// GetDetails returns the full normalized release for id. Details are never curated.
func (s *Service) GetDetails(ctx context.Context, id string) (*music.Release, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, music.ErrMissingID
	}
	slog.Debug("GetDetails service called", "id", id)

	if release, ok := s.cache.Detail(id); ok {
		s.recorder.CacheLookup("detail", "hit")
		return release, nil
	}
	s.recorder.CacheLookup("detail", "miss")

	v, err, _ := s.group.Do("release:"+id, func() (any, error) {
		raw, err := s.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		fallback := 0
		if raw != nil {
			fallback = len(raw.Tracklist)
		}
		release := Normalize(raw, fallback)
		if release == nil {
			return nil, fmt.Errorf("%w: %s", music.ErrNormalizationFailed, id)
		}
		if release.ID == "" {
			release.ID = id
		}
		s.cache.StoreDetail(id, *release)
		return *release, nil
	})
	if err != nil {
		if s.options().ServeStaleOnError {
			if release, ok := s.cache.StaleDetail(id); ok {
				slog.Warn("Serving stale release details", "id", id, "error", err)
				return release, nil
			}
		}
		slog.Error("Failed to load release details", "id", id, "error", err)
		return nil, fmt.Errorf("failed to load release %s: %w", id, err)
	}
	release := v.(music.Release).Clone()
	return &release, nil
}

// search calls the upstream on a context detached from the caller, since the
// result may be shared by every coalesced request.
func (s *Service) search(ctx context.Context, endpoint string, query music.SearchQuery) ([]music.RawRecord, error) {
	start := time.Now()
	raws, err := s.source.SearchReleases(context.WithoutCancel(ctx), query)
	s.recorder.UpstreamRequest(endpoint, outcome(err), time.Since(start))
	return raws, err
}

func (s *Service) lookup(ctx context.Context, id string) (*music.RawRecord, error) {
	start := time.Now()
	raw, err := s.source.GetRelease(context.WithoutCancel(ctx), id)
	s.recorder.UpstreamRequest("release", outcome(err), time.Since(start))
	return raw, err
}

func (s *Service) curate(raws []music.RawRecord) []music.Release {
	releases := make([]music.Release, 0, len(raws))
	for i := range raws {
		if release := Normalize(&raws[i], 0); release != nil {
			releases = append(releases, *release)
		}
	}
	curated, stats := CurateWithStats(releases)
	s.recorder.Curated(stats)
	slog.Debug("Curated releases", "input", stats.Input, "unreleased", stats.Unreleased, "duplicates", stats.Duplicates, "output", stats.Output)
	return curated
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func head(releases []music.Release, limit int) []music.Release {
	if limit >= 0 && len(releases) > limit {
		return releases[:limit]
	}
	return releases
}
