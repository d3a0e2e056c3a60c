package hosting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/contre95/musevault/src/features/catalog"
	"github.com/contre95/musevault/src/features/config"
	"github.com/contre95/musevault/src/features/history"
	"github.com/contre95/musevault/src/features/metrics"
	"github.com/contre95/musevault/src/features/ratings"
	"github.com/contre95/musevault/src/infra/database"
	"github.com/contre95/musevault/src/music"
)

type downSource struct{}

func (downSource) SearchReleases(ctx context.Context, query music.SearchQuery) ([]music.RawRecord, error) {
	return nil, &music.UpstreamError{StatusCode: 503, Status: "503 Service Unavailable"}
}

func (downSource) GetRelease(ctx context.Context, id string) (*music.RawRecord, error) {
	return nil, &music.UpstreamError{StatusCode: 503, Status: "503 Service Unavailable"}
}

type noCovers struct{}

func (noCovers) Thumbnail(ctx context.Context, url string, size int) ([]byte, error) {
	return nil, music.ErrUpstreamUnavailable
}

func newTestServer(t *testing.T, requests int) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimit.Requests = requests
	manager := config.NewManager(cfg)

	store, err := database.NewSqliteStore(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	collector := metrics.NewCollector()
	catalogService := catalog.NewService(downSource{}, catalog.NewCacheFromConfig(cfg.Catalog, nil), manager, collector)
	ratingsService := ratings.NewService(store, catalogService)
	historyService := history.NewService(store)
	limiter := NewRateLimiter(cfg.RateLimit, collector.RateLimited)

	return NewServer(manager, catalogService, noCovers{}, ratingsService, historyService, collector, limiter)
}

func call(t *testing.T, s *Server, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", req.Method, req.URL, err)
	}
	body, _ := io.ReadAll(resp.Body)
	var payload map[string]any
	json.Unmarshal(body, &payload)
	return resp, payload
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t, 100)

	resp, body := call(t, s, httptest.NewRequest("GET", "/", nil))
	if resp.StatusCode != 200 || body["status"] != "ok" || body["message"] != "MuseVault API proxy is running." {
		t.Errorf("unexpected root response %d %v", resp.StatusCode, body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}

	resp, body = call(t, s, httptest.NewRequest("GET", "/nowhere", nil))
	if resp.StatusCode != 404 || body["error"] != "Route not found." {
		t.Errorf("unexpected fallback response %d %v", resp.StatusCode, body)
	}

	resp, body = call(t, s, httptest.NewRequest("GET", "/api/search?q=air", nil))
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502 from a failing upstream, got %d %v", resp.StatusCode, body)
	}
	if resp.Header.Get("X-RateLimit-Limit") != "100" {
		t.Errorf("expected api routes to carry rate limit headers")
	}

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, _ = call(t, s, req)
	if resp.StatusCode != 200 {
		t.Errorf("expected 200 from health, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected a wildcard CORS origin, got %q", got)
	}
	if resp.Header.Get("X-RateLimit-Limit") != "" {
		t.Error("health must not be rate limited")
	}
}

func TestServerRateLimitsAPI(t *testing.T) {
	s := newTestServer(t, 1)

	resp, _ := call(t, s, httptest.NewRequest("GET", "/api/history", nil))
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp, body := call(t, s, httptest.NewRequest("GET", "/api/history", nil))
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if body["error"] != "Too many requests. Please try again soon." {
		t.Errorf("unexpected rejection body %v", body)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected a Retry-After header")
	}
}
