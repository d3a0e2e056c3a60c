package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contre95/musevault/src/features/config"
	"github.com/contre95/musevault/src/music"
	"github.com/gofiber/fiber/v2"
)

type fakeCovers struct {
	url  string
	size int
	err  error
}

func (f *fakeCovers) Thumbnail(ctx context.Context, url string, size int) ([]byte, error) {
	f.url, f.size = url, size
	if f.err != nil {
		return nil, f.err
	}
	return []byte("jpeg"), nil
}

func newTestApp(source *mockSource, covers CoverRenderer) *fiber.App {
	cfg := config.Default()
	manager := config.NewManager(cfg)
	service := NewService(source, NewCacheFromConfig(cfg.Catalog, nil), manager, nil)
	app := fiber.New()
	RegisterRoutes(app, service, covers, manager)
	return app
}

func doRequest(t *testing.T, app *fiber.App, target string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("request %s failed: %v", target, err)
	}
	body, _ := io.ReadAll(resp.Body)
	var payload map[string]any
	json.Unmarshal(body, &payload)
	return resp, payload
}

func TestFeaturedHandler(t *testing.T) {
	source := &mockSource{results: catalogFixture()}
	app := newTestApp(source, nil)

	resp, payload := doRequest(t, app, "/api/featured?limit=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Cache-Control"); got != "public, max-age=60" {
		t.Errorf("unexpected Cache-Control %q", got)
	}
	if data := payload["data"].([]any); len(data) != 2 {
		t.Errorf("expected 2 releases, got %d", len(data))
	}

	doRequest(t, app, "/api/featured?limit=500")
	if got := source.queries[len(source.queries)-1].PerPage; got != 100 {
		t.Errorf("expected limit clamped to 50 (per_page 100), got %d", got)
	}

	doRequest(t, app, "/api/featured?limit=nope&refresh=TRUE&mode=recent-popular")
	last := source.queries[len(source.queries)-1]
	if last.PerPage != 50 || last.Year == 0 {
		t.Errorf("expected default limit on the recent-popular feed, got %+v", last)
	}
}

func TestFeaturedHandlerUpstreamFailure(t *testing.T) {
	app := newTestApp(&mockSource{err: music.ErrUpstreamUnavailable}, nil)
	resp, payload := doRequest(t, app, "/api/featured")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
	if payload["error"] != "Unable to load featured releases right now." {
		t.Errorf("unexpected error %v", payload["error"])
	}
}

func TestSearchHandler(t *testing.T) {
	source := &mockSource{results: catalogFixture()}
	app := newTestApp(source, nil)

	resp, payload := doRequest(t, app, "/api/search?q=%20%20")
	if resp.StatusCode != http.StatusBadRequest || payload["error"] != "Missing search query." {
		t.Errorf("expected 400 for a blank query, got %d %v", resp.StatusCode, payload)
	}
	if searches, _ := source.calls(); searches != 0 {
		t.Errorf("blank query reached the upstream")
	}

	resp, payload = doRequest(t, app, "/api/search?q=radiohead")
	if resp.StatusCode != http.StatusOK || len(payload["data"].([]any)) != 5 {
		t.Errorf("unexpected search response %d %v", resp.StatusCode, payload)
	}

	failing := newTestApp(&mockSource{err: music.ErrUpstreamUnavailable}, nil)
	resp, payload = doRequest(t, failing, "/api/search?q=radiohead")
	if resp.StatusCode != http.StatusBadGateway || payload["error"] != "Search unavailable right now. Please try again shortly." {
		t.Errorf("unexpected failure response %d %v", resp.StatusCode, payload)
	}
}

func TestReleaseHandler(t *testing.T) {
	app := newTestApp(&mockSource{release: okComputerRecord()}, nil)

	resp, payload := doRequest(t, app, "/api/releases/42")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data := payload["data"].(map[string]any)
	if data["name"] != "OK Computer" || data["reviewCount"].(float64) != 485 {
		t.Errorf("unexpected release %v", data)
	}

	resp, _ = doRequest(t, app, "/api/releases/")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a blank id, got %d", resp.StatusCode)
	}

	notFound := newTestApp(&mockSource{err: &music.UpstreamError{StatusCode: 404, Status: "404 Not Found"}}, nil)
	resp, _ = doRequest(t, notFound, "/api/releases/1")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}

	broken := newTestApp(&mockSource{err: &music.UpstreamError{StatusCode: 500, Status: "500"}}, nil)
	resp, payload = doRequest(t, broken, "/api/releases/1")
	if resp.StatusCode != http.StatusBadGateway || payload["error"] != "Unable to load release details." {
		t.Errorf("expected 502, got %d %v", resp.StatusCode, payload)
	}
}

func TestCoverHandler(t *testing.T) {
	record := okComputerRecord()
	record.CoverImage = "https://img.example/ok.jpg"
	covers := &fakeCovers{}
	app := newTestApp(&mockSource{release: record}, covers)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/releases/42/cover?size=120", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("unexpected cover response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if covers.url != record.CoverImage.String() || covers.size != 120 {
		t.Errorf("unexpected thumbnail call %q %d", covers.url, covers.size)
	}

	covers.err = errors.New("decode failed")
	resp, _ = doRequest(t, app, "/api/releases/42/cover")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502 on render failure, got %d", resp.StatusCode)
	}

	bare := newTestApp(&mockSource{release: okComputerRecord()}, covers)
	resp, _ = doRequest(t, bare, "/api/releases/42/cover")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 without a cover, got %d", resp.StatusCode)
	}
}
