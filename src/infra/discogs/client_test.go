package discogs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/contre95/musevault/src/features/config"
	"github.com/contre95/musevault/src/music"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default().Discogs
	cfg.BaseURL = server.URL
	cfg.RequestsPerMinute = 6000
	cfg.Burst = 100
	client := NewClient(cfg)
	client.retryDelay = time.Millisecond
	return client, server
}

func TestSearchReleasesSendsQueryAndHeaders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/database/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "radiohead" || q.Get("type") != "release" || q.Get("per_page") != "30" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if q.Has("year") {
			t.Errorf("year should be omitted when zero")
		}
		if r.Header.Get("User-Agent") == "" || r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing headers: %v", r.Header)
		}
		if r.Header.Get("Authorization") != "" || q.Has("key") {
			t.Errorf("no credentials expected")
		}
		w.Write([]byte(`{"pagination":{"page":1},"results":[{"id":1,"title":"Radiohead - OK Computer","year":"1997","format":["Vinyl","LP","Album"]}]}`))
	})

	results, err := client.SearchReleases(context.Background(), music.SearchQuery{Query: "radiohead", Type: "release", PerPage: 30})
	if err != nil {
		t.Fatalf("SearchReleases failed: %v", err)
	}
	if len(results) != 1 || results[0].ID.String() != "1" || results[0].Year.Value != 1997 {
		t.Fatalf("unexpected results: %+v", results)
	}
	if len(results[0].Format) != 3 || !results[0].Format[0].Flat {
		t.Errorf("expected flat formats, got %+v", results[0].Format)
	}
}

func TestSearchReleasesKeepsGoodRecordsNextToOddOnes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"id":1,"title":"Massive Attack - Mezzanine","year":1998},
			{"id":2,"title":"Air - Moon Safari","images":"none","community":"n/a","tracklist":{}},
			"garbage",
			{"id":3,"title":"Portishead - Dummy","images":[{"uri":5}]}
		]}`))
	})

	results, err := client.SearchReleases(context.Background(), music.SearchQuery{Query: "trip hop"})
	if err != nil {
		t.Fatalf("SearchReleases failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(results), results)
	}
	for i, want := range []string{"1", "2", "3"} {
		if results[i].ID.String() != want {
			t.Errorf("record %d: expected id %s, got %s", i, want, results[i].ID)
		}
	}
}

func TestAuthentication(t *testing.T) {
	var gotAuth, gotKey string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(`{"results":[]}`))
	})

	client.config.Token = "abc"
	client.config.Key = "k"
	client.config.Secret = "s"
	if _, err := client.SearchReleases(context.Background(), music.SearchQuery{Query: "x"}); err != nil {
		t.Fatalf("SearchReleases failed: %v", err)
	}
	if gotAuth != "Discogs token=abc" || gotKey != "" {
		t.Errorf("token should win: auth=%q key=%q", gotAuth, gotKey)
	}

	client.config.Token = ""
	if _, err := client.SearchReleases(context.Background(), music.SearchQuery{Query: "x"}); err != nil {
		t.Fatalf("SearchReleases failed: %v", err)
	}
	if gotAuth != "" || gotKey != "k" {
		t.Errorf("expected key/secret params: auth=%q key=%q", gotAuth, gotKey)
	}
}

func TestGetReleaseErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantNil bool
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Release not found."}`, wantErr: music.ErrUpstreamUnavailable},
		{name: "malformed", status: http.StatusOK, body: `{"id": 1, "title": `, wantErr: music.ErrNormalizationFailed},
		{name: "null body", status: http.StatusOK, body: `null`, wantNil: true},
		{name: "empty body", status: http.StatusOK, body: ``, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			record, err := client.GetRelease(context.Background(), "42")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil && record != nil {
				t.Errorf("expected nil record, got %+v", record)
			}
		})
	}
}

func TestGetReleaseNotFoundCarriesStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := client.GetRelease(context.Background(), "999")
	if music.UpstreamStatus(err) != http.StatusNotFound {
		t.Errorf("expected status 404, got %d (%v)", music.UpstreamStatus(err), err)
	}
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id": 42, "title": "OK Computer"}`))
	})

	record, err := client.GetRelease(context.Background(), "42")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if record == nil || record.Title.String() != "OK Computer" {
		t.Errorf("unexpected record %+v", record)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := client.SearchReleases(context.Background(), music.SearchQuery{Query: "x"}); !errors.Is(err, music.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single call, got %d", calls.Load())
	}
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.SearchReleases(context.Background(), music.SearchQuery{Query: "x"})
	if music.UpstreamStatus(err) != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if want := int32(client.config.MaxRetries + 1); calls.Load() != want {
		t.Errorf("expected %d calls, got %d", want, calls.Load())
	}
}
