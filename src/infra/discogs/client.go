package discogs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/contre95/musevault/src/features/config"
	"github.com/contre95/musevault/src/music"
	"golang.org/x/time/rate"
)

const (
	defaultRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
	maxErrorMessage   = 200
)

// Client talks to the Discogs database API. It implements music.ReleaseSource.
type Client struct {
	httpClient  *http.Client
	config      config.Discogs
	rateLimiter *rate.Limiter
	retryDelay  time.Duration
}

// NewClient creates a Discogs client throttled to the configured request rate.
func NewClient(cfg config.Discogs) *Client {
	perMinute := max(cfg.RequestsPerMinute, 1)
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config:      cfg,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), max(cfg.Burst, 1)),
		retryDelay:  defaultRetryDelay,
	}
}

type searchResponse struct {
	Results []json.RawMessage `json:"results"`
}

// SearchReleases runs GET /database/search.
func (c *Client) SearchReleases(ctx context.Context, query music.SearchQuery) ([]music.RawRecord, error) {
	params := url.Values{}
	setParam(params, "q", query.Query)
	setParam(params, "type", query.Type)
	setParam(params, "format", query.Format)
	setParam(params, "sort", query.Sort)
	setParam(params, "sort_order", query.SortOrder)
	if query.Year > 0 {
		params.Set("year", strconv.Itoa(query.Year))
	}
	if query.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(query.PerPage))
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}

	body, err := c.getWithRetry(ctx, "/database/search", params)
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode search response: %v", music.ErrUpstreamUnavailable, err)
	}
	records := make([]music.RawRecord, 0, len(resp.Results))
	for i, item := range resp.Results {
		var record music.RawRecord
		if err := json.Unmarshal(item, &record); err != nil {
			slog.Warn("Skipping undecodable search result", "index", i, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// GetRelease runs GET /releases/{id}. An empty payload yields a nil record.
func (c *Client) GetRelease(ctx context.Context, id string) (*music.RawRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, music.ErrMissingID
	}
	body, err := c.getWithRetry(ctx, "/releases/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" || string(trimmed) == "{}" {
		return nil, nil
	}
	var record music.RawRecord
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, fmt.Errorf("%w: release %s: %v", music.ErrNormalizationFailed, id, err)
	}
	return &record, nil
}

func setParam(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func (c *Client) makeRequest(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	if params == nil {
		params = url.Values{}
	}
	if c.config.Token == "" && c.config.Key != "" && c.config.Secret != "" {
		params.Set("key", c.config.Key)
		params.Set("secret", c.config.Secret)
	}
	reqURL := strings.TrimRight(c.config.BaseURL, "/") + path
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.config.Token)
	}
	return c.httpClient.Do(req)
}

// get makes a single throttled request. The returned duration is the server's
// Retry-After hint, if any.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, time.Duration, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("%w: rate limiter: %v", music.ErrUpstreamUnavailable, err)
	}

	resp, err := c.makeRequest(ctx, path, params)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, 0, &music.UpstreamError{
				StatusCode: http.StatusGatewayTimeout,
				Status:     "Gateway Timeout",
				Message:    err.Error(),
			}
		}
		return nil, 0, fmt.Errorf("%w: %v", music.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read response body: %v", music.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := string(body)
		if len(message) > maxErrorMessage {
			message = message[:maxErrorMessage] + "..."
		}
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), &music.UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
		}
	}
	return body, 0, nil
}

func (c *Client) getWithRetry(ctx context.Context, path string, params url.Values) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		body, retryAfter, err := c.get(ctx, path, params)
		if err == nil {
			return body, nil
		}
		if attempt >= c.config.MaxRetries || !retryable(err) {
			slog.Debug("Discogs request failed", "path", path, "attempt", attempt+1, "error", err)
			return nil, err
		}

		delay := c.backoff(attempt, retryAfter)
		slog.Warn("Discogs request failed, retrying", "path", path, "attempt", attempt+1, "delay", delay, "error", err)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", music.ErrUpstreamUnavailable, ctx.Err())
		}
	}
}

// backoff doubles the base delay per attempt and adds up to 50% jitter.
func (c *Client) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, maxRetryDelay)
	}
	delay := c.retryDelay << attempt
	if delay > 0 {
		delay += time.Duration(rand.Int63n(int64(delay/2 + 1)))
	}
	return min(delay, maxRetryDelay)
}

func retryable(err error) bool {
	switch music.UpstreamStatus(err) {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func parseRetryAfter(v string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
