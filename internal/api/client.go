// Package api is the HTTP/JSON client for the clickrush backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is used when no backend URL is configured.
const DefaultBaseURL = "http://localhost:8081"

const (
	leaderboardEndpoint  = "/api/leaderboard"
	achievementsEndpoint = "/api/achievements"
	scoresEndpoint       = "/api/scores"
)

// ErrNotFound is wrapped by StatusError for 404 responses.
var ErrNotFound = errors.New("not found")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method   string
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: API returned status code: %d, response: %s", e.Method, e.Endpoint, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client talks to the backend. Safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// NewClient returns a client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: map[string]string{
			"Accept": "application/json",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ResolveBaseURL normalises a configured backend URL: empty means the
// default, a missing scheme means http, trailing slashes are dropped.
func ResolveBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultBaseURL, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid backend URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid backend URL %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid backend URL %q: missing host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{
			Method:   method,
			Endpoint: endpoint,
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(responseBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// An empty body leaves out at its zero value.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// Leaderboard returns the ranked scores.
func (c *Client) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, leaderboardEndpoint, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Achievements returns the full achievement catalog.
func (c *Client) Achievements(ctx context.Context) ([]Achievement, error) {
	var achievements []Achievement
	if err := c.do(ctx, http.MethodGet, achievementsEndpoint, nil, &achievements); err != nil {
		return nil, err
	}
	return achievements, nil
}

// UserAchievements returns what username has unlocked. A 404 means the user
// has no data yet and yields an empty list.
func (c *Client) UserAchievements(ctx context.Context, username string) ([]Achievement, error) {
	endpoint := achievementsEndpoint + "/" + url.PathEscape(username)
	var achievements []Achievement
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &achievements); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Achievement{}, nil
		}
		return nil, err
	}
	return achievements, nil
}

// SubmitScore posts a finished game.
func (c *Client) SubmitScore(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	var result ScoreResult
	if err := c.do(ctx, http.MethodPost, scoresEndpoint, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func formatCPS(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
