// Package client is the hook-side consumer of the community novelty API.
// It is built to fail soft: a slow or absent server must never block a
// prompt submission.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/promptelo/promptelo/internal/domain/rating"
	"github.com/promptelo/promptelo/internal/domain/types"
	"github.com/promptelo/promptelo/pkg/logger"
)

const defaultTimeout = 5 * time.Second

// NoveltyClient talks to the community server.
type NoveltyClient struct {
	baseURL    string
	userID     string
	httpClient *http.Client
	logger     logger.Logger
}

// Option applies a configuration option to the client.
type Option func(*NoveltyClient)

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *NoveltyClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserID attaches an anonymous user id to score submissions.
func WithUserID(id string) Option {
	return func(c *NoveltyClient) {
		c.userID = id
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *NoveltyClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *NoveltyClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client against baseURL.
func New(baseURL string, opts ...Option) *NoveltyClient {
	c := &NoveltyClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get()
	}
	return c
}

// Score submits a prompt and returns the novelty outcome. Any failure,
// timeout, transport error, non-2xx status or malformed body, yields an
// unavailable outcome rather than an error: the caller's local scoring
// continues without novelty.
func (c *NoveltyClient) Score(ctx context.Context, prompt string) rating.Outcome {
	body, err := json.Marshal(types.ScoreRequest{Prompt: prompt, UserID: c.userID})
	if err != nil {
		c.logger.Debug(ctx, "encoding score request failed", logger.Error(err))
		return rating.Unavailable()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/score", bytes.NewReader(body))
	if err != nil {
		c.logger.Debug(ctx, "building score request failed", logger.Error(err))
		return rating.Unavailable()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "novelty server unreachable", logger.Error(err))
		return rating.Unavailable()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug(ctx, "novelty server refused request", logger.Int("status", resp.StatusCode))
		return rating.Unavailable()
	}

	var sr types.ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		c.logger.Debug(ctx, "decoding score response failed", logger.Error(err))
		return rating.Unavailable()
	}
	return rating.Available(sr.Novelty)
}

// Stats fetches aggregate corpus statistics.
func (c *NoveltyClient) Stats(ctx context.Context) (types.GlobalStats, error) {
	var st types.GlobalStats
	if err := c.getJSON(ctx, "/api/v1/stats", &st); err != nil {
		return types.GlobalStats{}, err
	}
	return st, nil
}

// Health fetches the server health report.
func (c *NoveltyClient) Health(ctx context.Context) (types.Health, error) {
	var h types.Health
	if err := c.getJSON(ctx, "/api/v1/health", &h); err != nil {
		return types.Health{}, err
	}
	return h, nil
}

func (c *NoveltyClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: %w: status %d", path, ErrUnexpectedStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: decode: %w", path, err)
	}
	return nil
}
