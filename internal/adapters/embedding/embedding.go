// Package embedding turns prompt text into dense vectors via the OpenAI
// embeddings API.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/promptelo/promptelo/pkg/metrics"
)

const (
	defaultModel = openai.EmbeddingModelTextEmbedding3Small
	defaultDim   = 1536

	// The embedding models accept 8191 tokens; four characters per token is
	// a safe upper bound, so longer inputs are truncated client-side.
	maxInputChars = 8191 * 4
)

// Provider produces an embedding vector for a piece of text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Ping(ctx context.Context) error
}

// Config holds settings for the OpenAI embedding client.
type Config struct {
	APIKey     string
	Model      string        // "text-embedding-3-small" (default)
	Dim        int           // 1536 (default)
	MaxRetries int           // SDK transport retries
	Timeout    time.Duration // HTTP timeout
	BaseURL    string        // Optional (tests)
	HTTPClient *http.Client  // Optional (tests)
}

// Client implements Provider using the official OpenAI SDK.
type Client struct {
	model  string
	dim    int
	client openai.Client
}

// NewClient creates an embedding client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dim <= 0 {
		cfg.Dim = defaultDim
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		model:  cfg.Model,
		dim:    cfg.Dim,
		client: openai.NewClient(opts...),
	}, nil
}

// Embed returns the embedding for text. The input is truncated to the model's
// context limit before the call.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	if len(text) > maxInputChars {
		cut := maxInputChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	start := time.Now()
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(c.model),
	})
	metrics.RecordEmbeddingLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordEmbeddingError()
		return nil, mapAPIError(err)
	}
	if len(resp.Data) == 0 {
		metrics.RecordEmbeddingError()
		return nil, fmt.Errorf("%w: response carried no embedding data", ErrProvider)
	}

	vec := resp.Data[0].Embedding
	if len(vec) != c.dim {
		metrics.RecordEmbeddingError()
		return nil, fmt.Errorf("%w: got dimension %d, want %d", ErrProvider, len(vec), c.dim)
	}
	return vec, nil
}

// Ping verifies the API is reachable and the key is valid.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx); err != nil {
		return mapAPIError(err)
	}
	return nil
}

func mapAPIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d: %s", ErrProvider, apiErr.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}

var _ Provider = (*Client)(nil)
