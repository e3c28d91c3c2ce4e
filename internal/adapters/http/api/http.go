// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/promptelo/promptelo/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Evaluate scores a prompt's novelty and records its embedding.
	Evaluate(ctx context.Context, prompt, userID string) (types.Result, error)

	// Count returns the number of stored prompts.
	Count(ctx context.Context) (int, error)

	// Stats exposes aggregate corpus statistics.
	Stats(ctx context.Context) (types.GlobalStats, error)

	// Health reports dependency reachability.
	Health(ctx context.Context) types.Health
}

// Server wires HTTP routes for the novelty API.
type Server struct {
	scoreHandler   *ScoreHandler
	statsHandler   *StatsHandler
	healthHandler  *HealthHandler
	rootHandler    *RootHandler
	limiter        *rateLimiter
	maxPromptLen   int
	rateLimitCount int
	rateLimitSpan  time.Duration
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxPromptLen caps the accepted prompt length in bytes.
func WithMaxPromptLen(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxPromptLen = n
		}
	}
}

// WithRateLimit sets the per-client budget: count requests per span.
func WithRateLimit(count int, span time.Duration) ServerOption {
	return func(s *Server) {
		if count > 0 && span > 0 {
			s.rateLimitCount = count
			s.rateLimitSpan = span
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		maxPromptLen:   10000,
		rateLimitCount: 60,
		rateLimitSpan:  time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = newRateLimiter(s.rateLimitCount, s.rateLimitSpan)
	s.scoreHandler = NewScoreHandler(deps, s.maxPromptLen)
	s.statsHandler = NewStatsHandler(deps)
	s.healthHandler = NewHealthHandler(deps)
	s.rootHandler = NewRootHandler()
	return s
}

// Register attaches all HTTP routes to mux. Health endpoints bypass the
// rate limiter so probes keep working while a client is throttled.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	limited := func(h http.HandlerFunc, endpoint string) http.HandlerFunc {
		return MetricsMiddleware(s.limiter.Middleware(h), endpoint)
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleMetrics, "healthz"))
	mux.HandleFunc("/api/v1/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/api/v1/score", limited(s.scoreHandler.HandleScore, "score"))
	mux.HandleFunc("/api/v1/stats", limited(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/", limited(s.rootHandler.HandleRoot, "root"))
}

func validateScoreRequest(req types.ScoreRequest, maxLen int) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(req.Prompt) > maxLen {
		return ErrPromptTooLong
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
