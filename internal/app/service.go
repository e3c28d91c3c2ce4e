// Package service provides the core novelty service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/promptelo/promptelo/internal/adapters/embedding"
	"github.com/promptelo/promptelo/internal/adapters/repository"
	"github.com/promptelo/promptelo/internal/domain/novelty"
	"github.com/promptelo/promptelo/internal/domain/types"
	"github.com/promptelo/promptelo/pkg/logger"
	"github.com/promptelo/promptelo/pkg/metrics"
)

// Service evaluates prompt novelty against the shared corpus.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	embedder embedding.Provider

	neighborLimit       int
	similarityThreshold float64
	noveltyCutoff       float64

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the embedding store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithEmbedder sets the embedding provider.
func WithEmbedder(p embedding.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.embedder = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNeighborLimit caps how many neighbors are fetched per evaluation.
func WithNeighborLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.neighborLimit = n
		}
	}
}

// WithSimilarityThreshold sets the minimum similarity for a stored prompt to
// count as "similar".
func WithSimilarityThreshold(t float64) Option {
	return func(s *Service) {
		if t >= 0 && t <= 1 {
			s.similarityThreshold = t
		}
	}
}

// WithNoveltyCutoff sets the percentile above which a prompt is flagged novel.
func WithNoveltyCutoff(p float64) Option {
	return func(s *Service) {
		if p >= 0 && p <= 100 {
			s.noveltyCutoff = p
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		neighborLimit:       100,
		similarityThreshold: 0.70,
		noveltyCutoff:       85,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates dependencies and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.embedder == nil {
		return ErrNoEmbedder
	}

	s.started = true
	s.logger.Info(ctx, "novelty service started",
		logger.Int("neighborLimit", s.neighborLimit),
		logger.Float64("similarityThreshold", s.similarityThreshold),
		logger.Float64("noveltyCutoff", s.noveltyCutoff),
	)
	return nil
}

// Stop shuts the service down and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "novelty service stopped")
}

// Evaluate embeds the prompt, scores it against the corpus as it stood
// before this call, then records it. The evaluated prompt never sees itself
// as a neighbor, so a repeated prompt can only score lower over time.
func (s *Service) Evaluate(ctx context.Context, prompt, userID string) (types.Result, error) {
	if err := s.ready(); err != nil {
		return types.Result{}, err
	}

	vec, err := s.embedder.Embed(ctx, prompt)
	if err != nil {
		metrics.RecordNoveltyRequest("embed_error")
		return types.Result{}, err
	}

	neighbors, err := s.store.Query(ctx, vec, s.neighborLimit)
	if err != nil {
		metrics.RecordNoveltyRequest("store_error")
		return types.Result{}, err
	}

	similarities := make([]float64, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Similarity >= s.similarityThreshold {
			similarities = append(similarities, n.Similarity)
		}
	}

	score := novelty.Score(similarities)
	percentile, err := s.store.Percentile(ctx, score)
	if err != nil {
		metrics.RecordNoveltyRequest("store_error")
		return types.Result{}, err
	}

	result := types.Result{
		NoveltyScore: score,
		Percentile:   percentile,
		SimilarCount: len(similarities),
		IsNovel:      percentile >= s.noveltyCutoff,
	}

	// Recording is best-effort: a failed insert must not cost the caller
	// the verdict already computed.
	rec := repository.Record{
		Embedding:    vec,
		NoveltyScore: score,
		UserID:       userID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		metrics.RecordStoreInsertError()
		s.logger.Warn(ctx, "recording prompt embedding failed", logger.Error(err))
	}

	metrics.RecordPromptScored(score)
	metrics.RecordNoveltyRequest("ok")
	return result, nil
}

// ready reports whether Start completed; every serving method checks it so a
// miswired service fails with a clear error instead of a nil dereference.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Count returns the number of stored prompts.
func (s *Service) Count(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.store.Count(ctx)
}

// Stats returns aggregate corpus statistics.
func (s *Service) Stats(ctx context.Context) (types.GlobalStats, error) {
	if err := s.ready(); err != nil {
		return types.GlobalStats{}, err
	}
	st, err := s.store.Stats(ctx)
	if err != nil {
		return types.GlobalStats{}, err
	}
	return types.GlobalStats{
		TotalPrompts:         st.TotalPrompts,
		UniqueUsers:          st.UniqueUsers,
		AvgNoveltyScore:      st.AvgNoveltyScore,
		PercentileThresholds: st.PercentileThresholds,
		TopNoveltyScores:     st.TopNoveltyScores,
	}, nil
}

// Health reports the reachability of the store and the embedding provider.
func (s *Service) Health(ctx context.Context) types.Health {
	if err := s.ready(); err != nil {
		return types.Health{Status: "degraded", Version: Version}
	}
	h := types.Health{Status: "healthy", Version: Version}
	if err := s.store.Ping(ctx); err != nil {
		h.Status = "degraded"
	} else {
		h.DatabaseConnected = true
	}
	if err := s.embedder.Ping(ctx); err != nil {
		h.Status = "degraded"
	} else {
		h.EmbeddingService = true
	}
	return h
}
