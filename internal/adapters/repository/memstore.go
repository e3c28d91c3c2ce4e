package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/promptelo/promptelo/internal/domain/novelty"
	"github.com/promptelo/promptelo/pkg/metrics"
)

// MemStore keeps the corpus in process memory. Queries do an exact cosine
// scan over every stored vector; percentile and stats queries go through the
// rank index. Suitable for single-node deployments and tests.
type MemStore struct {
	mu      sync.RWMutex
	dim     int
	records []Record
	ranks   rankIndex
	users   map[string]struct{}
	sum     float64
	closed  bool
}

// NewMemStore returns an empty store expecting vectors of the given
// dimension. dim 0 accepts the first inserted vector's dimension.
func NewMemStore(dim int) *MemStore {
	return &MemStore{
		dim:   dim,
		users: make(map[string]struct{}),
	}
}

func (m *MemStore) Insert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(rec.Embedding) == 0 {
		return ErrEmptyVector
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	if m.dim == 0 {
		m.dim = len(rec.Embedding)
	}
	if len(rec.Embedding) != m.dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimMismatch, len(rec.Embedding), m.dim)
	}

	m.records = append(m.records, rec)
	m.ranks.add(rec.NoveltyScore)
	m.sum += rec.NoveltyScore
	if rec.UserID != "" {
		m.users[rec.UserID] = struct{}{}
	}
	metrics.UpdateStoreRecords(len(m.records))
	return nil
}

func (m *MemStore) Query(ctx context.Context, embedding []float64, k int) ([]Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, ErrInvalidLimit
	}
	if len(embedding) == 0 {
		return nil, ErrEmptyVector
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	if m.dim != 0 && len(embedding) != m.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimMismatch, len(embedding), m.dim)
	}

	neighbors := make([]Neighbor, 0, len(m.records))
	for i := range m.records {
		neighbors = append(neighbors, Neighbor{
			ID:           int64(i),
			Similarity:   novelty.Cosine(embedding, m.records[i].Embedding),
			NoveltyScore: m.records[i].NoveltyScore,
		})
	}
	sort.SliceStable(neighbors, func(a, b int) bool {
		if neighbors[a].Similarity != neighbors[b].Similarity {
			return neighbors[a].Similarity > neighbors[b].Similarity
		}
		return neighbors[a].ID < neighbors[b].ID
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

func (m *MemStore) Percentile(ctx context.Context, score float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrStoreClosed
	}
	total := m.ranks.size()
	if total == 0 {
		return 50, nil
	}
	return float64(m.ranks.countBelow(score)) / float64(total) * 100, nil
}

func (m *MemStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.records), nil
}

func (m *MemStore) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Stats{}, ErrStoreClosed
	}

	st := Stats{
		TotalPrompts:         len(m.records),
		UniqueUsers:          len(m.users),
		PercentileThresholds: map[string]float64{},
		TopNoveltyScores:     m.ranks.topDesc(10),
	}
	if len(m.records) > 0 {
		st.AvgNoveltyScore = m.sum / float64(len(m.records))
	}
	for _, p := range []struct {
		label string
		q     float64
	}{{"p50", 0.50}, {"p75", 0.75}, {"p90", 0.90}, {"p95", 0.95}, {"p99", 0.99}} {
		st.PercentileThresholds[p.label] = m.ranks.quantile(p.q, 0)
	}
	return st, nil
}

func (m *MemStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrStoreClosed
	}
	return ctx.Err()
}

func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
