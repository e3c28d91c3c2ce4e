// Package repository defines the embedding store interface and errors.
package repository

import (
	"context"
	"time"
)

// Record is one stored prompt embedding. No raw prompt text is ever kept.
type Record struct {
	Embedding    []float64
	NoveltyScore float64
	UserID       string
	CreatedAt    time.Time
}

// Neighbor is a similarity match returned by Query.
type Neighbor struct {
	ID           int64
	Similarity   float64
	NoveltyScore float64
}

// Stats aggregates corpus statistics for the stats endpoint.
type Stats struct {
	TotalPrompts         int
	UniqueUsers          int
	AvgNoveltyScore      float64
	PercentileThresholds map[string]float64
	TopNoveltyScores     []float64
}

// Store provides append-only access to the embedding corpus.
//
// Implementations must tolerate concurrent Insert and Query calls. The
// in-memory store is exact; an approximate index behind the same interface
// is an accepted trade-off (recall may degrade, the contract does not).
type Store interface {
	// Insert appends a record. Duplicates are allowed and expected:
	// repeated prompts should trend toward lower novelty over time.
	Insert(ctx context.Context, rec Record) error

	// Query returns up to k neighbors ordered by decreasing similarity,
	// ties broken by insertion order (earlier first).
	Query(ctx context.Context, embedding []float64, k int) ([]Neighbor, error)

	// Percentile returns the percentage of stored novelty scores strictly
	// below score, in [0,100]. An empty corpus reports 50.
	Percentile(ctx context.Context, score float64) (float64, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Stats returns aggregate corpus statistics.
	Stats(ctx context.Context) (Stats, error)

	// Ping reports whether the backing medium is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
