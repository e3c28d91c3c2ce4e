// Package types contains the wire types shared by the community server and
// the scoring hook client.
package types

import "time"

// Result is the novelty verdict for a single submission.
type Result struct {
	// NoveltyScore is in [0,1]; 1 means nothing similar has been seen.
	NoveltyScore float64 `json:"novelty_score"`
	// Percentile ranks the score against the stored corpus, in [0,100].
	Percentile float64 `json:"percentile"`
	// SimilarCount is the number of stored prompts above the similarity threshold.
	SimilarCount int `json:"similar_count"`
	// IsNovel is true when the percentile clears the configured cutoff.
	IsNovel bool `json:"is_novel"`
}

// ScoreRequest is the body of POST /api/v1/score.
type ScoreRequest struct {
	Prompt string `json:"prompt"`
	UserID string `json:"user_id,omitempty"`
}

// ScoreResponse is the body returned by POST /api/v1/score.
type ScoreResponse struct {
	Novelty      Result    `json:"novelty"`
	TotalPrompts int       `json:"total_prompts"`
	Timestamp    time.Time `json:"timestamp"`
}

// GlobalStats aggregates corpus statistics without exposing any prompt.
type GlobalStats struct {
	TotalPrompts         int                `json:"total_prompts"`
	UniqueUsers          int                `json:"unique_users"`
	AvgNoveltyScore      float64            `json:"avg_novelty_score"`
	PercentileThresholds map[string]float64 `json:"percentile_thresholds"`
	TopNoveltyScores     []float64          `json:"top_novelty_scores"`
}

// Health is the body of GET /api/v1/health.
type Health struct {
	Status            string `json:"status"`
	DatabaseConnected bool   `json:"database_connected"`
	EmbeddingService  bool   `json:"embedding_service"`
	Version           string `json:"version"`
}
