package seeder

import (
	"context"
	"fmt"

	"github.com/promptelo/promptelo/internal/adapters/client"
	"github.com/promptelo/promptelo/internal/domain/heuristics"
	"github.com/promptelo/promptelo/internal/domain/rating"
	"github.com/promptelo/promptelo/internal/domain/types"
	"github.com/promptelo/promptelo/pkg/logger"
)

// verify checks the invariants the novelty pipeline promises: scores and
// percentiles stay in their declared ranges, a repeated prompt does not
// score higher than its first submission, and the server's stats reflect
// at least the prompts this run recorded.
func verify(ctx context.Context, nc *client.NoveltyClient, results []*types.Result, stats *Stats) error {
	for i, r := range results {
		if r == nil {
			continue
		}
		if r.NoveltyScore < 0 || r.NoveltyScore > 1 {
			return fmt.Errorf("%w: prompt %d novelty %f", ErrOutOfRange, i, r.NoveltyScore)
		}
		if r.Percentile < 0 || r.Percentile > 100 {
			return fmt.Errorf("%w: prompt %d percentile %f", ErrOutOfRange, i, r.Percentile)
		}
	}

	// A deliberate duplicate pair: the second submission must not come back
	// more novel than the first.
	const probe = "Verify the billing reconciliation job handles a leap day without double-charging."
	first, ok := nc.Score(ctx, probe).Result()
	if !ok {
		return ErrProbeFailed
	}
	second, ok := nc.Score(ctx, probe).Result()
	if !ok {
		return ErrProbeFailed
	}
	if second.NoveltyScore > first.NoveltyScore {
		return fmt.Errorf("%w: repeat scored %f after %f", ErrNotMonotone, second.NoveltyScore, first.NoveltyScore)
	}
	if second.SimilarCount < 1 {
		return fmt.Errorf("%w: repeat saw no similar prompts", ErrNotMonotone)
	}

	// The full local-plus-novelty aggregation must land inside the rating
	// bounds for both probes.
	scores, err := heuristics.Score(probe)
	if err != nil {
		return fmt.Errorf("scoring probe locally: %w", err)
	}
	for _, res := range []types.Result{first, second} {
		summary := rating.Aggregate(scores, rating.Available(res))
		if summary.Rating < 0 || summary.Rating > 2400 {
			return fmt.Errorf("%w: rating %d", ErrOutOfRange, summary.Rating)
		}
	}

	global, err := nc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("fetching stats: %w", err)
	}
	if global.TotalPrompts < stats.PromptsScored {
		return fmt.Errorf("%w: server reports %d prompts, run recorded %d",
			ErrStatsMismatch, global.TotalPrompts, stats.PromptsScored)
	}

	logger.Get().Info(ctx, "verification passed",
		logger.Int("corpusSize", global.TotalPrompts),
		logger.Float64("avgNovelty", global.AvgNoveltyScore),
	)
	return nil
}
