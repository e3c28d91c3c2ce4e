package seeder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/promptelo/promptelo/internal/adapters/client"
	"github.com/promptelo/promptelo/internal/domain/types"
	"github.com/promptelo/promptelo/pkg/logger"
)

// Run executes a complete seeding pass: health check, generation,
// concurrent submission, then verification against the server's own stats.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting corpus seed",
		logger.String("baseURL", config.BaseURL),
		logger.Int("prompts", config.NumPrompts),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
	)

	nc := client.New(config.BaseURL, client.WithTimeout(config.Timeout))

	health, err := nc.Health(ctx)
	if err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}
	if health.Status != "healthy" {
		return fmt.Errorf("%w: status %q", ErrServiceDegraded, health.Status)
	}

	subs := generatePrompts(ctx, config.NumPrompts, stats)

	results := submitPrompts(ctx, config, nc, subs, stats)

	if err := verify(ctx, nc, results, stats); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logger.Get().Info(ctx, "seed complete",
		logger.Int("scored", stats.PromptsScored),
		logger.Int("failed", stats.PromptsFailed),
		logger.Int("novel", stats.NovelCount),
		logger.String("duration", stats.Duration.String()),
	)
	return nil
}

// submitPrompts drives the submissions through a bounded worker pool and
// returns every verdict in submission order. Failed submissions leave a nil
// slot so verification can skip them.
func submitPrompts(ctx context.Context, config *Config, nc *client.NoveltyClient, subs []submission, stats *Stats) []*types.Result {
	workers := config.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(subs) {
		workers = len(subs)
	}

	results := make([]*types.Result, len(subs))
	jobs := make(chan int)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcome := nc.Score(ctx, subs[i].Prompt)
				res, ok := outcome.Result()

				mu.Lock()
				stats.PromptsSubmitted++
				if ok {
					results[i] = &res
					stats.PromptsScored++
					if res.IsNovel {
						stats.NovelCount++
					}
				} else {
					stats.PromptsFailed++
				}
				mu.Unlock()

				if config.Verbose && ok {
					logger.Get().Debug(ctx, "prompt scored",
						logger.Int("index", i),
						logger.Float64("novelty", res.NoveltyScore),
						logger.Float64("percentile", res.Percentile),
					)
				}
			}
		}()
	}

	for i := range subs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}
