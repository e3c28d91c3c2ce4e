package seeder

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/promptelo/promptelo/pkg/logger"
)

// Prompt templates spanning the heuristic signal space: some carry file
// paths and error text, some constraints, some are deliberately vague so
// the seeded corpus covers low scores too.
var promptTemplates = []string{
	"Write a function to parse %s log lines and count errors per hour. The input is newline-delimited JSON.",
	"Refactor internal/%s/handler.go so the retry loop uses exponential backoff capped at 30s.",
	"Debug why the %s worker crashes with 'panic: close of closed channel' after the queue drains.",
	"Explain the difference between optimistic and pessimistic locking, then apply it to the %s table.",
	"Fix it.",
	"Make the %s thing better please.",
	"Given a CSV with 2M rows, write a streaming deduplicator keyed on column 3. Memory must stay under 256MB. Project %s.",
	"What if we modeled the %s scheduler as a priority queue instead of polling? Sketch the design.",
	"Add tests for the %s module covering the empty-input and unicode edge cases.",
	"Compare gRPC and REST for the %s service boundary and recommend one with reasons.",
	"Help me with my code %s.",
	"Implement rate limiting for the %s endpoint: 100 requests per minute per API key, with Retry-After on rejection.",
}

var userPool = []string{}

func init() {
	for i := 0; i < 16; i++ {
		userPool = append(userPool, uuid.New().String())
	}
}

const randomDivisor = 1_000_000

// randomFloat returns a random float64 in [0,1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomDivisor))
	return float64(n.Int64()) / float64(randomDivisor)
}

func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// submission pairs a prompt with its anonymous author.
type submission struct {
	Prompt string
	UserID string
}

// generatePrompts creates count prompts with a controlled duplicate rate so
// the seeded corpus exercises both ends of the novelty scale.
func generatePrompts(ctx context.Context, count int, stats *Stats) []submission {
	logger.Get().Info(ctx, "generating prompts", logger.Int("count", count))

	subs := make([]submission, 0, count)
	for i := 0; i < count; i++ {
		tmpl := promptTemplates[randomIndex(len(promptTemplates))]

		// One in five prompts reuses a fixed token instead of a fresh one,
		// seeding near-duplicates on purpose.
		token := uuid.New().String()[:8]
		if randomFloat() < 0.2 {
			token = "billing"
		}

		prompt := tmpl
		if strings.Contains(tmpl, "%s") {
			prompt = fmt.Sprintf(tmpl, token)
		}
		subs = append(subs, submission{
			Prompt: prompt,
			UserID: userPool[randomIndex(len(userPool))],
		})
	}
	stats.PromptsGenerated = len(subs)
	return subs
}
