// The score command is the prompt-submit hook. It reads a JSON payload with
// a "prompt" field on stdin, rates the prompt, and prints a systemMessage
// payload for display. It must never block a submission: every failure path
// exits zero with no output.
package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/promptelo/promptelo/internal/adapters/client"
	"github.com/promptelo/promptelo/internal/config"
	"github.com/promptelo/promptelo/internal/domain/heuristics"
	"github.com/promptelo/promptelo/internal/domain/rating"
	"github.com/promptelo/promptelo/pkg/logger"
)

const hookTimeout = 10 * time.Second

// hookInput is the payload delivered on stdin.
type hookInput struct {
	Prompt string `json:"prompt"`
}

// hookOutput is what the hook prints for the caller to display.
type hookOutput struct {
	SystemMessage string `json:"systemMessage"`
}

func main() {
	// Stdout belongs to the badge payload; all logging goes to stderr.
	if err := logger.InitTo(os.Stderr); err != nil {
		os.Exit(0)
	}
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	var in hookInput
	if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
		log.Debug(ctx, "unreadable hook input", logger.Error(err))
		return
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Debug(ctx, "config load failed, using defaults", logger.Error(err))
		cfg = config.New()
	}

	scores, err := heuristics.Score(in.Prompt)
	if err != nil {
		log.Debug(ctx, "heuristic scoring failed", logger.Error(err))
		return
	}

	nc := client.New(cfg.ServerURL,
		client.WithTimeout(time.Duration(cfg.TimeoutS*float64(time.Second))),
		client.WithUserID(cfg.UserID),
		client.WithLogger(log),
	)
	outcome := nc.Score(ctx, in.Prompt)

	summary := rating.Aggregate(scores, outcome)

	out, err := json.Marshal(hookOutput{SystemMessage: summary.Badge()})
	if err != nil {
		log.Debug(ctx, "encoding hook output failed", logger.Error(err))
		return
	}
	_, _ = os.Stdout.Write(out)
	_, _ = os.Stdout.Write([]byte("\n"))
}
