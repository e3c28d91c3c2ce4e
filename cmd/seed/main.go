// The seed command populates a community server with generated prompts and
// verifies the novelty invariants end to end.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/promptelo/promptelo/internal/seeder"
	"github.com/promptelo/promptelo/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumPrompts = 200
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8000", "Base URL of the community server")
		numPrompts = flag.Int("prompts", defaultNumPrompts, "Number of prompts to generate and submit")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &seeder.Config{
		BaseURL:    *baseURL,
		NumPrompts: *numPrompts,
		Workers:    *workers,
		Timeout:    *timeout,
		Verbose:    *verbose,
	}

	if err := seeder.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "seed run failed", logger.Error(err))
		os.Exit(1)
	}
}
