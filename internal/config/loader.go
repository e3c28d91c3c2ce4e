package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML): PROMPTELO_CONFIG if set, else ~/.promptelo/config.yaml if present
//  3. env (prefix PROMPTELO_)
//
// The timeout and server URL in effect at call time come straight from the
// loaded config; nothing caches them.
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := configFilePath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Environment variables: PROMPTELO_ADDR, PROMPTELO_SERVER_URL, ...
	// Map env keys like PROMPTELO_TIMEOUT_S -> timeout_s (flat keys).
	envProvider := env.Provider("PROMPTELO_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "promptelo_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// configFilePath resolves the YAML config file. PROMPTELO_CONFIG wins;
// otherwise the persisted hook config under the home directory is used
// when it exists.
func configFilePath() string {
	if path := os.Getenv("PROMPTELO_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".promptelo", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TimeoutS <= 0:
		return fmt.Errorf("%w: timeout_s must be positive", ErrInvalidConfig)
	case c.NeighborLimit < 1:
		return fmt.Errorf("%w: neighbor_limit must be at least 1", ErrInvalidConfig)
	case c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1:
		return fmt.Errorf("%w: similarity_threshold must be in [0,1]", ErrInvalidConfig)
	case c.NoveltyCutoffPercentile < 0 || c.NoveltyCutoffPercentile > 100:
		return fmt.Errorf("%w: novelty_cutoff_percentile must be in [0,100]", ErrInvalidConfig)
	case c.MaxPromptLen < 1:
		return fmt.Errorf("%w: max_prompt_len must be positive", ErrInvalidConfig)
	}
	return nil
}
