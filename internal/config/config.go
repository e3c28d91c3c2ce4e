// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains configuration for both the community server and the
// client-side scoring hook. A single struct keeps the YAML file shared
// between the two binaries.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// DatabaseURL selects the Postgres/pgvector store when set.
	// Empty means the in-memory store.
	DatabaseURL string `koanf:"database_url"`

	// OpenAIAPIKey authenticates the embedding provider.
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// EmbeddingModel names the embedding model.
	EmbeddingModel string `koanf:"embedding_model"`

	// EmbeddingDim is the expected embedding dimensionality.
	EmbeddingDim int `koanf:"embedding_dim"`

	// NeighborLimit caps the number of nearest neighbors fetched per query.
	NeighborLimit int `koanf:"neighbor_limit"`

	// SimilarityThreshold is the minimum cosine similarity for a stored
	// embedding to count as a similar prompt.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// NoveltyCutoffPercentile marks a prompt as novel at or above this percentile.
	NoveltyCutoffPercentile float64 `koanf:"novelty_cutoff_percentile"`

	// MaxPromptLen bounds accepted prompt length in bytes.
	MaxPromptLen int `koanf:"max_prompt_len"`

	// RateLimitRequests and RateLimitWindowS bound per-client request rates.
	RateLimitRequests int `koanf:"rate_limit_requests"`
	RateLimitWindowS  int `koanf:"rate_limit_window_s"`

	// ServerURL is the community server consumed by the scoring hook.
	ServerURL string `koanf:"server_url"`

	// TimeoutS is the hook-side request timeout in seconds.
	TimeoutS float64 `koanf:"timeout_s"`

	// UserID optionally tags submissions for personal stats.
	UserID string `koanf:"user_id"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":8000",
		EmbeddingModel:          "text-embedding-3-small",
		EmbeddingDim:            1536,
		NeighborLimit:           100,
		SimilarityThreshold:     0.70,
		NoveltyCutoffPercentile: 85.0,
		MaxPromptLen:            10_000,
		RateLimitRequests:       60,
		RateLimitWindowS:        60,
		ServerURL:               "https://promptelo-api.onrender.com",
		TimeoutS:                5.0,
	}
}
