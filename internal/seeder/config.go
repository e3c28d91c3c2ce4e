// Package seeder populates a community server with generated prompts and
// verifies the novelty pipeline end to end.
package seeder

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Base URL of the community server
	NumPrompts int           // Number of prompts to generate
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Enable verbose logging
}

// Stats holds seeding run statistics.
type Stats struct {
	PromptsGenerated int
	PromptsSubmitted int
	PromptsScored    int
	PromptsFailed    int
	NovelCount       int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
