// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers file and env values on top.
// - All loaders accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ProfileTTL is the freshness window of aggregated Codeforces profiles.
	ProfileTTL time.Duration `koanf:"profile_ttl"`

	// StatsTTL is the freshness window of multi-platform solved counts.
	StatsTTL time.Duration `koanf:"stats_ttl"`

	// LeetCodeTTL is the freshness window of LeetCode profiles.
	LeetCodeTTL time.Duration `koanf:"leetcode_ttl"`

	// ProblemsetTTL is the freshness window of the global problem catalog.
	ProblemsetTTL time.Duration `koanf:"problemset_ttl"`

	// UpstreamTimeout bounds every judge API request.
	UpstreamTimeout time.Duration `koanf:"upstream_timeout"`

	// UpstreamRPS throttles requests per judge client.
	UpstreamRPS float64 `koanf:"upstream_rps"`

	// SubmissionCount caps the submission history fetched per handle.
	SubmissionCount int `koanf:"submission_count"`

	// Judge endpoints; overridable for tests and mirrors.
	CodeforcesBaseURL  string `koanf:"codeforces_base_url"`
	LeetCodeGraphQLURL string `koanf:"leetcode_graphql_url"`
	AtCoderBaseURL     string `koanf:"atcoder_base_url"`
	CodeChefBaseURL    string `koanf:"codechef_base_url"`

	// StatsRateLimit and StatsRateWindow bound /api/stats per client IP.
	StatsRateLimit  int           `koanf:"stats_rate_limit"`
	StatsRateWindow time.Duration `koanf:"stats_rate_window"`

	// LLM settings for coaching advice. An empty key selects the offline fallback.
	LLMBaseURL   string `koanf:"llm_base_url"`
	LLMAPIKey    string `koanf:"llm_api_key"`
	LLMModel     string `koanf:"llm_model"`
	LLMMaxTokens int    `koanf:"llm_max_tokens"`

	// Metrics settings. Labels and buckets are read from the YAML file only.
	MetricsEnabled   bool              `koanf:"metrics_enabled"`
	MetricsNamespace string            `koanf:"metrics_namespace"`
	MetricsSubsystem string            `koanf:"metrics_subsystem"`
	MetricsRefresh   time.Duration     `koanf:"metrics_refresh"`
	MetricsLabels    map[string]string `koanf:"metrics_labels"`
	MetricsBuckets   []float64         `koanf:"metrics_buckets"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		ProfileTTL:         20 * time.Minute,
		StatsTTL:           time.Hour,
		LeetCodeTTL:        30 * time.Minute,
		ProblemsetTTL:      24 * time.Hour,
		UpstreamTimeout:    15 * time.Second,
		UpstreamRPS:        4,
		SubmissionCount:    10_000,
		CodeforcesBaseURL:  "https://codeforces.com/api",
		LeetCodeGraphQLURL: "https://leetcode.com/graphql",
		AtCoderBaseURL:     "https://kenkoooo.com/atcoder/atcoder-api/v3",
		CodeChefBaseURL:    "https://www.codechef.com/api",
		StatsRateLimit:     12,
		StatsRateWindow:    time.Minute,
		LLMBaseURL:         "https://api.openai.com/v1",
		LLMModel:           "gpt-3.5-turbo",
		LLMMaxTokens:       300,
		MetricsEnabled:     true,
		MetricsNamespace:   "cpstats",
		MetricsRefresh:     10 * time.Second,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ProfileTTL <= 0 || c.StatsTTL <= 0 || c.LeetCodeTTL <= 0:
		return fmt.Errorf("%w: cache ttls must be positive", ErrInvalidConfig)
	case c.ProblemsetTTL < c.ProfileTTL:
		return fmt.Errorf("%w: problemset_ttl must not be shorter than profile_ttl", ErrInvalidConfig)
	case c.UpstreamTimeout <= 0:
		return fmt.Errorf("%w: upstream_timeout must be positive", ErrInvalidConfig)
	case c.SubmissionCount <= 0:
		return fmt.Errorf("%w: submission_count must be positive", ErrInvalidConfig)
	case c.StatsRateLimit <= 0 || c.StatsRateWindow <= 0:
		return fmt.Errorf("%w: stats rate limit must be positive", ErrInvalidConfig)
	case c.CodeforcesBaseURL == "":
		return fmt.Errorf("%w: codeforces_base_url must not be empty", ErrInvalidConfig)
	case c.MetricsRefresh <= 0:
		return fmt.Errorf("%w: metrics_refresh must be positive", ErrInvalidConfig)
	}
	return nil
}
