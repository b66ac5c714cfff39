package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the full application configuration
type Config struct {
	Qdrant       QdrantConfig       `yaml:"qdrant"`
	Embedding    EmbeddingConfig    `yaml:"embedding"`
	Verification VerificationConfig `yaml:"verification"`
	Thresholds   ThresholdsConfig   `yaml:"thresholds"`
	Defaults     DefaultsConfig     `yaml:"defaults"`
	RateLimits   RateLimitsConfig   `yaml:"rate_limits"`
}

// QdrantConfig contains Qdrant connection settings
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// EmbeddingConfig contains embedding provider settings
type EmbeddingConfig struct {
	Primary  ProviderConfig `yaml:"primary"`
	Fallback ProviderConfig `yaml:"fallback"`
	// Dimensions is the configured index dimensionality. Every vector
	// entering the index is normalized to exactly this length.
	Dimensions int `yaml:"dimensions"`
}

// ProviderConfig contains settings for an embedding or LLM provider
type ProviderConfig struct {
	Provider string `yaml:"provider"` // "gemini" or "openai"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// VerificationConfig contains secondary AI verification settings
type VerificationConfig struct {
	Enabled       bool           `yaml:"enabled"`
	LLM           ProviderConfig `yaml:"llm"`
	TopK          int            `yaml:"top_k"`
	MinConfidence float64        `yaml:"min_confidence"`
}

// ThresholdsConfig contains the similarity band cutoffs.
// High must always be >= Medium.
type ThresholdsConfig struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
}

// DefaultsConfig contains default behavior settings
type DefaultsConfig struct {
	MaxCandidates        int `yaml:"max_candidates"`
	MinIssueChars        int `yaml:"min_issue_chars"`
	CommentCooldownHours int `yaml:"comment_cooldown_hours"`
	ExistingVectorsBound int `yaml:"existing_vectors_bound"`
}

// RateLimitsConfig contains rate limiting settings
type RateLimitsConfig struct {
	GitHubRPS    int `yaml:"github_requests_per_second"`
	EmbeddingRPS int `yaml:"embedding_requests_per_second"`
	QdrantRPS    int `yaml:"qdrant_requests_per_second"`
}

// Load reads and parses config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&cfg)
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// FindConfigPath looks for config in common locations
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	paths := []string{
		".github/dedupe.yaml",
		".github/dedupe.yml",
		"dedupe.yaml",
		"dedupe.yml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ".config", "gh-dedupe", "config.yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}

	return ""
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Thresholds.Medium == 0 {
		cfg.Thresholds.Medium = 0.55
	}
	if cfg.Thresholds.High == 0 {
		cfg.Thresholds.High = 0.85
	}
	if cfg.Verification.TopK == 0 {
		cfg.Verification.TopK = 3
	}
	if cfg.Verification.MinConfidence == 0 {
		cfg.Verification.MinConfidence = 0.75
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1024
	}
	if cfg.Defaults.MaxCandidates == 0 {
		cfg.Defaults.MaxCandidates = 10
	}
	if cfg.Defaults.MinIssueChars == 0 {
		cfg.Defaults.MinIssueChars = 10
	}
	if cfg.Defaults.CommentCooldownHours == 0 {
		cfg.Defaults.CommentCooldownHours = 1
	}
	if cfg.Defaults.ExistingVectorsBound == 0 {
		cfg.Defaults.ExistingVectorsBound = 100
	}
	if cfg.RateLimits.GitHubRPS == 0 {
		cfg.RateLimits.GitHubRPS = 10
	}
	if cfg.RateLimits.EmbeddingRPS == 0 {
		cfg.RateLimits.EmbeddingRPS = 5
	}
	if cfg.RateLimits.QdrantRPS == 0 {
		cfg.RateLimits.QdrantRPS = 50
	}
}

// CollectionName returns the configured collection, or the org-derived default
func (cfg *Config) CollectionName(org string) string {
	if cfg.Qdrant.Collection != "" {
		return cfg.Qdrant.Collection
	}
	return fmt.Sprintf("%s_issues", org)
}
