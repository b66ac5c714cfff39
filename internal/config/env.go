package config

import (
	"os"
	"regexp"
	"strconv"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if env var not set
	})
}

// expandConfigEnvVars expands environment variables in config string fields
func expandConfigEnvVars(cfg *Config) {
	cfg.Qdrant.URL = expandEnvVars(cfg.Qdrant.URL)
	cfg.Qdrant.APIKey = expandEnvVars(cfg.Qdrant.APIKey)
	cfg.Embedding.Primary.APIKey = expandEnvVars(cfg.Embedding.Primary.APIKey)
	cfg.Embedding.Fallback.APIKey = expandEnvVars(cfg.Embedding.Fallback.APIKey)
	cfg.Verification.LLM.APIKey = expandEnvVars(cfg.Verification.LLM.APIKey)
}

// applyEnvOverrides lets the recognized environment variables override the
// file values, so GitHub Actions workflows can tune behavior without editing
// the checked-in config.
func applyEnvOverrides(cfg *Config) {
	if v, ok := envFloat("SIMILARITY_THRESHOLD"); ok {
		cfg.Thresholds.Medium = v
	}
	if v, ok := envFloat("HIGH_SIMILARITY_THRESHOLD"); ok {
		cfg.Thresholds.High = v
	}
	if v, ok := envBool("AI_VERIFICATION"); ok {
		cfg.Verification.Enabled = v
	}
	if v, ok := envInt("AI_VERIFICATION_TOP_K"); ok {
		cfg.Verification.TopK = v
	}
	if v, ok := envFloat("AI_VERIFICATION_MIN_CONFIDENCE"); ok {
		cfg.Verification.MinConfidence = v
	}
	if v, ok := envInt("EMBEDDING_DIMENSIONS"); ok {
		cfg.Embedding.Dimensions = v
	}
}

func envFloat(name string) (float64, bool) {
	s := os.Getenv(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envInt(name string) (int, bool) {
	s := os.Getenv(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envBool(name string) (bool, bool) {
	s := os.Getenv(name)
	if s == "" {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}
