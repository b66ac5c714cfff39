package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors
func Validate(cfg *Config) []error {
	var errs []error

	if cfg.Qdrant.URL == "" {
		errs = append(errs, ValidationError{"qdrant.url", "required"})
	}

	if cfg.Embedding.Primary.Provider == "" {
		errs = append(errs, ValidationError{"embedding.primary.provider", "required"})
	} else if cfg.Embedding.Primary.Provider != "gemini" && cfg.Embedding.Primary.Provider != "openai" {
		errs = append(errs, ValidationError{"embedding.primary.provider", "must be 'gemini' or 'openai'"})
	}

	if cfg.Embedding.Primary.APIKey == "" {
		errs = append(errs, ValidationError{"embedding.primary.api_key", "required"})
	}

	if cfg.Embedding.Dimensions <= 0 {
		errs = append(errs, ValidationError{"embedding.dimensions", "must be positive"})
	}

	if cfg.Thresholds.Medium < 0 || cfg.Thresholds.Medium > 1 {
		errs = append(errs, ValidationError{"thresholds.medium", "must be between 0 and 1"})
	}
	if cfg.Thresholds.High < 0 || cfg.Thresholds.High > 1 {
		errs = append(errs, ValidationError{"thresholds.high", "must be between 0 and 1"})
	}
	// The auto-close band must always sit above the flag-related band
	if cfg.Thresholds.High < cfg.Thresholds.Medium {
		errs = append(errs, ValidationError{"thresholds.high", "must be >= thresholds.medium"})
	}

	if cfg.Verification.Enabled {
		if cfg.Verification.LLM.Provider == "" {
			errs = append(errs, ValidationError{"verification.llm.provider", "required when verification is enabled"})
		} else if cfg.Verification.LLM.Provider != "gemini" && cfg.Verification.LLM.Provider != "openai" {
			errs = append(errs, ValidationError{"verification.llm.provider", "must be 'gemini' or 'openai'"})
		}

		if cfg.Verification.LLM.APIKey == "" {
			errs = append(errs, ValidationError{"verification.llm.api_key", "required when verification is enabled"})
		}

		if cfg.Verification.MinConfidence < 0 || cfg.Verification.MinConfidence > 1 {
			errs = append(errs, ValidationError{"verification.min_confidence", "must be between 0 and 1"})
		}

		if cfg.Verification.TopK < 1 {
			errs = append(errs, ValidationError{"verification.top_k", "must be at least 1"})
		}
	}

	return errs
}
