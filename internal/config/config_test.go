package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "expands env var",
			input:  "${TEST_VAR}",
			expect: "test-value",
		},
		{
			name:   "keeps unset var",
			input:  "${UNSET_VAR}",
			expect: "${UNSET_VAR}",
		},
		{
			name:   "expands in string",
			input:  "https://${TEST_VAR}.example.com",
			expect: "https://test-value.example.com",
		},
		{
			name:   "no vars",
			input:  "plain string",
			expect: "plain string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expect {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expect)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")

	content := `
qdrant:
  url: "http://localhost:6334"
  collection: "issues"

embedding:
  primary:
    provider: "gemini"
    model: "gemini-embedding-001"
    api_key: "test-key"
  dimensions: 1024

thresholds:
  medium: 0.5
`

	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Qdrant.URL != "http://localhost:6334" {
		t.Errorf("Qdrant.URL = %v, want http://localhost:6334", cfg.Qdrant.URL)
	}

	if cfg.Embedding.Primary.Provider != "gemini" {
		t.Errorf("Embedding.Primary.Provider = %v, want gemini", cfg.Embedding.Primary.Provider)
	}

	if cfg.Thresholds.Medium != 0.5 {
		t.Errorf("Thresholds.Medium = %v, want 0.5", cfg.Thresholds.Medium)
	}

	// Unset fields fall back to defaults
	if cfg.Thresholds.High != 0.85 {
		t.Errorf("Thresholds.High = %v, want 0.85", cfg.Thresholds.High)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	os.Setenv("SIMILARITY_THRESHOLD", "0.6")
	os.Setenv("AI_VERIFICATION", "true")
	os.Setenv("AI_VERIFICATION_TOP_K", "5")
	defer func() {
		os.Unsetenv("SIMILARITY_THRESHOLD")
		os.Unsetenv("AI_VERIFICATION")
		os.Unsetenv("AI_VERIFICATION_TOP_K")
	}()

	cfg := &Config{}
	applyEnvOverrides(cfg)

	if cfg.Thresholds.Medium != 0.6 {
		t.Errorf("Thresholds.Medium = %v, want 0.6", cfg.Thresholds.Medium)
	}
	if !cfg.Verification.Enabled {
		t.Errorf("Verification.Enabled = false, want true")
	}
	if cfg.Verification.TopK != 5 {
		t.Errorf("Verification.TopK = %v, want 5", cfg.Verification.TopK)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Thresholds.Medium != 0.55 {
		t.Errorf("Thresholds.Medium = %v, want 0.55", cfg.Thresholds.Medium)
	}
	if cfg.Thresholds.High != 0.85 {
		t.Errorf("Thresholds.High = %v, want 0.85", cfg.Thresholds.High)
	}
	if cfg.Verification.TopK != 3 {
		t.Errorf("Verification.TopK = %v, want 3", cfg.Verification.TopK)
	}
	if cfg.Verification.MinConfidence != 0.75 {
		t.Errorf("Verification.MinConfidence = %v, want 0.75", cfg.Verification.MinConfidence)
	}
	if cfg.Embedding.Dimensions != 1024 {
		t.Errorf("Embedding.Dimensions = %v, want 1024", cfg.Embedding.Dimensions)
	}
	if cfg.RateLimits.GitHubRPS != 10 {
		t.Errorf("GitHubRPS = %v, want 10", cfg.RateLimits.GitHubRPS)
	}
}

func TestValidateThresholdOrdering(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Qdrant.URL = "http://localhost:6334"
	cfg.Embedding.Primary = ProviderConfig{Provider: "openai", APIKey: "k"}

	if errs := Validate(cfg); len(errs) != 0 {
		t.Fatalf("Validate() on defaults = %v, want none", errs)
	}

	cfg.Thresholds.High = 0.4 // below medium
	errs := Validate(cfg)
	if len(errs) == 0 {
		t.Fatalf("Validate() accepted high < medium")
	}
}
