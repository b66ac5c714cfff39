package embedding

import (
	"context"
	"fmt"
	"log"

	"github.com/similigh/gh-dedupe/internal/config"
	"github.com/similigh/gh-dedupe/internal/retry"
	"golang.org/x/time/rate"
)

// FallbackProvider wraps primary and fallback providers. Every call is rate
// limited and retried per the standard policy; if every provider still fails,
// EmbedDegraded hands back the zero vector so classification can proceed.
type FallbackProvider struct {
	primary    Provider
	fallback   Provider
	limiter    *rate.Limiter
	dimensions int
	policy     retry.Policy
}

// NewFallbackProvider creates a provider with primary and optional fallback
func NewFallbackProvider(cfg *config.EmbeddingConfig, rps int) (*FallbackProvider, error) {
	primary, err := createProvider(&cfg.Primary, cfg.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary provider: %w", err)
	}

	var fallback Provider
	if cfg.Fallback.Provider != "" && cfg.Fallback.APIKey != "" {
		fallback, err = createProvider(&cfg.Fallback, cfg.Dimensions)
		if err != nil {
			log.Printf("Warning: failed to create fallback provider: %v", err)
		}
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}

	return &FallbackProvider{
		primary:    primary,
		fallback:   fallback,
		limiter:    limiter,
		dimensions: cfg.Dimensions,
		policy:     retry.DefaultPolicy(),
	}, nil
}

// createProvider creates a provider based on config
func createProvider(cfg *config.ProviderConfig, dimensions int) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model, dimensions)
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, dimensions)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// Dimensions returns the index dimensionality every vector is normalized to
func (p *FallbackProvider) Dimensions() int {
	return p.dimensions
}

// Embed generates an embedding with fallback on failure
func (p *FallbackProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts with fallback
func (p *FallbackProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32

	err := retry.Do(ctx, p.policy, "embedding", func(ctx context.Context) error {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		var embedErr error
		embeddings, embedErr = p.primary.EmbedBatch(ctx, texts)
		return embedErr
	})
	if err == nil {
		return embeddings, nil
	}

	if p.fallback == nil {
		return nil, fmt.Errorf("primary embedding failed (no fallback): %w", err)
	}

	log.Printf("Warning: primary embedding failed, trying fallback: %v", err)
	err = retry.Do(ctx, p.policy, "fallback embedding", func(ctx context.Context) error {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		var embedErr error
		embeddings, embedErr = p.fallback.EmbedBatch(ctx, texts)
		return embedErr
	})
	if err != nil {
		return nil, err
	}
	return embeddings, nil
}

// EmbedDegraded never fails: on any provider error it logs and returns the
// zero vector of the exact index dimensionality. The degraded flag tells the
// caller the score data is meaningless.
func (p *FallbackProvider) EmbedDegraded(ctx context.Context, text string) (vector []float32, degraded bool) {
	embedding, err := p.Embed(ctx, text)
	if err != nil {
		log.Printf("Warning: all embedding providers failed, degrading to zero vector: %v", err)
		return ZeroVector(p.dimensions), true
	}
	return embedding, false
}

// Close releases resources
func (p *FallbackProvider) Close() error {
	var errs []error
	if err := p.primary.Close(); err != nil {
		errs = append(errs, err)
	}
	if p.fallback != nil {
		if err := p.fallback.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
