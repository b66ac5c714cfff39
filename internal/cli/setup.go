package cli

import (
	"context"
	"fmt"

	"github.com/similigh/gh-dedupe/internal/config"
	"github.com/similigh/gh-dedupe/internal/consistency"
	"github.com/similigh/gh-dedupe/internal/embedding"
	"github.com/similigh/gh-dedupe/internal/github"
	"github.com/similigh/gh-dedupe/internal/processor"
	"github.com/similigh/gh-dedupe/internal/vectordb"
	"github.com/similigh/gh-dedupe/internal/verifier"
)

// app bundles the wired-up clients behind one Close
type app struct {
	cfg   *config.Config
	gh    *github.Client
	emb   *embedding.FallbackProvider
	store *vectordb.Client
	ver   *verifier.Verifier
	proc  *processor.Processor
}

func loadConfig() (*config.Config, error) {
	cfgPath := config.FindConfigPath(cfgFile)
	if cfgPath == "" {
		return nil, fmt.Errorf("config file not found")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("config error: %v\n", e)
		}
		return nil, fmt.Errorf("invalid configuration")
	}

	return cfg, nil
}

// newApp wires every client for the given org's collection and makes sure the
// collection exists.
func newApp(ctx context.Context, cfg *config.Config, org string) (*app, error) {
	gh, err := github.NewClient(cfg.RateLimits.GitHubRPS)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	emb, err := embedding.NewFallbackProvider(&cfg.Embedding, cfg.RateLimits.EmbeddingRPS)
	if err != nil {
		gh.Close()
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	store, err := vectordb.NewClient(&cfg.Qdrant, cfg.RateLimits.QdrantRPS)
	if err != nil {
		gh.Close()
		emb.Close()
		return nil, fmt.Errorf("failed to create vector store client: %w", err)
	}

	collection := cfg.CollectionName(org)
	if err := store.EnsureCollection(ctx, collection, cfg.Embedding.Dimensions); err != nil {
		gh.Close()
		emb.Close()
		store.Close()
		return nil, fmt.Errorf("failed to ensure collection %q: %w", collection, err)
	}

	ver, err := verifier.NewVerifier(&cfg.Verification)
	if err != nil {
		gh.Close()
		emb.Close()
		store.Close()
		return nil, err
	}

	manager := consistency.NewManager(store, collection, cfg.Embedding.Dimensions, cfg.Defaults.ExistingVectorsBound)

	var verdicter processor.Verdicter
	if ver != nil {
		verdicter = ver
	}

	proc := processor.New(gh, emb, store, manager, verdicter, cfg, collection, dryRun)

	return &app{
		cfg:   cfg,
		gh:    gh,
		emb:   emb,
		store: store,
		ver:   ver,
		proc:  proc,
	}, nil
}

func (a *app) Close() {
	a.gh.Close()
	a.emb.Close()
	a.store.Close()
	a.ver.Close()
}
