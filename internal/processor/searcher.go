package processor

import (
	"context"
	"fmt"

	"github.com/similigh/gh-dedupe/pkg/models"
)

// SearchText embeds free-form query text and returns the closest indexed
// issues. Used by the ad-hoc search command; never posts or mutates anything.
func (p *Processor) SearchText(ctx context.Context, query string, topK int) ([]models.CandidateMatch, error) {
	if topK <= 0 {
		topK = p.cfg.Defaults.MaxCandidates
	}

	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return p.searcher.Search(ctx, p.collection, vector, topK, 0)
}
