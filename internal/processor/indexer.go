package processor

import (
	"context"
	"log"
	"time"

	"github.com/similigh/gh-dedupe/internal/embedding"
	"github.com/similigh/gh-dedupe/internal/retry"
	"github.com/similigh/gh-dedupe/pkg/models"
)

const backfillBatchSize = 100

// Backfill indexes every open issue of a repository. Already indexed issues
// are reconciled in place, so running it twice is safe.
func (p *Processor) Backfill(ctx context.Context, org, repo string) (*models.IndexStats, error) {
	start := time.Now()
	stats := &models.IndexStats{}

	var issues []*models.Issue
	err := retry.Do(ctx, p.policy, "list issues", func(ctx context.Context) error {
		var listErr error
		issues, listErr = p.gh.ListAllIssues(ctx, org, repo, "open", backfillBatchSize)
		return listErr
	})
	if err != nil {
		return nil, err
	}
	stats.TotalIssues = len(issues)

	clsCfg := p.classifierConfig()

	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if issue.IsPullRequest || clsCfg.TooShort(issue.Title, issue.Body) {
			stats.Skipped++
			continue
		}

		if p.dryRun {
			stats.Indexed++
			continue
		}

		if err := p.indexOne(ctx, issue); err != nil {
			log.Printf("Warning: failed to index #%d: %v", issue.Number, err)
			stats.Errors++
			continue
		}
		stats.Indexed++
	}

	stats.DurationMs = int(time.Since(start).Milliseconds())
	return stats, nil
}

// indexOne embeds and reconciles a single issue without posting comments
func (p *Processor) indexOne(ctx context.Context, issue *models.Issue) error {
	text := embedding.PrepareIssueText(issue.Title, issue.Body)
	vector, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}

	existingIDs, err := p.index.FindExisting(ctx, issue.Number)
	if err != nil {
		return err
	}

	return p.index.Reconcile(ctx, issue, vector, existingIDs, true)
}
