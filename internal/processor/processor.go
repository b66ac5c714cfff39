// Package processor orchestrates one issue event end to end: guard checks,
// embedding, candidate search, verification, classification, tracker actions,
// and index reconciliation.
package processor

import (
	"context"
	"fmt"
	"log"

	"github.com/similigh/gh-dedupe/internal/classifier"
	"github.com/similigh/gh-dedupe/internal/config"
	"github.com/similigh/gh-dedupe/internal/embedding"
	"github.com/similigh/gh-dedupe/internal/github"
	"github.com/similigh/gh-dedupe/internal/retry"
	"github.com/similigh/gh-dedupe/pkg/models"
)

// IssueService is the subset of tracker operations the processor needs
type IssueService interface {
	GetIssue(ctx context.Context, org, repo string, number int) (*models.Issue, error)
	PostComment(ctx context.Context, org, repo string, number int, body string) error
	AddLabels(ctx context.Context, org, repo string, number int, labels []string) error
	CloseIssue(ctx context.Context, org, repo string, number int, reason string) error
	ShouldSkipComment(ctx context.Context, org, repo string, number int, cooldownHours int) (bool, error)
	ListAllIssues(ctx context.Context, org, repo string, state string, batchSize int) ([]*models.Issue, error)
}

// Embedder turns issue text into a vector of the index dimensionality
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// SimilaritySearcher queries the vector index for candidate matches
type SimilaritySearcher interface {
	Search(ctx context.Context, collection string, vector []float32, topK int, excludeIssueID int) ([]models.CandidateMatch, error)
}

// IndexManager reconciles vector records for issues
type IndexManager interface {
	FindExisting(ctx context.Context, issueID int) ([]string, error)
	Reconcile(ctx context.Context, issue *models.Issue, vector []float32, existingIDs []string, shouldPersist bool) error
	RemoveIssue(ctx context.Context, issueID int) (int, error)
}

// Verdicter provides secondary verification verdicts. May be nil (disabled).
type Verdicter interface {
	Verify(ctx context.Context, issue *models.Issue, candidates []models.CandidateMatch) map[int]models.VerificationVerdict
}

// Processor runs the duplicate detection flow for issue events
type Processor struct {
	gh         IssueService
	embedder   Embedder
	searcher   SimilaritySearcher
	index      IndexManager
	verifier   Verdicter
	cfg        *config.Config
	collection string
	dryRun     bool

	// tracker and index calls run under the bounded-retry policy; the
	// embedder and verifier carry their own
	policy retry.Policy
}

// New creates a processor bound to one collection
func New(gh IssueService, embedder Embedder, searcher SimilaritySearcher, index IndexManager, verifier Verdicter, cfg *config.Config, collection string, dryRun bool) *Processor {
	return &Processor{
		gh:         gh,
		embedder:   embedder,
		searcher:   searcher,
		index:      index,
		verifier:   verifier,
		cfg:        cfg,
		collection: collection,
		dryRun:     dryRun,
		policy:     retry.DefaultPolicy(),
	}
}

// ProcessEvent routes a webhook event to the right handler
func (p *Processor) ProcessEvent(ctx context.Context, event *github.Event) (*models.RunResult, error) {
	if !event.IsIssueEvent() {
		return &models.RunResult{Skipped: true, SkipReason: "not an issue event"}, nil
	}

	issue := event.ToIssue()
	if issue == nil {
		return &models.RunResult{Skipped: true, SkipReason: "malformed event payload"}, nil
	}

	switch {
	case event.IsOpenedEvent(), event.IsReopenedEvent():
		return p.ProcessIssue(ctx, issue, false)
	case event.IsEditedEvent():
		return p.ProcessIssue(ctx, issue, true)
	case event.IsClosedEvent(), event.IsDeletedEvent():
		return p.HandleRemoval(ctx, issue)
	default:
		return &models.RunResult{
			IssueNumber: issue.Number,
			Skipped:     true,
			SkipReason:  fmt.Sprintf("unhandled action %q", event.Action),
		}, nil
	}
}

// ProcessIssue runs the full detection flow for one opened or edited issue
func (p *Processor) ProcessIssue(ctx context.Context, issue *models.Issue, isEditing bool) (*models.RunResult, error) {
	result := &models.RunResult{IssueNumber: issue.Number}

	if issue.IsPullRequest {
		result.Skipped = true
		result.SkipReason = "pull request"
		return result, nil
	}

	var skip bool
	err := retry.Do(ctx, p.policy, "cooldown check", func(ctx context.Context) error {
		var checkErr error
		skip, checkErr = p.gh.ShouldSkipComment(ctx, issue.Org, issue.Repo, issue.Number, p.cfg.Defaults.CommentCooldownHours)
		return checkErr
	})
	if err != nil {
		log.Printf("Warning: cooldown check failed for #%d, proceeding: %v", issue.Number, err)
	} else if skip {
		result.Skipped = true
		result.SkipReason = "comment cooldown active"
		return result, nil
	}

	clsCfg := p.classifierConfig()

	// Issues too short to classify get a comment asking for detail and leave
	// the index untouched.
	if clsCfg.TooShort(issue.Title, issue.Body) {
		result.Tier = models.TierNeedsDetail
		if err := p.comment(ctx, issue, formatNeedsDetailComment(p.cfg.Defaults.MinIssueChars)); err != nil {
			result.Error = err.Error()
			return result, err
		}
		result.CommentPosted = !p.dryRun
		return result, nil
	}

	text := embedding.PrepareIssueText(issue.Title, issue.Body)
	vector, err := p.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("Warning: embedding failed for #%d, degrading to zero vector: %v", issue.Number, err)
		vector = embedding.ZeroVector(p.embedder.Dimensions())
		result.Degraded = true
	}

	existingIDs, err := p.index.FindExisting(ctx, issue.Number)
	if err != nil {
		log.Printf("Warning: existing-vector lookup failed for #%d, treating as unindexed: %v", issue.Number, err)
		existingIDs = nil
	}

	var candidates []models.CandidateMatch
	err = retry.Do(ctx, p.policy, "similarity search", func(ctx context.Context) error {
		var searchErr error
		candidates, searchErr = p.searcher.Search(ctx, p.collection, vector, p.cfg.Defaults.MaxCandidates, issue.Number)
		return searchErr
	})
	if err != nil {
		searchErr := fmt.Errorf("similarity search failed for #%d: %w", issue.Number, err)
		if cErr := p.comment(ctx, issue, formatDegradedComment()); cErr != nil {
			log.Printf("Warning: failed to post degraded-service comment on #%d: %v", issue.Number, cErr)
		} else {
			result.CommentPosted = !p.dryRun
		}
		result.Error = searchErr.Error()
		return result, searchErr
	}
	result.Candidates = candidates

	var verdicts map[int]models.VerificationVerdict
	if p.verifier != nil && !result.Degraded && len(candidates) > 0 {
		verdicts = p.verifier.Verify(ctx, issue, candidates)
	}

	cls := classifier.Classify(candidates, isEditing, issue.Number, verdicts, clsCfg)
	result.Tier = cls.Tier

	if err := p.actOnClassification(ctx, issue, &cls, isEditing, result); err != nil {
		return result, err
	}

	// A flagged-related edit keeps its previously indexed vector rather than
	// adopting the edited text; the edit may be converging on the duplicate.
	persist := cls.ShouldPersistVector && !(cls.Tier == models.TierFlagRelated && isEditing)
	if result.Degraded {
		// Never index the zero vector.
		persist = false
	}

	if p.dryRun {
		return result, nil
	}

	if err := p.index.Reconcile(ctx, issue, vector, existingIDs, persist); err != nil {
		reconErr := fmt.Errorf("index update failed for #%d: %w", issue.Number, err)
		result.Error = reconErr.Error()
		return result, reconErr
	}
	result.Indexed = persist

	return result, nil
}

// actOnClassification posts the tier comment and performs auto-close
func (p *Processor) actOnClassification(ctx context.Context, issue *models.Issue, cls *models.Classification, isEditing bool, result *models.RunResult) error {
	switch cls.Tier {
	case models.TierAutoClose:
		if err := p.comment(ctx, issue, formatAutoCloseComment(cls.TopMatch, cls.ShouldAutoClose)); err != nil {
			result.Error = err.Error()
			return err
		}
		result.CommentPosted = !p.dryRun

		if !cls.ShouldAutoClose || p.dryRun {
			return nil
		}

		if err := p.closeAsDuplicate(ctx, issue); err != nil {
			// The run still completes: the duplicate comment is posted and the
			// index will be reconciled, only the close itself failed.
			log.Printf("Warning: auto-close failed for #%d: %v", issue.Number, err)
			cErr := retry.Do(ctx, p.policy, "close-failure comment", func(ctx context.Context) error {
				return p.gh.PostComment(ctx, issue.Org, issue.Repo, issue.Number, formatCloseFailureComment())
			})
			if cErr != nil {
				log.Printf("Warning: failed to post close-failure comment on #%d: %v", issue.Number, cErr)
			}
			return nil
		}
		result.Closed = true

	case models.TierFlagRelated:
		if err := p.comment(ctx, issue, formatRelatedComment(cls.TopMatch)); err != nil {
			result.Error = err.Error()
			return err
		}
		result.CommentPosted = !p.dryRun

		if !p.dryRun && !isEditing {
			err := retry.Do(ctx, p.policy, "add label", func(ctx context.Context) error {
				return p.gh.AddLabels(ctx, issue.Org, issue.Repo, issue.Number, []string{"potential-duplicate"})
			})
			if err != nil {
				log.Printf("Warning: failed to label #%d: %v", issue.Number, err)
			}
		}

	case models.TierUnique:
		if err := p.comment(ctx, issue, formatUniqueComment()); err != nil {
			result.Error = err.Error()
			return err
		}
		result.CommentPosted = !p.dryRun
	}

	return nil
}

// closeAsDuplicate labels then closes
func (p *Processor) closeAsDuplicate(ctx context.Context, issue *models.Issue) error {
	err := retry.Do(ctx, p.policy, "add label", func(ctx context.Context) error {
		return p.gh.AddLabels(ctx, issue.Org, issue.Repo, issue.Number, []string{"duplicate"})
	})
	if err != nil {
		return err
	}
	return retry.Do(ctx, p.policy, "close issue", func(ctx context.Context) error {
		return p.gh.CloseIssue(ctx, issue.Org, issue.Repo, issue.Number, "not_planned")
	})
}

// HandleRemoval drops every vector for a closed or deleted issue
func (p *Processor) HandleRemoval(ctx context.Context, issue *models.Issue) (*models.RunResult, error) {
	result := &models.RunResult{IssueNumber: issue.Number}

	if p.dryRun {
		return result, nil
	}

	removed, err := p.index.RemoveIssue(ctx, issue.Number)
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("failed to remove vectors for #%d: %w", issue.Number, err)
	}
	result.VectorsRemoved = removed

	return result, nil
}

func (p *Processor) classifierConfig() classifier.Config {
	return classifier.Config{
		HighThreshold:       p.cfg.Thresholds.High,
		MediumThreshold:     p.cfg.Thresholds.Medium,
		VerificationEnabled: p.cfg.Verification.Enabled,
		MinConfidence:       p.cfg.Verification.MinConfidence,
		MinIssueChars:       p.cfg.Defaults.MinIssueChars,
	}
}

func (p *Processor) comment(ctx context.Context, issue *models.Issue, body string) error {
	if p.dryRun {
		log.Printf("[dry-run] would comment on #%d:\n%s", issue.Number, body)
		return nil
	}
	err := retry.Do(ctx, p.policy, "post comment", func(ctx context.Context) error {
		return p.gh.PostComment(ctx, issue.Org, issue.Repo, issue.Number, body)
	})
	if err != nil {
		return fmt.Errorf("failed to comment on #%d: %w", issue.Number, err)
	}
	return nil
}
