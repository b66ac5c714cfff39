// Package classifier implements the duplicate-classification decision engine.
// Classify is a pure function of its inputs: thresholds and flags come in as
// an explicit config struct, never ambient state, so the decision procedure is
// independently testable.
package classifier

import (
	"sort"
	"strings"

	"github.com/similigh/gh-dedupe/pkg/models"
)

// Config contains the classification parameters for one run
type Config struct {
	// HighThreshold is the auto-close band cutoff. Must be >= MediumThreshold.
	HighThreshold float64
	// MediumThreshold is the flag-related band cutoff. Candidates below it
	// are discarded from classification.
	MediumThreshold float64
	// VerificationEnabled applies the secondary-verification veto to both
	// bands. A veto only ever narrows a band, never widens it.
	VerificationEnabled bool
	// MinConfidence is the verification confidence floor. Verdicts below it
	// count as vetoes.
	MinConfidence float64
	// MinIssueChars is the short-input guard cutoff
	MinIssueChars int
}

// TooShort reports whether the combined trimmed title+body is below the
// minimum length for meaningful classification.
func (c Config) TooShort(title, body string) bool {
	combined := strings.TrimSpace(strings.TrimSpace(title) + " " + strings.TrimSpace(body))
	return len(combined) < c.MinIssueChars
}

// Classify turns a ranked candidate set and optional verification verdicts
// into a single tier plus side-effect flags.
func Classify(candidates []models.CandidateMatch, isEditing bool, selfIssueID int, verdicts map[int]models.VerificationVerdict, cfg Config) models.Classification {
	// An issue is never a duplicate of itself. Self-matches occur when the
	// issue's own stale vector is still indexed during an edit.
	survivors := make([]models.CandidateMatch, 0, len(candidates))
	for _, c := range candidates {
		if c.IssueID == selfIssueID {
			continue
		}
		survivors = append(survivors, c)
	}

	// Input is expected pre-sorted by score descending; re-sort defensively.
	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Score > survivors[j].Score
	})

	var highBand, mediumBand []models.CandidateMatch
	for _, c := range survivors {
		switch {
		case c.Score >= cfg.HighThreshold:
			highBand = append(highBand, c)
		case c.Score >= cfg.MediumThreshold:
			mediumBand = append(mediumBand, c)
		}
	}

	if cfg.VerificationEnabled {
		highBand = applyVetoes(highBand, verdicts, cfg.MinConfidence)
		mediumBand = applyVetoes(mediumBand, verdicts, cfg.MinConfidence)
	}

	switch {
	case len(highBand) > 0:
		top := highBand[0]
		return models.Classification{
			Tier:                models.TierAutoClose,
			TopMatch:            &top,
			ShouldPersistVector: false,
			// An issue already indexed as unique that only becomes a
			// duplicate after an edit is flagged but not closed.
			ShouldAutoClose: !isEditing,
		}
	case len(mediumBand) > 0:
		top := mediumBand[0]
		return models.Classification{
			Tier:                models.TierFlagRelated,
			TopMatch:            &top,
			ShouldPersistVector: true,
			ShouldAutoClose:     false,
		}
	default:
		return models.Classification{
			Tier:                models.TierUnique,
			ShouldPersistVector: true,
			ShouldAutoClose:     false,
		}
	}
}

// applyVetoes drops candidates whose verdict is absent, invalid, below the
// confidence floor, or negative. No valid verdict is treated the same as a
// not-duplicate verdict: verification-enabled runs only act on affirmatively
// confirmed matches.
func applyVetoes(band []models.CandidateMatch, verdicts map[int]models.VerificationVerdict, minConfidence float64) []models.CandidateMatch {
	kept := band[:0:0]
	for _, c := range band {
		v, ok := verdicts[c.IssueID]
		if !ok || !v.Valid || !v.IsDuplicate || v.Confidence < minConfidence {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
