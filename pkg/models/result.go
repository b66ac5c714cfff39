package models

// CandidateMatch is a previously indexed issue returned by a similarity query,
// with its similarity score. Derived per run; never persisted.
type CandidateMatch struct {
	IssueID int     `json:"issue_id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	URL     string  `json:"url,omitempty"`
	Content string  `json:"content,omitempty"`
}

// VerificationVerdict is the validated opinion of the secondary verifier about
// one candidate pair. An invalid verdict never confirms a candidate.
type VerificationVerdict struct {
	IsDuplicate bool    `json:"is_duplicate"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason,omitempty"`
	Valid       bool    `json:"valid"`
}

// Tier is one of the mutually exclusive classification outcomes
type Tier string

const (
	TierAutoClose   Tier = "auto-close"
	TierFlagRelated Tier = "flag-related"
	TierUnique      Tier = "unique"
	// TierNeedsDetail is the terminal outcome for issues whose text is too
	// short to classify meaningfully. It never touches the index.
	TierNeedsDetail Tier = "needs-detail"
)

// Classification is the output of the duplicate classifier
type Classification struct {
	Tier                Tier            `json:"tier"`
	TopMatch            *CandidateMatch `json:"top_match,omitempty"`
	ShouldPersistVector bool            `json:"should_persist_vector"`
	ShouldAutoClose     bool            `json:"should_auto_close"`
}

// RunResult contains the outcome of processing a single issue event
type RunResult struct {
	IssueNumber    int              `json:"issue_number"`
	Tier           Tier             `json:"tier,omitempty"`
	Candidates     []CandidateMatch `json:"candidates,omitempty"`
	CommentPosted  bool             `json:"comment_posted"`
	Closed         bool             `json:"closed"`
	Indexed        bool             `json:"indexed"`
	VectorsRemoved int              `json:"vectors_removed,omitempty"`
	Skipped        bool             `json:"skipped,omitempty"`
	SkipReason     string           `json:"skip_reason,omitempty"`
	Degraded       bool             `json:"degraded,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// IndexStats contains statistics from a backfill or maintenance operation
type IndexStats struct {
	TotalIssues int `json:"total_issues"`
	Indexed     int `json:"indexed"`
	Skipped     int `json:"skipped"`
	Removed     int `json:"removed"`
	Errors      int `json:"errors"`
	DurationMs  int `json:"duration_ms"`
}
