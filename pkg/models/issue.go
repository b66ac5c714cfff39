package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Issue represents a GitHub issue with its metadata
type Issue struct {
	Org           string    `json:"org"`
	Repo          string    `json:"repo"`
	Number        int       `json:"number"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	State         string    `json:"state"` // "open" or "closed"
	Author        string    `json:"author"`
	URL           string    `json:"url"`
	IsPullRequest bool      `json:"is_pull_request,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FullRepo returns the full repository name (org/repo)
func (i *Issue) FullRepo() string {
	return fmt.Sprintf("%s/%s", i.Org, i.Repo)
}

// CombinedText returns the trimmed title+body used for embedding and the
// short-input guard.
func (i *Issue) CombinedText() string {
	return strings.TrimSpace(strings.TrimSpace(i.Title) + " " + strings.TrimSpace(i.Body))
}

// VectorID generates a point id for a fresh vector record. The id embeds the
// issue number and a creation timestamp so that successive records for the
// same issue never collide. Ids are address-only and must never be parsed;
// lookup always goes through the issue_id payload field.
func VectorID(issueNumber int, createdAt time.Time) string {
	seed := fmt.Sprintf("%d:%d", issueNumber, createdAt.UnixNano())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}
