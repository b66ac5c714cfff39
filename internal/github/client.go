package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/similigh/gh-dedupe/internal/retry"
	"github.com/similigh/gh-dedupe/pkg/models"
	"golang.org/x/time/rate"
)

// Client wraps GitHub API operations
type Client struct {
	rest    *api.RESTClient
	limiter *rate.Limiter
}

// NewClient creates a new GitHub client. rps caps outgoing request rate;
// zero disables the limiter.
func NewClient(rps int) (*Client, error) {
	rest, err := api.DefaultRESTClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}

	return &Client{
		rest:    rest,
		limiter: limiter,
	}, nil
}

// Close releases resources
func (c *Client) Close() error {
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// wrapErr attaches the HTTP status code for the retry predicate
func wrapErr(op string, err error) error {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%s: %w", op, retry.NewStatusError(httpErr.StatusCode, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ParseRepo splits "owner/repo" into owner and repo
func ParseRepo(fullRepo string) (string, string, error) {
	parts := strings.Split(fullRepo, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/repo)", fullRepo)
	}
	return parts[0], parts[1], nil
}

// Issue represents a GitHub issue from the API
type Issue struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	State       string          `json:"state"`
	HTMLURL     string          `json:"html_url"`
	User        User            `json:"user"`
	PullRequest json.RawMessage `json:"pull_request,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// User represents a GitHub user
type User struct {
	Login string `json:"login"`
}

// Comment represents a GitHub comment
type Comment struct {
	ID        int       `json:"id"`
	Body      string    `json:"body"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// IsPullRequest reports whether this record from the /issues endpoint is
// actually a pull request. The API marks PRs with a "pull_request" object.
func (i *Issue) IsPullRequest() bool {
	return len(i.PullRequest) > 0 && string(i.PullRequest) != "null"
}

// ToModel converts API Issue to models.Issue
func (i *Issue) ToModel(org, repo string) *models.Issue {
	return &models.Issue{
		Org:           org,
		Repo:          repo,
		Number:        i.Number,
		Title:         i.Title,
		Body:          i.Body,
		State:         i.State,
		Author:        i.User.Login,
		URL:           i.HTMLURL,
		IsPullRequest: i.IsPullRequest(),
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// RepoExists checks if a repository exists
func (c *Client) RepoExists(ctx context.Context, org, repo string) (bool, error) {
	if err := c.wait(ctx); err != nil {
		return false, err
	}

	var result struct{}
	err := c.rest.Get(fmt.Sprintf("repos/%s/%s", org, repo), &result)
	if err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == 404 {
			return false, nil
		}
		return false, wrapErr("failed to check repository", err)
	}
	return true, nil
}
