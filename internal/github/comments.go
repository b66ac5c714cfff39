package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BotSignature marks every comment this tool posts, so repeated runs can
// recognize their own output.
const BotSignature = "gh-dedupe duplicate detection"

// ListComments fetches comments on an issue
func (c *Client) ListComments(ctx context.Context, org, repo string, number int) ([]Comment, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/comments", org, repo, number)

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var comments []Comment
	if err := c.rest.Get(endpoint, &comments); err != nil {
		return nil, wrapErr("failed to list comments", err)
	}

	return comments, nil
}

// PostComment adds a comment to an issue
func (c *Client) PostComment(ctx context.Context, org, repo string, number int, body string) error {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/comments", org, repo, number)

	payload := map[string]string{"body": body}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := c.wait(ctx); err != nil {
		return err
	}

	if err := c.rest.Post(endpoint, bytes.NewReader(jsonBody), nil); err != nil {
		return wrapErr("failed to post comment", err)
	}

	return nil
}

// ShouldSkipComment checks if the bot recently commented (within the
// cooldown period)
func (c *Client) ShouldSkipComment(ctx context.Context, org, repo string, number int, cooldownHours int) (bool, error) {
	if cooldownHours <= 0 {
		return false, nil
	}

	comments, err := c.ListComments(ctx, org, repo, number)
	if err != nil {
		return false, err
	}

	cutoff := time.Now().Add(-time.Duration(cooldownHours) * time.Hour)

	for _, comment := range comments {
		if strings.Contains(comment.Body, BotSignature) && comment.CreatedAt.After(cutoff) {
			return true, nil
		}
	}

	return false, nil
}
