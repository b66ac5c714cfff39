package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// AddLabels adds labels to an issue
func (c *Client) AddLabels(ctx context.Context, org, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/labels", org, repo, number)

	payload := map[string][]string{"labels": labels}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := c.wait(ctx); err != nil {
		return err
	}

	if err := c.rest.Post(endpoint, bytes.NewReader(jsonBody), nil); err != nil {
		return wrapErr("failed to add labels", err)
	}

	return nil
}

// CloseIssue closes an issue with an optional state reason, e.g. "not_planned"
func (c *Client) CloseIssue(ctx context.Context, org, repo string, number int, reason string) error {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d", org, repo, number)

	payload := map[string]string{"state": "closed"}
	if reason != "" {
		payload["state_reason"] = reason
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := c.wait(ctx); err != nil {
		return err
	}

	if err := c.rest.Patch(endpoint, bytes.NewReader(jsonBody), nil); err != nil {
		return wrapErr("failed to close issue", err)
	}

	return nil
}

// ReopenIssue reopens a closed issue
func (c *Client) ReopenIssue(ctx context.Context, org, repo string, number int) error {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d", org, repo, number)

	payload := map[string]string{"state": "open"}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := c.wait(ctx); err != nil {
		return err
	}

	if err := c.rest.Patch(endpoint, bytes.NewReader(jsonBody), nil); err != nil {
		return wrapErr("failed to reopen issue", err)
	}

	return nil
}
