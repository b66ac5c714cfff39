package github

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseRepo(t *testing.T) {
	tests := []struct {
		input   string
		org     string
		repo    string
		wantErr bool
	}{
		{"acme/widgets", "acme", "widgets", false},
		{"no-slash", "", "", true},
		{"too/many/parts", "", "", true},
	}

	for _, tt := range tests {
		org, repo, err := ParseRepo(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRepo(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if org != tt.org || repo != tt.repo {
			t.Errorf("ParseRepo(%q) = %q, %q", tt.input, org, repo)
		}
	}
}

func TestIssueIsPullRequest(t *testing.T) {
	issue := Issue{PullRequest: []byte(`{"url":"https://api.github.com/repos/a/b/pulls/1"}`)}
	if !issue.IsPullRequest() {
		t.Error("expected pull_request payload to mark issue as PR")
	}

	plain := Issue{}
	if plain.IsPullRequest() {
		t.Error("expected issue without pull_request payload to not be a PR")
	}

	null := Issue{PullRequest: []byte("null")}
	if null.IsPullRequest() {
		t.Error("expected null pull_request to not be a PR")
	}
}

func TestParseEventFile(t *testing.T) {
	eventJSON := `{
		"action": "opened",
		"issue": {
			"number": 42,
			"title": "crash on startup",
			"body": "segfault in init",
			"state": "open",
			"html_url": "https://github.com/acme/widgets/issues/42",
			"user": {"login": "reporter"}
		},
		"repository": {
			"full_name": "acme/widgets",
			"owner": {"login": "acme"},
			"name": "widgets"
		}
	}`

	path := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(path, []byte(eventJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	event, err := ParseEventFile(path)
	if err != nil {
		t.Fatalf("ParseEventFile() error = %v", err)
	}

	if !event.IsIssueEvent() || !event.IsOpenedEvent() {
		t.Errorf("expected opened issue event, got action %q", event.Action)
	}

	issue := event.ToIssue()
	if issue == nil {
		t.Fatal("ToIssue() returned nil")
	}
	if issue.Org != "acme" || issue.Repo != "widgets" || issue.Number != 42 {
		t.Errorf("ToIssue() = %s#%d", issue.FullRepo(), issue.Number)
	}
	if issue.Author != "reporter" {
		t.Errorf("Author = %q, want reporter", issue.Author)
	}
	if issue.IsPullRequest {
		t.Error("plain issue event marked as pull request")
	}
}
