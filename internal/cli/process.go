package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/similigh/gh-dedupe/internal/config"
	"github.com/similigh/gh-dedupe/internal/github"
	"github.com/similigh/gh-dedupe/pkg/models"
	"github.com/spf13/cobra"
)

func newProcessCmd() *cobra.Command {
	var (
		eventPath string
		repo      string
		issueNum  int
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a single issue event",
		Long: `Process one issue event (opened, edited, closed, reopened, deleted),
either from a GitHub Actions event file or by fetching an issue directly
with --repo and --issue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if issueNum > 0 {
				if repo == "" {
					return fmt.Errorf("--issue requires --repo")
				}
				return processDirect(ctx, cfg, repo, issueNum)
			}

			if eventPath == "" {
				eventPath = os.Getenv("GITHUB_EVENT_PATH")
			}
			if eventPath == "" {
				return fmt.Errorf("no event file: pass --event-path or set GITHUB_EVENT_PATH")
			}

			event, err := github.ParseEventFile(eventPath)
			if err != nil {
				return err
			}
			if !event.IsIssueEvent() || event.Repo == nil {
				fmt.Println("Not an issue event, nothing to do")
				return nil
			}

			a, err := newApp(ctx, cfg, event.Repo.Owner.Login)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.proc.ProcessEvent(ctx, event)
			printResult(result)
			if err != nil {
				return fmt.Errorf("processing failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&eventPath, "event-path", "", "path to GitHub event JSON (default $GITHUB_EVENT_PATH)")
	cmd.Flags().StringVar(&repo, "repo", "", "repository (owner/repo) for direct processing")
	cmd.Flags().IntVar(&issueNum, "issue", 0, "issue number for direct processing")

	return cmd
}

func processDirect(ctx context.Context, cfg *config.Config, fullRepo string, number int) error {
	org, repoName, err := github.ParseRepo(fullRepo)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, org)
	if err != nil {
		return err
	}
	defer a.Close()

	issue, err := a.gh.GetIssue(ctx, org, repoName, number)
	if err != nil {
		return err
	}

	result, err := a.proc.ProcessIssue(ctx, issue, false)
	printResult(result)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	return nil
}

func printResult(result *models.RunResult) {
	if result == nil {
		return
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Printf("%+v\n", result)
		return
	}
	fmt.Println(string(out))
}
