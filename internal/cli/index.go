package cli

import (
	"context"
	"fmt"

	"github.com/similigh/gh-dedupe/internal/github"
	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Bulk index existing issues from a repository",
		Long:  `Index all open issues from a repository into the vector database for similarity search. Safe to re-run; already indexed issues are reconciled in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			org, repoName, err := github.ParseRepo(repo)
			if err != nil {
				return err
			}

			a, err := newApp(ctx, cfg, org)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.proc.Backfill(ctx, org, repoName)
			if err != nil {
				return fmt.Errorf("indexing failed: %w", err)
			}

			fmt.Printf("Indexed %d/%d issues (%d skipped, %d errors) in %dms\n",
				stats.Indexed, stats.TotalIssues, stats.Skipped, stats.Errors, stats.DurationMs)

			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "repository to index (owner/repo)")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}
