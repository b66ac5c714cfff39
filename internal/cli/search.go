package cli

import (
	"context"
	"fmt"

	"github.com/similigh/gh-dedupe/internal/github"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		repo  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for similar issues (debugging/testing)",
		Long:  `Search the vector index for issues similar to free-form query text.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			query := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			org, _, err := github.ParseRepo(repo)
			if err != nil {
				return err
			}

			a, err := newApp(ctx, cfg, org)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.proc.SearchText(ctx, query, limit)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if len(results) == 0 {
				fmt.Println("No similar issues found")
				return nil
			}

			fmt.Printf("Found %d similar issues:\n\n", len(results))
			for i, r := range results {
				fmt.Printf("%d. #%d - %s\n", i+1, r.IssueID, r.Title)
				fmt.Printf("   Similarity: %.1f%%\n", r.Score*100)
				if r.URL != "" {
					fmt.Printf("   %s\n", r.URL)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "repository whose collection to search (owner/repo)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results to return")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}
