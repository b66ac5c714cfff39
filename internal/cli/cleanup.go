package cli

import (
	"context"
	"fmt"

	"github.com/similigh/gh-dedupe/internal/consistency"
	"github.com/similigh/gh-dedupe/internal/github"
	"github.com/similigh/gh-dedupe/internal/vectordb"
	"github.com/spf13/cobra"
)

func newCleanupCmd() *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove duplicate vector records from the index",
		Long: `Scan the collection for issues holding more than one vector record and
keep only the newest record per issue. Normal operation converges on one
record per issue by itself; this is a maintenance pass for indexes damaged
by interrupted runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			org, _, err := github.ParseRepo(repo)
			if err != nil {
				return err
			}

			store, err := vectordb.NewClient(&cfg.Qdrant, cfg.RateLimits.QdrantRPS)
			if err != nil {
				return fmt.Errorf("failed to create vector store client: %w", err)
			}
			defer store.Close()

			collection := cfg.CollectionName(org)

			exists, err := store.CollectionExists(ctx, collection)
			if err != nil {
				return err
			}
			if !exists {
				fmt.Printf("Collection %q does not exist, nothing to clean\n", collection)
				return nil
			}

			if dryRun {
				stats, err := store.DescribeStats(ctx, collection)
				if err != nil {
					return err
				}
				fmt.Printf("[dry-run] collection %q holds %d records\n", collection, stats.RecordCount)
				return nil
			}

			manager := consistency.NewManager(store, collection, cfg.Embedding.Dimensions, cfg.Defaults.ExistingVectorsBound)

			removed, err := manager.Dedupe(ctx)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}

			fmt.Printf("Removed %d stale vector records from %q\n", removed, collection)
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "repository whose collection to clean (owner/repo)")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}
