package cli

import (
	"fmt"

	"github.com/similigh/gh-dedupe/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.FindConfigPath(cfgFile)
			if cfgPath == "" {
				return fmt.Errorf("config file not found")
			}

			fmt.Printf("Validating config: %s\n", cfgPath)

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			errs := config.Validate(cfg)
			if len(errs) > 0 {
				fmt.Println("\nValidation errors:")
				for _, e := range errs {
					fmt.Printf("  - %v\n", e)
				}
				return fmt.Errorf("configuration is invalid")
			}

			fmt.Println("\nConfiguration is valid!")
			fmt.Printf("  - Qdrant URL: %s\n", cfg.Qdrant.URL)
			fmt.Printf("  - Primary embedding: %s (%s)\n", cfg.Embedding.Primary.Provider, cfg.Embedding.Primary.Model)
			fmt.Printf("  - Dimensions: %d\n", cfg.Embedding.Dimensions)
			fmt.Printf("  - Thresholds: high %.2f / medium %.2f\n", cfg.Thresholds.High, cfg.Thresholds.Medium)
			if cfg.Verification.Enabled {
				fmt.Printf("  - Verification: %s (%s), top %d, min confidence %.2f\n",
					cfg.Verification.LLM.Provider, cfg.Verification.LLM.Model,
					cfg.Verification.TopK, cfg.Verification.MinConfidence)
			} else {
				fmt.Println("  - Verification: disabled")
			}

			return nil
		},
	}
}
