package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meeplemedia/creatordex/internal/canonical"
	"github.com/meeplemedia/creatordex/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "creatordex",
	Short: "Board-game creator directory tooling",
	Long:  "Loads creator survey exports, canonicalizes platform and country labels, filters and sorts the directory, and enriches channels with YouTube subscriber counts through a caching proxy.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if cfg.Labels.OverlayPath != "" {
			if err := canonical.LoadOverlayFile(cfg.Labels.OverlayPath); err != nil {
				return fmt.Errorf("load label overlay: %w", err)
			}
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
