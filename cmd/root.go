package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ditto",
	Short: "Collectible inventory scanner",
	Long:  "Watches a scanner drop folder, identifies collectibles via reverse image search and Claude analysis, prices them against PriceCharting, and maintains a JSON+CSV inventory.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
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
