package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/inventory"
	"github.com/dittoscan/ditto/internal/updater"
	"github.com/dittoscan/ditto/pkg/pricecharting"
)

var updateCmd = &cobra.Command{
	Use:   "update-prices",
	Short: "Refresh PriceCharting prices across the inventory",
	Long: `Re-queries PriceCharting for every eligible inventory item and rewrites
the stored valuation from current market data. The inventory is backed up
before any change.

Examples:
  # Refresh everything
  update-prices

  # Only items that have never been priced
  update-prices --new-only

  # Only some categories
  update-prices --categories "Video Game Software","Comic Books"

  # Show what would change
  update-prices --dry-run`,
	RunE: runUpdate,
}

func init() {
	f := updateCmd.Flags()
	f.Bool("dry-run", false, "show what would be updated without writing")
	f.Bool("new-only", false, "only update items without existing pricing data")
	f.StringSlice("categories", nil, "restrict to these categories")
	f.Bool("yes", false, "skip the confirmation prompt")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("update"); err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	newOnly, _ := cmd.Flags().GetBool("new-only")
	categories, _ := cmd.Flags().GetStringSlice("categories")
	yes, _ := cmd.Flags().GetBool("yes")

	if !dryRun && !yes && !confirm("This will update your inventory. Continue?") {
		fmt.Println("Cancelled.")
		return nil
	}

	store, err := inventory.NewStore(cfg.Dirs.Inventory)
	if err != nil {
		return err
	}

	u := updater.New(
		pricecharting.NewClient(cfg.Pricing.Key, pricecharting.WithRateLimit(cfg.Pricing.RPS)),
		store,
	)

	stats, err := u.Run(ctx, updater.Options{
		DryRun:     dryRun,
		NewOnly:    newOnly,
		Categories: categories,
		MaxResults: cfg.Pricing.MaxResults,
		BackupDir:  cfg.Dirs.Backups,
		Retry:      cfg.Retry.ToRetryConfig(),
	})
	if err != nil {
		return err
	}

	zap.L().Info("update complete",
		zap.Int("considered", stats.Considered),
		zap.Int("updated", stats.Updated),
		zap.Int("not_found", stats.NotFound),
		zap.Int("api_calls", stats.APICalls),
		zap.Float64("total_value_usd", stats.TotalValue),
		zap.String("backup", stats.BackupPath))
	return nil
}

// confirm prompts on stdin for a y/n answer.
func confirm(prompt string) bool {
	fmt.Printf("%s (y/n): ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
