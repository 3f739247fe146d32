package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/identify"
	"github.com/dittoscan/ditto/internal/inventory"
	"github.com/dittoscan/ditto/internal/scanner"
	"github.com/dittoscan/ditto/pkg/anthropic"
	"github.com/dittoscan/ditto/pkg/lens"
	"github.com/dittoscan/ditto/pkg/pricecharting"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Watch the scan folder and identify items",
	Long: `Watches the scan drop folder for new images. A scanned container QR
sheet selects the current container; every following image is identified
(reverse image search, PriceCharting lookup, Claude analysis), filed into the
organized directory, and appended to the inventory.

Examples:
  # Standard scanning session
  scan

  # Graded comics and cards: adds a vision pass that reads the slab label
  scan --graded`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Bool("graded", false, "graded-collectible flow (slab label vision pass)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("scan"); err != nil {
		return err
	}
	graded, _ := cmd.Flags().GetBool("graded")

	if err := os.MkdirAll(cfg.Dirs.Scan, 0o755); err != nil {
		return err
	}
	store, err := inventory.NewStore(cfg.Dirs.Inventory)
	if err != nil {
		return err
	}

	orch := identify.New(
		lens.NewClient(cfg.SerpAPI.Key),
		pricecharting.NewClient(cfg.Pricing.Key, pricecharting.WithRateLimit(cfg.Pricing.RPS)),
		anthropic.NewClient(cfg.Anthropic.Key),
		identify.Config{
			PublicBaseURL:          cfg.SerpAPI.PublicBaseURL,
			OrganizedDir:           cfg.Dirs.Organized,
			AnalysisModel:          cfg.Anthropic.AnalysisModel,
			VisionModel:            cfg.Anthropic.VisionModel,
			MaxPricingResults:      cfg.Pricing.MaxResults,
			GradeMismatchThreshold: cfg.Scan.GradeMismatchThreshold,
			Retry:                  cfg.Retry.ToRetryConfig(),
		},
	)

	sc := scanner.New(orch, store, scanner.Config{
		ScanDir:     cfg.Dirs.Scan,
		Graded:      graded,
		SettleDelay: cfg.Scan.SettleDelay(),
	})

	zap.L().Info("scanning session starting",
		zap.String("scan_dir", cfg.Dirs.Scan),
		zap.Bool("graded", graded))

	stats, err := sc.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(stats.Render())
	return nil
}
