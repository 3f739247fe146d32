package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/labels"
)

var labelsCmd = &cobra.Command{
	Use:   "labels TARGET",
	Short: "Generate Zebra ZPL container labels",
	Long: `Generates 3x2 inch ZPL labels with container QR codes for a Zebra
printer (203 DPI). TARGET is either a count for sequential generation or a
single container ID to reprint. Batch runs also write print_all.zpl and a
seal tracking template.

Examples:
  # Fifty labels, TOTE-001 through TOTE-050
  labels 50

  # Custom info line
  labels 50 --info "MOVE TO PARIS"

  # Reprint one label
  labels TOTE-023 --info FRAGILE

Printing:
  cat zpl_labels/print_all.zpl | lp -d YourZebraPrinter`,
	Args: cobra.ExactArgs(1),
	RunE: runLabels,
}

func init() {
	labelsCmd.Flags().String("info", "", "label info text (default from config)")

	rootCmd.AddCommand(labelsCmd)
}

func runLabels(cmd *cobra.Command, args []string) error {
	info, _ := cmd.Flags().GetString("info")
	if info == "" {
		info = cfg.Labels.Info
	}
	log := zap.L().With(zap.String("dir", cfg.Labels.Dir))

	if strings.HasPrefix(args[0], "TOTE-") {
		path, err := labels.Reprint(cfg.Labels.Dir, args[0], info)
		if err != nil {
			return err
		}
		log.Info("label regenerated", zap.String("file", path))
		fmt.Printf("To print: cat %s | lp -d YourZebraPrinter\n", path)
		return nil
	}

	count, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("target must be a count or a TOTE-NNN id: %w", err)
	}

	ids, err := labels.Generate(cfg.Labels.Dir, count, info)
	if err != nil {
		return err
	}
	log.Info("labels generated",
		zap.Int("count", len(ids)),
		zap.String("first", ids[0]),
		zap.String("last", ids[len(ids)-1]))
	fmt.Printf("To print all: cat %s/print_all.zpl | lp -d YourZebraPrinter\n", cfg.Labels.Dir)
	return nil
}
