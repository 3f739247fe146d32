package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/inventory"
)

var removeCmd = &cobra.Command{
	Use:   "remove TOTE-ID SEQUENCE",
	Short: "Remove an inventory entry",
	Long: `Removes one entry by container ID and item sequence, then renumbers the
remaining items in that container so sequences stay contiguous. A backup is
written before the change.

Examples:
  remove TOTE-002 54
  remove TOTE-001 12 --yes`,
	Args: cobra.ExactArgs(2),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	containerID := args[0]
	sequence, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("sequence must be a number: %w", err)
	}

	store, err := inventory.NewStore(cfg.Dirs.Inventory)
	if err != nil {
		return err
	}

	records, err := store.Load()
	if err != nil {
		return err
	}
	var target *string
	for i := range records {
		if records[i].ContainerID == containerID && records[i].Sequence == sequence {
			desc := records[i].ItemName
			if !records[i].Succeeded() {
				desc = "(failed entry)"
			}
			target = &desc
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no item found: %s #%d", containerID, sequence)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && !confirm(fmt.Sprintf("Remove %s #%d %q?", containerID, sequence, *target)) {
		fmt.Println("Cancelled.")
		return nil
	}

	backup, err := store.Backup(cfg.Dirs.Backups)
	if err != nil {
		return err
	}

	removed, err := store.Remove(containerID, sequence)
	if err != nil {
		return err
	}

	zap.L().Info("item removed",
		zap.String("container", containerID),
		zap.Int("sequence", sequence),
		zap.String("item", removed.ItemName),
		zap.Float64("value_usd", removed.EstimatedValue()),
		zap.String("backup", backup))
	return nil
}
