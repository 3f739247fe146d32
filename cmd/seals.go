package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/labels"
)

var sealsCmd = &cobra.Command{
	Use:   "seals",
	Short: "Track security seals on containers",
	Long: `Manages the mapping from container IDs to the numbered security seals
applied before shipment. Seal data lives in seal_tracking.json next to the
generated labels; run "labels" first to create it.`,
}

var sealsViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show all seal assignments",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tracker, err := labels.LoadSeals(cfg.Labels.Dir)
		if err != nil {
			return err
		}

		assigned := tracker.Assigned()
		if len(assigned) > 0 {
			fmt.Printf("Assigned (%d):\n", len(assigned))
			for _, pair := range assigned {
				fmt.Printf("  %s -> %s\n", pair[0], pair[1])
			}
		}
		if unassigned := tracker.Unassigned(); len(unassigned) > 0 {
			fmt.Printf("Unassigned (%d):\n", len(unassigned))
			for _, id := range unassigned {
				fmt.Printf("  %s\n", id)
			}
		}
		return nil
	},
}

var sealsAssignCmd = &cobra.Command{
	Use:   "assign TOTE-ID SEAL-NUMBER",
	Short: "Assign a seal to a container",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := labels.LoadSeals(cfg.Labels.Dir)
		if err != nil {
			return err
		}

		err = tracker.Assign(args[0], args[1], false)
		var inUse *labels.ErrSealInUse
		if eris.As(err, &inUse) {
			if !confirm(fmt.Sprintf("Seal %s already assigned to %s. Reassign to %s?",
				inUse.Seal, inUse.ContainerID, args[0])) {
				fmt.Println("Cancelled.")
				return nil
			}
			err = tracker.Assign(args[0], args[1], true)
		}
		if err != nil {
			return err
		}

		zap.L().Info("seal assigned",
			zap.String("container", args[0]),
			zap.String("seal", args[1]))
		return nil
	},
}

var sealsBulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Interactively assign seals to all unsealed containers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tracker, err := labels.LoadSeals(cfg.Labels.Dir)
		if err != nil {
			return err
		}

		unassigned := tracker.Unassigned()
		if len(unassigned) == 0 {
			fmt.Println("All containers have seals assigned.")
			return nil
		}

		fmt.Printf("%d containers need seal assignments\n", len(unassigned))
		fmt.Println("Enter seal numbers (or 'q' to quit, 's' to skip):")

		reader := bufio.NewReader(os.Stdin)
		for _, id := range unassigned {
			for {
				fmt.Printf("%s: ", id)
				line, err := reader.ReadString('\n')
				if err != nil {
					return nil
				}
				seal := strings.TrimSpace(line)

				if strings.EqualFold(seal, "q") {
					return nil
				}
				if seal == "" || strings.EqualFold(seal, "s") {
					fmt.Println("  Skipped.")
					break
				}

				err = tracker.Assign(id, seal, false)
				var inUse *labels.ErrSealInUse
				if eris.As(err, &inUse) {
					fmt.Printf("  Already assigned to %s\n", inUse.ContainerID)
					continue
				}
				if err != nil {
					return err
				}
				fmt.Println("  Assigned.")
				break
			}
		}
		return nil
	},
}

func init() {
	sealsCmd.AddCommand(sealsViewCmd, sealsAssignCmd, sealsBulkCmd)
	rootCmd.AddCommand(sealsCmd)
}
