package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/collection"
	"github.com/dittoscan/ditto/internal/inventory"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Generate PriceCharting collection upload files",
	Long: `Writes PriceCharting bulk-upload text files from the inventory, one per
supported category: videogames.txt, cards.txt, comics.txt, legos.txt. Each
line is a quoted search string PriceCharting can match against its product
database, e.g. "Donkey Kong 3 PAL NES CIB" or "Action Comics #13 1939 CGC 8".`,
	RunE: runCollection,
}

func init() {
	collectionCmd.Flags().String("output-dir", "", "output directory (default <inventory dir>/pricecharting)")

	rootCmd.AddCommand(collectionCmd)
}

func runCollection(cmd *cobra.Command, _ []string) error {
	store, err := inventory.NewStore(cfg.Dirs.Inventory)
	if err != nil {
		return err
	}
	records, err := store.Load()
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("output-dir")
	if dir == "" {
		dir = filepath.Join(cfg.Dirs.Inventory, "pricecharting")
	}

	res, err := collection.Generate(records, dir)
	if err != nil {
		return err
	}

	log := zap.L().With(zap.String("dir", dir))
	for path, count := range res.Files {
		log.Info("collection file written", zap.String("file", path), zap.Int("items", count))
	}
	log.Info("collection generation complete", zap.String("summary", res.Describe()))
	return nil
}
