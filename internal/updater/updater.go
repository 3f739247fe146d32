// Package updater refreshes PriceCharting data across an existing inventory:
// re-queries eligible items, picks the price matching each item's pricing
// basis, and rewrites the stored valuation.
package updater

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/evidence"
	"github.com/dittoscan/ditto/internal/inventory"
	"github.com/dittoscan/ditto/internal/model"
	"github.com/dittoscan/ditto/internal/resilience"
	"github.com/dittoscan/ditto/pkg/pricecharting"
)

// eligibleCategories are the categories PriceCharting tracks.
var eligibleCategories = map[model.Category]bool{
	model.CategoryVideoGameSoftware: true,
	model.CategoryVideoGameConsole:  true,
	model.CategoryVideoGameAccess:   true,
	model.CategoryLEGO:              true,
	model.CategoryComicBooks:        true,
	model.CategoryTradingCards:      true,
}

// Options filter which records an update run touches.
type Options struct {
	// DryRun reports what would change without writing anything.
	DryRun bool
	// NewOnly skips records that already carry pricing data.
	NewOnly bool
	// Categories restricts the run to the named categories; empty means all.
	Categories []string

	MaxResults int
	BackupDir  string
	Retry      resilience.RetryConfig
}

// Stats summarizes an update run.
type Stats struct {
	Considered int
	Updated    int
	NotFound   int
	APICalls   int
	TotalValue float64
	BackupPath string
}

// Updater refreshes pricing for stored inventory records.
type Updater struct {
	pricing pricecharting.Client
	store   *inventory.Store
}

// New builds an Updater.
func New(pricing pricecharting.Client, store *inventory.Store) *Updater {
	return &Updater{pricing: pricing, store: store}
}

// Run executes one update pass over the whole inventory.
func (u *Updater) Run(ctx context.Context, opts Options) (*Stats, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}

	records, err := u.store.Load()
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	if !opts.DryRun && opts.BackupDir != "" {
		path, err := u.store.Backup(opts.BackupDir)
		if err != nil {
			return nil, err
		}
		stats.BackupPath = path
	}

	wanted := map[string]bool{}
	for _, c := range opts.Categories {
		wanted[c] = true
	}

	for i := range records {
		rec := &records[i]
		if !eligible(rec) {
			continue
		}
		if len(wanted) > 0 && !wanted[string(rec.Analysis.Category)] {
			continue
		}
		if opts.NewOnly && len(rec.Pricing) > 0 {
			continue
		}
		stats.Considered++

		log := zap.L().With(
			zap.String("item", rec.ItemName),
			zap.String("container", rec.ContainerID),
			zap.Int("sequence", rec.Sequence))

		if opts.DryRun {
			log.Info("dry run: would refresh pricing",
				zap.String("category", string(rec.Analysis.Category)))
			continue
		}

		candidates, calls := u.fetch(ctx, rec, opts)
		stats.APICalls += calls
		if len(candidates) == 0 {
			log.Info("no pricing match")
			stats.NotFound++
			continue
		}

		price, option, confidence := SelectBestPrice(rec.Analysis.PricingBasis, candidates)
		if price == nil {
			log.Info("matches found but no usable price")
			stats.NotFound++
			continue
		}

		old := rec.Analysis.EstimatedValueUSD
		now := time.Now().UTC()
		rec.Pricing = candidates
		rec.PricingAt = &now
		rec.Analysis.EstimatedValueUSD = float64(*price) / 100
		rec.Analysis.PriceSource = fmt.Sprintf("PriceCharting (option %d)", option)
		rec.Analysis.MatchUsed = &option
		rec.Analysis.MatchConfidence = confidence
		stats.Updated++

		log.Info("price refreshed",
			zap.Float64("old_usd", old),
			zap.Float64("new_usd", rec.Analysis.EstimatedValueUSD),
			zap.String("product", candidates[option-1].ProductName))
	}

	if !opts.DryRun && stats.Updated > 0 {
		if err := u.store.Save(records); err != nil {
			return nil, err
		}
	}
	stats.TotalValue = inventory.TotalValue(records)
	return stats, nil
}

// fetch queries PriceCharting for one record, reusing the same query shape
// the scanner builds from search detection.
func (u *Updater) fetch(ctx context.Context, rec *model.InventoryRecord, opts Options) ([]model.PricingCandidate, int) {
	query := evidence.PricingQuery(evidence.Detection{
		Eligible: true,
		Name:     rec.ItemName,
		Category: rec.Analysis.Category,
		Platform: rec.Analysis.Platform,
	})

	calls := 1
	cfg := opts.Retry
	cfg.OnRetry = resilience.RetryLogger("pricecharting", "search")
	refs, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]pricecharting.ProductRef, error) {
		return u.pricing.Search(ctx, query)
	})
	if err != nil {
		zap.L().Warn("pricing search failed", zap.String("query", query), zap.Error(err))
		return nil, calls
	}
	if len(refs) > opts.MaxResults {
		refs = refs[:opts.MaxResults]
	}

	var out []model.PricingCandidate
	for _, ref := range refs {
		calls++
		product, err := u.pricing.Product(ctx, ref.ID)
		if err != nil {
			zap.L().Warn("pricing detail fetch failed", zap.String("product", ref.ID), zap.Error(err))
			continue
		}
		out = append(out, model.PricingCandidate{
			ProductName: product.ProductName,
			Category:    product.ConsoleName,
			LoosePrice:  product.LoosePrice,
			CIBPrice:    product.CIBPrice,
			NewPrice:    product.NewPrice,
			UsedPrice:   product.UsedPrice,
			Genre:       product.Genre,
			ReleaseDate: product.ReleaseDate,
			UPC:         product.UPC,
			ProductURL:  product.URL(),
		})
	}
	return out, calls
}

// SelectBestPrice picks a price (in cents) from the candidates for the given
// pricing basis. The first candidate is taken as the best match; the basis
// decides which of its price fields applies. Returns the price, the 1-based
// option number, and the match confidence.
func SelectBestPrice(basis model.PricingBasis, candidates []model.PricingCandidate) (*int, int, model.MatchConfidence) {
	if len(candidates) == 0 {
		return nil, 0, model.MatchNone
	}
	best := candidates[0]

	switch {
	case basis == model.BasisLooseCart && best.LoosePrice != nil:
		return best.LoosePrice, 1, model.MatchHigh
	case basis == model.BasisCompleteInBox && best.CIBPrice != nil:
		return best.CIBPrice, 1, model.MatchHigh
	case basis == model.BasisNewSealed && best.NewPrice != nil:
		return best.NewPrice, 1, model.MatchHigh
	case best.UsedPrice != nil:
		return best.UsedPrice, 1, model.MatchMedium
	case best.LoosePrice != nil:
		return best.LoosePrice, 1, model.MatchMedium
	}
	return nil, 0, model.MatchLow
}

// eligible reports whether a record can be priced at all.
func eligible(rec *model.InventoryRecord) bool {
	return rec.Succeeded() && rec.Analysis != nil && eligibleCategories[rec.Analysis.Category]
}
