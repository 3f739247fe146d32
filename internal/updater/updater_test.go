package updater

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittoscan/ditto/internal/inventory"
	"github.com/dittoscan/ditto/internal/model"
	"github.com/dittoscan/ditto/internal/resilience"
	"github.com/dittoscan/ditto/pkg/pricecharting"
)

type stubPricing struct {
	refs     []pricecharting.ProductRef
	products map[string]*pricecharting.Product
	queries  []string
}

func (s *stubPricing) Search(ctx context.Context, query string) ([]pricecharting.ProductRef, error) {
	s.queries = append(s.queries, query)
	return s.refs, nil
}

func (s *stubPricing) Product(ctx context.Context, id string) (*pricecharting.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, eris.New("not found")
	}
	return p, nil
}

func intp(v int) *int { return &v }

func newStore(t *testing.T, records ...model.InventoryRecord) *inventory.Store {
	t.Helper()
	store, err := inventory.NewStore(t.TempDir())
	require.NoError(t, err)
	if len(records) > 0 {
		require.NoError(t, store.Save(records))
	}
	return store
}

func gameRecord(name string) model.InventoryRecord {
	return model.InventoryRecord{
		ID:          "rec-" + name,
		ContainerID: "TOTE-001",
		Sequence:    1,
		ItemName:    name,
		Status:      model.StatusSuccess,
		Analysis: &model.Analysis{
			ItemName:          name,
			Platform:          "SNES",
			Category:          model.CategoryVideoGameSoftware,
			PricingBasis:      model.BasisLooseCart,
			EstimatedValueUSD: 10,
			Confidence:        model.ConfidenceMedium,
		},
	}
}

func TestSelectBestPrice(t *testing.T) {
	t.Parallel()

	loose := model.PricingCandidate{LoosePrice: intp(4500), CIBPrice: intp(12000), NewPrice: intp(30000)}

	tests := []struct {
		name       string
		basis      model.PricingBasis
		candidates []model.PricingCandidate
		wantPrice  *int
		wantConf   model.MatchConfidence
	}{
		{"loose cart uses loose price", model.BasisLooseCart, []model.PricingCandidate{loose}, intp(4500), model.MatchHigh},
		{"cib uses cib price", model.BasisCompleteInBox, []model.PricingCandidate{loose}, intp(12000), model.MatchHigh},
		{"sealed uses new price", model.BasisNewSealed, []model.PricingCandidate{loose}, intp(30000), model.MatchHigh},
		{
			"fallback to used",
			model.BasisGradedSlab,
			[]model.PricingCandidate{{UsedPrice: intp(9900)}},
			intp(9900), model.MatchMedium,
		},
		{
			"fallback to loose",
			model.BasisCompleteInBox,
			[]model.PricingCandidate{{LoosePrice: intp(2000)}},
			intp(2000), model.MatchMedium,
		},
		{"no usable price", model.BasisLooseCart, []model.PricingCandidate{{}}, nil, model.MatchLow},
		{"no candidates", model.BasisLooseCart, nil, nil, model.MatchNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			price, option, conf := SelectBestPrice(tt.basis, tt.candidates)
			assert.Equal(t, tt.wantConf, conf)
			if tt.wantPrice == nil {
				assert.Nil(t, price)
				assert.Zero(t, option)
			} else {
				require.NotNil(t, price)
				assert.Equal(t, *tt.wantPrice, *price)
				assert.Equal(t, 1, option)
			}
		})
	}
}

func TestRunUpdatesEligibleRecords(t *testing.T) {
	store := newStore(t, gameRecord("Super Metroid"))
	pricer := &stubPricing{
		refs: []pricecharting.ProductRef{{ID: "6910"}},
		products: map[string]*pricecharting.Product{
			"6910": {ID: "6910", ProductName: "Super Metroid", ConsoleName: "Super Nintendo", LoosePrice: intp(4500)},
		},
	}
	u := New(pricer, store)

	stats, err := u.Run(context.Background(), Options{
		BackupDir: t.TempDir(),
		Retry:     resilience.RetryConfig{MaxAttempts: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Considered)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 2, stats.APICalls)
	assert.NotEmpty(t, stats.BackupPath)
	assert.InDelta(t, 45.0, stats.TotalValue, 0.001)
	require.Len(t, pricer.queries, 1)
	assert.Equal(t, "Super Metroid super-nintendo", pricer.queries[0])

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	a := records[0].Analysis
	assert.InDelta(t, 45.0, a.EstimatedValueUSD, 0.001)
	assert.Equal(t, "PriceCharting (option 1)", a.PriceSource)
	require.NotNil(t, a.MatchUsed)
	assert.Equal(t, 1, *a.MatchUsed)
	assert.Equal(t, model.MatchHigh, a.MatchConfidence)
	require.Len(t, records[0].Pricing, 1)
	require.NotNil(t, records[0].PricingAt)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	store := newStore(t, gameRecord("Super Metroid"))
	pricer := &stubPricing{}
	u := New(pricer, store)

	stats, err := u.Run(context.Background(), Options{DryRun: true, BackupDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Considered)
	assert.Zero(t, stats.Updated)
	assert.Zero(t, stats.APICalls)
	assert.Empty(t, stats.BackupPath)
	assert.Empty(t, pricer.queries)

	records, err := store.Load()
	require.NoError(t, err)
	assert.InDelta(t, 10.0, records[0].Analysis.EstimatedValueUSD, 0.001)
}

func TestRunFilters(t *testing.T) {
	comic := gameRecord("Amazing Spider-Man")
	comic.ID = "rec-comic"
	comic.Analysis.Category = model.CategoryComicBooks

	priced := gameRecord("Chrono Trigger")
	priced.ID = "rec-priced"
	priced.Pricing = []model.PricingCandidate{{ProductName: "Chrono Trigger"}}

	failed := model.InventoryRecord{ID: "rec-failed", Status: model.StatusFailed}
	electronics := gameRecord("Old Receiver")
	electronics.ID = "rec-elec"
	electronics.Analysis.Category = model.CategoryElectronics

	store := newStore(t, comic, priced, failed, electronics)
	u := New(&stubPricing{}, store)

	// Category filter.
	stats, err := u.Run(context.Background(), Options{
		DryRun:     true,
		Categories: []string{"Comic Books"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Considered)

	// NewOnly skips the already-priced record; failed and Electronics are
	// never eligible.
	stats, err = u.Run(context.Background(), Options{DryRun: true, NewOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Considered)
}

func TestRunNoMatches(t *testing.T) {
	store := newStore(t, gameRecord("Super Metroid"))
	u := New(&stubPricing{}, store)

	stats, err := u.Run(context.Background(), Options{
		BackupDir: t.TempDir(),
		Retry:     resilience.RetryConfig{MaxAttempts: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NotFound)
	assert.Zero(t, stats.Updated)
}
