package identify

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/evidence"
	"github.com/dittoscan/ditto/internal/jsonrepair"
	"github.com/dittoscan/ditto/internal/model"
	"github.com/dittoscan/ditto/internal/resilience"
	"github.com/dittoscan/ditto/internal/validate"
	"github.com/dittoscan/ditto/pkg/anthropic"
	"github.com/dittoscan/ditto/pkg/lens"
	"github.com/dittoscan/ditto/pkg/pricecharting"
)

// Config carries the orchestrator's runtime knobs.
type Config struct {
	// PublicBaseURL is the externally reachable URL serving the scan
	// directory; the reverse image search engine fetches images from it.
	PublicBaseURL string

	// OrganizedDir is the root under which processed images are filed by
	// container.
	OrganizedDir string

	AnalysisModel string
	VisionModel   string

	// MaxPricingResults caps how many PriceCharting candidates are offered
	// to the analysis model.
	MaxPricingResults int

	// GradeMismatchThreshold is the allowed delta between the vision-read
	// grade and the grade the analysis model reports.
	GradeMismatchThreshold float64

	Retry resilience.RetryConfig
}

// Item is one scanned image awaiting identification.
type Item struct {
	Path        string
	ContainerID string
	Sequence    int
	Graded      bool
}

// Orchestrator drives a single item through search, pricing, analysis, and
// filing.
type Orchestrator struct {
	search  lens.Client
	pricing pricecharting.Client
	llm     anthropic.Client
	cfg     Config
}

// New assembles an Orchestrator from its collaborators.
func New(search lens.Client, pricing pricecharting.Client, llm anthropic.Client, cfg Config) *Orchestrator {
	if cfg.MaxPricingResults <= 0 {
		cfg.MaxPricingResults = 5
	}
	if cfg.GradeMismatchThreshold <= 0 {
		cfg.GradeMismatchThreshold = 0.1
	}
	return &Orchestrator{search: search, pricing: pricing, llm: llm, cfg: cfg}
}

// Process identifies one scanned image and returns its inventory record.
// Processing never returns an error: unrecoverable failures produce a failed
// record so the container numbering stays aligned with the physical stack.
func (o *Orchestrator) Process(ctx context.Context, item Item) model.InventoryRecord {
	log := zap.L().With(
		zap.String("file", filepath.Base(item.Path)),
		zap.String("container", item.ContainerID),
		zap.Int("sequence", item.Sequence),
	)

	var reading model.GradeReading
	if item.Graded {
		reading = o.ReadGrade(ctx, item.Path)
	}

	resp, err := resilience.DoVal(ctx, o.retryConfig("serpapi", "lens search"),
		func(ctx context.Context) (*lens.SearchResponse, error) {
			return o.search.Search(ctx, o.publicImageURL(item.Path))
		})
	if err != nil {
		log.Error("image search failed", zap.Error(err))
		return failedRecord(item.ContainerID, item.Sequence, item.Path, err)
	}
	log.Info("image search complete", zap.Int("matches", len(resp.VisualMatches)))

	detection := evidence.Detect(resp.VisualMatches)
	var candidates []model.PricingCandidate
	var pricedAt *time.Time
	if detection.Eligible {
		candidates = o.lookupPricing(ctx, detection, log)
		if len(candidates) > 0 {
			now := time.Now().UTC()
			pricedAt = &now
		}
	}

	var visionReading *model.GradeReading
	if item.Graded {
		visionReading = &reading
	}

	analysis, err := o.analyze(ctx, resp.VisualMatches, visionReading, item.Graded, candidates)
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		return failedRecord(item.ContainerID, item.Sequence, item.Path, err)
	}

	mergeVisionReading(analysis, visionReading)

	rec := model.InventoryRecord{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		ContainerID:  item.ContainerID,
		Sequence:     item.Sequence,
		ItemName:     analysis.ItemName,
		Analysis:     analysis,
		GradeRead:    visionReading,
		Pricing:      candidates,
		PricingAt:    pricedAt,
		Status:       model.StatusSuccess,
		OriginalFile: filepath.Base(item.Path),
	}

	if err := o.finalize(&rec, item.Path, item.Graded); err != nil {
		log.Error("filing failed", zap.Error(err))
		return failedRecord(item.ContainerID, item.Sequence, item.Path, err)
	}

	log.Info("item identified",
		zap.String("name", rec.ItemName),
		zap.String("confidence", string(analysis.Confidence)),
		zap.Float64("value_usd", analysis.EstimatedValueUSD))
	return rec
}

// lookupPricing queries PriceCharting for the detected item and fetches
// detail for up to MaxPricingResults candidates. Pricing is advisory: any
// failure here degrades to an empty candidate list.
func (o *Orchestrator) lookupPricing(ctx context.Context, d evidence.Detection, log *zap.Logger) []model.PricingCandidate {
	query := evidence.PricingQuery(d)
	refs, err := resilience.DoVal(ctx, o.retryConfig("pricecharting", "search"),
		func(ctx context.Context) ([]pricecharting.ProductRef, error) {
			return o.pricing.Search(ctx, query)
		})
	if err != nil {
		log.Warn("pricing lookup failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	if len(refs) > o.cfg.MaxPricingResults {
		refs = refs[:o.cfg.MaxPricingResults]
	}

	candidates := make([]model.PricingCandidate, 0, len(refs))
	for _, ref := range refs {
		product, err := o.pricing.Product(ctx, ref.ID)
		if err != nil {
			log.Warn("pricing detail fetch failed", zap.String("product", ref.ID), zap.Error(err))
			continue
		}
		candidates = append(candidates, model.PricingCandidate{
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
	log.Info("pricing candidates gathered", zap.String("query", query), zap.Int("count", len(candidates)))
	return candidates
}

// analyze sends the assembled evidence to the text model and validates the
// returned JSON. Only network-class errors from the API call are retried;
// unparseable or invalid model output is terminal for the item.
func (o *Orchestrator) analyze(ctx context.Context, matches []lens.VisualMatch, reading *model.GradeReading, graded bool, candidates []model.PricingCandidate) (*model.Analysis, error) {
	instruction := AnalysisInstruction
	defaultBasis := model.BasisCompleteInBox
	if graded {
		instruction = GradedAnalysisInstruction
		defaultBasis = model.BasisGradedSlab
	}

	req := anthropic.MessageRequest{
		Model:     o.cfg.AnalysisModel,
		MaxTokens: 2048,
		System:    anthropic.BuildCachedSystemBlocks(instruction),
		Messages: []anthropic.Message{
			{Role: "user", Content: evidence.BuildContext(matches, reading, graded, candidates)},
		},
	}

	resp, err := resilience.DoVal(ctx, o.retryConfig("anthropic", "analysis"),
		func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return o.llm.CreateMessage(ctx, req)
		})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(o.cfg.AnalysisModel, "analysis")

	raw, err := jsonrepair.Repair(resp.Text())
	if err != nil {
		return nil, eris.Wrap(err, "identify: model returned unusable JSON")
	}

	opts := validate.Options{
		PricingOptionCount:     len(candidates),
		DefaultBasis:           defaultBasis,
		GradeMismatchThreshold: o.cfg.GradeMismatchThreshold,
	}
	if reading != nil {
		opts.VisionGrade = reading.Grade
	}
	analysis, err := validate.Analyze(raw, opts)
	if err != nil {
		return nil, eris.Wrap(err, "identify: analysis rejected")
	}
	return analysis, nil
}

// mergeVisionReading fills slab fields the analysis model left empty from
// the vision pass. The model's own grade is kept when both disagree (the
// validator already recorded the discrepancy); the record's GradeRead field
// carries the vision value alongside.
func mergeVisionReading(a *model.Analysis, reading *model.GradeReading) {
	if a == nil || reading == nil {
		return
	}
	if a.Grade == nil {
		a.Grade = reading.Grade
	}
	if a.Grader == "" {
		a.Grader = reading.GradingAuthority
	}
	if a.CertificationNumber == "" {
		a.CertificationNumber = reading.CertificationNumber
	}
	if a.LabelColor == "" {
		a.LabelColor = reading.LabelColor
	}
}

func (o *Orchestrator) retryConfig(service, operation string) resilience.RetryConfig {
	cfg := o.cfg.Retry
	cfg.OnRetry = resilience.RetryLogger(service, operation)
	return cfg
}

// publicImageURL maps a local scan file to the URL the search engine can
// fetch it from.
func (o *Orchestrator) publicImageURL(path string) string {
	base := strings.TrimRight(o.cfg.PublicBaseURL, "/")
	return base + "/" + url.PathEscape(filepath.Base(path))
}
