package model

import "time"

// RecordStatus marks whether an item made it through the identification
// pipeline.
type RecordStatus string

const (
	StatusSuccess RecordStatus = "success"
	StatusFailed  RecordStatus = "failed"
)

// InventoryRecord is one physical item as it appears in the persisted
// inventory. Exactly one record is produced per scanned item image, success
// or failure. Records are appended by the scanner and only ever mutated by
// the explicit removal/update tools.
type InventoryRecord struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	ContainerID string             `json:"container_id"`
	Sequence    int                `json:"sequence"`
	ItemName    string             `json:"item_name"`
	ImageFile   string             `json:"image_file,omitempty"`
	ImagePath   string             `json:"image_path,omitempty"`
	Analysis    *Analysis          `json:"analysis,omitempty"`
	GradeRead   *GradeReading      `json:"grade_reading,omitempty"`
	Pricing     []PricingCandidate `json:"pricing_options,omitempty"`
	PricingAt   *time.Time         `json:"pricing_updated_at,omitempty"`
	Status      RecordStatus       `json:"status"`
	Error       string             `json:"error,omitempty"`
	// OriginalFile is set on failed records so the unprocessed scan can be
	// located afterwards.
	OriginalFile string `json:"original_file,omitempty"`
}

// Succeeded reports whether the record carries a usable analysis.
func (r *InventoryRecord) Succeeded() bool {
	return r.Status == StatusSuccess && r.Analysis != nil
}

// EstimatedValue returns the analysis value, or 0 for failed records.
func (r *InventoryRecord) EstimatedValue() float64 {
	if r.Analysis == nil {
		return 0
	}
	return r.Analysis.EstimatedValueUSD
}

// PricingCandidate is one product match returned by the pricing lookup.
// Candidates are immutable once fetched; the analysis references them by
// 1-based index, never by mutation.
type PricingCandidate struct {
	ProductName string  `json:"product_name"`
	Category    string  `json:"category,omitempty"`
	LoosePrice  *int    `json:"loose_price,omitempty"`
	CIBPrice    *int    `json:"cib_price,omitempty"`
	NewPrice    *int    `json:"new_price,omitempty"`
	UsedPrice   *int    `json:"used_price,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	UPC         string  `json:"upc,omitempty"`
	ProductURL  string  `json:"product_url,omitempty"`
}

// GradeReading is the output of the vision pass over a slab image. It is
// consumed by the evidence assembler and cross-validated against the text
// model's own grade; it is not persisted on its own.
type GradeReading struct {
	Grade               *float64 `json:"grade"`
	GradingAuthority    string   `json:"grading_authority,omitempty"`
	CertificationNumber string   `json:"certification_number,omitempty"`
	LabelColor          string   `json:"label_color,omitempty"`
}

// Found reports whether the vision pass read anything off a slab label.
func (g *GradeReading) Found() bool {
	if g == nil {
		return false
	}
	return g.Grade != nil || g.GradingAuthority != ""
}
