package inventory

import (
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/dittoscan/ditto/internal/model"
)

// csvRow is the flat export schema. Failed records keep their container and
// sequence so gaps are visible, with everything else blank.
type csvRow struct {
	ToteID       string  `csv:"tote_id"`
	ItemSequence int     `csv:"item_sequence"`
	ItemName     string  `csv:"item_name"`
	Category     string  `csv:"category"`
	Grade        string  `csv:"grade"`
	Grader       string  `csv:"grader"`
	ValueUSD     float64 `csv:"estimated_value_usd"`
	Confidence   string  `csv:"confidence"`
	ManualReview string  `csv:"manual_review"`
	Status       string  `csv:"status"`
}

func writeCSV(path string, records []model.InventoryRecord) error {
	rows := make([]csvRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, toCSVRow(r))
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "inventory: marshal csv")
	}
	if err := writeFileAtomic(path, data); err != nil {
		return eris.Wrapf(err, "inventory: write %s", path)
	}
	return nil
}

func toCSVRow(r model.InventoryRecord) csvRow {
	row := csvRow{
		ToteID:       r.ContainerID,
		ItemSequence: r.Sequence,
		Status:       string(r.Status),
	}
	if !r.Succeeded() || r.Analysis == nil {
		return row
	}

	a := r.Analysis
	row.ItemName = r.ItemName
	row.Category = string(a.Category)
	row.ValueUSD = a.EstimatedValueUSD
	row.Confidence = string(a.Confidence)
	row.Grader = a.Grader
	if a.Grade != nil {
		row.Grade = strconv.FormatFloat(*a.Grade, 'f', -1, 64)
	}
	if a.ManualReviewRecommended {
		row.ManualReview = "YES"
	} else {
		row.ManualReview = "NO"
	}
	return row
}
