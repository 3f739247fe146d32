package scanner

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/dittoscan/ditto/internal/model"
)

// Stats accumulates what a scanning session accomplished.
type Stats struct {
	Processed  int
	Succeeded  int
	Failed     int
	Skipped    int
	Containers int
	TotalValue float64

	NeedsReview []string
}

func (st *Stats) record(rec model.InventoryRecord) {
	st.Processed++
	if !rec.Succeeded() {
		st.Failed++
		return
	}
	st.Succeeded++
	st.TotalValue += rec.EstimatedValue()
	if rec.Analysis != nil && rec.Analysis.ManualReviewRecommended {
		st.NeedsReview = append(st.NeedsReview,
			fmt.Sprintf("%s #%d %s", rec.ContainerID, rec.Sequence, rec.ItemName))
	}
}

// Render formats the session summary as a terminal table.
func (st Stats) Render() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Scanning Session")

	tw.AppendRow(table.Row{"Items processed", strconv.Itoa(st.Processed)})
	tw.AppendRow(table.Row{"Identified", strconv.Itoa(st.Succeeded)})
	tw.AppendRow(table.Row{"Failed", strconv.Itoa(st.Failed)})
	tw.AppendRow(table.Row{"Ignored (no container)", strconv.Itoa(st.Skipped)})
	tw.AppendRow(table.Row{"Containers", strconv.Itoa(st.Containers)})
	tw.AppendRow(table.Row{"Estimated value", fmt.Sprintf("$%.2f", st.TotalValue)})
	tw.AppendRow(table.Row{"Flagged for review", strconv.Itoa(len(st.NeedsReview))})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})

	out := tw.Render()
	for _, item := range st.NeedsReview {
		out += "\n  review: " + item
	}
	return out
}
