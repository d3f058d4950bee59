package narrative

import (
	"fmt"

	"balance_insight/pkg/core/ratio"
)

// DataExcerpt is the data block embedded in the summary prompt: the full
// table followed by short-term asset growth and the current ratio for both
// periods. When any of those indicators cannot be derived, only the table is
// sent.
func DataExcerpt(t ratio.Table, markers ratio.Markers) string {
	table := t.Markdown()

	kpis, err := ratio.DeriveKPIs(t, markers)
	if err != nil || !kpis.ShortTermGrowth.Available || !kpis.CurrentRatio.Available || !kpis.PriorCurrentRatio.Available {
		return table
	}

	indicators := ratio.MarkdownPairs([2]string{"Indicator", "Value"}, [][2]string{
		{"Short-term assets growth (%)", fmt.Sprintf("%.2f%%", kpis.ShortTermGrowth.Value)},
		{"Current ratio (prior year)", fmt.Sprintf("%.2f", kpis.PriorCurrentRatio.Value)},
		{"Current ratio (current year)", fmt.Sprintf("%.2f", kpis.CurrentRatio.Value)},
	})
	return "Full analysis table:\n\n" + table + "\nKey indicators:\n\n" + indicators
}
