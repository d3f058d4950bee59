package chart

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"

	"balance_insight/pkg/core/ratio"
)

// CompositionPNG draws a pie of the positive values in data. Slices that are
// zero or negative cannot be drawn and are dropped.
func CompositionPNG(w io.Writer, data ratio.PieChartData) error {
	var total float64
	for _, v := range data.Values {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return ErrNoData
	}

	slices := make([]gochart.Value, 0, len(data.Values))
	for i, v := range data.Values {
		if v <= 0 || i >= len(data.Labels) {
			continue
		}
		share := v / total * 100
		slices = append(slices, gochart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", shorten(data.Labels[i], 24), share),
			Value: v,
		})
	}

	pie := gochart.PieChart{
		Title:  data.Title,
		Width:  Height,
		Height: Height,
		Values: slices,
	}
	if err := pie.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("rendering composition chart: %w", err)
	}
	return nil
}
