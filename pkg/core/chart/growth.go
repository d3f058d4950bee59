package chart

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"balance_insight/pkg/core/ratio"
)

var (
	positiveColor = drawing.ColorFromHex("2E7D32")
	negativeColor = drawing.ColorFromHex("C62828")
)

// GrowthPNG draws one bar per category, green for growth and red for
// decline.
func GrowthPNG(w io.Writer, data ratio.BarChartData) error {
	if len(data.Categories) == 0 || len(data.Series) == 0 {
		return ErrNoData
	}
	values := data.Series[0].Values

	bars := make([]gochart.Value, 0, len(data.Categories))
	nonZero := false
	for i, c := range data.Categories {
		v := 0.0
		if i < len(values) {
			v = values[i]
		}
		positive := v > 0
		if i < len(data.Positive) {
			positive = data.Positive[i]
		}
		fill := negativeColor
		if positive {
			fill = positiveColor
		}
		if v != 0 {
			nonZero = true
		}
		bars = append(bars, gochart.Value{
			Label: shorten(c, 14),
			Value: v,
			Style: gochart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
		})
	}
	if !nonZero {
		return ErrNoData
	}

	bc := gochart.BarChart{
		Title:        data.Title,
		Width:        Width,
		Height:       Height,
		BarWidth:     48,
		UseBaseValue: true,
		BaseValue:    0,
		Background:   gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return humanize.FormatFloat("#,###.", f) + "%"
				}
				return ""
			},
		},
		Bars: bars,
	}
	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("rendering growth chart: %w", err)
	}
	return nil
}
