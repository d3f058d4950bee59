package chart

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"balance_insight/pkg/core/ratio"
)

var seriesColors = []color.Color{
	color.RGBA{R: 0x90, G: 0xA4, B: 0xAE, A: 0xFF},
	color.RGBA{R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF},
}

// ComparisonPNG draws grouped bars, one group per category and one bar per
// series.
func ComparisonPNG(w io.Writer, data ratio.BarChartData) error {
	if len(data.Categories) == 0 || len(data.Series) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = data.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Value"
	p.Y.Tick.Marker = humanTicks{}
	p.Legend.Top = true

	barWidth := vg.Points(14)
	n := len(data.Series)
	for i, s := range data.Series {
		values := make(plotter.Values, len(data.Categories))
		for j := range values {
			if j < len(s.Values) {
				values[j] = s.Values[j]
			}
		}
		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return fmt.Errorf("building %s bars: %w", s.Name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = seriesColors[i%len(seriesColors)]
		bars.Offset = barWidth * vg.Length(2*i-n+1) / 2
		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}

	labels := make([]string, len(data.Categories))
	for i, c := range data.Categories {
		labels[i] = shorten(c, 18)
	}
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 0.5
	p.Add(plotter.NewGrid())

	wt, err := p.WriterTo(vg.Points(Width*0.75), vg.Points(Height*0.75), "png")
	if err != nil {
		return fmt.Errorf("rendering comparison chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// humanTicks labels the value axis with compact thousands.
type humanTicks struct{}

func (humanTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = compact(ticks[i].Value)
		}
	}
	return ticks
}
