// Package chart renders the dashboard chart selections as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"balance_insight/pkg/core/ratio"
)

// Kind names one dashboard chart.
type Kind string

const (
	Comparison  Kind = "comparison"
	Growth      Kind = "growth"
	Composition Kind = "composition"
)

// Kinds lists every chart in display order.
var Kinds = []Kind{Comparison, Growth, Composition}

// ErrNoData is returned when a selection has nothing to draw.
var ErrNoData = errors.New("chart has no data to draw")

// Default image size in pixels.
const (
	Width  = 900
	Height = 500
)

// ParseKind validates a chart name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart %q", s)
}

// Data returns the selection behind kind: ratio.BarChartData or
// ratio.PieChartData.
func Data(t ratio.Table, kind Kind) (any, error) {
	switch kind {
	case Comparison:
		return ratio.ComparisonChart(t), nil
	case Growth:
		return ratio.GrowthChart(t), nil
	case Composition:
		return ratio.CompositionChart(t), nil
	}
	return nil, fmt.Errorf("unknown chart %q", kind)
}

// Render writes the PNG for kind computed from t.
func Render(w io.Writer, t ratio.Table, kind Kind) error {
	switch kind {
	case Comparison:
		return ComparisonPNG(w, ratio.ComparisonChart(t))
	case Growth:
		return GrowthPNG(w, ratio.GrowthChart(t))
	case Composition:
		return CompositionPNG(w, ratio.CompositionChart(t))
	}
	return fmt.Errorf("unknown chart %q", kind)
}

// shorten keeps axis labels readable for long statement captions.
func shorten(label string, max int) string {
	r := []rune(label)
	if len(r) <= max {
		return label
	}
	return string(r[:max-1]) + "…"
}

// compact formats axis values with SI suffixes: 1.2k, 3.4M.
func compact(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v < 1000 {
		return sign + humanize.FtoaWithDigits(round2(v), 2)
	}
	value, prefix := humanize.ComputeSI(v)
	value = round2(value)
	if next, ok := nextPrefix[prefix]; ok && value >= 1000 {
		value, prefix = round2(value/1000), next
	}
	return sign + humanize.FtoaWithDigits(value, 2) + prefix
}

// FtoaWithDigits truncates, so values are rounded to two decimals first.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// nextPrefix carries 999.996k over to 1M after rounding.
var nextPrefix = map[string]string{"k": "M", "M": "G", "G": "T", "T": "P", "P": "E"}
