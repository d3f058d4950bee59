package ratio

import "sort"

// Chart selection sizes used by the dashboard.
const (
	ComparisonTopN  = 10
	GrowthTopN      = 10
	CompositionTopN = 5
)

// Series is one named value array of a bar chart.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// BarChartData is the shape bar chart renderers consume.
type BarChartData struct {
	Title      string   `json:"title"`
	Categories []string `json:"categories"`
	Series     []Series `json:"series"`
	// Positive flags each category of the first series, used for colouring.
	Positive []bool `json:"positive,omitempty"`
}

// PieChartData is the shape pie chart renderers consume.
type PieChartData struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// TopByCurrent returns up to n rows with the largest current value,
// descending. Ties keep input order.
func TopByCurrent(t Table, n int) Table {
	return topBy(t, n, func(r EnrichedRow) float64 { return r.Current })
}

// TopByGrowth returns up to n rows with the largest signed growth, descending.
// Large negative growth is only included when fewer than n rows grew more.
func TopByGrowth(t Table, n int) Table {
	return topBy(t, n, func(r EnrichedRow) float64 { return r.GrowthPercent })
}

func topBy(t Table, n int, metric func(EnrichedRow) float64) Table {
	out := make(Table, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool {
		return metric(out[i]) > metric(out[j])
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// ComparisonChart selects the top rows by current value with both periods.
func ComparisonChart(t Table) BarChartData {
	top := TopByCurrent(t, ComparisonTopN)
	prior := make([]float64, len(top))
	current := make([]float64, len(top))
	for i, r := range top {
		prior[i] = r.Prior
		current[i] = r.Current
	}
	return BarChartData{
		Title:      "Top 10 line items",
		Categories: top.Labels(),
		Series: []Series{
			{Name: "Prior year", Values: prior},
			{Name: "Current year", Values: current},
		},
	}
}

// GrowthChart selects the top rows by growth percent.
func GrowthChart(t Table) BarChartData {
	top := TopByGrowth(t, GrowthTopN)
	growth := make([]float64, len(top))
	positive := make([]bool, len(top))
	for i, r := range top {
		growth[i] = r.GrowthPercent
		positive[i] = r.GrowthPercent > 0
	}
	return BarChartData{
		Title:      "Top 10 growth rates",
		Categories: top.Labels(),
		Series:     []Series{{Name: "Growth (%)", Values: growth}},
		Positive:   positive,
	}
}

// CompositionChart selects the largest rows by current value for a pie chart.
func CompositionChart(t Table) PieChartData {
	top := TopByCurrent(t, CompositionTopN)
	values := make([]float64, len(top))
	for i, r := range top {
		values[i] = r.Current
	}
	return PieChartData{
		Title:  "Top 5 asset composition (current year)",
		Labels: top.Labels(),
		Values: values,
	}
}
