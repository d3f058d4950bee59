// Package ratio derives growth and composition ratios from balance-sheet line items.
// Every function in this package is pure: inputs are never mutated and the same
// rows always produce the same table.
package ratio

// Epsilon replaces a zero divisor so growth from a zero base stays finite.
// The result is an approximation, not a true percentage: prior=0, current=100
// yields 1e13 percent.
const Epsilon = 1e-9

// LineItem is one row of the uploaded statement.
type LineItem struct {
	Label   string  `json:"label"`
	Prior   float64 `json:"prior"`   // prior-period value
	Current float64 `json:"current"` // current-period value
}

// EnrichedRow is a LineItem plus its derived columns.
type EnrichedRow struct {
	LineItem
	GrowthPercent       float64 `json:"growth_percent"`
	PriorSharePercent   float64 `json:"prior_share_percent"`   // % of total assets, prior period
	CurrentSharePercent float64 `json:"current_share_percent"` // % of total assets, current period
}

// Table is the enriched statement in input order.
type Table []EnrichedRow

// Markers are the label fragments used to locate the rows KPIs depend on.
// Matching is a case-insensitive substring test; the first match wins.
type Markers struct {
	TotalAssets          string `yaml:"total_assets" toml:"total_assets" json:"total_assets"`
	ShortTermAssets      string `yaml:"short_term_assets" toml:"short_term_assets" json:"short_term_assets"`
	ShortTermLiabilities string `yaml:"short_term_liabilities" toml:"short_term_liabilities" json:"short_term_liabilities"`
}

// DefaultMarkers returns the Vietnamese statement labels (VAS balance sheet).
func DefaultMarkers() Markers {
	return Markers{
		TotalAssets:          "TỔNG CỘNG TÀI SẢN",
		ShortTermAssets:      "TÀI SẢN NGẮN HẠN",
		ShortTermLiabilities: "NỢ NGẮN HẠN",
	}
}

// EnglishMarkers returns labels for IFRS/US GAAP style statements.
func EnglishMarkers() Markers {
	return Markers{
		TotalAssets:          "TOTAL ASSETS",
		ShortTermAssets:      "TOTAL CURRENT ASSETS",
		ShortTermLiabilities: "TOTAL CURRENT LIABILITIES",
	}
}

// WithDefaults fills empty fields from DefaultMarkers.
func (m Markers) WithDefaults() Markers {
	d := DefaultMarkers()
	if m.TotalAssets == "" {
		m.TotalAssets = d.TotalAssets
	}
	if m.ShortTermAssets == "" {
		m.ShortTermAssets = d.ShortTermAssets
	}
	if m.ShortTermLiabilities == "" {
		m.ShortTermLiabilities = d.ShortTermLiabilities
	}
	return m
}
