// Package cli implements the balancectl command line and its terminal
// rendering.
package cli

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"balance_insight/pkg/core/ratio"
)

// FormatAmount renders a statement value with thousands separators and no
// decimals: 1234567.8 -> "1,234,568".
func FormatAmount(v float64) string {
	return humanize.FormatFloat("#,###.", math.Round(v))
}

// FormatPercent renders a percentage with two decimals. Growth computed
// against a zero prior value is shown as "n/m" (not meaningful).
func FormatPercent(v float64) string {
	if math.Abs(v) >= 1e6 {
		return "n/m"
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatKPI renders an optional KPI or "N/A".
func FormatKPI(k ratio.KPI, percent bool) string {
	if !k.Available {
		return "N/A"
	}
	if percent {
		return FormatPercent(k.Value)
	}
	return fmt.Sprintf("%.2f", k.Value)
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	if key == "" {
		return "(not set)"
	}
	return "****"
}
