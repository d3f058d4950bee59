package ratio

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Process computes growth and share columns for every row.
//
// The total-assets row (first label containing markers.TotalAssets) supplies the
// share divisors. Without it the whole computation fails with *ValidationError.
// Output has the same length and order as rows.
func Process(rows []LineItem, markers Markers) (Table, error) {
	markers = markers.WithDefaults()
	if len(rows) == 0 {
		return nil, &ValidationError{Reason: "no line items"}
	}

	t := make(Table, len(rows))
	for i, r := range rows {
		r.Prior = finite(r.Prior)
		r.Current = finite(r.Current)
		t[i] = EnrichedRow{
			LineItem:      r,
			GrowthPercent: bounded((r.Current - r.Prior) / nonZero(r.Prior) * 100),
		}
	}

	idx := t.index(markers.TotalAssets)
	if idx < 0 {
		return nil, &ValidationError{Marker: markers.TotalAssets, Reason: "total assets row not found"}
	}
	priorDiv := nonZero(t[idx].Prior)
	currentDiv := nonZero(t[idx].Current)

	for i := range t {
		t[i].PriorSharePercent = bounded(t[i].Prior / priorDiv * 100)
		t[i].CurrentSharePercent = bounded(t[i].Current / currentDiv * 100)
	}
	return t, nil
}

// Find returns the first row whose label contains marker, case-insensitively.
func (t Table) Find(marker string) (EnrichedRow, error) {
	if i := t.index(marker); i >= 0 {
		return t[i], nil
	}
	return EnrichedRow{}, &LookupMiss{Marker: marker}
}

func (t Table) index(marker string) int {
	if strings.TrimSpace(marker) == "" {
		return -1
	}
	needle := fold(marker)
	for i, r := range t {
		if strings.Contains(fold(r.Label), needle) {
			return i
		}
	}
	return -1
}

// Labels returns the row labels in table order.
func (t Table) Labels() []string {
	out := make([]string, len(t))
	for i, r := range t {
		out[i] = r.Label
	}
	return out
}

// fold normalizes to NFC before case folding so precomposed and combining
// Vietnamese diacritics compare equal.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func nonZero(v float64) float64 {
	if v == 0 {
		return Epsilon
	}
	return v
}

// bounded clamps an overflowed ratio to the largest finite value.
func bounded(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
