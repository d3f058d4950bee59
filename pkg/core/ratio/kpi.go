package ratio

import "errors"

// KPI is a single headline figure. Unavailable KPIs carry the reason instead
// of a value.
type KPI struct {
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason,omitempty"`
}

func available(v float64) KPI { return KPI{Value: v, Available: true} }

func unavailable(reason string) KPI { return KPI{Reason: reason} }

// KPISet holds the dashboard cards. It is recomputed on every render.
type KPISet struct {
	TotalAssetsCurrent float64 `json:"total_assets_current"`
	TotalAssetsGrowth  float64 `json:"total_assets_growth"`
	ShortTermGrowth    KPI     `json:"short_term_assets_growth"`
	CurrentRatio       KPI     `json:"current_ratio"`
	PriorCurrentRatio  KPI     `json:"prior_current_ratio"`
	AverageGrowth      float64 `json:"average_growth"`
}

// Healthy reports whether the current ratio exceeds 1.
func (k KPISet) Healthy() bool {
	return k.CurrentRatio.Available && k.CurrentRatio.Value > 1
}

// DeriveKPIs computes the KPI cards from an enriched table.
//
// Only a missing total-assets row is an error. Missing short-term rows or a
// zero divisor mark the affected KPI unavailable.
//
// AverageGrowth is the plain mean of GrowthPercent, so rows with a zero prior
// value (Epsilon-based growth) dominate it.
func DeriveKPIs(t Table, markers Markers) (KPISet, error) {
	markers = markers.WithDefaults()

	total, err := t.Find(markers.TotalAssets)
	if err != nil {
		return KPISet{}, &ValidationError{Marker: markers.TotalAssets, Reason: "total assets row not found"}
	}

	k := KPISet{
		TotalAssetsCurrent: total.Current,
		TotalAssetsGrowth:  total.GrowthPercent,
		AverageGrowth:      AverageGrowth(t),
	}

	sta, staErr := t.Find(markers.ShortTermAssets)
	if staErr != nil {
		k.ShortTermGrowth = unavailable(staErr.Error())
	} else {
		k.ShortTermGrowth = available(sta.GrowthPercent)
	}

	stl, stlErr := t.Find(markers.ShortTermLiabilities)
	switch {
	case staErr != nil:
		k.CurrentRatio = unavailable(staErr.Error())
		k.PriorCurrentRatio = k.CurrentRatio
	case stlErr != nil:
		k.CurrentRatio = unavailable(stlErr.Error())
		k.PriorCurrentRatio = k.CurrentRatio
	default:
		k.CurrentRatio = divide(sta.Current, stl.Current)
		k.PriorCurrentRatio = divide(sta.Prior, stl.Prior)
	}
	return k, nil
}

// AverageGrowth is the arithmetic mean of GrowthPercent over all rows.
func AverageGrowth(t Table) float64 {
	if len(t) == 0 {
		return 0
	}
	// Dividing each term keeps clamped growth values from overflowing the sum.
	n := float64(len(t))
	var mean float64
	for _, r := range t {
		mean += r.GrowthPercent / n
	}
	return mean
}

func divide(num, den float64) KPI {
	if den == 0 {
		return unavailable("short-term liabilities are zero")
	}
	return available(num / den)
}

// IsLookupMiss reports whether err is a *LookupMiss.
func IsLookupMiss(err error) bool {
	var miss *LookupMiss
	return errors.As(err, &miss)
}
