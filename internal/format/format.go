// Package format holds the pure presentation helpers shared by every
// renderer: severity tiers, timestamp text and bar-chart scaling.
package format

import (
	"math"
	"strconv"
	"time"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
)

// TimeLayout is the rendering of every timestamp on the board.
const TimeLayout = "2006-01-02 15:04:05"

// MinBarPercent keeps zero-valued bars visible.
const MinBarPercent = 2.0

type Tier string

const (
	TierCritical Tier = "critical"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
)

// SeverityTier buckets a risk score. Lower bounds are inclusive; NaN is low.
func SeverityTier(score float64) Tier {
	switch {
	case score >= 90:
		return TierCritical
	case score >= 75:
		return TierHigh
	case score >= 60:
		return TierMedium
	default:
		return TierLow
	}
}

// Timestamp renders a wire timestamp in the local zone, falling back to the
// raw value when it does not parse.
func Timestamp(value contracts.Timestamp) string {
	t, err := value.Time()
	if err != nil {
		return string(value)
	}
	return Time(t)
}

func Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

// SeriesMax returns the largest value with a floor of 1.
func SeriesMax(values []float64) float64 {
	max := 1.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

// BarHeightPercent scales value against max. The ratio is not clamped above
// 100 when value exceeds max.
func BarHeightPercent(value, max float64) float64 {
	if max < 1 {
		max = 1
	}
	percent := value / max * 100
	if percent < MinBarPercent || math.IsNaN(percent) {
		return MinBarPercent
	}
	return percent
}

// Score renders v with a fixed number of decimals.
func Score(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func Recommendation(score float64) string {
	switch {
	case score >= 85:
		return "Immediate intervention: pre-position inventory and activate cross-border backup routes."
	case score >= 70:
		return "High risk: increase safety stock and notify regional distributors within 2 hours."
	case score >= 50:
		return "Moderate risk: monitor hourly and prepare route alternatives."
	default:
		return "Low risk: continue monitoring with standard cadence."
	}
}
