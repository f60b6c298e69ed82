package calculator

import (
	"math"
	"sort"

	"BreakoutSentinel/internal/model"
)

// RangeOptions controls the percentile range estimator.
type RangeOptions struct {
	UpperPercentile  float64 // percentile of filtered highs taken as the upper bound
	LowerPercentile  float64 // percentile of filtered lows taken as the lower bound
	IQRMultiplier    float64 // outlier fence width in IQRs
	MaxRangeATRRatio float64 // validity ceiling for (upper-lower)/ATR
	MinDensity       float64 // validity floor for the candle-body density score
	MaxSlopeUp       float64 // validity ceiling for a rising normalized slope
	MaxSlopeDown     float64 // validity ceiling for a falling normalized slope
}

// DefaultRangeOptions returns the estimator settings used when the config
// leaves them unset. Upward drift gets slightly more slope tolerance than
// downward drift, keeping the bullish bias without admitting trending windows.
func DefaultRangeOptions() RangeOptions {
	return RangeOptions{
		UpperPercentile:  0.90,
		LowerPercentile:  0.10,
		IQRMultiplier:    1.5,
		MaxRangeATRRatio: 4.0,
		MinDensity:       0.45,
		MaxSlopeUp:       0.005,
		MaxSlopeDown:     0.0035,
	}
}

// RangeEstimate is the estimator's output for one candidate window.
type RangeEstimate struct {
	UpperBound   float64
	LowerBound   float64
	DensityScore float64 // fraction of candle bodies held inside the bounds
	RangeSlope   float64 // per-bar midpoint drift, normalized by mean price
	RangeQuality float64 // composite 0-1 tightness score
	Valid        bool
}

// EstimateRange computes outlier-filtered percentile bounds and quality
// scores for a window of bars. atr is the average true range at the window's
// end; a zero atr marks the window invalid since every ratio test needs it.
func EstimateRange(bars []model.PricePoint, atr float64, opts RangeOptions) RangeEstimate {
	if len(bars) == 0 || atr <= 0 {
		return RangeEstimate{}
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
	}

	upper := percentile(filterOutliersIQR(highs, opts.IQRMultiplier), opts.UpperPercentile)
	lower := percentile(filterOutliersIQR(lows, opts.IQRMultiplier), opts.LowerPercentile)
	if upper < lower {
		// Pathological window (e.g. one huge bar dominating both sides);
		// fall back to the unfiltered extremes so the invariant holds.
		upper = percentile(highs, opts.UpperPercentile)
		lower = percentile(lows, opts.LowerPercentile)
		if upper < lower {
			upper, lower = lower, upper
		}
	}

	density := bodyDensity(bars, upper, lower)
	slope := midpointSlope(bars)

	rangeATR := (upper - lower) / atr
	quality := 0.4*(1-math.Min(rangeATR/5, 1)) +
		0.4*density +
		0.2*(1-math.Min(math.Abs(slope)/0.01, 1))

	valid := rangeATR <= opts.MaxRangeATRRatio &&
		density >= opts.MinDensity &&
		slope <= opts.MaxSlopeUp &&
		-slope <= opts.MaxSlopeDown

	return RangeEstimate{
		UpperBound:   upper,
		LowerBound:   lower,
		DensityScore: density,
		RangeSlope:   slope,
		RangeQuality: quality,
		Valid:        valid,
	}
}

// bodyDensity returns the fraction of candle bodies whose overlap with
// [lower, upper] exceeds half the body. Dojis carry no information about
// containment and are skipped from the denominator.
func bodyDensity(bars []model.PricePoint, upper, lower float64) float64 {
	counted, inside := 0, 0
	for _, b := range bars {
		body := b.Body()
		if body == 0 {
			continue
		}
		counted++
		top := math.Max(b.Open, b.Close)
		bottom := math.Min(b.Open, b.Close)
		overlap := math.Min(top, upper) - math.Max(bottom, lower)
		if overlap > body*0.5 {
			inside++
		}
	}
	if counted == 0 {
		// All dojis: nothing protrudes, treat as fully contained.
		return 1
	}
	return float64(inside) / float64(counted)
}

// midpointSlope fits the per-bar high/low midpoints over bar index and
// normalizes the slope by the mean price, yielding fractional drift per bar.
func midpointSlope(bars []model.PricePoint) float64 {
	mids := make([]float64, len(bars))
	mean := 0.0
	for i, b := range bars {
		mids[i] = b.Midpoint()
		mean += mids[i]
	}
	mean /= float64(len(bars))
	if mean == 0 {
		return 0
	}
	return RegressionSlope(mids) / mean
}

// filterOutliersIQR drops values beyond multiplier*IQR outside Q1/Q3.
// If filtering would leave fewer than 5 values the original set is kept;
// short windows carry too little data to call anything an outlier.
func filterOutliersIQR(values []float64, multiplier float64) []float64 {
	if len(values) < 5 || multiplier <= 0 {
		return values
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 := percentileSorted(sorted, 0.25)
	q3 := percentileSorted(sorted, 0.75)
	iqr := q3 - q1
	lo := q1 - multiplier*iqr
	hi := q3 + multiplier*iqr

	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= lo && v <= hi {
			kept = append(kept, v)
		}
	}
	if len(kept) < 5 {
		return values
	}
	return kept
}

// percentile returns the p-th percentile (0..1) of values with linear
// interpolation between ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
