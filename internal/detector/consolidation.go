package detector

import (
	"math"

	"BreakoutSentinel/internal/calculator"
	"BreakoutSentinel/internal/model"
)

// Windows shorter than this compare first-3 vs last-3 day volatility and get
// a relaxed contraction floor; longer windows use a three-phase comparison.
const shortWindowDays = 12

// ConsolidationAnalyzer searches for the best qualifying base following a
// prior move.
type ConsolidationAnalyzer struct {
	p Params
}

// NewConsolidationAnalyzer creates an analyzer with the given thresholds.
func NewConsolidationAnalyzer(p Params) *ConsolidationAnalyzer {
	return &ConsolidationAnalyzer{p: p}
}

// Find grid-searches start offsets and window lengths after the prior move's
// high and returns the best-scoring window that passes every gate, or false
// if none qualifies. Windows must leave at least one bar after them for the
// breakout day.
func (a *ConsolidationAnalyzer) Find(bars []model.PricePoint, pm model.PriorMove, cache *ScanCache) (model.Consolidation, bool) {
	moveHigh := bars[pm.HighIndex].High
	moveLow := bars[pm.LowIndex].Low
	moveRange := moveHigh - moveLow
	if moveRange <= 0 {
		return model.Consolidation{}, false
	}
	moveMid := (moveHigh + moveLow) / 2

	var best model.Consolidation
	found := false

	for offset := 0; offset <= a.p.ConsolidationMaxStartDelay; offset++ {
		start := pm.HighIndex + 1 + offset
		for period := a.p.ConsolidationMinDays; period <= a.p.ConsolidationMaxDays; period++ {
			end := start + period - 1
			if end+1 >= len(bars) {
				break
			}

			retr, ok := a.retracement(bars, start, end, moveHigh, moveRange)
			if !ok {
				continue
			}
			if a.netMovementExceeded(bars, start, end) {
				continue
			}
			if a.halfTrendExceeded(bars, start, end) {
				continue
			}

			est := cache.RangeEstimate(bars, start, end)
			if !est.Valid {
				continue
			}

			contraction, ok := a.volatilityContraction(bars, start, end, period)
			if !ok {
				continue
			}

			// Base must sit high in the prior move's range to keep the
			// momentum bias; a window drooping below the move's midpoint is
			// a pullback, not a consolidation.
			if (est.UpperBound+est.LowerBound)/2 <= moveMid {
				continue
			}

			quality := compositeQuality(est, contraction)
			if !found || quality > best.QualityScore {
				best = model.Consolidation{
					StartIndex:            start,
					EndIndex:              end,
					UpperBound:            est.UpperBound,
					LowerBound:            est.LowerBound,
					VolatilityContraction: contraction,
					Flatness:              est.DensityScore,
					Retracement:           retr,
					QualityScore:          quality,
				}
				found = true
			}
		}
	}
	return best, found
}

// retracement measures how deep the window digs into the prior move's range
// and rejects windows breaching the configured fraction.
func (a *ConsolidationAnalyzer) retracement(bars []model.PricePoint, start, end int, moveHigh, moveRange float64) (float64, bool) {
	windowLow := bars[start].Low
	for i := start + 1; i <= end; i++ {
		if bars[i].Low < windowLow {
			windowLow = bars[i].Low
		}
	}
	retr := (moveHigh - windowLow) / moveRange
	if retr > a.p.MaxBaseRetracementFraction {
		return 0, false
	}
	if retr < 0 {
		retr = 0
	}
	return retr, true
}

// netMovementExceeded rejects windows whose close drifts too far end to end.
func (a *ConsolidationAnalyzer) netMovementExceeded(bars []model.PricePoint, start, end int) bool {
	if bars[start].Close <= 0 {
		return true
	}
	net := math.Abs(bars[end].Close-bars[start].Close) / bars[start].Close
	return net > a.p.MaxNetMovementFraction
}

// halfTrendExceeded rejects disguised trends: windows whose second-half
// midpoints sit materially away from the first half's.
func (a *ConsolidationAnalyzer) halfTrendExceeded(bars []model.PricePoint, start, end int) bool {
	mid := start + (end-start+1)/2
	first := meanMidpoint(bars, start, mid-1)
	second := meanMidpoint(bars, mid, end)
	if first <= 0 {
		return true
	}
	return math.Abs(second-first)/first > a.p.MaxHalfTrendFraction
}

func meanMidpoint(bars []model.PricePoint, start, end int) float64 {
	if end < start {
		return 0
	}
	sum := 0.0
	for i := start; i <= end; i++ {
		sum += bars[i].Midpoint()
	}
	return sum / float64(end-start+1)
}

// volatilityContraction compares early and late volatility inside the
// window. Short windows compare the first 3 against the last 3 days; longer
// windows blend a three-phase comparison weighted toward the most recent
// contraction. Returns false when the window fails the (possibly relaxed)
// minimum.
func (a *ConsolidationAnalyzer) volatilityContraction(bars []model.PricePoint, start, end, period int) (float64, bool) {
	var contraction float64
	if period <= shortWindowDays {
		early := calculator.MeanTrueRange(bars, start, start+2)
		late := calculator.MeanTrueRange(bars, end-2, end)
		if early <= 0 {
			return 0, false
		}
		contraction = 1 - late/early
	} else {
		third := period / 3
		early := calculator.MeanTrueRange(bars, start, start+third-1)
		mid := calculator.MeanTrueRange(bars, start+third, end-third)
		late := calculator.MeanTrueRange(bars, end-third+1, end)
		if early <= 0 || mid <= 0 {
			return 0, false
		}
		contraction = 0.3*(1-mid/early) + 0.7*(1-late/mid)
	}
	contraction = clamp(contraction, -1, 1)

	floor := a.p.MinVolatilityContraction
	if period <= shortWindowDays {
		floor *= 0.75
	}
	if contraction < floor {
		return 0, false
	}
	return contraction, true
}

// compositeQuality blends range quality, contraction, and density into the
// 0-100 score used to rank windows. A 50% volatility contraction already
// earns full marks on its component.
func compositeQuality(est calculator.RangeEstimate, contraction float64) float64 {
	c := clamp(contraction/0.5, 0, 1)
	return 100 * (0.4*est.RangeQuality + 0.35*c + 0.25*est.DensityScore)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
