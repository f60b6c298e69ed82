package calculator

import "BreakoutSentinel/internal/model"

// ADR computes the average daily range, the mean of (high/low - 1), over
// the `window` bars ending just before endIndex. Returns 0 if fewer than
// `window` prior bars exist; callers treat 0 as "no volatility baseline".
func ADR(bars []model.PricePoint, endIndex, window int) float64 {
	if window <= 0 || endIndex < window || endIndex > len(bars) {
		return 0
	}
	sum := 0.0
	for i := endIndex - window; i < endIndex; i++ {
		if bars[i].Low <= 0 {
			return 0
		}
		sum += bars[i].High/bars[i].Low - 1
	}
	return sum / float64(window)
}

// ATR computes the average true range over `period` bars ending at endIndex
// (inclusive). True range incorporates gaps against the previous close.
// Returns 0 if there is not enough history for a full period.
func ATR(bars []model.PricePoint, endIndex, period int) float64 {
	if period <= 0 || endIndex >= len(bars) || endIndex-period < 0 {
		return 0
	}
	sum := 0.0
	for i := endIndex - period + 1; i <= endIndex; i++ {
		sum += trueRange(bars, i)
	}
	return sum / float64(period)
}

// trueRange returns max(high-low, |high-prevClose|, |low-prevClose|) for bar i.
func trueRange(bars []model.PricePoint, i int) float64 {
	tr := bars[i].High - bars[i].Low
	if i > 0 {
		prev := bars[i-1].Close
		if d := bars[i].High - prev; d > tr {
			tr = d
		}
		if d := prev - bars[i].Low; d > tr {
			tr = d
		}
	}
	return tr
}

// MeanTrueRange computes the mean true range over bars[start..end]
// inclusive, gap-aware when a preceding bar exists. Used for comparing
// volatility phases inside a candidate window.
func MeanTrueRange(bars []model.PricePoint, start, end int) float64 {
	if start < 0 || end >= len(bars) || end < start {
		return 0
	}
	sum := 0.0
	for i := start; i <= end; i++ {
		sum += trueRange(bars, i)
	}
	return sum / float64(end-start+1)
}

// DollarVolume computes the mean of close*volume over the `window` bars
// ending just before endIndex. Returns 0 with insufficient history.
func DollarVolume(bars []model.PricePoint, endIndex, window int) float64 {
	if window <= 0 || endIndex < window || endIndex > len(bars) {
		return 0
	}
	sum := 0.0
	for i := endIndex - window; i < endIndex; i++ {
		sum += bars[i].Close * bars[i].Volume
	}
	return sum / float64(window)
}

// SMAClose computes the simple moving average of closes over `period` bars
// ending at endIndex (inclusive). The second return is false if there is not
// enough history.
func SMAClose(bars []model.PricePoint, endIndex, period int) (float64, bool) {
	if period <= 0 || endIndex >= len(bars) || endIndex-period+1 < 0 {
		return 0, false
	}
	sum := 0.0
	for i := endIndex - period + 1; i <= endIndex; i++ {
		sum += bars[i].Close
	}
	return sum / float64(period), true
}
