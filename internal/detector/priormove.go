package detector

import "BreakoutSentinel/internal/model"

// PriorMoveStrategy finds a qualifying explosive advance preceding a
// candidate anchor index. Implementations differ only in how they judge the
// move's significance; leg selection follows the configured policy.
type PriorMoveStrategy interface {
	Name() string
	Detect(bars []model.PricePoint, i int, cache *ScanCache) (model.PriorMove, bool)
}

// NewPriorMoveStrategy selects the configured implementation. Params are
// assumed validated.
func NewPriorMoveStrategy(p Params) PriorMoveStrategy {
	if p.PriorMoveStrategy == "percent" {
		return &percentMoveStrategy{p: p}
	}
	return &adrMoveStrategy{p: p}
}

// adrMoveStrategy requires the move to exceed a multiple of the stock's own
// average daily range, so "explosive" scales with each symbol's volatility
// instead of a fixed percentage.
type adrMoveStrategy struct {
	p Params
}

func (s *adrMoveStrategy) Name() string { return "adr" }

func (s *adrMoveStrategy) Detect(bars []model.PricePoint, i int, cache *ScanCache) (model.PriorMove, bool) {
	if move, ok, cached := cache.PriorMove(i); cached {
		return move, ok
	}
	move, ok := findLeg(bars, i, s.p, func(low, high int) (float64, float64, bool) {
		pct := legPct(bars, low, high)
		adr := cache.ADR(bars, high)
		if adr <= 0 || pct < adr*s.p.MinPriorMoveAdrMultiple {
			return 0, 0, false
		}
		return pct, pct / adr, true
	})
	cache.PutPriorMove(i, move, ok)
	return move, ok
}

// percentMoveStrategy requires a fixed minimum percentage advance. Kept for
// universes where an ADR baseline is unreliable (very quiet large caps).
type percentMoveStrategy struct {
	p Params
}

func (s *percentMoveStrategy) Name() string { return "percent" }

func (s *percentMoveStrategy) Detect(bars []model.PricePoint, i int, cache *ScanCache) (model.PriorMove, bool) {
	if move, ok, cached := cache.PriorMove(i); cached {
		return move, ok
	}
	move, ok := findLeg(bars, i, s.p, func(low, high int) (float64, float64, bool) {
		pct := legPct(bars, low, high)
		if pct < s.p.MinPriorMovePct {
			return 0, 0, false
		}
		strength := 0.0
		if adr := cache.ADR(bars, high); adr > 0 {
			strength = pct / adr
		}
		return pct, strength, true
	})
	cache.PutPriorMove(i, move, ok)
	return move, ok
}

// legQualifier judges a candidate (low, high) leg and returns its pct and
// strength when it qualifies as significant.
type legQualifier func(low, high int) (pct, strength float64, ok bool)

func legPct(bars []model.PricePoint, low, high int) float64 {
	if bars[low].Low <= 0 {
		return 0
	}
	return (bars[high].High - bars[low].Low) / bars[low].Low
}

// findLeg locates the advance preceding index i under the configured
// selection policy and applies the shared structural gates (leg direction,
// explosiveness window, efficiency) plus the strategy's significance gate.
func findLeg(bars []model.PricePoint, i int, p Params, qualify legQualifier) (model.PriorMove, bool) {
	start := i - p.PriorMoveMaxLookbackDays
	if start < 0 {
		start = 0
	}
	if i-start < 2 || i > len(bars) {
		return model.PriorMove{}, false
	}

	if p.PriorMovePolicy == "recent" {
		return findRecentLeg(bars, start, i, p, qualify)
	}
	return findGlobalLeg(bars, start, i, p, qualify)
}

// findGlobalLeg uses the absolute high and low of the lookback window, with a
// V-shape refinement: a post-high low at least 15% below the high resets the
// leg to that later low and the recovery high after it.
func findGlobalLeg(bars []model.PricePoint, start, i int, p Params, qualify legQualifier) (model.PriorMove, bool) {
	hiIdx, loIdx := start, start
	for j := start + 1; j < i; j++ {
		if bars[j].High > bars[hiIdx].High {
			hiIdx = j
		}
		if bars[j].Low < bars[loIdx].Low {
			loIdx = j
		}
	}

	low, high := loIdx, hiIdx
	if postLo, ok := deepPostHighLow(bars, hiIdx, i); ok {
		// V-shaped recovery: the move that matters is the one off the reset
		// low, not the earlier spike.
		if recHigh, ok := recoveryHigh(bars, postLo, i); ok {
			low, high = postLo, recHigh
		}
	}
	if high <= low {
		return model.PriorMove{}, false
	}
	return qualifyLeg(bars, low, high, p, qualify)
}

// findRecentLeg walks back from the anchor looking for the most recent
// standing swing high (no later bar exceeds it) whose preceding low forms a
// qualifying leg.
func findRecentLeg(bars []model.PricePoint, start, i int, p Params, qualify legQualifier) (model.PriorMove, bool) {
	suffixMax := 0.0
	for h := i - 1; h > start; h-- {
		if bars[h].High < suffixMax {
			continue
		}
		suffixMax = bars[h].High

		loStart := h - p.PriorMoveMaxWindowDays
		if loStart < start {
			loStart = start
		}
		low := loStart
		for j := loStart + 1; j < h; j++ {
			if bars[j].Low < bars[low].Low {
				low = j
			}
		}
		if low >= h {
			continue
		}
		if move, ok := qualifyLeg(bars, low, h, p, qualify); ok {
			return move, true
		}
	}
	return model.PriorMove{}, false
}

// deepPostHighLow finds the lowest low strictly after hiIdx and reports it
// only when it sits at least 15% below the high.
func deepPostHighLow(bars []model.PricePoint, hiIdx, end int) (int, bool) {
	if hiIdx+1 >= end {
		return 0, false
	}
	lo := hiIdx + 1
	for j := hiIdx + 2; j < end; j++ {
		if bars[j].Low < bars[lo].Low {
			lo = j
		}
	}
	if bars[hiIdx].High <= 0 {
		return 0, false
	}
	drop := (bars[hiIdx].High - bars[lo].Low) / bars[hiIdx].High
	if drop < 0.15 {
		return 0, false
	}
	return lo, true
}

// recoveryHigh extends forward from a reset low while new highs keep
// appearing within 3 bars of the last one.
func recoveryHigh(bars []model.PricePoint, low, end int) (int, bool) {
	high := low
	best := bars[low].High
	for j := low + 1; j < end; j++ {
		if bars[j].High > best {
			best = bars[j].High
			high = j
			continue
		}
		if j-high >= 3 {
			break
		}
	}
	if high <= low {
		return 0, false
	}
	return high, true
}

// qualifyLeg applies the explosiveness window, the strategy's significance
// gate, and the optional efficiency filter.
func qualifyLeg(bars []model.PricePoint, low, high int, p Params, qualify legQualifier) (model.PriorMove, bool) {
	if high-low > p.PriorMoveMaxWindowDays {
		return model.PriorMove{}, false
	}
	pct, strength, ok := qualify(low, high)
	if !ok {
		return model.PriorMove{}, false
	}
	if p.MinPriorMoveEfficiency > 0 && legEfficiency(bars, low, high) < p.MinPriorMoveEfficiency {
		return model.PriorMove{}, false
	}
	return model.PriorMove{
		LowIndex:  low,
		HighIndex: high,
		Pct:       pct,
		Strength:  strength,
	}, true
}

// legEfficiency is net close-to-close progress divided by total path length.
// A choppy back-and-forth "move" scores low even when its endpoints are far
// apart.
func legEfficiency(bars []model.PricePoint, low, high int) float64 {
	var path float64
	for t := low + 1; t <= high; t++ {
		d := bars[t].Close - bars[t-1].Close
		if d < 0 {
			d = -d
		}
		path += d
	}
	if path == 0 {
		return 1
	}
	net := bars[high].Close - bars[low].Close
	if net < 0 {
		net = -net
	}
	return net / path
}
