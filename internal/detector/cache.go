package detector

import (
	"BreakoutSentinel/internal/calculator"
	"BreakoutSentinel/internal/model"
)

// ScanCache memoizes per-index metrics and per-window range estimates for a
// single symbol's scan. Keys are bar indices, so a cache is only valid for
// the one series it was built against: every Scan invocation owns a fresh
// cache and caches are never shared across symbols or goroutines.
type ScanCache struct {
	params Params

	adr      map[int]float64
	atr      map[int]float64
	dollars  map[int]float64
	moves    map[int]priorMoveResult
	ranges   map[windowKey]calculator.RangeEstimate
	seenLegs map[legKey]bool
}

type windowKey struct {
	start int
	end   int
}

type legKey struct {
	low  int
	high int
}

type priorMoveResult struct {
	move model.PriorMove
	ok   bool
}

// NewScanCache creates an empty cache for one scan invocation.
func NewScanCache(params Params) *ScanCache {
	return &ScanCache{
		params:   params,
		adr:      make(map[int]float64),
		atr:      make(map[int]float64),
		dollars:  make(map[int]float64),
		moves:    make(map[int]priorMoveResult),
		ranges:   make(map[windowKey]calculator.RangeEstimate),
		seenLegs: make(map[legKey]bool),
	}
}

// ADR returns the average daily range at bar i, computing it on first use.
func (c *ScanCache) ADR(bars []model.PricePoint, i int) float64 {
	if v, ok := c.adr[i]; ok {
		return v
	}
	v := calculator.ADR(bars, i, c.params.AdrWindow)
	c.adr[i] = v
	return v
}

// ATR returns the average true range ending at bar i.
func (c *ScanCache) ATR(bars []model.PricePoint, i int) float64 {
	if v, ok := c.atr[i]; ok {
		return v
	}
	v := calculator.ATR(bars, i, c.params.AtrPeriod)
	c.atr[i] = v
	return v
}

// DollarVolume returns the trailing mean dollar volume at bar i.
func (c *ScanCache) DollarVolume(bars []model.PricePoint, i int) float64 {
	if v, ok := c.dollars[i]; ok {
		return v
	}
	v := calculator.DollarVolume(bars, i, c.params.DollarVolumeWindow)
	c.dollars[i] = v
	return v
}

// RangeEstimate returns the range estimate for bars[start..end] inclusive.
func (c *ScanCache) RangeEstimate(bars []model.PricePoint, start, end int) calculator.RangeEstimate {
	key := windowKey{start: start, end: end}
	if v, ok := c.ranges[key]; ok {
		return v
	}
	v := calculator.EstimateRange(bars[start:end+1], c.ATR(bars, end), c.params.rangeOptions())
	c.ranges[key] = v
	return v
}

// PriorMove returns the memoized prior-move result for anchor index i.
func (c *ScanCache) PriorMove(i int) (model.PriorMove, bool, bool) {
	r, cached := c.moves[i]
	return r.move, r.ok, cached
}

// PutPriorMove stores a prior-move result for anchor index i.
func (c *ScanCache) PutPriorMove(i int, move model.PriorMove, ok bool) {
	c.moves[i] = priorMoveResult{move: move, ok: ok}
}

// MarkLeg records that a (low, high) leg has been fully explored; returns
// true if it was already marked. Keeps the forward scan from re-analyzing
// the same leg from every later anchor index.
func (c *ScanCache) MarkLeg(low, high int) bool {
	key := legKey{low: low, high: high}
	if c.seenLegs[key] {
		return true
	}
	c.seenLegs[key] = true
	return false
}
