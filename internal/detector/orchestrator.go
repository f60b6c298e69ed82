package detector

import (
	"fmt"
	"sort"

	"BreakoutSentinel/internal/calculator"
	"BreakoutSentinel/internal/model"
)

// Orchestrator drives the forward scan over one symbol's bars, composing the
// prior-move detector, consolidation analyzer, breakout validator, and exit
// simulator into Setups. The orchestrator itself is stateless and safe to
// share across goroutines; every Scan invocation owns a fresh ScanCache.
type Orchestrator struct {
	params   Params
	prior    PriorMoveStrategy
	analyzer *ConsolidationAnalyzer
	breakout *BreakoutValidator
	exits    *ExitSimulator
}

// NewOrchestrator validates the params and wires the configured strategies.
func NewOrchestrator(params Params) (*Orchestrator, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("detector params: %w", err)
	}
	return &Orchestrator{
		params:   params,
		prior:    NewPriorMoveStrategy(params),
		analyzer: NewConsolidationAnalyzer(params),
		breakout: NewBreakoutValidator(params),
		exits:    NewExitSimulator(params),
	}, nil
}

// MinHistory is the fewest bars a series needs before a scan can produce
// anything: a volatility baseline, a minimum-length base, and a breakout day.
func (o *Orchestrator) MinHistory() int {
	return o.params.AdrWindow + o.params.ConsolidationMinDays + 2
}

// Scan walks every candidate anchor index, assembles Setups from confirmed
// breakouts, deduplicates overlapping candidates in a post-scan pass, and
// returns the list ordered by ascending entry index. Re-running Scan on an
// unchanged series yields an identical list.
func (o *Orchestrator) Scan(symbol string, bars []model.PricePoint) []model.Setup {
	if len(bars) < o.MinHistory() {
		return nil
	}
	cache := NewScanCache(o.params)

	var candidates []model.Setup
	for i := 1; i < len(bars); i++ {
		pm, ok := o.prior.Detect(bars, i, cache)
		if !ok {
			continue
		}
		// The same leg surfaces from many consecutive anchors; analyze it once.
		if cache.MarkLeg(pm.LowIndex, pm.HighIndex) {
			continue
		}

		cons, ok := o.analyzer.Find(bars, pm, cache)
		if !ok {
			continue
		}

		entry, ok := o.breakout.Validate(bars, pm, cons, cons.EndIndex+1, cache)
		if !ok {
			continue
		}
		if o.params.MinDollarVolume > 0 && entry.DollarVolume < o.params.MinDollarVolume {
			continue
		}
		if o.params.MaxAdrFraction > 0 && entry.ADR > o.params.MaxAdrFraction {
			continue
		}

		exit, highest := o.exits.Simulate(bars, entry, cache)

		candidates = append(candidates, model.Setup{
			Symbol:        symbol,
			PriorMove:     pm,
			Consolidation: cons,
			Entry:         entry,
			Exit:          exit,
			HighestPrice:  highest,
			TrendLine:     fitTrendLine(bars, cons),
		})
		if o.params.MaxSetups > 0 && len(candidates) >= o.params.MaxSetups {
			break
		}
	}

	setups := dedupe(candidates)
	sort.Slice(setups, func(i, j int) bool {
		return setups[i].Entry.Index < setups[j].Entry.Index
	})
	if o.params.MaxSetups > 0 && len(setups) > o.params.MaxSetups {
		setups = setups[:o.params.MaxSetups]
	}
	return setups
}

// dedupe is the single post-scan deduplication pass: candidates sharing a
// natural key keep only the one with the larger prior move, then candidates
// whose prior-move and consolidation windows are both fully contained inside
// an already-accepted setup's windows are dropped.
func dedupe(candidates []model.Setup) []model.Setup {
	byKey := make(map[model.SetupKey]int)
	var keyed []model.Setup
	for _, s := range candidates {
		key := s.Key()
		if idx, ok := byKey[key]; ok {
			if s.PriorMove.Pct > keyed[idx].PriorMove.Pct {
				keyed[idx] = s
			}
			continue
		}
		byKey[key] = len(keyed)
		keyed = append(keyed, s)
	}

	var accepted []model.Setup
	for _, s := range keyed {
		contained := false
		for _, a := range accepted {
			if containsWindows(a, s) {
				contained = true
				break
			}
		}
		if !contained {
			accepted = append(accepted, s)
		}
	}
	return accepted
}

// containsWindows reports whether inner's prior-move and consolidation
// windows both lie inside outer's.
func containsWindows(outer, inner model.Setup) bool {
	return outer.PriorMove.LowIndex <= inner.PriorMove.LowIndex &&
		inner.PriorMove.HighIndex <= outer.PriorMove.HighIndex &&
		outer.Consolidation.StartIndex <= inner.Consolidation.StartIndex &&
		inner.Consolidation.EndIndex <= outer.Consolidation.EndIndex
}

// fitTrendLine fits the robust line through the consolidation's bar
// midpoints, in (offset from start, price) coordinates. Chart decoration
// only; detection never reads it.
func fitTrendLine(bars []model.PricePoint, cons model.Consolidation) model.TrendLine {
	points := make([]calculator.Point, 0, cons.Days())
	for i := cons.StartIndex; i <= cons.EndIndex; i++ {
		points = append(points, calculator.Point{
			X: float64(i - cons.StartIndex),
			Y: bars[i].Midpoint(),
		})
	}
	fit, ok := calculator.FitRobustLine(points)
	if !ok {
		return model.TrendLine{}
	}
	return model.TrendLine{Slope: fit.Slope, Intercept: fit.Intercept}
}
