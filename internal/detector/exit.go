package detector

import (
	"BreakoutSentinel/internal/calculator"
	"BreakoutSentinel/internal/model"
)

// ExitSimulator walks forward from an entry applying the exit rules and
// tracking the running highest price. A trade is OPEN until the first rule
// fires, after which it is CLOSED for good; if the series runs out the trade
// closes on the last bar.
type ExitSimulator struct {
	p Params
}

// NewExitSimulator creates a simulator with the given thresholds.
func NewExitSimulator(p Params) *ExitSimulator {
	return &ExitSimulator{p: p}
}

// Simulate runs the exit state machine starting the day after entry. Both
// return values are always populated: the highest price begins at the entry
// bar's own high and never decreases, and a series that ends without a
// trigger closes with reason "end of data".
func (s *ExitSimulator) Simulate(bars []model.PricePoint, entry model.Entry, cache *ScanCache) (model.Exit, model.HighestPrice) {
	entryBar := bars[entry.Index]
	highest := model.HighestPrice{
		Index:         entry.Index,
		Date:          entryBar.Date,
		Price:         entryBar.High,
		DaysFromEntry: 0,
	}

	last := entry.Index
	for j := entry.Index + 1; j < len(bars); j++ {
		last = j
		bar := bars[j]

		if bar.High > highest.Price {
			highest = model.HighestPrice{
				Index:         j,
				Date:          bar.Date,
				Price:         bar.High,
				DaysFromEntry: j - entry.Index,
			}
		}

		if bar.Close < entryBar.Low {
			return closedAt(bars, entry, j, model.ExitLowOfDay), highest
		}
		if sma, ok := calculator.SMAClose(bars, j, s.p.ExitSMAPeriod); ok && bar.Close < sma {
			return closedAt(bars, entry, j, model.ExitSMABreakdown), highest
		}
		if s.p.MomentumExits && bars[j-1].Close > 0 {
			decline := 1 - bar.Close/bars[j-1].Close
			if adr := cache.ADR(bars, j); adr > 0 && decline > s.p.LargeDeclineAdrMultiple*adr {
				return closedAt(bars, entry, j, model.ExitLargeDecline), highest
			}
		}
	}

	return closedAt(bars, entry, last, model.ExitEndOfData), highest
}

func closedAt(bars []model.PricePoint, entry model.Entry, j int, reason model.ExitReason) model.Exit {
	return model.Exit{
		Index:    j,
		Date:     bars[j].Date,
		Price:    bars[j].Close,
		DaysHeld: j - entry.Index,
		Reason:   reason,
	}
}
