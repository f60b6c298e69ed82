package detector

import "BreakoutSentinel/internal/model"

// BreakoutValidator confirms that a candidate day actually breaks a
// consolidation's upper bound with acceptable strength.
type BreakoutValidator struct {
	p Params
}

// NewBreakoutValidator creates a validator with the given thresholds.
func NewBreakoutValidator(p Params) *BreakoutValidator {
	return &BreakoutValidator{p: p}
}

// Validate checks bar b as the breakout day for the consolidation and, on
// success, returns the populated Entry. Rules, in order:
//   - the previous bar must still close inside the range (an already-broken
//     range is not a fresh breakout),
//   - the day must close above the upper bound, or print a high more than 1%
//     above it,
//   - the day's move must be meaningful relative to ADR, but the close must
//     not be over-extended above the bound or above the prior move's high.
func (v *BreakoutValidator) Validate(bars []model.PricePoint, pm model.PriorMove, cons model.Consolidation, b int, cache *ScanCache) (model.Entry, bool) {
	if b <= 0 || b >= len(bars) {
		return model.Entry{}, false
	}
	upper := cons.UpperBound
	prev := bars[b-1]
	day := bars[b]

	if prev.Close > upper {
		return model.Entry{}, false
	}
	if day.Close <= upper && day.High <= upper*1.01 {
		return model.Entry{}, false
	}

	adr := cache.ADR(bars, b)
	if adr <= 0 || prev.Close <= 0 {
		return model.Entry{}, false
	}

	move := day.Close/prev.Close - 1
	if move < v.p.MinBreakoutAdrMultiple*adr {
		return model.Entry{}, false
	}
	if day.Close > upper {
		extension := (day.Close - upper) / upper
		if extension > v.p.MaxBreakoutExtensionAdrMultiple*adr {
			return model.Entry{}, false
		}
	}

	// Chasing guard: a close already far above the prior move's high has
	// left the base behind.
	priorHigh := bars[pm.HighIndex].High
	if priorHigh > 0 && day.Close > priorHigh {
		if (day.Close-priorHigh)/priorHigh > v.p.MaxEntryExtensionAdrMultiple*adr {
			return model.Entry{}, false
		}
	}

	return model.Entry{
		Index:         b,
		Date:          day.Date,
		Price:         day.Close,
		BreakoutLevel: upper,
		ADR:           adr,
		DollarVolume:  cache.DollarVolume(bars, b),
	}, true
}
