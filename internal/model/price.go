package model

import "time"

// PricePoint represents a single split-adjusted daily bar.
// Invariants (caller contract): high >= max(open, close), low <= min(open, close),
// dates strictly ascending within a series, volume >= 0.
type PricePoint struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Body returns the open-close span of the bar. Zero for a doji.
func (p PricePoint) Body() float64 {
	if p.Close > p.Open {
		return p.Close - p.Open
	}
	return p.Open - p.Close
}

// Midpoint returns the high/low midpoint of the bar.
func (p PricePoint) Midpoint() float64 {
	return (p.High + p.Low) / 2
}

// PriceSeries holds one symbol's daily history, ascending by date.
type PriceSeries struct {
	Symbol    string
	Bars      []PricePoint
	FetchedAt time.Time
}
