package model

import "time"

// PriorMove describes the explosive advance preceding a consolidation.
// HighIndex is always strictly greater than LowIndex.
type PriorMove struct {
	LowIndex  int
	HighIndex int
	Pct       float64 // (high - low) / low over the leg
	Strength  float64 // Pct divided by the ADR at HighIndex
}

// Consolidation describes a sideways base following a prior move.
type Consolidation struct {
	StartIndex            int
	EndIndex              int
	UpperBound            float64
	LowerBound            float64
	VolatilityContraction float64
	Flatness              float64 // fraction of candle bodies inside the bounds
	Retracement           float64 // depth into the prior move's range
	QualityScore          float64 // composite 0-100
}

// Days returns the number of bars in the consolidation window.
func (c Consolidation) Days() int {
	return c.EndIndex - c.StartIndex + 1
}

// Entry is the simulated breakout-day purchase.
type Entry struct {
	Index         int
	Date          time.Time
	Price         float64
	BreakoutLevel float64 // the consolidation's upper bound
	ADR           float64
	DollarVolume  float64
}

// ExitReason classifies why a simulated trade was closed.
type ExitReason string

const (
	ExitLowOfDay     ExitReason = "low of the day"
	ExitSMABreakdown ExitReason = "sma breakdown"
	ExitLargeDecline ExitReason = "large decline"
	ExitEndOfData    ExitReason = "end of data"
)

// Exit is the simulated rule-based close of a trade.
type Exit struct {
	Index    int
	Date     time.Time
	Price    float64
	DaysHeld int
	Reason   ExitReason
}

// HighestPrice tracks the running maximum reached between entry and exit.
// Price is never below the entry bar's own high.
type HighestPrice struct {
	Index         int
	Date          time.Time
	Price         float64
	DaysFromEntry int
}

// TrendLine is a fitted slope/intercept pair over a consolidation window,
// in (bar offset, price) coordinates. Chart decoration only; no detection
// decision ever reads it.
type TrendLine struct {
	Slope     float64
	Intercept float64
}

// Setup is one complete detected candidate: prior move, base, confirmed
// breakout entry, and the simulated trade outcome. Created once per accepted
// candidate and never mutated afterwards.
type Setup struct {
	Symbol        string
	PriorMove     PriorMove
	Consolidation Consolidation
	Entry         Entry
	Exit          Exit
	HighestPrice  HighestPrice
	TrendLine     TrendLine
}

// Key returns the natural deduplication key:
// (symbol, consolidation start, consolidation end, entry date).
func (s Setup) Key() SetupKey {
	return SetupKey{
		Symbol:    s.Symbol,
		BaseStart: s.Consolidation.StartIndex,
		BaseEnd:   s.Consolidation.EndIndex,
		EntryDate: s.Entry.Date.Format("2006-01-02"),
	}
}

// SetupKey uniquely identifies a Setup for deduplication and upserts.
type SetupKey struct {
	Symbol    string
	BaseStart int
	BaseEnd   int
	EntryDate string
}
