package collector

import (
	"fmt"
	"math"
	"time"

	"BreakoutSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars map[string][]model.PricePoint
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(symbol string, days int) ([]model.PricePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bars := m.Bars[symbol]
	if bars == nil {
		return nil, fmt.Errorf("mock: no data for %s", symbol)
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// Collector fetches one symbol's history and enforces the detection core's
// input contract: ascending dates, finite positive prices, no degenerate
// bars. The core assumes clean data; this is where cleaning happens.
type Collector struct {
	Fetcher     Fetcher
	HistoryDays int
	MinBars     int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, historyDays, minBars int) *Collector {
	return &Collector{Fetcher: fetcher, HistoryDays: historyDays, MinBars: minBars}
}

// Collect fetches and validates the daily series for a symbol.
func (c *Collector) Collect(symbol string) (*model.PriceSeries, error) {
	raw, err := c.Fetcher.FetchDailyBars(symbol, c.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}

	bars := make([]model.PricePoint, 0, len(raw))
	var prev time.Time
	for _, b := range raw {
		if !sane(b) {
			continue
		}
		if !prev.IsZero() && !b.Date.After(prev) {
			return nil, fmt.Errorf("%s: bar dates not strictly ascending around %s",
				symbol, b.Date.Format("2006-01-02"))
		}
		prev = b.Date
		bars = append(bars, b)
	}

	if len(bars) < c.MinBars {
		return nil, fmt.Errorf("%s: insufficient history, got %d bars, need %d",
			symbol, len(bars), c.MinBars)
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

// sane drops bars that would violate the core's input invariants.
func sane(b model.PricePoint) bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return false
	}
	if b.High < b.Open || b.High < b.Close || b.Low > b.Open || b.Low > b.Close {
		return false
	}
	return b.Volume >= 0
}
