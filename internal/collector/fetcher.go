package collector

import "BreakoutSentinel/internal/model"

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	FetchDailyBars(symbol string, days int) ([]model.PricePoint, error)
	Name() string
}
