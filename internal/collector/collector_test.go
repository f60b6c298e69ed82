package collector

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"BreakoutSentinel/internal/model"
)

func cleanBars(n int) []model.PricePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PricePoint, n)
	for i := range bars {
		bars[i] = model.PricePoint{
			Date: start.AddDate(0, 0, i),
			Open: 10, High: 10.2, Low: 9.9, Close: 10.1,
			Volume: 1000,
		}
	}
	return bars
}

func TestCollect_HappyPath(t *testing.T) {
	fetcher := &MockFetcher{Bars: map[string][]model.PricePoint{"AAPL": cleanBars(30)}}
	c := NewCollector(fetcher, 400, 20)

	series, err := c.Collect("AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if series.Symbol != "AAPL" || len(series.Bars) != 30 {
		t.Errorf("series = %s with %d bars, want AAPL with 30", series.Symbol, len(series.Bars))
	}
	if series.FetchedAt.IsZero() {
		t.Error("fetched-at not stamped")
	}
}

func TestCollect_DropsInvalidBars(t *testing.T) {
	bars := cleanBars(30)
	bars[5].Close = -1            // non-positive price
	bars[8].High = 9.0            // high below close
	fetcher := &MockFetcher{Bars: map[string][]model.PricePoint{"X": bars}}
	c := NewCollector(fetcher, 400, 20)

	series, err := c.Collect("X")
	if err != nil {
		t.Fatal(err)
	}
	if len(series.Bars) != 28 {
		t.Errorf("got %d bars, want 28 after dropping 2 invalid", len(series.Bars))
	}
}

func TestCollect_RejectsOutOfOrderDates(t *testing.T) {
	bars := cleanBars(30)
	bars[10].Date = bars[9].Date // duplicate date
	fetcher := &MockFetcher{Bars: map[string][]model.PricePoint{"X": bars}}
	c := NewCollector(fetcher, 400, 20)

	if _, err := c.Collect("X"); err == nil {
		t.Error("expected an error for non-ascending dates")
	}
}

func TestCollect_InsufficientHistory(t *testing.T) {
	fetcher := &MockFetcher{Bars: map[string][]model.PricePoint{"X": cleanBars(10)}}
	c := NewCollector(fetcher, 400, 20)

	_, err := c.Collect("X")
	if err == nil || !strings.Contains(err.Error(), "insufficient history") {
		t.Errorf("err = %v, want insufficient history", err)
	}
}

func TestCollect_FetchErrorWrapped(t *testing.T) {
	fetchErr := errors.New("socket timeout")
	c := NewCollector(&MockFetcher{Err: fetchErr}, 400, 20)

	_, err := c.Collect("X")
	if !errors.Is(err, fetchErr) {
		t.Errorf("err = %v, want it to wrap the fetch error", err)
	}
}

func TestCSVFetcher(t *testing.T) {
	dir := t.TempDir()
	content := "date,open,high,low,close,volume\n" +
		"2024-01-03,10.5,10.8,10.4,10.7,120000\n" +
		"2024-01-02,10.0,10.6,9.9,10.5,100000\n"
	if err := os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	bars, err := NewCSVFetcher(dir).FetchDailyBars("AAPL", 400)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	// Rows were out of order in the file; output must be ascending.
	if !bars[0].Date.Before(bars[1].Date) {
		t.Error("bars not sorted ascending by date")
	}
	if bars[1].Close != 10.7 || bars[1].Volume != 120000 {
		t.Errorf("last bar = %+v, want the Jan 3 row", bars[1])
	}
}

func TestCSVFetcher_MissingSymbol(t *testing.T) {
	if _, err := NewCSVFetcher(t.TempDir()).FetchDailyBars("NOPE", 400); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestCSVFetcher_TrimsToRequestedDays(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("date,open,high,low,close,volume\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		sb.WriteString(start.AddDate(0, 0, i).Format("2006-01-02"))
		sb.WriteString(",10,10.2,9.9,10.1,1000\n")
	}
	if err := os.WriteFile(filepath.Join(dir, "X.csv"), []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}

	bars, err := NewCSVFetcher(dir).FetchDailyBars("X", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 4 {
		t.Fatalf("got %d bars, want the most recent 4", len(bars))
	}
	if !bars[3].Date.Equal(start.AddDate(0, 0, 9)) {
		t.Error("trim should keep the most recent bars")
	}
}
