package collector

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"BreakoutSentinel/internal/model"
)

// CSVFetcher implements Fetcher from a directory of per-symbol CSV files,
// for offline runs and backfills. Each file is named <SYMBOL>.csv with a
// header row and columns: date (2006-01-02), open, high, low, close, volume.
type CSVFetcher struct {
	Dir string
}

// NewCSVFetcher creates a fetcher rooted at the given directory.
func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir}
}

func (f *CSVFetcher) Name() string { return "csv" }

// FetchDailyBars reads the symbol's file and returns up to `days` bars,
// most recent last.
func (f *CSVFetcher) FetchDailyBars(symbol string, days int) ([]model.PricePoint, error) {
	path := filepath.Join(f.Dir, symbol+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}

	bars := make([]model.PricePoint, 0, len(rows)-1)
	for lineNo, row := range rows[1:] {
		bar, err := parseCSVBar(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo+2, err)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

func parseCSVBar(row []string) (model.PricePoint, error) {
	if len(row) < 6 {
		return model.PricePoint{}, fmt.Errorf("expected 6 columns, got %d", len(row))
	}
	date, err := time.Parse("2006-01-02", row[0])
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("parse date %q: %w", row[0], err)
	}
	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return model.PricePoint{}, fmt.Errorf("parse column %d %q: %w", i+1, row[i+1], err)
		}
		vals[i] = v
	}
	return model.PricePoint{
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
