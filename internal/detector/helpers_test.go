package detector

import (
	"math"
	"time"

	"BreakoutSentinel/internal/model"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func testDay(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// barsOf builds a series from (open, high, low, close) rows with one day per
// bar and a constant volume.
func barsOf(rows [][4]float64, volume float64) []model.PricePoint {
	bars := make([]model.PricePoint, len(rows))
	for i, r := range rows {
		bars[i] = model.PricePoint{
			Date: testDay(i),
			Open: r[0], High: r[1], Low: r[2], Close: r[3],
			Volume: volume,
		}
	}
	return bars
}

// testParams pins the consolidation grid to a single 15-day window starting
// right after the prior move's high, so scenario fixtures are deterministic.
func testParams() Params {
	p := DefaultParams()
	p.AdrWindow = 5
	p.AtrPeriod = 5
	p.DollarVolumeWindow = 5
	p.MinPriorMoveAdrMultiple = 4
	p.ConsolidationMinDays = 15
	p.ConsolidationMaxDays = 15
	p.ConsolidationMaxStartDelay = 0
	p.MinVolatilityContraction = 0.05
	p.MaxRangeAtrRatio = 6
	return p
}

// breakoutSeries builds the canonical fixture: ten quiet bars around 10, a
// ten-bar advance to 14, a fifteen-bar contracting base just under the high,
// a breakout day closing at 14.10, and five bars of mild follow-through.
//
// Bar layout: 0-9 quiet, 10-19 advance (high 14.05 at bar 19), 20-34 base,
// 35 breakout, 36-40 follow-through.
func breakoutSeries(volume float64) []model.PricePoint {
	rows := make([][4]float64, 0, 41)
	for i := 0; i < 10; i++ {
		rows = append(rows, [4]float64{10, 10.1, 9.9, 10})
	}
	for k := 0; k < 10; k++ {
		o := 10 + 0.4*float64(k)
		c := o + 0.4
		rows = append(rows, [4]float64{o, c + 0.05, o - 0.05, c})
	}
	rows = append(rows,
		[4]float64{13.90, 14.00, 13.60, 13.65},
		[4]float64{13.65, 13.98, 13.60, 13.90},
		[4]float64{13.90, 13.96, 13.62, 13.68},
		[4]float64{13.68, 13.94, 13.64, 13.88},
		[4]float64{13.88, 13.92, 13.66, 13.70},
		[4]float64{13.70, 13.90, 13.67, 13.86},
		[4]float64{13.86, 13.89, 13.68, 13.72},
		[4]float64{13.72, 13.88, 13.69, 13.84},
		[4]float64{13.84, 13.87, 13.70, 13.74},
		[4]float64{13.74, 13.86, 13.71, 13.83},
		[4]float64{13.83, 13.85, 13.72, 13.75},
		[4]float64{13.75, 13.84, 13.73, 13.82},
		[4]float64{13.82, 13.83, 13.74, 13.76},
		[4]float64{13.76, 13.82, 13.75, 13.81},
		[4]float64{13.81, 13.81, 13.76, 13.78},
	)
	rows = append(rows, [4]float64{13.85, 14.15, 13.80, 14.10})
	rows = append(rows,
		[4]float64{14.10, 14.17, 14.05, 14.12},
		[4]float64{14.12, 14.20, 14.08, 14.15},
		[4]float64{14.15, 14.23, 14.10, 14.18},
		[4]float64{14.18, 14.25, 14.12, 14.20},
		[4]float64{14.20, 14.27, 14.15, 14.22},
	)
	return barsOf(rows, volume)
}
