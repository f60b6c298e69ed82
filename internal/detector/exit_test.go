package detector

import (
	"testing"

	"BreakoutSentinel/internal/model"
)

func entryAt(bars []model.PricePoint, i int) model.Entry {
	return model.Entry{Index: i, Date: bars[i].Date, Price: bars[i].Close}
}

func TestSimulate_LowOfDayExit(t *testing.T) {
	p := testParams()
	rows := [][4]float64{
		{10, 10.2, 10, 10.1},
		{10.1, 10.6, 10.0, 10.5}, // entry, low 10.0
		{10.5, 10.6, 9.4, 9.5},   // closes below the entry bar's low
		{9.5, 9.8, 9.4, 9.7},
	}
	bars := barsOf(rows, 500_000)
	entry := entryAt(bars, 1)

	exit, highest := NewExitSimulator(p).Simulate(bars, entry, NewScanCache(p))
	if exit.Reason != model.ExitLowOfDay {
		t.Fatalf("reason = %q, want %q", exit.Reason, model.ExitLowOfDay)
	}
	if exit.Index != 2 || exit.DaysHeld != 1 {
		t.Errorf("exit = day %d after %d days, want day 2 after 1", exit.Index, exit.DaysHeld)
	}
	if !approx(exit.Price, 9.5, 1e-9) {
		t.Errorf("exit price = %v, want the closing price", exit.Price)
	}
	if !approx(highest.Price, 10.6, 1e-9) {
		t.Errorf("highest = %v, want 10.6", highest.Price)
	}
}

func TestSimulate_SMABreakdownExit(t *testing.T) {
	p := testParams()
	p.ExitSMAPeriod = 10

	rows := make([][4]float64, 0, 14)
	for i := 0; i < 11; i++ {
		rows = append(rows, [4]float64{10, 10.1, 9.9, 10})
	}
	// Holds above the entry low, then slips under the 10-day average.
	rows = append(rows,
		[4]float64{10, 10.15, 9.95, 10.05},
		[4]float64{10.05, 10.1, 9.92, 9.95},
	)
	bars := barsOf(rows, 500_000)
	entry := entryAt(bars, 10) // entry bar low 9.9

	exit, _ := NewExitSimulator(p).Simulate(bars, entry, NewScanCache(p))
	if exit.Reason != model.ExitSMABreakdown {
		t.Fatalf("reason = %q, want %q", exit.Reason, model.ExitSMABreakdown)
	}
	if exit.Index != 12 {
		t.Errorf("exit index = %d, want 12", exit.Index)
	}
}

func TestSimulate_LargeDeclineNeedsMomentumFlag(t *testing.T) {
	p := testParams()
	rows := make([][4]float64, 0, 21)
	for i := 0; i < 10; i++ {
		rows = append(rows, [4]float64{10, 10.05, 9.95, 10})
	}
	for k := 0; k < 10; k++ {
		c := 10.5 + 0.5*float64(k)
		rows = append(rows, [4]float64{c - 0.1, c + 0.02, c - 0.12, c})
	}
	// Sharp single-day drop: still above both the entry low and the
	// 10-day average, so only the momentum rule can catch it.
	rows = append(rows, [4]float64{15, 15, 13.85, 13.9})
	bars := barsOf(rows, 500_000)
	entry := entryAt(bars, 10) // entry bar low 10.38

	exit, _ := NewExitSimulator(p).Simulate(bars, entry, NewScanCache(p))
	if exit.Reason != model.ExitEndOfData {
		t.Fatalf("with momentum exits off, reason = %q, want %q", exit.Reason, model.ExitEndOfData)
	}

	p.MomentumExits = true
	exit, _ = NewExitSimulator(p).Simulate(bars, entry, NewScanCache(p))
	if exit.Reason != model.ExitLargeDecline {
		t.Fatalf("with momentum exits on, reason = %q, want %q", exit.Reason, model.ExitLargeDecline)
	}
	if exit.Index != 20 {
		t.Errorf("exit index = %d, want 20", exit.Index)
	}
}

func TestSimulate_EndOfData(t *testing.T) {
	p := testParams()
	rows := [][4]float64{
		{10, 10.2, 10, 10.1},
		{10.1, 10.6, 10.05, 10.5}, // entry
		{10.5, 10.8, 10.45, 10.7},
		{10.7, 11.0, 10.65, 10.9},
	}
	bars := barsOf(rows, 500_000)
	entry := entryAt(bars, 1)

	exit, highest := NewExitSimulator(p).Simulate(bars, entry, NewScanCache(p))
	if exit.Reason != model.ExitEndOfData {
		t.Fatalf("reason = %q, want %q", exit.Reason, model.ExitEndOfData)
	}
	if exit.Index != 3 || exit.DaysHeld != 2 {
		t.Errorf("exit = day %d after %d days, want day 3 after 2", exit.Index, exit.DaysHeld)
	}
	if highest.Index != 3 || !approx(highest.Price, 11.0, 1e-9) {
		t.Errorf("highest = %v at %d, want 11.0 at 3", highest.Price, highest.Index)
	}
	if highest.DaysFromEntry != 2 {
		t.Errorf("highest days from entry = %d, want 2", highest.DaysFromEntry)
	}
}

func TestSimulate_HighestNeverBelowEntryHigh(t *testing.T) {
	p := testParams()
	rows := [][4]float64{
		{10, 10.2, 10, 10.1},
		{10.1, 10.9, 10.05, 10.5}, // entry bar spikes to 10.9
		{10.5, 10.6, 10.45, 10.55},
		{10.55, 10.6, 10.5, 10.55},
	}
	bars := barsOf(rows, 500_000)
	entry := entryAt(bars, 1)

	_, highest := NewExitSimulator(p).Simulate(bars, entry, NewScanCache(p))
	if !approx(highest.Price, 10.9, 1e-9) {
		t.Errorf("highest = %v, want the entry bar's own high 10.9", highest.Price)
	}
	if highest.Index != 1 || highest.DaysFromEntry != 0 {
		t.Errorf("highest at index %d (+%d days), want the entry bar", highest.Index, highest.DaysFromEntry)
	}
}
