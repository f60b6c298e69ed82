package scheduler

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"BreakoutSentinel/internal/chart"
	"BreakoutSentinel/internal/collector"
	"BreakoutSentinel/internal/detector"
	"BreakoutSentinel/internal/journal"
	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/notifier"
	"BreakoutSentinel/internal/recorder"
)

// flatBars produces a quiet series long enough to pass the history gate but
// with no explosive move, so a scan finds nothing.
func flatBars(n int) []model.PricePoint {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PricePoint, n)
	for i := range bars {
		bars[i] = model.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   10.0,
			High:   10.1,
			Low:    9.9,
			Close:  10.0,
			Volume: 500_000,
		}
	}
	return bars
}

func testScheduler(t *testing.T, fetcher collector.Fetcher, symbols []string) *Scheduler {
	t.Helper()

	orch, err := detector.NewOrchestrator(detector.DefaultParams())
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	jm, err := journal.NewManager(filepath.Join(t.TempDir(), "journal.json"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	col := collector.NewCollector(fetcher, 400, orch.MinHistory())

	return NewScheduler(context.Background(), col, orch, jm,
		&notifier.NoopNotifier{}, recorder.NewNoopRecorder(), &chart.NoopRenderer{},
		symbols, 1, 5)
}

func TestRunNow_QuietMarket(t *testing.T) {
	fetcher := &collector.MockFetcher{Bars: map[string][]model.PricePoint{
		"AAPL": flatBars(120),
	}}
	s := testScheduler(t, fetcher, []string{"AAPL"})

	s.RunNow()

	run := s.LastRun()
	if run == nil {
		t.Fatal("LastRun() = nil after RunNow")
	}
	if run.ID == "" {
		t.Error("run ID should be assigned")
	}
	if run.SymbolsScanned != 1 || run.SymbolsFailed != 0 {
		t.Errorf("scanned=%d failed=%d, want 1/0", run.SymbolsScanned, run.SymbolsFailed)
	}
	if run.SetupsFound != 0 {
		t.Errorf("SetupsFound = %d on a flat series, want 0", run.SetupsFound)
	}
}

func TestRunNow_FailedSymbolJournaled(t *testing.T) {
	fetcher := &collector.MockFetcher{Bars: map[string][]model.PricePoint{
		"AAPL": flatBars(120),
	}}
	s := testScheduler(t, fetcher, []string{"AAPL", "MSFT"})

	s.RunNow()

	run := s.LastRun()
	if run == nil {
		t.Fatal("LastRun() = nil after RunNow")
	}
	if run.SymbolsScanned != 1 || run.SymbolsFailed != 1 {
		t.Errorf("scanned=%d failed=%d, want 1/1", run.SymbolsScanned, run.SymbolsFailed)
	}

	state := s.Journal.GetState()
	rec, ok := state.Symbols["MSFT"]
	if !ok {
		t.Fatal("failed symbol missing from journal")
	}
	if rec.FailureCount != 1 || rec.LastError == "" {
		t.Errorf("journal record = %+v, want one recorded failure", rec)
	}
}

func TestRunNow_SkipsUnchangedSymbol(t *testing.T) {
	fetcher := &collector.MockFetcher{Bars: map[string][]model.PricePoint{
		"AAPL": flatBars(120),
	}}
	s := testScheduler(t, fetcher, []string{"AAPL"})

	s.RunNow()
	s.RunNow()

	state := s.Journal.GetState()
	if rec := state.Symbols["AAPL"]; rec.LastRunID == "" {
		t.Error("journal should retain the first run's ID")
	}
	if state.RunCount != 2 {
		t.Errorf("RunCount = %d, want 2", state.RunCount)
	}
}

func TestHandleCommand(t *testing.T) {
	fetcher := &collector.MockFetcher{Bars: map[string][]model.PricePoint{
		"AAPL": flatBars(120),
	}}
	s := testScheduler(t, fetcher, []string{"AAPL"})
	s.RunNow()

	reply := s.HandleCommand("/status")
	if !strings.Contains(reply, "runs=1") {
		t.Errorf("/status reply missing journal summary: %q", reply)
	}

	reply = s.HandleCommand("/nonsense")
	if !strings.Contains(reply, "/scan") || !strings.Contains(reply, "/status") {
		t.Errorf("help reply should list commands: %q", reply)
	}
}
