package journal

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	m.MarkScanned("AAPL", "run-1", day, 2)
	m.MarkRun()

	// A fresh manager must see the persisted state.
	m2, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	state := m2.GetState()
	if state.RunCount != 1 {
		t.Errorf("run count = %d, want 1", state.RunCount)
	}
	rec, ok := state.Symbols["AAPL"]
	if !ok {
		t.Fatal("AAPL record not persisted")
	}
	if !rec.LastBarDate.Equal(day) {
		t.Errorf("last bar date = %v, want %v", rec.LastBarDate, day)
	}
	if rec.SetupCount != 2 || rec.LastRunID != "run-1" {
		t.Errorf("record = %+v", rec)
	}
}

func TestManager_ShouldScan(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "journal.json"))
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	if !m.ShouldScan("AAPL", day) {
		t.Error("an unknown symbol must be scanned")
	}
	m.MarkScanned("AAPL", "run-1", day, 0)
	if m.ShouldScan("AAPL", day) {
		t.Error("unchanged newest bar should skip the rescan")
	}
	if !m.ShouldScan("AAPL", day.AddDate(0, 0, 1)) {
		t.Error("a newer bar must trigger a rescan")
	}
}

func TestManager_FailureTracking(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "journal.json"))
	if err != nil {
		t.Fatal(err)
	}

	m.MarkFailed("TSLA", errors.New("fetch timeout"))
	m.MarkFailed("TSLA", errors.New("fetch timeout"))
	rec := m.GetState().Symbols["TSLA"]
	if rec.FailureCount != 2 {
		t.Errorf("failure count = %d, want 2", rec.FailureCount)
	}
	if rec.LastError != "fetch timeout" {
		t.Errorf("last error = %q", rec.LastError)
	}

	// A successful scan clears the failure streak.
	m.MarkScanned("TSLA", "run-2", time.Now(), 1)
	rec = m.GetState().Symbols["TSLA"]
	if rec.FailureCount != 0 || rec.LastError != "" {
		t.Errorf("failure state not cleared: %+v", rec)
	}
}

func TestManager_Summary(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "journal.json"))
	if err != nil {
		t.Fatal(err)
	}
	m.MarkScanned("AAPL", "run-1", time.Now(), 3)
	m.MarkFailed("TSLA", errors.New("boom"))
	m.MarkRun()

	s := m.Summary()
	for _, want := range []string{"runs=1", "symbols=2", "failing=1", "setups=3"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary %q missing %q", s, want)
		}
	}
}

func TestLoadState_MissingFile(t *testing.T) {
	state, err := LoadState(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if state.Symbols == nil {
		t.Error("fresh state must have an initialized symbol map")
	}
}
