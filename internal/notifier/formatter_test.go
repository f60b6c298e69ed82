package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/recorder"
)

func reportFixture() (*recorder.ScanRun, model.Setup) {
	now := time.Date(2024, 6, 3, 16, 30, 0, 0, time.UTC)
	run := &recorder.ScanRun{
		ID:             uuid.NewString(),
		StartedAt:      now.Add(-90 * time.Second),
		FinishedAt:     now,
		SymbolsScanned: 120,
		SymbolsFailed:  3,
		SetupsFound:    1,
	}
	setup := model.Setup{
		Symbol:    "NVDA",
		PriorMove: model.PriorMove{LowIndex: 0, HighIndex: 19, Pct: 0.42, Strength: 9.5},
		Consolidation: model.Consolidation{
			StartIndex: 20, EndIndex: 34, QualityScore: 87,
		},
		Entry: model.Entry{
			Index: 35, Date: now, Price: 14.10,
			BreakoutLevel: 13.97, DollarVolume: 6_900_000,
		},
		Exit: model.Exit{
			Index: 40, Date: now.AddDate(0, 0, 5), Price: 14.22,
			DaysHeld: 5, Reason: model.ExitEndOfData,
		},
		HighestPrice: model.HighestPrice{Index: 40, Price: 14.27, DaysFromEntry: 5},
	}
	return run, setup
}

func TestFormatScanReport(t *testing.T) {
	run, setup := reportFixture()
	report := FormatScanReport(run, []model.Setup{setup})

	for _, want := range []string{"NVDA", "120", "1 setups found"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestFormatScanReport_Empty(t *testing.T) {
	run, _ := reportFixture()
	report := FormatScanReport(run, nil)
	if !strings.Contains(report, "No qualifying setups") {
		t.Errorf("empty report should say so:\n%s", report)
	}
}

func TestFormatScanReport_TruncatesLongLists(t *testing.T) {
	run, setup := reportFixture()
	setups := make([]model.Setup, 20)
	for i := range setups {
		setups[i] = setup
	}
	report := FormatScanReport(run, setups)
	if !strings.Contains(report, "and 5 more") {
		t.Errorf("long report should truncate:\n%s", report)
	}
}

func TestFormatSetupDetail(t *testing.T) {
	_, setup := reportFixture()
	detail := FormatSetupDetail(setup)

	for _, want := range []string{"NVDA", "14.10", "end of data", "+42.0%"} {
		if !strings.Contains(detail, want) {
			t.Errorf("detail missing %q:\n%s", want, detail)
		}
	}
}

func TestFormatStatus(t *testing.T) {
	run, _ := reportFixture()
	status := FormatStatus("runs=3 symbols=120 failing=1 setups=7", run)
	if !strings.Contains(status, "runs=3") {
		t.Errorf("status missing the journal summary:\n%s", status)
	}

	status = FormatStatus("runs=0 symbols=0 failing=0 setups=0", nil)
	if !strings.Contains(status, "none yet") {
		t.Errorf("status without a run should say none yet:\n%s", status)
	}
}
