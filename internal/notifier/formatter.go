package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/recorder"
)

// FormatScanReport formats a completed scan run into a Telegram message.
func FormatScanReport(run *recorder.ScanRun, setups []model.Setup) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔎 <b>Breakout scan</b> | %s\n", run.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Scanned %d symbols (%d failed) in %s\n\n",
		run.SymbolsScanned, run.SymbolsFailed,
		run.FinishedAt.Sub(run.StartedAt).Round(time.Second)))

	if len(setups) == 0 {
		b.WriteString("No qualifying setups today.")
		return b.String()
	}

	// Strongest entries first.
	sorted := make([]model.Setup, len(setups))
	copy(sorted, setups)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Consolidation.QualityScore > sorted[j].Consolidation.QualityScore
	})

	b.WriteString(fmt.Sprintf("📈 <b>%d setups found:</b>\n", len(sorted)))
	for i, s := range sorted {
		if i >= 15 {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(sorted)-i))
			break
		}
		b.WriteString(FormatSetupLine(s))
	}
	return b.String()
}

// FormatSetupLine renders one setup as a single report line.
func FormatSetupLine(s model.Setup) string {
	return fmt.Sprintf("  <b>%s</b> %s @ %.2f | base %dd q%.0f | move %+.0f%% | $vol %s\n",
		s.Symbol,
		s.Entry.Date.Format("01-02"),
		s.Entry.Price,
		s.Consolidation.Days(),
		s.Consolidation.QualityScore,
		s.PriorMove.Pct*100,
		humanize.SIWithDigits(s.Entry.DollarVolume, 1, ""),
	)
}

// FormatSetupDetail renders the full picture of one setup, used as a chart caption.
func FormatSetupDetail(s model.Setup) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s entry %s at %.2f (breakout level %.2f)\n",
		s.Symbol, s.Entry.Date.Format("2006-01-02"), s.Entry.Price, s.Entry.BreakoutLevel))
	b.WriteString(fmt.Sprintf("Prior move %+.1f%% (strength %.1fx ADR), base %d days, quality %.0f\n",
		s.PriorMove.Pct*100, s.PriorMove.Strength, s.Consolidation.Days(), s.Consolidation.QualityScore))
	b.WriteString(fmt.Sprintf("Exit %s at %.2f after %d days (%s), peak %.2f (%+.1f%%)",
		s.Exit.Date.Format("2006-01-02"), s.Exit.Price, s.Exit.DaysHeld, s.Exit.Reason,
		s.HighestPrice.Price, (s.HighestPrice.Price/s.Entry.Price-1)*100))
	return b.String()
}

// FormatStatus formats the journal summary for the /status command.
func FormatStatus(journalSummary string, lastRun *recorder.ScanRun) string {
	var b strings.Builder
	b.WriteString("📦 <b>Scanner status</b>\n\n")
	b.WriteString(fmt.Sprintf("Journal: %s\n", journalSummary))
	if lastRun != nil {
		b.WriteString(fmt.Sprintf("Last run: %s, %d setups (%s)\n",
			lastRun.ID, lastRun.SetupsFound,
			humanize.Time(lastRun.FinishedAt)))
	} else {
		b.WriteString("Last run: none yet\n")
	}
	return b.String()
}
