package recorder

import (
	"time"

	"BreakoutSentinel/internal/model"
)

// ScanRun summarizes one full pass over the symbol universe.
type ScanRun struct {
	ID             string // uuid
	StartedAt      time.Time
	FinishedAt     time.Time
	SymbolsScanned int
	SymbolsFailed  int
	SetupsFound    int
}

// Recorder persists detected setups for later analysis. Implementations
// must serialize writes; the detection core imposes no other
// synchronization.
type Recorder interface {
	// RecordSetups upserts one symbol's setups in a single transaction,
	// keyed by the natural key (symbol, base start, base end, entry date).
	RecordSetups(runID string, symbol string, setups []model.Setup) error
	RecordRun(run *ScanRun) error
	Close() error
}
