package journal

import (
	"fmt"
	"log"
	"sync"
	"time"

	"BreakoutSentinel/internal/model"
)

// Manager tracks per-symbol scan watermarks with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *model.JournalState
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}

	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// GetState returns a copy of the current journal state.
func (m *Manager) GetState() model.JournalState {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *m.state
	copied.Symbols = make(map[string]model.SymbolRecord, len(m.state.Symbols))
	for k, v := range m.state.Symbols {
		copied.Symbols[k] = v
	}
	return copied
}

// ShouldScan reports whether a symbol has fresh data worth scanning.
// A symbol is skipped only when its newest bar date is unchanged since the
// last successful scan.
func (m *Manager) ShouldScan(symbol string, newestBar time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.state.Symbols[symbol]
	if !ok || rec.LastBarDate.IsZero() {
		return true
	}
	return newestBar.After(rec.LastBarDate)
}

// MarkScanned records a successful scan of one symbol.
func (m *Manager) MarkScanned(symbol, runID string, newestBar time.Time, setupCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.state.Symbols[symbol]
	rec.LastScanned = time.Now()
	rec.LastBarDate = newestBar
	rec.LastRunID = runID
	rec.SetupCount = setupCount
	rec.FailureCount = 0
	rec.LastError = ""
	m.state.Symbols[symbol] = rec

	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save scan journal: %v", err)
	}
}

// MarkFailed records a failed scan attempt for one symbol.
func (m *Manager) MarkFailed(symbol string, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.state.Symbols[symbol]
	rec.FailureCount++
	rec.LastError = cause.Error()
	m.state.Symbols[symbol] = rec

	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save scan journal: %v", err)
	}
}

// MarkRun bumps the run counter after a full scan pass.
func (m *Manager) MarkRun() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.RunCount++

	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save scan journal: %v", err)
	}
}

// Summary returns a short human-readable status line.
func (m *Manager) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var failing, setups int
	for _, rec := range m.state.Symbols {
		if rec.FailureCount > 0 {
			failing++
		}
		setups += rec.SetupCount
	}
	return fmt.Sprintf("runs=%d symbols=%d failing=%d setups=%d",
		m.state.RunCount, len(m.state.Symbols), failing, setups)
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
