package model

import "time"

// SymbolRecord is one symbol's scan watermark.
type SymbolRecord struct {
	LastScanned  time.Time `json:"last_scanned"`
	LastBarDate  time.Time `json:"last_bar_date"`
	LastRunID    string    `json:"last_run_id"`
	SetupCount   int       `json:"setup_count"`
	FailureCount int       `json:"failure_count"`
	LastError    string    `json:"last_error,omitempty"`
}

// JournalState tracks scan progress across runs so restarts don't rescan
// symbols whose data hasn't changed.
type JournalState struct {
	Symbols   map[string]SymbolRecord `json:"symbols"`
	RunCount  int                     `json:"run_count"`
	UpdatedAt time.Time               `json:"updated_at"`
}
