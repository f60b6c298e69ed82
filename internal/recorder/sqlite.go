package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"BreakoutSentinel/internal/model"
)

// SQLiteRecorder persists scan runs and setups to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read while
	// the scanner writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id              TEXT PRIMARY KEY,
			started_at      INTEGER NOT NULL,
			finished_at     INTEGER NOT NULL,
			symbols_scanned INTEGER,
			symbols_failed  INTEGER,
			setups_found    INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS setups (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id                TEXT,
			symbol                TEXT NOT NULL,
			prior_low_index       INTEGER,
			prior_high_index      INTEGER,
			prior_move_pct        REAL,
			prior_move_strength   REAL,
			base_start_index      INTEGER NOT NULL,
			base_end_index        INTEGER NOT NULL,
			upper_bound           REAL,
			lower_bound           REAL,
			contraction           REAL,
			flatness              REAL,
			retracement           REAL,
			quality_score         REAL,
			entry_index           INTEGER,
			entry_date            INTEGER NOT NULL,
			entry_price           REAL,
			breakout_level        REAL,
			adr                   REAL,
			dollar_volume         REAL,
			exit_index            INTEGER,
			exit_date             INTEGER,
			exit_price            REAL,
			days_held             INTEGER,
			exit_reason           TEXT,
			highest_index         INTEGER,
			highest_date          INTEGER,
			highest_price         REAL,
			highest_days          INTEGER,
			trend_slope           REAL,
			trend_intercept       REAL,
			recorded_at           INTEGER NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_setups_key
			ON setups(symbol, base_start_index, base_end_index, entry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_setups_entry ON setups(entry_date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores one run summary row.
func (r *SQLiteRecorder) RecordRun(run *ScanRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO scan_runs
		(id, started_at, finished_at, symbols_scanned, symbols_failed, setups_found)
		VALUES (?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.SymbolsScanned, run.SymbolsFailed, run.SetupsFound,
	)
	return err
}

// RecordSetups upserts one symbol's setups in a single transaction. On a
// natural-key conflict the newer scan's row wins.
func (r *SQLiteRecorder) RecordSetups(runID, symbol string, setups []model.Setup) error {
	if len(setups) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO setups
		(run_id, symbol,
		 prior_low_index, prior_high_index, prior_move_pct, prior_move_strength,
		 base_start_index, base_end_index,
		 upper_bound, lower_bound, contraction, flatness, retracement, quality_score,
		 entry_index, entry_date, entry_price, breakout_level, adr, dollar_volume,
		 exit_index, exit_date, exit_price, days_held, exit_reason,
		 highest_index, highest_date, highest_price, highest_days,
		 trend_slope, trend_intercept, recorded_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, base_start_index, base_end_index, entry_date)
		DO UPDATE SET
			run_id = excluded.run_id,
			exit_index = excluded.exit_index,
			exit_date = excluded.exit_date,
			exit_price = excluded.exit_price,
			days_held = excluded.days_held,
			exit_reason = excluded.exit_reason,
			highest_index = excluded.highest_index,
			highest_date = excluded.highest_date,
			highest_price = excluded.highest_price,
			highest_days = excluded.highest_days,
			recorded_at = excluded.recorded_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, s := range setups {
		_, err := stmt.Exec(
			runID, s.Symbol,
			s.PriorMove.LowIndex, s.PriorMove.HighIndex, s.PriorMove.Pct, s.PriorMove.Strength,
			s.Consolidation.StartIndex, s.Consolidation.EndIndex,
			s.Consolidation.UpperBound, s.Consolidation.LowerBound,
			s.Consolidation.VolatilityContraction, s.Consolidation.Flatness,
			s.Consolidation.Retracement, s.Consolidation.QualityScore,
			s.Entry.Index, s.Entry.Date.Unix(), s.Entry.Price, s.Entry.BreakoutLevel,
			s.Entry.ADR, s.Entry.DollarVolume,
			s.Exit.Index, s.Exit.Date.Unix(), s.Exit.Price, s.Exit.DaysHeld, string(s.Exit.Reason),
			s.HighestPrice.Index, s.HighestPrice.Date.Unix(), s.HighestPrice.Price, s.HighestPrice.DaysFromEntry,
			s.TrendLine.Slope, s.TrendLine.Intercept, now,
		)
		if err != nil {
			return fmt.Errorf("upsert setup %s@%s: %w", s.Symbol, s.Entry.Date.Format("2006-01-02"), err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
