// Package scheduler runs scan passes on a cron schedule and on demand.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"BreakoutSentinel/internal/chart"
	"BreakoutSentinel/internal/collector"
	"BreakoutSentinel/internal/detector"
	"BreakoutSentinel/internal/journal"
	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/notifier"
	"BreakoutSentinel/internal/recorder"
)

// Scheduler manages the cron-driven scan task.
type Scheduler struct {
	Cron         *cron.Cron
	Collector    *collector.Collector
	Orchestrator *detector.Orchestrator
	Journal      *journal.Manager
	Notifier     notifier.Notifier
	Recorder     recorder.Recorder
	Renderer     chart.Renderer
	Symbols      []string
	Workers      int
	ChartLimit   int
	Ctx          context.Context

	mu      sync.Mutex
	running bool
	lastRun *recorder.ScanRun
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, orch *detector.Orchestrator,
	jm *journal.Manager, n notifier.Notifier, rec recorder.Recorder, rend chart.Renderer,
	symbols []string, workers, chartLimit int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Collector:    col,
		Orchestrator: orch,
		Journal:      jm,
		Notifier:     n,
		Recorder:     rec,
		Renderer:     rend,
		Symbols:      symbols,
		Workers:      workers,
		ChartLimit:   chartLimit,
		Ctx:          ctx,
	}
}

// RegisterAll registers the scheduled scan task.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a scan pass immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.scanTask()
}

// LastRun returns the most recent completed run, or nil.
func (s *Scheduler) LastRun() *recorder.ScanRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

type symbolResult struct {
	symbol string
	setups []model.Setup
	bars   []model.PricePoint
	err    error
}

// chartCandidate pairs a setup with the price history needed to draw it.
type chartCandidate struct {
	setup model.Setup
	bars  []model.PricePoint
}

func (s *Scheduler) scanTask() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("[WARN] scan already in progress, skipping trigger")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	runID := uuid.New()
	started := time.Now()
	log.Printf("[INFO] scan run %s started: %d symbols, %d workers", runID, len(s.Symbols), s.Workers)

	jobs := make(chan string)
	results := make(chan symbolResult)

	var wg sync.WaitGroup
	for w := 0; w < s.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				results <- s.scanSymbol(runID.String(), symbol)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	go func() {
		for _, symbol := range s.Symbols {
			select {
			case jobs <- symbol:
			case <-s.Ctx.Done():
				close(jobs)
				return
			}
		}
		close(jobs)
	}()

	var all []model.Setup
	var candidates []chartCandidate
	scanned, failed := 0, 0
	for res := range results {
		if res.err != nil {
			failed++
			log.Printf("[ERROR] scan %s: %v", res.symbol, res.err)
			s.Journal.MarkFailed(res.symbol, res.err)
			continue
		}
		scanned++
		all = append(all, res.setups...)
		for _, setup := range res.setups {
			candidates = append(candidates, chartCandidate{setup: setup, bars: res.bars})
		}
	}

	run := &recorder.ScanRun{
		ID:             runID.String(),
		StartedAt:      started,
		FinishedAt:     time.Now(),
		SymbolsScanned: scanned,
		SymbolsFailed:  failed,
		SetupsFound:    len(all),
	}
	if err := s.Recorder.RecordRun(run); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
	s.Journal.MarkRun()

	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()

	log.Printf("[INFO] scan run %s finished: %d scanned, %d failed, %d setups",
		runID, scanned, failed, len(all))
	s.trySend(notifier.FormatScanReport(run, all))
	s.sendCharts(candidates)
}

// scanSymbol runs the full pipeline for one symbol. A panic in detection is
// contained so one bad symbol cannot kill the whole run.
func (s *Scheduler) scanSymbol(runID, symbol string) (res symbolResult) {
	res.symbol = symbol
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("panic scanning %s: %v", symbol, r)
		}
	}()

	series, err := s.Collector.Collect(symbol)
	if err != nil {
		res.err = fmt.Errorf("collect: %w", err)
		return res
	}

	newest := series.Bars[len(series.Bars)-1].Date
	if !s.Journal.ShouldScan(symbol, newest) {
		log.Printf("[INFO] %s: no new bars since last scan, skipping", symbol)
		return res
	}

	setups := s.Orchestrator.Scan(symbol, series.Bars)
	if err := s.Recorder.RecordSetups(runID, symbol, setups); err != nil {
		res.err = fmt.Errorf("record setups: %w", err)
		return res
	}
	s.Journal.MarkScanned(symbol, runID, newest, len(setups))

	res.setups = setups
	res.bars = series.Bars
	return res
}

// sendCharts renders and uploads charts for the highest-quality setups.
func (s *Scheduler) sendCharts(candidates []chartCandidate) {
	if s.Renderer == nil || s.ChartLimit <= 0 {
		return
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].setup.Consolidation.QualityScore > candidates[j].setup.Consolidation.QualityScore
	})

	sent := 0
	for _, c := range candidates {
		if sent >= s.ChartLimit {
			return
		}
		img, err := s.Renderer.Render(c.bars, c.setup)
		if err != nil {
			log.Printf("[WARN] render chart for %s: %v", c.setup.Symbol, err)
			continue
		}
		if len(img) == 0 {
			// Noop renderer, nothing to upload.
			return
		}
		name := fmt.Sprintf("%s_%s.svg", c.setup.Symbol, c.setup.Entry.Date.Format("20060102"))
		caption := notifier.FormatSetupDetail(c.setup)
		if err := s.Notifier.SendDocument(s.Ctx, name, s.Renderer.ContentType(), img, caption); err != nil {
			log.Printf("[WARN] send chart for %s: %v", c.setup.Symbol, err)
			continue
		}
		sent++
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scan":
		go s.scanTask()
		return "Scan started."
	case "/status":
		return notifier.FormatStatus(s.Journal.Summary(), s.LastRun())
	default:
		return "Available commands:\n• /scan\n• /status"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
