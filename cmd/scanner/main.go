package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"BreakoutSentinel/internal/chart"
	"BreakoutSentinel/internal/collector"
	"BreakoutSentinel/internal/config"
	"BreakoutSentinel/internal/detector"
	"BreakoutSentinel/internal/journal"
	"BreakoutSentinel/internal/notifier"
	"BreakoutSentinel/internal/recorder"
	"BreakoutSentinel/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] BreakoutSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init detection pipeline
	orch, err := detector.NewOrchestrator(cfg.Detection)
	if err != nil {
		log.Fatalf("[FATAL] init detector: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "csv":
		fetcher = collector.NewCSVFetcher(cfg.DataSource.CSVDir)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s, %d symbols", fetcher.Name(), len(cfg.DataSource.Symbols))

	// Init collector
	col := collector.NewCollector(fetcher, cfg.DataSource.HistoryDays, orch.MinHistory())

	// Init scan journal
	jm, err := journal.NewManager(cfg.Journal.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init scan journal: %v", err)
	}

	// Init Telegram notifier (optional)
	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init chart renderer
	var rend chart.Renderer = chart.NoopRenderer{}
	if cfg.Detection.GenerateCharts {
		rend = chart.NewSVGRenderer()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, orch, jm, n, rec, rend,
		cfg.DataSource.Symbols, cfg.Scan.Workers, cfg.Scan.ChartLimit)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling when configured
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing scan now")
		go sched.RunNow()
	}

	log.Println("[INFO] BreakoutSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] BreakoutSentinel stopped")
}
