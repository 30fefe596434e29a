package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"StockBoard/internal/collector"
	"StockBoard/internal/config"
	"StockBoard/internal/model"
	"StockBoard/internal/notifier"
	"StockBoard/internal/pipeline"
	"StockBoard/internal/preview"
	"StockBoard/internal/recorder"
	"StockBoard/internal/render"
	"StockBoard/internal/scheduler"
	"StockBoard/internal/tickers"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup finishes before the process exits.
func run(args []string) int {
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	fs := flag.NewFlagSet("stockboard", flag.ContinueOnError)
	cfgPath := fs.String("config", defaultCfg, "path to the YAML config file")
	out := fs.String("out", "", "output HTML path (overrides output.html_path)")
	daemon := fs.Bool("daemon", false, "stay running and publish on schedule.run_cron")
	once := fs.Bool("once", false, "with -daemon or -serve, also publish immediately on start")
	serve := fs.String("serve", "", "address for the preview server, e.g. :8080")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Printf("[FATAL] load config: %v", err)
		return 1
	}
	if *out != "" {
		cfg.Output.HTMLPath = *out
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("[FATAL] config validation: %v", err)
		return 1
	}

	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	renderer, err := render.New(cfg.Output.Title, cfg.Output.Locale)
	if err != nil {
		log.Printf("[FATAL] init renderer: %v", err)
		return 1
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	runner := &pipeline.Runner{
		Tickers:      newEnumerator(cfg),
		Collector:    collector.NewCollector(fetcher, cfg.DataSource.Delay),
		Renderer:     renderer,
		Recorder:     rec,
		HTMLPath:     cfg.Output.HTMLPath,
		HistoryPath:  cfg.Output.HistoryPath,
		SnapshotPath: cfg.Output.SnapshotPath,
		HistoryRuns:  cfg.Output.HistoryRuns,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve != "" {
		paths := preview.Paths{
			HTML:     cfg.Output.HTMLPath,
			History:  cfg.Output.HistoryPath,
			Snapshot: cfg.Output.SnapshotPath,
		}
		go func() {
			if err := preview.Serve(*serve, rec, paths); err != nil {
				log.Printf("[ERROR] preview server: %v", err)
			}
		}()
	}

	if !*daemon && *serve == "" {
		if _, err := runner.Run(ctx); err != nil {
			log.Printf("[FATAL] run failed: %v", err)
			return 1
		}
		return 0
	}

	if *daemon {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sched := scheduler.NewScheduler(ctx, runner, tn)
		if err := sched.Register(cfg.Schedule.RunCron); err != nil {
			log.Printf("[FATAL] register cron task: %v", err)
			return 1
		}
		sched.Start()
		defer sched.Stop()

		if tn.Enabled() {
			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Println("[INFO] Telegram polling started")
		}
		if *once {
			go sched.RunNow()
		}
	} else if *once {
		if _, err := runner.Run(ctx); err != nil {
			log.Printf("[ERROR] run failed: %v", err)
		}
	}

	log.Println("[INFO] StockBoard is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	return 0
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case config.ProviderYahooQuote:
		return collector.NewYahooQuoteFetcher(cfg.Proxy)
	case config.ProviderYahooChart:
		return collector.NewYahooChartFetcher(cfg.Proxy)
	case config.ProviderFinanceGo:
		return collector.NewFinanceGoFetcher(cfg.Proxy)
	case config.ProviderREST:
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderMock:
		return &collector.MockFetcher{Default: &model.Quote{
			Name:          "Mock AB",
			Currency:      "SEK",
			Price:         100,
			PreviousClose: 98,
			Volume:        12500,
			MarketCap:     25e9,
		}}
	default:
		return collector.NewYahooSummaryFetcher(cfg.Proxy)
	}
}

// newEnumerator picks the index source. Without one, every run uses the fallback list.
func newEnumerator(cfg *config.Config) *tickers.Enumerator {
	switch {
	case cfg.Index.File != "":
		return tickers.NewEnumerator(&tickers.FileIndexSource{Path: cfg.Index.File}, []string{"file"})
	case cfg.Index.BaseURL != "":
		return tickers.NewEnumerator(tickers.NewHTTPIndexSource(cfg.Index.BaseURL, cfg.Proxy), cfg.Index.Names)
	default:
		return tickers.NewEnumerator(nil, cfg.Index.Names)
	}
}
