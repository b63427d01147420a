package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"StockPredictor/internal/api"
	"StockPredictor/internal/collector"
	"StockPredictor/internal/config"
	"StockPredictor/internal/notifier"
	"StockPredictor/internal/recorder"
	"StockPredictor/internal/scheduler"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config validation", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))
	slog.Info("stock predictor starting", "environment", cfg.Environment(), "version", api.Version)

	opts := collector.DefaultClientOptions()
	opts.InsecureTLS = cfg.DataSource.InsecureTLS
	opts.Proxy = cfg.Proxy
	client := collector.NewUpstreamClient(opts)
	if opts.InsecureTLS {
		slog.Warn("TLS certificate verification disabled for upstream requests")
	}

	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderPolygon:
		fetcher = collector.NewPolygonFetcher(cfg.DataSource.Polygon.BaseURL, cfg.DataSource.Polygon.APIKey, client)
	default:
		fetcher = collector.NewAlphaVantageFetcher(cfg.DataSource.AlphaVantage.BaseURL, cfg.DataSource.AlphaVantage.APIKey, client)
	}
	slog.Info("data source selected", "provider", fetcher.Name())
	col := collector.NewCollector(fetcher)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			slog.Warn("init sqlite recorder failed, using noop", "error", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, col, fetcher.Name(), cfg.Watchlist.Symbols, sender, rec)
	if len(cfg.Watchlist.Symbols) > 0 {
		if err := sched.Register(cfg.Watchlist.Cron); err != nil {
			slog.Error("register watchlist task", "error", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
		if cfg.Watchlist.RunOnStart {
			slog.Info("run_on_start enabled, refreshing watchlist now")
			go sched.RunWatchlist()
		}
	}
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		slog.Info("telegram polling started")
	}

	srv := api.NewServer(col, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Environment(),
		Provider:       fetcher.Name(),
		Debug:          cfg.Server.Debug,
	})
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		slog.Error("http server", "error", err)
		os.Exit(1)
	}
	slog.Info("stock predictor stopped")
}
