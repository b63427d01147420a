package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"StockPredictor/internal/collector"
	"StockPredictor/internal/model"
	"StockPredictor/internal/notifier"
	"StockPredictor/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Analyzer runs the analysis pipeline for one symbol.
type Analyzer interface {
	Collect(ctx context.Context, symbol string) (*model.StockAnalysis, error)
}

// Sender delivers a formatted message; nil disables notifications.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler refreshes the watchlist on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer Analyzer
	Provider string
	Symbols  []string
	Notifier Sender
	Recorder recorder.Recorder
	Ctx      context.Context
	Now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, analyzer Analyzer, provider string, symbols []string, n Sender, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: analyzer,
		Provider: provider,
		Symbols:  symbols,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// Register adds the watchlist refresh task.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunWatchlist() }); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	slog.Info("scheduler started", "symbols", s.Symbols)
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunWatchlist analyzes every watchlist symbol in turn. A failing symbol
// does not stop the rest.
func (s *Scheduler) RunWatchlist() []notifier.DigestEntry {
	slog.Info("running watchlist refresh", "symbols", len(s.Symbols))
	entries := make([]notifier.DigestEntry, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		if s.Ctx.Err() != nil {
			break
		}
		entries = append(entries, s.analyze(sym))
	}
	if len(entries) > 0 {
		s.trySend(notifier.FormatDigest(entries, s.Now()))
	}
	return entries
}

func (s *Scheduler) analyze(symbol string) notifier.DigestEntry {
	a, err := s.Analyzer.Collect(s.Ctx, symbol)
	entry := notifier.DigestEntry{Symbol: strings.ToUpper(symbol), Analysis: a, Err: err}

	var snap *recorder.AnalysisSnapshot
	if err != nil {
		slog.Error("watchlist analysis failed", "symbol", symbol, "error", err)
		snap = recorder.FailedSnapshot(entry.Symbol, s.Provider, err, s.Now())
	} else {
		snap = recorder.SnapshotFromAnalysis(a)
	}
	if err := s.Recorder.RecordAnalysis(snap); err != nil {
		slog.Error("record analysis failed", "symbol", symbol, "error", err)
	}
	return entry
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return usage
	}
	switch fields[0] {
	case "/stock":
		if len(fields) < 2 {
			return "Usage: /stock SYMBOL"
		}
		a, err := s.Analyzer.Collect(ctx, fields[1])
		if err != nil {
			return fmt.Sprintf("❌ %s", err.Error())
		}
		return notifier.FormatAnalysis(a)
	case "/history":
		if len(fields) < 2 {
			return "Usage: /history SYMBOL"
		}
		symbol, err := collector.NormalizeSymbol(fields[1])
		if err != nil {
			return fmt.Sprintf("❌ %s", err.Error())
		}
		snaps, err := s.Recorder.Recent(symbol, 10)
		if err != nil {
			return fmt.Sprintf("❌ %s", err.Error())
		}
		return notifier.FormatHistory(symbol, snaps)
	case "/watchlist":
		if len(s.Symbols) == 0 {
			return "Watchlist is empty"
		}
		s.RunWatchlist()
		return ""
	default:
		return usage
	}
}

const usage = "Available commands:\n• /stock SYMBOL\n• /history SYMBOL\n• /watchlist"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		slog.Error("send notification failed", "error", err)
	}
}
