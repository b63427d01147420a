package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockPredictor/internal/model"
	"StockPredictor/internal/recorder"
)

var trendIcon = map[model.Trend]string{
	model.TrendBullish: "📈",
	model.TrendBearish: "📉",
	model.TrendNeutral: "➖",
}

// FormatAnalysis renders one analysis as a Telegram HTML message.
func FormatAnalysis(a *model.StockAnalysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> | %s\n", html.EscapeString(a.Symbol), a.Timestamp.Format("2006-01-02 15:04")))

	if latest, ok := a.Latest(); ok {
		b.WriteString(fmt.Sprintf("Close (%s): %.2f\n", latest.Date, latest.Close))
		b.WriteString(fmt.Sprintf("MA20: %.2f | MA50: %.2f\n", latest.MA20, latest.MA50))
	}

	p := a.Prediction
	if !p.Available() {
		b.WriteString(fmt.Sprintf("Prediction unavailable: %s\n", html.EscapeString(p.Error)))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("%s %s, 5-day forecast %+.2f%% (confidence %.1f)\n",
		trendIcon[p.Trend], p.Trend, p.Prediction, p.Confidence))
	b.WriteString(html.EscapeString(p.Recommendation))
	b.WriteString("\n")
	return b.String()
}

// DigestEntry is one symbol's outcome in a watchlist run.
type DigestEntry struct {
	Symbol   string
	Analysis *model.StockAnalysis
	Err      error
}

// FormatDigest summarizes a watchlist run, one line per symbol.
func FormatDigest(entries []DigestEntry, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Watchlist</b> | %s\n\n", at.Format("2006-01-02")))
	for _, e := range entries {
		if e.Err != nil {
			b.WriteString(fmt.Sprintf("❌ %s: %s\n", html.EscapeString(e.Symbol), html.EscapeString(e.Err.Error())))
			continue
		}
		p := e.Analysis.Prediction
		if !p.Available() {
			b.WriteString(fmt.Sprintf("➖ %s: %s\n", e.Analysis.Symbol, html.EscapeString(p.Error)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s %+.2f%% (%.1f) %s\n",
			trendIcon[p.Trend], e.Analysis.Symbol, p.Prediction, p.Confidence, html.EscapeString(p.Recommendation)))
	}
	return b.String()
}

// FormatHistory lists recorded snapshots for one symbol.
func FormatHistory(symbol string, snaps []recorder.AnalysisSnapshot) string {
	if len(snaps) == 0 {
		return fmt.Sprintf("No history for %s", html.EscapeString(symbol))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕘 <b>%s history</b>\n\n", html.EscapeString(symbol)))
	for _, s := range snaps {
		if s.Error != "" {
			b.WriteString(fmt.Sprintf("%s ❌ %s\n", s.Timestamp.Format("2006-01-02"), html.EscapeString(s.Error)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %.2f %s %+.2f%% (%.1f)\n",
			s.Timestamp.Format("2006-01-02"), s.CurrentPrice, s.Trend, s.Prediction, s.Confidence))
	}
	return b.String()
}
