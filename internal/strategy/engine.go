package strategy

import (
	"fmt"
	"math"
	"sort"

	"StockPredictor/internal/calculator"
	"StockPredictor/internal/model"

	"github.com/shopspring/decimal"
)

const (
	// MinBars is the smallest sequence Predict will fit.
	MinBars = 10
	// LookbackBars caps the regression window.
	LookbackBars = 30
	// HorizonDays is how far ahead the fitted line is projected.
	HorizonDays = 5

	neutralSlope      = 0.1
	neutralConfidence = 30.0
	maxConfidence     = 95.0
)

// Tiers maps (trend, confidence) to an advisory string. Evaluated top-down;
// the first matching rule wins.
var Tiers = []struct {
	Match          func(trend model.Trend, confidence float64) bool
	Recommendation string
}{
	{func(_ model.Trend, c float64) bool { return c < 30 }, model.RecommendHoldLowConfidence},
	{func(t model.Trend, c float64) bool { return t == model.TrendBullish && c > 60 }, model.RecommendBuy},
	{func(t model.Trend, c float64) bool { return t == model.TrendBearish && c > 60 }, model.RecommendSell},
}

// Recommend maps a trend and its confidence to an advisory string.
func Recommend(trend model.Trend, confidence float64) string {
	for _, t := range Tiers {
		if t.Match(trend, confidence) {
			return t.Recommendation
		}
	}
	return model.RecommendHoldMixed
}

// Classify turns a fitted slope into a trend and a 0..95 confidence score.
func Classify(slope float64) (model.Trend, float64) {
	if math.Abs(slope) < neutralSlope {
		return model.TrendNeutral, neutralConfidence
	}
	trend := model.TrendBearish
	if slope > 0 {
		trend = model.TrendBullish
	}
	return trend, round(math.Min(math.Abs(slope)*100, maxConfidence), 1)
}

// Predict fits a line to the most recent closes and projects it HorizonDays
// ahead. Failures are reported through PredictionResult.Error.
func Predict(bars []model.DailyBar) model.PredictionResult {
	if len(bars) < MinBars {
		return unavailable("Insufficient data for prediction")
	}

	window := make([]model.DailyBar, len(bars))
	copy(window, bars)
	sort.SliceStable(window, func(i, j int) bool { return window[i].Date > window[j].Date })
	if len(window) > LookbackBars {
		window = window[:LookbackBars]
	}
	currentPrice := window[0].Close

	// Fit oldest to newest so a positive slope means prices rise over time.
	closes := make([]float64, len(window))
	for i, b := range window {
		closes[len(window)-1-i] = b.Close
	}
	slope, err := calculator.LinearSlope(closes)
	if err != nil {
		return unavailable(fmt.Sprintf("Prediction unavailable: %v", err))
	}
	if currentPrice <= 0 || math.IsNaN(currentPrice) {
		return unavailable("Prediction unavailable: non-positive current price")
	}

	trend, confidence := Classify(slope)
	return model.PredictionResult{
		Prediction:     round(slope*HorizonDays/currentPrice*100, 2),
		Confidence:     confidence,
		Trend:          trend,
		Recommendation: Recommend(trend, confidence),
		CurrentPrice:   currentPrice,
		PredictedPrice: round(currentPrice+slope*HorizonDays, 2),
		Slope:          round(slope, 4),
	}
}

func unavailable(msg string) model.PredictionResult {
	return model.PredictionResult{
		Error:      msg,
		Prediction: 0,
		Confidence: 0,
		Trend:      model.TrendNeutral,
	}
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
