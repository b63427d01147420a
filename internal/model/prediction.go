package model

// Trend is the direction of the fitted price line.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Advisory strings returned in PredictionResult.Recommendation.
const (
	RecommendHoldLowConfidence = "HOLD - Low confidence in prediction"
	RecommendBuy               = "BUY - Strong upward trend detected"
	RecommendSell              = "SELL - Strong downward trend detected"
	RecommendHoldMixed         = "HOLD - Mixed signals"
)

// PredictionResult is the short-horizon trend summary. When Error is set the
// prediction is unavailable and Prediction/Confidence are zero.
type PredictionResult struct {
	Prediction     float64 `json:"prediction"`
	Confidence     float64 `json:"confidence"`
	Trend          Trend   `json:"trend"`
	Recommendation string  `json:"recommendation,omitempty"`
	Error          string  `json:"error,omitempty"`

	CurrentPrice   float64 `json:"current_price,omitempty"`
	PredictedPrice float64 `json:"predicted_price,omitempty"`
	Slope          float64 `json:"slope,omitempty"`
}

// Available reports whether the prediction was computed.
func (p PredictionResult) Available() bool { return p.Error == "" }
