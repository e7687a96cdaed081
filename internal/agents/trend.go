package agents

import (
	"fmt"
	"math"

	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

// TrendAgentConfig tunes the trend-following agent
type TrendAgentConfig struct {
	MinConfidence     float64 `json:"min_confidence"`      // default 0.60
	MaxPositionSize   float64 `json:"max_position_size"`   // default 0.25
	StopATRMultiple   float64 `json:"stop_atr_multiple"`   // default 1.5
	TargetATRMultiple float64 `json:"target_atr_multiple"` // default 3.0
}

// DefaultTrendAgentConfig returns the standard tuning
func DefaultTrendAgentConfig() TrendAgentConfig {
	return TrendAgentConfig{
		MinConfidence:     0.60,
		MaxPositionSize:   0.25,
		StopATRMultiple:   1.5,
		TargetATRMultiple: 3.0,
	}
}

// TrendAgent rides established trends: it only wakes in a TREND regime with a
// resolved direction and sizes up with trend strength.
type TrendAgent struct {
	cfg TrendAgentConfig
}

// NewTrendAgent creates a trend-following agent
func NewTrendAgent(cfg TrendAgentConfig) *TrendAgent {
	return &TrendAgent{cfg: cfg}
}

func (a *TrendAgent) Name() string { return "TrendAgent" }

func (a *TrendAgent) ShouldActivate(sig *regime.Signal, snap marketdata.Snapshot) bool {
	return sig.Regime == regime.RegimeTrend && sig.Direction != regime.TrendSideways
}

func (a *TrendAgent) Evaluate(symbol string, sig *regime.Signal, snap marketdata.Snapshot) (*TradeIntent, error) {
	if !a.ShouldActivate(sig, snap) {
		return nil, nil
	}

	price := snap.Price()
	atr := snap.Value(marketdata.FeatureATR)
	if price <= 0 || atr <= 0 {
		return nil, nil
	}

	dir := DirectionLong
	if sig.Direction == regime.TrendDown {
		dir = DirectionShort
	}

	confidence := 0.5 + sig.Confidence*0.2

	adx := snap.Value(marketdata.FeatureADX)
	if adx > 30 {
		confidence += 0.10
	}
	if adx > 40 {
		confidence += 0.05
	}

	dev := snap.Value(marketdata.FeatureVWAPDeviation)
	if (dir == DirectionLong && dev > 0) || (dir == DirectionShort && dev < 0) {
		confidence += 0.10
	}

	rsi := snap.Value(marketdata.FeatureRSI)
	if (dir == DirectionLong && rsi > 50 && rsi < 70) || (dir == DirectionShort && rsi < 50 && rsi > 30) {
		confidence += 0.05
	}

	confidence = math.Min(confidence, 1.0)
	if confidence < a.cfg.MinConfidence {
		return nil, nil
	}

	intent := newIntent(a.Name(), symbol, dir, confidence,
		a.cfg.MaxPositionSize*confidence, price,
		fmt.Sprintf("Trend %s: ADX %.1f, regime confidence %.2f", sig.Direction, adx, sig.Confidence))
	atrStops(intent, atr, a.cfg.StopATRMultiple, a.cfg.TargetATRMultiple)
	return intent, nil
}
