package agents

import (
	"fmt"
	"math"

	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

// MeanReversionAgentConfig tunes the reversion agent
type MeanReversionAgentConfig struct {
	MinConfidence     float64 `json:"min_confidence"`      // default 0.60
	MaxPositionSize   float64 `json:"max_position_size"`   // default 0.20
	EntryDeviation    float64 `json:"entry_deviation"`     // ATR-normalized VWAP stretch, default 1.5
	StopATRMultiple   float64 `json:"stop_atr_multiple"`   // default 1.0
	TargetATRMultiple float64 `json:"target_atr_multiple"` // default 2.0
}

// DefaultMeanReversionAgentConfig returns the standard tuning
func DefaultMeanReversionAgentConfig() MeanReversionAgentConfig {
	return MeanReversionAgentConfig{
		MinConfidence:     0.60,
		MaxPositionSize:   0.20,
		EntryDeviation:    1.5,
		StopATRMultiple:   1.0,
		TargetATRMultiple: 2.0,
	}
}

// MeanReversionAgent fades stretched moves back toward VWAP inside a
// mean-reverting regime.
type MeanReversionAgent struct {
	cfg MeanReversionAgentConfig
}

// NewMeanReversionAgent creates a reversion agent
func NewMeanReversionAgent(cfg MeanReversionAgentConfig) *MeanReversionAgent {
	return &MeanReversionAgent{cfg: cfg}
}

func (a *MeanReversionAgent) Name() string { return "MeanReversionAgent" }

func (a *MeanReversionAgent) ShouldActivate(sig *regime.Signal, snap marketdata.Snapshot) bool {
	return sig.Regime == regime.RegimeMeanReversion
}

func (a *MeanReversionAgent) Evaluate(symbol string, sig *regime.Signal, snap marketdata.Snapshot) (*TradeIntent, error) {
	if !a.ShouldActivate(sig, snap) {
		return nil, nil
	}

	price := snap.Price()
	atr := snap.Value(marketdata.FeatureATR)
	dev := snap.Value(marketdata.FeatureVWAPDeviation)
	if price <= 0 || atr <= 0 {
		return nil, nil
	}
	if math.Abs(dev) < a.cfg.EntryDeviation {
		return nil, nil
	}

	// Stretched below VWAP: expect a snap back up, and vice versa
	dir := DirectionLong
	if dev > 0 {
		dir = DirectionShort
	}

	confidence := 0.5 + math.Min(0.2, (math.Abs(dev)-a.cfg.EntryDeviation)*0.1)

	rsi := snap.Value(marketdata.FeatureRSI)
	if (dir == DirectionLong && rsi > 0 && rsi < 30) || (dir == DirectionShort && rsi > 70) {
		confidence += 0.15
	}
	if h := snap.Value(marketdata.FeatureHurst); h > 0 && h < 0.40 {
		confidence += 0.05
	}

	confidence = math.Min(confidence, 1.0)
	if confidence < a.cfg.MinConfidence {
		return nil, nil
	}

	intent := newIntent(a.Name(), symbol, dir, confidence,
		a.cfg.MaxPositionSize*confidence, price,
		fmt.Sprintf("VWAP stretch %.2f ATRs, RSI %.1f", dev, rsi))
	atrStops(intent, atr, a.cfg.StopATRMultiple, a.cfg.TargetATRMultiple)
	return intent, nil
}
