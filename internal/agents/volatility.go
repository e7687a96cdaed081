package agents

import (
	"fmt"
	"math"

	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

// VolatilityAgentConfig tunes the expansion breakout agent
type VolatilityAgentConfig struct {
	MinConfidence     float64 `json:"min_confidence"`      // default 0.65
	MaxPositionSize   float64 `json:"max_position_size"`   // default 0.15
	StopATRMultiple   float64 `json:"stop_atr_multiple"`   // default 2.0
	TargetATRMultiple float64 `json:"target_atr_multiple"` // default 4.0
}

// DefaultVolatilityAgentConfig returns the standard tuning
func DefaultVolatilityAgentConfig() VolatilityAgentConfig {
	return VolatilityAgentConfig{
		MinConfidence:     0.65,
		MaxPositionSize:   0.15,
		StopATRMultiple:   2.0,
		TargetATRMultiple: 4.0,
	}
}

// VolatilityAgent takes directional positions into a volatility expansion,
// following the prevailing bias with wide ATR stops to survive the noise.
type VolatilityAgent struct {
	cfg VolatilityAgentConfig
}

// NewVolatilityAgent creates an expansion breakout agent
func NewVolatilityAgent(cfg VolatilityAgentConfig) *VolatilityAgent {
	return &VolatilityAgent{cfg: cfg}
}

func (a *VolatilityAgent) Name() string { return "VolatilityAgent" }

func (a *VolatilityAgent) ShouldActivate(sig *regime.Signal, snap marketdata.Snapshot) bool {
	return sig.Regime == regime.RegimeExpansion && sig.Bias != regime.BiasNeutral
}

func (a *VolatilityAgent) Evaluate(symbol string, sig *regime.Signal, snap marketdata.Snapshot) (*TradeIntent, error) {
	if !a.ShouldActivate(sig, snap) {
		return nil, nil
	}

	price := snap.Price()
	atr := snap.Value(marketdata.FeatureATR)
	atrPct := snap.Value(marketdata.FeatureATRPercent)
	if price <= 0 || atr <= 0 {
		return nil, nil
	}

	dir := DirectionLong
	if sig.Bias == regime.BiasBearish {
		dir = DirectionShort
	}

	confidence := 0.5 + sig.Confidence*0.2
	if atrPct > 2.0 {
		confidence += math.Min(0.2, (atrPct-2.0)*0.1)
	}
	if (dir == DirectionLong && sig.Direction == regime.TrendUp) ||
		(dir == DirectionShort && sig.Direction == regime.TrendDown) {
		confidence += 0.05
	}

	confidence = math.Min(confidence, 1.0)
	if confidence < a.cfg.MinConfidence {
		return nil, nil
	}

	intent := newIntent(a.Name(), symbol, dir, confidence,
		a.cfg.MaxPositionSize*confidence, price,
		fmt.Sprintf("Volatility expansion, ATR %.2f%%, bias %s", atrPct, sig.Bias))
	atrStops(intent, atr, a.cfg.StopATRMultiple, a.cfg.TargetATRMultiple)
	return intent, nil
}
