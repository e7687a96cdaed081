package agents

import (
	"fmt"
	"math"

	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

// FVGAgentConfig tunes the fair-value-gap agent
type FVGAgentConfig struct {
	MinConfidence     float64 `json:"min_confidence"`      // default 0.60
	MaxPositionSize   float64 `json:"max_position_size"`   // default 0.15
	MaxDistancePct    float64 `json:"max_distance_pct"`    // ignore gaps further than this, default 2.0
	StopATRMultiple   float64 `json:"stop_atr_multiple"`   // default 1.0
	TargetATRMultiple float64 `json:"target_atr_multiple"` // default 2.5
}

// DefaultFVGAgentConfig returns the standard tuning
func DefaultFVGAgentConfig() FVGAgentConfig {
	return FVGAgentConfig{
		MinConfidence:     0.60,
		MaxPositionSize:   0.15,
		MaxDistancePct:    2.0,
		StopATRMultiple:   1.0,
		TargetATRMultiple: 2.5,
	}
}

// FVGAgent trades retests of unfilled fair value gaps. It is the one agent
// that ignores the regime type entirely: an open gap is tradeable in any
// market character.
type FVGAgent struct {
	cfg FVGAgentConfig
}

// NewFVGAgent creates a fair-value-gap agent
func NewFVGAgent(cfg FVGAgentConfig) *FVGAgent {
	return &FVGAgent{cfg: cfg}
}

func (a *FVGAgent) Name() string { return "FVGAgent" }

func (a *FVGAgent) ShouldActivate(sig *regime.Signal, snap marketdata.Snapshot) bool {
	return snap.FVG != nil && !snap.FVG.Filled
}

func (a *FVGAgent) Evaluate(symbol string, sig *regime.Signal, snap marketdata.Snapshot) (*TradeIntent, error) {
	if !a.ShouldActivate(sig, snap) {
		return nil, nil
	}

	price := snap.Price()
	atr := snap.Value(marketdata.FeatureATR)
	gap := snap.FVG
	if price <= 0 || atr <= 0 {
		return nil, nil
	}
	if gap.DistancePct > a.cfg.MaxDistancePct {
		return nil, nil
	}

	// A bullish gap below price acts as support, a bearish gap above as
	// resistance.
	dir := DirectionLong
	if gap.Type == marketdata.GapBearish {
		dir = DirectionShort
	}

	confidence := 0.55 + sig.Confidence*0.1

	switch {
	case gap.DistancePct < 0.5:
		confidence += 0.20
	case gap.DistancePct < 1.0:
		confidence += 0.10
	}

	if (dir == DirectionLong && sig.Bias == regime.BiasBullish) ||
		(dir == DirectionShort && sig.Bias == regime.BiasBearish) {
		confidence += 0.10
	}

	confidence = math.Min(confidence, 1.0)
	if confidence < a.cfg.MinConfidence {
		return nil, nil
	}

	intent := newIntent(a.Name(), symbol, dir, confidence,
		a.cfg.MaxPositionSize*confidence, price,
		fmt.Sprintf("%s FVG at %.2f, %.2f%% away", gap.Type, gap.Midpoint, gap.DistancePct))
	atrStops(intent, atr, a.cfg.StopATRMultiple, a.cfg.TargetATRMultiple)
	return intent, nil
}
