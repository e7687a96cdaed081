package agents

import (
	"fmt"
	"math"

	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

// EMAAgentConfig tunes the EMA crossover agent
type EMAAgentConfig struct {
	MinConfidence     float64 `json:"min_confidence"`      // default 0.60
	MaxPositionSize   float64 `json:"max_position_size"`   // default 0.20
	MinSpreadPct      float64 `json:"min_spread_pct"`      // EMA separation to act on, default 0.1
	BenchmarkSymbol   string  `json:"benchmark_symbol"`    // never traded, default SPY
	StopATRMultiple   float64 `json:"stop_atr_multiple"`   // default 1.5
	TargetATRMultiple float64 `json:"target_atr_multiple"` // default 3.0
}

// DefaultEMAAgentConfig returns the standard tuning
func DefaultEMAAgentConfig() EMAAgentConfig {
	return EMAAgentConfig{
		MinConfidence:     0.60,
		MaxPositionSize:   0.20,
		MinSpreadPct:      0.1,
		BenchmarkSymbol:   "SPY",
		StopATRMultiple:   1.5,
		TargetATRMultiple: 3.0,
	}
}

// EMAAgent trades the 9/21 EMA relationship. It runs in every regime but
// skips the reserved benchmark symbol, which exists only as a market gauge.
type EMAAgent struct {
	cfg EMAAgentConfig
}

// NewEMAAgent creates an EMA crossover agent
func NewEMAAgent(cfg EMAAgentConfig) *EMAAgent {
	return &EMAAgent{cfg: cfg}
}

func (a *EMAAgent) Name() string { return "EMAAgent" }

func (a *EMAAgent) ShouldActivate(sig *regime.Signal, snap marketdata.Snapshot) bool {
	return snap.Symbol != a.cfg.BenchmarkSymbol
}

func (a *EMAAgent) Evaluate(symbol string, sig *regime.Signal, snap marketdata.Snapshot) (*TradeIntent, error) {
	if !a.ShouldActivate(sig, snap) {
		return nil, nil
	}

	price := snap.Price()
	atr := snap.Value(marketdata.FeatureATR)
	ema9 := snap.Value(marketdata.FeatureEMA9)
	ema21 := snap.Value(marketdata.FeatureEMA21)
	if price <= 0 || atr <= 0 || ema21 <= 0 {
		return nil, nil
	}

	spreadPct := (ema9 - ema21) / ema21 * 100
	if math.Abs(spreadPct) < a.cfg.MinSpreadPct {
		return nil, nil
	}

	dir := DirectionLong
	if spreadPct < 0 {
		dir = DirectionShort
	}

	confidence := 0.5 + math.Min(0.2, math.Abs(spreadPct)*0.5)

	rsi := snap.Value(marketdata.FeatureRSI)
	if (dir == DirectionLong && rsi > 50) || (dir == DirectionShort && rsi > 0 && rsi < 50) {
		confidence += 0.10
	}
	slope := snap.Value(marketdata.FeatureSlope)
	if (dir == DirectionLong && slope > 0) || (dir == DirectionShort && slope < 0) {
		confidence += 0.05
	}

	confidence = math.Min(confidence, 1.0)
	if confidence < a.cfg.MinConfidence {
		return nil, nil
	}

	intent := newIntent(a.Name(), symbol, dir, confidence,
		a.cfg.MaxPositionSize*confidence, price,
		fmt.Sprintf("EMA9/EMA21 spread %.2f%%, RSI %.1f", spreadPct, rsi))
	atrStops(intent, atr, a.cfg.StopATRMultiple, a.cfg.TargetATRMultiple)
	return intent, nil
}
