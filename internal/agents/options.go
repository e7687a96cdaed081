package agents

import (
	"fmt"
	"math"
	"time"

	"options-trading-bot/internal/analysis"
	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/pricing"
	"options-trading-bot/internal/regime"
)

// OptionsAgentConfig tunes the directional options buyer
type OptionsAgentConfig struct {
	MinConfidence   float64 `json:"min_confidence"`    // default 0.60
	MaxPositionSize float64 `json:"max_position_size"` // default 0.10
	TargetDTE       int     `json:"target_dte"`        // default 30
	IVRankCeiling   float64 `json:"iv_rank_ceiling"`   // skip rich premium, default 70
	DeltaFloor      float64 `json:"delta_floor"`       // minimum |delta|, default 0.40
	MinOpenInterest float64 `json:"min_open_interest"` // default 100
	DividendYield   float64 `json:"dividend_yield"`    // continuous yield for pricing, default 0
}

// DefaultOptionsAgentConfig returns the standard tuning
func DefaultOptionsAgentConfig() OptionsAgentConfig {
	return OptionsAgentConfig{
		MinConfidence:   0.60,
		MaxPositionSize: 0.10,
		TargetDTE:       30,
		IVRankCeiling:   70,
		DeltaFloor:      0.40,
		MinOpenInterest: 100,
	}
}

// OptionsAgent buys ATM single legs in the direction of the prevailing bias:
// calls when bullish, puts when bearish. It refuses rich premium (high IV
// rank) and thin deltas. Exits are managed at the position layer, so no
// stop or target is attached.
type OptionsAgent struct {
	cfg    OptionsAgentConfig
	feed   marketdata.OptionsDataFeed
	engine *pricing.Engine
	ivCalc *analysis.IVRankCalculator
}

// NewOptionsAgent creates a directional options agent
func NewOptionsAgent(cfg OptionsAgentConfig, feed marketdata.OptionsDataFeed, engine *pricing.Engine, ivCalc *analysis.IVRankCalculator) *OptionsAgent {
	return &OptionsAgent{cfg: cfg, feed: feed, engine: engine, ivCalc: ivCalc}
}

func (a *OptionsAgent) Name() string { return "OptionsAgent" }

func (a *OptionsAgent) ShouldActivate(sig *regime.Signal, snap marketdata.Snapshot) bool {
	return sig.Bias != regime.BiasNeutral
}

func (a *OptionsAgent) Evaluate(symbol string, sig *regime.Signal, snap marketdata.Snapshot) (*TradeIntent, error) {
	if !a.ShouldActivate(sig, snap) {
		return nil, nil
	}

	spot := snap.Price()
	if spot <= 0 {
		return nil, nil
	}

	expiration, err := nearestExpiration(a.feed, symbol, a.cfg.TargetDTE)
	if err != nil {
		return nil, fmt.Errorf("expirations for %s: %w", symbol, err)
	}
	if expiration.IsZero() {
		return nil, nil
	}

	optType := marketdata.CallOption
	dir := DirectionLong
	if sig.Bias == regime.BiasBearish {
		optType = marketdata.PutOption
		dir = DirectionShort
	}

	contract, err := a.feed.GetATMOption(symbol, expiration, optType)
	if err != nil {
		return nil, fmt.Errorf("atm option for %s: %w", symbol, err)
	}
	if contract == nil || contract.OpenInterest < a.cfg.MinOpenInterest {
		return nil, nil
	}

	t := yearsUntil(expiration)
	vol := contract.ImpliedVol
	if vol <= 0 {
		if solved, ok := a.engine.SolveIV(contract.Mid(), spot, contract.Strike, t, optType, a.cfg.DividendYield); ok {
			vol = solved
		}
	}
	if vol <= 0 {
		return nil, nil
	}

	ivRank := a.ivCalc.IVRank(symbol, vol)
	if ivRank > a.cfg.IVRankCeiling {
		return nil, nil
	}

	greeks := a.engine.Calculate(spot, contract.Strike, t, vol, optType, a.cfg.DividendYield)
	if math.Abs(greeks.Delta) < a.cfg.DeltaFloor {
		return nil, nil
	}

	confidence := 0.55 + sig.Confidence*0.2
	if (dir == DirectionLong && sig.Direction == regime.TrendUp) ||
		(dir == DirectionShort && sig.Direction == regime.TrendDown) {
		confidence += 0.10
	}
	if contract.OpenInterest >= 1000 {
		confidence += 0.05
	}

	confidence = math.Min(confidence, 1.0)
	if confidence < a.cfg.MinConfidence {
		return nil, nil
	}

	return newIntent(a.Name(), symbol, dir, confidence,
		a.cfg.MaxPositionSize*confidence, contract.Mid(),
		fmt.Sprintf("Buy %s %s %.2f exp %s: delta %.2f, IV rank %.0f",
			symbol, optType, contract.Strike, expiration.Format("2006-01-02"), greeks.Delta, ivRank)), nil
}

// nearestExpiration returns the listed expiration closest to the target DTE,
// or the zero time when nothing is listed.
func nearestExpiration(feed marketdata.OptionsDataFeed, symbol string, targetDTE int) (time.Time, error) {
	dates, err := feed.GetExpirationDates(symbol)
	if err != nil {
		return time.Time{}, err
	}

	var best time.Time
	bestDiff := math.MaxFloat64
	for _, d := range dates {
		dte := time.Until(d).Hours() / 24
		if dte <= 0 {
			continue
		}
		diff := math.Abs(dte - float64(targetDTE))
		if diff < bestDiff {
			best = d
			bestDiff = diff
		}
	}
	return best, nil
}

// yearsUntil converts an expiration date to year-fraction time to expiry,
// floored at one day so same-week contracts stay priceable.
func yearsUntil(expiration time.Time) float64 {
	t := time.Until(expiration).Hours() / 24 / 365
	if t < 1.0/365 {
		t = 1.0 / 365
	}
	return t
}
