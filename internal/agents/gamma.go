package agents

import (
	"fmt"
	"math"

	"options-trading-bot/internal/analysis"
	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

// GammaScalperConfig tunes the long-strangle agent
type GammaScalperConfig struct {
	MinConfidence   float64 `json:"min_confidence"`    // default 0.60
	MaxPositionSize float64 `json:"max_position_size"` // default 0.10
	TargetDTE       int     `json:"target_dte"`        // default 30
	IVRankCeiling   float64 `json:"iv_rank_ceiling"`   // only buy cheap premium, default 30
	GEXCeiling      float64 `json:"gex_ceiling"`       // require total GEX below this, default -1e8
	WingDelta       float64 `json:"wing_delta"`        // target |delta| for each wing, default 0.25
}

// DefaultGammaScalperConfig returns the standard tuning
func DefaultGammaScalperConfig() GammaScalperConfig {
	return GammaScalperConfig{
		MinConfidence:   0.60,
		MaxPositionSize: 0.10,
		TargetDTE:       30,
		IVRankCeiling:   30,
		GEXCeiling:      -1e8,
		WingDelta:       0.25,
	}
}

// GammaScalperAgent buys strangles when premium is cheap, volatility is
// expanding and dealers are short gamma, so their hedging amplifies every
// move. The inverse trade of the theta harvester. No stop or target: the
// position layer manages strangle risk.
type GammaScalperAgent struct {
	cfg    GammaScalperConfig
	feed   marketdata.OptionsDataFeed
	ivCalc *analysis.IVRankCalculator
}

// NewGammaScalperAgent creates a long-strangle agent
func NewGammaScalperAgent(cfg GammaScalperConfig, feed marketdata.OptionsDataFeed, ivCalc *analysis.IVRankCalculator) *GammaScalperAgent {
	return &GammaScalperAgent{cfg: cfg, feed: feed, ivCalc: ivCalc}
}

func (a *GammaScalperAgent) Name() string { return "GammaScalperAgent" }

func (a *GammaScalperAgent) ShouldActivate(sig *regime.Signal, snap marketdata.Snapshot) bool {
	return sig.Regime == regime.RegimeExpansion
}

func (a *GammaScalperAgent) Evaluate(symbol string, sig *regime.Signal, snap marketdata.Snapshot) (*TradeIntent, error) {
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

	chain, err := a.feed.GetOptionsChain(symbol, expiration)
	if err != nil {
		return nil, fmt.Errorf("chain for %s: %w", symbol, err)
	}
	if len(chain) == 0 {
		return nil, nil
	}

	gex := analysis.CalculateGEXProxy(chain, spot)
	if gex.TotalGEX > a.cfg.GEXCeiling {
		return nil, nil
	}

	call := contractNearDelta(chain, marketdata.CallOption, a.cfg.WingDelta)
	put := contractNearDelta(chain, marketdata.PutOption, -a.cfg.WingDelta)
	if call == nil || put == nil {
		return nil, nil
	}

	iv := (call.ImpliedVol + put.ImpliedVol) / 2
	if iv <= 0 {
		return nil, nil
	}
	ivRank := a.ivCalc.IVRank(symbol, iv)
	if ivRank > a.cfg.IVRankCeiling {
		return nil, nil
	}

	confidence := 0.55 + sig.Confidence*0.15
	confidence += math.Min(0.15, (a.cfg.IVRankCeiling-ivRank)*0.005)
	if analysis.InterpretGEX(gex.TotalGEX) == analysis.GEXExtremelyNegative {
		confidence += 0.10
	}

	confidence = math.Min(confidence, 1.0)
	if confidence < a.cfg.MinConfidence {
		return nil, nil
	}

	debit := call.Mid() + put.Mid()
	return newIntent(a.Name(), symbol, DirectionLong, confidence,
		a.cfg.MaxPositionSize*confidence, debit,
		fmt.Sprintf("Buy %s %.2f/%.2f strangle exp %s: %.2f debit, IV rank %.0f, GEX %s",
			symbol, put.Strike, call.Strike, expiration.Format("2006-01-02"), debit, ivRank, analysis.InterpretGEX(gex.TotalGEX))), nil
}

// contractNearDelta returns the contract of the given type whose delta is
// closest to the target, or nil when the chain holds none of that type.
func contractNearDelta(chain []marketdata.OptionContract, optType marketdata.OptionType, targetDelta float64) *marketdata.OptionContract {
	var best *marketdata.OptionContract
	bestDiff := math.MaxFloat64
	for i := range chain {
		c := &chain[i]
		if c.Type != optType {
			continue
		}
		diff := math.Abs(c.Delta - targetDelta)
		if diff < bestDiff {
			best = c
			bestDiff = diff
		}
	}
	return best
}
