package agents

import (
	"fmt"
	"math"

	"options-trading-bot/internal/analysis"
	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

// ThetaHarvesterConfig tunes the premium-selling agent
type ThetaHarvesterConfig struct {
	MinConfidence   float64 `json:"min_confidence"`    // default 0.60
	MaxPositionSize float64 `json:"max_position_size"` // default 0.10
	TargetDTE       int     `json:"target_dte"`        // default 30
	IVRankFloor     float64 `json:"iv_rank_floor"`     // only sell rich premium, default 50
	GEXFloor        float64 `json:"gex_floor"`         // reject below this total GEX, default -1e8
}

// DefaultThetaHarvesterConfig returns the standard tuning
func DefaultThetaHarvesterConfig() ThetaHarvesterConfig {
	return ThetaHarvesterConfig{
		MinConfidence:   0.60,
		MaxPositionSize: 0.10,
		TargetDTE:       30,
		IVRankFloor:     50,
		GEXFloor:        -1e8,
	}
}

// ThetaHarvesterAgent sells ATM straddles into compressed, high-IV-rank
// markets, where realized movement is small and premium is overpriced.
// Strongly negative dealer gamma means price can run, so it stands down
// there. Risk is managed at the position-monitoring layer; the intent
// carries no stop or target.
type ThetaHarvesterAgent struct {
	cfg    ThetaHarvesterConfig
	feed   marketdata.OptionsDataFeed
	ivCalc *analysis.IVRankCalculator
}

// NewThetaHarvesterAgent creates a premium-selling agent
func NewThetaHarvesterAgent(cfg ThetaHarvesterConfig, feed marketdata.OptionsDataFeed, ivCalc *analysis.IVRankCalculator) *ThetaHarvesterAgent {
	return &ThetaHarvesterAgent{cfg: cfg, feed: feed, ivCalc: ivCalc}
}

func (a *ThetaHarvesterAgent) Name() string { return "ThetaHarvesterAgent" }

func (a *ThetaHarvesterAgent) ShouldActivate(sig *regime.Signal, snap marketdata.Snapshot) bool {
	return sig.Regime == regime.RegimeCompression
}

func (a *ThetaHarvesterAgent) Evaluate(symbol string, sig *regime.Signal, snap marketdata.Snapshot) (*TradeIntent, error) {
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

	call, err := a.feed.GetATMOption(symbol, expiration, marketdata.CallOption)
	if err != nil {
		return nil, fmt.Errorf("atm call for %s: %w", symbol, err)
	}
	put, err := a.feed.GetATMOption(symbol, expiration, marketdata.PutOption)
	if err != nil {
		return nil, fmt.Errorf("atm put for %s: %w", symbol, err)
	}
	if call == nil || put == nil {
		return nil, nil
	}

	iv := call.ImpliedVol
	if iv <= 0 {
		return nil, nil
	}
	ivRank := a.ivCalc.IVRank(symbol, iv)
	if ivRank < a.cfg.IVRankFloor {
		return nil, nil
	}

	chain, err := a.feed.GetOptionsChain(symbol, expiration)
	if err != nil {
		return nil, fmt.Errorf("chain for %s: %w", symbol, err)
	}
	gex := analysis.CalculateGEXProxy(chain, spot)
	if gex.TotalGEX < a.cfg.GEXFloor {
		return nil, nil
	}

	confidence := 0.55 + sig.Confidence*0.15
	confidence += math.Min(0.20, (ivRank-a.cfg.IVRankFloor)*0.005)
	if analysis.InterpretGEX(gex.TotalGEX) == analysis.GEXPositive ||
		analysis.InterpretGEX(gex.TotalGEX) == analysis.GEXExtremelyPositive {
		// Positive dealer gamma dampens movement, the seller's friend
		confidence += 0.10
	}

	confidence = math.Min(confidence, 1.0)
	if confidence < a.cfg.MinConfidence {
		return nil, nil
	}

	credit := call.Mid() + put.Mid()
	return newIntent(a.Name(), symbol, DirectionShort, confidence,
		a.cfg.MaxPositionSize*confidence, credit,
		fmt.Sprintf("Sell %s %.2f straddle exp %s: %.2f credit, IV rank %.0f, GEX %s",
			symbol, call.Strike, expiration.Format("2006-01-02"), credit, ivRank, analysis.InterpretGEX(gex.TotalGEX))), nil
}
