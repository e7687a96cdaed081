package agents

import (
	"testing"

	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

func trendSignal(dir regime.TrendDirection, confidence float64) *regime.Signal {
	return &regime.Signal{
		Regime:     regime.RegimeTrend,
		Direction:  dir,
		Volatility: regime.VolMedium,
		Bias:       regime.BiasNeutral,
		Confidence: confidence,
	}
}

func snap(values map[string]float64) marketdata.Snapshot {
	return marketdata.Snapshot{Symbol: "AAPL", Values: values}
}

func TestTrendAgentActivation(t *testing.T) {
	agent := NewTrendAgent(DefaultTrendAgentConfig())
	s := snap(nil)

	if !agent.ShouldActivate(trendSignal(regime.TrendUp, 0.8), s) {
		t.Error("Should activate in an up trend")
	}
	if agent.ShouldActivate(trendSignal(regime.TrendSideways, 0.8), s) {
		t.Error("Should not activate sideways")
	}
	if agent.ShouldActivate(&regime.Signal{Regime: regime.RegimeCompression, Direction: regime.TrendUp}, s) {
		t.Error("Should not activate outside TREND regime")
	}
}

func TestTrendAgentLongIntent(t *testing.T) {
	agent := NewTrendAgent(DefaultTrendAgentConfig())

	s := snap(map[string]float64{
		marketdata.FeatureCurrentPrice:  232,
		marketdata.FeatureATR:           3.5,
		marketdata.FeatureADX:           42,
		marketdata.FeatureVWAPDeviation: 0.8,
		marketdata.FeatureRSI:           60,
	})

	intent, err := agent.Evaluate("AAPL", trendSignal(regime.TrendUp, 0.9), s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if intent == nil {
		t.Fatal("Expected an intent")
	}
	if intent.Direction != DirectionLong {
		t.Errorf("Up trend should propose LONG, got %s", intent.Direction)
	}
	// 0.5 + 0.18 + 0.10 + 0.05 + 0.10 + 0.05 = 0.98
	if intent.Confidence < 0.95 {
		t.Errorf("All boosts active, expected confidence near 0.98, got %f", intent.Confidence)
	}
	if intent.StopLoss == nil || intent.TakeProfit == nil {
		t.Fatal("Trend intent should carry ATR stops")
	}
	if *intent.StopLoss >= intent.EntryPrice {
		t.Errorf("Long stop should sit below entry: %f vs %f", *intent.StopLoss, intent.EntryPrice)
	}
	if *intent.TakeProfit <= intent.EntryPrice {
		t.Errorf("Long target should sit above entry: %f vs %f", *intent.TakeProfit, intent.EntryPrice)
	}
}

func TestTrendAgentShortStops(t *testing.T) {
	agent := NewTrendAgent(DefaultTrendAgentConfig())

	s := snap(map[string]float64{
		marketdata.FeatureCurrentPrice:  232,
		marketdata.FeatureATR:           3.5,
		marketdata.FeatureADX:           35,
		marketdata.FeatureVWAPDeviation: -0.8,
		marketdata.FeatureRSI:           40,
	})

	intent, err := agent.Evaluate("AAPL", trendSignal(regime.TrendDown, 0.8), s)
	if err != nil || intent == nil {
		t.Fatalf("Expected a short intent, got %v / %v", intent, err)
	}
	if intent.Direction != DirectionShort {
		t.Fatalf("Down trend should propose SHORT, got %s", intent.Direction)
	}
	if *intent.StopLoss <= intent.EntryPrice {
		t.Errorf("Short stop should sit above entry")
	}
	if *intent.TakeProfit >= intent.EntryPrice {
		t.Errorf("Short target should sit below entry")
	}
}

func TestTrendAgentMissingATR(t *testing.T) {
	agent := NewTrendAgent(DefaultTrendAgentConfig())

	s := snap(map[string]float64{marketdata.FeatureCurrentPrice: 232})
	intent, err := agent.Evaluate("AAPL", trendSignal(regime.TrendUp, 0.9), s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if intent != nil {
		t.Error("Missing ATR should yield no intent")
	}
}

func TestMeanReversionAgentFadesDeviation(t *testing.T) {
	agent := NewMeanReversionAgent(DefaultMeanReversionAgentConfig())

	sig := &regime.Signal{
		Regime:     regime.RegimeMeanReversion,
		Direction:  regime.TrendSideways,
		Volatility: regime.VolMedium,
		Bias:       regime.BiasNeutral,
		Confidence: 0.8,
	}

	// Price stretched below VWAP: fade it long
	s := snap(map[string]float64{
		marketdata.FeatureCurrentPrice:  230,
		marketdata.FeatureATR:           3.0,
		marketdata.FeatureVWAPDeviation: -2.2,
		marketdata.FeatureRSI:           25,
		marketdata.FeatureHurst:         0.35,
	})

	intent, err := agent.Evaluate("AAPL", sig, s)
	if err != nil || intent == nil {
		t.Fatalf("Expected an intent, got %v / %v", intent, err)
	}
	if intent.Direction != DirectionLong {
		t.Errorf("Negative deviation should be faded LONG, got %s", intent.Direction)
	}
}

func TestMeanReversionAgentNeedsStretch(t *testing.T) {
	agent := NewMeanReversionAgent(DefaultMeanReversionAgentConfig())

	sig := &regime.Signal{Regime: regime.RegimeMeanReversion, Direction: regime.TrendSideways, Confidence: 0.8}
	s := snap(map[string]float64{
		marketdata.FeatureCurrentPrice:  230,
		marketdata.FeatureATR:           3.0,
		marketdata.FeatureVWAPDeviation: -0.8,
	})

	intent, _ := agent.Evaluate("AAPL", sig, s)
	if intent != nil {
		t.Error("Deviation inside 1.5 band should yield no intent")
	}
}

func TestFVGAgentTradesTowardGap(t *testing.T) {
	agent := NewFVGAgent(DefaultFVGAgentConfig())

	sig := &regime.Signal{
		Regime:     regime.RegimeTrend,
		Direction:  regime.TrendUp,
		Bias:       regime.BiasBullish,
		Confidence: 0.7,
	}
	s := snap(map[string]float64{
		marketdata.FeatureCurrentPrice: 232,
		marketdata.FeatureATR:          3.0,
	})
	s.FVG = &marketdata.GapInfo{
		Type:        marketdata.GapBullish,
		Midpoint:    231.2,
		DistancePct: 0.35,
		Filled:      false,
	}

	if !agent.ShouldActivate(sig, s) {
		t.Fatal("Open gap should activate the agent regardless of regime")
	}

	intent, err := agent.Evaluate("AAPL", sig, s)
	if err != nil || intent == nil {
		t.Fatalf("Expected an intent, got %v / %v", intent, err)
	}
	if intent.Direction != DirectionLong {
		t.Errorf("Bullish gap should propose LONG, got %s", intent.Direction)
	}
}

func TestFVGAgentIgnoresFarGap(t *testing.T) {
	agent := NewFVGAgent(DefaultFVGAgentConfig())

	sig := &regime.Signal{Regime: regime.RegimeTrend, Direction: regime.TrendUp, Confidence: 0.7}
	s := snap(map[string]float64{
		marketdata.FeatureCurrentPrice: 232,
		marketdata.FeatureATR:          3.0,
	})
	s.FVG = &marketdata.GapInfo{Type: marketdata.GapBullish, Midpoint: 220, DistancePct: 5.2}

	intent, _ := agent.Evaluate("AAPL", sig, s)
	if intent != nil {
		t.Error("Gap more than 2% away should yield no intent")
	}
}

func TestFVGAgentInactiveWithoutGap(t *testing.T) {
	agent := NewFVGAgent(DefaultFVGAgentConfig())
	sig := &regime.Signal{Regime: regime.RegimeTrend, Direction: regime.TrendUp}

	if agent.ShouldActivate(sig, snap(nil)) {
		t.Error("No gap, no activation")
	}

	s := snap(nil)
	s.FVG = &marketdata.GapInfo{Type: marketdata.GapBullish, Filled: true}
	if agent.ShouldActivate(sig, s) {
		t.Error("Filled gap should not activate")
	}
}

func TestEMAAgentSkipsBenchmark(t *testing.T) {
	agent := NewEMAAgent(DefaultEMAAgentConfig())
	sig := trendSignal(regime.TrendUp, 0.8)

	bench := marketdata.Snapshot{Symbol: "SPY"}
	if agent.ShouldActivate(sig, bench) {
		t.Error("Benchmark symbol must never be traded")
	}

	other := marketdata.Snapshot{Symbol: "AAPL"}
	if !agent.ShouldActivate(sig, other) {
		t.Error("Non-benchmark symbols should activate")
	}
}

func TestStateStoreFitness(t *testing.T) {
	store := NewStateStore()

	if st := store.State("TrendAgent"); st.FitnessScore != 1.0 {
		t.Errorf("Fresh agent fitness should default to 1.0, got %f", st.FitnessScore)
	}

	store.UpdateFitness("TrendAgent", 120.0)  // win
	store.UpdateFitness("TrendAgent", -80.0)  // loss
	fitness := store.UpdateFitness("TrendAgent", 45.0) // win

	if fitness != 2.0/3.0 {
		t.Errorf("Expected fitness 2/3, got %f", fitness)
	}

	st := store.State("TrendAgent")
	if st.TradeCount != 3 || st.WinCount != 2 {
		t.Errorf("Expected 3 trades 2 wins, got %+v", st)
	}

	store.Reset()
	if st := store.State("TrendAgent"); st.TradeCount != 0 || st.FitnessScore != 1.0 {
		t.Errorf("Reset should clear state, got %+v", st)
	}
}
