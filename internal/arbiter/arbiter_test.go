package arbiter

import (
	"testing"

	"options-trading-bot/internal/agents"
	"options-trading-bot/internal/regime"
)

func intent(agent string, dir agents.Direction, confidence, size float64) *agents.TradeIntent {
	return &agents.TradeIntent{
		ID:           agent + "-intent",
		AgentName:    agent,
		Symbol:       "AAPL",
		Direction:    dir,
		Confidence:   confidence,
		PositionSize: size,
		EntryPrice:   232,
	}
}

func TestArbitrateEmptyAndFlat(t *testing.T) {
	policy := NewMetaPolicy(DefaultConfig())

	if got := policy.Arbitrate(nil, regime.RegimeTrend, regime.VolMedium); got != nil {
		t.Errorf("No intents should yield nil, got %+v", got)
	}

	flat := []*agents.TradeIntent{intent("trend", agents.DirectionFlat, 0.9, 0.1)}
	if got := policy.Arbitrate(flat, regime.RegimeTrend, regime.VolMedium); got != nil {
		t.Errorf("All-FLAT intents should yield nil, got %+v", got)
	}
}

func TestArbitrateConflictHigherConfidenceWins(t *testing.T) {
	policy := NewMetaPolicy(DefaultConfig())

	intents := []*agents.TradeIntent{
		intent("trend", agents.DirectionLong, 0.90, 0.10),
		intent("meanrev", agents.DirectionShort, 0.95, 0.10),
	}

	got := policy.Arbitrate(intents, regime.RegimeTrend, regime.VolMedium)
	if got == nil {
		t.Fatal("Expected a surviving intent")
	}
	if got.Direction != agents.DirectionShort {
		t.Errorf("SHORT side (0.95 vs 0.90) should survive, got %s", got.Direction)
	}
	if got.AgentName != "meanrev" {
		t.Errorf("Expected meanrev intent to survive, got %s", got.AgentName)
	}
}

func TestArbitrateConflictSummedConfidence(t *testing.T) {
	policy := NewMetaPolicy(DefaultConfig())

	// Two weak longs (sum 1.30) outvote one strong short (0.95)
	intents := []*agents.TradeIntent{
		intent("trend", agents.DirectionLong, 0.65, 0.10),
		intent("ema", agents.DirectionLong, 0.65, 0.10),
		intent("meanrev", agents.DirectionShort, 0.95, 0.10),
	}

	got := policy.Arbitrate(intents, regime.RegimeTrend, regime.VolMedium)
	if got == nil {
		t.Fatal("Expected a surviving intent")
	}
	if got.Direction != agents.DirectionLong {
		t.Errorf("LONG side should win on summed confidence, got %s", got.Direction)
	}
}

func TestArbitrateConfidenceFloor(t *testing.T) {
	policy := NewMetaPolicy(DefaultConfig())

	intents := []*agents.TradeIntent{
		intent("trend", agents.DirectionLong, 0.55, 0.10),
	}

	if got := policy.Arbitrate(intents, regime.RegimeTrend, regime.VolMedium); got != nil {
		t.Errorf("Intent below 0.60 floor should be dropped, got %+v", got)
	}
}

func TestArbitrateBlendsCloseScores(t *testing.T) {
	policy := NewMetaPolicy(DefaultConfig())

	// Same direction, scores within 5% of each other
	intents := []*agents.TradeIntent{
		intent("trend", agents.DirectionLong, 0.80, 0.20),
		intent("ema", agents.DirectionLong, 0.78, 0.10),
	}

	got := policy.Arbitrate(intents, regime.RegimeTrend, regime.VolMedium)
	if got == nil {
		t.Fatal("Expected a blended intent")
	}
	if got.AgentName != MetaPolicyName {
		t.Fatalf("Expected MetaPolicy blend, got %s", got.AgentName)
	}
	if got.Direction != agents.DirectionLong {
		t.Errorf("Blend should keep the top direction, got %s", got.Direction)
	}

	wantSize := (0.20 + 0.10) / 2
	if got.PositionSize != wantSize {
		t.Errorf("Blend position size should be mean %f, got %f", wantSize, got.PositionSize)
	}
	wantConf := (0.80 + 0.78) / 2
	if got.Confidence != wantConf {
		t.Errorf("Blend confidence should be mean %f, got %f", wantConf, got.Confidence)
	}
	if got.ID == intents[0].ID {
		t.Error("Blend should carry a fresh intent ID")
	}
}

func TestArbitrateClearWinnerNotBlended(t *testing.T) {
	policy := NewMetaPolicy(DefaultConfig())

	intents := []*agents.TradeIntent{
		intent("trend", agents.DirectionLong, 0.95, 0.20),
		intent("ema", agents.DirectionLong, 0.65, 0.10),
	}

	got := policy.Arbitrate(intents, regime.RegimeTrend, regime.VolMedium)
	if got == nil {
		t.Fatal("Expected a surviving intent")
	}
	if got.AgentName != "trend" {
		t.Errorf("Clear winner should pass through unblended, got %s", got.AgentName)
	}
}

func TestArbitrateVolatilityWeighting(t *testing.T) {
	policy := NewMetaPolicy(DefaultConfig())
	policy.UpdateAgentWeight("steady", 1.0)
	policy.UpdateAgentWeight("aggressive", 1.0)

	// Identical intents; low vol scales both scores by 1.1 so order holds
	intents := []*agents.TradeIntent{
		intent("steady", agents.DirectionLong, 0.90, 0.10),
	}

	high := policy.Arbitrate(intents, regime.RegimeExpansion, regime.VolHigh)
	low := policy.Arbitrate(intents, regime.RegimeCompression, regime.VolLow)
	if high == nil || low == nil {
		t.Fatal("Single qualifying intent should always survive")
	}
}

func TestArbitrateAgentWeightBreaksTie(t *testing.T) {
	policy := NewMetaPolicy(DefaultConfig())
	policy.UpdateAgentWeight("trusted", 1.5)
	policy.UpdateAgentWeight("doubted", 0.4)

	intents := []*agents.TradeIntent{
		intent("doubted", agents.DirectionLong, 0.90, 0.10),
		intent("trusted", agents.DirectionLong, 0.90, 0.10),
	}

	got := policy.Arbitrate(intents, regime.RegimeTrend, regime.VolMedium)
	if got == nil {
		t.Fatal("Expected a surviving intent")
	}
	// Scores 1.35 vs 0.36 are far apart, no blend
	if got.AgentName != "trusted" {
		t.Errorf("Higher-weighted agent should win, got %s", got.AgentName)
	}
}

func TestAgentWeightDefaults(t *testing.T) {
	policy := NewMetaPolicy(DefaultConfig())

	if w := policy.AgentWeight("unknown"); w != 1.0 {
		t.Errorf("Unknown agent should weigh 1.0, got %f", w)
	}

	policy.UpdateAgentWeight("trend", 0.75)
	if w := policy.AgentWeight("trend"); w != 0.75 {
		t.Errorf("Expected stored weight 0.75, got %f", w)
	}
	if len(policy.Weights()) != 1 {
		t.Errorf("Expected one stored weight, got %d", len(policy.Weights()))
	}
}
