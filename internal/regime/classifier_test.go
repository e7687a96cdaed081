package regime

import (
	"testing"

	"options-trading-bot/internal/marketdata"
)

func snapshot(values map[string]float64) marketdata.Snapshot {
	return marketdata.Snapshot{Symbol: "AAPL", Values: values}
}

func TestClassifyEmptySnapshotReturnsDefault(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	sig := c.Classify(marketdata.Snapshot{Symbol: "AAPL"})

	if sig.Regime != RegimeMeanReversion {
		t.Errorf("Expected default regime MEAN_REVERSION, got %s", sig.Regime)
	}
	if sig.Direction != TrendSideways {
		t.Errorf("Expected SIDEWAYS direction, got %s", sig.Direction)
	}
	if sig.Volatility != VolMedium {
		t.Errorf("Expected MEDIUM volatility, got %s", sig.Volatility)
	}
	if sig.Bias != BiasNeutral {
		t.Errorf("Expected NEUTRAL bias, got %s", sig.Bias)
	}
	if sig.Confidence != 0 {
		t.Errorf("Default signal should carry zero confidence, got %f", sig.Confidence)
	}
}

func TestClassifyZeroPriceReturnsDefault(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	sig := c.Classify(snapshot(map[string]float64{
		marketdata.FeatureCurrentPrice: 0,
		marketdata.FeatureADX:          40,
	}))

	if sig.Confidence != 0 || sig.Regime != RegimeMeanReversion {
		t.Errorf("Zero price should fall back to default signal, got %+v", sig)
	}
}

func TestClassifyStrongTrend(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	sig := c.Classify(snapshot(map[string]float64{
		marketdata.FeatureCurrentPrice: 100,
		marketdata.FeatureADX:          40,
		marketdata.FeatureRSquared:     0.9,
		marketdata.FeatureSlope:        0.01,
		marketdata.FeatureHurst:        0.6,
		marketdata.FeatureATRPercent:   1.5,
		marketdata.FeatureEMA9:         101,
		marketdata.FeatureEMA21:        100,
	}))

	if sig.Regime != RegimeTrend {
		t.Fatalf("Expected TREND, got %s (scores %v)", sig.Regime, sig.Scores)
	}
	if sig.Confidence <= 0.5 {
		t.Errorf("Strong trend evidence should yield confidence > 0.5, got %f", sig.Confidence)
	}
	if sig.Direction != TrendUp {
		t.Errorf("Expected UP direction, got %s", sig.Direction)
	}
}

func TestClassifyCompression(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	sig := c.Classify(snapshot(map[string]float64{
		marketdata.FeatureCurrentPrice: 100,
		marketdata.FeatureADX:          15,
		marketdata.FeatureRSquared:     0.5,
		marketdata.FeatureSlope:        0.0006,
		marketdata.FeatureHurst:        0.5,
		marketdata.FeatureATRPercent:   0.2,
	}))

	if sig.Regime != RegimeCompression {
		t.Fatalf("Expected COMPRESSION, got %s (scores %v)", sig.Regime, sig.Scores)
	}
	if sig.Volatility != VolLow {
		t.Errorf("ATR%% of 0.2 should be LOW volatility, got %s", sig.Volatility)
	}
}

func TestClassifyMeanReversion(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	sig := c.Classify(snapshot(map[string]float64{
		marketdata.FeatureCurrentPrice: 100,
		marketdata.FeatureADX:          15,
		marketdata.FeatureRSquared:     0.2,
		marketdata.FeatureSlope:        0.0001,
		marketdata.FeatureHurst:        0.35,
		marketdata.FeatureATRPercent:   1.2,
	}))

	if sig.Regime != RegimeMeanReversion {
		t.Fatalf("Expected MEAN_REVERSION, got %s (scores %v)", sig.Regime, sig.Scores)
	}
}

func TestClassifyExpansion(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	sig := c.Classify(snapshot(map[string]float64{
		marketdata.FeatureCurrentPrice: 100,
		marketdata.FeatureADX:          20,
		marketdata.FeatureRSquared:     0.5,
		marketdata.FeatureSlope:        0.0006,
		marketdata.FeatureHurst:        0.5,
		marketdata.FeatureATRPercent:   3.5,
	}))

	if sig.Regime != RegimeExpansion {
		t.Fatalf("Expected EXPANSION, got %s (scores %v)", sig.Regime, sig.Scores)
	}
	if sig.Volatility != VolHigh {
		t.Errorf("ATR%% of 3.5 should be HIGH volatility, got %s", sig.Volatility)
	}
}

func TestBiasMajorityVote(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	// Up trend, strong positive VWAP deviation, RSI above 50: all bullish
	sig := c.Classify(snapshot(map[string]float64{
		marketdata.FeatureCurrentPrice:  100,
		marketdata.FeatureADX:           30,
		marketdata.FeatureRSquared:      0.8,
		marketdata.FeatureSlope:         0.01,
		marketdata.FeatureHurst:         0.6,
		marketdata.FeatureATRPercent:    1.5,
		marketdata.FeatureEMA9:          101,
		marketdata.FeatureEMA21:         100,
		marketdata.FeatureVWAPDeviation: 1.5,
		marketdata.FeatureRSI:           62,
	}))

	if sig.Bias != BiasBullish {
		t.Errorf("Expected BULLISH bias, got %s", sig.Bias)
	}
}
