package regime

import (
	"math"

	"options-trading-bot/internal/marketdata"
)

// RegimeType is the discrete classification of current market character
type RegimeType string

const (
	RegimeTrend         RegimeType = "TREND"
	RegimeMeanReversion RegimeType = "MEAN_REVERSION"
	RegimeExpansion     RegimeType = "EXPANSION"
	RegimeCompression   RegimeType = "COMPRESSION"
)

// TrendDirection is the price direction component of a regime signal
type TrendDirection string

const (
	TrendUp       TrendDirection = "UP"
	TrendDown     TrendDirection = "DOWN"
	TrendSideways TrendDirection = "SIDEWAYS"
)

// VolatilityLevel buckets ATR percent into coarse bands
type VolatilityLevel string

const (
	VolLow    VolatilityLevel = "LOW"
	VolMedium VolatilityLevel = "MEDIUM"
	VolHigh   VolatilityLevel = "HIGH"
)

// Bias is the directional lean across corroborating signals
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNeutral Bias = "NEUTRAL"
)

// Signal is one cycle's regime classification. Created fresh every cycle and
// never mutated afterward.
type Signal struct {
	Regime     RegimeType             `json:"regime"`
	Direction  TrendDirection         `json:"direction"`
	Volatility VolatilityLevel        `json:"volatility"`
	Bias       Bias                   `json:"bias"`
	Confidence float64                `json:"confidence"`
	ActiveFVG  *marketdata.GapInfo    `json:"active_fvg,omitempty"`
	Scores     map[RegimeType]float64 `json:"scores,omitempty"` // normalized evidence, for diagnostics
}

// Config holds classifier thresholds
type Config struct {
	ADXTrendThreshold     float64 `json:"adx_trend_threshold"`  // default 25
	TrendRSquared         float64 `json:"trend_r_squared"`      // default 0.7
	TrendSlope            float64 `json:"trend_slope"`          // default 0.001
	HurstMeanReversion    float64 `json:"hurst_mean_reversion"` // default 0.45
	MeanRevRSquared       float64 `json:"mean_rev_r_squared"`   // default 0.3
	MeanRevSlope          float64 `json:"mean_rev_slope"`       // default 0.0005
	ExpansionATRPercent   float64 `json:"expansion_atr_pct"`    // default 2.0
	CompressionATRPercent float64 `json:"compression_atr_pct"`  // default 0.5
	VWAPBiasBand          float64 `json:"vwap_bias_band"`       // default 1.0
	LowVolATRPercent      float64 `json:"low_vol_atr_pct"`      // default 1.0
	HighVolATRPercent     float64 `json:"high_vol_atr_pct"`     // default 2.5
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		ADXTrendThreshold:     25,
		TrendRSquared:         0.7,
		TrendSlope:            0.001,
		HurstMeanReversion:    0.45,
		MeanRevRSquared:       0.3,
		MeanRevSlope:          0.0005,
		ExpansionATRPercent:   2.0,
		CompressionATRPercent: 0.5,
		VWAPBiasBand:          1.0,
		LowVolATRPercent:      1.0,
		HighVolATRPercent:     2.5,
	}
}

// Classifier maps a feature snapshot to a regime signal. Stateless; safe for
// concurrent use.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a classifier with the given thresholds
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// defaultSignal is returned whenever the snapshot cannot support a
// classification. Zero confidence keeps the orchestrator from acting on it.
func defaultSignal() *Signal {
	return &Signal{
		Regime:     RegimeMeanReversion,
		Direction:  TrendSideways,
		Volatility: VolMedium,
		Bias:       BiasNeutral,
		Confidence: 0,
	}
}

// Classify never fails: missing or zero inputs fall back to the neutral
// default signal.
func (c *Classifier) Classify(snap marketdata.Snapshot) *Signal {
	if len(snap.Values) == 0 || snap.Price() <= 0 {
		return defaultSignal()
	}

	adx := snap.Value(marketdata.FeatureADX)
	rsq := snap.Value(marketdata.FeatureRSquared)
	slope := snap.Value(marketdata.FeatureSlope)
	hurst := snap.Value(marketdata.FeatureHurst)
	atrPct := snap.Value(marketdata.FeatureATRPercent)

	scores := map[RegimeType]float64{}

	// Independent additive evidence, one score per regime type
	if adx > c.cfg.ADXTrendThreshold {
		scores[RegimeTrend] += 0.4
	}
	if rsq > c.cfg.TrendRSquared {
		scores[RegimeTrend] += 0.3
	}
	if math.Abs(slope) > c.cfg.TrendSlope {
		scores[RegimeTrend] += 0.2
	}

	if hurst < c.cfg.HurstMeanReversion {
		scores[RegimeMeanReversion] += 0.5
	}
	if rsq < c.cfg.MeanRevRSquared {
		scores[RegimeMeanReversion] += 0.3
	}
	if math.Abs(slope) < c.cfg.MeanRevSlope {
		scores[RegimeMeanReversion] += 0.2
	}

	if atrPct > c.cfg.ExpansionATRPercent {
		scores[RegimeExpansion] += 0.6
	}
	if atrPct > 2*c.cfg.CompressionATRPercent {
		scores[RegimeExpansion] += 0.3
	}

	if atrPct < c.cfg.CompressionATRPercent {
		scores[RegimeCompression] += 0.6
	}
	if atrPct < c.cfg.CompressionATRPercent/2 {
		scores[RegimeCompression] += 0.3
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total == 0 {
		return defaultSignal()
	}

	// Normalize to a distribution and take the argmax
	for k := range scores {
		scores[k] /= total
	}

	winner := RegimeMeanReversion
	best := -1.0
	for _, rt := range []RegimeType{RegimeTrend, RegimeMeanReversion, RegimeExpansion, RegimeCompression} {
		if scores[rt] > best {
			winner = rt
			best = scores[rt]
		}
	}

	confidence := best
	if best > 0.5 {
		// Reward consensus: a dominant score means the evidence agrees
		confidence = math.Min(1.0, confidence*1.2)
	}

	return &Signal{
		Regime:     winner,
		Direction:  c.trendDirection(snap),
		Volatility: c.volatilityLevel(atrPct),
		Bias:       c.bias(snap),
		Confidence: confidence,
		ActiveFVG:  snap.FVG,
		Scores:     scores,
	}
}

func (c *Classifier) trendDirection(snap marketdata.Snapshot) TrendDirection {
	ema9 := snap.Value(marketdata.FeatureEMA9)
	ema21 := snap.Value(marketdata.FeatureEMA21)
	slope := snap.Value(marketdata.FeatureSlope)

	switch {
	case ema9 > ema21 && slope > 0:
		return TrendUp
	case ema9 < ema21 && slope < 0:
		return TrendDown
	default:
		return TrendSideways
	}
}

func (c *Classifier) volatilityLevel(atrPct float64) VolatilityLevel {
	switch {
	case atrPct < c.cfg.LowVolATRPercent:
		return VolLow
	case atrPct < c.cfg.HighVolATRPercent:
		return VolMedium
	default:
		return VolHigh
	}
}

// bias is a majority vote across trend direction, VWAP deviation and RSI
func (c *Classifier) bias(snap marketdata.Snapshot) Bias {
	bullish, bearish := 0, 0

	switch c.trendDirection(snap) {
	case TrendUp:
		bullish++
	case TrendDown:
		bearish++
	}

	dev := snap.Value(marketdata.FeatureVWAPDeviation)
	if dev > c.cfg.VWAPBiasBand {
		bullish++
	} else if dev < -c.cfg.VWAPBiasBand {
		bearish++
	}

	rsi := snap.Value(marketdata.FeatureRSI)
	if rsi > 50 {
		bullish++
	} else if rsi > 0 && rsi < 50 {
		bearish++
	}

	switch {
	case bullish > bearish:
		return BiasBullish
	case bearish > bullish:
		return BiasBearish
	default:
		return BiasNeutral
	}
}
