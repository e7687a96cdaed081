package marketdata

import "time"

// Well-known feature names produced by the indicator pipeline. The engine
// reads features by name so the provider can add new indicators without a
// type change here.
const (
	FeatureEMA9          = "ema_9"
	FeatureEMA21         = "ema_21"
	FeatureRSI           = "rsi"
	FeatureADX           = "adx"
	FeatureATR           = "atr"
	FeatureATRPercent    = "atr_pct"
	FeatureVWAP          = "vwap"
	FeatureVWAPDeviation = "vwap_deviation"
	FeatureHurst         = "hurst"
	FeatureSlope         = "slope"
	FeatureRSquared      = "r_squared"
	FeatureCurrentPrice  = "current_price"
)

// Candle is one OHLC bar, the input to gap detection
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// GapType represents the direction of a fair value gap
type GapType string

const (
	GapBullish GapType = "bullish"
	GapBearish GapType = "bearish"
)

// GapInfo describes the nearest fair value gap attached to a snapshot
type GapInfo struct {
	Type        GapType `json:"type"`
	Midpoint    float64 `json:"midpoint"`
	DistancePct float64 `json:"distance_pct"` // distance from current price to midpoint, percent
	Filled      bool    `json:"filled"`
}

// Snapshot is the per-symbol, per-cycle bundle of indicator values supplied
// by the feature provider. It is built once upstream and read-only here.
type Snapshot struct {
	Symbol    string             `json:"symbol"`
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
	FVG       *GapInfo           `json:"fvg,omitempty"`
}

// Value returns the named indicator, or 0 when the provider did not supply it.
func (s Snapshot) Value(name string) float64 {
	return s.Values[name]
}

// Has reports whether the provider supplied the named indicator.
func (s Snapshot) Has(name string) bool {
	_, ok := s.Values[name]
	return ok
}

// Price is shorthand for the current underlying price.
func (s Snapshot) Price() float64 {
	return s.Value(FeatureCurrentPrice)
}

// OptionType distinguishes calls from puts
type OptionType string

const (
	CallOption OptionType = "call"
	PutOption  OptionType = "put"
)

// OptionContract is one row of an options chain snapshot
type OptionContract struct {
	ContractSymbol string     `json:"contract_symbol"`
	Underlying     string     `json:"underlying"`
	Strike         float64    `json:"strike"`
	Type           OptionType `json:"type"`
	Expiration     time.Time  `json:"expiration"`
	OpenInterest   float64    `json:"open_interest"`
	Volume         float64    `json:"volume"`
	Bid            float64    `json:"bid"`
	Ask            float64    `json:"ask"`
	Last           float64    `json:"last"`
	ImpliedVol     float64    `json:"implied_vol"`
	Delta          float64    `json:"delta"`
	Gamma          float64    `json:"gamma"`
}

// Mid returns the bid/ask midpoint, falling back to the last trade when the
// book is one-sided.
func (c OptionContract) Mid() float64 {
	if c.Bid > 0 && c.Ask > 0 {
		return (c.Bid + c.Ask) / 2
	}
	return c.Last
}

// Quote is a standalone option quote
type Quote struct {
	Bid  float64 `json:"bid"`
	Ask  float64 `json:"ask"`
	Last float64 `json:"last"`
}
