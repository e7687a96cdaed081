package analysis

import (
	"options-trading-bot/internal/marketdata"
)

const gapLookbackBars = 60

// GapAnnotator decorates a feature provider, attaching the nearest unfilled
// fair value gap to every snapshot before the agents see it.
type GapAnnotator struct {
	provider marketdata.FeatureProvider
	candles  marketdata.CandleProvider
	detector *GapDetector
}

// NewGapAnnotator wraps a provider with gap detection
func NewGapAnnotator(provider marketdata.FeatureProvider, candles marketdata.CandleProvider, detector *GapDetector) *GapAnnotator {
	return &GapAnnotator{provider: provider, candles: candles, detector: detector}
}

// GetSnapshot forwards to the underlying provider and fills in the FVG field.
// Candle fetch failures degrade to a gapless snapshot rather than an error.
func (a *GapAnnotator) GetSnapshot(symbol string) (marketdata.Snapshot, error) {
	snap, err := a.provider.GetSnapshot(symbol)
	if err != nil {
		return snap, err
	}

	candles, cerr := a.candles.GetCandles(symbol, gapLookbackBars)
	if cerr != nil || len(candles) < 3 {
		return snap, nil
	}

	gaps := a.detector.Detect(symbol, candles)
	for i := range gaps {
		a.detector.MarkFilled(&gaps[i], candles)
	}
	snap.FVG = a.detector.NearestGap(gaps, snap.Price())

	return snap, nil
}
