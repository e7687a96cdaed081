package analysis

import (
	"math"
	"time"

	"options-trading-bot/internal/marketdata"
)

// Gap is one detected fair value gap with its fill state
type Gap struct {
	Symbol    string             `json:"symbol"`
	Type      marketdata.GapType `json:"type"`
	Top       float64            `json:"top"`
	Bottom    float64            `json:"bottom"`
	CreatedAt time.Time          `json:"created_at"`
	Filled    bool               `json:"filled"`
	FilledAt  *time.Time         `json:"filled_at,omitempty"`
}

// Midpoint returns the center of the gap zone
func (g Gap) Midpoint() float64 {
	return (g.Top + g.Bottom) / 2
}

// GapDetector finds fair value gaps in candlestick data. A bullish gap is
// the void between candle 1's high and candle 3's low after a strong up
// move; a bearish gap mirrors it on the way down.
type GapDetector struct {
	minGapPercent float64
}

// NewGapDetector creates a detector; gaps smaller than minGapPercent of
// price are ignored
func NewGapDetector(minGapPercent float64) *GapDetector {
	if minGapPercent <= 0 {
		minGapPercent = 0.1
	}
	return &GapDetector{minGapPercent: minGapPercent}
}

// Detect identifies all gaps in the given candles, three bars at a time
func (d *GapDetector) Detect(symbol string, candles []marketdata.Candle) []Gap {
	if len(candles) < 3 {
		return nil
	}

	var gaps []Gap
	for i := 0; i < len(candles)-2; i++ {
		c1 := candles[i]
		c3 := candles[i+2]

		// Bullish: gap between c1 high and c3 low
		if c1.High < c3.Low {
			gapSize := (c3.Low - c1.High) / c1.High * 100
			if gapSize >= d.minGapPercent {
				gaps = append(gaps, Gap{
					Symbol:    symbol,
					Type:      marketdata.GapBullish,
					Top:       c3.Low,
					Bottom:    c1.High,
					CreatedAt: candles[i+1].OpenTime,
				})
			}
		}

		// Bearish: gap between c1 low and c3 high
		if c1.Low > c3.High {
			gapSize := (c1.Low - c3.High) / c3.High * 100
			if gapSize >= d.minGapPercent {
				gaps = append(gaps, Gap{
					Symbol:    symbol,
					Type:      marketdata.GapBearish,
					Top:       c1.Low,
					Bottom:    c3.High,
					CreatedAt: candles[i+1].OpenTime,
				})
			}
		}
	}

	return gaps
}

// MarkFilled flags the gap once price has traded back into the zone
func (d *GapDetector) MarkFilled(gap *Gap, candles []marketdata.Candle) {
	if gap.Filled {
		return
	}

	for _, candle := range candles {
		if candle.OpenTime.Before(gap.CreatedAt) {
			continue
		}
		switch gap.Type {
		case marketdata.GapBullish:
			if candle.Low <= gap.Top && candle.Low >= gap.Bottom {
				gap.Filled = true
				at := candle.OpenTime
				gap.FilledAt = &at
				return
			}
		case marketdata.GapBearish:
			if candle.High >= gap.Bottom && candle.High <= gap.Top {
				gap.Filled = true
				at := candle.OpenTime
				gap.FilledAt = &at
				return
			}
		}
	}
}

// Unfilled returns only gaps price has not yet traded back into
func (d *GapDetector) Unfilled(gaps []Gap) []Gap {
	var out []Gap
	for _, g := range gaps {
		if !g.Filled {
			out = append(out, g)
		}
	}
	return out
}

// NearestGap converts the closest unfilled gap into the snapshot attachment
// the agents consume, or nil when no gap is open
func (d *GapDetector) NearestGap(gaps []Gap, price float64) *marketdata.GapInfo {
	if price <= 0 {
		return nil
	}

	var best *Gap
	bestDist := math.MaxFloat64
	for i := range gaps {
		if gaps[i].Filled {
			continue
		}
		dist := math.Abs(price - gaps[i].Midpoint())
		if dist < bestDist {
			bestDist = dist
			best = &gaps[i]
		}
	}
	if best == nil {
		return nil
	}

	return &marketdata.GapInfo{
		Type:        best.Type,
		Midpoint:    best.Midpoint(),
		DistancePct: bestDist / price * 100,
		Filled:      false,
	}
}
