package analysis

import (
	"math"
	"sync"
	"time"
)

// DefaultIVLookback is the rolling window applied when no lookback is configured
const DefaultIVLookback = 252

// IVObservation is one implied volatility reading
type IVObservation struct {
	IV   float64   `json:"iv"`
	Date time.Time `json:"date"`
}

// IVMetrics bundles where the current IV sits relative to its own history
type IVMetrics struct {
	IVRank       float64 `json:"iv_rank"`       // 0-100, position within min/max range
	IVPercentile float64 `json:"iv_percentile"` // 0-100, share of history strictly below
	IVMin        float64 `json:"iv_min"`
	IVMax        float64 `json:"iv_max"`
	IVMean       float64 `json:"iv_mean"`
	IVStd        float64 `json:"iv_std"`
	DataPoints   int     `json:"data_points"`
}

// IVRankCalculator maintains a bounded per-symbol IV history and scores new
// readings against it. Safe for concurrent use across symbols.
type IVRankCalculator struct {
	lookbackDays int
	history      map[string][]IVObservation
	mu           sync.RWMutex
}

// NewIVRankCalculator creates a calculator with the given rolling window
func NewIVRankCalculator(lookbackDays int) *IVRankCalculator {
	if lookbackDays <= 0 {
		lookbackDays = DefaultIVLookback
	}
	return &IVRankCalculator{
		lookbackDays: lookbackDays,
		history:      make(map[string][]IVObservation),
	}
}

// UpdateHistory appends an IV reading, dropping the oldest beyond the window.
// A zero date defaults to now.
func (c *IVRankCalculator) UpdateHistory(symbol string, iv float64, date time.Time) {
	if date.IsZero() {
		date = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	obs := c.history[symbol]
	// One observation per calendar day; a repeat reading replaces it
	if n := len(obs); n > 0 {
		y1, m1, d1 := obs[n-1].Date.Date()
		y2, m2, d2 := date.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			obs[n-1] = IVObservation{IV: iv, Date: date}
			c.history[symbol] = obs
			return
		}
	}

	obs = append(obs, IVObservation{IV: iv, Date: date})
	if len(obs) > c.lookbackDays {
		obs = obs[len(obs)-c.lookbackDays:]
	}
	c.history[symbol] = obs
}

// History returns a copy of the stored observations for a symbol
func (c *IVRankCalculator) History(symbol string) []IVObservation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]IVObservation, len(c.history[symbol]))
	copy(out, c.history[symbol])
	return out
}

// Restore replaces a symbol's history, trimming to the window. Used by
// persistence adapters to reload state on startup.
func (c *IVRankCalculator) Restore(symbol string, obs []IVObservation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(obs) > c.lookbackDays {
		obs = obs[len(obs)-c.lookbackDays:]
	}
	c.history[symbol] = append([]IVObservation(nil), obs...)
}

// IVRank places the current IV within the historical min/max range, 0-100.
// With fewer than two observations, or a flat range, there is nothing to rank
// against and the neutral 50 comes back.
func (c *IVRankCalculator) IVRank(symbol string, currentIV float64) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	obs := c.history[symbol]
	if len(obs) < 2 {
		return 50
	}

	min, max := obs[0].IV, obs[0].IV
	for _, o := range obs[1:] {
		if o.IV < min {
			min = o.IV
		}
		if o.IV > max {
			max = o.IV
		}
	}
	if max == min {
		return 50
	}

	rank := (currentIV - min) / (max - min) * 100
	return clamp(rank, 0, 100)
}

// IVPercentile is the percentage of historical observations strictly below
// the current IV. No history yields the neutral 50.
func (c *IVRankCalculator) IVPercentile(symbol string, currentIV float64) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	obs := c.history[symbol]
	if len(obs) == 0 {
		return 50
	}

	below := 0
	for _, o := range obs {
		if o.IV < currentIV {
			below++
		}
	}
	return float64(below) / float64(len(obs)) * 100
}

// Metrics bundles rank, percentile and summary statistics for a symbol
func (c *IVRankCalculator) Metrics(symbol string, currentIV float64) IVMetrics {
	rank := c.IVRank(symbol, currentIV)
	pct := c.IVPercentile(symbol, currentIV)

	c.mu.RLock()
	defer c.mu.RUnlock()

	obs := c.history[symbol]
	m := IVMetrics{IVRank: rank, IVPercentile: pct, DataPoints: len(obs)}
	if len(obs) == 0 {
		return m
	}

	m.IVMin, m.IVMax = obs[0].IV, obs[0].IV
	sum := 0.0
	for _, o := range obs {
		if o.IV < m.IVMin {
			m.IVMin = o.IV
		}
		if o.IV > m.IVMax {
			m.IVMax = o.IV
		}
		sum += o.IV
	}
	m.IVMean = sum / float64(len(obs))

	variance := 0.0
	for _, o := range obs {
		d := o.IV - m.IVMean
		variance += d * d
	}
	m.IVStd = math.Sqrt(variance / float64(len(obs)))

	return m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
