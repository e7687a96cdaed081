package marketdata

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// MockFeed provides simulated feature snapshots and options chains for
// development and testing. Data is deterministic per symbol so dry runs and
// tests are repeatable.
type MockFeed struct {
	prices map[string]float64
	now    func() time.Time
	mu     sync.RWMutex
}

// NewMockFeed creates a mock feed with realistic base prices
func NewMockFeed() *MockFeed {
	return &MockFeed{
		prices: map[string]float64{
			"SPY":  585.00,
			"QQQ":  512.00,
			"AAPL": 232.00,
			"MSFT": 425.00,
			"NVDA": 138.00,
			"TSLA": 345.00,
			"AMZN": 205.00,
			"META": 595.00,
			"AMD":  165.00,
			"GOOG": 178.00,
		},
		now: time.Now,
	}
}

// SetPrice overrides the base price for a symbol (testing hook)
func (m *MockFeed) SetPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
}

func (m *MockFeed) price(symbol string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.prices[symbol]; ok {
		return p
	}
	return 100.00
}

// symbolRand returns a rand source seeded from the symbol name so every
// call for the same symbol produces the same series.
func symbolRand(symbol string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// GetSnapshot returns a synthetic but internally consistent indicator snapshot
func (m *MockFeed) GetSnapshot(symbol string) (Snapshot, error) {
	price := m.price(symbol)
	rnd := symbolRand(symbol)

	// Drift the EMAs a little either side of price so trend direction varies
	// by symbol but stays stable run to run.
	drift := (rnd.Float64() - 0.5) * 0.02
	ema9 := price * (1 + drift)
	ema21 := price * (1 + drift*0.5)
	atrPct := 0.6 + rnd.Float64()*2.0
	atr := price * atrPct / 100
	vwap := price * (1 - drift*0.3)
	vwapDev := 0.0
	if atr > 0 {
		vwapDev = (price - vwap) / atr
	}

	snap := Snapshot{
		Symbol:    symbol,
		Timestamp: m.now(),
		Values: map[string]float64{
			FeatureCurrentPrice:  price,
			FeatureEMA9:          ema9,
			FeatureEMA21:         ema21,
			FeatureRSI:           35 + rnd.Float64()*30,
			FeatureADX:           15 + rnd.Float64()*25,
			FeatureATR:           atr,
			FeatureATRPercent:    atrPct,
			FeatureVWAP:          vwap,
			FeatureVWAPDeviation: vwapDev,
			FeatureHurst:         0.35 + rnd.Float64()*0.3,
			FeatureSlope:         drift / 10,
			FeatureRSquared:      rnd.Float64(),
		},
	}

	return snap, nil
}

// GetCandles returns a deterministic synthetic OHLC series ending near the
// base price. Roughly a third of symbols get one impulsive bar that leaves
// an open gap behind it.
func (m *MockFeed) GetCandles(symbol string, limit int) ([]Candle, error) {
	if limit <= 0 {
		limit = 60
	}
	price := m.price(symbol)
	rnd := symbolRand(symbol + ":candles")

	gapAt := -1
	if rnd.Float64() < 0.35 {
		gapAt = limit / 2
	}

	candles := make([]Candle, 0, limit)
	start := m.now().Add(-time.Duration(limit) * time.Hour)
	level := price * (1 - 0.02*rnd.Float64())
	for i := 0; i < limit; i++ {
		move := (rnd.Float64() - 0.5) * price * 0.004
		if i == gapAt {
			// Impulse bar large enough to leave a void between its
			// neighbors' wicks
			move = price * 0.012
			if rnd.Float64() < 0.5 {
				move = -move
			}
		}
		open := level
		close := level + move
		high := math.Max(open, close) + rnd.Float64()*price*0.001
		low := math.Min(open, close) - rnd.Float64()*price*0.001
		candles = append(candles, Candle{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    close,
			Volume:   1_000_000 * (0.5 + rnd.Float64()),
		})
		level = close
	}
	return candles, nil
}

// GetExpirationDates returns the next four synthetic weekly expirations
func (m *MockFeed) GetExpirationDates(symbol string) ([]time.Time, error) {
	base := m.now().Truncate(24 * time.Hour)
	// Next Friday, then weeklies after it
	daysUntilFriday := (int(time.Friday) - int(base.Weekday()) + 7) % 7
	if daysUntilFriday == 0 {
		daysUntilFriday = 7
	}
	first := base.AddDate(0, 0, daysUntilFriday)

	dates := make([]time.Time, 0, 4)
	for i := 0; i < 4; i++ {
		dates = append(dates, first.AddDate(0, 0, 7*i))
	}
	return dates, nil
}

// GetOptionsChain builds a synthetic chain of strikes around spot with
// self-consistent IV, delta, gamma and open interest.
func (m *MockFeed) GetOptionsChain(symbol string, expiration time.Time) ([]OptionContract, error) {
	if expiration.IsZero() {
		dates, err := m.GetExpirationDates(symbol)
		if err != nil {
			return nil, err
		}
		expiration = dates[0]
	}

	spot := m.price(symbol)
	rnd := symbolRand(symbol)
	t := expiration.Sub(m.now()).Hours() / 24 / 365
	if t <= 0 {
		t = 1.0 / 365
	}

	step := strikeStep(spot)
	atm := math.Round(spot/step) * step
	baseIV := 0.18 + rnd.Float64()*0.25

	var chain []OptionContract
	for i := -10; i <= 10; i++ {
		strike := atm + float64(i)*step
		if strike <= 0 {
			continue
		}
		moneyness := math.Log(strike / spot)
		// Mild smile: IV rises away from the money
		iv := baseIV * (1 + 0.8*moneyness*moneyness)

		for _, typ := range []OptionType{CallOption, PutOption} {
			d1 := (math.Log(spot/strike) + (0.05+iv*iv/2)*t) / (iv * math.Sqrt(t))
			delta := stdNormCDF(d1)
			if typ == PutOption {
				delta -= 1
			}
			gamma := stdNormPDF(d1) / (spot * iv * math.Sqrt(t))
			// OI concentrates near the money
			oi := math.Max(0, 5000*math.Exp(-float64(i*i)/18)+rnd.Float64()*500)
			price := math.Max(0.05, spot*0.04*math.Exp(-float64(i*i)/30))
			spread := math.Max(0.01, price*0.02)

			chain = append(chain, OptionContract{
				ContractSymbol: fmt.Sprintf("%s%s%08.0f%s", symbol, expiration.Format("060102"), strike*1000, string(typ[0])),
				Underlying:     symbol,
				Strike:         strike,
				Type:           typ,
				Expiration:     expiration,
				OpenInterest:   math.Round(oi),
				Volume:         math.Round(oi * 0.2),
				Bid:            price - spread/2,
				Ask:            price + spread/2,
				Last:           price,
				ImpliedVol:     iv,
				Delta:          delta,
				Gamma:          gamma,
			})
		}
	}

	sort.Slice(chain, func(i, j int) bool {
		if chain[i].Strike != chain[j].Strike {
			return chain[i].Strike < chain[j].Strike
		}
		return chain[i].Type < chain[j].Type
	})
	return chain, nil
}

// GetATMOption returns the contract of the given type closest to spot
func (m *MockFeed) GetATMOption(symbol string, expiration time.Time, optType OptionType) (*OptionContract, error) {
	chain, err := m.GetOptionsChain(symbol, expiration)
	if err != nil {
		return nil, err
	}
	spot := m.price(symbol)

	var best *OptionContract
	for i := range chain {
		c := &chain[i]
		if c.Type != optType {
			continue
		}
		if best == nil || math.Abs(c.Strike-spot) < math.Abs(best.Strike-spot) {
			best = c
		}
	}
	return best, nil
}

// GetOptionQuote returns a synthetic quote for the contract
func (m *MockFeed) GetOptionQuote(contractSymbol string) (*Quote, error) {
	rnd := symbolRand(contractSymbol)
	last := 0.5 + rnd.Float64()*8
	spread := math.Max(0.01, last*0.02)
	return &Quote{Bid: last - spread/2, Ask: last + spread/2, Last: last}, nil
}

// strikeStep picks a listing increment appropriate for the price level
func strikeStep(spot float64) float64 {
	switch {
	case spot < 25:
		return 0.5
	case spot < 100:
		return 1
	case spot < 250:
		return 2.5
	default:
		return 5
	}
}

// stdNormCDF is the standard normal cumulative distribution function
func stdNormCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// stdNormPDF is the standard normal probability density function
func stdNormPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
