package pricing

import (
	"math"

	"options-trading-bot/internal/marketdata"
)

// Solver parameters for implied volatility. The bounds and tolerance are
// load-bearing: tests and the bisection fallback both assume them.
const (
	ivInitialGuess = 0.20
	ivMaxIter      = 100
	ivTolerance    = 1e-6
	ivLowerBound   = 0.001
	ivUpperBound   = 5.0

	minVolatility = 0.01 // floor applied to non-positive vol inputs

	daysPerYear = 365.0
)

// GreeksResult holds the theoretical price and sensitivities for one
// contract. Vega and Rho are scaled per 1% move in vol/rate, Theta and Charm
// per calendar day. Recomputed on every call, never cached.
type GreeksResult struct {
	Price      float64 `json:"price"`
	Delta      float64 `json:"delta"`
	Gamma      float64 `json:"gamma"`
	Vega       float64 `json:"vega"`
	Theta      float64 `json:"theta"`
	Rho        float64 `json:"rho"`
	Vanna      float64 `json:"vanna"`
	Vomma      float64 `json:"vomma"`
	Charm      float64 `json:"charm"`
	Speed      float64 `json:"speed"`
	D1         float64 `json:"d1"`
	D2         float64 `json:"d2"`
	ImpliedVol float64 `json:"implied_vol"`
}

// Engine prices European options under Black-Scholes-Merton. The engine is
// stateless apart from the configured risk-free rate and safe for concurrent
// use.
type Engine struct {
	riskFreeRate float64
}

// NewEngine creates a pricing engine with the given annualized risk-free rate
func NewEngine(riskFreeRate float64) *Engine {
	return &Engine{riskFreeRate: riskFreeRate}
}

// Calculate prices an option and its Greeks. A non-positive time to expiry
// returns an all-zero result (expired contract); a non-positive volatility is
// clamped to the floor so the math never divides by zero.
func (e *Engine) Calculate(spot, strike, timeToExpiry, volatility float64, optType marketdata.OptionType, dividendYield float64) GreeksResult {
	if timeToExpiry <= 0 {
		return GreeksResult{}
	}
	if volatility <= 0 {
		volatility = minVolatility
	}

	r := e.riskFreeRate
	q := dividendYield
	sqrtT := math.Sqrt(timeToExpiry)

	d1 := (math.Log(spot/strike) + (r-q+volatility*volatility/2)*timeToExpiry) / (volatility * sqrtT)
	d2 := d1 - volatility*sqrtT

	discQ := math.Exp(-q * timeToExpiry)
	discR := math.Exp(-r * timeToExpiry)
	nd1 := normCDF(d1)
	nd2 := normCDF(d2)
	pd1 := normPDF(d1)

	res := GreeksResult{D1: d1, D2: d2, ImpliedVol: volatility}

	if optType == marketdata.CallOption {
		res.Price = spot*discQ*nd1 - strike*discR*nd2
		res.Delta = discQ * nd1
		res.Theta = (-spot*discQ*pd1*volatility/(2*sqrtT) - r*strike*discR*nd2 + q*spot*discQ*nd1) / daysPerYear
		res.Rho = strike * timeToExpiry * discR * nd2 / 100
	} else {
		res.Price = strike*discR*normCDF(-d2) - spot*discQ*normCDF(-d1)
		res.Delta = discQ * (nd1 - 1)
		res.Theta = (-spot*discQ*pd1*volatility/(2*sqrtT) + r*strike*discR*normCDF(-d2) - q*spot*discQ*normCDF(-d1)) / daysPerYear
		res.Rho = -strike * timeToExpiry * discR * normCDF(-d2) / 100
	}

	res.Gamma = discQ * pd1 / (spot * volatility * sqrtT)
	res.Vega = spot * discQ * pd1 * sqrtT / 100

	// Second and third order
	res.Vanna = -discQ * pd1 * d2 / volatility
	res.Vomma = res.Vega * d1 * d2 / volatility
	res.Speed = -res.Gamma / spot * (d1/(volatility*sqrtT) + 1)

	charmCore := discQ * pd1 * (2*(r-q)*timeToExpiry - d2*volatility*sqrtT) / (2 * timeToExpiry * volatility * sqrtT)
	if optType == marketdata.CallOption {
		res.Charm = (q*discQ*nd1 - charmCore) / daysPerYear
	} else {
		res.Charm = (q*discQ*(nd1-1) - charmCore) / daysPerYear
	}

	return res
}

// SolveIV inverts a market price into an implied volatility. Newton-Raphson
// first; if vega collapses or the iteration fails to converge it falls back
// to bisection over the same bounds. The second return is false when no
// volatility could be recovered (expired contract, non-positive price, or a
// price outside the attainable range).
func (e *Engine) SolveIV(marketPrice, spot, strike, timeToExpiry float64, optType marketdata.OptionType, dividendYield float64) (float64, bool) {
	if timeToExpiry <= 0 || marketPrice <= 0 {
		return 0, false
	}

	vol := ivInitialGuess
	for i := 0; i < ivMaxIter; i++ {
		res := e.Calculate(spot, strike, timeToExpiry, vol, optType, dividendYield)
		diff := res.Price - marketPrice
		if math.Abs(diff) < ivTolerance {
			return vol, true
		}
		// Vega here is per 1% vol; the raw derivative is vega*100
		rawVega := res.Vega * 100
		if math.Abs(rawVega) < 1e-10 {
			break
		}
		vol -= diff / rawVega
		if vol < ivLowerBound {
			vol = ivLowerBound
		} else if vol > ivUpperBound {
			vol = ivUpperBound
		}
	}

	return e.bisectIV(marketPrice, spot, strike, timeToExpiry, optType, dividendYield)
}

// bisectIV is the guaranteed-termination fallback solver
func (e *Engine) bisectIV(marketPrice, spot, strike, timeToExpiry float64, optType marketdata.OptionType, dividendYield float64) (float64, bool) {
	low, high := ivLowerBound, ivUpperBound

	priceAt := func(vol float64) float64 {
		return e.Calculate(spot, strike, timeToExpiry, vol, optType, dividendYield).Price
	}

	// Price is monotone in vol; bail out when the target is unattainable
	if marketPrice < priceAt(low) || marketPrice > priceAt(high) {
		return 0, false
	}

	for i := 0; i < ivMaxIter; i++ {
		mid := (low + high) / 2
		diff := priceAt(mid) - marketPrice
		if math.Abs(diff) < ivTolerance || (high-low)/2 < ivTolerance {
			return mid, true
		}
		if diff > 0 {
			high = mid
		} else {
			low = mid
		}
	}

	return (low + high) / 2, true
}

// normCDF is the standard normal cumulative distribution function
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// normPDF is the standard normal probability density function
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
