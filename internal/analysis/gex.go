package analysis

import (
	"options-trading-bot/internal/marketdata"
)

// GEXResult is the aggregate dealer gamma exposure estimate for one chain
// snapshot. Calls contribute positively, puts negatively, by the usual
// dealer-positioning convention.
type GEXResult struct {
	TotalGEX  float64             `json:"total_gex"`
	CallGEX   float64             `json:"call_gex"`
	PutGEX    float64             `json:"put_gex"`
	NetGEX    float64             `json:"net_gex"`
	GEXLevels map[float64]float64 `json:"gex_levels"` // strike -> net gex
	MaxPain   float64             `json:"max_pain"`
}

// GEXInterpretation buckets total GEX into ordered bands
type GEXInterpretation string

const (
	GEXExtremelyPositive GEXInterpretation = "EXTREMELY_POSITIVE"
	GEXPositive          GEXInterpretation = "POSITIVE"
	GEXNeutral           GEXInterpretation = "NEUTRAL"
	GEXNegative          GEXInterpretation = "NEGATIVE"
	GEXExtremelyNegative GEXInterpretation = "EXTREMELY_NEGATIVE"
)

const (
	gexExtremeBand = 1e9
	gexStrongBand  = 1e8
)

// CalculateGEXProxy reduces an options chain snapshot into an aggregate GEX
// estimate plus the max-pain strike. An empty chain yields an all-zero result
// with max pain pinned at spot.
func CalculateGEXProxy(chain []marketdata.OptionContract, spotPrice float64) GEXResult {
	res := GEXResult{
		GEXLevels: make(map[float64]float64),
		MaxPain:   spotPrice,
	}

	strikeOI := make(map[float64]float64)
	var strikeOrder []float64

	for _, c := range chain {
		if c.Strike == 0 || c.OpenInterest == 0 {
			continue
		}

		contribution := c.OpenInterest * c.Gamma * spotPrice * 100

		if c.Type == marketdata.CallOption {
			res.CallGEX += contribution
			res.TotalGEX += contribution
			res.GEXLevels[c.Strike] += contribution
		} else {
			res.PutGEX -= contribution
			res.TotalGEX -= contribution
			res.GEXLevels[c.Strike] -= contribution
		}

		if _, seen := strikeOI[c.Strike]; !seen {
			strikeOrder = append(strikeOrder, c.Strike)
		}
		strikeOI[c.Strike] += c.OpenInterest
	}

	res.NetGEX = res.CallGEX + res.PutGEX

	// Max pain: the strike carrying the most open interest. Walk strikes in
	// encounter order so ties resolve to the first one seen.
	bestOI := 0.0
	for _, strike := range strikeOrder {
		if strikeOI[strike] > bestOI {
			bestOI = strikeOI[strike]
			res.MaxPain = strike
		}
	}

	return res
}

// InterpretGEX buckets a total GEX reading into one of five bands
func InterpretGEX(totalGEX float64) GEXInterpretation {
	switch {
	case totalGEX > gexExtremeBand:
		return GEXExtremelyPositive
	case totalGEX > gexStrongBand:
		return GEXPositive
	case totalGEX < -gexExtremeBand:
		return GEXExtremelyNegative
	case totalGEX < -gexStrongBand:
		return GEXNegative
	default:
		return GEXNeutral
	}
}
