package analysis

import (
	"testing"

	"options-trading-bot/internal/marketdata"
)

func TestGEXCallPutSymmetry(t *testing.T) {
	chain := []marketdata.OptionContract{
		{Type: marketdata.CallOption, Strike: 100, OpenInterest: 1000, Gamma: 0.01},
		{Type: marketdata.PutOption, Strike: 100, OpenInterest: 1000, Gamma: 0.01},
	}

	res := CalculateGEXProxy(chain, 100)

	// OI * gamma * spot * 100 = 1000 * 0.01 * 100 * 100 = 100000
	if res.CallGEX != 100000 {
		t.Errorf("Expected call GEX 100000, got %f", res.CallGEX)
	}
	if res.PutGEX != -100000 {
		t.Errorf("Expected put GEX -100000, got %f", res.PutGEX)
	}
	if res.CallGEX != -res.PutGEX {
		t.Errorf("Call and put GEX should mirror: %f vs %f", res.CallGEX, res.PutGEX)
	}
	if res.TotalGEX != 0 {
		t.Errorf("Balanced chain should net to zero total GEX, got %f", res.TotalGEX)
	}
	if res.NetGEX != 0 {
		t.Errorf("Net GEX should be zero, got %f", res.NetGEX)
	}
}

func TestGEXEmptyChain(t *testing.T) {
	res := CalculateGEXProxy(nil, 585)

	if res.TotalGEX != 0 || res.CallGEX != 0 || res.PutGEX != 0 {
		t.Errorf("Empty chain should produce zero GEX, got %+v", res)
	}
	if res.MaxPain != 585 {
		t.Errorf("Empty chain max pain should pin to spot, got %f", res.MaxPain)
	}
}

func TestGEXSkipsZeroOIAndStrike(t *testing.T) {
	chain := []marketdata.OptionContract{
		{Type: marketdata.CallOption, Strike: 0, OpenInterest: 1000, Gamma: 0.01},
		{Type: marketdata.CallOption, Strike: 100, OpenInterest: 0, Gamma: 0.01},
		{Type: marketdata.CallOption, Strike: 105, OpenInterest: 500, Gamma: 0.02},
	}

	res := CalculateGEXProxy(chain, 100)

	// Only the 105 strike counts: 500 * 0.02 * 100 * 100 = 100000
	if res.TotalGEX != 100000 {
		t.Errorf("Expected total GEX 100000 from single valid contract, got %f", res.TotalGEX)
	}
	if res.MaxPain != 105 {
		t.Errorf("Expected max pain at 105, got %f", res.MaxPain)
	}
}

func TestGEXMaxPainHighestOI(t *testing.T) {
	chain := []marketdata.OptionContract{
		{Type: marketdata.CallOption, Strike: 95, OpenInterest: 200, Gamma: 0.01},
		{Type: marketdata.CallOption, Strike: 100, OpenInterest: 5000, Gamma: 0.01},
		{Type: marketdata.PutOption, Strike: 100, OpenInterest: 4000, Gamma: 0.01},
		{Type: marketdata.PutOption, Strike: 105, OpenInterest: 300, Gamma: 0.01},
	}

	res := CalculateGEXProxy(chain, 101)

	if res.MaxPain != 100 {
		t.Errorf("Expected max pain at 100 (9000 OI), got %f", res.MaxPain)
	}
}

func TestInterpretGEXBands(t *testing.T) {
	cases := []struct {
		gex  float64
		want GEXInterpretation
	}{
		{2e9, GEXExtremelyPositive},
		{5e8, GEXPositive},
		{0, GEXNeutral},
		{-5e8, GEXNegative},
		{-2e9, GEXExtremelyNegative},
	}

	for _, tc := range cases {
		if got := InterpretGEX(tc.gex); got != tc.want {
			t.Errorf("InterpretGEX(%g) = %s, want %s", tc.gex, got, tc.want)
		}
	}
}
