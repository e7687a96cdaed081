package analysis

import (
	"testing"
	"time"
)

func TestIVRankMidRange(t *testing.T) {
	calc := NewIVRankCalculator(DefaultIVLookback)
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	calc.UpdateHistory("AAPL", 0.10, base)
	calc.UpdateHistory("AAPL", 0.50, base.AddDate(0, 0, 1))

	// 0.30 sits exactly halfway between 0.10 and 0.50
	if rank := calc.IVRank("AAPL", 0.30); rank != 50 {
		t.Errorf("Expected IV rank 50, got %f", rank)
	}
	if rank := calc.IVRank("AAPL", 0.50); rank != 100 {
		t.Errorf("Expected IV rank 100 at range high, got %f", rank)
	}
	if rank := calc.IVRank("AAPL", 0.10); rank != 0 {
		t.Errorf("Expected IV rank 0 at range low, got %f", rank)
	}
}

func TestIVRankInsufficientHistory(t *testing.T) {
	calc := NewIVRankCalculator(DefaultIVLookback)

	if rank := calc.IVRank("AAPL", 0.30); rank != 50 {
		t.Errorf("No history should yield neutral 50, got %f", rank)
	}

	calc.UpdateHistory("AAPL", 0.25, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	if rank := calc.IVRank("AAPL", 0.30); rank != 50 {
		t.Errorf("Single observation should yield neutral 50, got %f", rank)
	}
}

func TestIVRankFlatRange(t *testing.T) {
	calc := NewIVRankCalculator(DefaultIVLookback)
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	calc.UpdateHistory("AAPL", 0.20, base)
	calc.UpdateHistory("AAPL", 0.20, base.AddDate(0, 0, 1))

	if rank := calc.IVRank("AAPL", 0.20); rank != 50 {
		t.Errorf("Flat range should yield neutral 50, got %f", rank)
	}
}

func TestIVRankClamped(t *testing.T) {
	calc := NewIVRankCalculator(DefaultIVLookback)
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	calc.UpdateHistory("AAPL", 0.10, base)
	calc.UpdateHistory("AAPL", 0.50, base.AddDate(0, 0, 1))

	if rank := calc.IVRank("AAPL", 0.90); rank != 100 {
		t.Errorf("Rank above range should clamp to 100, got %f", rank)
	}
	if rank := calc.IVRank("AAPL", 0.01); rank != 0 {
		t.Errorf("Rank below range should clamp to 0, got %f", rank)
	}
}

func TestIVPercentile(t *testing.T) {
	calc := NewIVRankCalculator(DefaultIVLookback)
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	for i, iv := range []float64{0.10, 0.20, 0.30, 0.40} {
		calc.UpdateHistory("AAPL", iv, base.AddDate(0, 0, i))
	}

	// 0.35 exceeds three of four observations
	if p := calc.IVPercentile("AAPL", 0.35); p != 75 {
		t.Errorf("Expected percentile 75, got %f", p)
	}
	if p := calc.IVPercentile("MSFT", 0.35); p != 50 {
		t.Errorf("Empty history should yield neutral 50, got %f", p)
	}
}

func TestUpdateHistoryReplacesSameDay(t *testing.T) {
	calc := NewIVRankCalculator(DefaultIVLookback)
	day := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)

	calc.UpdateHistory("AAPL", 0.20, day)
	calc.UpdateHistory("AAPL", 0.25, day.Add(4*time.Hour))

	obs := calc.History("AAPL")
	if len(obs) != 1 {
		t.Fatalf("Same-day update should replace, expected 1 observation, got %d", len(obs))
	}
	if obs[0].IV != 0.25 {
		t.Errorf("Expected latest reading 0.25 to win, got %f", obs[0].IV)
	}
}

func TestUpdateHistoryTrimsWindow(t *testing.T) {
	calc := NewIVRankCalculator(5)
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		calc.UpdateHistory("AAPL", 0.10+float64(i)*0.01, base.AddDate(0, 0, i))
	}

	obs := calc.History("AAPL")
	if len(obs) != 5 {
		t.Fatalf("Expected window trimmed to 5, got %d", len(obs))
	}
	if obs[0].IV != 0.15 {
		t.Errorf("Oldest retained observation should be 0.15, got %f", obs[0].IV)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	calc := NewIVRankCalculator(DefaultIVLookback)
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	calc.UpdateHistory("AAPL", 0.10, base)
	calc.UpdateHistory("AAPL", 0.50, base.AddDate(0, 0, 1))

	restored := NewIVRankCalculator(DefaultIVLookback)
	restored.Restore("AAPL", calc.History("AAPL"))

	if rank := restored.IVRank("AAPL", 0.30); rank != 50 {
		t.Errorf("Restored history should rank identically, got %f", rank)
	}
}
