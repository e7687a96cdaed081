package scanner

import (
	"testing"

	"github.com/rs/zerolog"

	"options-trading-bot/internal/agents"
	"options-trading-bot/internal/arbiter"
	"options-trading-bot/internal/autopilot"
	"options-trading-bot/internal/events"
	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

func testScanner(t *testing.T, universe []string) (*Scanner, *events.EventBus) {
	t.Helper()

	cfg := autopilot.DefaultConfig()
	if universe != nil {
		cfg.Universe = universe
	}

	orch := autopilot.NewOrchestrator(
		cfg,
		regime.NewClassifier(regime.DefaultConfig()),
		[]agents.Agent{agents.NewTrendAgent(agents.DefaultTrendAgentConfig())},
		agents.NewStateStore(),
		arbiter.NewMetaPolicy(arbiter.DefaultConfig()),
		zerolog.Nop(),
	)

	bus := events.NewEventBus()
	sc := NewScanner(orch, marketdata.NewMockFeed(), bus, nil, Config{
		Enabled:      true,
		ScanInterval: 0,
		WorkerCount:  2,
		MaxIntents:   10,
	}, zerolog.Nop())
	return sc, bus
}

func TestRunCycleCoversUniverse(t *testing.T) {
	sc, _ := testScanner(t, []string{"AAPL", "MSFT", "NVDA"})

	result := sc.RunCycle()
	if result == nil {
		t.Fatal("RunCycle should return a result")
	}
	if result.SymbolsScanned != 3 {
		t.Errorf("Expected 3 symbols scanned, got %d", result.SymbolsScanned)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Mock feed should not error, got %+v", result.Errors)
	}
	if result.CycleID == "" || result.Duration < 0 {
		t.Errorf("Cycle metadata incomplete: %+v", result)
	}
}

func TestLastResultUpdated(t *testing.T) {
	sc, _ := testScanner(t, []string{"AAPL"})

	if sc.LastResult() != nil {
		t.Error("No cycle yet, LastResult should be nil")
	}

	result := sc.RunCycle()
	if sc.LastResult() != result {
		t.Error("LastResult should return the latest cycle")
	}
}

func TestCycleCompletedEventPublished(t *testing.T) {
	sc, bus := testScanner(t, []string{"AAPL"})

	var cycles int
	bus.Subscribe(events.EventCycleCompleted, func(events.Event) { cycles++ })

	sc.RunCycle()
	if cycles != 1 {
		t.Errorf("Expected one cycle-completed event, got %d", cycles)
	}
}

func TestIntentsSortedAndCapped(t *testing.T) {
	sc, _ := testScanner(t, []string{"AAPL", "MSFT", "NVDA", "TSLA", "AMZN"})
	sc.config.MaxIntents = 2

	result := sc.RunCycle()
	if len(result.Intents) > 2 {
		t.Errorf("Intents should cap at 2, got %d", len(result.Intents))
	}
	for i := 1; i < len(result.Intents); i++ {
		if result.Intents[i].Confidence > result.Intents[i-1].Confidence {
			t.Error("Intents should sort by confidence descending")
		}
	}
}
