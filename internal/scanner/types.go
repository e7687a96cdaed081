package scanner

import (
	"time"

	"options-trading-bot/internal/agents"
)

// Config controls the background analysis loop
type Config struct {
	Enabled      bool          `json:"enabled"`
	ScanInterval time.Duration `json:"scan_interval"`
	WorkerCount  int           `json:"worker_count"`
	MaxIntents   int           `json:"max_intents"`
}

// DefaultConfig returns sane scanner defaults
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		ScanInterval: 5 * time.Minute,
		WorkerCount:  4,
		MaxIntents:   10,
	}
}

// CycleResult captures the outcome of one full pass over the universe
type CycleResult struct {
	CycleID        string                `json:"cycle_id"`
	StartTime      time.Time             `json:"start_time"`
	EndTime        time.Time             `json:"end_time"`
	Duration       time.Duration         `json:"duration"`
	SymbolsScanned int                   `json:"symbols_scanned"`
	Intents        []*agents.TradeIntent `json:"intents"`
	Errors         []CycleError          `json:"errors,omitempty"`
}

// CycleError records a per-symbol failure without aborting the cycle
type CycleError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}
