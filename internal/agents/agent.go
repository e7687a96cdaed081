package agents

import (
	"time"

	"github.com/google/uuid"

	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

// Direction is the side of a proposed trade
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
	DirectionFlat  Direction = "FLAT"
)

// TradeIntent is one agent's proposal for a symbol this cycle. Immutable once
// created; the arbitrator may synthesize a blended one but never edits an
// agent's.
type TradeIntent struct {
	ID           string     `json:"id"`
	AgentName    string     `json:"agent_name"`
	Symbol       string     `json:"symbol"`
	Direction    Direction  `json:"direction"`
	Confidence   float64    `json:"confidence"`    // 0-1
	PositionSize float64    `json:"position_size"` // suggested fraction of capital, 0-1
	EntryPrice   float64    `json:"entry_price"`
	StopLoss     *float64   `json:"stop_loss,omitempty"`
	TakeProfit   *float64   `json:"take_profit,omitempty"`
	Reasoning    string     `json:"reasoning"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Agent is the capability contract every strategy implements. ShouldActivate
// is the cheap regime precondition; Evaluate runs the full logic and must
// re-check activation itself, returning nil when it has no opinion.
type Agent interface {
	Name() string
	ShouldActivate(sig *regime.Signal, snap marketdata.Snapshot) bool
	Evaluate(symbol string, sig *regime.Signal, snap marketdata.Snapshot) (*TradeIntent, error)
}

// newIntent stamps identity and timestamp onto a proposal
func newIntent(agentName, symbol string, dir Direction, confidence, size, entry float64, reasoning string) *TradeIntent {
	if confidence > 1 {
		confidence = 1
	}
	return &TradeIntent{
		ID:           uuid.NewString(),
		AgentName:    agentName,
		Symbol:       symbol,
		Direction:    dir,
		Confidence:   confidence,
		PositionSize: size,
		EntryPrice:   entry,
		Reasoning:    reasoning,
		CreatedAt:    time.Now(),
	}
}

// atrStops derives stop and target from ATR multiples around the entry
func atrStops(intent *TradeIntent, atr, stopMult, targetMult float64) {
	if atr <= 0 {
		return
	}
	var stop, target float64
	if intent.Direction == DirectionLong {
		stop = intent.EntryPrice - stopMult*atr
		target = intent.EntryPrice + targetMult*atr
	} else {
		stop = intent.EntryPrice + stopMult*atr
		target = intent.EntryPrice - targetMult*atr
	}
	intent.StopLoss = &stop
	intent.TakeProfit = &target
}
