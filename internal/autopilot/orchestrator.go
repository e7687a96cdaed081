package autopilot

import (
	"fmt"

	"github.com/rs/zerolog"

	"options-trading-bot/internal/agents"
	"options-trading-bot/internal/arbiter"
	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/regime"
)

// Config holds orchestrator settings
type Config struct {
	Universe            []string `json:"universe"`              // tradable symbols
	BenchmarkSymbol     string   `json:"benchmark_symbol"`      // tracked but never traded
	MinRegimeConfidence float64  `json:"min_regime_confidence"` // default 0.30
}

// DefaultConfig returns the standard orchestrator settings
func DefaultConfig() Config {
	return Config{
		Universe:            []string{"AAPL", "MSFT", "NVDA", "TSLA", "AMZN", "META", "QQQ"},
		BenchmarkSymbol:     "SPY",
		MinRegimeConfidence: 0.30,
	}
}

// AgentStatus is one agent's adaptive-state snapshot for reporting
type AgentStatus struct {
	Fitness    float64 `json:"fitness"`
	TradeCount int     `json:"trade_count"`
	WinCount   int     `json:"win_count"`
	WinRate    float64 `json:"win_rate"`
	Weight     float64 `json:"weight"`
}

// Orchestrator is the composition root of the decision pipeline: per symbol
// and cycle it classifies the regime, evaluates every agent, and arbitrates
// the survivors into at most one final intent.
type Orchestrator struct {
	cfg        Config
	classifier *regime.Classifier
	agentList  []agents.Agent
	states     *agents.StateStore
	policy     *arbiter.MetaPolicy
	universe   map[string]bool
	logger     zerolog.Logger
}

// NewOrchestrator wires the pipeline together. The state store and policy are
// injected so callers can snapshot or reset adaptive state.
func NewOrchestrator(cfg Config, classifier *regime.Classifier, agentList []agents.Agent, states *agents.StateStore, policy *arbiter.MetaPolicy, logger zerolog.Logger) *Orchestrator {
	universe := make(map[string]bool, len(cfg.Universe))
	for _, s := range cfg.Universe {
		universe[s] = true
	}
	return &Orchestrator{
		cfg:        cfg,
		classifier: classifier,
		agentList:  agentList,
		states:     states,
		policy:     policy,
		universe:   universe,
		logger:     logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Classify exposes the regime read for a snapshot without running agents
func (o *Orchestrator) Classify(snap marketdata.Snapshot) *regime.Signal {
	return o.classifier.Classify(snap)
}

// AnalyzeSymbol runs one full decision cycle for a symbol and returns the
// final intent, or nil when nothing is actionable. Individual agent failures
// are logged and skipped; they never abort the cycle.
func (o *Orchestrator) AnalyzeSymbol(symbol string, snap marketdata.Snapshot) *agents.TradeIntent {
	if !o.universe[symbol] || symbol == o.cfg.BenchmarkSymbol {
		o.logger.Debug().Str("symbol", symbol).Msg("symbol outside tradable universe")
		return nil
	}

	sig := o.classifier.Classify(snap)
	if sig.Confidence < o.cfg.MinRegimeConfidence {
		o.logger.Debug().
			Str("symbol", symbol).
			Str("regime", string(sig.Regime)).
			Float64("confidence", sig.Confidence).
			Msg("regime confidence below floor")
		return nil
	}

	var intents []*agents.TradeIntent
	for _, agent := range o.agentList {
		intent, err := o.evaluateAgent(agent, symbol, sig, snap)
		if err != nil {
			o.logger.Warn().
				Err(err).
				Str("symbol", symbol).
				Str("agent", agent.Name()).
				Msg("agent evaluation failed")
			continue
		}
		if intent != nil {
			intents = append(intents, intent)
			o.logger.Debug().
				Str("symbol", symbol).
				Str("agent", agent.Name()).
				Str("direction", string(intent.Direction)).
				Float64("confidence", intent.Confidence).
				Msg("agent proposed intent")
		}
	}

	if len(intents) == 0 {
		return nil
	}

	final := o.policy.Arbitrate(intents, sig.Regime, sig.Volatility)
	if final != nil {
		o.logger.Info().
			Str("symbol", symbol).
			Str("agent", final.AgentName).
			Str("direction", string(final.Direction)).
			Float64("confidence", final.Confidence).
			Float64("size", final.PositionSize).
			Str("regime", string(sig.Regime)).
			Msg("final trade intent")
	}
	return final
}

// evaluateAgent isolates one agent's evaluation, converting panics into
// errors so a misbehaving strategy cannot take down the cycle.
func (o *Orchestrator) evaluateAgent(agent agents.Agent, symbol string, sig *regime.Signal, snap marketdata.Snapshot) (intent *agents.TradeIntent, err error) {
	defer func() {
		if r := recover(); r != nil {
			intent = nil
			err = fmt.Errorf("panic in %s: %v", agent.Name(), r)
		}
	}()

	if !agent.ShouldActivate(sig, snap) {
		return nil, nil
	}
	return agent.Evaluate(symbol, sig, snap)
}

// UpdateAgentPerformance records a closed trade's pnl against the agent and
// feeds the resulting fitness into the arbitrator's weight table.
func (o *Orchestrator) UpdateAgentPerformance(agentName string, pnl float64) {
	fitness := o.states.UpdateFitness(agentName, pnl)
	o.policy.UpdateAgentWeight(agentName, fitness)
	o.logger.Info().
		Str("agent", agentName).
		Float64("pnl", pnl).
		Float64("fitness", fitness).
		Msg("agent performance updated")
}

// AgentStatus reports fitness, trade counts and arbitration weight per agent
func (o *Orchestrator) AgentStatus() map[string]AgentStatus {
	out := make(map[string]AgentStatus, len(o.agentList))
	for _, agent := range o.agentList {
		st := o.states.State(agent.Name())
		winRate := 0.0
		if st.TradeCount > 0 {
			winRate = float64(st.WinCount) / float64(st.TradeCount)
		}
		out[agent.Name()] = AgentStatus{
			Fitness:    st.FitnessScore,
			TradeCount: st.TradeCount,
			WinCount:   st.WinCount,
			WinRate:    winRate,
			Weight:     o.policy.AgentWeight(agent.Name()),
		}
	}
	return out
}

// Universe returns the configured tradable symbols
func (o *Orchestrator) Universe() []string {
	return append([]string(nil), o.cfg.Universe...)
}
