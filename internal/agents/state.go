package agents

import "sync"

// AgentState is the process-lifetime adaptive record for one agent. Fitness
// equals win rate once the agent has traded; before that it stays at the
// optimistic default of 1.0 so new agents are not penalized.
type AgentState struct {
	FitnessScore float64 `json:"fitness_score"`
	TradeCount   int     `json:"trade_count"`
	WinCount     int     `json:"win_count"`
}

// StateStore holds per-agent fitness state keyed by agent name. Injected into
// the orchestrator so callers can snapshot or reset it for testing and for
// parallel evaluation; mutex-guarded throughout.
type StateStore struct {
	mu     sync.RWMutex
	states map[string]*AgentState
}

// NewStateStore creates an empty store
func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string]*AgentState)}
}

// UpdateFitness records a closed trade's pnl for the agent and returns the
// new fitness score. A positive pnl counts as a win.
func (s *StateStore) UpdateFitness(agentName string, pnl float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[agentName]
	if !ok {
		st = &AgentState{FitnessScore: 1.0}
		s.states[agentName] = st
	}

	st.TradeCount++
	if pnl > 0 {
		st.WinCount++
	}
	st.FitnessScore = float64(st.WinCount) / float64(st.TradeCount)
	return st.FitnessScore
}

// State returns the agent's current record, defaulting to fresh state for
// unknown names.
func (s *StateStore) State(agentName string) AgentState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.states[agentName]; ok {
		return *st
	}
	return AgentState{FitnessScore: 1.0}
}

// Snapshot copies the whole store for reporting
func (s *StateStore) Snapshot() map[string]AgentState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]AgentState, len(s.states))
	for name, st := range s.states {
		out[name] = *st
	}
	return out
}

// Reset clears all state
func (s *StateStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[string]*AgentState)
}
