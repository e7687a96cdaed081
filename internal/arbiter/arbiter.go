package arbiter

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"options-trading-bot/internal/agents"
	"options-trading-bot/internal/regime"
)

// MetaPolicyName is the agent name stamped on blended intents
const MetaPolicyName = "MetaPolicy"

// Config tunes arbitration
type Config struct {
	ConfidenceFloor float64 `json:"confidence_floor"` // drop weaker intents, default 0.60
	BlendThreshold  float64 `json:"blend_threshold"`  // top-two score gap that triggers blending, default 0.05
	HighVolWeight   float64 `json:"high_vol_weight"`  // default 0.9
	LowVolWeight    float64 `json:"low_vol_weight"`   // default 1.1
	MaxBlended      int     `json:"max_blended"`      // intents averaged in a blend, default 3
}

// DefaultConfig returns the standard arbitration tuning
func DefaultConfig() Config {
	return Config{
		ConfidenceFloor: 0.60,
		BlendThreshold:  0.05,
		HighVolWeight:   0.9,
		LowVolWeight:    1.1,
		MaxBlended:      3,
	}
}

// MetaPolicy resolves the agents' simultaneous proposals for a symbol into at
// most one final intent. Per-agent weights adapt as fitness feedback arrives;
// unknown agents weigh 1.0.
type MetaPolicy struct {
	cfg     Config
	mu      sync.RWMutex
	weights map[string]float64
}

// NewMetaPolicy creates an arbitrator with all agent weights at 1.0
func NewMetaPolicy(cfg Config) *MetaPolicy {
	return &MetaPolicy{cfg: cfg, weights: make(map[string]float64)}
}

// UpdateAgentWeight stores a new weight for the agent, usually its fitness
func (m *MetaPolicy) UpdateAgentWeight(agentName string, weight float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weights[agentName] = weight
}

// AgentWeight returns the agent's current weight, defaulting to 1.0
func (m *MetaPolicy) AgentWeight(agentName string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.weights[agentName]; ok {
		return w
	}
	return 1.0
}

// Weights copies the weight table for reporting
func (m *MetaPolicy) Weights() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]float64, len(m.weights))
	for k, v := range m.weights {
		out[k] = v
	}
	return out
}

type scoredIntent struct {
	intent *agents.TradeIntent
	score  float64
}

// Arbitrate resolves the cycle's intents for one symbol. The regime type is
// carried for context; only the volatility level adjusts scoring.
func (m *MetaPolicy) Arbitrate(intents []*agents.TradeIntent, regimeType regime.RegimeType, vol regime.VolatilityLevel) *agents.TradeIntent {
	// FLAT intents carry no actionable side
	var actionable []*agents.TradeIntent
	for _, it := range intents {
		if it != nil && it.Direction != agents.DirectionFlat {
			actionable = append(actionable, it)
		}
	}
	if len(actionable) == 0 {
		return nil
	}

	// Conflict resolution: when both sides are proposed, the side with the
	// higher summed confidence survives in full and the other is discarded.
	// Summing (rather than counting or taking the max) means several weak
	// intents can outvote one strong one; that asymmetry is intentional.
	longSum, shortSum := 0.0, 0.0
	for _, it := range actionable {
		if it.Direction == agents.DirectionLong {
			longSum += it.Confidence
		} else {
			shortSum += it.Confidence
		}
	}
	if longSum > 0 && shortSum > 0 {
		keep := agents.DirectionLong
		if shortSum > longSum {
			keep = agents.DirectionShort
		}
		var kept []*agents.TradeIntent
		for _, it := range actionable {
			if it.Direction == keep {
				kept = append(kept, it)
			}
		}
		actionable = kept
	}

	// Confidence floor applies after conflict resolution
	var survivors []*agents.TradeIntent
	for _, it := range actionable {
		if it.Confidence >= m.cfg.ConfidenceFloor {
			survivors = append(survivors, it)
		}
	}
	if len(survivors) == 0 {
		return nil
	}

	volWeight := 1.0
	switch vol {
	case regime.VolHigh:
		volWeight = m.cfg.HighVolWeight
	case regime.VolLow:
		volWeight = m.cfg.LowVolWeight
	}

	scored := make([]scoredIntent, 0, len(survivors))
	for _, it := range survivors {
		scored = append(scored, scoredIntent{
			intent: it,
			score:  m.AgentWeight(it.AgentName) * volWeight * it.Confidence,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].intent.AgentName < scored[j].intent.AgentName
	})

	top := scored[0]
	if len(scored) > 1 && top.score-scored[1].score < m.cfg.BlendThreshold*top.score {
		return m.blend(scored)
	}
	return top.intent
}

// blend averages the strongest intents into a synthetic MetaPolicy intent.
// Direction, price and exits come from the top intent; size and confidence
// are the mean of the contributors.
func (m *MetaPolicy) blend(scored []scoredIntent) *agents.TradeIntent {
	n := m.cfg.MaxBlended
	if n <= 0 {
		n = 3
	}
	if len(scored) < n {
		n = len(scored)
	}

	top := scored[0].intent
	sizeSum, confSum := 0.0, 0.0
	names := make([]string, 0, n)
	for _, s := range scored[:n] {
		sizeSum += s.intent.PositionSize
		confSum += s.intent.Confidence
		names = append(names, s.intent.AgentName)
	}

	blended := *top
	blended.ID = uuid.NewString()
	blended.AgentName = MetaPolicyName
	blended.PositionSize = sizeSum / float64(n)
	blended.Confidence = confSum / float64(n)
	blended.Reasoning = fmt.Sprintf("Blend of %s: top intents scored within %.0f%% of each other",
		strings.Join(names, ", "), m.cfg.BlendThreshold*100)
	return &blended
}
