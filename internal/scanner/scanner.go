package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"options-trading-bot/internal/agents"
	"options-trading-bot/internal/analysis"
	"options-trading-bot/internal/autopilot"
	"options-trading-bot/internal/events"
	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/notification"
)

// Scanner runs the decision engine across the universe on a fixed cadence
type Scanner struct {
	orchestrator *autopilot.Orchestrator
	feed         marketdata.FeatureProvider
	bus          *events.EventBus
	notifier     *notification.Manager
	config       Config
	logger       zerolog.Logger
	stopChan     chan struct{}
	wg           sync.WaitGroup
	mu           sync.RWMutex
	lastResult   *CycleResult

	// optional IV-history tracking
	options marketdata.OptionsDataFeed
	ivCalc  *analysis.IVRankCalculator
}

// WithIVTracking records each symbol's at-the-money IV once per cycle so the
// rank window accumulates over time
func (sc *Scanner) WithIVTracking(options marketdata.OptionsDataFeed, ivCalc *analysis.IVRankCalculator) *Scanner {
	sc.options = options
	sc.ivCalc = ivCalc
	return sc
}

// NewScanner creates a new scanner instance
func NewScanner(
	orchestrator *autopilot.Orchestrator,
	feed marketdata.FeatureProvider,
	bus *events.EventBus,
	notifier *notification.Manager,
	config Config,
	logger zerolog.Logger,
) *Scanner {
	return &Scanner{
		orchestrator: orchestrator,
		feed:         feed,
		bus:          bus,
		notifier:     notifier,
		config:       config,
		logger:       logger.With().Str("component", "scanner").Logger(),
		stopChan:     make(chan struct{}),
	}
}

// Start begins the background analysis loop
func (sc *Scanner) Start() {
	if !sc.config.Enabled {
		sc.logger.Info().Msg("scanner disabled")
		return
	}

	sc.wg.Add(1)
	go sc.runLoop()
	sc.logger.Info().Dur("interval", sc.config.ScanInterval).Msg("scanner started")
}

// Stop halts the loop and waits for the in-flight cycle to finish
func (sc *Scanner) Stop() {
	close(sc.stopChan)
	sc.wg.Wait()
}

func (sc *Scanner) runLoop() {
	defer sc.wg.Done()

	ticker := time.NewTicker(sc.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately
	sc.cycle()

	for {
		select {
		case <-ticker.C:
			sc.cycle()
		case <-sc.stopChan:
			sc.logger.Info().Msg("scanner stopped")
			return
		}
	}
}

// RunCycle executes a single cycle on demand
func (sc *Scanner) RunCycle() *CycleResult {
	return sc.cycle()
}

// LastResult returns the most recent completed cycle, or nil
func (sc *Scanner) LastResult() *CycleResult {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.lastResult
}

func (sc *Scanner) cycle() *CycleResult {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	startTime := time.Now()
	cycleID := fmt.Sprintf("cycle-%d", startTime.Unix())
	universe := sc.orchestrator.Universe()

	sc.logger.Debug().Str("cycle_id", cycleID).Int("symbols", len(universe)).Msg("starting cycle")

	type symbolOutcome struct {
		symbol string
		intent *agents.TradeIntent
		err    error
	}

	symbolChan := make(chan string, len(universe))
	resultChan := make(chan symbolOutcome, len(universe))
	var wg sync.WaitGroup

	workers := sc.config.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range symbolChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				snap, err := sc.feed.GetSnapshot(symbol)
				if err != nil {
					resultChan <- symbolOutcome{symbol: symbol, err: err}
					continue
				}
				sc.recordIV(symbol)
				intent := sc.orchestrator.AnalyzeSymbol(symbol, snap)
				resultChan <- symbolOutcome{symbol: symbol, intent: intent}
			}
		}()
	}

	go func() {
		for _, symbol := range universe {
			symbolChan <- symbol
		}
		close(symbolChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	result := &CycleResult{
		CycleID:   cycleID,
		StartTime: startTime,
	}
	for outcome := range resultChan {
		result.SymbolsScanned++
		if outcome.err != nil {
			result.Errors = append(result.Errors, CycleError{Symbol: outcome.symbol, Error: outcome.err.Error()})
			sc.publishAgentError(outcome.symbol, outcome.err)
			continue
		}
		if outcome.intent != nil {
			result.Intents = append(result.Intents, outcome.intent)
		}
	}

	sort.SliceStable(result.Intents, func(i, j int) bool {
		return result.Intents[i].Confidence > result.Intents[j].Confidence
	})
	if sc.config.MaxIntents > 0 && len(result.Intents) > sc.config.MaxIntents {
		result.Intents = result.Intents[:sc.config.MaxIntents]
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	sc.mu.Lock()
	sc.lastResult = result
	sc.mu.Unlock()

	for _, intent := range result.Intents {
		sc.publishIntent(intent)
	}
	sc.publishCycleCompleted(result)

	sc.logger.Info().
		Str("cycle_id", cycleID).
		Dur("duration", result.Duration).
		Int("symbols", result.SymbolsScanned).
		Int("intents", len(result.Intents)).
		Int("errors", len(result.Errors)).
		Msg("cycle completed")

	return result
}

// recordIV appends the current ATM call IV to the symbol's rank window. The
// calculator keeps one observation per day, so calling every cycle is safe.
func (sc *Scanner) recordIV(symbol string) {
	if sc.options == nil || sc.ivCalc == nil {
		return
	}
	dates, err := sc.options.GetExpirationDates(symbol)
	if err != nil || len(dates) == 0 {
		return
	}
	contract, err := sc.options.GetATMOption(symbol, dates[0], marketdata.CallOption)
	if err != nil || contract == nil || contract.ImpliedVol <= 0 {
		return
	}
	sc.ivCalc.UpdateHistory(symbol, contract.ImpliedVol, time.Time{})
}

func (sc *Scanner) publishIntent(intent *agents.TradeIntent) {
	if sc.bus != nil {
		sc.bus.Publish(events.EventSignalGenerated, map[string]interface{}{
			"intent": intent,
			"symbol": intent.Symbol,
			"agent":  intent.AgentName,
		})
	}
	if sc.notifier != nil {
		if err := sc.notifier.SendIntent(intent); err != nil {
			sc.logger.Warn().Err(err).Str("symbol", intent.Symbol).Msg("notification failed")
		}
	}
}

func (sc *Scanner) publishCycleCompleted(result *CycleResult) {
	if sc.bus == nil {
		return
	}
	sc.bus.Publish(events.EventCycleCompleted, map[string]interface{}{
		"cycle_id": result.CycleID,
		"result":   result,
	})
}

func (sc *Scanner) publishAgentError(symbol string, err error) {
	sc.logger.Warn().Err(err).Str("symbol", symbol).Msg("symbol analysis failed")
	if sc.bus == nil {
		return
	}
	sc.bus.Publish(events.EventAgentError, map[string]interface{}{
		"symbol": symbol,
		"error":  err.Error(),
	})
}
