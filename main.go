package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"options-trading-bot/config"
	"options-trading-bot/internal/agents"
	"options-trading-bot/internal/analysis"
	"options-trading-bot/internal/api"
	"options-trading-bot/internal/arbiter"
	"options-trading-bot/internal/autopilot"
	"options-trading-bot/internal/events"
	"options-trading-bot/internal/logging"
	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/notification"
	"options-trading-bot/internal/pricing"
	"options-trading-bot/internal/regime"
	"options-trading-bot/internal/scanner"
	"options-trading-bot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(logging.Config{
		Level:      cfg.LoggingConfig.Level,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	})
	logger.Info().Msg("starting options trading engine")

	eventBus := events.NewEventBus()

	notifier := notification.NewManager()
	if cfg.NotificationConfig.Enabled {
		notifier.AddNotifier(notification.NewWebhookNotifier(notification.WebhookConfig{
			URL:     cfg.NotificationConfig.WebhookURL,
			Enabled: true,
		}))
	}

	// Mock feed serves both indicator snapshots and options chains until a
	// live market-data integration is configured. Snapshots pass through the
	// gap annotator so agents see open fair value gaps.
	feed := marketdata.NewMockFeed()
	provider := analysis.NewGapAnnotator(feed, feed, analysis.NewGapDetector(0.1))

	engine := pricing.NewEngine(cfg.EngineConfig.RiskFreeRate)
	ivCalc := analysis.NewIVRankCalculator(cfg.EngineConfig.IVLookbackDays)

	// Optional persistence. The engine runs fully in-memory without either.
	var ivStore *store.IVHistoryStore
	if cfg.RedisConfig.Enabled {
		ivStore, err = store.NewIVHistoryStore(store.RedisConfig{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, iv history will not persist")
		} else {
			defer ivStore.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			ivStore.RestoreCalculator(ctx, ivCalc, cfg.EngineConfig.Universe)
			cancel()
		}
	}

	var decisionRepo *store.DecisionRepository
	if cfg.PostgresConfig.Enabled {
		db, dberr := store.NewDB(store.PostgresConfig{
			Host:     cfg.PostgresConfig.Host,
			Port:     cfg.PostgresConfig.Port,
			User:     cfg.PostgresConfig.User,
			Password: cfg.PostgresConfig.Password,
			Database: cfg.PostgresConfig.Database,
			SSLMode:  cfg.PostgresConfig.SSLMode,
		}, logger)
		if dberr != nil {
			logger.Warn().Err(dberr).Msg("postgres unavailable, decision log disabled")
		} else {
			defer db.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if merr := db.RunMigrations(ctx); merr != nil {
				logger.Error().Err(merr).Msg("migrations failed")
			} else {
				decisionRepo = store.NewDecisionRepository(db)
			}
			cancel()
		}
	}

	if decisionRepo != nil {
		eventBus.Subscribe(events.EventSignalGenerated, func(evt events.Event) {
			intent, ok := evt.Data["intent"].(*agents.TradeIntent)
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := decisionRepo.SaveIntent(ctx, intent); serr != nil {
				logger.Warn().Err(serr).Str("symbol", intent.Symbol).Msg("decision log write failed")
			}
		})
	}

	orchestrator := buildOrchestrator(cfg, feed, engine, ivCalc, logger)

	scan := scanner.NewScanner(orchestrator, provider, eventBus, notifier, scanner.Config{
		Enabled:      cfg.ScannerConfig.Enabled,
		ScanInterval: time.Duration(cfg.ScannerConfig.ScanIntervalSecs) * time.Second,
		WorkerCount:  cfg.ScannerConfig.WorkerCount,
		MaxIntents:   cfg.ScannerConfig.MaxIntents,
	}, logger).WithIVTracking(feed, ivCalc)

	server := api.NewServer(api.ServerConfig{
		Host:           cfg.ServerConfig.Host,
		Port:           cfg.ServerConfig.Port,
		ProductionMode: cfg.ServerConfig.ProductionMode,
		AllowedOrigins: cfg.ServerConfig.AllowedOrigins,
	}, orchestrator, scan, provider, feed, engine, ivCalc, eventBus, logger)

	eventBus.Publish(events.EventEngineStarted, map[string]interface{}{
		"universe": cfg.EngineConfig.Universe,
	})

	scan.Start()

	go func() {
		if serr := server.Start(); serr != nil {
			logger.Fatal().Err(serr).Msg("api server failed")
		}
	}()

	// Block until interrupted
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	scan.Stop()

	if ivStore != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ivStore.SnapshotCalculator(ctx, ivCalc, cfg.EngineConfig.Universe)
		cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if serr := server.Shutdown(shutdownCtx); serr != nil {
		logger.Error().Err(serr).Msg("server shutdown error")
	}

	eventBus.Publish(events.EventEngineStopped, nil)
	logger.Info().Msg("engine stopped")
}

// buildOrchestrator assembles the full agent roster over shared collaborators
func buildOrchestrator(
	cfg *config.Config,
	feed *marketdata.MockFeed,
	engine *pricing.Engine,
	ivCalc *analysis.IVRankCalculator,
	logger zerolog.Logger,
) *autopilot.Orchestrator {
	emaCfg := agents.DefaultEMAAgentConfig()
	emaCfg.BenchmarkSymbol = cfg.EngineConfig.BenchmarkSymbol

	optCfg := agents.DefaultOptionsAgentConfig()
	optCfg.TargetDTE = cfg.EngineConfig.TargetDTE
	optCfg.DividendYield = cfg.EngineConfig.DividendYield
	thetaCfg := agents.DefaultThetaHarvesterConfig()
	thetaCfg.TargetDTE = cfg.EngineConfig.TargetDTE
	gammaCfg := agents.DefaultGammaScalperConfig()
	gammaCfg.TargetDTE = cfg.EngineConfig.TargetDTE

	roster := []agents.Agent{
		agents.NewTrendAgent(agents.DefaultTrendAgentConfig()),
		agents.NewMeanReversionAgent(agents.DefaultMeanReversionAgentConfig()),
		agents.NewFVGAgent(agents.DefaultFVGAgentConfig()),
		agents.NewVolatilityAgent(agents.DefaultVolatilityAgentConfig()),
		agents.NewEMAAgent(emaCfg),
		agents.NewOptionsAgent(optCfg, feed, engine, ivCalc),
		agents.NewThetaHarvesterAgent(thetaCfg, feed, ivCalc),
		agents.NewGammaScalperAgent(gammaCfg, feed, ivCalc),
	}

	classifier := regime.NewClassifier(regime.DefaultConfig())
	states := agents.NewStateStore()
	policy := arbiter.NewMetaPolicy(arbiter.Config{
		ConfidenceFloor: cfg.ArbiterConfig.ConfidenceFloor,
		BlendThreshold:  cfg.ArbiterConfig.BlendThreshold,
		HighVolWeight:   cfg.ArbiterConfig.HighVolWeight,
		LowVolWeight:    cfg.ArbiterConfig.LowVolWeight,
		MaxBlended:      cfg.ArbiterConfig.MaxBlended,
	})

	return autopilot.NewOrchestrator(autopilot.Config{
		Universe:            cfg.EngineConfig.Universe,
		BenchmarkSymbol:     cfg.EngineConfig.BenchmarkSymbol,
		MinRegimeConfidence: cfg.EngineConfig.MinRegimeConfidence,
	}, classifier, roster, states, policy, logger)
}
