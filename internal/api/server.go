package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"options-trading-bot/internal/analysis"
	"options-trading-bot/internal/autopilot"
	"options-trading-bot/internal/events"
	"options-trading-bot/internal/marketdata"
	"options-trading-bot/internal/pricing"
	"options-trading-bot/internal/scanner"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	ProductionMode bool     `json:"production_mode"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// DefaultServerConfig returns local-development defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
	}
}

// Server exposes the decision engine over HTTP
type Server struct {
	router       *gin.Engine
	httpServer   *http.Server
	config       ServerConfig
	orchestrator *autopilot.Orchestrator
	scan         *scanner.Scanner
	features     marketdata.FeatureProvider
	options      marketdata.OptionsDataFeed
	engine       *pricing.Engine
	ivCalc       *analysis.IVRankCalculator
	eventBus     *events.EventBus
	logger       zerolog.Logger
	startTime    time.Time
}

// NewServer creates a new API server
func NewServer(
	config ServerConfig,
	orchestrator *autopilot.Orchestrator,
	scan *scanner.Scanner,
	features marketdata.FeatureProvider,
	options marketdata.OptionsDataFeed,
	engine *pricing.Engine,
	ivCalc *analysis.IVRankCalculator,
	eventBus *events.EventBus,
	logger zerolog.Logger,
) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	if len(corsConfig.AllowOrigins) > 0 {
		router.Use(cors.New(corsConfig))
	}

	server := &Server{
		router:       router,
		config:       config,
		orchestrator: orchestrator,
		scan:         scan,
		features:     features,
		options:      options,
		engine:       engine,
		ivCalc:       ivCalc,
		eventBus:     eventBus,
		logger:       logger.With().Str("component", "api").Logger(),
		startTime:    time.Now(),
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/agents/status", s.handleAgentStatus)
		v1.POST("/agents/:name/performance", s.handleAgentPerformance)
		v1.POST("/analyze/:symbol", s.handleAnalyze)
		v1.GET("/regime/:symbol", s.handleRegime)
		v1.GET("/iv/:symbol", s.handleIVMetrics)
		v1.GET("/gex/:symbol", s.handleGEX)
		v1.GET("/chain/:symbol", s.handleOptionsChain)
		v1.POST("/pricing/greeks", s.handleGreeks)
		v1.POST("/pricing/iv", s.handleSolveIV)
		v1.GET("/scanner/last", s.handleLastCycle)
		v1.POST("/scanner/run", s.handleRunCycle)
	}
}

// Router returns the underlying gin engine, used by tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start blocks serving HTTP until the server is shut down
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"uptime":    time.Since(s.startTime).String(),
		"timestamp": time.Now().UTC(),
	})
}
