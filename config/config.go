package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	EngineConfig       EngineConfig       `json:"engine"`
	ArbiterConfig      ArbiterConfig      `json:"arbiter"`
	ScannerConfig      ScannerConfig      `json:"scanner"`
	ServerConfig       ServerConfig       `json:"server"`
	NotificationConfig NotificationConfig `json:"notification"`
	LoggingConfig      LoggingConfig      `json:"logging"`
	RedisConfig        RedisConfig        `json:"redis"`
	PostgresConfig     PostgresConfig     `json:"postgres"`
}

// EngineConfig holds the decision-engine settings
type EngineConfig struct {
	Universe            []string `json:"universe"`
	BenchmarkSymbol     string   `json:"benchmark_symbol"`
	MinRegimeConfidence float64  `json:"min_regime_confidence"`
	RiskFreeRate        float64  `json:"risk_free_rate"`
	DividendYield       float64  `json:"dividend_yield"`
	IVLookbackDays      int      `json:"iv_lookback_days"`
	TargetDTE           int      `json:"target_dte"` // preferred days to expiration for options agents
}

// ArbiterConfig holds meta-policy arbitration settings
type ArbiterConfig struct {
	ConfidenceFloor float64 `json:"confidence_floor"`
	BlendThreshold  float64 `json:"blend_threshold"`
	HighVolWeight   float64 `json:"high_vol_weight"`
	LowVolWeight    float64 `json:"low_vol_weight"`
	MaxBlended      int     `json:"max_blended"`
}

// ScannerConfig holds background loop settings
type ScannerConfig struct {
	Enabled          bool `json:"enabled"`
	ScanIntervalSecs int  `json:"scan_interval_secs"`
	WorkerCount      int  `json:"worker_count"`
	MaxIntents       int  `json:"max_intents"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	ProductionMode bool     `json:"production_mode"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// NotificationConfig holds outbound notification settings
type NotificationConfig struct {
	Enabled    bool   `json:"enabled"`
	WebhookURL string `json:"webhook_url"`
}

type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	JSONFormat bool   `json:"json_format"` // console writer when false
}

// RedisConfig holds IV-history persistence settings
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// PostgresConfig holds decision-log persistence settings
type PostgresConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

func Load() (*Config, error) {
	// First try to load base config from file
	cfg, err := loadFromFile("config.json")
	if err != nil {
		// If no config file, start with empty config
		cfg = &Config{}
	}

	// Apply environment variable overrides (these take precedence)
	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	// Engine config
	if universe := os.Getenv("ENGINE_UNIVERSE"); universe != "" {
		cfg.EngineConfig.Universe = splitCSV(universe)
	}
	cfg.EngineConfig.BenchmarkSymbol = getEnvOrDefault("ENGINE_BENCHMARK", cfg.EngineConfig.BenchmarkSymbol)
	cfg.EngineConfig.MinRegimeConfidence = getEnvFloatOrDefault("ENGINE_MIN_REGIME_CONFIDENCE", cfg.EngineConfig.MinRegimeConfidence)
	cfg.EngineConfig.RiskFreeRate = getEnvFloatOrDefault("ENGINE_RISK_FREE_RATE", cfg.EngineConfig.RiskFreeRate)
	cfg.EngineConfig.DividendYield = getEnvFloatOrDefault("ENGINE_DIVIDEND_YIELD", cfg.EngineConfig.DividendYield)
	cfg.EngineConfig.IVLookbackDays = getEnvIntOrDefault("ENGINE_IV_LOOKBACK_DAYS", cfg.EngineConfig.IVLookbackDays)
	cfg.EngineConfig.TargetDTE = getEnvIntOrDefault("ENGINE_TARGET_DTE", cfg.EngineConfig.TargetDTE)

	// Scanner config
	cfg.ScannerConfig.Enabled = getEnvOrDefault("SCANNER_ENABLED", "true") == "true"
	cfg.ScannerConfig.ScanIntervalSecs = getEnvIntOrDefault("SCANNER_INTERVAL_SECS", cfg.ScannerConfig.ScanIntervalSecs)
	cfg.ScannerConfig.WorkerCount = getEnvIntOrDefault("SCANNER_WORKERS", cfg.ScannerConfig.WorkerCount)

	// Notification config
	cfg.NotificationConfig.Enabled = getEnvOrDefault("NOTIFICATIONS_ENABLED", "false") == "true"
	cfg.NotificationConfig.WebhookURL = getEnvOrDefault("NOTIFICATION_WEBHOOK_URL", cfg.NotificationConfig.WebhookURL)

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", cfg.LoggingConfig.Level)
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", "true") == "true"

	// Server config
	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", cfg.ServerConfig.Port)
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", cfg.ServerConfig.Host)
	cfg.ServerConfig.ProductionMode = getEnvOrDefault("SERVER_PRODUCTION", "false") == "true"
	if origins := os.Getenv("SERVER_ALLOWED_ORIGINS"); origins != "" {
		cfg.ServerConfig.AllowedOrigins = splitCSV(origins)
	}

	// Redis config
	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", boolString(cfg.RedisConfig.Enabled)) == "true"
	cfg.RedisConfig.Addr = getEnvOrDefault("REDIS_ADDR", cfg.RedisConfig.Addr)
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)

	// Postgres config
	cfg.PostgresConfig.Enabled = getEnvOrDefault("POSTGRES_ENABLED", boolString(cfg.PostgresConfig.Enabled)) == "true"
	cfg.PostgresConfig.Host = getEnvOrDefault("POSTGRES_HOST", cfg.PostgresConfig.Host)
	cfg.PostgresConfig.Port = getEnvIntOrDefault("POSTGRES_PORT", cfg.PostgresConfig.Port)
	cfg.PostgresConfig.User = getEnvOrDefault("POSTGRES_USER", cfg.PostgresConfig.User)
	cfg.PostgresConfig.Password = getEnvOrDefault("POSTGRES_PASSWORD", cfg.PostgresConfig.Password)
	cfg.PostgresConfig.Database = getEnvOrDefault("POSTGRES_DB", cfg.PostgresConfig.Database)
	cfg.PostgresConfig.SSLMode = getEnvOrDefault("POSTGRES_SSLMODE", cfg.PostgresConfig.SSLMode)
}

// applyDefaults fills anything neither file nor environment set
func applyDefaults(cfg *Config) {
	if len(cfg.EngineConfig.Universe) == 0 {
		cfg.EngineConfig.Universe = []string{"AAPL", "MSFT", "NVDA", "TSLA", "AMZN", "META", "QQQ"}
	}
	if cfg.EngineConfig.BenchmarkSymbol == "" {
		cfg.EngineConfig.BenchmarkSymbol = "SPY"
	}
	if cfg.EngineConfig.MinRegimeConfidence == 0 {
		cfg.EngineConfig.MinRegimeConfidence = 0.30
	}
	if cfg.EngineConfig.RiskFreeRate == 0 {
		cfg.EngineConfig.RiskFreeRate = 0.05
	}
	if cfg.EngineConfig.IVLookbackDays == 0 {
		cfg.EngineConfig.IVLookbackDays = 252
	}
	if cfg.EngineConfig.TargetDTE == 0 {
		cfg.EngineConfig.TargetDTE = 30
	}

	if cfg.ArbiterConfig.ConfidenceFloor == 0 {
		cfg.ArbiterConfig.ConfidenceFloor = 0.60
	}
	if cfg.ArbiterConfig.BlendThreshold == 0 {
		cfg.ArbiterConfig.BlendThreshold = 0.05
	}
	if cfg.ArbiterConfig.HighVolWeight == 0 {
		cfg.ArbiterConfig.HighVolWeight = 0.9
	}
	if cfg.ArbiterConfig.LowVolWeight == 0 {
		cfg.ArbiterConfig.LowVolWeight = 1.1
	}
	if cfg.ArbiterConfig.MaxBlended == 0 {
		cfg.ArbiterConfig.MaxBlended = 3
	}

	if cfg.ScannerConfig.ScanIntervalSecs == 0 {
		cfg.ScannerConfig.ScanIntervalSecs = 300
	}
	if cfg.ScannerConfig.WorkerCount == 0 {
		cfg.ScannerConfig.WorkerCount = 4
	}
	if cfg.ScannerConfig.MaxIntents == 0 {
		cfg.ScannerConfig.MaxIntents = 10
	}

	if cfg.ServerConfig.Host == "" {
		cfg.ServerConfig.Host = "0.0.0.0"
	}
	if cfg.ServerConfig.Port == 0 {
		cfg.ServerConfig.Port = 8080
	}
	if len(cfg.ServerConfig.AllowedOrigins) == 0 {
		cfg.ServerConfig.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	if cfg.LoggingConfig.Level == "" {
		cfg.LoggingConfig.Level = "info"
	}

	if cfg.RedisConfig.Addr == "" {
		cfg.RedisConfig.Addr = "localhost:6379"
	}

	if cfg.PostgresConfig.Host == "" {
		cfg.PostgresConfig.Host = "localhost"
	}
	if cfg.PostgresConfig.Port == 0 {
		cfg.PostgresConfig.Port = 5432
	}
	if cfg.PostgresConfig.SSLMode == "" {
		cfg.PostgresConfig.SSLMode = "disable"
	}
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
