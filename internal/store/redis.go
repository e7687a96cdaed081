package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"options-trading-bot/internal/analysis"
)

const ivHistoryKeyPrefix = "iv_history"

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// IVHistoryStore persists per-symbol IV observations across restarts
type IVHistoryStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIVHistoryStore connects to redis and verifies the connection
func NewIVHistoryStore(cfg RedisConfig, logger zerolog.Logger) (*IVHistoryStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &IVHistoryStore{
		client: client,
		ttl:    0, // history never expires; window trimming happens in the calculator
		logger: logger.With().Str("component", "ivstore").Logger(),
	}, nil
}

// Close releases the redis connection
func (s *IVHistoryStore) Close() error {
	return s.client.Close()
}

func ivHistoryKey(symbol string) string {
	return fmt.Sprintf("%s:%s", ivHistoryKeyPrefix, symbol)
}

// SaveHistory writes a symbol's full observation window
func (s *IVHistoryStore) SaveHistory(ctx context.Context, symbol string, obs []analysis.IVObservation) error {
	data, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("failed to marshal iv history: %w", err)
	}
	if err := s.client.Set(ctx, ivHistoryKey(symbol), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save iv history: %w", err)
	}
	return nil
}

// LoadHistory reads a symbol's observation window; a missing key is not an error
func (s *IVHistoryStore) LoadHistory(ctx context.Context, symbol string) ([]analysis.IVObservation, error) {
	data, err := s.client.Get(ctx, ivHistoryKey(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load iv history: %w", err)
	}

	var obs []analysis.IVObservation
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal iv history: %w", err)
	}
	return obs, nil
}

// RestoreCalculator hydrates the calculator from persisted history
func (s *IVHistoryStore) RestoreCalculator(ctx context.Context, calc *analysis.IVRankCalculator, symbols []string) {
	for _, symbol := range symbols {
		obs, err := s.LoadHistory(ctx, symbol)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("iv history load failed")
			continue
		}
		if len(obs) > 0 {
			calc.Restore(symbol, obs)
			s.logger.Debug().Str("symbol", symbol).Int("observations", len(obs)).Msg("iv history restored")
		}
	}
}

// SnapshotCalculator persists the calculator's current windows
func (s *IVHistoryStore) SnapshotCalculator(ctx context.Context, calc *analysis.IVRankCalculator, symbols []string) {
	for _, symbol := range symbols {
		obs := calc.History(symbol)
		if len(obs) == 0 {
			continue
		}
		if err := s.SaveHistory(ctx, symbol, obs); err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("iv history save failed")
		}
	}
}
