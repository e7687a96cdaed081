package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"options-trading-bot/internal/agents"
)

// PostgresConfig holds database connection settings
type PostgresConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// DB wraps the PostgreSQL connection pool
type DB struct {
	Pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg PostgresConfig, logger zerolog.Logger) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log := logger.With().Str("component", "store").Logger()
	log.Info().Str("database", cfg.Database).Msg("connected to PostgreSQL")

	return &DB{Pool: pool, logger: log}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.logger.Info().Msg("database connection closed")
	}
}

// RunMigrations creates the decision-log schema
func (db *DB) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS trade_intents (
			id UUID PRIMARY KEY,
			agent_name VARCHAR(40) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			direction VARCHAR(8) NOT NULL,
			confidence DECIMAL(6, 4) NOT NULL,
			position_size DECIMAL(8, 4) NOT NULL,
			entry_price DECIMAL(20, 8) NOT NULL,
			stop_loss DECIMAL(20, 8),
			take_profit DECIMAL(20, 8),
			reasoning TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trade_intents_symbol ON trade_intents(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_trade_intents_created_at ON trade_intents(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	db.logger.Info().Msg("migrations complete")
	return nil
}

// DecisionRepository persists final trade intents for audit
type DecisionRepository struct {
	db *DB
}

// NewDecisionRepository creates a repository over an open pool
func NewDecisionRepository(db *DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// SaveIntent appends one intent to the decision log
func (r *DecisionRepository) SaveIntent(ctx context.Context, intent *agents.TradeIntent) error {
	query := `
		INSERT INTO trade_intents
			(id, agent_name, symbol, direction, confidence, position_size,
			 entry_price, stop_loss, take_profit, reasoning, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.Pool.Exec(ctx, query,
		intent.ID, intent.AgentName, intent.Symbol, string(intent.Direction),
		intent.Confidence, intent.PositionSize, intent.EntryPrice,
		intent.StopLoss, intent.TakeProfit, intent.Reasoning, intent.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save intent: %w", err)
	}
	return nil
}

// RecentIntents returns the newest intents for a symbol, most recent first
func (r *DecisionRepository) RecentIntents(ctx context.Context, symbol string, limit int) ([]*agents.TradeIntent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, agent_name, symbol, direction, confidence, position_size,
		       entry_price, stop_loss, take_profit, reasoning, created_at
		FROM trade_intents
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query intents: %w", err)
	}
	defer rows.Close()

	var intents []*agents.TradeIntent
	for rows.Next() {
		var intent agents.TradeIntent
		var direction string
		if err := rows.Scan(
			&intent.ID, &intent.AgentName, &intent.Symbol, &direction,
			&intent.Confidence, &intent.PositionSize, &intent.EntryPrice,
			&intent.StopLoss, &intent.TakeProfit, &intent.Reasoning, &intent.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan intent: %w", err)
		}
		intent.Direction = agents.Direction(direction)
		intents = append(intents, &intent)
	}
	return intents, rows.Err()
}
