package database

import (
	"context"
	"database/sql"
	"fmt"

	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.Gateway.
var _ store.Gateway = (*Service)(nil)

// Service is the SQLite-backed remote data gateway.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.InitSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Gateway database initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) InitSchema() error {
	schema := `
	-- Users: one row per lowercased wallet address
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		wallet_address TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_wallet_address ON users(wallet_address);

	-- Catalog games (read-only reference data)
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		price TEXT NOT NULL DEFAULT '0',
		category TEXT NOT NULL DEFAULT '',
		developer TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Ownership rows with mutable progress
	CREATE TABLE IF NOT EXISTS user_games (
		user_id TEXT NOT NULL,
		game_id TEXT NOT NULL,
		progress INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'unlocked',
		purchased_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, game_id)
	);

	CREATE INDEX IF NOT EXISTS idx_user_games_user_id ON user_games(user_id);

	-- Catalog achievements (read-only reference data)
	CREATE TABLE IF NOT EXISTS achievements (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		rarity TEXT NOT NULL DEFAULT 'common',
		reward_amount TEXT NOT NULL DEFAULT '0',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Unlock rows; claimed is a one-way false -> true transition
	CREATE TABLE IF NOT EXISTS user_achievements (
		user_id TEXT NOT NULL,
		achievement_id TEXT NOT NULL,
		claimed INTEGER NOT NULL DEFAULT 0,
		unlocked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, achievement_id)
	);

	CREATE INDEX IF NOT EXISTS idx_user_achievements_user_id ON user_achievements(user_id);

	-- Current token balance per user (hot data)
	CREATE TABLE IF NOT EXISTS user_balances (
		user_id TEXT PRIMARY KEY,
		balance TEXT NOT NULL DEFAULT '0',
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Append-only audit log of balance-affecting events (cold data)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		game_id TEXT NOT NULL DEFAULT '',
		achievement_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'completed',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON transactions(user_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}
