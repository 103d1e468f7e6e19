package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gameverse-sync-go/internal/models"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	requestTimeout, err := getEnvDuration("WALLET_REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	watchInterval, err := getEnvDuration("WALLET_WATCH_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}

	gatewayTimeout, err := getEnvDuration("SYNC_GATEWAY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	refreshInterval, err := getEnvDuration("SYNC_REFRESH_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "gameverse.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Wallet: models.WalletConfig{
			RPCURL:         getEnvString("WALLET_RPC_URL", ""),
			RequestTimeout: requestTimeout,
			WatchInterval:  watchInterval,
		},
		Sync: models.SyncConfig{
			GatewayTimeout:     gatewayTimeout,
			TransactionLimit:   getEnvInt("SYNC_TRANSACTION_LIMIT", 10),
			RefreshInterval:    refreshInterval,
			PlaceholderBalance: getEnvString("SYNC_PLACEHOLDER_BALANCE", ""),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
