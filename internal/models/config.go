package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Wallet   WalletConfig
	Sync     SyncConfig
}

// DatabaseConfig holds gateway database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// WalletConfig holds wallet provider settings
type WalletConfig struct {
	RPCURL         string
	RequestTimeout time.Duration
	WatchInterval  time.Duration
}

// SyncConfig holds synchronizer settings
type SyncConfig struct {
	GatewayTimeout   time.Duration
	TransactionLimit int
	RefreshInterval  time.Duration
	// PlaceholderBalance is a legacy seed value treated as uninitialized:
	// a freshly read balance equal to it is reset to zero before being
	// published. Empty disables the guard.
	PlaceholderBalance string
}
