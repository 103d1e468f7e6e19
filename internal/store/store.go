package store

import (
	"context"
	"errors"

	"gameverse-sync-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all gateway implementations.
var (
	// ErrNotFound signals an absent row on a keyed lookup. Expected for
	// lookups that trigger a create-with-default path, not exceptional.
	ErrNotFound = errors.New("record not found")

	ErrAlreadyClaimed         = errors.New("achievement reward already claimed")
	ErrNotUnlocked            = errors.New("achievement not unlocked")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// AppendTransactionParams contains the parameters for recording a
// balance-affecting event in the audit log.
type AppendTransactionParams struct {
	UserId        string
	Kind          string
	Amount        decimal.Decimal
	Description   string
	GameId        string
	AchievementId string
	Status        string
}

// Gateway defines the remote data contract the synchronizer depends on.
// All durable state lives behind this interface.
type Gateway interface {
	// --- Identity ---
	GetUserByAddress(ctx context.Context, address string) (*models.User, error)
	CreateUser(ctx context.Context, address, email string) (*models.User, error)

	// --- Games ---
	GetOwnedGames(ctx context.Context, userId string) ([]models.OwnedGame, error)
	// GetOwnedGame returns the ownership row for one game, joined with its
	// catalog entry, or ErrNotFound when the game is not owned.
	GetOwnedGame(ctx context.Context, userId, gameId string) (*models.OwnedGame, error)
	GetCatalogGames(ctx context.Context) ([]models.CatalogGame, error)
	GetCatalogGame(ctx context.Context, gameId string) (*models.CatalogGame, error)
	UpsertOwnership(ctx context.Context, userId, gameId string, status models.GameStatus) error
	SetGameProgress(ctx context.Context, userId, gameId string, progress int, status models.GameStatus) error

	// --- Achievements ---
	GetUserAchievements(ctx context.Context, userId string) ([]models.UserUnlock, error)
	GetCatalogAchievements(ctx context.Context) ([]models.CatalogAchievement, error)
	GetCatalogAchievement(ctx context.Context, achievementId string) (*models.CatalogAchievement, error)
	GetUnlock(ctx context.Context, userId, achievementId string) (*models.UserUnlock, error)
	UpsertUnlock(ctx context.Context, userId, achievementId string) error
	// SetClaimed flips claimed to true for an unlock row. The implementation
	// must gate on claimed = false so that two near-simultaneous claims
	// cannot both succeed; the loser gets ErrAlreadyClaimed.
	SetClaimed(ctx context.Context, userId, achievementId string) error

	// --- Balance ---
	GetBalance(ctx context.Context, userId string) (*models.BalanceRecord, error)
	// SetBalance writes an absolute balance under optimistic locking.
	// expectedVersion 0 creates the row; a positive value must match the
	// current version or the write fails with ErrConcurrentModification,
	// in which case the caller re-reads and retries.
	SetBalance(ctx context.Context, userId string, amount decimal.Decimal, expectedVersion int64) (*models.BalanceRecord, error)

	// --- Transactions ---
	AppendTransaction(ctx context.Context, params AppendTransactionParams) (*models.Transaction, error)
	GetTransactions(ctx context.Context, userId string, limit int) ([]models.Transaction, error)

	// --- Lifecycle ---
	Close()
}
