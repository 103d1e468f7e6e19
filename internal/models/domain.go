package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameStatus is the derived state of a catalog game for a given user.
type GameStatus string

const (
	GameStatusLocked    GameStatus = "locked"
	GameStatusUnlocked  GameStatus = "unlocked"
	GameStatusPlaying   GameStatus = "playing"
	GameStatusCompleted GameStatus = "completed"
)

// DeriveGameStatus computes the status of a game from ownership and progress.
// It is the single derivation point: no ownership row means locked, progress 0
// means unlocked, 1-99 playing, 100 completed.
func DeriveGameStatus(owned bool, progress int) GameStatus {
	switch {
	case !owned:
		return GameStatusLocked
	case progress <= 0:
		return GameStatusUnlocked
	case progress >= 100:
		return GameStatusCompleted
	default:
		return GameStatusPlaying
	}
}

// Achievement rarities, ordered least to most rare.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Transaction kinds recorded in the audit log.
const (
	TxKindPurchase = "purchase"
	TxKindReward   = "reward"
	TxKindSend     = "send"
	TxKindReceive  = "receive"
	TxKindClaim    = "claim"
)

// User maps a wallet address to an application user record.
// The address is stored lowercased and is unique.
type User struct {
	Id            string    `db:"id"`
	WalletAddress string    `db:"wallet_address"`
	Email         string    `db:"email"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// CatalogGame is read-only reference data for a purchasable game.
type CatalogGame struct {
	Id          string          `db:"id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	ImageURL    string          `db:"image_url"`
	Price       decimal.Decimal `db:"price"`
	Category    string          `db:"category"`
	Developer   string          `db:"developer"`
	CreatedAt   time.Time       `db:"created_at"`
}

// OwnedGame is the joined view of an ownership row and its catalog game.
type OwnedGame struct {
	CatalogGame
	Progress    int        `db:"progress"`
	Status      GameStatus `db:"status"`
	PurchasedAt time.Time  `db:"purchased_at"`
}

// CatalogAchievement is read-only reference data for an achievement.
type CatalogAchievement struct {
	Id           string          `db:"id"`
	Title        string          `db:"title"`
	Description  string          `db:"description"`
	Icon         string          `db:"icon"`
	Rarity       string          `db:"rarity"`
	RewardAmount decimal.Decimal `db:"reward_amount"`
	CreatedAt    time.Time       `db:"created_at"`
}

// UserUnlock is a raw (user, achievement) unlock row.
type UserUnlock struct {
	UserId        string    `db:"user_id"`
	AchievementId string    `db:"achievement_id"`
	Claimed       bool      `db:"claimed"`
	UnlockedAt    time.Time `db:"unlocked_at"`
}

// Achievement is the merged view of a catalog achievement and the user's
// unlock state. Unlocked derives from row existence; Claimed is one-way.
type Achievement struct {
	CatalogAchievement
	Unlocked   bool
	Claimed    bool
	UnlockedAt time.Time
}

// BalanceRecord is the current token balance for one user.
type BalanceRecord struct {
	UserId    string          `db:"user_id"`
	Balance   decimal.Decimal `db:"balance"`
	Version   int64           `db:"version"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Transaction is an append-only record of a balance-affecting event.
// Amount is signed: debits are negative, credits positive.
type Transaction struct {
	Id            string          `db:"id"`
	UserId        string          `db:"user_id"`
	Kind          string          `db:"kind"`
	Amount        decimal.Decimal `db:"amount"`
	Description   string          `db:"description"`
	GameId        string          `db:"game_id"`
	AchievementId string          `db:"achievement_id"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
}

// Snapshot is the atomically published view of all five collections.
// The synchronizer replaces it as a whole; readers never observe a
// partially updated set.
type Snapshot struct {
	OwnedGames   []OwnedGame
	CatalogGames []CatalogGame
	Achievements []Achievement
	Balance      decimal.Decimal
	Transactions []Transaction
	LoadedAt     time.Time
}
