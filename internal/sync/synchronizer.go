package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/session"
	"gameverse-sync-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mutation errors surfaced to callers. Gateway sentinels for claim conflicts
// pass through unchanged.
var (
	ErrNotConnected        = errors.New("no active session")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrGameNotOwned        = errors.New("game not owned")
	ErrAlreadyOwned        = errors.New("game already owned")
	ErrProgressRegression  = errors.New("progress lower than recorded value")
	ErrUnknownAchievement  = errors.New("unknown achievement")
)

const (
	defaultGatewayTimeout   = 10 * time.Second
	defaultTransactionLimit = 10
)

// Synchronizer maintains the derived view of one user's platform state.
// It loads all collections from the gateway, publishes them as an atomic
// snapshot, and funnels every mutation through write-then-reload so the
// published view always converges on gateway truth.
type Synchronizer struct {
	gateway store.Gateway
	session *session.Session
	cfg     models.SyncConfig

	mu       sync.RWMutex
	snapshot *models.Snapshot
}

func New(gateway store.Gateway, sess *session.Session, cfg models.SyncConfig) *Synchronizer {
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = defaultGatewayTimeout
	}
	if cfg.TransactionLimit <= 0 {
		cfg.TransactionLimit = defaultTransactionLimit
	}
	return &Synchronizer{
		gateway: gateway,
		session: sess,
		cfg:     cfg,
	}
}

// Snapshot returns the last published view, or nil before the first load.
// The returned value is never mutated after publication.
func (s *Synchronizer) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// ClearSnapshot drops the published view, typically on disconnect.
func (s *Synchronizer) ClearSnapshot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
}

// Load reads all collections from the gateway concurrently and publishes
// the result as one snapshot. A failed collection read degrades to an empty
// value for that collection only; the load itself still succeeds so a
// single slow or broken read cannot blank the whole view.
func (s *Synchronizer) Load(ctx context.Context) (*models.Snapshot, error) {
	user := s.session.User()
	if user == nil {
		return nil, ErrNotConnected
	}

	started := time.Now()

	var (
		owned        []models.OwnedGame
		catalog      []models.CatalogGame
		achievements []models.Achievement
		balance      decimal.Decimal
		transactions []models.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		owned = s.loadOwnedGames(gctx, user.Id)
		return nil
	})
	g.Go(func() error {
		catalog = s.loadCatalogGames(gctx)
		return nil
	})
	g.Go(func() error {
		achievements = s.loadAchievements(gctx, user.Id)
		return nil
	})
	g.Go(func() error {
		balance = s.loadBalance(gctx, user.Id)
		return nil
	})
	g.Go(func() error {
		transactions = s.loadTransactions(gctx, user.Id)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &models.Snapshot{
		OwnedGames:   owned,
		CatalogGames: catalog,
		Achievements: achievements,
		Balance:      balance,
		Transactions: transactions,
		LoadedAt:     time.Now(),
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	zap.L().Info("Snapshot published",
		zap.String("user_id", user.Id),
		zap.Int("owned_games", len(owned)),
		zap.Int("catalog_games", len(catalog)),
		zap.Int("achievements", len(achievements)),
		zap.Int("transactions", len(transactions)),
		zap.Duration("elapsed", time.Since(started)))

	return snap, nil
}

func (s *Synchronizer) loadOwnedGames(ctx context.Context, userId string) []models.OwnedGame {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	games, err := s.gateway.GetOwnedGames(ctx, userId)
	if err != nil {
		zap.L().Warn("Owned games load failed, degrading to empty", zap.Error(err))
		return []models.OwnedGame{}
	}
	// Status is derived state; the stored column is only a cache, so every
	// load recomputes it from ownership and progress.
	for i := range games {
		games[i].Status = models.DeriveGameStatus(true, games[i].Progress)
	}
	return games
}

func (s *Synchronizer) loadCatalogGames(ctx context.Context) []models.CatalogGame {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	games, err := s.gateway.GetCatalogGames(ctx)
	if err != nil {
		zap.L().Warn("Catalog games load failed, degrading to empty", zap.Error(err))
		return []models.CatalogGame{}
	}
	return games
}

// loadAchievements merges the full achievement catalog with the user's
// unlock rows. Unlocked derives from row existence; catalog entries with
// no row surface as locked rather than being omitted.
func (s *Synchronizer) loadAchievements(ctx context.Context, userId string) []models.Achievement {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	catalog, err := s.gateway.GetCatalogAchievements(ctx)
	if err != nil {
		zap.L().Warn("Achievement catalog load failed, degrading to empty", zap.Error(err))
		return []models.Achievement{}
	}

	unlocks, err := s.gateway.GetUserAchievements(ctx, userId)
	if err != nil {
		zap.L().Warn("Achievement unlocks load failed, treating all as locked", zap.Error(err))
		unlocks = nil
	}

	byAchievement := make(map[string]models.UserUnlock, len(unlocks))
	for _, u := range unlocks {
		byAchievement[u.AchievementId] = u
	}

	merged := make([]models.Achievement, 0, len(catalog))
	for _, c := range catalog {
		a := models.Achievement{CatalogAchievement: c}
		if u, ok := byAchievement[c.Id]; ok {
			a.Unlocked = true
			a.Claimed = u.Claimed
			a.UnlockedAt = u.UnlockedAt
		}
		merged = append(merged, a)
	}
	return merged
}

// loadBalance reads the token balance, creating a zero record on first
// contact. A record still holding the legacy placeholder seed value is
// reset to zero once; the guard exists only for rows written before
// balances were initialized server-side and must not grow new cases.
func (s *Synchronizer) loadBalance(ctx context.Context, userId string) decimal.Decimal {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	record, err := s.gateway.GetBalance(ctx, userId)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			zap.L().Warn("Balance load failed, degrading to zero", zap.Error(err))
			return decimal.Zero
		}
		record, err = s.gateway.SetBalance(ctx, userId, decimal.Zero, 0)
		if err != nil {
			if errors.Is(err, store.ErrConcurrentModification) {
				// Another loader created the row first; its value wins.
				if existing, readErr := s.gateway.GetBalance(ctx, userId); readErr == nil {
					return existing.Balance
				}
			}
			zap.L().Warn("Balance initialization failed, degrading to zero", zap.Error(err))
			return decimal.Zero
		}
	}

	if s.cfg.PlaceholderBalance != "" {
		placeholder, err := decimal.NewFromString(s.cfg.PlaceholderBalance)
		if err == nil && record.Balance.Equal(placeholder) {
			zap.L().Info("Resetting placeholder balance",
				zap.String("user_id", userId),
				zap.String("placeholder", placeholder.String()))
			if reset, err := s.gateway.SetBalance(ctx, userId, decimal.Zero, record.Version); err == nil {
				return reset.Balance
			}
			return decimal.Zero
		}
	}

	return record.Balance
}

func (s *Synchronizer) loadTransactions(ctx context.Context, userId string) []models.Transaction {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	transactions, err := s.gateway.GetTransactions(ctx, userId, s.cfg.TransactionLimit)
	if err != nil {
		zap.L().Warn("Transactions load failed, degrading to empty", zap.Error(err))
		return []models.Transaction{}
	}
	for i := range transactions {
		if transactions[i].Description == "" {
			transactions[i].Description = fallbackDescription(transactions[i].Kind)
		}
	}
	return transactions
}

// reload refreshes the snapshot after a successful mutation. The write
// already landed, so a failed reload only delays convergence; it is
// logged and swallowed.
func (s *Synchronizer) reload(ctx context.Context) {
	if _, err := s.Load(ctx); err != nil {
		zap.L().Warn("Post-mutation reload failed", zap.Error(err))
	}
}
