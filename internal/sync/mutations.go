package sync

import (
	"context"
	"errors"
	"fmt"

	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// patchSnapshot publishes a shallow copy of the current snapshot with fn
// applied. This is the optimistic half of every mutation: readers see the
// expected result immediately, and the authoritative reload that follows
// replaces it with gateway truth.
func (s *Synchronizer) patchSnapshot(fn func(*models.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return
	}
	patched := *s.snapshot
	fn(&patched)
	s.snapshot = &patched
}

// PurchaseGame debits the catalog price from the token balance, records
// ownership, and appends a purchase transaction.
func (s *Synchronizer) PurchaseGame(ctx context.Context, gameId string) error {
	user := s.session.User()
	if user == nil {
		return ErrNotConnected
	}

	game, err := s.gateway.GetCatalogGame(ctx, gameId)
	if err != nil {
		return fmt.Errorf("catalog lookup failed: %w", err)
	}

	if _, err := s.gateway.GetOwnedGame(ctx, user.Id, gameId); err == nil {
		return ErrAlreadyOwned
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("ownership lookup failed: %w", err)
	}

	newBalance, err := s.adjustBalance(ctx, user.Id, func(balance decimal.Decimal) (decimal.Decimal, error) {
		if balance.LessThan(game.Price) {
			zap.L().Info("Purchase rejected, balance too low",
				zap.String("user_id", user.Id),
				zap.String("game_id", gameId),
				zap.String("balance", balance.String()),
				zap.String("price", game.Price.String()))
			return decimal.Zero, ErrInsufficientBalance
		}
		return balance.Sub(game.Price), nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return ErrInsufficientBalance
		}
		return fmt.Errorf("balance debit failed: %w", err)
	}
	if err := s.gateway.UpsertOwnership(ctx, user.Id, gameId, models.GameStatusUnlocked); err != nil {
		return fmt.Errorf("ownership write failed: %w", err)
	}

	if _, err := s.gateway.AppendTransaction(ctx, store.AppendTransactionParams{
		UserId:      user.Id,
		Kind:        models.TxKindPurchase,
		Amount:      game.Price.Neg(),
		Description: "Purchased " + game.Title,
		GameId:      gameId,
	}); err != nil {
		// The purchase itself landed; a missing audit row is logged, not
		// rolled back.
		zap.L().Error("Failed to record purchase transaction",
			zap.String("user_id", user.Id),
			zap.String("game_id", gameId),
			zap.Error(err))
	}

	zap.L().Info("Game purchased",
		zap.String("user_id", user.Id),
		zap.String("game_id", gameId),
		zap.String("price", game.Price.String()))

	s.patchSnapshot(func(snap *models.Snapshot) {
		snap.Balance = newBalance
	})
	s.reload(ctx)
	return nil
}

// UpdateGameProgress records progress for an owned game and re-derives its
// status. Progress is clamped to [0, 100] and never moves backwards.
func (s *Synchronizer) UpdateGameProgress(ctx context.Context, gameId string, progress int) error {
	user := s.session.User()
	if user == nil {
		return ErrNotConnected
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	owned, err := s.gateway.GetOwnedGame(ctx, user.Id, gameId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGameNotOwned
		}
		return fmt.Errorf("ownership lookup failed: %w", err)
	}
	if progress < owned.Progress {
		return ErrProgressRegression
	}

	status := models.DeriveGameStatus(true, progress)
	if err := s.gateway.SetGameProgress(ctx, user.Id, gameId, progress, status); err != nil {
		return fmt.Errorf("progress write failed: %w", err)
	}

	zap.L().Info("Game progress updated",
		zap.String("user_id", user.Id),
		zap.String("game_id", gameId),
		zap.Int("progress", progress),
		zap.String("status", string(status)))

	s.patchSnapshot(func(snap *models.Snapshot) {
		games := make([]models.OwnedGame, len(snap.OwnedGames))
		copy(games, snap.OwnedGames)
		for i := range games {
			if games[i].Id == gameId {
				games[i].Progress = progress
				games[i].Status = status
			}
		}
		snap.OwnedGames = games
	})
	s.reload(ctx)
	return nil
}

// UnlockAchievement records an unlock. Idempotent: re-unlocking an already
// unlocked achievement is a no-op and never resets the claimed flag.
func (s *Synchronizer) UnlockAchievement(ctx context.Context, achievementId string) error {
	user := s.session.User()
	if user == nil {
		return ErrNotConnected
	}

	if _, err := s.gateway.GetCatalogAchievement(ctx, achievementId); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownAchievement
		}
		return fmt.Errorf("achievement lookup failed: %w", err)
	}

	if err := s.gateway.UpsertUnlock(ctx, user.Id, achievementId); err != nil {
		return fmt.Errorf("unlock write failed: %w", err)
	}

	zap.L().Info("Achievement unlocked",
		zap.String("user_id", user.Id),
		zap.String("achievement_id", achievementId))

	s.reload(ctx)
	return nil
}

// ClaimReward flips the claimed flag and credits the reward amount. The
// gateway gates the flip on the unclaimed state, so of two racing claims
// exactly one credits the balance; the loser gets store.ErrAlreadyClaimed.
func (s *Synchronizer) ClaimReward(ctx context.Context, achievementId string) error {
	user := s.session.User()
	if user == nil {
		return ErrNotConnected
	}

	achievement, err := s.gateway.GetCatalogAchievement(ctx, achievementId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownAchievement
		}
		return fmt.Errorf("achievement lookup failed: %w", err)
	}

	if err := s.gateway.SetClaimed(ctx, user.Id, achievementId); err != nil {
		return err
	}

	newBalance, err := s.adjustBalance(ctx, user.Id, func(balance decimal.Decimal) (decimal.Decimal, error) {
		return balance.Add(achievement.RewardAmount), nil
	})
	if err != nil {
		return fmt.Errorf("reward credit failed: %w", err)
	}

	if _, err := s.gateway.AppendTransaction(ctx, store.AppendTransactionParams{
		UserId:        user.Id,
		Kind:          models.TxKindReward,
		Amount:        achievement.RewardAmount,
		Description:   "Claimed reward: " + achievement.Title,
		AchievementId: achievementId,
	}); err != nil {
		zap.L().Error("Failed to record reward transaction",
			zap.String("user_id", user.Id),
			zap.String("achievement_id", achievementId),
			zap.Error(err))
	}

	zap.L().Info("Reward claimed",
		zap.String("user_id", user.Id),
		zap.String("achievement_id", achievementId),
		zap.String("reward", achievement.RewardAmount.String()))

	s.patchSnapshot(func(snap *models.Snapshot) {
		snap.Balance = newBalance
		merged := make([]models.Achievement, len(snap.Achievements))
		copy(merged, snap.Achievements)
		for i := range merged {
			if merged[i].Id == achievementId {
				merged[i].Claimed = true
			}
		}
		snap.Achievements = merged
	})
	s.reload(ctx)
	return nil
}

// UpdateBalance writes through an absolute balance value. It records no
// transaction on its own; callers wanting an audit entry append one
// explicitly, the way PurchaseGame and ClaimReward do.
func (s *Synchronizer) UpdateBalance(ctx context.Context, newBalance decimal.Decimal) error {
	user := s.session.User()
	if user == nil {
		return ErrNotConnected
	}

	if _, err := s.adjustBalance(ctx, user.Id, func(decimal.Decimal) (decimal.Decimal, error) {
		return newBalance, nil
	}); err != nil {
		return fmt.Errorf("balance write failed: %w", err)
	}

	zap.L().Info("Balance updated",
		zap.String("user_id", user.Id),
		zap.String("balance", newBalance.String()))

	s.patchSnapshot(func(snap *models.Snapshot) {
		snap.Balance = newBalance
	})
	s.reload(ctx)
	return nil
}

// balanceRetries bounds how many times a read-modify-write cycle re-runs
// after losing the version check to a concurrent writer.
const balanceRetries = 3

// currentBalance reads the balance record, treating a missing row as a zero
// balance at version 0.
func (s *Synchronizer) currentBalance(ctx context.Context, userId string) (decimal.Decimal, int64, error) {
	record, err := s.gateway.GetBalance(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, 0, nil
		}
		return decimal.Zero, 0, fmt.Errorf("balance lookup failed: %w", err)
	}
	return record.Balance, record.Version, nil
}

// adjustBalance runs a read-modify-write cycle under the gateway's optimistic
// lock. fn maps the current balance to the desired one; when the versioned
// write loses to a concurrent writer the cycle re-reads and re-applies fn.
func (s *Synchronizer) adjustBalance(ctx context.Context, userId string, fn func(decimal.Decimal) (decimal.Decimal, error)) (decimal.Decimal, error) {
	for attempt := 0; attempt < balanceRetries; attempt++ {
		balance, version, err := s.currentBalance(ctx, userId)
		if err != nil {
			return decimal.Zero, err
		}

		next, err := fn(balance)
		if err != nil {
			return decimal.Zero, err
		}

		if _, err := s.gateway.SetBalance(ctx, userId, next, version); err != nil {
			if errors.Is(err, store.ErrConcurrentModification) {
				zap.L().Warn("Balance write lost version race, retrying",
					zap.String("user_id", userId),
					zap.Int("attempt", attempt+1))
				continue
			}
			return decimal.Zero, err
		}
		return next, nil
	}
	return decimal.Zero, store.ErrConcurrentModification
}

// fallbackDescription fills in a display description for transactions
// recorded without one.
func fallbackDescription(kind string) string {
	switch kind {
	case models.TxKindPurchase:
		return "Game purchase"
	case models.TxKindReward:
		return "Achievement reward"
	case models.TxKindSend:
		return "Tokens sent"
	case models.TxKindReceive:
		return "Tokens received"
	case models.TxKindClaim:
		return "Reward claim"
	default:
		return "Balance adjustment"
	}
}
