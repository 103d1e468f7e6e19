package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetUserAchievements returns the user's raw unlock rows.
func (s *Service) GetUserAchievements(ctx context.Context, userId string) ([]models.UserUnlock, error) {
	zap.L().Debug("Querying user achievement unlocks", zap.String("user_id", userId))

	rows, err := s.db.QueryContext(ctx, queryGetUserAchievements, userId)
	if err != nil {
		zap.L().Error("Failed to query user achievements", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user achievements: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var unlocks []models.UserUnlock
	for rows.Next() {
		var unlock models.UserUnlock
		if err := rows.Scan(&unlock.UserId, &unlock.AchievementId, &unlock.Claimed, &unlock.UnlockedAt); err != nil {
			return nil, fmt.Errorf("unable to scan unlock row: %w", err)
		}
		unlocks = append(unlocks, unlock)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unlock rows: %w", err)
	}

	return unlocks, nil
}

// GetCatalogAchievements returns the achievement catalog, rarest first.
func (s *Service) GetCatalogAchievements(ctx context.Context) ([]models.CatalogAchievement, error) {
	rows, err := s.db.QueryContext(ctx, queryGetCatalogAchievements)
	if err != nil {
		zap.L().Error("Failed to query catalog achievements", zap.Error(err))
		return nil, fmt.Errorf("unable to query catalog achievements: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var achievements []models.CatalogAchievement
	for rows.Next() {
		var achievement models.CatalogAchievement
		var rewardStr string
		err := rows.Scan(&achievement.Id, &achievement.Title, &achievement.Description,
			&achievement.Icon, &achievement.Rarity, &rewardStr, &achievement.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan catalog achievement row: %w", err)
		}
		achievement.RewardAmount, err = decimal.NewFromString(rewardStr)
		if err != nil {
			return nil, fmt.Errorf("unable to parse reward amount %q: %w", rewardStr, err)
		}
		achievements = append(achievements, achievement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog achievement rows: %w", err)
	}

	return achievements, nil
}

// GetCatalogAchievement returns a single catalog achievement by id.
func (s *Service) GetCatalogAchievement(ctx context.Context, achievementId string) (*models.CatalogAchievement, error) {
	var achievement models.CatalogAchievement
	var rewardStr string
	err := s.db.QueryRowContext(ctx, queryGetCatalogAchievementById, achievementId).Scan(
		&achievement.Id, &achievement.Title, &achievement.Description,
		&achievement.Icon, &achievement.Rarity, &rewardStr, &achievement.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("unable to query catalog achievement: %w", err)
	}
	achievement.RewardAmount, err = decimal.NewFromString(rewardStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse reward amount %q: %w", rewardStr, err)
	}
	return &achievement, nil
}

// GetUnlock returns a single unlock row, or store.ErrNotFound.
func (s *Service) GetUnlock(ctx context.Context, userId, achievementId string) (*models.UserUnlock, error) {
	var unlock models.UserUnlock
	err := s.db.QueryRowContext(ctx, queryGetUnlock, userId, achievementId).Scan(
		&unlock.UserId, &unlock.AchievementId, &unlock.Claimed, &unlock.UnlockedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("unable to query unlock: %w", err)
	}
	return &unlock, nil
}

// UpsertUnlock records an unlock for the user. Idempotent on
// (user, achievement); re-unlocking never resets claimed.
func (s *Service) UpsertUnlock(ctx context.Context, userId, achievementId string) error {
	zap.L().Info("Upserting achievement unlock",
		zap.String("user_id", userId),
		zap.String("achievement_id", achievementId))

	if _, err := s.db.ExecContext(ctx, queryUpsertUnlock, userId, achievementId); err != nil {
		zap.L().Error("Failed to upsert unlock",
			zap.String("user_id", userId),
			zap.String("achievement_id", achievementId),
			zap.Error(err))
		return fmt.Errorf("unable to upsert unlock: %w", err)
	}
	return nil
}

// SetClaimed flips claimed to true, gated on claimed = 0. Of two racing
// claims only one update touches a row; the loser gets ErrAlreadyClaimed.
func (s *Service) SetClaimed(ctx context.Context, userId, achievementId string) error {
	result, err := s.db.ExecContext(ctx, querySetClaimed, userId, achievementId)
	if err != nil {
		zap.L().Error("Failed to set claimed",
			zap.String("user_id", userId),
			zap.String("achievement_id", achievementId),
			zap.Error(err))
		return fmt.Errorf("unable to set claimed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Disambiguate: no unlock row at all, or already claimed.
		if _, err := s.GetUnlock(ctx, userId, achievementId); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.ErrNotUnlocked
			}
			return err
		}
		return store.ErrAlreadyClaimed
	}

	zap.L().Info("Achievement reward claimed",
		zap.String("user_id", userId),
		zap.String("achievement_id", achievementId))
	return nil
}

// SeedCatalogAchievement inserts a catalog achievement if absent. Used by cmd/setup.
func (s *Service) SeedCatalogAchievement(ctx context.Context, achievement models.CatalogAchievement) error {
	_, err := s.db.ExecContext(ctx, queryInsertCatalogAchievement,
		achievement.Id, achievement.Title, achievement.Description,
		achievement.Icon, achievement.Rarity, achievement.RewardAmount.String())
	if err != nil {
		return fmt.Errorf("unable to seed catalog achievement %q: %w", achievement.Title, err)
	}
	return nil
}
