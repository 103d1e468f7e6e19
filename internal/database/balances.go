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

// GetBalance returns the user's current balance record, or store.ErrNotFound
// when no balance row exists yet.
func (s *Service) GetBalance(ctx context.Context, userId string) (*models.BalanceRecord, error) {
	zap.L().Debug("Getting balance", zap.String("user_id", userId))

	var record models.BalanceRecord
	var balanceStr string
	err := s.db.QueryRowContext(ctx, queryGetBalance, userId).Scan(
		&record.UserId, &balanceStr, &record.Version, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		zap.L().Error("Failed to get balance", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to get balance: %w", err)
	}

	record.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		zap.L().Error("Failed to parse balance", zap.String("balance", balanceStr), zap.Error(err))
		return nil, fmt.Errorf("unable to parse balance %q: %w", balanceStr, err)
	}

	zap.L().Debug("Retrieved balance",
		zap.String("user_id", userId),
		zap.String("balance", record.Balance.String()))
	return &record, nil
}

// SetBalance writes an absolute balance value for the user under optimistic
// locking and returns the updated record. expectedVersion 0 inserts a fresh
// row; a positive expectedVersion updates only when it matches the stored
// version. Either path reports store.ErrConcurrentModification when another
// writer got there first.
func (s *Service) SetBalance(ctx context.Context, userId string, amount decimal.Decimal, expectedVersion int64) (*models.BalanceRecord, error) {
	zap.L().Info("Setting balance",
		zap.String("user_id", userId),
		zap.String("balance", amount.String()),
		zap.Int64("expected_version", expectedVersion))

	var result sql.Result
	var err error
	if expectedVersion == 0 {
		result, err = s.db.ExecContext(ctx, queryInsertBalance, userId, amount.String())
	} else {
		result, err = s.db.ExecContext(ctx, queryUpdateBalanceCAS, amount.String(), userId, expectedVersion)
	}
	if err != nil {
		zap.L().Error("Failed to set balance", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to set balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to check balance update: %w", err)
	}
	if affected == 0 {
		zap.L().Warn("Balance version conflict",
			zap.String("user_id", userId),
			zap.Int64("expected_version", expectedVersion))
		return nil, store.ErrConcurrentModification
	}

	return s.GetBalance(ctx, userId)
}
