package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) GetUserByAddress(ctx context.Context, address string) (*models.User, error) {
	zap.L().Debug("Querying user by wallet address", zap.String("address", address))

	var user models.User
	err := s.db.QueryRowContext(ctx, queryGetUserByAddress, address).Scan(
		&user.Id, &user.WalletAddress, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		zap.L().Error("Failed to query user by address", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by address: %w", err)
	}

	zap.L().Debug("Retrieved user by address",
		zap.String("address", address),
		zap.String("user_id", user.Id))
	return &user, nil
}

// CreateUser upserts a user keyed on the lowercased wallet address.
// Concurrent calls for the same address converge on a single row.
func (s *Service) CreateUser(ctx context.Context, address, email string) (*models.User, error) {
	zap.L().Info("Creating user", zap.String("address", address))

	userId := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, queryUpsertUser, userId, address, email); err != nil {
		zap.L().Error("Failed to upsert user", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("unable to upsert user: %w", err)
	}

	// Re-read so a lost upsert race still returns the winning row.
	user, err := s.GetUserByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("unable to read back user: %w", err)
	}

	zap.L().Info("User resolved",
		zap.String("user_id", user.Id),
		zap.String("address", user.WalletAddress))
	return user, nil
}

// GetUsers returns all known users, oldest first. Used by reporting tools.
func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.Id, &user.WalletAddress, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
			zap.L().Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during user row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}
