package common

import (
	"context"
	"fmt"

	"gameverse-sync-go/internal/database"

	"go.uber.org/zap"
)

// UserInfo represents simplified user information for command-line utilities
type UserInfo struct {
	Id            string
	WalletAddress string
	Email         string
}

// InitializeUsers retrieves users based on an optional wallet address filter.
// If addressFilter is provided, returns the single user with that address.
// If addressFilter is empty, returns all users.
func InitializeUsers(ctx context.Context, dbService *database.Service, addressFilter string, logger *zap.Logger) ([]UserInfo, error) {
	var users []UserInfo

	if addressFilter != "" {
		logger.Info("Looking up user by address", zap.String("address", addressFilter))
		user, err := dbService.GetUserByAddress(ctx, addressFilter)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		users = append(users, UserInfo{
			Id:            user.Id,
			WalletAddress: user.WalletAddress,
			Email:         user.Email,
		})
	} else {
		allUsers, err := dbService.GetUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get users: %w", err)
		}
		for _, u := range allUsers {
			users = append(users, UserInfo{
				Id:            u.Id,
				WalletAddress: u.WalletAddress,
				Email:         u.Email,
			})
		}
	}

	logger.Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}
