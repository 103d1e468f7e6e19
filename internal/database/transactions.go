package database

import (
	"context"
	"database/sql"
	"fmt"

	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AppendTransaction records a balance-affecting event in the audit log.
// Rows are never mutated after creation.
func (s *Service) AppendTransaction(ctx context.Context, params store.AppendTransactionParams) (*models.Transaction, error) {
	zap.L().Info("Appending transaction",
		zap.String("user_id", params.UserId),
		zap.String("kind", params.Kind),
		zap.String("amount", params.Amount.String()))

	status := params.Status
	if status == "" {
		status = "completed"
	}

	transactionId := uuid.New().String()
	transaction := &models.Transaction{}
	var amountStr string
	err := s.db.QueryRowContext(ctx, queryInsertTransaction,
		transactionId, params.UserId, params.Kind, params.Amount.String(),
		params.Description, params.GameId, params.AchievementId, status).
		Scan(&transaction.Id, &transaction.UserId, &transaction.Kind, &amountStr,
			&transaction.Description, &transaction.GameId, &transaction.AchievementId,
			&transaction.Status, &transaction.CreatedAt)
	if err != nil {
		zap.L().Error("Failed to insert transaction", zap.String("user_id", params.UserId), zap.Error(err))
		return nil, fmt.Errorf("unable to insert transaction: %w", err)
	}

	transaction.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse returned amount: %w", err)
	}

	return transaction, nil
}

// GetTransactions returns the user's recent transactions, newest first.
func (s *Service) GetTransactions(ctx context.Context, userId string, limit int) ([]models.Transaction, error) {
	zap.L().Debug("Getting transactions",
		zap.String("user_id", userId),
		zap.Int("limit", limit))

	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, queryGetTransactions, userId, limit)
	if err != nil {
		zap.L().Error("Failed to query transactions", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var amountStr string
		err := rows.Scan(&tx.Id, &tx.UserId, &tx.Kind, &amountStr,
			&tx.Description, &tx.GameId, &tx.AchievementId, &tx.Status, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan transaction row: %w", err)
		}
		tx.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("unable to parse amount %q: %w", amountStr, err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
