package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"gameverse-sync-go/internal/common"
	"gameverse-sync-go/internal/config"
	"gameverse-sync-go/internal/database"
	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type reportStats struct {
	totalUsers        int
	totalTransactions int
	usersWithActivity int
}

func formatTransactionRef(tx models.Transaction) string {
	switch {
	case tx.GameId != "":
		return "game:" + tx.GameId
	case tx.AchievementId != "":
		return "achievement:" + tx.AchievementId
	default:
		return "none"
	}
}

func printTransaction(tx models.Transaction, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	fmt.Printf("%s %-10s %12s  %-32s (ref: %s, %s)\n",
		symbol,
		tx.Kind,
		tx.Amount.StringFixed(2),
		tx.Description,
		formatTransactionRef(tx),
		tx.CreatedAt.Format("2006-01-02 15:04:05"))
}

func printUserHeader(user common.UserInfo, balance decimal.Decimal, version int64) {
	fmt.Printf("\n┌─ User: %s\n", user.WalletAddress)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Balance: %s GV (v%d)\n", balance.StringFixed(2), version)
	common.PrintBoxSeparator(78)
}

func processUser(ctx context.Context, user common.UserInfo, dbService *database.Service, limit int, logger *zap.Logger) (int, error) {
	balance := decimal.Zero
	var version int64
	record, err := dbService.GetBalance(ctx, user.Id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("failed to get balance: %w", err)
		}
	} else {
		balance = record.Balance
		version = record.Version
	}

	transactions, err := dbService.GetTransactions(ctx, user.Id, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get transactions: %w", err)
	}

	printUserHeader(user, balance, version)
	if len(transactions) == 0 {
		fmt.Println(common.BoxPrefix(true) + "no transactions")
		return 0, nil
	}
	for i, tx := range transactions {
		printTransaction(tx, i == len(transactions)-1)
	}

	return len(transactions), nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	addressFlag := flag.String("address", "", "Filter by specific wallet address (optional)")
	limitFlag := flag.Int("limit", 10, "Number of recent transactions per user")
	flag.Parse()

	logger.Info("Starting balance report")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	users, err := common.InitializeUsers(ctx, dbService, *addressFlag, logger)
	if err != nil {
		logger.Fatal("Failed to retrieve users", zap.Error(err))
	}

	common.PrintHeader("TOKEN BALANCE REPORT", common.DefaultWidth)

	stats := reportStats{}
	for _, user := range users {
		stats.totalUsers++
		txCount, err := processUser(ctx, user, dbService, *limitFlag, logger)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("address", user.WalletAddress),
				zap.Error(err))
			continue
		}
		if txCount > 0 {
			stats.usersWithActivity++
			stats.totalTransactions += txCount
		}
	}

	summary := fmt.Sprintf("Users: %d | With activity: %d | Transactions shown: %d",
		stats.totalUsers, stats.usersWithActivity, stats.totalTransactions)
	common.PrintFooter(summary, common.DefaultWidth)
}
