package main

import (
	"context"
	"flag"
	"fmt"
	"regexp"

	"gameverse-sync-go/internal/common"
	"gameverse-sync-go/internal/config"

	"go.uber.org/zap"
)

var addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if !addressRegex.MatchString(address) {
		return fmt.Errorf("invalid wallet address format: %s", address)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	addressFlag := flag.String("address", "", "Wallet address to register (required)")
	emailFlag := flag.String("email", "", "Optional contact email")
	flag.Parse()

	if err := validateAddress(*addressFlag); err != nil {
		logger.Fatal("Invalid address", zap.Error(err))
	}
	if err := validateEmail(*emailFlag); err != nil {
		logger.Fatal("Invalid email", zap.Error(err))
	}

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

	user, err := dbService.CreateUser(ctx, *addressFlag, *emailFlag)
	if err != nil {
		logger.Fatal("Failed to register user", zap.Error(err))
	}

	common.PrintHeader("USER REGISTERED", common.DefaultWidth)
	fmt.Printf("ID:      %s\n", user.Id)
	fmt.Printf("Address: %s\n", user.WalletAddress)
	if user.Email != "" {
		fmt.Printf("Email:   %s\n", user.Email)
	}
	common.PrintFooter("Registration is idempotent: re-running with the same address returns the same user.", common.DefaultWidth)
}
