package main

import (
	"context"
	"flag"
	"fmt"

	"gameverse-sync-go/internal/common"
	"gameverse-sync-go/internal/config"
	"gameverse-sync-go/internal/database"
	"gameverse-sync-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedStats struct {
	games        int
	achievements int
}

func seedCatalog(ctx context.Context, dbService *database.Service, catalog *common.CatalogConfig) (seedStats, error) {
	stats := seedStats{}

	for _, game := range catalog.Games {
		price, err := decimal.NewFromString(game.Price)
		if err != nil {
			return stats, fmt.Errorf("invalid price for game %s: %w", game.Id, err)
		}
		err = dbService.SeedCatalogGame(ctx, models.CatalogGame{
			Id:          game.Id,
			Title:       game.Title,
			Description: game.Description,
			ImageURL:    game.ImageURL,
			Price:       price,
			Category:    game.Category,
			Developer:   game.Developer,
		})
		if err != nil {
			return stats, fmt.Errorf("failed to seed game %s: %w", game.Id, err)
		}
		stats.games++
	}

	for _, achievement := range catalog.Achievements {
		reward, err := decimal.NewFromString(achievement.RewardAmount)
		if err != nil {
			return stats, fmt.Errorf("invalid reward for achievement %s: %w", achievement.Id, err)
		}
		err = dbService.SeedCatalogAchievement(ctx, models.CatalogAchievement{
			Id:           achievement.Id,
			Title:        achievement.Title,
			Description:  achievement.Description,
			Icon:         achievement.Icon,
			Rarity:       achievement.Rarity,
			RewardAmount: reward,
		})
		if err != nil {
			return stats, fmt.Errorf("failed to seed achievement %s: %w", achievement.Id, err)
		}
		stats.achievements++
	}

	return stats, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	catalogFlag := flag.String("catalog", "catalog.yaml", "Path to the seed catalog file")
	flag.Parse()

	logger.Info("Starting gateway setup")

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

	catalog, err := common.LoadCatalogConfig(*catalogFlag)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.String("file", *catalogFlag), zap.Error(err))
	}

	stats, err := seedCatalog(ctx, dbService, catalog)
	if err != nil {
		logger.Fatal("Failed to seed catalog", zap.Error(err))
	}

	common.PrintHeader("GATEWAY SETUP COMPLETE", common.DefaultWidth)
	fmt.Printf("Database:       %s\n", cfg.Database.Path)
	fmt.Printf("Games seeded:   %d\n", stats.games)
	fmt.Printf("Achievements:   %d\n", stats.achievements)
	common.PrintFooter("Run cmd/register to create a user, then cmd/dashboard to sync.", common.DefaultWidth)
}
