package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"gameverse-sync-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	service := &Service{db: db}
	if err := service.InitSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

// setupConcurrentTestDB backs the service with a file so goroutines share one
// database; an in-memory DSN gives each pooled connection its own copy. A
// single connection serializes writers instead of surfacing SQLITE_BUSY.
func setupConcurrentTestDB(t *testing.T) *Service {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	service := &Service{db: db}
	if err := service.InitSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return service
}

func seedTestUser(t *testing.T, service *Service) *models.User {
	t.Helper()
	user, err := service.CreateUser(context.Background(), "0xAbC0000000000000000000000000000000000001", "")
	if err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

func seedTestGame(t *testing.T, service *Service, id string, price int64) {
	t.Helper()
	err := service.SeedCatalogGame(context.Background(), models.CatalogGame{
		Id:        id,
		Title:     "Test Game " + id,
		Price:     decimal.NewFromInt(price),
		Category:  "Test",
		Developer: "Test Studio",
	})
	if err != nil {
		t.Fatalf("Failed to seed test game: %v", err)
	}
}

func seedTestAchievement(t *testing.T, service *Service, id string, reward int64) {
	t.Helper()
	err := service.SeedCatalogAchievement(context.Background(), models.CatalogAchievement{
		Id:           id,
		Title:        "Test Achievement " + id,
		Icon:         "star",
		Rarity:       models.RarityCommon,
		RewardAmount: decimal.NewFromInt(reward),
	})
	if err != nil {
		t.Fatalf("Failed to seed test achievement: %v", err)
	}
}
