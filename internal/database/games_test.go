package database

import (
	"context"
	"errors"
	"testing"

	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestUpsertOwnership_Idempotent(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)
	seedTestGame(t, service, "game1", 50)

	if err := service.UpsertOwnership(ctx, user.Id, "game1", models.GameStatusUnlocked); err != nil {
		t.Fatalf("UpsertOwnership failed: %v", err)
	}
	if err := service.SetGameProgress(ctx, user.Id, "game1", 40, models.GameStatusPlaying); err != nil {
		t.Fatalf("SetGameProgress failed: %v", err)
	}

	// Re-upserting ownership must not reset recorded progress.
	if err := service.UpsertOwnership(ctx, user.Id, "game1", models.GameStatusUnlocked); err != nil {
		t.Fatalf("Second UpsertOwnership failed: %v", err)
	}

	owned, err := service.GetOwnedGame(ctx, user.Id, "game1")
	if err != nil {
		t.Fatalf("GetOwnedGame failed: %v", err)
	}
	if owned.Progress != 40 {
		t.Errorf("Expected progress 40 after re-upsert, got %d", owned.Progress)
	}
}

func TestSetGameProgress_UnownedGame(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)
	seedTestGame(t, service, "game1", 50)

	err := service.SetGameProgress(ctx, user.Id, "game1", 10, models.GameStatusPlaying)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unowned game, got %v", err)
	}
}

func TestGetOwnedGames_JoinsCatalog(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)
	seedTestGame(t, service, "game1", 50)
	seedTestGame(t, service, "game2", 30)

	if err := service.UpsertOwnership(ctx, user.Id, "game1", models.GameStatusUnlocked); err != nil {
		t.Fatalf("UpsertOwnership failed: %v", err)
	}

	owned, err := service.GetOwnedGames(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetOwnedGames failed: %v", err)
	}
	if len(owned) != 1 {
		t.Fatalf("Expected 1 owned game, got %d", len(owned))
	}
	if owned[0].Title != "Test Game game1" {
		t.Errorf("Expected catalog title joined in, got %q", owned[0].Title)
	}
	if !owned[0].Price.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected price 50, got %s", owned[0].Price.String())
	}
}

func TestGetCatalogGame_NotFound(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := service.GetCatalogGame(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
