package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gameverse-sync-go/internal/store"
)

func TestSetClaimed_RequiresUnlock(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)
	seedTestAchievement(t, service, "ach1", 10)

	err := service.SetClaimed(ctx, user.Id, "ach1")
	if !errors.Is(err, store.ErrNotUnlocked) {
		t.Errorf("Expected ErrNotUnlocked, got %v", err)
	}
}

func TestSetClaimed_OnlyOnce(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)
	seedTestAchievement(t, service, "ach1", 10)

	if err := service.UpsertUnlock(ctx, user.Id, "ach1"); err != nil {
		t.Fatalf("UpsertUnlock failed: %v", err)
	}

	if err := service.SetClaimed(ctx, user.Id, "ach1"); err != nil {
		t.Fatalf("First SetClaimed failed: %v", err)
	}

	err := service.SetClaimed(ctx, user.Id, "ach1")
	if !errors.Is(err, store.ErrAlreadyClaimed) {
		t.Errorf("Expected ErrAlreadyClaimed on second claim, got %v", err)
	}
}

func TestSetClaimed_ConcurrentClaimersGetOneWin(t *testing.T) {
	service := setupConcurrentTestDB(t)
	ctx := context.Background()

	user := seedTestUser(t, service)
	seedTestAchievement(t, service, "ach1", 10)
	if err := service.UpsertUnlock(ctx, user.Id, "ach1"); err != nil {
		t.Fatalf("UpsertUnlock failed: %v", err)
	}

	const claimers = 4
	results := make(chan error, claimers)

	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- service.SetClaimed(ctx, user.Id, "ach1")
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		if !errors.Is(err, store.ErrAlreadyClaimed) {
			t.Errorf("Expected ErrAlreadyClaimed for losing claim, got %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("Expected exactly one winning claim, got %d", wins)
	}
}

func TestUpsertUnlock_NeverResetsClaimed(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)
	seedTestAchievement(t, service, "ach1", 10)

	if err := service.UpsertUnlock(ctx, user.Id, "ach1"); err != nil {
		t.Fatalf("UpsertUnlock failed: %v", err)
	}
	if err := service.SetClaimed(ctx, user.Id, "ach1"); err != nil {
		t.Fatalf("SetClaimed failed: %v", err)
	}

	// Re-unlock after the reward was claimed.
	if err := service.UpsertUnlock(ctx, user.Id, "ach1"); err != nil {
		t.Fatalf("Second UpsertUnlock failed: %v", err)
	}

	unlock, err := service.GetUnlock(ctx, user.Id, "ach1")
	if err != nil {
		t.Fatalf("GetUnlock failed: %v", err)
	}
	if !unlock.Claimed {
		t.Error("Expected claimed flag to survive re-unlock")
	}
}

func TestGetUserAchievements_EmptyWithoutUnlocks(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)
	seedTestAchievement(t, service, "ach1", 10)

	unlocks, err := service.GetUserAchievements(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserAchievements failed: %v", err)
	}
	if len(unlocks) != 0 {
		t.Errorf("Expected no unlock rows, got %d", len(unlocks))
	}
}
