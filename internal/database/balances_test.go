package database

import (
	"context"
	"errors"
	"testing"

	"gameverse-sync-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestGetBalance_NoRecord(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	user := seedTestUser(t, service)

	_, err := service.GetBalance(context.Background(), user.Id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSetBalance_VersionIncrements(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)

	first, err := service.SetBalance(ctx, user.Id, decimal.NewFromInt(100), 0)
	if err != nil {
		t.Fatalf("SetBalance failed: %v", err)
	}
	if first.Version != 1 {
		t.Errorf("Expected version 1 on first write, got %d", first.Version)
	}

	second, err := service.SetBalance(ctx, user.Id, decimal.RequireFromString("49.25"), first.Version)
	if err != nil {
		t.Fatalf("Second SetBalance failed: %v", err)
	}
	if second.Version != 2 {
		t.Errorf("Expected version 2 on second write, got %d", second.Version)
	}
	if !second.Balance.Equal(decimal.RequireFromString("49.25")) {
		t.Errorf("Expected balance 49.25, got %s", second.Balance.String())
	}
}

func TestSetBalance_StaleVersionRejected(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)

	first, err := service.SetBalance(ctx, user.Id, decimal.NewFromInt(100), 0)
	if err != nil {
		t.Fatalf("SetBalance failed: %v", err)
	}

	if _, err := service.SetBalance(ctx, user.Id, decimal.NewFromInt(80), first.Version); err != nil {
		t.Fatalf("Versioned SetBalance failed: %v", err)
	}

	// A writer still holding the original version must not clobber the
	// newer value.
	_, err = service.SetBalance(ctx, user.Id, decimal.NewFromInt(60), first.Version)
	if !errors.Is(err, store.ErrConcurrentModification) {
		t.Errorf("Expected ErrConcurrentModification, got %v", err)
	}

	record, err := service.GetBalance(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !record.Balance.Equal(decimal.NewFromInt(80)) {
		t.Errorf("Expected balance 80 preserved, got %s", record.Balance.String())
	}
	if record.Version != 2 {
		t.Errorf("Expected version 2 preserved, got %d", record.Version)
	}
}

func TestSetBalance_CreateConflictsWhenRowExists(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)

	if _, err := service.SetBalance(ctx, user.Id, decimal.NewFromInt(25), 0); err != nil {
		t.Fatalf("SetBalance failed: %v", err)
	}

	_, err := service.SetBalance(ctx, user.Id, decimal.NewFromInt(50), 0)
	if !errors.Is(err, store.ErrConcurrentModification) {
		t.Errorf("Expected ErrConcurrentModification on duplicate create, got %v", err)
	}

	record, err := service.GetBalance(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !record.Balance.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected original balance 25, got %s", record.Balance.String())
	}
}

func TestSetBalance_PreservesExactDecimalString(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)

	want := decimal.RequireFromString("1250.75")
	if _, err := service.SetBalance(ctx, user.Id, want, 0); err != nil {
		t.Fatalf("SetBalance failed: %v", err)
	}

	record, err := service.GetBalance(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !record.Balance.Equal(want) {
		t.Errorf("Expected balance %s, got %s", want.String(), record.Balance.String())
	}
}
