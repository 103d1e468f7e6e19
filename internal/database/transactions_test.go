package database

import (
	"context"
	"testing"

	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestAppendTransaction_DefaultsStatus(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)

	tx, err := service.AppendTransaction(ctx, store.AppendTransactionParams{
		UserId:      user.Id,
		Kind:        models.TxKindPurchase,
		Amount:      decimal.NewFromInt(-50),
		Description: "Purchased Test Game",
		GameId:      "game1",
	})
	if err != nil {
		t.Fatalf("AppendTransaction failed: %v", err)
	}

	if tx.Id == "" {
		t.Error("Expected generated transaction id")
	}
	if tx.Status != "completed" {
		t.Errorf("Expected default status completed, got %q", tx.Status)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("Expected amount -50, got %s", tx.Amount.String())
	}
}

func TestGetTransactions_NewestFirstWithLimit(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)

	for i := 0; i < 15; i++ {
		_, err := service.AppendTransaction(ctx, store.AppendTransactionParams{
			UserId: user.Id,
			Kind:   models.TxKindReward,
			Amount: decimal.NewFromInt(int64(i + 1)),
		})
		if err != nil {
			t.Fatalf("AppendTransaction %d failed: %v", i, err)
		}
	}

	transactions, err := service.GetTransactions(ctx, user.Id, 10)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(transactions) != 10 {
		t.Fatalf("Expected 10 transactions, got %d", len(transactions))
	}

	// Newest first: the last appended amount (15) leads.
	if !transactions[0].Amount.Equal(decimal.NewFromInt(15)) {
		t.Errorf("Expected newest transaction first, got amount %s", transactions[0].Amount.String())
	}
	for i := 1; i < len(transactions); i++ {
		if transactions[i].Amount.GreaterThan(transactions[i-1].Amount) {
			t.Errorf("Transactions out of order at index %d", i)
		}
	}
}

func TestGetTransactions_ClampsUnreasonableLimit(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedTestUser(t, service)

	for i := 0; i < 12; i++ {
		_, err := service.AppendTransaction(ctx, store.AppendTransactionParams{
			UserId: user.Id,
			Kind:   models.TxKindReceive,
			Amount: decimal.NewFromInt(1),
		})
		if err != nil {
			t.Fatalf("AppendTransaction failed: %v", err)
		}
	}

	transactions, err := service.GetTransactions(ctx, user.Id, 0)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(transactions) != 10 {
		t.Errorf("Expected default limit 10 for non-positive input, got %d", len(transactions))
	}
}
