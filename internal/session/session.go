package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/store"
	"gameverse-sync-go/internal/wallet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoAccounts means the provider granted access but returned an empty
// account list.
var ErrNoAccounts = errors.New("wallet returned no accounts")

// Session resolves and holds the current user identity. It is the root of
// the dependency graph: the synchronizer only reads identity through it.
//
// Identity resolution is serialized by the mutex so that a resolve triggered
// by an account change fully completes before any subsequent load reads the
// session, and so concurrent resolves for one address cannot interleave.
type Session struct {
	provider wallet.Provider
	gateway  store.Gateway

	mu            sync.Mutex
	connected     bool
	address       string
	user          *models.User
	nativeBalance decimal.Decimal
}

func New(provider wallet.Provider, gateway store.Gateway) *Session {
	return &Session{
		provider: provider,
		gateway:  gateway,
	}
}

// Connect requests account access from the wallet provider and resolves the
// primary address to an application user. Provider failures are surfaced to
// the caller untouched; there is no retry loop.
func (s *Session) Connect(ctx context.Context) (*models.User, error) {
	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		zap.L().Error("Wallet connection failed", zap.Error(err))
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}

	return s.establish(ctx, accounts[0])
}

// Resume restores a session from already-authorized accounts without
// prompting. Returns nil with no error when no account is authorized.
func (s *Session) Resume(ctx context.Context) (*models.User, error) {
	accounts, err := s.provider.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, nil
	}

	return s.establish(ctx, accounts[0])
}

func (s *Session) establish(ctx context.Context, address string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.resolveLocked(ctx, address)
	if err != nil {
		return nil, err
	}

	s.connected = true
	s.address = strings.ToLower(address)
	s.user = user

	if err := s.refreshNativeBalanceLocked(ctx); err != nil {
		// The identity is established; a failed native balance read only
		// degrades the display value.
		zap.L().Warn("Failed to fetch native balance", zap.Error(err))
	}

	zap.L().Info("Session established",
		zap.String("address", s.address),
		zap.String("user_id", user.Id))
	return user, nil
}

// resolveLocked maps a wallet address to a user record, creating one if
// absent. The gateway upsert is idempotent on the lowercased address, so
// concurrent resolves converge on a single row.
func (s *Session) resolveLocked(ctx context.Context, address string) (*models.User, error) {
	user, err := s.gateway.GetUserByAddress(ctx, address)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("identity lookup failed: %w", err)
		}
		user, err = s.gateway.CreateUser(ctx, address, "")
		if err != nil {
			return nil, fmt.Errorf("identity creation failed: %w", err)
		}
	}
	return user, nil
}

// Disconnect clears the session. Remote records are never mutated.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = false
	s.address = ""
	s.user = nil
	s.nativeBalance = decimal.Zero

	zap.L().Info("Session disconnected")
}

// HandleAccountsChanged reacts to an external account-change notification.
// An empty list behaves as Disconnect; a new primary address re-resolves.
// Returns the active user, or nil when the session ended.
func (s *Session) HandleAccountsChanged(ctx context.Context, accounts []string) (*models.User, error) {
	if len(accounts) == 0 {
		s.Disconnect()
		return nil, nil
	}

	primary := strings.ToLower(accounts[0])

	s.mu.Lock()
	if s.connected && primary == s.address {
		user := s.user
		s.mu.Unlock()
		return user, nil
	}
	s.mu.Unlock()

	zap.L().Info("Active account changed", zap.String("address", primary))
	return s.establish(ctx, primary)
}

// RefreshNativeBalance re-reads the wallet's native currency balance.
func (s *Session) RefreshNativeBalance(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	return s.refreshNativeBalanceLocked(ctx)
}

func (s *Session) refreshNativeBalanceLocked(ctx context.Context) error {
	wei, err := s.provider.GetBalance(ctx, s.address)
	if err != nil {
		return err
	}
	s.nativeBalance = wallet.WeiToEther(wei)
	return nil
}

func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Session) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// User returns the resolved user, or nil when not connected.
func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// NativeBalance returns the last fetched native currency balance in ether.
func (s *Session) NativeBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nativeBalance
}
