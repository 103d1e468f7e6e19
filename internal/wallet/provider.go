package wallet

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Sentinel errors for wallet provider failures.
var (
	// ErrProviderUnavailable means no wallet provider is reachable at all
	// (no endpoint configured, or the endpoint refused the connection).
	ErrProviderUnavailable = errors.New("wallet provider unavailable")

	// ErrUserRejected means the user declined the account request.
	ErrUserRejected = errors.New("user rejected the request")
)

// AccountsChangedFunc is invoked with the full current account list whenever
// the provider's active accounts change.
type AccountsChangedFunc func(accounts []string)

// Provider is the wallet identity provider contract: current accounts,
// account access requests, native balance reads, and change notification.
type Provider interface {
	// GetAccounts returns the currently authorized accounts without prompting.
	GetAccounts(ctx context.Context) ([]string, error)

	// RequestAccounts requests account access; may prompt the user and fail
	// with ErrUserRejected.
	RequestAccounts(ctx context.Context) ([]string, error)

	// GetBalance returns the native currency balance for an address, in wei.
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)

	// WatchAccounts invokes fn whenever the account list changes. Blocks
	// until ctx is done.
	WatchAccounts(ctx context.Context, fn AccountsChangedFunc)
}

var weiPerEther = decimal.New(1, 18)

// WeiToEther converts a wei amount to whole ether for display.
func WeiToEther(wei decimal.Decimal) decimal.Decimal {
	return wei.Div(weiPerEther)
}
