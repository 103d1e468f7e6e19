package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"gameverse-sync-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EIP-1193 error code for a user-rejected request.
const codeUserRejected = 4001

// RPCProvider talks JSON-RPC 2.0 to a wallet node over HTTP.
type RPCProvider struct {
	url           string
	client        *http.Client
	watchInterval time.Duration
	nextId        atomic.Int64
}

var _ Provider = (*RPCProvider)(nil)

func NewRPCProvider(cfg models.WalletConfig) (*RPCProvider, error) {
	if cfg.RPCURL == "" {
		return nil, ErrProviderUnavailable
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	watchInterval := cfg.WatchInterval
	if watchInterval <= 0 {
		watchInterval = 5 * time.Second
	}

	return &RPCProvider{
		url:           cfg.RPCURL,
		client:        &http.Client{Timeout: timeout},
		watchInterval: watchInterval,
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	Id      int64  `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	Id      int64           `json:"id"`
}

func (p *RPCProvider) call(ctx context.Context, method string, params []any, result any) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		Id:      p.nextId.Add(1),
	})
	if err != nil {
		return fmt.Errorf("unable to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("unable to build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		zap.L().Error("Wallet RPC call failed",
			zap.String("method", method),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Warn("Failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallet rpc returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("unable to decode rpc response: %w", err)
	}

	if rpcResp.Error != nil {
		if rpcResp.Error.Code == codeUserRejected {
			return fmt.Errorf("%w: %s", ErrUserRejected, rpcResp.Error.Message)
		}
		return fmt.Errorf("wallet rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unable to unmarshal rpc result: %w", err)
		}
	}

	return nil
}

func (p *RPCProvider) GetAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.call(ctx, "eth_accounts", []any{}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.call(ctx, "eth_requestAccounts", []any{}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *RPCProvider) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	var hexBalance string
	if err := p.call(ctx, "eth_getBalance", []any{address, "latest"}, &hexBalance); err != nil {
		return decimal.Zero, err
	}
	return parseHexWei(hexBalance)
}

// WatchAccounts polls eth_accounts and invokes fn on every change to the
// account list. Blocks until ctx is done.
func (p *RPCProvider) WatchAccounts(ctx context.Context, fn AccountsChangedFunc) {
	ticker := time.NewTicker(p.watchInterval)
	defer ticker.Stop()

	var last []string
	first := true

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			accounts, err := p.GetAccounts(ctx)
			if err != nil {
				zap.L().Warn("Account watch poll failed", zap.Error(err))
				continue
			}
			if first || !equalAccounts(last, accounts) {
				if !first {
					fn(accounts)
				}
				last = accounts
				first = false
			}
		}
	}
}

func equalAccounts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

func parseHexWei(hexValue string) (decimal.Decimal, error) {
	trimmed := strings.TrimPrefix(hexValue, "0x")
	if trimmed == "" {
		return decimal.Zero, nil
	}
	wei, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid hex balance %q", hexValue)
	}
	return decimal.NewFromBigInt(wei, 0), nil
}
