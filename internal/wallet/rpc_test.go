package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gameverse-sync-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(method string) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, rpcErr := handler(req.Method)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.Id}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestProvider(t *testing.T, url string) *RPCProvider {
	t.Helper()
	provider, err := NewRPCProvider(models.WalletConfig{RPCURL: url})
	require.NoError(t, err)
	return provider
}

func TestNewRPCProvider_RequiresURL(t *testing.T) {
	_, err := NewRPCProvider(models.WalletConfig{})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestRequestAccounts(t *testing.T) {
	server := newTestServer(t, func(method string) (any, *rpcError) {
		assert.Equal(t, "eth_requestAccounts", method)
		return []string{"0xAbC0000000000000000000000000000000000001"}, nil
	})
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	accounts, err := provider.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0xAbC0000000000000000000000000000000000001"}, accounts)
}

func TestRequestAccounts_UserRejected(t *testing.T) {
	server := newTestServer(t, func(method string) (any, *rpcError) {
		return nil, &rpcError{Code: 4001, Message: "User rejected the request."}
	})
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	_, err := provider.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, ErrUserRejected)
}

func TestGetBalance_ParsesHexWei(t *testing.T) {
	server := newTestServer(t, func(method string) (any, *rpcError) {
		assert.Equal(t, "eth_getBalance", method)
		return "0x14d1120d7b160000", nil // 1.5e18 wei
	})
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	wei, err := provider.GetBalance(context.Background(), "0xAbC0000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.True(t, wei.Equal(decimal.New(15, 17)))
	assert.True(t, WeiToEther(wei).Equal(decimal.RequireFromString("1.5")))
}

func TestGetAccounts_UnreachableProvider(t *testing.T) {
	server := newTestServer(t, func(method string) (any, *rpcError) {
		return []string{}, nil
	})
	server.Close()

	provider := newTestProvider(t, server.URL)
	_, err := provider.GetAccounts(context.Background())
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestParseHexWei(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		fails bool
	}{
		{name: "zero", input: "0x0", want: "0"},
		{name: "empty hex", input: "0x", want: "0"},
		{name: "one ether", input: "0xde0b6b3a7640000", want: "1000000000000000000"},
		{name: "garbage", input: "0xzz", fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHexWei(tt.input)
			if tt.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestEqualAccounts(t *testing.T) {
	assert.True(t, equalAccounts([]string{"0xAbC"}, []string{"0xabc"}))
	assert.False(t, equalAccounts([]string{"0xAbC"}, []string{"0xAbD"}))
	assert.False(t, equalAccounts([]string{"0xAbC"}, nil))
}
