package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProviderStub(t *testing.T, tokenCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenCalls != nil {
			tokenCalls.Add(1)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "stub-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer stub-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "COMPLETED",
			"update_time": "2026-01-02T03:04:05Z",
			"purchase_units": []map[string]any{
				{"amount": map[string]string{"value": "945.00", "currency_code": "USD"}},
			},
			"payer": map[string]string{"email_address": "buyer@example.com"},
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestVerify_CompletedOrder(t *testing.T) {
	server := newProviderStub(t, nil)
	gateway := NewPayPalGateway(server.URL, "id", "secret")

	verification, err := gateway.Verify(context.Background(), "txn-1")
	require.NoError(t, err)

	assert.True(t, verification.Verified)
	assert.Equal(t, "COMPLETED", verification.Status)
	assert.Equal(t, "buyer@example.com", verification.PayerEmail)
	assert.Equal(t, "945.00", verification.Amount.StringFixed(2))
	assert.Equal(t, "USD", verification.Currency)
}

func TestVerify_ConcurrentCallsShareCachedToken(t *testing.T) {
	var tokenCalls atomic.Int32
	server := newProviderStub(t, &tokenCalls)
	gateway := NewPayPalGateway(server.URL, "id", "secret")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < len(errs); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = gateway.Verify(context.Background(), "txn-1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "call %d", i)
	}
	assert.Equal(t, int32(1), tokenCalls.Load(), "token must be fetched once and cached")
}

func TestVerify_UnknownTransaction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "stub-token", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	gateway := NewPayPalGateway(server.URL, "id", "secret")
	verification, err := gateway.Verify(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, verification.Verified)
}
