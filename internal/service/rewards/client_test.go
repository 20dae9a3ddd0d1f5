package rewards

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret", Timeout: timeout})
	require.NoError(t, err)
	return client
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{APIKey: "k"})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "ftp://rewards", APIKey: "k"})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "http://rewards"})
	require.Error(t, err)

	client, err := NewClient(Config{BaseURL: "https://rewards.example.com/", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://rewards.example.com", client.baseURL)
	assert.Equal(t, defaultCallTimeout, client.timeout)
}

func TestClientSyncProfile(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/profiles/user 1", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}, time.Second)

	err := client.SyncProfile(context.Background(), domain.User{
		ID:          "user 1",
		TotalOrders: 2,
		TotalSpent:  decimal.RequireFromString("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "user 1", got["userId"])
	assert.EqualValues(t, 2, got["totalOrders"])
	assert.EqualValues(t, 50, got["totalSpent"])
}

func TestClientEvaluateSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/sessions", r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"userId": "u-1",
			"items": [{"sku": "sku-1", "name": "Tea", "price": 10, "quantity": 3}],
			"cartTotal": 30.00
		}`, string(raw))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"discountAmount": "5.00",
			"appliedRewards": ["welcome"],
			"loyaltyPointsUsed": 50,
			"loyaltyPointsEarned": 3,
			"message": "ok"
		}`)
	}, time.Second)

	decision, err := client.EvaluateSession(context.Background(), "u-1", []domain.CartLine{
		{SKU: "sku-1", Name: "Tea", Price: decimal.NewFromInt(10), Quantity: 3},
	})
	require.NoError(t, err)
	assert.True(t, decision.DiscountAmount.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, []string{"welcome"}, decision.AppliedRewards)
	assert.EqualValues(t, 50, decision.LoyaltyPointsUsed)
	assert.EqualValues(t, 3, decision.LoyaltyPointsEarned)
	assert.Equal(t, "ok", decision.Message)
}

func TestClientConfirmLoyalty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/loyalty/u-1/confirm", r.URL.Path)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"totalAmount": 25.00}`, string(raw))
		w.WriteHeader(http.StatusOK)
	}, time.Second)

	require.NoError(t, client.ConfirmLoyalty(context.Background(), "u-1", decimal.NewFromInt(25)))
}

func TestClientClassifiesStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   domain.GatewayErrorKind
	}{
		{status: http.StatusBadRequest, want: domain.GatewayRejected},
		{status: http.StatusNotFound, want: domain.GatewayRejected},
		{status: http.StatusConflict, want: domain.GatewayRejected},
		{status: http.StatusRequestTimeout, want: domain.GatewayTransient},
		{status: http.StatusTooManyRequests, want: domain.GatewayTransient},
		{status: http.StatusBadGateway, want: domain.GatewayTransient},
		{status: http.StatusServiceUnavailable, want: domain.GatewayTransient},
		{status: http.StatusGatewayTimeout, want: domain.GatewayTransient},
		{status: http.StatusInternalServerError, want: domain.GatewayUnexpected},
		{status: http.StatusNotImplemented, want: domain.GatewayUnexpected},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "provider says no", tt.status)
			}, time.Second)

			err := client.ConfirmLoyalty(context.Background(), "u-1", decimal.NewFromInt(1))
			ge, ok := domain.AsGatewayError(err)
			require.True(t, ok, "expected GatewayError, got %v", err)
			assert.Equal(t, tt.want, ge.Kind)
			assert.Equal(t, tt.status, ge.StatusCode)
			assert.Equal(t, domain.GatewayOpConfirmLoyalty, ge.Op)
			assert.Equal(t, "provider says no", ge.Message)
		})
	}
}

func TestClientUndecodableResponseIsUnexpected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>oops</html>")
	}, time.Second)

	_, err := client.EvaluateSession(context.Background(), "u-1", []domain.CartLine{
		{SKU: "a", Price: decimal.NewFromInt(1), Quantity: 1},
	})
	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, domain.GatewayUnexpected, ge.Kind)
}

func TestClientTimeoutIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)

	start := time.Now()
	err := client.SyncProfile(context.Background(), domain.User{ID: "u-1"})
	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok, "expected GatewayError, got %v", err)
	assert.Equal(t, domain.GatewayTransient, ge.Kind)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClientNetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(Config{BaseURL: url, APIKey: "secret", Timeout: time.Second})
	require.NoError(t, err)

	err = client.SyncProfile(context.Background(), domain.User{ID: "u-1"})
	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok, "expected GatewayError, got %v", err)
	assert.Equal(t, domain.GatewayTransient, ge.Kind)
	assert.True(t, ge.Transient())
}
