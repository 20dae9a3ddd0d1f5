package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/service/rewards"
)

func TestInitRewardsGateway_MockWhenBaseURLEmpty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RewardsMockDiscountPercent = 10

	gateways, err := initRewardsGateway(cfg, log.WithField("test", "rewards"))
	require.NoError(t, err)
	assert.Nil(t, gateways.breaker)
	assert.Same(t, gateways.placement, gateways.reconciler)

	mock, ok := gateways.placement.(*rewards.MockGateway)
	require.True(t, ok, "expected mock gateway, got %T", gateways.placement)

	decision, err := mock.EvaluateSession(context.Background(), "user-1", []domain.CartLine{
		{SKU: "a", Price: decimal.RequireFromString("20"), Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "2.00", decision.DiscountAmount.StringFixed(2))
}

func TestInitRewardsGateway_HTTPClientBehindBreaker(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RewardsBaseURL = "https://rewards.example.com"
	cfg.RewardsAPIKey = "secret"

	gateways, err := initRewardsGateway(cfg, log.WithField("test", "rewards"))
	require.NoError(t, err)
	require.NotNil(t, gateways.breaker)
	assert.IsType(t, &rewards.BreakerGateway{}, gateways.placement)
	assert.IsType(t, &rewards.BreakerGateway{}, gateways.reconciler)
	assert.Equal(t, rewards.CircuitClosed, gateways.breaker.State())
}

func TestInitRewardsGateway_ReconcilerFailuresDoNotTripPlacement(t *testing.T) {
	cfg := DefaultConfig()
	// Порт 1 закрыт: каждый вызов падает сетевой ошибкой.
	cfg.RewardsBaseURL = "http://127.0.0.1:1"
	cfg.RewardsAPIKey = "secret"
	cfg.RewardsBreakerThreshold = 1

	gateways, err := initRewardsGateway(cfg, log.WithField("test", "rewards"))
	require.NoError(t, err)

	err = gateways.reconciler.ConfirmLoyalty(context.Background(), "user-1", decimal.NewFromInt(10))
	require.Error(t, err)
	err = gateways.reconciler.ConfirmLoyalty(context.Background(), "user-1", decimal.NewFromInt(10))
	require.ErrorIs(t, err, rewards.ErrCircuitOpen)

	assert.Equal(t, rewards.CircuitClosed, gateways.breaker.State())
	err = gateways.placement.SyncProfile(context.Background(), domain.User{ID: "user-1"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, rewards.ErrCircuitOpen), "placement breaker must be independent")
}

func TestInitRewardsGateway_InvalidClientConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RewardsBaseURL = "ftp://rewards.example.com"
	cfg.RewardsAPIKey = "secret"

	_, err := initRewardsGateway(cfg, log.WithField("test", "rewards"))
	require.Error(t, err)
}
