package loyalty

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/service/rewards"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/storage/memory"
)

func outboxMessage(t *testing.T, eventType string, payload any) *sarama.ConsumerMessage {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	value, err := json.Marshal(kafka.OutboxEnvelope{
		ID:            "outbox-1",
		AggregateType: domain.OutboxAggregateOrder,
		AggregateID:   "order-1",
		EventType:     eventType,
		Payload:       body,
	})
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: kafka.TopicOrderEvents, Key: []byte("order-1"), Value: value}
}

func TestReconcilerConfirmsFailedLoyalty(t *testing.T) {
	gateway := rewards.NewMockGateway()
	timeline := memory.NewTimelineRepository()
	r := NewReconciler(gateway, timeline, 0, nil)

	msg := outboxMessage(t, domain.OutboxEventLoyaltyConfirmationFailed, domain.LoyaltyConfirmationPayload{
		OrderID: "order-1", UserID: "user-1", TotalAmount: decimal.RequireFromString("25.00"),
	})
	require.NoError(t, r.Handle(context.Background(), msg))

	confirmed := gateway.Confirmed()
	require.Len(t, confirmed, 1)
	assert.Equal(t, "user-1", confirmed[0].UserID)
	assert.True(t, confirmed[0].Total.Equal(decimal.NewFromInt(25)))

	events, err := timeline.List(context.Background(), "order-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.TimelineLoyaltyConfirmed, events[0].Type)
}

func TestReconcilerIgnoresOtherEvents(t *testing.T) {
	gateway := rewards.NewMockGateway()
	r := NewReconciler(gateway, nil, 0, nil)

	msg := outboxMessage(t, domain.OutboxEventOrderPlaced, domain.OrderPlacedPayload{OrderID: "order-1"})
	require.NoError(t, r.Handle(context.Background(), msg))
	require.NoError(t, r.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")}))
	assert.Zero(t, gateway.Calls(domain.GatewayOpConfirmLoyalty))
}

func TestReconcilerRetriesTransientFailures(t *testing.T) {
	gateway := rewards.NewMockGateway()
	gateway.ConfirmErr = &domain.GatewayError{Op: domain.GatewayOpConfirmLoyalty, Kind: domain.GatewayTransient}
	r := NewReconciler(gateway, nil, 0, nil)

	err := r.Reconcile(context.Background(), domain.LoyaltyConfirmationPayload{OrderID: "order-1", UserID: "user-1"})
	require.Error(t, err)
	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok)
	assert.True(t, ge.Transient())
}

func TestReconcilerGivesUpOnRejection(t *testing.T) {
	gateway := rewards.NewMockGateway()
	gateway.ConfirmErr = &domain.GatewayError{Op: domain.GatewayOpConfirmLoyalty, Kind: domain.GatewayRejected, StatusCode: 409}
	timeline := memory.NewTimelineRepository()
	r := NewReconciler(gateway, timeline, 0, nil)

	require.NoError(t, r.Reconcile(context.Background(), domain.LoyaltyConfirmationPayload{OrderID: "order-1", UserID: "user-1"}))

	events, err := timeline.List(context.Background(), "order-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.TimelineLoyaltyConfirmationFailed, events[0].Type)
}

func TestReconcilerUnexpectedErrorIsRetried(t *testing.T) {
	gateway := rewards.NewMockGateway()
	gateway.ConfirmErr = errors.New("boom")
	r := NewReconciler(gateway, nil, 0, nil)

	err := r.Reconcile(context.Background(), domain.LoyaltyConfirmationPayload{OrderID: "order-1", UserID: "user-1"})
	require.Error(t, err)
}
