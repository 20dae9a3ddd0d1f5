package placement

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/messaging/kafka"
)

// Запись событий best effort: ошибки логируются и не влияют на результат размещения.

func (w *Workflow) recordOrderPlaced(ctx context.Context, order domain.Order) {
	w.appendTimeline(ctx, order, domain.TimelineOrderPlaced, "")
	w.enqueueOutbox(ctx, order.ID, domain.OutboxEventOrderPlaced, domain.OrderPlacedPayload{
		OrderID:         order.ID,
		UserID:          order.UserID,
		Subtotal:        order.Subtotal,
		DiscountApplied: order.DiscountApplied,
		TotalAmount:     order.TotalAmount,
		AppliedRewards:  order.AppliedRewards,
	})
	w.publishEvent(kafka.EventTypeOrderPlaced, order.ID, order.UserID, map[string]any{
		"total_amount":     order.TotalAmount.StringFixed(domain.MoneyPlaces),
		"discount_applied": order.DiscountApplied.StringFixed(domain.MoneyPlaces),
		"items_count":      len(order.Items),
	})
}

func (w *Workflow) appendTimeline(ctx context.Context, order domain.Order, eventType, reason string) {
	if w.timeline == nil {
		return
	}

	event := domain.TimelineEvent{
		OrderID:  order.ID,
		UserID:   order.UserID,
		Type:     eventType,
		Reason:   reason,
		Amount:   domain.TimelineAmount(order.TotalAmount),
		Occurred: w.now(),
	}
	if err := w.timeline.Append(ctx, event); err != nil {
		w.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID,
			"user_id":    order.UserID,
			"event_type": eventType,
		}).Warn("failed to append timeline event")
		return
	}
	if w.metrics != nil {
		w.metrics.RecordTimelineEvent()
	}
}

func (w *Workflow) enqueueOutbox(ctx context.Context, orderID, eventType string, payload any) {
	if w.outbox == nil {
		return
	}

	fields := log.Fields{"order_id": orderID, "event_type": eventType}
	body, err := json.Marshal(payload)
	if err != nil {
		w.logger.WithError(err).WithFields(fields).Warn("failed to marshal outbox payload")
		return
	}

	msg := domain.OutboxMessage{
		ID:            uuid.NewString(),
		AggregateType: domain.OutboxAggregateOrder,
		AggregateID:   orderID,
		EventType:     eventType,
		Payload:       body,
	}
	if _, err := w.outbox.Enqueue(ctx, msg); err != nil {
		w.logger.WithError(err).WithFields(fields).Warn("failed to enqueue outbox message")
		return
	}
	if w.metrics != nil {
		w.metrics.RecordOutboxEvent()
	}
}

func (w *Workflow) publishEvent(eventType kafka.EventType, orderID, userID string, metadata map[string]any) {
	if w.events == nil {
		return
	}

	key := orderID
	if key == "" {
		key = userID
	}
	event := kafka.NewPlacementEvent(eventType, orderID, userID, metadata)
	if err := w.events.PublishEvent(w.eventsTopic, key, event); err != nil {
		w.logger.WithError(err).WithFields(log.Fields{
			"order_id":   orderID,
			"event_type": eventType,
		}).Warn("failed to publish placement event")
	}
}
