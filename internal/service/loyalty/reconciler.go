package loyalty

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/messaging/kafka"
)

const defaultConfirmTimeout = 3 * time.Second

// Reconciler повторяет подтверждение лояльности для заказов, размещённых
// с предупреждением. Читает события LoyaltyConfirmationFailed из outbox topic.
type Reconciler struct {
	gateway  domain.RewardsGateway
	timeline domain.TimelineRepository
	logger   *log.Entry
	timeout  time.Duration
}

// NewReconciler создаёт обработчик. timeline может быть nil.
func NewReconciler(gateway domain.RewardsGateway, timeline domain.TimelineRepository, timeout time.Duration, logger *log.Entry) *Reconciler {
	if logger == nil {
		logger = log.WithField("component", "loyalty-reconciler")
	}
	if timeout <= 0 {
		timeout = defaultConfirmTimeout
	}
	return &Reconciler{gateway: gateway, timeline: timeline, logger: logger, timeout: timeout}
}

// Handle реализует kafka.MessageHandler. Возвращённая ошибка означает,
// что сообщение стоит обработать повторно.
func (r *Reconciler) Handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	envelope, err := kafka.ParseOutboxEnvelope(message)
	if err != nil {
		r.logger.WithError(err).WithField("offset", message.Offset).Warn("skipping malformed outbox message")
		return nil
	}
	if envelope.EventType != domain.OutboxEventLoyaltyConfirmationFailed {
		return nil
	}

	var payload domain.LoyaltyConfirmationPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		r.logger.WithError(err).WithField("outbox_id", envelope.ID).Warn("skipping malformed loyalty payload")
		return nil
	}
	return r.Reconcile(ctx, payload)
}

// Reconcile подтверждает лояльность по одному заказу.
// Отказ провайдера фиксируется в таймлайне и не повторяется.
func (r *Reconciler) Reconcile(ctx context.Context, payload domain.LoyaltyConfirmationPayload) error {
	logger := r.logger.WithFields(log.Fields{
		"order_id": payload.OrderID,
		"user_id":  payload.UserID,
	})

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.gateway.ConfirmLoyalty(callCtx, payload.UserID, payload.TotalAmount)
	if err == nil {
		r.appendTimeline(ctx, payload, domain.TimelineLoyaltyConfirmed, "reconciled")
		logger.Info("loyalty confirmation reconciled")
		return nil
	}

	ge := domain.ClassifyGatewayError(domain.GatewayOpConfirmLoyalty, err)
	if ge.Kind == domain.GatewayRejected {
		r.appendTimeline(ctx, payload, domain.TimelineLoyaltyConfirmationFailed, ge.Error())
		logger.WithError(ge).Warn("loyalty confirmation rejected by provider, giving up")
		return nil
	}

	logger.WithError(ge).Warn("loyalty confirmation still failing")
	return fmt.Errorf("confirm loyalty for order %s: %w", payload.OrderID, ge)
}

func (r *Reconciler) appendTimeline(ctx context.Context, payload domain.LoyaltyConfirmationPayload, eventType, reason string) {
	if r.timeline == nil || payload.OrderID == "" {
		return
	}
	err := r.timeline.Append(ctx, domain.TimelineEvent{
		OrderID:  payload.OrderID,
		UserID:   payload.UserID,
		Type:     eventType,
		Reason:   reason,
		Amount:   domain.TimelineAmount(payload.TotalAmount),
		Occurred: time.Now().UTC(),
	})
	if err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"order_id":   payload.OrderID,
			"user_id":    payload.UserID,
			"event_type": eventType,
		}).Warn("failed to append timeline event")
	}
}
