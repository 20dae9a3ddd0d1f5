package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
)

// ErrUnsupportedOutboxEvent возвращается для событий, которых нет в контракте TopicOrderEvents.
var ErrUnsupportedOutboxEvent = errors.New("unsupported outbox event")

// OutboxTopicPublisher публикует события размещения из outbox в Kafka topic.
// Ключ сообщения: ID заказа, поэтому события одного заказа попадают в одну партицию.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
	// strict: принимать только события контракта; DLQ принимает всё, что не удалось доставить.
	strict   bool
	logger   *log.Entry
}

// NewOutboxPublisher создаёт паблишер outbox для topic (по умолчанию TopicOrderEvents).
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	logger := log.WithField("component", "kafka-outbox-publisher")
	if producer != nil && producer.logger != nil {
		logger = producer.logger.WithField("component", "kafka-outbox-publisher")
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
		strict:   topic != TopicDeadLetterQueue,
		logger:   logger.WithField("topic", topic),
	}
}

// placementRouting: поля payload, которые выносятся в конверт и заголовки.
type placementRouting struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	// Payload: исходное событие внутри DLQ-обёртки.
	Payload json.RawMessage `json:"payload"`
}

func decodeRouting(payload []byte) (placementRouting, error) {
	var routing placementRouting
	if err := json.Unmarshal(payload, &routing); err != nil {
		return placementRouting{}, err
	}
	if routing.UserID == "" && len(routing.Payload) > 0 {
		var inner placementRouting
		if err := json.Unmarshal(routing.Payload, &inner); err == nil {
			routing.UserID = inner.UserID
			if routing.OrderID == "" {
				routing.OrderID = inner.OrderID
			}
		}
	}
	return routing, nil
}

// Publish проверяет событие, дополняет конверт пользователем заказа и отправляет его.
func (p *OutboxTopicPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.strict && !knownOutboxEvent(event.EventType) {
		return fmt.Errorf("%w: %q", ErrUnsupportedOutboxEvent, event.EventType)
	}

	routing, err := decodeRouting(event.Payload)
	if err != nil {
		return fmt.Errorf("decode %s payload of outbox message %s: %w", event.EventType, event.ID, err)
	}
	orderID := event.AggregateID
	if orderID == "" {
		orderID = routing.OrderID
	}
	key := orderID
	if key == "" {
		key = event.ID
	}

	envelope := OutboxEnvelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   orderID,
		EventType:     event.EventType,
		UserID:        routing.UserID,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	}
	headers := map[string]string{
		HeaderOutboxID:  event.ID,
		HeaderEventType: event.EventType,
	}
	if routing.UserID != "" {
		headers[HeaderUserID] = routing.UserID
	}

	logger := p.logger.WithFields(log.Fields{
		"outbox_id":  event.ID,
		"order_id":   orderID,
		"user_id":    routing.UserID,
		"event_type": event.EventType,
	})
	if err := p.producer.PublishWithHeaders(p.topic, key, envelope, headers); err != nil {
		logger.WithError(err).Warn("failed to publish outbox event")
		return err
	}
	logger.Debug("outbox event published")
	return nil
}

func knownOutboxEvent(eventType string) bool {
	switch eventType {
	case domain.OutboxEventOrderPlaced, domain.OutboxEventLoyaltyConfirmationFailed, domain.OutboxEventUserStatsReconcile:
		return true
	default:
		return false
	}
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
