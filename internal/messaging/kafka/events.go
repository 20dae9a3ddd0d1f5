package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// EventType определяет тип события размещения.
type EventType string

const (
	EventTypeOrderPlaced       EventType = "placement.order_placed"
	EventTypePlacementDegraded EventType = "placement.degraded"
	EventTypePlacementFailed   EventType = "placement.failed"
	EventTypeLoyaltyConfirmed  EventType = "placement.loyalty_confirmed"
)

// Topics для Kafka
const (
	// TopicPlacementEvents получает события напрямую из workflow (best effort).
	TopicPlacementEvents = "oms.placement.events"
	// TopicOrderEvents получает события из transactional outbox.
	TopicOrderEvents     = "oms.order.events"
	TopicDeadLetterQueue = "oms.dlq"
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// Заголовки outbox-сообщений, позволяют фильтровать без разбора тела.
const (
	HeaderOutboxID  = "x-outbox-id"
	HeaderEventType = "x-event-type"
	HeaderUserID    = "x-user-id"
)

// PlacementEvent представляет событие размещения заказа.
type PlacementEvent struct {
	EventType EventType      `json:"event_type"`
	OrderID   string         `json:"order_id,omitempty"`
	UserID    string         `json:"user_id"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewPlacementEvent создает новое событие размещения.
func NewPlacementEvent(eventType EventType, orderID, userID string, metadata map[string]any) *PlacementEvent {
	return &PlacementEvent{
		EventType: eventType,
		OrderID:   orderID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}

// OutboxEnvelope: формат outbox-сообщения в TopicOrderEvents.
type OutboxEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	UserID        string          `json:"user_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// ParsePlacementEvent парсит PlacementEvent из сообщения.
func ParsePlacementEvent(message *sarama.ConsumerMessage) (*PlacementEvent, error) {
	var event PlacementEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal placement event: %w", err)
	}
	return &event, nil
}

// ParseOutboxEnvelope парсит outbox-сообщение.
func ParseOutboxEnvelope(message *sarama.ConsumerMessage) (*OutboxEnvelope, error) {
	var envelope OutboxEnvelope
	if err := json.Unmarshal(message.Value, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outbox envelope: %w", err)
	}
	if envelope.EventType == "" {
		return nil, fmt.Errorf("outbox envelope %q has no event type", envelope.ID)
	}
	return &envelope, nil
}
