package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RewardsGateway: три операции внешнего провайдера вознаграждений.
// Реализации не повторяют вызовы и возвращают *GatewayError.
type RewardsGateway interface {
	// SyncProfile сообщает провайдеру текущий профиль пользователя.
	SyncProfile(ctx context.Context, user User) error
	// EvaluateSession возвращает решение по скидкам для переданных позиций.
	EvaluateSession(ctx context.Context, userID string, items []CartLine) (RewardsDecision, error)
	// ConfirmLoyalty подтверждает списание баллов по итоговой сумме.
	ConfirmLoyalty(ctx context.Context, userID string, finalTotal decimal.Decimal) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(ctx context.Context, event TimelineEvent) error
	List(ctx context.Context, orderID string) ([]TimelineEvent, error)
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(ctx context.Context, key string) (IdempotencyRecord, error)
	MarkDone(ctx context.Context, key string, responseBody []byte, statusCode int) error
	MarkFailed(ctx context.Context, key string, responseBody []byte, statusCode int) error
	// Delete освобождает ключ, чтобы повтор с ним выполнился заново.
	// Отсутствующий ключ не считается ошибкой.
	Delete(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error)
}

// PlacementStep задаёт константы шагов для метрик/логов.
type PlacementStep string

const (
	StepResolveUser     PlacementStep = "resolve_user"
	StepEvaluateRewards PlacementStep = "evaluate_rewards"
	StepComputeTotals   PlacementStep = "compute_totals"
	StepPersistOrder    PlacementStep = "persist_order"
	StepUpdateUserStats PlacementStep = "update_user_stats"
	StepConfirmLoyalty  PlacementStep = "confirm_loyalty"
)

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
