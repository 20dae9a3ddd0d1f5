package domain

import "github.com/shopspring/decimal"

// OutboxAggregateOrder: тип агрегата для событий заказа.
const OutboxAggregateOrder = "order"

// Типы событий transactional outbox.
const (
	OutboxEventOrderPlaced               = "OrderPlaced"
	OutboxEventLoyaltyConfirmationFailed = "LoyaltyConfirmationFailed"
	OutboxEventUserStatsReconcile        = "UserStatsReconcileRequired"
)

// OrderPlacedPayload: тело события OrderPlaced.
type OrderPlacedPayload struct {
	OrderID         string          `json:"order_id"`
	UserID          string          `json:"user_id"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AppliedRewards  []string        `json:"applied_rewards,omitempty"`
}

// LoyaltyConfirmationPayload: тело событий, требующих повторного
// подтверждения лояльности или сверки статистики пользователя.
type LoyaltyConfirmationPayload struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Reason      string          `json:"reason,omitempty"`
}
