package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Типы событий таймлайна заказа.
const (
	TimelineOrderPlaced               = "OrderPlaced"
	TimelineUserStatsUpdated          = "UserStatsUpdated"
	TimelineUserStatsUpdateFailed     = "UserStatsUpdateFailed"
	TimelineLoyaltyConfirmed          = "LoyaltyConfirmed"
	TimelineLoyaltyConfirmationFailed = "LoyaltyConfirmationFailed"
)

var (
	// ErrTimelineOrderIDRequired возвращается для события без заказа.
	ErrTimelineOrderIDRequired = errors.New("timeline event order id is required")
	// ErrTimelineUnknownType возвращается для типа вне списка событий размещения.
	ErrTimelineUnknownType = errors.New("unknown timeline event type")
)

// TimelineEvent описывает событие в жизненном цикле заказа.
// Amount: итоговая сумма заказа, к которой относится событие; не задана, если сумма неизвестна.
type TimelineEvent struct {
	OrderID  string
	UserID   string
	Type     string
	Reason   string
	Amount   decimal.NullDecimal
	Occurred time.Time
}

// KnownTimelineType сообщает, относится ли тип к событиям размещения.
func KnownTimelineType(eventType string) bool {
	switch eventType {
	case TimelineOrderPlaced, TimelineUserStatsUpdated, TimelineUserStatsUpdateFailed,
		TimelineLoyaltyConfirmed, TimelineLoyaltyConfirmationFailed:
		return true
	default:
		return false
	}
}

// Validate проверяет событие перед записью.
func (e TimelineEvent) Validate() error {
	if e.OrderID == "" {
		return ErrTimelineOrderIDRequired
	}
	if !KnownTimelineType(e.Type) {
		return fmt.Errorf("%w: %q", ErrTimelineUnknownType, e.Type)
	}
	return nil
}

// TimelineAmount оборачивает сумму для TimelineEvent.Amount.
func TimelineAmount(amount decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: amount.Round(MoneyPlaces), Valid: true}
}
