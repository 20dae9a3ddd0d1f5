package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUserIDRequired: в запросе не указан идентификатор пользователя.
	ErrUserIDRequired = errors.New("user_id is required")
	// ErrItemsRequired: в заказе нет ни одной позиции.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// ErrItemSKURequired: у позиции не указан SKU.
	ErrItemSKURequired = errors.New("item sku is required")
	// ErrItemQtyInvalid: количество товара должно быть положительным.
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// ErrItemPriceInvalid: цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// ErrItemPricePrecision: цена точнее копейки.
	ErrItemPricePrecision = errors.New("item price must have at most 2 decimal places")
	// ErrAmountNegative: итоговая сумма или скидка отрицательные.
	ErrAmountNegative = errors.New("amount must be non-negative")
	// ErrDiscountExceedsSubtotal: скидка больше суммы позиций.
	ErrDiscountExceedsSubtotal = errors.New("discount exceeds subtotal")
	// ErrAmountMismatch: итог не совпадает с subtotal минус скидка.
	ErrAmountMismatch = errors.New("order total does not match subtotal minus discount")
	// ErrStatusInvalid: статус заказа вне допустимого набора.
	ErrStatusInvalid = errors.New("order status is invalid")

	// ErrUserNotFound возвращается, если пользователь не найден в хранилище.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists возвращается при повторном создании пользователя.
	ErrUserExists = errors.New("user already exists")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderExists сигнализирует о конфликте идентификаторов при сохранении заказа.
	ErrOrderExists = errors.New("order already exists")

	// ErrRewardsUnavailable: провайдер вознаграждений не ответил до записи заказа.
	ErrRewardsUnavailable = errors.New("rewards unavailable")
	// ErrPersistenceFailure: не удалось записать заказ или статистику пользователя.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrLoyaltyConfirmationFailed: заказ записан, но подтверждение лояльности не прошло.
	ErrLoyaltyConfirmationFailed = errors.New("loyalty confirmation failed")

	// ErrOutboxPublish: ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// PlacementErrorKind классифицирует терминальные ошибки размещения заказа.
type PlacementErrorKind string

const (
	PlacementUserNotFound       PlacementErrorKind = "user-not-found"
	PlacementRewardsUnavailable PlacementErrorKind = "rewards-unavailable"
	PlacementPersistenceFailure PlacementErrorKind = "persistence-failure"
)

// PlacementError описывает терминальный отказ размещения.
// OrderID заполнен, если заказ уже записан, но обновление статистики не прошло.
type PlacementError struct {
	Kind    PlacementErrorKind
	Step    PlacementStep
	UserID  string
	OrderID string
	Err     error
}

func (e *PlacementError) Error() string {
	msg := fmt.Sprintf("place order for user %s: %s at step %s", e.UserID, e.Kind, e.Step)
	if e.OrderID != "" {
		msg += " (order " + e.OrderID + " persisted)"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap отдаёт и сентинел вида ошибки, и исходную причину.
func (e *PlacementError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (k PlacementErrorKind) sentinel() error {
	switch k {
	case PlacementUserNotFound:
		return ErrUserNotFound
	case PlacementRewardsUnavailable:
		return ErrRewardsUnavailable
	case PlacementPersistenceFailure:
		return ErrPersistenceFailure
	default:
		return nil
	}
}

// AsPlacementError достаёт PlacementError из цепочки.
func AsPlacementError(err error) (*PlacementError, bool) {
	var pe *PlacementError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ValidationError собирает замечания валидации запроса.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	return "invalid order request: " + errors.Join(e.Problems...).Error()
}

func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// IsValidation проверяет, является ли ошибка ошибкой валидации запроса.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
