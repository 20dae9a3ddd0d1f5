package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает состояние размещённого заказа.
type OrderStatus string

const (
	// OrderStatusPlaced: заказ записан workflow размещения.
	OrderStatusPlaced OrderStatus = "PLACED"
	// OrderStatusCancelled: заказ отменён внешним процессом.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// MoneyPlaces: точность денежных сумм в знаках после запятой.
const MoneyPlaces = 2

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	return s == OrderStatusPlaced || s == OrderStatusCancelled
}

// CartLine: неизменяемая позиция корзины или заказа.
type CartLine struct {
	SKU      string
	Name     string
	Price    decimal.Decimal
	Quantity int32
}

// LineTotal возвращает price * quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt32(l.Quantity))
}

// OrderRequest: входные данные размещения заказа.
type OrderRequest struct {
	UserID string
	Items  []CartLine
}

// Validate проверяет базовую корректность запроса.
func (r OrderRequest) Validate() error {
	var problems []error
	if r.UserID == "" {
		problems = append(problems, ErrUserIDRequired)
	}
	if len(r.Items) == 0 {
		problems = append(problems, ErrItemsRequired)
	}
	for _, item := range r.Items {
		if item.SKU == "" {
			problems = append(problems, ErrItemSKURequired)
		}
		if item.Quantity <= 0 {
			problems = append(problems, ErrItemQtyInvalid)
		}
		if item.Price.IsNegative() {
			problems = append(problems, ErrItemPriceInvalid)
		}
		// Дробные копейки округлились бы при расчёте и в NUMERIC(20,2).
		if !item.Price.Equal(item.Price.Truncate(MoneyPlaces)) {
			problems = append(problems, ErrItemPricePrecision)
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Order: результат успешного размещения.
type Order struct {
	ID              string
	UserID          string
	Items           []CartLine
	Subtotal        decimal.Decimal
	DiscountApplied decimal.Decimal
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	AppliedRewards  []string
	CreatedAt       time.Time
}

// Totals: рассчитанные суммы заказа.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Subtotal возвращает сумму price * quantity по позициям, округлённую до копеек.
func Subtotal(items []CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum.Round(MoneyPlaces)
}

// ComputeTotals применяет скидку к позициям.
// Скидка зажимается в [0, subtotal], поэтому итог никогда не уходит в минус
// и total == subtotal - discount выполняется точно.
func ComputeTotals(items []CartLine, discount decimal.Decimal) Totals {
	subtotal := Subtotal(items)

	applied := discount.Round(MoneyPlaces)
	if applied.IsNegative() {
		applied = decimal.Zero
	}
	if applied.GreaterThan(subtotal) {
		applied = subtotal
	}

	return Totals{
		Subtotal: subtotal,
		Discount: applied,
		Total:    subtotal.Sub(applied),
	}
}

// ValidateInvariants проверяет инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrStatusInvalid)
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Price.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}
	if o.TotalAmount.IsNegative() || o.DiscountApplied.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}

	subtotal := Subtotal(o.Items)
	if o.DiscountApplied.GreaterThan(subtotal) {
		errs = append(errs, ErrDiscountExceedsSubtotal)
	}
	expected := subtotal.Sub(o.DiscountApplied)
	if expected.IsNegative() {
		expected = decimal.Zero
	}
	if !expected.Equal(o.TotalAmount) {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
