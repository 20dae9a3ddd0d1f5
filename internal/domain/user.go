package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User хранит агрегированную статистику покупателя.
// TotalOrders и TotalSpent меняются только атомарным инкрементом в хранилище.
type User struct {
	ID          string
	TotalOrders int64
	TotalSpent  decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate проверяет, что статистика не отрицательная.
func (u *User) Validate() []error {
	var errs []error
	if u.ID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if u.TotalOrders < 0 || u.TotalSpent.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}
	return errs
}
