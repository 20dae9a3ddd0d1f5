package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ и назначает ему ID, если он пустой.
	// Возвращает ErrOrderExists, если запись с таким ID уже есть.
	Create(ctx context.Context, order Order) (Order, error)
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// ListByUser возвращает заказы пользователя, новые первыми; limit <= 0 снимает ограничение.
	ListByUser(ctx context.Context, userID string, limit int) ([]Order, error)
}

// UserRepository описывает хранилище статистики пользователей.
type UserRepository interface {
	// Get возвращает пользователя или ErrUserNotFound.
	Get(ctx context.Context, id string) (User, error)
	// Create регистрирует пользователя; ErrUserExists при повторе.
	Create(ctx context.Context, user User) (User, error)
	// ApplyOrder атомарно выполняет total_orders += 1 и total_spent += amount
	// и возвращает обновлённое состояние. Конкурентные вызовы не теряют обновлений.
	ApplyOrder(ctx context.Context, id string, amount decimal.Decimal) (User, error)
}
