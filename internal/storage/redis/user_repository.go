// Package redis хранит статистику пользователей в Redis-хешах.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
)

const (
	userKeyPrefix = "oms:user:"

	fieldTotalOrders = "total_orders"
	fieldSpentCents  = "total_spent_cents"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
)

var createUserScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'total_orders', ARGV[1], 'total_spent_cents', ARGV[2], 'created_at', ARGV[3], 'updated_at', ARGV[3])
return 1
`)

// Инкремент выполняется одним скриптом, поэтому конкурентные заказы не теряют обновлений.
var applyOrderScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
local orders = redis.call('HINCRBY', KEYS[1], 'total_orders', 1)
local cents = redis.call('HINCRBY', KEYS[1], 'total_spent_cents', ARGV[1])
redis.call('HSET', KEYS[1], 'updated_at', ARGV[2])
local created = redis.call('HGET', KEYS[1], 'created_at')
return {orders, cents, created}
`)

type userRepository struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewUserRepository создаёт Redis-реализацию UserRepository.
func NewUserRepository(client redis.UniversalClient) domain.UserRepository {
	return &userRepository{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *userRepository) Get(ctx context.Context, id string) (domain.User, error) {
	fields, err := r.client.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return domain.User{}, fmt.Errorf("redis get user: %w", err)
	}
	if len(fields) == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}

	user := domain.User{ID: id}
	if user.TotalOrders, err = strconv.ParseInt(fields[fieldTotalOrders], 10, 64); err != nil {
		return domain.User{}, fmt.Errorf("parse total_orders for %s: %w", id, err)
	}
	cents, err := strconv.ParseInt(fields[fieldSpentCents], 10, 64)
	if err != nil {
		return domain.User{}, fmt.Errorf("parse total_spent for %s: %w", id, err)
	}
	user.TotalSpent = fromCents(cents)
	if user.CreatedAt, err = parseUnixNano(fields[fieldCreatedAt]); err != nil {
		return domain.User{}, fmt.Errorf("parse created_at for %s: %w", id, err)
	}
	if user.UpdatedAt, err = parseUnixNano(fields[fieldUpdatedAt]); err != nil {
		return domain.User{}, fmt.Errorf("parse updated_at for %s: %w", id, err)
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if errs := user.Validate(); len(errs) > 0 {
		return domain.User{}, errs[0]
	}

	now := r.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	created, err := createUserScript.Run(ctx, r.client, []string{userKey(user.ID)},
		user.TotalOrders, toCents(user.TotalSpent), user.CreatedAt.UnixNano(),
	).Int()
	if err != nil {
		return domain.User{}, fmt.Errorf("redis create user: %w", err)
	}
	if created == 0 {
		return domain.User{}, domain.ErrUserExists
	}
	user.TotalSpent = fromCents(toCents(user.TotalSpent))
	return user, nil
}

func (r *userRepository) ApplyOrder(ctx context.Context, id string, amount decimal.Decimal) (domain.User, error) {
	if amount.IsNegative() {
		return domain.User{}, domain.ErrAmountNegative
	}

	now := r.now()
	res, err := applyOrderScript.Run(ctx, r.client, []string{userKey(id)}, toCents(amount), now.UnixNano()).Slice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("redis apply order: %w", err)
	}
	if len(res) != 3 {
		return domain.User{}, fmt.Errorf("redis apply order: unexpected reply %v", res)
	}

	orders, _ := res[0].(int64)
	cents, _ := res[1].(int64)
	createdRaw, _ := res[2].(string)
	createdAt, err := parseUnixNano(createdRaw)
	if err != nil {
		return domain.User{}, fmt.Errorf("parse created_at for %s: %w", id, err)
	}

	return domain.User{
		ID:          id,
		TotalOrders: orders,
		TotalSpent:  fromCents(cents),
		CreatedAt:   createdAt,
		UpdatedAt:   now,
	}, nil
}

func userKey(id string) string {
	return userKeyPrefix + id
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Round(domain.MoneyPlaces).Shift(domain.MoneyPlaces).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -domain.MoneyPlaces)
}

func parseUnixNano(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n).UTC(), nil
}

var _ domain.UserRepository = (*userRepository)(nil)
