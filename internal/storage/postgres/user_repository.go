package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository создаёт PostgreSQL-реализацию UserRepository.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{db: store.DB()}
}

func (r *userRepository) Get(ctx context.Context, id string) (domain.User, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, total_orders, total_spent, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if errs := user.Validate(); len(errs) > 0 {
		return domain.User{}, errs[0]
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, total_orders, total_spent, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.ID, user.TotalOrders, user.TotalSpent, user.CreatedAt, user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// ApplyOrder выполняет инкремент одной UPDATE-командой: строка блокируется
// на время обновления, поэтому параллельные заказы не теряют сумм.
func (r *userRepository) ApplyOrder(ctx context.Context, id string, amount decimal.Decimal) (domain.User, error) {
	if amount.IsNegative() {
		return domain.User{}, domain.ErrAmountNegative
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users
		SET total_orders = total_orders + 1,
		    total_spent = total_spent + $2,
		    updated_at = $3
		WHERE id = $1
		RETURNING id, total_orders, total_spent, created_at, updated_at
	`, id, amount, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("apply order to user stats: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.TotalOrders, &user.TotalSpent, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

var _ domain.UserRepository = (*userRepository)(nil)
