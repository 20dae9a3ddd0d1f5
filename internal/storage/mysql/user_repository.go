package mysql

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

// NewUserRepository создаёт MySQL-реализацию UserRepository.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{db: store.DB()}
}

func (r *userRepository) Get(ctx context.Context, id string) (domain.User, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, total_orders, total_spent, created_at, updated_at
		FROM users WHERE id = ?
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
		VALUES (?, ?, ?, ?, ?)
	`, user.ID, user.TotalOrders, user.TotalSpent, user.CreatedAt, user.UpdatedAt); err != nil {
		if isDuplicateEntry(err) {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// ApplyOrder инкрементирует статистику и читает результат в той же транзакции:
// строка остаётся заблокированной до commit, поэтому чтение видит ровно свой инкремент.
func (r *userRepository) ApplyOrder(ctx context.Context, id string, amount decimal.Decimal) (user domain.User, err error) {
	if amount.IsNegative() {
		return domain.User{}, domain.ErrAmountNegative
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET total_orders = total_orders + 1,
		    total_spent = total_spent + ?,
		    updated_at = ?
		WHERE id = ?
	`, amount, time.Now().UTC(), id)
	if err != nil {
		return domain.User{}, fmt.Errorf("apply order to user stats: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = domain.ErrUserNotFound
		return domain.User{}, err
	}

	user, err = scanUser(tx.QueryRowContext(ctx, `
		SELECT id, total_orders, total_spent, created_at, updated_at
		FROM users WHERE id = ?
	`, id))
	if err != nil {
		return domain.User{}, fmt.Errorf("read back user stats: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.User{}, fmt.Errorf("commit user stats: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.TotalOrders, &user.TotalSpent, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

var _ domain.UserRepository = (*userRepository)(nil)
