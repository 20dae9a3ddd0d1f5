package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
)

// userRepositoryInMemory хранит статистику пользователей в памяти.
// Инкремент выполняется под write-lock, поэтому обновления не теряются.
type userRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.User
}

// NewUserRepository возвращает in-memory репозиторий пользователей.
func NewUserRepository() domain.UserRepository {
	return &userRepositoryInMemory{
		items: make(map[string]domain.User),
	}
}

func (r *userRepositoryInMemory) Get(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.items[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepositoryInMemory) Create(_ context.Context, user domain.User) (domain.User, error) {
	if errs := user.Validate(); len(errs) > 0 {
		return domain.User{}, errs[0]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[user.ID]; exists {
		return domain.User{}, domain.ErrUserExists
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.items[user.ID] = user
	return user, nil
}

func (r *userRepositoryInMemory) ApplyOrder(_ context.Context, id string, amount decimal.Decimal) (domain.User, error) {
	if amount.IsNegative() {
		return domain.User{}, domain.ErrAmountNegative
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.items[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	user.TotalOrders++
	user.TotalSpent = user.TotalSpent.Add(amount)
	user.UpdatedAt = time.Now().UTC()
	r.items[id] = user
	return user, nil
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
