package rewards

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
)

// ConfirmCall фиксирует аргументы ConfirmLoyalty.
type ConfirmCall struct {
	UserID string
	Total  decimal.Decimal
}

// MockGateway: конфигурируемая in-process реализация RewardsGateway
// для локального запуска и тестов. Поля настраиваются до первого вызова.
type MockGateway struct {
	// Decision возвращается из EvaluateSession.
	Decision domain.RewardsDecision
	// DiscountPercent, если задан, заменяет Decision.DiscountAmount процентом от корзины.
	DiscountPercent decimal.Decimal
	// Delay имитирует медленного провайдера; соблюдает отмену контекста.
	Delay time.Duration

	SyncErr     error
	EvaluateErr error
	ConfirmErr  error

	mu        sync.Mutex
	calls     map[domain.GatewayOperation]int
	evaluated [][]domain.CartLine
	confirmed []ConfirmCall
}

// NewMockGateway возвращает mock с успешным сценарием без скидки.
func NewMockGateway() *MockGateway {
	return &MockGateway{calls: make(map[domain.GatewayOperation]int)}
}

// NewPercentMockGateway возвращает mock, дающий percent% скидки от корзины.
func NewPercentMockGateway(percent decimal.Decimal) *MockGateway {
	m := NewMockGateway()
	m.DiscountPercent = percent
	m.Decision.Message = "mock rewards provider"
	return m
}

func (m *MockGateway) SyncProfile(ctx context.Context, _ domain.User) error {
	m.track(domain.GatewayOpSyncProfile, nil, nil)
	if err := m.wait(ctx, domain.GatewayOpSyncProfile); err != nil {
		return err
	}
	if m.SyncErr != nil {
		return domain.ClassifyGatewayError(domain.GatewayOpSyncProfile, m.SyncErr)
	}
	return nil
}

func (m *MockGateway) EvaluateSession(ctx context.Context, _ string, items []domain.CartLine) (domain.RewardsDecision, error) {
	m.track(domain.GatewayOpEvaluateSession, items, nil)
	if err := m.wait(ctx, domain.GatewayOpEvaluateSession); err != nil {
		return domain.RewardsDecision{}, err
	}
	if m.EvaluateErr != nil {
		return domain.RewardsDecision{}, domain.ClassifyGatewayError(domain.GatewayOpEvaluateSession, m.EvaluateErr)
	}

	decision := m.Decision
	decision.AppliedRewards = append([]string(nil), m.Decision.AppliedRewards...)
	if m.DiscountPercent.IsPositive() {
		decision.DiscountAmount = domain.Subtotal(items).
			Mul(m.DiscountPercent).
			Div(decimal.NewFromInt(100)).
			Round(domain.MoneyPlaces)
		if decision.DiscountAmount.IsPositive() && len(decision.AppliedRewards) == 0 {
			decision.AppliedRewards = []string{"percent-discount"}
		}
	}
	return decision, nil
}

func (m *MockGateway) ConfirmLoyalty(ctx context.Context, userID string, finalTotal decimal.Decimal) error {
	if err := m.wait(ctx, domain.GatewayOpConfirmLoyalty); err != nil {
		m.track(domain.GatewayOpConfirmLoyalty, nil, nil)
		return err
	}
	if m.ConfirmErr != nil {
		m.track(domain.GatewayOpConfirmLoyalty, nil, nil)
		return domain.ClassifyGatewayError(domain.GatewayOpConfirmLoyalty, m.ConfirmErr)
	}
	m.track(domain.GatewayOpConfirmLoyalty, nil, &ConfirmCall{UserID: userID, Total: finalTotal})
	return nil
}

// Calls возвращает число вызовов операции.
func (m *MockGateway) Calls(op domain.GatewayOperation) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Confirmed возвращает успешно подтверждённые вызовы ConfirmLoyalty.
func (m *MockGateway) Confirmed() []ConfirmCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ConfirmCall(nil), m.confirmed...)
}

// Evaluated возвращает позиции, переданные в EvaluateSession.
func (m *MockGateway) Evaluated() [][]domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.CartLine(nil), m.evaluated...)
}

func (m *MockGateway) track(op domain.GatewayOperation, items []domain.CartLine, confirm *ConfirmCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[domain.GatewayOperation]int)
	}
	m.calls[op]++
	if items != nil {
		m.evaluated = append(m.evaluated, append([]domain.CartLine(nil), items...))
	}
	if confirm != nil {
		m.confirmed = append(m.confirmed, *confirm)
	}
}

func (m *MockGateway) wait(ctx context.Context, op domain.GatewayOperation) error {
	if m.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return domain.ClassifyGatewayError(op, ctx.Err())
	}
}

var _ domain.RewardsGateway = (*MockGateway)(nil)
