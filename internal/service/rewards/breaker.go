package rewards

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
)

// ErrCircuitOpen возвращается, пока breaker не пропускает вызовы.
var ErrCircuitOpen = errors.New("rewards circuit breaker is open")

// CircuitState: состояние circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker: потокобезопасный circuit breaker.
// Отказы провайдера по бизнес-причинам (provider-rejected) и отмена вызова
// клиентом не считаются сбоями. В half-open пропускается один пробный вызов.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	logger       *log.Entry
	now          func() time.Time

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	state       CircuitState
	probing     bool
}

// NewCircuitBreaker создаёт breaker, который открывается после maxFailures сбоев подряд.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, logger *log.Entry) *CircuitBreaker {
	if logger == nil {
		logger = log.WithField("component", "rewards-breaker")
	}
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		logger:       logger,
		now:          time.Now,
		state:        CircuitClosed,
	}
}

// State возвращает текущее состояние с учётом истёкшего reset timeout.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen && cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}

// Check реализует проверку для health: открытый breaker: ошибка.
func (cb *CircuitBreaker) Check(context.Context) error {
	if cb.State() == CircuitOpen {
		return ErrCircuitOpen
	}
	return nil
}

// Execute выполняет операцию через circuit breaker.
func (cb *CircuitBreaker) Execute(operation string, fn func() error) error {
	if err := cb.allow(operation); err != nil {
		return err
	}
	err := fn()
	cb.record(operation, err)
	return err
}

func (cb *CircuitBreaker) allow(operation string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailure) <= cb.resetTimeout {
			return ErrCircuitOpen
		}
		cb.state = CircuitHalfOpen
		cb.logger.WithField("operation", operation).Info("circuit breaker half-open")
	}

	if cb.probing {
		return ErrCircuitOpen
	}
	cb.probing = true
	return nil
}

func (cb *CircuitBreaker) record(operation string, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false
	if errors.Is(err, context.Canceled) {
		// Клиент ушёл: о провайдере это ничего не говорит.
		return
	}

	if !countsAsFailure(err) {
		if cb.state == CircuitHalfOpen {
			cb.logger.WithField("operation", operation).Info("circuit breaker closed")
		}
		cb.state = CircuitClosed
		cb.failures = 0
		return
	}

	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
		if cb.state != CircuitOpen {
			cb.logger.WithFields(log.Fields{
				"operation": operation,
				"failures":  cb.failures,
			}).Warn("circuit breaker opened")
		}
		cb.state = CircuitOpen
	}
}

func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	if ge, ok := domain.AsGatewayError(err); ok {
		return ge.Kind != domain.GatewayRejected
	}
	return true
}

// BreakerGateway защищает RewardsGateway circuit breaker'ом. Вызовы не повторяются.
type BreakerGateway struct {
	next    domain.RewardsGateway
	breaker *CircuitBreaker
}

// NewBreakerGateway оборачивает gateway.
func NewBreakerGateway(next domain.RewardsGateway, breaker *CircuitBreaker) *BreakerGateway {
	return &BreakerGateway{next: next, breaker: breaker}
}

func (g *BreakerGateway) SyncProfile(ctx context.Context, user domain.User) error {
	return g.call(domain.GatewayOpSyncProfile, func() error {
		return g.next.SyncProfile(ctx, user)
	})
}

func (g *BreakerGateway) EvaluateSession(ctx context.Context, userID string, items []domain.CartLine) (domain.RewardsDecision, error) {
	var decision domain.RewardsDecision
	err := g.call(domain.GatewayOpEvaluateSession, func() error {
		var err error
		decision, err = g.next.EvaluateSession(ctx, userID, items)
		return err
	})
	return decision, err
}

func (g *BreakerGateway) ConfirmLoyalty(ctx context.Context, userID string, finalTotal decimal.Decimal) error {
	return g.call(domain.GatewayOpConfirmLoyalty, func() error {
		return g.next.ConfirmLoyalty(ctx, userID, finalTotal)
	})
}

func (g *BreakerGateway) call(op domain.GatewayOperation, fn func() error) error {
	err := g.breaker.Execute(string(op), fn)
	if errors.Is(err, ErrCircuitOpen) {
		return &domain.GatewayError{Op: op, Kind: domain.GatewayTransient, Message: "circuit open", Err: err}
	}
	return err
}

var _ domain.RewardsGateway = (*BreakerGateway)(nil)
