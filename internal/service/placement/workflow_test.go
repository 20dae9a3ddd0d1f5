package placement

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/metrics"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/service/rewards"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/storage/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type failingUsers struct {
	domain.UserRepository
	applyErr error
	getErr   error
	getCalls int
	mu       sync.Mutex
}

func (f *failingUsers) Get(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	f.getCalls++
	f.mu.Unlock()
	if f.getErr != nil {
		return domain.User{}, f.getErr
	}
	return f.UserRepository.Get(ctx, id)
}

func (f *failingUsers) ApplyOrder(ctx context.Context, id string, amount decimal.Decimal) (domain.User, error) {
	if f.applyErr != nil {
		return domain.User{}, f.applyErr
	}
	return f.UserRepository.ApplyOrder(ctx, id, amount)
}

type failingOrders struct {
	domain.OrderRepository
	createErr   error
	createCalls atomic.Int32
}

func (f *failingOrders) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	f.createCalls.Add(1)
	if f.createErr != nil {
		return domain.Order{}, f.createErr
	}
	return f.OrderRepository.Create(ctx, order)
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []*kafka.PlacementEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(topic, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	if e, ok := event.(*kafka.PlacementEvent); ok {
		p.events = append(p.events, e)
	}
	return p.err
}

func (p *recordingPublisher) types() []kafka.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]kafka.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type fixture struct {
	users    *failingUsers
	orders   *failingOrders
	outbox   *memory.OutboxRepository
	timeline domain.TimelineRepository
	gateway  *rewards.MockGateway
	events   *recordingPublisher
	registry *prometheus.Registry
	workflow *Workflow
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	logger := log.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		users:    &failingUsers{UserRepository: memory.NewUserRepository()},
		orders:   &failingOrders{OrderRepository: memory.NewOrderRepository()},
		outbox:   memory.NewOutboxRepository(),
		timeline: memory.NewTimelineRepository(),
		gateway:  rewards.NewMockGateway(),
		events:   &recordingPublisher{},
		registry: prometheus.NewRegistry(),
	}

	base := []Option{
		WithLogger(log.NewEntry(logger)),
		WithOutbox(f.outbox),
		WithTimeline(f.timeline),
		WithEventPublisher(f.events, ""),
		WithMetrics(metrics.NewPlacementMetricsWithRegisterer(f.registry)),
		WithCallTimeout(time.Second),
	}
	wf, err := NewWorkflow(f.users, f.orders, f.gateway, append(base, opts...)...)
	require.NoError(t, err)
	f.workflow = wf
	return f
}

func (f *fixture) seedUser(t *testing.T, id string, orders int64, spent string) {
	t.Helper()
	_, err := f.users.Create(context.Background(), domain.User{ID: id, TotalOrders: orders, TotalSpent: dec(spent)})
	require.NoError(t, err)
}

func (f *fixture) user(t *testing.T, id string) domain.User {
	t.Helper()
	user, err := f.users.UserRepository.Get(context.Background(), id)
	require.NoError(t, err)
	return user
}

func (f *fixture) ordersOf(t *testing.T, userID string) []domain.Order {
	t.Helper()
	orders, err := f.orders.ListByUser(context.Background(), userID, 0)
	require.NoError(t, err)
	return orders
}

func (f *fixture) timelineTypes(t *testing.T, orderID string) []string {
	t.Helper()
	events, err := f.timeline.List(context.Background(), orderID)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func (f *fixture) counter(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if matchLabels(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	for k, v := range labels {
		found := false
		for _, pair := range m.GetLabel() {
			if pair.GetName() == k && pair.GetValue() == v {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func cart(price string, qty int32) domain.OrderRequest {
	return domain.OrderRequest{
		UserID: "user-1",
		Items:  []domain.CartLine{{SKU: "sku-1", Name: "Coffee beans", Price: dec(price), Quantity: qty}},
	}
}

func TestPlaceOrder_WorkedExample(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 2, "50.0")
	f.gateway.Decision = domain.RewardsDecision{DiscountAmount: dec("5"), AppliedRewards: []string{"promo-5"}}

	res, err := f.workflow.PlaceOrder(context.Background(), cart("10", 3))
	require.NoError(t, err)
	require.False(t, res.Degraded())

	order := res.Order
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, domain.OrderStatusPlaced, order.Status)
	assert.True(t, order.Subtotal.Equal(dec("30")), "subtotal %s", order.Subtotal)
	assert.True(t, order.DiscountApplied.Equal(dec("5")), "discount %s", order.DiscountApplied)
	assert.True(t, order.TotalAmount.Equal(dec("25")), "total %s", order.TotalAmount)
	assert.Equal(t, []string{"promo-5"}, order.AppliedRewards)
	assert.Empty(t, order.ValidateInvariants())

	user := f.user(t, "user-1")
	assert.EqualValues(t, 3, user.TotalOrders)
	assert.True(t, user.TotalSpent.Equal(dec("75")), "spent %s", user.TotalSpent)
	assert.Equal(t, user.TotalOrders, res.User.TotalOrders)

	stored, err := f.orders.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(dec("25")))

	confirmed := f.gateway.Confirmed()
	require.Len(t, confirmed, 1)
	assert.True(t, confirmed[0].Total.Equal(dec("25")))

	assert.Equal(t, []string{domain.TimelineOrderPlaced, domain.TimelineUserStatsUpdated, domain.TimelineLoyaltyConfirmed},
		f.timelineTypes(t, order.ID))
	assert.Equal(t, []string{domain.OutboxEventOrderPlaced}, f.outbox.EventTypes(order.ID))
	assert.Equal(t, []kafka.EventType{kafka.EventTypeOrderPlaced, kafka.EventTypeLoyaltyConfirmed}, f.events.types())

	assert.Equal(t, 1.0, f.counter(t, "oms_placements_placed_total", nil))
	assert.Equal(t, 1.0, f.counter(t, "oms_rewards_gateway_calls_total", map[string]string{
		"operation": string(domain.GatewayOpConfirmLoyalty), "result": "ok",
	}))
}

func TestPlaceOrder_DiscountClampedToSubtotal(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 0, "0")
	f.gateway.Decision = domain.RewardsDecision{DiscountAmount: dec("15")}

	res, err := f.workflow.PlaceOrder(context.Background(), cart("10", 1))
	require.NoError(t, err)

	assert.True(t, res.Order.TotalAmount.Equal(decimal.Zero), "total %s", res.Order.TotalAmount)
	assert.True(t, res.Order.DiscountApplied.Equal(dec("10")), "discount %s", res.Order.DiscountApplied)

	user := f.user(t, "user-1")
	assert.EqualValues(t, 1, user.TotalOrders)
	assert.True(t, user.TotalSpent.Equal(decimal.Zero))
}

func TestPlaceOrder_UserNotFoundTouchesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.PlaceOrder(context.Background(), cart("10", 1))
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	pe, ok := domain.AsPlacementError(err)
	require.True(t, ok)
	assert.Equal(t, domain.PlacementUserNotFound, pe.Kind)
	assert.Equal(t, domain.StepResolveUser, pe.Step)

	assert.Zero(t, f.orders.createCalls.Load())
	assert.Empty(t, f.ordersOf(t, "user-1"))
	assert.Zero(t, f.gateway.Calls(domain.GatewayOpSyncProfile))
	assert.Zero(t, f.gateway.Calls(domain.GatewayOpEvaluateSession))
	assert.Empty(t, f.outbox.AllPending())
	assert.Equal(t, 1.0, f.counter(t, "oms_placements_failed_total", map[string]string{"reason": "user_not_found"}))
}

func TestPlaceOrder_UserStoreReadFailure(t *testing.T) {
	f := newFixture(t)
	f.users.getErr = errors.New("connection reset")

	_, err := f.workflow.PlaceOrder(context.Background(), cart("10", 1))
	pe, ok := domain.AsPlacementError(err)
	require.True(t, ok)
	assert.Equal(t, domain.PlacementPersistenceFailure, pe.Kind)
	assert.Equal(t, domain.StepResolveUser, pe.Step)
	assert.Empty(t, pe.OrderID)
	assert.Zero(t, f.orders.createCalls.Load())
}

func TestPlaceOrder_EvaluateFailureCreatesNoOrder(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 2, "50")
	f.gateway.EvaluateErr = &domain.GatewayError{
		Op: domain.GatewayOpEvaluateSession, Kind: domain.GatewayRejected, StatusCode: 422, Message: "campaign closed",
	}

	_, err := f.workflow.PlaceOrder(context.Background(), cart("10", 3))
	require.ErrorIs(t, err, domain.ErrRewardsUnavailable)

	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, domain.GatewayRejected, ge.Kind)
	assert.Equal(t, "campaign closed", ge.Message)

	assert.Zero(t, f.orders.createCalls.Load())
	user := f.user(t, "user-1")
	assert.EqualValues(t, 2, user.TotalOrders)
	assert.True(t, user.TotalSpent.Equal(dec("50")))
	assert.Zero(t, f.gateway.Calls(domain.GatewayOpConfirmLoyalty))
	assert.Equal(t, []kafka.EventType{kafka.EventTypePlacementFailed}, f.events.types())
}

func TestPlaceOrder_SyncProfileRunsBeforeEvaluate(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 0, "0")
	f.gateway.SyncErr = errors.New("dial tcp: connection refused")

	_, err := f.workflow.PlaceOrder(context.Background(), cart("10", 1))
	require.ErrorIs(t, err, domain.ErrRewardsUnavailable)
	assert.Equal(t, 1, f.gateway.Calls(domain.GatewayOpSyncProfile))
	assert.Zero(t, f.gateway.Calls(domain.GatewayOpEvaluateSession))
	assert.Zero(t, f.orders.createCalls.Load())
}

func TestPlaceOrder_ConfirmFailureIsDegradedSuccess(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 2, "50")
	f.gateway.Decision = domain.RewardsDecision{DiscountAmount: dec("5")}
	f.gateway.ConfirmErr = &domain.GatewayError{Op: domain.GatewayOpConfirmLoyalty, Kind: domain.GatewayTransient}

	first, err := f.workflow.PlaceOrder(context.Background(), cart("10", 3))
	require.NoError(t, err)
	require.True(t, first.Degraded())
	assert.Equal(t, WarningLoyaltyConfirmationFailed, first.Warning.Code)
	assert.ErrorIs(t, first.Warning, domain.ErrLoyaltyConfirmationFailed)
	assert.NotEmpty(t, first.Order.ID)

	user := f.user(t, "user-1")
	assert.EqualValues(t, 3, user.TotalOrders)
	assert.True(t, user.TotalSpent.Equal(dec("75")))
	require.Len(t, f.ordersOf(t, "user-1"), 1)

	assert.Contains(t, f.timelineTypes(t, first.Order.ID), domain.TimelineLoyaltyConfirmationFailed)
	assert.Equal(t, []string{domain.OutboxEventLoyaltyConfirmationFailed, domain.OutboxEventOrderPlaced},
		f.outbox.EventTypes(first.Order.ID))
	assert.Equal(t, 1.0, f.counter(t, "oms_placements_degraded_total", nil))

	second, err := f.workflow.PlaceOrder(context.Background(), cart("10", 3))
	require.NoError(t, err)
	assert.NotEqual(t, first.Order.ID, second.Order.ID)
	require.Len(t, f.ordersOf(t, "user-1"), 2)

	user = f.user(t, "user-1")
	assert.EqualValues(t, 4, user.TotalOrders)
	assert.True(t, user.TotalSpent.Equal(dec("100")))
}

func TestPlaceOrder_StatsFailureReportsPersistedOrder(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 0, "0")
	f.users.applyErr = errors.New("deadlock detected")

	_, err := f.workflow.PlaceOrder(context.Background(), cart("10", 1))
	require.ErrorIs(t, err, domain.ErrPersistenceFailure)

	pe, ok := domain.AsPlacementError(err)
	require.True(t, ok)
	assert.Equal(t, domain.StepUpdateUserStats, pe.Step)
	require.NotEmpty(t, pe.OrderID)

	_, getErr := f.orders.Get(context.Background(), pe.OrderID)
	require.NoError(t, getErr, "order must stay persisted")
	assert.Contains(t, f.outbox.EventTypes(pe.OrderID), domain.OutboxEventUserStatsReconcile)
	assert.Contains(t, f.timelineTypes(t, pe.OrderID), domain.TimelineUserStatsUpdateFailed)
	assert.Zero(t, f.gateway.Calls(domain.GatewayOpConfirmLoyalty))
}

func TestPlaceOrder_OrderStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 1, "10")
	f.orders.createErr = errors.New("disk full")

	_, err := f.workflow.PlaceOrder(context.Background(), cart("10", 1))
	require.ErrorIs(t, err, domain.ErrPersistenceFailure)

	pe, ok := domain.AsPlacementError(err)
	require.True(t, ok)
	assert.Equal(t, domain.StepPersistOrder, pe.Step)
	assert.Empty(t, pe.OrderID)

	user := f.user(t, "user-1")
	assert.EqualValues(t, 1, user.TotalOrders)
	assert.Zero(t, f.gateway.Calls(domain.GatewayOpConfirmLoyalty))
}

func TestPlaceOrder_GatewayTimeoutBeforePersistence(t *testing.T) {
	f := newFixture(t, WithCallTimeout(20*time.Millisecond))
	f.seedUser(t, "user-1", 0, "0")
	f.gateway.Delay = time.Second

	start := time.Now()
	_, err := f.workflow.PlaceOrder(context.Background(), cart("10", 1))
	require.ErrorIs(t, err, domain.ErrRewardsUnavailable)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok)
	assert.True(t, ge.Transient())
	assert.Zero(t, f.orders.createCalls.Load())
}

type slowConfirmGateway struct {
	*rewards.MockGateway
}

func (g slowConfirmGateway) ConfirmLoyalty(ctx context.Context, _ string, _ decimal.Decimal) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestPlaceOrder_GatewayTimeoutAfterPersistenceIsDegraded(t *testing.T) {
	logger := log.New()
	logger.SetOutput(io.Discard)

	users := memory.NewUserRepository()
	orders := memory.NewOrderRepository()
	_, err := users.Create(context.Background(), domain.User{ID: "user-1"})
	require.NoError(t, err)

	wf, err := NewWorkflow(users, orders, slowConfirmGateway{rewards.NewMockGateway()},
		WithLogger(log.NewEntry(logger)), WithCallTimeout(20*time.Millisecond))
	require.NoError(t, err)

	res, err := wf.PlaceOrder(context.Background(), cart("10", 1))
	require.NoError(t, err)
	require.True(t, res.Degraded())

	ge, ok := domain.AsGatewayError(res.Warning)
	require.True(t, ok)
	assert.Equal(t, domain.GatewayTransient, ge.Kind)
	assert.Equal(t, domain.GatewayOpConfirmLoyalty, ge.Op)
}

func TestPlaceOrder_CallerCancellationBeforePersistence(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 0, "0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.workflow.PlaceOrder(ctx, cart("10", 1))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.orders.createCalls.Load())
	assert.EqualValues(t, 0, f.user(t, "user-1").TotalOrders)
}

func TestPlaceOrder_InvalidRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.PlaceOrder(context.Background(), domain.OrderRequest{UserID: "user-1"})
	require.True(t, domain.IsValidation(err))
	require.ErrorIs(t, err, domain.ErrItemsRequired)
	assert.Zero(t, f.users.getCalls)
	assert.Zero(t, f.gateway.Calls(domain.GatewayOpSyncProfile))
}

func TestPlaceOrder_EventFailuresDoNotFailPlacement(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 0, "0")
	f.events.err = errors.New("kafka down")

	res, err := f.workflow.PlaceOrder(context.Background(), cart("10", 1))
	require.NoError(t, err)
	assert.False(t, res.Degraded())
}

func TestPlaceOrder_ItemsAreFrozen(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 0, "0")

	req := cart("10", 1)
	res, err := f.workflow.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	req.Items[0].Quantity = 99
	stored, err := f.orders.Get(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stored.Items[0].Quantity)

	evaluated := f.gateway.Evaluated()
	require.Len(t, evaluated, 1)
	assert.EqualValues(t, 1, evaluated[0][0].Quantity)
}

func TestPlaceOrder_ConcurrentPlacementsForOneUser(t *testing.T) {
	const n = 64

	f := newFixture(t)
	f.seedUser(t, "user-1", 0, "0")
	f.gateway.DiscountPercent = dec("10")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		totals = decimal.Zero
		errs   []error
	)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := cart(decimal.NewFromInt(int64(i+1)).Div(decimal.NewFromInt(4)).String(), int32(i%3+1))
			res, err := f.workflow.PlaceOrder(context.Background(), req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			totals = totals.Add(res.Order.TotalAmount)
		}(i)
	}
	wg.Wait()

	require.Empty(t, errs)
	user := f.user(t, "user-1")
	assert.EqualValues(t, n, user.TotalOrders)
	assert.True(t, user.TotalSpent.Equal(totals), "spent %s, want %s", user.TotalSpent, totals)
	assert.Len(t, f.ordersOf(t, "user-1"), n)
}

func TestEvaluateRewardsHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", 5, "100")
	f.gateway.Decision = domain.RewardsDecision{DiscountAmount: dec("2.5"), LoyaltyPointsEarned: 3}

	eval, err := f.workflow.EvaluateRewards(context.Background(), cart("10", 2))
	require.NoError(t, err)
	assert.True(t, eval.Totals.Total.Equal(dec("17.5")))
	assert.EqualValues(t, 3, eval.Decision.LoyaltyPointsEarned)
	assert.EqualValues(t, 5, eval.User.TotalOrders)

	assert.Zero(t, f.orders.createCalls.Load())
	assert.Zero(t, f.gateway.Calls(domain.GatewayOpConfirmLoyalty))
	assert.EqualValues(t, 5, f.user(t, "user-1").TotalOrders)
}

func TestNewWorkflowRequiresCollaborators(t *testing.T) {
	_, err := NewWorkflow(nil, memory.NewOrderRepository(), rewards.NewMockGateway())
	require.Error(t, err)
}
