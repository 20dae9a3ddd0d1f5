package placement

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/metrics"
)

const tracerName = "github.com/vladislavdragonenkov/loyalty-oms/internal/service/placement"

// WarningLoyaltyConfirmationFailed: код предупреждения degraded success.
const WarningLoyaltyConfirmationFailed = "LOYALTY_CONFIRMATION_FAILED"

// Warning сопровождает успешный результат, если внешнее подтверждение не прошло.
// Заказ при этом записан, повторять размещение нельзя.
type Warning struct {
	Code string
	Err  error
}

func (w *Warning) Error() string {
	return w.Code + ": " + w.Err.Error()
}

func (w *Warning) Unwrap() error {
	return w.Err
}

// Result: итог размещения.
type Result struct {
	Order    domain.Order
	User     domain.User
	Decision domain.RewardsDecision
	Warning  *Warning
}

// Degraded сообщает, что заказ записан без подтверждения лояльности.
func (r Result) Degraded() bool {
	return r.Warning != nil
}

// Evaluation: результат оценки корзины без записи заказа.
type Evaluation struct {
	User     domain.User
	Decision domain.RewardsDecision
	Totals   domain.Totals
}

// Workflow размещает заказ: пользователь → вознаграждения → суммы →
// заказ → статистика → подтверждение лояльности. Шаги строго последовательны.
type Workflow struct {
	users   domain.UserRepository
	orders  domain.OrderRepository
	gateway domain.RewardsGateway

	outbox      domain.OutboxRepository
	timeline    domain.TimelineRepository
	events      EventPublisher
	eventsTopic string

	metrics     *metrics.PlacementMetrics
	tracer      trace.Tracer
	logger      *log.Entry
	callTimeout time.Duration
	now         func() time.Time
}

// NewWorkflow создаёт workflow размещения.
func NewWorkflow(users domain.UserRepository, orders domain.OrderRepository, gateway domain.RewardsGateway, opts ...Option) (*Workflow, error) {
	if users == nil || orders == nil || gateway == nil {
		return nil, errors.New("placement workflow requires user store, order store and rewards gateway")
	}

	w := &Workflow{
		users:       users,
		orders:      orders,
		gateway:     gateway,
		eventsTopic: kafka.TopicPlacementEvents,
		tracer:      otel.Tracer(tracerName),
		logger:      log.WithField("component", "placement"),
		callTimeout: defaultCallTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// PlaceOrder выполняет размещение заказа.
//
// Ошибка всегда *domain.PlacementError, *domain.ValidationError или ошибка
// контекста, если вызывающий ушёл до записи заказа. Сбой подтверждения
// лояльности не считается ошибкой: он возвращается в Result.Warning.
func (w *Workflow) PlaceOrder(ctx context.Context, req domain.OrderRequest) (Result, error) {
	start := w.now()
	if w.metrics != nil {
		w.metrics.RecordPlacementStarted()
		defer func() { w.metrics.RecordPlacementFinished(w.now().Sub(start)) }()
	}

	ctx, span := w.tracer.Start(ctx, "placement.PlaceOrder", trace.WithAttributes(
		attribute.String("oms.user_id", req.UserID),
		attribute.Int("oms.items", len(req.Items)),
	))
	defer span.End()

	logger := w.logger.WithField("user_id", req.UserID)

	if err := req.Validate(); err != nil {
		w.recordFailure(span, "invalid_request", err)
		return Result{}, err
	}
	items := cloneItems(req.Items)

	user, decision, err := w.evaluate(ctx, req.UserID, items)
	if err != nil {
		w.recordFailure(span, failureReason(err), err)
		logger.WithError(err).Warn("order placement rejected before persistence")
		w.publishEvent(kafka.EventTypePlacementFailed, "", req.UserID, map[string]any{"reason": failureReason(err)})
		return Result{}, err
	}

	stepStart := w.now()
	totals := domain.ComputeTotals(items, decision.DiscountAmount)
	w.observeStep(domain.StepComputeTotals, stepStart)

	// Последняя точка, где отмена вызова ещё ничего не оставляет после себя.
	if err := ctx.Err(); err != nil {
		w.recordFailure(span, "canceled", err)
		return Result{}, fmt.Errorf("place order for user %s: %w", req.UserID, err)
	}

	// Дальше заказ становится durable: отмена вызывающего не должна
	// оборвать обновление статистики или подтверждение.
	durableCtx := context.WithoutCancel(ctx)

	order, err := w.persistOrder(durableCtx, user.ID, items, totals, decision)
	if err != nil {
		pe := &domain.PlacementError{
			Kind:   domain.PlacementPersistenceFailure,
			Step:   domain.StepPersistOrder,
			UserID: user.ID,
			Err:    err,
		}
		w.recordFailure(span, "persist_order", pe)
		logger.WithError(err).Error("failed to persist order")
		return Result{}, pe
	}
	logger = logger.WithField("order_id", order.ID)
	span.SetAttributes(attribute.String("oms.order_id", order.ID))
	w.recordOrderPlaced(durableCtx, order)

	updated, err := w.applyUserStats(durableCtx, order)
	if err != nil {
		pe := &domain.PlacementError{
			Kind:    domain.PlacementPersistenceFailure,
			Step:    domain.StepUpdateUserStats,
			UserID:  user.ID,
			OrderID: order.ID,
			Err:     err,
		}
		w.recordFailure(span, "update_user_stats", pe)
		logger.WithError(err).Error("order persisted but user statistics update failed")
		w.appendTimeline(durableCtx, order, domain.TimelineUserStatsUpdateFailed, err.Error())
		w.enqueueOutbox(durableCtx, order.ID, domain.OutboxEventUserStatsReconcile, domain.LoyaltyConfirmationPayload{
			OrderID:     order.ID,
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount,
			Reason:      err.Error(),
		})
		return Result{}, pe
	}
	w.appendTimeline(durableCtx, order, domain.TimelineUserStatsUpdated, "")

	result := Result{Order: order, User: updated, Decision: decision}
	if warning := w.confirmLoyalty(durableCtx, order); warning != nil {
		result.Warning = warning
		span.AddEvent("loyalty confirmation failed", trace.WithAttributes(attribute.String("error", warning.Err.Error())))
		if w.metrics != nil {
			w.metrics.RecordDegraded()
		}
		logger.WithError(warning.Err).Warn("order placed without loyalty confirmation")
		return result, nil
	}

	if w.metrics != nil {
		w.metrics.RecordPlaced()
	}
	span.SetStatus(codes.Ok, "")
	logger.WithFields(log.Fields{
		"total_amount":     order.TotalAmount.StringFixed(domain.MoneyPlaces),
		"discount_applied": order.DiscountApplied.StringFixed(domain.MoneyPlaces),
	}).Info("order placed")
	return result, nil
}

// EvaluateRewards оценивает корзину без записи заказа и изменения статистики.
func (w *Workflow) EvaluateRewards(ctx context.Context, req domain.OrderRequest) (Evaluation, error) {
	ctx, span := w.tracer.Start(ctx, "placement.EvaluateRewards", trace.WithAttributes(
		attribute.String("oms.user_id", req.UserID),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Evaluation{}, err
	}
	items := cloneItems(req.Items)

	user, decision, err := w.evaluate(ctx, req.UserID, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Evaluation{}, err
	}

	return Evaluation{
		User:     user,
		Decision: decision,
		Totals:   domain.ComputeTotals(items, decision.DiscountAmount),
	}, nil
}

// evaluate выполняет шаги до первой записи: поиск пользователя и оценку корзины.
func (w *Workflow) evaluate(ctx context.Context, userID string, items []domain.CartLine) (domain.User, domain.RewardsDecision, error) {
	stepStart := w.now()
	user, err := w.users.Get(ctx, userID)
	w.observeStep(domain.StepResolveUser, stepStart)
	if err != nil {
		kind := domain.PlacementPersistenceFailure
		if errors.Is(err, domain.ErrUserNotFound) {
			kind = domain.PlacementUserNotFound
		}
		return domain.User{}, domain.RewardsDecision{}, &domain.PlacementError{
			Kind:   kind,
			Step:   domain.StepResolveUser,
			UserID: userID,
			Err:    err,
		}
	}

	stepStart = w.now()
	defer w.observeStep(domain.StepEvaluateRewards, stepStart)

	rewardsErr := func(err error) error {
		return &domain.PlacementError{
			Kind:   domain.PlacementRewardsUnavailable,
			Step:   domain.StepEvaluateRewards,
			UserID: userID,
			Err:    err,
		}
	}

	if err := w.callGateway(ctx, domain.GatewayOpSyncProfile, func(ctx context.Context) error {
		return w.gateway.SyncProfile(ctx, user)
	}); err != nil {
		return domain.User{}, domain.RewardsDecision{}, rewardsErr(err)
	}

	var decision domain.RewardsDecision
	if err := w.callGateway(ctx, domain.GatewayOpEvaluateSession, func(ctx context.Context) error {
		var err error
		decision, err = w.gateway.EvaluateSession(ctx, userID, cloneItems(items))
		return err
	}); err != nil {
		return domain.User{}, domain.RewardsDecision{}, rewardsErr(err)
	}

	return user, decision, nil
}

func (w *Workflow) persistOrder(ctx context.Context, userID string, items []domain.CartLine, totals domain.Totals, decision domain.RewardsDecision) (domain.Order, error) {
	stepStart := w.now()
	defer w.observeStep(domain.StepPersistOrder, stepStart)

	order := domain.Order{
		UserID:          userID,
		Items:           items,
		Subtotal:        totals.Subtotal,
		DiscountApplied: totals.Discount,
		TotalAmount:     totals.Total,
		Status:          domain.OrderStatusPlaced,
		AppliedRewards:  append([]string(nil), decision.AppliedRewards...),
		CreatedAt:       w.now(),
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errors.Join(errs...)
	}

	return w.orders.Create(ctx, order)
}

func (w *Workflow) applyUserStats(ctx context.Context, order domain.Order) (domain.User, error) {
	stepStart := w.now()
	defer w.observeStep(domain.StepUpdateUserStats, stepStart)

	return w.users.ApplyOrder(ctx, order.UserID, order.TotalAmount)
}

// confirmLoyalty выполняется после записи заказа; ошибка превращается в предупреждение.
func (w *Workflow) confirmLoyalty(ctx context.Context, order domain.Order) *Warning {
	stepStart := w.now()
	defer w.observeStep(domain.StepConfirmLoyalty, stepStart)

	err := w.callGateway(ctx, domain.GatewayOpConfirmLoyalty, func(ctx context.Context) error {
		return w.gateway.ConfirmLoyalty(ctx, order.UserID, order.TotalAmount)
	})
	if err == nil {
		w.appendTimeline(ctx, order, domain.TimelineLoyaltyConfirmed, "")
		w.publishEvent(kafka.EventTypeLoyaltyConfirmed, order.ID, order.UserID, map[string]any{
			"total_amount": order.TotalAmount.StringFixed(domain.MoneyPlaces),
		})
		return nil
	}

	w.appendTimeline(ctx, order, domain.TimelineLoyaltyConfirmationFailed, err.Error())
	w.enqueueOutbox(ctx, order.ID, domain.OutboxEventLoyaltyConfirmationFailed, domain.LoyaltyConfirmationPayload{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Reason:      err.Error(),
	})
	w.publishEvent(kafka.EventTypePlacementDegraded, order.ID, order.UserID, map[string]any{
		"reason": err.Error(),
	})

	return &Warning{
		Code: WarningLoyaltyConfirmationFailed,
		Err:  fmt.Errorf("%w: %w", domain.ErrLoyaltyConfirmationFailed, err),
	}
}

// callGateway ограничивает вызов таймаутом и приводит ошибку к GatewayError.
func (w *Workflow) callGateway(ctx context.Context, op domain.GatewayOperation, call func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()

	callCtx, span := w.tracer.Start(callCtx, "rewards."+string(op))
	defer span.End()

	start := w.now()
	err := call(callCtx)
	result := "ok"
	if err != nil {
		ge := domain.ClassifyGatewayError(op, err)
		result = string(ge.Kind)
		span.RecordError(ge)
		span.SetStatus(codes.Error, ge.Error())
		err = ge
	}
	if w.metrics != nil {
		w.metrics.RecordGatewayCall(string(op), result, w.now().Sub(start))
	}
	return err
}

func (w *Workflow) observeStep(step domain.PlacementStep, start time.Time) {
	if w.metrics != nil {
		w.metrics.RecordStepDuration(string(step), w.now().Sub(start))
	}
}

func (w *Workflow) recordFailure(span trace.Span, reason string, err error) {
	if w.metrics != nil {
		w.metrics.RecordFailed(reason)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func failureReason(err error) string {
	pe, ok := domain.AsPlacementError(err)
	if !ok {
		return "unknown"
	}
	switch pe.Kind {
	case domain.PlacementUserNotFound:
		return "user_not_found"
	case domain.PlacementRewardsUnavailable:
		return "rewards_unavailable"
	default:
		return string(pe.Step)
	}
}

func cloneItems(items []domain.CartLine) []domain.CartLine {
	return append([]domain.CartLine(nil), items...)
}
