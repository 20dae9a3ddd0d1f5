package grpcsvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	ordersv1 "github.com/vladislavdragonenkov/loyalty-oms/api/orders/v1"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/service/placement"
)

const defaultListOrdersLimit = 100

// Placer: операции workflow размещения, которые использует gRPC-слой.
type Placer interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (placement.Result, error)
	EvaluateRewards(ctx context.Context, req domain.OrderRequest) (placement.Evaluation, error)
}

// OrderService реализует gRPC API поверх workflow размещения и хранилищ.
type OrderService struct {
	ordersv1.UnimplementedOrderServiceServer

	placer   Placer
	orders   domain.OrderRepository
	users    domain.UserRepository
	timeline domain.TimelineRepository
	idemRepo domain.IdempotencyRepository
	idemTTL  time.Duration
	logger   *log.Entry
}

// Deps: зависимости OrderService. Timeline и Idempotency опциональны.
type Deps struct {
	Placer         Placer
	Orders         domain.OrderRepository
	Users          domain.UserRepository
	Timeline       domain.TimelineRepository
	Idempotency    domain.IdempotencyRepository
	IdempotencyTTL time.Duration
	Logger         *log.Entry
}

// NewOrderService конструирует сервис с зависимостями.
func NewOrderService(deps Deps) (*OrderService, error) {
	if deps.Placer == nil || deps.Orders == nil || deps.Users == nil {
		return nil, errors.New("order service requires placer, order and user repositories")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &OrderService{
		placer:   deps.Placer,
		orders:   deps.Orders,
		users:    deps.Users,
		timeline: deps.Timeline,
		idemRepo: deps.Idempotency,
		idemTTL:  ttl,
		logger:   logger,
	}, nil
}

// PlaceOrder размещает заказ. Degraded success возвращается как OK с warning.
func (s *OrderService) PlaceOrder(ctx context.Context, req *ordersv1.PlaceOrderRequest) (*ordersv1.PlaceOrderResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	return withIdempotency(s, ctx, ordersv1.OrderService_PlaceOrder_FullMethodName, req,
		func() *ordersv1.PlaceOrderResponse { return new(ordersv1.PlaceOrderResponse) },
		func(ctx context.Context) (*ordersv1.PlaceOrderResponse, error) {
			return s.placeOrderInternal(ctx, req)
		},
	)
}

func (s *OrderService) placeOrderInternal(ctx context.Context, req *ordersv1.PlaceOrderRequest) (*ordersv1.PlaceOrderResponse, error) {
	orderReq, err := fromProtoRequest(req.GetUserId(), req.GetItems())
	if err != nil {
		return nil, err
	}

	result, err := s.placer.PlaceOrder(ctx, orderReq)
	if err != nil {
		return nil, s.placementStatus(err, req.GetUserId())
	}

	resp := &ordersv1.PlaceOrderResponse{
		Order:   toProtoOrder(result.Order),
		User:    toProtoUser(result.User),
		Rewards: toProtoDecision(result.Decision),
	}
	if result.Warning != nil {
		s.logger.WithError(result.Warning.Err).WithFields(log.Fields{
			"user_id":  result.Order.UserID,
			"order_id": result.Order.ID,
		}).Warn("order placed with warning")
		resp.Warning = &ordersv1.Warning{Code: result.Warning.Code, Message: warningMessage(result.Warning.Code)}
	}
	return resp, nil
}

// EvaluateRewards рассчитывает скидку без записи заказа.
func (s *OrderService) EvaluateRewards(ctx context.Context, req *ordersv1.EvaluateRewardsRequest) (*ordersv1.EvaluateRewardsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	orderReq, err := fromProtoRequest(req.GetUserId(), req.GetItems())
	if err != nil {
		return nil, err
	}

	eval, err := s.placer.EvaluateRewards(ctx, orderReq)
	if err != nil {
		return nil, s.placementStatus(err, req.GetUserId())
	}

	return &ordersv1.EvaluateRewardsResponse{
		User:            toProtoUser(eval.User),
		Rewards:         toProtoDecision(eval.Decision),
		Subtotal:        formatMoney(eval.Totals.Subtotal),
		DiscountApplied: formatMoney(eval.Totals.Discount),
		TotalAmount:     formatMoney(eval.Totals.Total),
	}, nil
}

// GetOrder возвращает заказ и таймлайн событий.
func (s *OrderService) GetOrder(ctx context.Context, req *ordersv1.GetOrderRequest) (*ordersv1.GetOrderResponse, error) {
	if req.GetOrderId() == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}

	order, err := s.orders.Get(ctx, req.GetOrderId())
	if err != nil {
		s.logger.WithError(err).WithField("order_id", req.GetOrderId()).Warn("failed to load order")
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, status.Error(codes.NotFound, domain.ErrOrderNotFound.Error())
		}
		return nil, status.Error(codes.Internal, "failed to load order")
	}

	return &ordersv1.GetOrderResponse{
		Order:    toProtoOrder(order),
		Timeline: s.buildTimeline(ctx, order.ID),
	}, nil
}

// ListOrders возвращает заказы пользователя.
func (s *OrderService) ListOrders(ctx context.Context, req *ordersv1.ListOrdersRequest) (*ordersv1.ListOrdersResponse, error) {
	if req.GetUserId() == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}

	limit := int(req.GetPageSize())
	if limit <= 0 {
		limit = defaultListOrdersLimit
	}

	orders, err := s.orders.ListByUser(ctx, req.GetUserId(), limit)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", req.GetUserId()).Error("failed to list orders")
		return nil, status.Error(codes.Internal, "failed to list orders")
	}

	result := make([]*ordersv1.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, toProtoOrder(order))
	}
	return &ordersv1.ListOrdersResponse{Orders: result}, nil
}

// GetUser возвращает статистику пользователя.
func (s *OrderService) GetUser(ctx context.Context, req *ordersv1.GetUserRequest) (*ordersv1.GetUserResponse, error) {
	if req.GetUserId() == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}

	user, err := s.users.Get(ctx, req.GetUserId())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, status.Error(codes.NotFound, domain.ErrUserNotFound.Error())
		}
		s.logger.WithError(err).WithField("user_id", req.GetUserId()).Error("failed to load user")
		return nil, status.Error(codes.Internal, "failed to load user")
	}
	return &ordersv1.GetUserResponse{User: toProtoUser(user)}, nil
}

// placementStatus переводит ошибку workflow в gRPC-статус.
// Причина пишется в лог, клиент получает фиксированный текст по виду ошибки.
func (s *OrderService) placementStatus(err error, userID string) error {
	fields := log.Fields{"user_id": userID}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return status.Error(codes.InvalidArgument, validation.Error())
	}

	if pe, ok := domain.AsPlacementError(err); ok {
		fields["step"] = pe.Step
		switch pe.Kind {
		case domain.PlacementUserNotFound:
			return status.Errorf(codes.NotFound, "user %s not found", userID)
		case domain.PlacementRewardsUnavailable:
			s.logger.WithError(err).WithFields(fields).Warn("rewards provider unavailable")
			return status.Error(codes.Unavailable, "rewards provider is unavailable, retry later")
		case domain.PlacementPersistenceFailure:
			s.logger.WithError(err).WithFields(fields).WithField("order_id", pe.OrderID).Error("order placement persistence failure")
			if pe.OrderID != "" {
				return status.Errorf(codes.Internal, "order %s was persisted but user statistics update failed, do not resubmit", pe.OrderID)
			}
			return status.Error(codes.Internal, "failed to persist order")
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request deadline exceeded")
	}

	s.logger.WithError(err).WithFields(fields).Error("unexpected placement error")
	return status.Error(codes.Internal, "failed to place order")
}

func (s *OrderService) buildTimeline(ctx context.Context, orderID string) []*ordersv1.TimelineEvent {
	if s.timeline == nil {
		return nil
	}
	events, err := s.timeline.List(ctx, orderID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("failed to list timeline events")
		return nil
	}
	result := make([]*ordersv1.TimelineEvent, 0, len(events))
	for _, event := range events {
		pb := &ordersv1.TimelineEvent{
			Type:     event.Type,
			Reason:   event.Reason,
			UnixTime: event.Occurred.Unix(),
			UserId:   event.UserID,
		}
		if event.Amount.Valid {
			pb.Amount = formatMoney(event.Amount.Decimal)
		}
		result = append(result, pb)
	}
	return result
}

func fromProtoRequest(userID string, items []*ordersv1.CartLine) (domain.OrderRequest, error) {
	req := domain.OrderRequest{
		UserID: strings.TrimSpace(userID),
		Items:  make([]domain.CartLine, 0, len(items)),
	}
	for idx, item := range items {
		if item == nil {
			return domain.OrderRequest{}, status.Errorf(codes.InvalidArgument, "item[%d] is nil", idx)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(item.GetPrice()))
		if err != nil {
			return domain.OrderRequest{}, status.Errorf(codes.InvalidArgument, "item[%d].price %q is not a decimal", idx, item.GetPrice())
		}
		req.Items = append(req.Items, domain.CartLine{
			SKU:      item.GetSku(),
			Name:     item.GetName(),
			Price:    price,
			Quantity: item.GetQuantity(),
		})
	}
	if err := req.Validate(); err != nil {
		return domain.OrderRequest{}, status.Error(codes.InvalidArgument, err.Error())
	}
	return req, nil
}

func toProtoLines(items []domain.CartLine) []*ordersv1.CartLine {
	lines := make([]*ordersv1.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, &ordersv1.CartLine{
			Sku:      item.SKU,
			Name:     item.Name,
			Price:    formatMoney(item.Price),
			Quantity: item.Quantity,
		})
	}
	return lines
}

func toProtoOrder(order domain.Order) *ordersv1.Order {
	return &ordersv1.Order{
		Id:              order.ID,
		UserId:          order.UserID,
		Status:          string(order.Status),
		Items:           toProtoLines(order.Items),
		Subtotal:        formatMoney(order.Subtotal),
		DiscountApplied: formatMoney(order.DiscountApplied),
		TotalAmount:     formatMoney(order.TotalAmount),
		AppliedRewards:  append([]string(nil), order.AppliedRewards...),
		CreatedAt:       order.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toProtoUser(user domain.User) *ordersv1.User {
	if user.ID == "" {
		return nil
	}
	return &ordersv1.User{
		Id:          user.ID,
		TotalOrders: user.TotalOrders,
		TotalSpent:  formatMoney(user.TotalSpent),
	}
}

func toProtoDecision(decision domain.RewardsDecision) *ordersv1.RewardsDecision {
	return &ordersv1.RewardsDecision{
		DiscountAmount:      formatMoney(decision.DiscountAmount),
		AppliedRewards:      append([]string(nil), decision.AppliedRewards...),
		LoyaltyPointsUsed:   decision.LoyaltyPointsUsed,
		LoyaltyPointsEarned: decision.LoyaltyPointsEarned,
		Message:             decision.Message,
	}
}

func formatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(domain.MoneyPlaces)
}

var _ ordersv1.OrderServiceServer = (*OrderService)(nil)

func warningMessage(code string) string {
	if code == placement.WarningLoyaltyConfirmationFailed {
		return "order placed, loyalty confirmation is pending"
	}
	return "order placed with warning"
}
