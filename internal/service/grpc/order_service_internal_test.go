package grpcsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	ordersv1 "github.com/vladislavdragonenkov/loyalty-oms/api/orders/v1"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/service/placement"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/storage/memory"
)

type stubPlacer struct {
	result placement.Result
	err    error
	calls  int
}

func (s *stubPlacer) PlaceOrder(context.Context, domain.OrderRequest) (placement.Result, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubPlacer) EvaluateRewards(context.Context, domain.OrderRequest) (placement.Evaluation, error) {
	return placement.Evaluation{}, s.err
}

type failingIdemRepo struct {
	domain.IdempotencyRepository
	createErr error
}

func (r failingIdemRepo) CreateProcessing(context.Context, string, string, time.Time) (domain.IdempotencyRecord, error) {
	return domain.IdempotencyRecord{}, r.createErr
}

func newServiceForTest(t *testing.T, placer Placer, idem domain.IdempotencyRepository) *OrderService {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc, err := NewOrderService(Deps{
		Placer:      placer,
		Orders:      memory.NewOrderRepository(),
		Users:       memory.NewUserRepository(),
		Idempotency: idem,
		Logger:      logrus.NewEntry(logger),
	})
	require.NoError(t, err)
	return svc
}

func mustStatusCode(t *testing.T, err error) codes.Code {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok, "expected grpc status, got %v", err)
	return st.Code()
}

func incomingKey(key string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(IdempotencyKeyHeader, key))
}

func validRequest() *ordersv1.PlaceOrderRequest {
	return &ordersv1.PlaceOrderRequest{
		UserId: "user-1",
		Items:  []*ordersv1.CartLine{{Sku: "sku-1", Price: "10", Quantity: 1}},
	}
}

func TestNewOrderServiceRequiresDependencies(t *testing.T) {
	_, err := NewOrderService(Deps{})
	require.Error(t, err)
}

func TestPlacementStatusMapping(t *testing.T) {
	svc := newServiceForTest(t, &stubPlacer{}, nil)

	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "validation", err: domain.OrderRequest{}.Validate(), want: codes.InvalidArgument},
		{
			name: "user not found",
			err:  &domain.PlacementError{Kind: domain.PlacementUserNotFound, Step: domain.StepResolveUser, Err: domain.ErrUserNotFound},
			want: codes.NotFound,
		},
		{
			name: "rewards unavailable",
			err:  &domain.PlacementError{Kind: domain.PlacementRewardsUnavailable, Step: domain.StepEvaluateRewards, Err: errors.New("provider secret: timeout")},
			want: codes.Unavailable,
		},
		{
			name: "persistence failure",
			err:  &domain.PlacementError{Kind: domain.PlacementPersistenceFailure, Step: domain.StepUpdateUserStats, OrderID: "order-9", Err: errors.New("provider secret: deadlock")},
			want: codes.Internal,
		},
		{name: "canceled", err: fmt.Errorf("place order: %w", context.Canceled), want: codes.Canceled},
		{name: "deadline", err: context.DeadlineExceeded, want: codes.DeadlineExceeded},
		{
			name: "persistence failure before commit",
			err:  &domain.PlacementError{Kind: domain.PlacementPersistenceFailure, Step: domain.StepPersistOrder, Err: errors.New("provider secret: conn reset")},
			want: codes.Internal,
		},
		{name: "unknown", err: errors.New("provider secret: boom"), want: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.placementStatus(tt.err, "user-1")
			assert.Equal(t, tt.want, mustStatusCode(t, got))
			assert.NotContains(t, status.Convert(got).Message(), "provider secret")
		})
	}
}

func TestPersistenceFailureMessageCarriesOrderID(t *testing.T) {
	svc := newServiceForTest(t, &stubPlacer{err: &domain.PlacementError{
		Kind:    domain.PlacementPersistenceFailure,
		Step:    domain.StepUpdateUserStats,
		UserID:  "user-1",
		OrderID: "order-42",
		Err:     errors.New("deadlock"),
	}}, nil)

	_, err := svc.PlaceOrder(context.Background(), validRequest())
	require.Equal(t, codes.Internal, mustStatusCode(t, err))
	assert.Contains(t, status.Convert(err).Message(), "order-42")
}

func TestPlaceOrderWarningIsExposed(t *testing.T) {
	placer := &stubPlacer{result: placement.Result{
		Order: domain.Order{ID: "order-1", UserID: "user-1", Status: domain.OrderStatusPlaced, TotalAmount: decimal.NewFromInt(10)},
		User:  domain.User{ID: "user-1", TotalOrders: 1, TotalSpent: decimal.NewFromInt(10)},
		Warning: &placement.Warning{
			Code: placement.WarningLoyaltyConfirmationFailed,
			Err:  errors.New("provider rejected"),
		},
	}}
	svc := newServiceForTest(t, placer, nil)

	resp, err := svc.PlaceOrder(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Warning)
	assert.Equal(t, placement.WarningLoyaltyConfirmationFailed, resp.Warning.Code)
	assert.Equal(t, "order placed, loyalty confirmation is pending", resp.Warning.Message)
	assert.NotContains(t, resp.Warning.Message, "provider rejected")
	assert.Equal(t, "10.00", resp.Order.TotalAmount)
}

func TestFromProtoRequest(t *testing.T) {
	req, err := fromProtoRequest(" user-1 ", []*ordersv1.CartLine{{Sku: "a", Price: " 1.50 ", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, "user-1", req.UserID)
	assert.True(t, req.Items[0].Price.Equal(decimal.RequireFromString("1.5")))

	_, err = fromProtoRequest("user-1", []*ordersv1.CartLine{nil})
	assert.Equal(t, codes.InvalidArgument, mustStatusCode(t, err))

	_, err = fromProtoRequest("user-1", []*ordersv1.CartLine{{Sku: "a", Price: "1", Quantity: 0}})
	assert.Equal(t, codes.InvalidArgument, mustStatusCode(t, err))

	_, err = fromProtoRequest("user-1", []*ordersv1.CartLine{{Sku: "a", Price: "0.005", Quantity: 1}})
	assert.Equal(t, codes.InvalidArgument, mustStatusCode(t, err))
	assert.Contains(t, status.Convert(err).Message(), domain.ErrItemPricePrecision.Error())
}

func TestReadIdempotencyKey(t *testing.T) {
	key, err := readIdempotencyKey(context.Background())
	require.NoError(t, err)
	assert.Empty(t, key)

	key, err = readIdempotencyKey(incomingKey("  k-1 "))
	require.NoError(t, err)
	assert.Equal(t, "k-1", key)

	_, err = readIdempotencyKey(incomingKey("   "))
	assert.Equal(t, codes.InvalidArgument, mustStatusCode(t, err))

	_, err = readIdempotencyKey(incomingKey(strings.Repeat("x", maxIdempotencyKeyLen+1)))
	assert.Equal(t, codes.InvalidArgument, mustStatusCode(t, err))
}

func TestBuildIdempotencyRequestHash(t *testing.T) {
	a, err := buildIdempotencyRequestHash(ordersv1.OrderService_PlaceOrder_FullMethodName, validRequest())
	require.NoError(t, err)
	b, err := buildIdempotencyRequestHash(ordersv1.OrderService_PlaceOrder_FullMethodName, validRequest())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := validRequest()
	other.Items[0].Quantity = 3
	c, err := buildIdempotencyRequestHash(ordersv1.OrderService_PlaceOrder_FullMethodName, other)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := buildIdempotencyRequestHash(ordersv1.OrderService_EvaluateRewards_FullMethodName, validRequest())
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestDecodeIdempotencyFailure(t *testing.T) {
	payload, err := json.Marshal(idempotencyErrorPayload{Code: int32(codes.NotFound), Message: "user not found"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		record  domain.IdempotencyRecord
		code    codes.Code
		message string
	}{
		{
			name:    "stored payload",
			record:  domain.IdempotencyRecord{ResponseBody: payload},
			code:    codes.NotFound,
			message: "user not found",
		},
		{
			name:   "status code only",
			record: domain.IdempotencyRecord{StatusCode: int(codes.Unavailable)},
			code:   codes.Unavailable,
		},
		{
			name:   "broken payload",
			record: domain.IdempotencyRecord{ResponseBody: []byte("{"), StatusCode: 999},
			code:   codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeIdempotencyFailure(tt.record)
			assert.Equal(t, tt.code, mustStatusCode(t, err))
			if tt.message != "" {
				assert.Equal(t, tt.message, status.Convert(err).Message())
			}
		})
	}
}

func TestWithIdempotencyProcessingAndStorageErrors(t *testing.T) {
	repo := memory.NewIdempotencyRepository()
	placer := &stubPlacer{}
	svc := newServiceForTest(t, placer, repo)

	hash, err := buildIdempotencyRequestHash(ordersv1.OrderService_PlaceOrder_FullMethodName, validRequest())
	require.NoError(t, err)
	_, err = repo.CreateProcessing(context.Background(), "busy", hash, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.PlaceOrder(incomingKey("busy"), validRequest())
	assert.Equal(t, codes.Aborted, mustStatusCode(t, err))
	assert.Zero(t, placer.calls)

	broken := newServiceForTest(t, placer, failingIdemRepo{createErr: errors.New("db down")})
	_, err = broken.PlaceOrder(incomingKey("any"), validRequest())
	assert.Equal(t, codes.Internal, mustStatusCode(t, err))
	assert.Zero(t, placer.calls)
}

func TestWithIdempotencyReleasesKeyOnRetryableFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{
			name: "rewards unavailable",
			err:  &domain.PlacementError{Kind: domain.PlacementRewardsUnavailable, Step: domain.StepEvaluateRewards, Err: errors.New("timeout")},
			want: codes.Unavailable,
		},
		{
			name: "user not found",
			err:  &domain.PlacementError{Kind: domain.PlacementUserNotFound, Step: domain.StepResolveUser, Err: domain.ErrUserNotFound},
			want: codes.NotFound,
		},
		{name: "canceled", err: context.Canceled, want: codes.Canceled},
		{name: "deadline", err: context.DeadlineExceeded, want: codes.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewIdempotencyRepository()
			placer := &stubPlacer{err: tt.err}
			svc := newServiceForTest(t, placer, repo)

			_, err := svc.PlaceOrder(incomingKey("k-retry"), validRequest())
			require.Equal(t, tt.want, mustStatusCode(t, err))

			_, err = repo.Get(context.Background(), "k-retry")
			require.ErrorIs(t, err, domain.ErrIdempotencyKeyNotFound)

			_, err = svc.PlaceOrder(incomingKey("k-retry"), validRequest())
			assert.Equal(t, tt.want, mustStatusCode(t, err))
			assert.Equal(t, 2, placer.calls)
		})
	}
}

func TestWithIdempotencyStoresPersistenceFailure(t *testing.T) {
	repo := memory.NewIdempotencyRepository()
	placer := &stubPlacer{err: &domain.PlacementError{
		Kind:    domain.PlacementPersistenceFailure,
		Step:    domain.StepUpdateUserStats,
		OrderID: "order-7",
		Err:     errors.New("deadlock"),
	}}
	svc := newServiceForTest(t, placer, repo)

	_, err := svc.PlaceOrder(incomingKey("k-fail"), validRequest())
	require.Equal(t, codes.Internal, mustStatusCode(t, err))

	record, err := repo.Get(context.Background(), "k-fail")
	require.NoError(t, err)
	assert.Equal(t, domain.IdempotencyStatusFailed, record.Status)
	assert.Equal(t, int(codes.Internal), record.StatusCode)

	_, err = svc.PlaceOrder(incomingKey("k-fail"), validRequest())
	assert.Equal(t, codes.Internal, mustStatusCode(t, err))
	assert.Contains(t, status.Convert(err).Message(), "order-7")
	assert.Equal(t, 1, placer.calls)
}
