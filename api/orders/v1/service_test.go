package ordersv1

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type echoServer struct {
	UnimplementedOrderServiceServer
}

func (echoServer) GetUser(_ context.Context, req *GetUserRequest) (*GetUserResponse, error) {
	return &GetUserResponse{User: &User{Id: req.GetUserId(), TotalOrders: 2, TotalSpent: "10.50"}}, nil
}

func (echoServer) PlaceOrder(_ context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	return &PlaceOrderResponse{
		Order:   &Order{Id: "order-1", UserId: req.GetUserId(), Items: req.GetItems(), TotalAmount: "18.45"},
		Warning: &Warning{Code: "LOYALTY_CONFIRMATION_FAILED", Message: "order placed, loyalty confirmation is pending"},
	}, nil
}

func dialBufconn(t *testing.T, srv OrderServiceServer, opts ...grpc.ServerOption) OrderServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer(opts...)
	RegisterOrderServiceServer(server, srv)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewOrderServiceClient(conn)
}

func TestFileDescriptorMetadata(t *testing.T) {
	fd := File_api_orders_v1_orders_proto
	assert.Equal(t, "api/orders/v1/orders.proto", fd.Path())
	assert.Equal(t, "oms.v1", string(fd.Package()))
	assert.Equal(t, 16, fd.Messages().Len())

	require.Equal(t, 1, fd.Services().Len())
	svc := fd.Services().Get(0)
	assert.Equal(t, OrderService_ServiceDesc.ServiceName, string(svc.FullName()))
	assert.Equal(t, len(OrderService_ServiceDesc.Methods), svc.Methods().Len())

	place := svc.Methods().ByName("PlaceOrder")
	require.NotNil(t, place)
	assert.Equal(t, "oms.v1.PlaceOrderRequest", string(place.Input().FullName()))
	assert.Equal(t, "oms.v1.PlaceOrderResponse", string(place.Output().FullName()))
}

func TestMessagesUseProtobufWireFormat(t *testing.T) {
	// user_id = 1 кодируется так же, как google.protobuf.StringValue.value = 1.
	got, err := proto.Marshal(&GetUserRequest{UserId: "user-7"})
	require.NoError(t, err)
	want, err := proto.Marshal(wrapperspb.String("user-7"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	var decoded wrapperspb.StringValue
	require.NoError(t, proto.Unmarshal(got, &decoded))
	assert.Equal(t, "user-7", decoded.GetValue())
}

func TestPlaceOrderResponseRoundTrip(t *testing.T) {
	resp := &PlaceOrderResponse{
		Order: &Order{
			Id:              "order-1",
			UserId:          "user-1",
			Status:          "PLACED",
			Items:           []*CartLine{{Sku: "sku-1", Name: "Book", Price: "1025.00", Quantity: 2}},
			Subtotal:        "2050.00",
			DiscountApplied: "205.00",
			TotalAmount:     "1845.00",
			AppliedRewards:  []string{"percent-discount"},
		},
		User:    &User{Id: "user-1", TotalOrders: 1, TotalSpent: "1845.00"},
		Rewards: &RewardsDecision{DiscountAmount: "205.00", LoyaltyPointsEarned: 18},
	}

	data, err := proto.Marshal(resp)
	require.NoError(t, err)
	var decoded PlaceOrderResponse
	require.NoError(t, proto.Unmarshal(data, &decoded))
	assert.True(t, proto.Equal(resp, &decoded), "decoded: %v", &decoded)

	var line CartLine
	assert.Error(t, proto.Unmarshal([]byte{0x0a, 0x05, 'a'}, &line), "truncated field must fail")
}

func TestProtojsonUsesCamelCaseNames(t *testing.T) {
	data, err := protojson.Marshal(&TimelineEvent{Type: "OrderPlaced", UnixTime: 1, UserId: "user-1", Amount: "1845.00"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"OrderPlaced","unixTime":"1","userId":"user-1","amount":"1845.00"}`, string(data))

	var event TimelineEvent
	require.NoError(t, protojson.Unmarshal([]byte(`{"type":"LoyaltyConfirmed","user_id":"user-2"}`), &event))
	assert.Equal(t, "user-2", event.GetUserId())
}

func TestNilGettersReturnZeroValues(t *testing.T) {
	var resp *PlaceOrderResponse
	assert.Nil(t, resp.GetOrder())
	assert.Empty(t, resp.GetOrder().GetItems())
	assert.Equal(t, "", resp.GetWarning().GetCode())
	assert.Zero(t, resp.GetUser().GetTotalOrders())
}

func TestOrderServiceRoundTrip(t *testing.T) {
	var seen []string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return handler(ctx, req)
	}
	client := dialBufconn(t, echoServer{}, grpc.UnaryInterceptor(interceptor))

	resp, err := client.GetUser(context.Background(), &GetUserRequest{UserId: "user-7"})
	require.NoError(t, err)
	assert.Equal(t, "user-7", resp.GetUser().GetId())
	assert.Equal(t, "10.50", resp.GetUser().GetTotalSpent())

	placed, err := client.PlaceOrder(context.Background(), &PlaceOrderRequest{
		UserId: "user-7",
		Items:  []*CartLine{{Sku: "sku-1", Price: "18.45", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "user-7", placed.GetOrder().GetUserId())
	require.Len(t, placed.GetOrder().GetItems(), 1)
	assert.Equal(t, "sku-1", placed.GetOrder().GetItems()[0].GetSku())
	assert.Equal(t, "LOYALTY_CONFIRMATION_FAILED", placed.GetWarning().GetCode())

	_, err = client.GetOrder(context.Background(), &GetOrderRequest{OrderId: "order-1"})
	assert.Equal(t, codes.Unimplemented, status.Code(err))

	assert.Equal(t, []string{
		OrderService_GetUser_FullMethodName,
		OrderService_PlaceOrder_FullMethodName,
		OrderService_GetOrder_FullMethodName,
	}, seen)
}
