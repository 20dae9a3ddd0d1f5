// Package ordersv1 содержит gRPC-контракт сервиса размещения заказов (oms.v1.OrderService).
// Сообщения передаются в protobuf, денежные суммы строками.
package ordersv1

//go:generate protoc --proto_path=../../.. --go_out=../../.. --go_opt=paths=source_relative --go-grpc_out=../../.. --go-grpc_opt=paths=source_relative api/orders/v1/orders.proto
