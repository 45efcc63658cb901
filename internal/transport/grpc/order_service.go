package grpctransport

import (
	"context"
	"errors"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// OrderServiceName is the fully qualified name of the order service.
const OrderServiceName = "restaurant.v1.OrderService"

// OrderServiceServer is the server API for restaurant.v1.OrderService. Messages are
// google.protobuf.Struct values shaped like the JSON API.
type OrderServiceServer interface {
	ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterOrderServiceServer registers srv on s.
func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&orderServiceDesc, srv)
}

var orderServiceDesc = grpc.ServiceDesc{
	ServiceName: OrderServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListOrders", Handler: unaryHandler("ListOrders", OrderServiceServer.ListOrders)},
		{MethodName: "GetOrder", Handler: unaryHandler("GetOrder", OrderServiceServer.GetOrder)},
		{MethodName: "UpdateOrderStatus", Handler: unaryHandler("UpdateOrderStatus", OrderServiceServer.UpdateOrderStatus)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "restaurant/v1/order_service.proto",
}

type unaryMethod func(OrderServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, method unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + OrderServiceName + "/" + name

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(OrderServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(OrderServiceServer), ctx, req.(*structpb.Struct))
		}

		return interceptor(ctx, in, info, handler)
	}
}

// OrderServer implements the gRPC OrderService.
type OrderServer struct {
	service service
}

// NewOrderServer creates a new OrderServer.
func NewOrderServer(service service) *OrderServer {
	return &OrderServer{
		service: service,
	}
}

// ListOrders accepts optional "status" and "tableNumber" lists.
func (s *OrderServer) ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	query, err := listOrdersRequestFromStruct(req)
	if err != nil {
		return nil, statusFromError(err)
	}

	orders, err := s.service.GetAllOrders(ctx, query)
	if err != nil {
		return nil, statusFromError(err)
	}

	resp, err := ordersToStruct(orders)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode orders: %v", err)
	}

	return resp, nil
}

func (s *OrderServer) GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idFromStruct(req)
	if err != nil {
		return nil, statusFromError(err)
	}

	o, err := s.service.GetOrderByID(ctx, id)
	if err != nil {
		return nil, statusFromError(err)
	}

	resp, err := orderToStruct(o)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode order: %v", err)
	}

	return resp, nil
}

func (s *OrderServer) UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idFromStruct(req)
	if err != nil {
		return nil, statusFromError(err)
	}

	next := req.GetFields()["status"].GetStringValue()
	if next == "" {
		return nil, status.Error(codes.InvalidArgument, "status is required")
	}

	updated, err := s.service.UpdateOrderStatus(ctx, id, order.Status(next))
	if err != nil {
		return nil, statusFromError(err)
	}

	resp, err := orderToStruct(updated)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode order: %v", err)
	}

	return resp, nil
}

func statusFromError(err error) error {
	var vErr order.ValidationError

	switch {
	case errors.As(err, &vErr):
		return status.Errorf(codes.InvalidArgument, "%s: %s", vErr.Field, vErr.Message)
	case errors.Is(err, order.ErrUnknownStatus):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, order.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, order.ErrOrderClosed),
		errors.Is(err, order.ErrInvalidMerge):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
