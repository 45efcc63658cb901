package ordersvc

import (
	"context"

	"github.com/M-505/mitra-da-dhaba-sg/internal/broadcast"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/imenurepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/iorderitemrepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/iorderrepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/istatuslogrepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/postgres"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/uow"
	"github.com/M-505/mitra-da-dhaba-sg/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "restaurant-svc/ordersvc"

// OrderService is a service for managing orders.
type OrderService struct {
	newUOW    func() unitOfWork
	publisher broadcast.Publisher
	tracer    trace.Tracer
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	MenuRepository() imenurepo.IMenuRepository
	StatusLogRepository() istatuslogrepo.IStatusLogRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		publisher: broadcast.Nop{},
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("ordersvc: postgres client is required")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithPublisher sets where order events are sent after each committed change.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPublisher(p broadcast.Publisher) option {
	return func(s *OrderService) {
		s.publisher = p
	}
}

func (s *OrderService) startSpan(ctx context.Context, operation string) (context.Context, func(err error)) {
	ctx, span := s.tracer.Start(ctx, "OrderService."+operation)

	return ctx, func(err error) {
		metrics.RecordOrderOperation(operation, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
