package grpctransport

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// service is an interface for the service layer.
type service interface {
	GetAllOrders(ctx context.Context, query order.QueryOrdersModel) ([]order.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*order.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// GRPCTransport represents the gRPC transport layer.
type GRPCTransport struct {
	server      *grpc.Server
	listener    net.Listener
	health      *health.Server
	db          pinger
	orderServer *OrderServer
}

// NewGRPCTransport creates a new GRPCTransport.
func NewGRPCTransport(service service, db pinger) *GRPCTransport {
	listener, err := net.Listen("tcp", ":"+viper.GetString("server.grpc.port"))
	if err != nil {
		panic(err)
	}

	return &GRPCTransport{
		server:      newGRPCServer(),
		listener:    listener,
		health:      health.NewServer(),
		db:          db,
		orderServer: NewOrderServer(service),
	}
}

// Run starts the gRPC server.
func (g *GRPCTransport) Run() error {
	g.RegisterServices()
	slog.Info("Starting gRPC server", "address", g.listener.Addr().String())

	return g.server.Serve(g.listener)
}

// Shutdown gracefully shuts down the gRPC server.
func (g *GRPCTransport) Shutdown(ctx context.Context) error {
	g.health.Shutdown()

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()

		return ctx.Err()
	}
}

// RegisterServices registers the gRPC services.
func (g *GRPCTransport) RegisterServices() {
	RegisterOrderServiceServer(g.server, g.orderServer)
	healthpb.RegisterHealthServer(g.server, g.health)
	reflection.Register(g.server)
}

// WatchHealth reports NOT_SERVING while the database does not answer pings.
// It returns when ctx is done.
func (g *GRPCTransport) WatchHealth(ctx context.Context) {
	interval := viper.GetDuration("server.grpc.health_interval")
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		g.checkHealth(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (g *GRPCTransport) checkHealth(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := g.db.Ping(pingCtx); err != nil {
		slog.Warn("Database ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(OrderServiceName, status)
}

// newGRPCServer creates a new gRPC server with default settings.
func newGRPCServer() *grpc.Server {
	keepaliveParams := keepalive.ServerParameters{
		MaxConnectionIdle: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_idle"),
		) * time.Minute,
		MaxConnectionAge: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_age"),
		) * time.Minute,
		MaxConnectionAgeGrace: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_age_grace"),
		) * time.Second,
		Time: time.Duration(
			viper.GetInt("server.grpc.keepalive.time"),
		) * time.Second,
		Timeout: time.Duration(
			viper.GetInt("server.grpc.keepalive.timeout"),
		) * time.Second,
	}

	keepalivePolicy := keepalive.EnforcementPolicy{
		MinTime: time.Duration(
			viper.GetInt("server.grpc.keepalive.min_time"),
		) * time.Second,
		PermitWithoutStream: viper.GetBool("server.grpc.keepalive.permit_without_stream"),
	}

	interceptors := []grpc.UnaryServerInterceptor{loggingInterceptor}
	if secret := viper.GetString("auth.jwt_secret"); secret != "" {
		interceptors = append(interceptors, authInterceptor(secret))
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepaliveParams),
		grpc.KeepaliveEnforcementPolicy(keepalivePolicy),
		grpc.ChainUnaryInterceptor(interceptors...),
	}

	return grpc.NewServer(opts...)
}

func loggingInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	if err != nil {
		slog.WarnContext(ctx, "gRPC request failed",
			"method", info.FullMethod,
			"duration", time.Since(start).String(),
			"error", err)
	} else {
		slog.InfoContext(ctx, "gRPC request completed",
			"method", info.FullMethod,
			"duration", time.Since(start).String())
	}

	return resp, err
}
