package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/M-505/mitra-da-dhaba-sg/internal/broadcast"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/postgres"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/rabbitmq"
	outboxrepo "github.com/M-505/mitra-da-dhaba-sg/internal/dal/repositories/outbox/postgres"
	"github.com/M-505/mitra-da-dhaba-sg/internal/otel"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/services/menusvc"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/services/ordersvc"
	grpctransport "github.com/M-505/mitra-da-dhaba-sg/internal/transport/grpc"
	httptransport "github.com/M-505/mitra-da-dhaba-sg/internal/transport/http"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/ws"
	"github.com/M-505/mitra-da-dhaba-sg/internal/worker/outbox"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	menuSvc        *menusvc.MenuService
	hub            *broadcast.Hub
	relay          *broadcast.Relay
	stopRelay      context.CancelFunc
	outboxWorker   *outbox.Worker
	transport      *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	postgresClient *postgres.Client
	rabbitmqClient *rabbitmq.Client
	otel           *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()

	hub := broadcast.NewHub(viper.GetInt("broadcast.buffer_size"))
	publishers := broadcast.Multi{hub}

	a := &App{
		hub:            hub,
		postgresClient: postgresClient,
		otel:           otelController,
	}

	if viper.GetBool("rabbitmq.enabled") {
		a.mustSetupRabbitMQ()
		publishers = append(publishers, a.relay)
	}

	a.orderSvc = ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithPublisher(publishers),
	)
	a.menuSvc = menusvc.MustNewMenuService(
		menusvc.WithPostgresClient(postgresClient),
		menusvc.WithPublisher(publishers),
	)

	a.transport = httptransport.NewHTTPTransport(a.orderSvc, a.menuSvc, ws.NewHandler(hub), postgresClient)
	a.transport.RegisterRoutes()

	if viper.GetBool("server.grpc.enabled") {
		a.grpcTransport = grpctransport.NewGRPCTransport(a.orderSvc, postgresClient)
	}

	return a
}

func (a *App) mustSetupRabbitMQ() {
	exchange := viper.GetString("rabbitmq.exchange")

	client := rabbitmq.MustNewClient()
	if err := client.DeclareExchange(exchange); err != nil {
		panic("failed to declare exchange: " + err.Error())
	}

	// Optional durable queue receiving every order event, e.g. for an audit consumer.
	if queue := viper.GetString("rabbitmq.audit_queue"); queue != "" {
		if _, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{Name: queue, Durable: true}); err != nil {
			panic("failed to declare queue: " + err.Error())
		}
		if err := client.BindQueue(queue, "order.#", exchange); err != nil {
			panic("failed to bind queue: " + err.Error())
		}
	}

	outboxRepo := outboxrepo.NewOutboxRepository(a.postgresClient.Pool())

	a.rabbitmqClient = client
	a.relay = broadcast.NewRelay(
		client,
		outboxRepo,
		exchange,
		viper.GetInt("rabbitmq.relay.queue_size"),
		viper.GetInt("rabbitmq.relay.max_retries"),
	)
	a.outboxWorker = outbox.NewWorker(outboxRepo, client)
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	if a.grpcTransport != nil {
		g.Go(a.grpcTransport.Run)
		g.Go(func() error {
			a.grpcTransport.WatchHealth(gCtx)

			return nil
		})
	}

	if a.relay != nil {
		// The relay outlives the transports so events from draining requests still go out.
		relayCtx, cancel := context.WithCancel(context.Background())
		a.stopRelay = cancel
		g.Go(func() error {
			a.relay.Run(relayCtx)

			return nil
		})
		g.Go(func() error {
			a.outboxWorker.Start(gCtx)

			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("Shutdown signal received")

		return a.shutdown()
	})

	if err := g.Wait(); err != nil {
		slog.Error("Application stopped with error", "error", err)
	}

	a.close()
	slog.Info("Application shutdown complete")
}

func (a *App) shutdown() error {
	timeout := viper.GetDuration("server.shutdown_timeout")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		errs = append(errs, err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if a.grpcTransport != nil {
		if err := a.grpcTransport.Shutdown(ctx); err != nil {
			slog.Error("gRPC server shutdown error", "error", err)
			errs = append(errs, err)
		} else {
			slog.Info("gRPC server stopped gracefully")
		}
	}

	// Websocket connections are hijacked and survive server shutdown.
	a.hub.Close()

	if a.stopRelay != nil {
		a.stopRelay()
	}

	return errors.Join(errs...)
}

func (a *App) close() {
	if a.relay != nil {
		<-a.relay.Done()
	}

	if a.rabbitmqClient != nil {
		if err := a.rabbitmqClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		} else {
			slog.Info("RabbitMQ connection closed gracefully")
		}
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.otel.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}
}
