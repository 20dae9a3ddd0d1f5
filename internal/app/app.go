package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	ordersv1 "github.com/vladislavdragonenkov/loyalty-oms/api/orders/v1"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/loyalty-oms/internal/health"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/metrics"
	grpcsvc "github.com/vladislavdragonenkov/loyalty-oms/internal/service/grpc"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/service/idempotency"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/service/outbox"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/service/placement"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/version"
)

const defaultShutdownTimeout = 10 * time.Second

// Run собирает зависимости по cfg и обслуживает gRPC и HTTP до отмены ctx.
// При штатной остановке возвращает ctx.Err().
func Run(ctx context.Context, cfg Config, logger *log.Entry) error {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := deps.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close storage")
		}
	}()

	gateways, err := initRewardsGateway(cfg, logger)
	if err != nil {
		return fmt.Errorf("init rewards gateway: %w", err)
	}

	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		producer = nil
	}
	defer closeKafka(producer, logger)

	workflow, err := newWorkflow(cfg, deps, gateways.placement, producer, logger)
	if err != nil {
		return err
	}

	orderService, err := grpcsvc.NewOrderService(grpcsvc.Deps{
		Placer:         workflow,
		Orders:         deps.orders,
		Users:          deps.users,
		Timeline:       deps.timelineRepo,
		Idempotency:    deps.idempotencyRepo,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Logger:         logger.WithField("layer", "grpc"),
	})
	if err != nil {
		return err
	}

	grpcMetrics := registerGRPCMetrics(logger)
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	ordersv1.RegisterOrderServiceServer(grpcServer, orderService)
	grpcMetrics.InitializeMetrics(grpcServer)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ordersv1.OrderService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	for name, checker := range deps.checkers {
		healthHandler.RegisterChecker(name, checker)
	}
	if gateways.breaker != nil {
		healthHandler.RegisterChecker("rewards", healthcheck.NewOptionalChecker("rewards", gateways.breaker.Check))
	}
	healthHandler.RegisterChecker("outbox", healthcheck.NewOptionalChecker("outbox", outboxBacklogCheck(deps.outboxRepo, cfg.OutboxMaxPending)))

	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
	}
	httpListener, err := net.Listen("tcp", cfg.MetricsAddr)
	if err != nil {
		_ = grpcListener.Close()
		return fmt.Errorf("listen http %s: %w", cfg.MetricsAddr, err)
	}
	httpServer := newHTTPServer(healthHandler)

	consumer, err := initLoyaltyReconciler(cfg, producer, gateways.reconciler, deps.timelineRepo, logger)
	if err != nil {
		logger.WithError(err).Warn("loyalty reconciler is disabled")
		consumer = nil
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("addr", grpcListener.Addr().String()).Info("grpc server listening")
		return grpcServer.Serve(grpcListener)
	})
	g.Go(func() error {
		logger.WithField("addr", httpListener.Addr().String()).Info("http server listening: /metrics /healthz /readyz /livez /version")
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if producer != nil {
		worker := outbox.NewWorker(deps.outboxRepo, kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}

	sweeper := idempotency.NewKeySweeper(deps.idempotencyRepo, idempotency.SweeperConfig{
		KeyTTL:    cfg.IdempotencyTTL,
		Interval:  cfg.IdempotencyCleanupInterval,
		BatchSize: cfg.IdempotencyCleanupBatchSize,
		Logger:    logger.WithField("component", "idempotency-key-sweeper"),
	})
	g.Go(func() error {
		sweeper.Run(gctx)
		return nil
	})

	if consumer != nil {
		if err := consumer.Start(gctx); err != nil {
			logger.WithError(err).Warn("failed to start loyalty reconciler")
			consumer = nil
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		healthServer.Shutdown()

		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		stopGRPC(grpcServer, timeout, logger)
		shutdownHTTP(httpServer, timeout, logger)
		if consumer != nil {
			if err := consumer.Stop(); err != nil {
				logger.WithError(err).Warn("failed to stop loyalty reconciler")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return ctx.Err()
}

func newWorkflow(cfg Config, deps *runtimeDependencies, gateway domain.RewardsGateway, producer *kafka.Producer, logger *log.Entry) (*placement.Workflow, error) {
	opts := []placement.Option{
		placement.WithLogger(logger.WithField("component", "placement")),
		placement.WithMetrics(metrics.NewPlacementMetrics()),
		placement.WithTimeline(deps.timelineRepo),
		placement.WithCallTimeout(cfg.RewardsCallTimeout),
	}
	// Без Kafka outbox некому разбирать, кроме PostgreSQL, где его читают операторы.
	if producer != nil || cfg.StorageDriver == StorageDriverPostgres {
		opts = append(opts, placement.WithOutbox(deps.outboxRepo))
	}
	if producer != nil {
		opts = append(opts, placement.WithEventPublisher(producer, kafka.TopicPlacementEvents))
	}
	return placement.NewWorkflow(deps.users, deps.orders, gateway, opts...)
}

// registerGRPCMetrics регистрирует серверные метрики gRPC, переиспользуя уже зарегистрированные.
func registerGRPCMetrics(logger *log.Entry) *promgrpc.ServerMetrics {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				return existing
			}
		}
		logger.WithError(err).Warn("failed to register grpc metrics")
	}
	return grpcMetrics
}

func outboxBacklogCheck(repo domain.OutboxRepository, maxPending int) func(context.Context) error {
	return func(ctx context.Context) error {
		stats, err := repo.Stats(ctx)
		if err != nil {
			return err
		}
		if maxPending > 0 && stats.PendingCount > maxPending {
			return fmt.Errorf("outbox backlog %d exceeds %d", stats.PendingCount, maxPending)
		}
		return nil
	}
}

// stopGRPC ждёт завершения активных RPC не дольше timeout.
func stopGRPC(server *grpc.Server, timeout time.Duration, logger *log.Entry) {
	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		logger.Warn("graceful stop timed out, forcing grpc server stop")
		server.Stop()
	}
}
