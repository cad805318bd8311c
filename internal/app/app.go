package app

import (
	"context"
	"errors"
	"net"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/scm/internal/health"
	"github.com/vladislavdragonenkov/scm/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/scm/internal/metrics"
	"github.com/vladislavdragonenkov/scm/internal/report"
	grpcsvc "github.com/vladislavdragonenkov/scm/internal/service/grpc"
	"github.com/vladislavdragonenkov/scm/internal/service/logistics"
	"github.com/vladislavdragonenkov/scm/internal/service/outbox"
	"github.com/vladislavdragonenkov/scm/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/scm/internal/version"
	scmv1 "github.com/vladislavdragonenkov/scm/proto/scm/v1"
)

const (
	grpcStopTimeout   = 5 * time.Second
	outboxStopTimeout = 5 * time.Second
)

// Run поднимает REST API, gRPC-сервис отчётов, метрики и фоновые
// обработчики и блокируется до отмены ctx или падения gRPC-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if deps.closeFn != nil {
		defer func() {
			if err := deps.closeFn(); err != nil {
				logger.WithError(err).Warn("failed to close storage")
			}
		}()
	}

	appMetrics := metrics.New()
	svc := logistics.New(deps.repos,
		logistics.WithLogger(logger.WithField("layer", "logistics")),
		logistics.WithMetrics(appMetrics),
	)
	engine := report.NewEngine(deps.repos,
		report.WithLogger(logger.WithField("layer", "report")),
		report.WithMetrics(appMetrics),
	)

	if cfg.SeedDemo {
		if err := seedDemo(ctx, svc, logger.WithField("layer", "seed")); err != nil {
			return err
		}
	}

	// Kafka опциональна: без брокеров события outbox пишутся в лог.
	kafkaProducer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		kafkaProducer = nil
	}
	defer closeKafkaProducer(kafkaProducer, logger)

	var (
		publisher    domain.OutboxPublisher = outbox.NewLogPublisher(logger.WithField("layer", "outbox-log"))
		dlqPublisher domain.OutboxPublisher
	)
	if kafkaProducer != nil {
		publisher = kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDomainEvents)
		dlqPublisher = kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
	}

	worker := outbox.NewWorker(deps.repos.Outbox, publisher,
		outbox.WithLogger(logger.WithField("layer", "outbox")),
		outbox.WithMetrics(appMetrics),
		outbox.WithDLQPublisher(dlqPublisher),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	)
	outboxCtx, outboxCancel := context.WithCancel(context.Background())
	outboxDone := make(chan struct{})
	go func() {
		defer close(outboxDone)
		worker.Run(outboxCtx)
	}()
	defer shutdownOutboxWorker(outboxCancel, outboxDone, logger)

	trackingConsumer, err := initTrackingConsumer(cfg, svc, kafkaProducer, appMetrics, logger)
	if err != nil {
		logger.WithError(err).Warn("failed to create tracking consumer, inbound telemetry disabled")
		trackingConsumer = nil
	}
	if trackingConsumer != nil {
		if err := trackingConsumer.Start(ctx); err != nil {
			return err
		}
		defer stopTrackingConsumer(trackingConsumer, logger)
	}

	grpcMetrics := registerGRPCMetrics(logger)
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	scmv1.RegisterReportServiceServer(grpcServer, grpcsvc.NewReportService(engine, logger.WithField("layer", "grpc")))
	grpcMetrics.InitializeMetrics(grpcServer)
	reflection.Register(grpcServer)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	healthChecks := healthcheck.NewRegistry(version.Get().Version)
	healthChecks.Register("storage", deps.storageChecker)
	healthChecks.Register("outbox", healthcheck.NewBacklog(func(ctx context.Context) (int, time.Time, error) {
		stats, err := deps.repos.Outbox.Stats(ctx)
		return stats.PendingCount, stats.OldestPendingAt, err
	}, cfg.OutboxMaxPendingAge))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthChecks)
	apiSrv := startHTTPServer(ctx, "REST API", cfg.HTTPAddr, httpapi.NewHandler(svc, engine, logger.WithField("layer", "http")), logger)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("gRPC сервер слушает %s", lis.Addr())
		errCh <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		stopGRPC(grpcServer, logger)
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

// registerGRPCMetrics регистрирует метрики gRPC-сервера; при повторном
// запуске в том же процессе переиспользует уже зарегистрированные.
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

// stopGRPC ждёт завершения активных RPC, но не дольше grpcStopTimeout.
func stopGRPC(server *grpc.Server, logger *log.Entry) {
	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(grpcStopTimeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}

// shutdownOutboxWorker отменяет контекст worker'а и ждёт выхода из цикла.
func shutdownOutboxWorker(cancel context.CancelFunc, done <-chan struct{}, logger *log.Entry) {
	if cancel != nil {
		cancel()
	}
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(outboxStopTimeout):
		logger.Warn("outbox worker did not stop in time")
	}
}
