package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/lendwise/loanrisk/internal/application/usecase"
	"github.com/lendwise/loanrisk/internal/domain/port"
	"github.com/lendwise/loanrisk/internal/domain/service"
	"github.com/lendwise/loanrisk/internal/infrastructure/cache"
	"github.com/lendwise/loanrisk/internal/infrastructure/config"
	"github.com/lendwise/loanrisk/internal/infrastructure/kafka"
	"github.com/lendwise/loanrisk/internal/infrastructure/ml"
	pgRepo "github.com/lendwise/loanrisk/internal/infrastructure/persistence/postgres"
	"github.com/lendwise/loanrisk/internal/infrastructure/persistence/sqlite"
	grpcPresentation "github.com/lendwise/loanrisk/internal/presentation/grpc"
	"github.com/lendwise/loanrisk/internal/presentation/rest"
	"github.com/lendwise/loanrisk/pkg/auth"
	pkgkafka "github.com/lendwise/loanrisk/pkg/kafka"
	"github.com/lendwise/loanrisk/pkg/observability"
	pkgpostgres "github.com/lendwise/loanrisk/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("loanrisk stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting loanrisk",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"db_driver", cfg.DB.Driver,
	)

	// Tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	switch {
	case errors.Is(err, observability.ErrTracingDisabled):
		logger.Info("tracing disabled")
	case err != nil:
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	default:
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
	}

	// Metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		Registry:    registry,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	otel.SetMeterProvider(meterProvider)

	assessmentMetrics, err := observability.NewAssessmentMetrics(meterProvider.Meter("github.com/lendwise/loanrisk"))
	if err != nil {
		return fmt.Errorf("failed to register assessment metrics: %w", err)
	}

	// Domain services.
	policy, err := config.LoadTierPolicy(cfg.TierPolicyFile)
	if err != nil {
		return fmt.Errorf("failed to load tier policy: %w", err)
	}
	classifier := service.NewRiskTierClassifier(policy)
	calculator, err := service.NewAffordabilityCalculator(service.DefaultAffordabilityParams())
	if err != nil {
		return fmt.Errorf("failed to create affordability calculator: %w", err)
	}
	logger.Info("tier policy loaded", "policy", policy.Name(), "tiers", len(policy.Bands()))

	// Risk model.
	riskModel, closeModel, err := newRiskModel(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeModel()

	// Prediction store.
	stores, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.close()

	// Event publishing.
	var publisher port.EventPublisher = kafka.NewLogPublisher(logger)
	var kafkaCfg pkgkafka.Config
	if cfg.Kafka.Enabled() {
		kafkaCfg = pkgkafka.Config{
			Brokers:       cfg.Kafka.Brokers,
			ClientID:      cfg.ServiceName,
			ConsumerGroup: cfg.Kafka.GroupID,
			TLS:           cfg.Kafka.TLS,
			SASLMechanism: cfg.Kafka.SASLMechanism,
			SASLUsername:  cfg.Kafka.SASLUsername,
			SASLPassword:  cfg.Kafka.SASLPassword,
		}
		producer, err := pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			return fmt.Errorf("failed to create kafka producer: %w", err)
		}
		defer func() { _ = producer.Close() }() //nolint:errcheck // best-effort flush
		publisher = kafka.NewEventPublisher(producer, cfg.Kafka.Topic, logger)
		logger.Info("publishing events to kafka", "topic", cfg.Kafka.Topic)
	} else {
		logger.Info("KAFKA_BROKERS not set, events are logged only")
	}

	// Use cases.
	assessUC := usecase.NewAssessRisk(riskModel, classifier, calculator, stores.predictions, publisher, assessmentMetrics, logger,
		usecase.AssessmentSettings{
			BaseInterestRate: cfg.BaseInterestRate,
			StrictValidation: cfg.StrictValidation,
		})
	outcomeUC := usecase.NewRecordOutcome(stores.predictions, publisher, assessmentMetrics, logger)
	listUC := usecase.NewListPredictions(stores.predictions)
	healthUC := usecase.NewCheckHealth(riskModel, stores.predictions)
	metricsUC := usecase.NewComputeModelMetrics(stores.monitoring, logger)

	// JWT validation for write and history endpoints.
	var validator auth.TokenValidator
	if cfg.Auth.Enabled() {
		jwtSvc, err := newJWTService(cfg.Auth)
		if err != nil {
			return err
		}
		validator = jwtSvc
		logger.Info("JWT authentication enabled")
	} else {
		logger.Warn("JWT authentication disabled, outcome and history endpoints are open")
	}

	// gRPC server.
	grpcServer, err := grpcPresentation.NewServer(
		grpcPresentation.NewHandler(assessUC, outcomeUC, listUC, metricsUC, logger),
		grpcPresentation.ServerConfig{
			Validator:   validator,
			Address:     cfg.GRPCAddr(),
			TLSCertFile: cfg.GRPC.TLSCertFile,
			TLSKeyFile:  cfg.GRPC.TLSKeyFile,
			Reflection:  cfg.GRPC.Reflection,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	// HTTP server.
	router := rest.NewRouter(
		rest.NewAssessmentHandler(assessUC, outcomeUC, listUC, metricsUC, logger),
		rest.NewWebHandler(assessUC, logger),
		rest.NewHealthHandler(healthUC, cfg.ServiceName),
		rest.RouterConfig{
			Validator:      validator,
			MetricsHandler: metricsHandler,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimitRPS:   cfg.RateLimitRPS,
		},
		logger,
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers and the optional outcome consumer.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if cfg.Kafka.Enabled() && cfg.Kafka.OutcomeTopic != "" {
		outcomes := kafka.NewOutcomeHandler(outcomeUC, logger)
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.OutcomeTopic, outcomes.Handle, logger)
		if err != nil {
			return fmt.Errorf("failed to create outcome consumer: %w", err)
		}
		defer func() { _ = consumer.Close() }() //nolint:errcheck // best-effort close
		go func() {
			if err := consumer.Start(consumerCtx); err != nil {
				errCh <- fmt.Errorf("outcome consumer error: %w", err)
			}
		}()
	}

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	stopConsumer()
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	return runErr
}

// newRiskModel selects the remote model server when MODEL_ENDPOINT is set and
// the built-in heuristic scorer otherwise, fronted by the Redis score cache
// when REDIS_ADDR is set.
func newRiskModel(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.RiskModel, func(), error) {
	var riskModel port.RiskModel
	if cfg.Model.Endpoint != "" {
		client, err := ml.NewHTTPModelClient(ml.HTTPModelClientConfig{
			Endpoint:     cfg.Model.Endpoint,
			Version:      cfg.Model.Version,
			TrainingDate: cfg.Model.TrainingDate,
			Timeout:      cfg.Model.Timeout,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create model client: %w", err)
		}
		riskModel = client
		logger.Info("using remote risk model", "endpoint", cfg.Model.Endpoint, "version", cfg.Model.Version)
	} else {
		riskModel = ml.NewHeuristicModel(cfg.Model.Version, cfg.Model.TrainingDate, logger)
		logger.Warn("MODEL_ENDPOINT not set, using the built-in heuristic scorer")
	}

	if !cfg.Cache.Enabled() {
		return riskModel, func() {}, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := cache.Dial(dialCtx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	if err != nil {
		// The cache only saves model calls; scoring works without it.
		logger.Warn("failed to connect to redis, continuing without score cache", "error", err)
		return riskModel, func() {}, nil
	}
	logger.Info("score cache enabled", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)

	cached := ml.NewCachedModel(riskModel, cache.NewRedisScoreCache(client), cfg.Cache.TTL, logger)
	return cached, func() { _ = client.Close() }, nil
}

type store struct {
	predictions port.PredictionRepository
	monitoring  port.MonitoringRepository
	close       func()
}

// openStore connects the configured prediction store. With DB_DRIVER=none
// both repositories stay nil: predictions are not logged and outcome,
// history and metrics calls fail with ErrStoreUnavailable.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		pgCfg := pkgpostgres.Config{
			Host:            cfg.DB.Host,
			Port:            cfg.DB.Port,
			User:            cfg.DB.User,
			Password:        cfg.DB.Password,
			Database:        cfg.DB.Name,
			SSLMode:         cfg.DB.SSLMode,
			ApplicationName: cfg.ServiceName,
		}
		pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
		if err != nil {
			return store{}, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)

		version, err := pkgpostgres.RunMigrations(pgCfg.DSN(), cfg.DB.MigrationsPath)
		if err != nil {
			pool.Close()
			return store{}, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("database migrated", "version", version)

		return store{
			predictions: pgRepo.NewPredictionRepo(pool),
			monitoring:  pgRepo.NewMonitoringRepo(pool),
			close:       pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DB.SQLitePath)
		if err != nil {
			return store{}, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Info("using sqlite store", "path", cfg.DB.SQLitePath)

		repo := sqlite.NewRepo(db)
		return store{
			predictions: repo,
			monitoring:  repo,
			close:       func() { _ = db.Close() },
		}, nil

	default:
		logger.Warn("DB_DRIVER=none, predictions will not be logged")
		return store{close: func() {}}, nil
	}
}

// newJWTService builds a validation-only JWT service: public key preferred,
// secret as fallback.
func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{
		Issuer: cfg.Issuer,
		Leeway: 30 * time.Second,
	}
	switch {
	case cfg.PublicKeyPEM != "":
		jwtCfg.PublicKeyPEM = cfg.PublicKeyPEM
	case cfg.PublicKeyFile != "":
		keyData, err := auth.LoadKeyFromFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load JWT public key file: %w", err)
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	default:
		jwtCfg.Secret = cfg.Secret
	}

	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	return svc, nil
}
