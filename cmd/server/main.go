package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/printchain/backend/docs"
	billingapp "github.com/printchain/backend/internal/application/billing"
	eventapp "github.com/printchain/backend/internal/application/event"
	intakeapp "github.com/printchain/backend/internal/application/intake"
	"github.com/printchain/backend/internal/application/notification"
	pricingapp "github.com/printchain/backend/internal/application/pricing"
	recapp "github.com/printchain/backend/internal/application/reconciliation"
	tradeapp "github.com/printchain/backend/internal/application/trade"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/infrastructure/cache"
	"github.com/printchain/backend/internal/infrastructure/config"
	"github.com/printchain/backend/internal/infrastructure/event"
	"github.com/printchain/backend/internal/infrastructure/extractor"
	"github.com/printchain/backend/internal/infrastructure/lock"
	"github.com/printchain/backend/internal/infrastructure/logger"
	"github.com/printchain/backend/internal/infrastructure/persistence"
	"github.com/printchain/backend/internal/infrastructure/scheduler"
	"github.com/printchain/backend/internal/infrastructure/storage"
	"github.com/printchain/backend/internal/infrastructure/telemetry"
	"github.com/printchain/backend/internal/interfaces/http/handler"
	"github.com/printchain/backend/internal/interfaces/http/middleware"
	"github.com/printchain/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Printchain API
//	@version		1.0
//	@description	Print job pricing, purchase order cascade, invoicing and document reconciliation.
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting printchain",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfigFrom(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		log = logProvider.Bridge(log, level)
	}

	db, err := persistence.NewDatabase(cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing,
		DBSystem: cfg.Database.Driver,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	metrics, err := telemetry.NewSupplyChainMetrics(meterProvider.Meter("printchain"))
	if err != nil {
		log.Fatal("Failed to register supply chain metrics", zap.Error(err))
	}

	// Repositories share one outbox publisher so every aggregate write stores its events in the same transaction
	serializer := event.NewDefaultSerializer()
	publisher := event.NewOutboxPublisher(serializer, cfg.Event.MaxRetries)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	rateCard := persistence.NewCachedRateCard(persistence.NewGormRateCardRepository(db.DB))
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	jobRepo := persistence.NewGormJobRepository(db.DB, publisher)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB, publisher)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB, publisher)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)
	inboundRepo := persistence.NewGormInboundEventRepository(db.DB, publisher)

	queue, err := scheduler.NewTaskQueue(scheduler.QueueConfigFrom(cfg.Scheduler), log)
	if err != nil {
		log.Fatal("Failed to create task queue", zap.Error(err))
	}
	if err := queue.Start(ctx); err != nil {
		log.Fatal("Failed to start task queue", zap.Error(err))
	}

	archive := newArchive(ctx, cfg, log)
	pdfExtractor, err := extractor.NewHTTPExtractor(cfg.Extractor, log)
	if err != nil {
		log.Fatal("Failed to create extractor client", zap.Error(err))
	}

	// Application services
	jobService := pricingapp.NewJobService(jobRepo, rateCard, orderRepo, companyRepo, log)
	cascadeService := tradeapp.NewCascadeService(jobRepo, orderRepo, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, jobRepo, orderRepo, log)
	auditConfig, err := recapp.AuditConfigFrom(cfg.Reconciliation)
	if err != nil {
		log.Fatal("Invalid reconciliation configuration", zap.Error(err))
	}
	auditService := recapp.NewAuditService(recapp.AuditServiceDeps{
		Jobs:        jobRepo,
		Orders:      orderRepo,
		Invoices:    invoiceRepo,
		Companies:   companyRepo,
		Corrections: syncLogRepo,
		Logs:        syncLogRepo,
	}, auditConfig, log)
	webhookService, err := intakeapp.NewWebhookService(intakeapp.WebhookServiceDeps{
		Events:    inboundRepo,
		Orders:    orderRepo,
		Jobs:      jobRepo,
		Companies: companyRepo,
		Extractor: pdfExtractor,
		Archive:   archive,
		Runner:    queue,
	}, intakeapp.WebhookConfigFrom(cfg.Intake, cfg.Extractor), log)
	if err != nil {
		log.Fatal("Invalid intake configuration", zap.Error(err))
	}
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	jobService.SetMetrics(metrics)
	cascadeService.SetMetrics(metrics)
	invoiceService.SetMetrics(metrics)
	auditService.SetMetrics(metrics)
	webhookService.SetMetrics(metrics)

	// Event handlers, deduplicated across redeliveries
	eventBus := event.NewInMemoryEventBus(log)
	idempotency := cache.NewIdempotencyStore(redisClient, log)
	idempotencyConfig := shared.IdempotencyConfig{TTL: cfg.Event.IdempotencyTTL, Enabled: true}
	documents := billingapp.NewJobDocumentsHandler(jobRepo, cascadeService, invoiceService, queue, log)
	eventBus.Subscribe(event.NewIdempotentHandler(documents, idempotency, log,
		event.WithScope("job-documents"), event.WithIdempotencyConfig(idempotencyConfig)))
	if cfg.Notification.Enabled {
		invoiceMail := notification.NewInvoiceIssuedHandler(companyRepo, notification.NewLogNotifier(log), cfg.Notification.FromAddress, log)
		eventBus.Subscribe(event.NewIdempotentHandler(invoiceMail, idempotency, log,
			event.WithScope("invoice-mail"), event.WithIdempotencyConfig(idempotencyConfig)))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	var processor *event.OutboxProcessor
	if cfg.Event.ProcessorEnabled {
		processor = event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.ProcessorConfigFrom(cfg.Event), log)
		if err := processor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
	}

	sweeper := scheduler.NewStalledSweeper(webhookService, queue, cfg.Scheduler.StalledAfter, cfg.Scheduler.StalledSweep, log)
	sweeper.Start(ctx)

	var auditCron *scheduler.AuditCron
	if cfg.Scheduler.Enabled {
		var locker lock.Locker = lock.NewLocalLocker()
		if redisClient != nil {
			locker = lock.NewRedisLocker(redisClient, cfg.App.Name)
		}
		auditCron, err = scheduler.NewAuditCron(scheduler.AuditCronConfig{
			Schedule: cfg.Scheduler.AuditCronSchedule,
			Timezone: cfg.Scheduler.Timezone,
			Repair:   cfg.Scheduler.AuditRepair,
			LockTTL:  cfg.Scheduler.LockTTL,
		}, auditService, queue, locker, log)
		if err != nil {
			log.Fatal("Failed to schedule nightly audit", zap.Error(err))
		}
		auditCron.Start()
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(
		logger.Recovery(log),
	)
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled)...)
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Actor(),
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.HTTPMetrics(meterProvider, log),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	checks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, checks)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any", middleware.SwaggerAccess(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.NoRoute(systemHandler.NotFound)

	limiter := middleware.NewRateLimiter(cfg.Intake.RateLimit, cfg.Intake.RatePeriod)
	defer limiter.Close()

	router.NewRouter(engine).Register(router.Groups(router.Handlers{
		Jobs:           handler.NewJobHandler(jobService, cascadeService),
		PurchaseOrders: handler.NewPurchaseOrderHandler(cascadeService),
		Invoices:       handler.NewInvoiceHandler(invoiceService),
		Webhooks:       handler.NewWebhookHandler(webhookService),
		Reconciliation: handler.NewReconciliationHandler(auditService),
		Outbox:         handler.NewOutboxHandler(outboxService),
		System:         systemHandler,
	}, middleware.RateLimit(limiter), middleware.BodyLimit(cfg.Intake.MaxAttachment))...).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if auditCron != nil {
		if err := auditCron.Stop(shutdownCtx); err != nil {
			log.Warn("Nightly audit did not stop cleanly", zap.Error(err))
		}
	}
	sweeper.Stop()
	if processor != nil {
		if err := processor.Stop(shutdownCtx); err != nil {
			log.Warn("Outbox processor did not stop cleanly", zap.Error(err))
		}
	}
	_ = eventBus.Stop(shutdownCtx)
	if err := queue.Stop(shutdownCtx); err != nil {
		log.Warn("Task queue did not drain", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Metrics shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracing shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Log export shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler did not stop cleanly", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newArchive keeps inbound documents in S3 when storage is configured and in
// memory otherwise.
func newArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) intakeapp.DocumentArchive {
	if !cfg.Storage.Enabled {
		log.Warn("object storage disabled, inbound documents are archived in memory")
		return storage.NewMemoryObjectStorage()
	}
	s3, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare archive bucket", zap.Error(err))
	}
	return s3
}
