package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appcart "github.com/sudharshini/backend/internal/application/cart"
	catalogapp "github.com/sudharshini/backend/internal/application/catalog"
	identityapp "github.com/sudharshini/backend/internal/application/identity"
	apporder "github.com/sudharshini/backend/internal/application/order"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/infrastructure/auth"
	"github.com/sudharshini/backend/internal/infrastructure/cache"
	"github.com/sudharshini/backend/internal/infrastructure/config"
	"github.com/sudharshini/backend/internal/infrastructure/event"
	"github.com/sudharshini/backend/internal/infrastructure/geocoding"
	"github.com/sudharshini/backend/internal/infrastructure/logger"
	"github.com/sudharshini/backend/internal/infrastructure/notification"
	"github.com/sudharshini/backend/internal/infrastructure/persistence"
	"github.com/sudharshini/backend/internal/infrastructure/scheduler"
	"github.com/sudharshini/backend/internal/infrastructure/sheets"
	"github.com/sudharshini/backend/internal/infrastructure/storage"
	"github.com/sudharshini/backend/internal/infrastructure/telemetry"
	"github.com/sudharshini/backend/internal/interfaces/http/handler"
	"github.com/sudharshini/backend/internal/interfaces/http/middleware"
	"github.com/sudharshini/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry comes first so the final logger can bridge into OTLP logs
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if core := providers.ZapCore(logger.ParseLevel(cfg.Log.Level)); core != nil {
		if log, err = logger.New(cfg.Log, core); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Sudharshini backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver() == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        db.Driver(),
	}, log).Register(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	meter := providers.Meter("sudharshini")
	if providers.MetricsEnabled() {
		dbMetrics, err := telemetry.NewDBMetrics(meter, telemetry.DBMetricsConfig{
			SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
			PoolStatsInterval:  cfg.Telemetry.MetricsInterval,
		}, log)
		if err != nil {
			log.Fatal("Failed to create database metrics", zap.Error(err))
		}
		if err := db.DB.Use(dbMetrics); err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			dbMetrics.StartPoolStats(ctx, sqlDB)
		}
		defer dbMetrics.Stop()
	}

	// Short-lived state
	stores, err := cache.NewStores(ctx, cfg.Redis, cfg.IsProduction(), log)
	if err != nil {
		log.Fatal("Failed to initialize stores", zap.Error(err))
	}
	defer func() { _ = stores.Close() }()

	// Outbound integrations
	mailer, err := notification.NewMailer(cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err))
	}
	notifier := notification.NewEmailNotifier(mailer, cfg.Mail.AdminEmail, cfg.Mail.TrackingURL, log)
	geocoder := geocoding.New(cfg.Geocoding, log)

	var images catalogapp.ImageStorage = storage.NewMemoryImageStorage("/uploads")
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ImageStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		images = s3Storage
	}

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	locationRepo := persistence.NewGormLocationTrackingRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, stores.OTP, notifier, jwtService, stores.Blacklist, log)
	userService := identityapp.NewUserService(userRepo, stores.Blacklist, cfg.JWT.AccessTokenExpiration, log)

	orderOpts := []apporder.ServiceOption{
		apporder.WithGeocoder(geocoder),
		apporder.WithGeocodeTimeout(cfg.Geocoding.Timeout),
		apporder.WithLogger(log),
	}
	orderService := apporder.NewOrderService(orderRepo, locationRepo, userRepo, txScope, orderOpts...)
	deliveryService := apporder.NewDeliveryService(orderRepo, txScope, orderOpts...)

	productService := catalogapp.NewProductService(productRepo, reviewRepo, images, log)
	stockService := catalogapp.NewStockService(productRepo, movementRepo, txScope.Catalog(), log)
	reviewService := catalogapp.NewReviewService(reviewRepo, productRepo, userRepo, log)
	supplierService := catalogapp.NewSupplierService(supplierRepo)
	reportService := catalogapp.NewReportService(productRepo, log)
	cartService := appcart.NewService(cartRepo, productRepo, log)

	// Event bus
	bus := event.NewInMemoryEventBus(log, event.Options{
		Async:          cfg.Event.Async,
		HandlerTimeout: cfg.Event.HandlerTimeout,
	})
	idempotency := shared.IdempotencyConfig{TTL: cfg.Event.IdempotencyTTL, Enabled: true}
	subscribe := func(h shared.EventHandler) {
		bus.Subscribe(event.NewIdempotentHandler(h, stores.Idempotency, idempotency, log), h.EventTypes()...)
	}

	subscribe(catalogapp.NewLowStockAlertHandler(productRepo, log).WithNotifier(notifier))
	subscribe(apporder.NewOrderNotificationHandler(orderRepo, notifier, log))
	if cfg.Sheets.Enabled {
		exporter, err := sheets.NewExporter(ctx, cfg.Sheets, log)
		if err != nil {
			log.Fatal("Failed to initialize sheets exporter", zap.Error(err))
		}
		subscribe(apporder.NewOrderSheetExportHandler(orderRepo, exporter, log))
	}
	if providers.MetricsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(meter, productRepo, log)
		if err != nil {
			log.Fatal("Failed to create business metrics", zap.Error(err))
		}
		defer func() { _ = businessMetrics.Stop() }()
		bus.Subscribe(businessMetrics, businessMetrics.EventTypes()...)
	}

	for _, svc := range []interface {
		SetEventPublisher(shared.EventPublisher)
	}{orderService, deliveryService, productService, stockService, authService} {
		svc.SetEventPublisher(bus)
	}

	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Background jobs
	jobs := scheduler.New(cfg.Scheduler.JobTimeout, log)
	if cfg.Scheduler.ExpirySweepEnabled {
		sweeper := catalogapp.NewExpirySweepService(productRepo, notifier, log)
		if err := jobs.Register(scheduler.NewExpirySweepJob(sweeper, log), cfg.Scheduler.ExpirySweepInterval); err != nil {
			log.Fatal("Failed to register expiry sweep", zap.Error(err))
		}
	}
	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// HTTP
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		Production:  cfg.IsProduction(),
		Tracing:     providers.TracingEnabled(),
		Profiling:   cfg.Telemetry.ProfilingEnabled,
		Meter:       meter,
		Logger:      log,
	})
	defer engine.Close()

	handlers := router.Handlers{
		System: handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, map[string]handler.HealthCheck{
			"database": func(context.Context) error { return db.Ping() },
		}),
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Order:    handler.NewOrderHandler(orderService),
		Delivery: handler.NewDeliveryHandler(deliveryService),
		Product:  handler.NewProductHandler(productService),
		Stock:    handler.NewStockHandler(stockService),
		Review:   handler.NewReviewHandler(reviewService),
		Supplier: handler.NewSupplierHandler(supplierService),
		Cart:     handler.NewCartHandler(cartService),
		Report:   handler.NewReportHandler(reportService),
	}
	guards := router.NewGuards(authService, engine.AuthRateLimit(), log)
	router.NewRouter(engine.Engine).Register(router.Routes(handlers, guards)...).Setup()

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
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	busCtx := shutdownCtx
	if cfg.Event.ShutdownDeadline > 0 {
		var busCancel context.CancelFunc
		busCtx, busCancel = context.WithTimeout(shutdownCtx, cfg.Event.ShutdownDeadline)
		defer busCancel()
	}
	if err := bus.Stop(busCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
