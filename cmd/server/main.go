package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/dropship/backoffice/internal/application/catalog"
	identityapp "github.com/dropship/backoffice/internal/application/identity"
	importapp "github.com/dropship/backoffice/internal/application/import"
	mediaapp "github.com/dropship/backoffice/internal/application/media"
	postbackapp "github.com/dropship/backoffice/internal/application/postback"
	receiptapp "github.com/dropship/backoffice/internal/application/receipt"
	reportapp "github.com/dropship/backoffice/internal/application/report"
	tradeapp "github.com/dropship/backoffice/internal/application/trade"
	walletapp "github.com/dropship/backoffice/internal/application/wallet"
	walletdomain "github.com/dropship/backoffice/internal/domain/wallet"
	"github.com/dropship/backoffice/internal/infrastructure/auth"
	"github.com/dropship/backoffice/internal/infrastructure/cache"
	"github.com/dropship/backoffice/internal/infrastructure/config"
	"github.com/dropship/backoffice/internal/infrastructure/event"
	"github.com/dropship/backoffice/internal/infrastructure/logger"
	"github.com/dropship/backoffice/internal/infrastructure/payment"
	"github.com/dropship/backoffice/internal/infrastructure/persistence"
	postbackinfra "github.com/dropship/backoffice/internal/infrastructure/postback"
	"github.com/dropship/backoffice/internal/infrastructure/printing"
	"github.com/dropship/backoffice/internal/infrastructure/scheduler"
	"github.com/dropship/backoffice/internal/infrastructure/storage"
	"github.com/dropship/backoffice/internal/infrastructure/telemetry"
	"github.com/dropship/backoffice/internal/interfaces/http/handler"
	"github.com/dropship/backoffice/internal/interfaces/http/middleware"
	"github.com/dropship/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "github.com/dropship/backoffice/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Dropship Back-Office API
//	@version		1.0
//	@description	Multi-tenant dropshipping back office: catalog, leads, seller wallets, postbacks and bulk imports.

//	@contact.name	API Support
//	@contact.url	https://github.com/dropship/backoffice

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting back-office backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize OpenTelemetry providers (no-ops when telemetry is disabled)
	telemetryCtx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(telemetryCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracerProvider.Shutdown(shutdownCtx)
	}()

	meterProvider, err := telemetry.NewMeterProvider(telemetryCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = meterProvider.Shutdown(shutdownCtx)
	}()

	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Error("Failed to register database tracing", zap.Error(err))
		}
	}

	if cfg.Telemetry.Enabled {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:            meterProvider.Meter("backoffice"),
			Logger:           log,
			DeliveryProvider: telemetry.NewGormDeliveryMetricsProvider(db.DB),
		})
		if err != nil {
			log.Error("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(telemetryCtx, telemetry.NewGormTenantProvider(db.DB), 5*time.Minute)
			defer businessMetrics.Stop()
		}
	}

	// Initialize repositories
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	snapshotRepo := persistence.NewGormLeadSnapshotRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	walletRepo := persistence.NewGormWalletRepository(db.DB)
	balanceRepo := persistence.NewGormBalanceRepository(db.DB)
	walletTxRepo := persistence.NewGormWalletTransactionRepository(db.DB)
	withdrawalRepo := persistence.NewGormWithdrawalRepository(db.DB)
	postbackConfigRepo := persistence.NewGormPostbackConfigRepository(db.DB)
	postbackDeliveryRepo := persistence.NewGormPostbackDeliveryRepository(db.DB)
	importSessionRepo := persistence.NewGormImportSessionRepository(db.DB)
	attachmentRepo := persistence.NewGormProductAttachmentRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Lead status changes must reach the outbox atomically with the lead row
	leadRepo.SetOutboxEventSaver(outboxPublisher)

	// Event bus drives the in-process handlers (wallet credits, postbacks)
	eventBus := event.NewInMemoryEventBus(log)

	// Token infrastructure. Redis keeps revoked tokens visible across
	// instances; a single-node deployment can run without it.
	jwtService := auth.NewJWTService(cfg.JWT)
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis token blacklist unavailable, using in-memory", zap.Error(err))
			tokenBlacklist = auth.NewInMemoryTokenBlacklist()
		} else {
			tokenBlacklist = blacklist
		}
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Object storage for product media and raw import files
	var objectStorage mediaapp.ObjectStorageService
	if cfg.Storage.Provider == "s3" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("S3 object storage initialized",
			zap.String("endpoint", cfg.Storage.Endpoint),
			zap.String("bucket", cfg.Storage.Bucket),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Using stub object storage; presigned URLs are not real")
	}

	// Stripe payout gateway (optional; withdrawals stay manual without it)
	var payoutGateway walletdomain.PayoutGateway
	if cfg.Stripe.SecretKey != "" {
		gateway, err := payment.NewStripePayoutGateway(&payment.StripeConfig{
			SecretKey:  cfg.Stripe.SecretKey,
			IsTestMode: cfg.Stripe.IsTestMode,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize Stripe payout gateway", zap.Error(err))
		}
		payoutGateway = gateway
		log.Info("Stripe payout gateway initialized", zap.Bool("test_mode", cfg.Stripe.IsTestMode))
	}

	// Initialize application services
	productService := catalogapp.NewProductService(productRepo, categoryRepo)
	productService.SetEventPublisher(eventBus)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	attachmentService := catalogapp.NewAttachmentService(attachmentRepo, productRepo, objectStorage)
	attachmentService.SetLogger(log)

	leadService := tradeapp.NewLeadService(leadRepo, productRepo, log)
	leadService.SetEventPublisher(eventBus)
	statsService := tradeapp.NewLeadStatsService(leadRepo, snapshotRepo, log)
	snapshotService := reportapp.NewSnapshotService(snapshotRepo, leadRepo, log)

	walletServiceConfig := walletapp.DefaultWalletServiceConfig()
	if cfg.Wallet.MaxWalletsPerUser > 0 {
		walletServiceConfig.MaxWalletsPerUser = cfg.Wallet.MaxWalletsPerUser
	}
	walletService := walletapp.NewWalletService(walletRepo, withdrawalRepo, walletServiceConfig, log)
	walletService.SetEventPublisher(eventBus)

	ledgerService := walletapp.NewLedgerService(balanceRepo, walletTxRepo, log)

	withdrawalServiceConfig := walletapp.DefaultWithdrawalServiceConfig()
	if cfg.Wallet.WithdrawMinimum > 0 {
		withdrawalServiceConfig.MinimumAmount = decimal.NewFromFloat(cfg.Wallet.WithdrawMinimum)
	}
	withdrawalService := walletapp.NewWithdrawalService(
		withdrawalRepo, walletRepo, balanceRepo, payoutGateway, withdrawalServiceConfig, log,
	)
	withdrawalService.SetEventPublisher(eventBus)

	postbackConfigService := postbackapp.NewConfigService(
		postbackConfigRepo, postbackDeliveryRepo, postbackapp.DefaultConfigServiceConfig(), log,
	)
	postbackDeliveryService := postbackapp.NewDeliveryService(postbackDeliveryRepo, postbackConfigRepo, log)
	purgeService := postbackapp.NewPurgeService(postbackDeliveryRepo, postbackapp.PurgeServiceConfig{
		Retention: cfg.Postback.PurgeRetention,
	}, log)

	importServiceConfig := importapp.DefaultImportServiceConfig()
	if cfg.Import.SyncRowLimit > 0 {
		importServiceConfig.SyncRowLimit = cfg.Import.SyncRowLimit
	}
	if cfg.Import.MaxRows > 0 {
		importServiceConfig.MaxRows = cfg.Import.MaxRows
	}
	if cfg.Import.MaxFileSize > 0 {
		importServiceConfig.MaxFileSize = cfg.Import.MaxFileSize
	}
	importService := importapp.NewImportService(
		importSessionRepo, productRepo, categoryRepo, objectStorage, importServiceConfig, log,
	)
	importService.SetEventPublisher(eventBus)

	mediaServiceConfig := mediaapp.DefaultMediaServiceConfig()
	if cfg.Storage.PresignExpiration > 0 {
		mediaServiceConfig.UploadURLExpiry = cfg.Storage.PresignExpiration
	}
	mediaService := mediaapp.NewMediaService(objectStorage, mediaServiceConfig, log)

	// Identity services (auth, users, tenants)
	authService := identityapp.NewAuthService(
		userRepo, tenantRepo, jwtService, tokenBlacklist, eventBus,
		identityapp.DefaultAuthServiceConfig(), log,
	)
	userService := identityapp.NewUserService(userRepo, eventBus, log)
	tenantService := identityapp.NewTenantService(tenantRepo, log)

	// Receipt rendering (optional; endpoint answers 503 when disabled)
	templateEngine := printing.NewTemplateEngine()
	var pdfRenderer printing.PDFRenderer
	if cfg.Printing.Enabled {
		var renderer printing.PDFRenderer
		var rendererErr error
		switch cfg.Printing.Engine {
		case "wkhtmltopdf":
			renderer, rendererErr = printing.NewWkhtmltopdfRenderer(&printing.WkhtmltopdfConfig{
				DefaultTimeout: cfg.Printing.RenderTimeout,
				Logger:         log,
			})
		default:
			renderer, rendererErr = printing.NewChromedpRenderer(&printing.ChromedpConfig{
				DefaultTimeout: cfg.Printing.RenderTimeout,
				Headless:       true,
				DisableGPU:     true,
				NoSandbox:      true,
				ExecPath:       cfg.Printing.ChromePath,
				Logger:         log,
			})
		}
		if rendererErr != nil {
			log.Warn("PDF renderer unavailable, receipts disabled",
				zap.String("engine", cfg.Printing.Engine),
				zap.Error(rendererErr))
		} else {
			pdfRenderer = renderer
			defer func() {
				if err := renderer.Close(); err != nil {
					log.Error("Error closing PDF renderer", zap.Error(err))
				}
			}()
		}
	}
	receiptService := receiptapp.NewService(leadRepo, tenantRepo, templateEngine, pdfRenderer, log)

	// Redis-backed idempotency keeps replayed outbox events from crediting
	// a seller twice; falls back to in-memory when Redis is absent
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Register event handlers for cross-context integration
	// Lead reaches PAID -> seller wallet credit
	leadPaidHandler := walletapp.NewLeadPaidHandler(balanceRepo, walletTxRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(leadPaidHandler, idempotencyStore, log))

	// Lead status change -> postback delivery fan-out
	leadStatusChangedHandler := postbackapp.NewLeadStatusChangedHandler(postbackConfigRepo, postbackDeliveryRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(leadStatusChangedHandler, idempotencyStore, log))

	// Product hidden/archived -> notify sellers with open leads on it
	productDisabledHandler := catalogapp.NewProductDisabledHandler(log)
	eventBus.Subscribe(productDisabledHandler)

	log.Info("Event handlers registered",
		zap.Strings("lead_paid_events", leadPaidHandler.EventTypes()),
		zap.Strings("lead_status_changed_events", leadStatusChangedHandler.EventTypes()),
		zap.Strings("product_disabled_events", productDisabledHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor replays persisted events onto the bus
	outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
	if cfg.Event.BatchSize > 0 {
		outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
	}
	if cfg.Event.PollInterval > 0 {
		outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
	}
	if cfg.Event.ProcessorEnabled {
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	}

	// Postback dispatcher drains the delivery queue in the background
	if cfg.Postback.DispatcherEnabled {
		dispatcher := postbackinfra.NewDispatcher(postbackDeliveryRepo, postbackConfigRepo, postbackinfra.DispatcherConfig{
			BatchSize:        cfg.Postback.BatchSize,
			PollInterval:     cfg.Postback.PollInterval,
			RequestTimeout:   cfg.Postback.HTTPTimeout,
			DisableThreshold: cfg.Postback.AutoDisableThreshold,
		}, log)
		dispatcher.SetEventPublisher(eventBus)
		if err := dispatcher.Start(context.Background()); err != nil {
			log.Fatal("Failed to start postback dispatcher", zap.Error(err))
		}
		defer func() {
			if err := dispatcher.Stop(context.Background()); err != nil {
				log.Error("Error stopping postback dispatcher", zap.Error(err))
			}
		}()
	}

	// Nightly snapshot pass plus hourly delivery purge
	if cfg.Scheduler.Enabled {
		cronConfig := scheduler.DefaultCronSchedulerConfig()
		cronConfig.Enabled = cfg.Scheduler.Enabled
		cronConfig.DailyCronSchedule = cfg.Scheduler.DailyCronSchedule
		if hour, minute, err := scheduler.ParseCronSchedule(cfg.Scheduler.DailyCronSchedule); err == nil {
			cronConfig.CronHour = hour
			cronConfig.CronMinute = minute
		}
		if cfg.Scheduler.SnapshotBackfill > 0 {
			cronConfig.SnapshotBackfill = cfg.Scheduler.SnapshotBackfill
		}
		cronConfig.PurgeEnabled = cfg.Postback.PurgeEnabled
		if cfg.Scheduler.MaxConcurrentJobs > 0 {
			cronConfig.MaxConcurrentJobs = cfg.Scheduler.MaxConcurrentJobs
		}
		if cfg.Scheduler.JobTimeout > 0 {
			cronConfig.JobTimeout = cfg.Scheduler.JobTimeout
		}
		cronConfig.RetryAttempts = cfg.Scheduler.RetryAttempts
		cronConfig.RetryDelay = cfg.Scheduler.RetryDelay

		executorMux := scheduler.NewExecutorMux()
		executorMux.Register(scheduler.JobTypeDailySnapshot, snapshotService)
		executorMux.Register(scheduler.JobTypeDeliveryPurge, purgeService)

		jobRepo := scheduler.NewSchedulerJobRepository(db.DB)
		cronScheduler := scheduler.NewCronScheduler(cronConfig, executorMux, tenantRepo, jobRepo, log)
		if err := cronScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
		}
		defer func() {
			if err := cronScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping maintenance scheduler", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	leadHandler := handler.NewLeadHandler(leadService, statsService)
	receiptHandler := handler.NewReceiptHandler(receiptService)
	walletHandler := handler.NewWalletHandler(walletService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalService)
	postbackHandler := handler.NewPostbackHandler(postbackConfigService, postbackDeliveryService)
	importHandler := handler.NewImportHandler(importService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	tenantHandler := handler.NewTenantHandler(tenantService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing())
	engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("backoffice/http"), cfg.Telemetry.Enabled))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Registration, login and token refresh stay public
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Auth routes (register/login/refresh skip JWT via SkipPaths)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/me", userHandler.UpdateProfile)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// User management (staff approve registrations, admins manage roles)
	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.POST("", middleware.RequireAdmin(), userHandler.Create)
	userRoutes.GET("", middleware.RequireStaff(), userHandler.List)
	userRoutes.GET("/pending", middleware.RequireStaff(), userHandler.ListPending)
	userRoutes.GET("/counts", middleware.RequireStaff(), userHandler.Counts)
	userRoutes.GET("/:id", middleware.RequireStaff(), userHandler.GetByID)
	userRoutes.PUT("/:id", middleware.RequireStaff(), userHandler.Update)
	userRoutes.POST("/:id/approve", middleware.RequireStaff(), userHandler.Approve)
	userRoutes.POST("/:id/reject", middleware.RequireStaff(), userHandler.Reject)
	userRoutes.POST("/:id/lock", middleware.RequireStaff(), userHandler.Lock)
	userRoutes.POST("/:id/unlock", middleware.RequireStaff(), userHandler.Unlock)
	userRoutes.POST("/:id/deactivate", middleware.RequireAdmin(), userHandler.Deactivate)
	userRoutes.PUT("/:id/role", middleware.RequireAdmin(), userHandler.SetRole)
	userRoutes.DELETE("/:id", middleware.RequireAdmin(), userHandler.Delete)

	// Catalog domain (products, categories)
	catalogRoutes := router.NewDomainGroup("catalog", "")
	catalogRoutes.POST("/products", middleware.RequireStaff(), productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/counts", productHandler.CountByVisibility)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id", middleware.RequireStaff(), productHandler.Update)
	catalogRoutes.PUT("/products/:id/sku", middleware.RequireStaff(), productHandler.UpdateSKU)
	catalogRoutes.POST("/products/:id/stock", middleware.RequireStaff(), productHandler.AdjustStock)
	catalogRoutes.POST("/products/:id/activate", middleware.RequireStaff(), productHandler.Activate)
	catalogRoutes.POST("/products/:id/hide", middleware.RequireStaff(), productHandler.Hide)
	catalogRoutes.POST("/products/:id/archive", middleware.RequireStaff(), productHandler.Archive)
	catalogRoutes.POST("/products/:id/restore", middleware.RequireStaff(), productHandler.Restore)
	catalogRoutes.DELETE("/products/:id", middleware.RequireAdmin(), productHandler.Delete)

	catalogRoutes.GET("/products/:id/attachments", attachmentHandler.ListByProduct)
	catalogRoutes.GET("/products/:id/attachments/main", attachmentHandler.GetMainImage)
	catalogRoutes.POST("/attachments/initiate", middleware.RequireStaff(), attachmentHandler.InitiateUpload)
	catalogRoutes.POST("/attachments/reorder", middleware.RequireStaff(), attachmentHandler.Reorder)
	catalogRoutes.GET("/attachments/:id", attachmentHandler.GetByID)
	catalogRoutes.POST("/attachments/:id/confirm", middleware.RequireStaff(), attachmentHandler.ConfirmUpload)
	catalogRoutes.POST("/attachments/:id/main", middleware.RequireStaff(), attachmentHandler.SetMainImage)
	catalogRoutes.DELETE("/attachments/:id", middleware.RequireStaff(), attachmentHandler.Delete)

	catalogRoutes.POST("/categories", middleware.RequireStaff(), categoryHandler.Create)
	catalogRoutes.GET("/categories", categoryHandler.List)
	catalogRoutes.GET("/categories/tree", categoryHandler.GetTree)
	catalogRoutes.GET("/categories/:id", categoryHandler.GetByID)
	catalogRoutes.GET("/categories/:id/children", categoryHandler.GetChildren)
	catalogRoutes.PUT("/categories/:id", middleware.RequireStaff(), categoryHandler.Update)
	catalogRoutes.DELETE("/categories/:id", middleware.RequireStaff(), categoryHandler.Delete)

	// Trade domain (leads, stats, receipts)
	leadRoutes := router.NewDomainGroup("leads", "/leads")
	leadRoutes.POST("", leadHandler.Create)
	leadRoutes.GET("", leadHandler.List)
	leadRoutes.GET("/summary", leadHandler.GetStatusSummary)
	leadRoutes.GET("/stats/daily", leadHandler.GetDailyStats)
	leadRoutes.GET("/number/:number", leadHandler.GetByNumber)
	leadRoutes.POST("/bulk/status", middleware.RequireStaff(), leadHandler.BulkChangeStatus)
	leadRoutes.GET("/:id", leadHandler.GetByID)
	leadRoutes.PUT("/:id", leadHandler.Update)
	leadRoutes.POST("/:id/status", leadHandler.ChangeStatus)
	leadRoutes.GET("/:id/history", leadHandler.GetStatusHistory)
	leadRoutes.GET("/:id/receipt", receiptHandler.GetLeadReceipt)

	// Wallet domain (payout wallets, ledger, withdrawals)
	walletRoutes := router.NewDomainGroup("wallets", "")
	walletRoutes.POST("/wallets", walletHandler.Create)
	walletRoutes.GET("/wallets", walletHandler.List)
	walletRoutes.GET("/wallets/:id", walletHandler.GetByID)
	walletRoutes.PUT("/wallets/:id", walletHandler.Update)
	walletRoutes.POST("/wallets/:id/default", walletHandler.SetDefault)
	walletRoutes.DELETE("/wallets/:id", walletHandler.Delete)
	walletRoutes.GET("/wallet/transactions", ledgerHandler.ListTransactions)
	walletRoutes.GET("/wallet/balance", ledgerHandler.GetBalanceSummary)
	walletRoutes.POST("/withdrawals", withdrawalHandler.Request)
	walletRoutes.GET("/withdrawals", withdrawalHandler.List)
	walletRoutes.GET("/withdrawals/:id", withdrawalHandler.GetByID)
	walletRoutes.POST("/withdrawals/:id/cancel", withdrawalHandler.Cancel)

	// Postback subscriptions
	postbackRoutes := router.NewDomainGroup("postbacks", "/postbacks")
	postbackRoutes.POST("", postbackHandler.CreateConfig)
	postbackRoutes.GET("", postbackHandler.ListConfigs)
	postbackRoutes.GET("/:id", postbackHandler.GetConfig)
	postbackRoutes.PUT("/:id", postbackHandler.UpdateConfig)
	postbackRoutes.POST("/:id/enable", postbackHandler.EnableConfig)
	postbackRoutes.POST("/:id/disable", postbackHandler.DisableConfig)
	postbackRoutes.DELETE("/:id", postbackHandler.DeleteConfig)
	postbackRoutes.POST("/:id/test", postbackHandler.SendTest)
	postbackRoutes.GET("/:id/deliveries", postbackHandler.ListDeliveries)

	// Bulk imports and media
	importRoutes := router.NewDomainGroup("imports", "/imports")
	importRoutes.POST("", middleware.RequireStaff(), importHandler.Upload)
	importRoutes.GET("", middleware.RequireStaff(), importHandler.ListSessions)
	importRoutes.GET("/:id", middleware.RequireStaff(), importHandler.GetSession)
	importRoutes.POST("/:id/cancel", middleware.RequireStaff(), importHandler.Cancel)

	mediaRoutes := router.NewDomainGroup("media", "/media")
	mediaRoutes.POST("/presign-upload", middleware.RequireStaff(), mediaHandler.PresignUpload)
	mediaRoutes.POST("/presign-download", mediaHandler.PresignDownload)
	mediaRoutes.DELETE("", middleware.RequireStaff(), mediaHandler.Delete)

	// Admin surface: tenants, ledger adjustments, withdrawal review,
	// dead postback deliveries
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.POST("/tenants", middleware.RequireAdmin(), tenantHandler.Create)
	adminRoutes.GET("/tenants", middleware.RequireAdmin(), tenantHandler.List)
	adminRoutes.GET("/tenants/:id", middleware.RequireAdmin(), tenantHandler.GetByID)
	adminRoutes.PUT("/tenants/:id", middleware.RequireAdmin(), tenantHandler.Update)
	adminRoutes.POST("/tenants/:id/activate", middleware.RequireAdmin(), tenantHandler.Activate)
	adminRoutes.POST("/tenants/:id/deactivate", middleware.RequireAdmin(), tenantHandler.Deactivate)
	adminRoutes.POST("/tenants/:id/suspend", middleware.RequireAdmin(), tenantHandler.Suspend)
	adminRoutes.DELETE("/tenants/:id", middleware.RequireAdmin(), tenantHandler.Delete)

	adminRoutes.GET("/wallet/transactions", middleware.RequireStaff(), ledgerHandler.ListAllTransactions)
	adminRoutes.POST("/wallet/adjust", middleware.RequireAdmin(), ledgerHandler.Adjust)

	adminRoutes.GET("/withdrawals/summary", middleware.RequireStaff(), withdrawalHandler.GetStatusSummary)
	adminRoutes.POST("/withdrawals/:id/approve", middleware.RequireAdmin(), withdrawalHandler.Approve)
	adminRoutes.POST("/withdrawals/:id/reject", middleware.RequireAdmin(), withdrawalHandler.Reject)
	adminRoutes.POST("/withdrawals/:id/retry", middleware.RequireAdmin(), withdrawalHandler.RetryPayout)

	adminRoutes.GET("/postback-deliveries/summary", middleware.RequireStaff(), postbackHandler.GetDeliverySummary)
	adminRoutes.GET("/postback-deliveries/dead", middleware.RequireStaff(), postbackHandler.ListDead)
	adminRoutes.GET("/postback-deliveries/:id", middleware.RequireStaff(), postbackHandler.GetDelivery)
	adminRoutes.POST("/postback-deliveries/:id/requeue", middleware.RequireStaff(), postbackHandler.RequeueDelivery)

	// Register all domain groups
	r.Register(authRoutes).
		Register(userRoutes).
		Register(catalogRoutes).
		Register(leadRoutes).
		Register(walletRoutes).
		Register(postbackRoutes).
		Register(importRoutes).
		Register(mediaRoutes).
		Register(adminRoutes)

	// Register system routes with swagger-documented handlers
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight background imports finish before the process exits
	importService.Wait()

	log.Info("Server exited")
}

// healthHandler returns a handler reporting process and database health
func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			log.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "down",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "up",
		})
	}
}
