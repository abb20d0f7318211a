package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cashapp "github.com/poscore/backend/internal/application/cash"
	catalogapp "github.com/poscore/backend/internal/application/catalog"
	inventoryapp "github.com/poscore/backend/internal/application/inventory"
	locationapp "github.com/poscore/backend/internal/application/location"
	appnotification "github.com/poscore/backend/internal/application/notification"
	requestapp "github.com/poscore/backend/internal/application/request"
	transferapp "github.com/poscore/backend/internal/application/transfer"
	"github.com/poscore/backend/internal/infrastructure/config"
	"github.com/poscore/backend/internal/infrastructure/event"
	"github.com/poscore/backend/internal/infrastructure/logger"
	"github.com/poscore/backend/internal/infrastructure/notification"
	"github.com/poscore/backend/internal/infrastructure/persistence"
	"github.com/poscore/backend/internal/infrastructure/scheduler"
	"github.com/poscore/backend/internal/infrastructure/telemetry"
	"github.com/poscore/backend/internal/interfaces/http/handler"
	"github.com/poscore/backend/internal/interfaces/http/middleware"
	"github.com/poscore/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

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

	log.Info("Starting POSCore Backend",
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

	// Schema sync outside production; production runs versioned
	// migrations via cmd/migrate.
	if cfg.App.Env != "production" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to run auto migration", zap.Error(err))
		}
		log.Info("Auto migration completed")
	}

	// Telemetry providers (no-op when disabled)
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
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
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
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
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)

	// Transaction scopes bundle the per-aggregate repositories that must
	// commit together.
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	transferScope := persistence.NewGormTransferTransactionScope(db.DB)
	requestScope := persistence.NewGormRequestTransactionScope(db.DB)
	cashScope := persistence.NewGormCashTransactionScope(db.DB)

	// Initialize application services
	productService := catalogapp.NewProductService(productRepo)
	locationService := locationapp.NewService(locationRepo)
	inventoryService := inventoryapp.NewService(inventoryScope, productRepo)
	transferService := transferapp.NewService(transferScope, locationRepo, productRepo)
	requestService := requestapp.NewService(requestScope, locationRepo, productRepo)
	cashService := cashapp.NewService(cashScope)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log, cfg.Event.BufferSize, cfg.Event.HandlerTimeout)
	eventBus.Subscribe(event.NewLoggingHandler(log))

	if cfg.Telemetry.Enabled {
		inventoryMetrics, err := telemetry.NewInventoryMetrics(meterProvider.Meter(telemetry.TracerName), log)
		if err != nil {
			log.Warn("Failed to initialize inventory metrics", zap.Error(err))
		} else {
			eventBus.Subscribe(event.NewMetricsHandler(inventoryMetrics))
		}
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	productService.SetEventPublisher(eventBus)
	inventoryService.SetEventPublisher(eventBus)
	transferService.SetEventPublisher(eventBus)
	requestService.SetEventPublisher(eventBus)
	cashService.SetEventPublisher(eventBus)

	// Operational notifications go to Redis pub/sub when reachable,
	// otherwise to the log.
	var notifier appnotification.Notifier
	redisNotifier, err := notification.NewRedisNotifier(notification.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		log.Warn("Redis notifier unavailable, falling back to log notifier", zap.Error(err))
		notifier = notification.NewLogNotifier(log)
	} else {
		notifier = redisNotifier
		defer func() {
			if err := redisNotifier.Close(); err != nil {
				log.Error("Error closing redis notifier", zap.Error(err))
			}
		}()
	}
	inventoryService.SetNotifier(notifier)
	transferService.SetNotifier(notifier)
	requestService.SetNotifier(notifier)
	inventoryService.SetLowStockAlerts(cfg.Inventory.LowStockEnabled)

	// Daily sweep flagging batches that expire inside the alert window
	sweeperConfig := scheduler.DefaultExpirySweeperConfig()
	sweeperConfig.AlertWindow = cfg.Inventory.ExpiryAlertWindow
	sweeper := scheduler.NewExpirySweeper(sweeperConfig, inventoryService,
		persistence.NewGormTenantSource(db.DB), notifier, log)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatal("Failed to start expiry sweeper", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sweeper.Stop(stopCtx); err != nil {
			log.Error("Error stopping expiry sweeper", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService)
	locationHandler := handler.NewLocationHandler(locationService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	transferHandler := handler.NewTransferHandler(transferService)
	requestHandler := handler.NewRequestHandler(requestService)
	cashHandler := handler.NewCashHandler(cashService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

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
	// 7. Actor - Resolve tenant and user identity
	// 8. Tracing/Metrics - Per-request telemetry
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Actor())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	if httpMetrics, err := middleware.HTTPMetrics(meterProvider); err != nil {
		log.Warn("Failed to initialize HTTP metrics middleware", zap.Error(err))
	} else {
		engine.Use(httpMetrics)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Catalog domain (products)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "catalog service ready"})
	})
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.GET("/products/sku/:sku", productHandler.GetBySKU)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.POST("/products/:id/deactivate", productHandler.Deactivate)

	// Location domain (production sites, stores, shops)
	locationRoutes := router.NewDomainGroup("location", "/locations")
	locationRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "location service ready"})
	})
	locationRoutes.POST("", locationHandler.Create)
	locationRoutes.GET("", locationHandler.List)
	locationRoutes.GET("/:id", locationHandler.GetByID)
	locationRoutes.PUT("/:id", locationHandler.Update)
	locationRoutes.POST("/:id/deactivate", locationHandler.Deactivate)

	// Inventory domain (ledger, batches, stock levels)
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "inventory service ready"})
	})
	inventoryRoutes.POST("/batches", inventoryHandler.ReceiveBatch)
	inventoryRoutes.GET("/batches", inventoryHandler.ListBatches)
	inventoryRoutes.GET("/batches/expiring", inventoryHandler.ListExpiring)
	inventoryRoutes.POST("/adjustments", inventoryHandler.AdjustStock)
	inventoryRoutes.POST("/movements/sale", inventoryHandler.RecordSale)
	inventoryRoutes.POST("/movements/sale/void", inventoryHandler.VoidSale)
	inventoryRoutes.POST("/movements/damage", inventoryHandler.RecordDamage)
	inventoryRoutes.POST("/movements/return", inventoryHandler.RecordReturn)
	inventoryRoutes.POST("/movements/production", inventoryHandler.RecordProduction)
	inventoryRoutes.GET("/ledger", inventoryHandler.ListLedger)
	inventoryRoutes.GET("/stock", inventoryHandler.GetOnHand)
	inventoryRoutes.GET("/stock/total", inventoryHandler.GetTotalOnHand)
	inventoryRoutes.GET("/stock/locations/:id", inventoryHandler.ListStockByLocation)
	inventoryRoutes.POST("/stock/rebuild", inventoryHandler.RebuildStockLevels)

	// Transfer domain (stock movements between locations)
	transferRoutes := router.NewDomainGroup("transfer", "/transfers")
	transferRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "transfer service ready"})
	})
	transferRoutes.POST("", transferHandler.Create)
	transferRoutes.GET("", transferHandler.List)
	transferRoutes.GET("/:id", transferHandler.GetByID)
	transferRoutes.POST("/:id/send", transferHandler.Send)
	transferRoutes.POST("/:id/receive", transferHandler.Receive)
	transferRoutes.POST("/:id/dispute", transferHandler.Dispute)
	transferRoutes.POST("/:id/close", transferHandler.Close)
	transferRoutes.POST("/:id/cancel", transferHandler.Cancel)

	// Stock request domain (shop-initiated replenishment)
	requestRoutes := router.NewDomainGroup("request", "/requests")
	requestRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "request service ready"})
	})
	requestRoutes.POST("", requestHandler.Create)
	requestRoutes.GET("", requestHandler.List)
	requestRoutes.GET("/:id", requestHandler.GetByID)
	requestRoutes.POST("/:id/approve", requestHandler.Approve)
	requestRoutes.POST("/:id/reject", requestHandler.Reject)
	requestRoutes.POST("/:id/cancel", requestHandler.Cancel)
	requestRoutes.POST("/:id/convert", requestHandler.Convert)

	// Cash ledger domain (per-shop cash accounting)
	cashRoutes := router.NewDomainGroup("cash", "/cash")
	cashRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "cash service ready"})
	})
	cashRoutes.POST("/entries", cashHandler.AppendEntry)
	cashRoutes.GET("/entries", cashHandler.List)
	cashRoutes.GET("/shops/:id/entries", cashHandler.List)
	cashRoutes.GET("/shops/:id/balance", cashHandler.GetBalance)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(catalogRoutes).
		Register(locationRoutes).
		Register(inventoryRoutes).
		Register(transferRoutes).
		Register(requestRoutes).
		Register(cashRoutes).
		Register(systemRoutes)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
