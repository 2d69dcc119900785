package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tekthree/ticket-shameless-sub001/internal/di"
	"github.com/Tekthree/ticket-shameless-sub001/internal/gateway"
	"github.com/Tekthree/ticket-shameless-sub001/internal/metrics"
	"github.com/Tekthree/ticket-shameless-sub001/internal/service"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/config"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/database"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/logger"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/middleware"
	pkgredis "github.com/Tekthree/ticket-shameless-sub001/pkg/redis"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/telemetry"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	logCfg := &logger.Config{
		Level:       logLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Ticket Inventory Service...")

	ctx := context.Background()

	// Initialize telemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed: %v", err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(shutdownCtx); err != nil {
				appLog.Warn(fmt.Sprintf("Telemetry shutdown failed: %v", err))
			}
		}()
	}

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Initialize Redis connection. The service runs without it: the counter
	// read path falls back to the database and idempotency is skipped.
	var redisClient *pkgredis.Client
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
	}
	redisClient, err = pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, continuing without cache: %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (pool: %d, minIdle: %d)", redisCfg.PoolSize, redisCfg.MinIdleConns))
	}

	// Initialize payment gateway based on configuration
	gatewayType := cfg.Stripe.Gateway
	if gatewayType == "stripe" && cfg.Stripe.SecretKey == "" {
		appLog.Warn("STRIPE_SECRET_KEY not set, falling back to mock gateway")
		gatewayType = "mock"
	}
	paymentGateway, err := gateway.NewPaymentGateway(gatewayType, &gateway.Config{
		SecretKey:  cfg.Stripe.SecretKey,
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
		Currency:   cfg.Stripe.Currency,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to create payment gateway: %v", err))
	}
	appLog.Info(fmt.Sprintf("Using %s payment gateway", paymentGateway.Name()))

	// Initialize audit publisher, falling back to no-op without brokers
	var publisher service.AuditPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := service.NewKafkaAuditPublisher(ctx, &service.AuditPublisherConfig{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed, audit events disabled: %v", err))
			publisher = service.NewNoOpAuditPublisher()
		} else {
			publisher = kafkaPublisher
			appLog.Info(fmt.Sprintf("Kafka audit publisher connected (topic: %s)", cfg.Kafka.Topic))
		}
	} else {
		publisher = service.NewNoOpAuditPublisher()
		appLog.Info("No Kafka brokers configured, audit events disabled")
	}
	defer publisher.Close()

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:        db,
		Redis:     redisClient,
		Gateway:   paymentGateway,
		Publisher: publisher,
		Config:    cfg,
	})

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
		router.Use(func(c *gin.Context) {
			start := time.Now()
			c.Next()
			metrics.RecordRequestDuration(c.Request.Context(), c.FullPath(), time.Since(start).Seconds())
		})
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Public routes
	router.POST("/checkout", container.CheckoutHandler.Checkout)
	router.POST("/webhooks/payment", container.WebhookHandler.HandlePaymentWebhook)
	router.POST("/tickets/verify-counts", container.ReconciliationHandler.VerifyCounts)
	router.GET("/events", container.EventHandler.ListEvents)
	router.GET("/events/:id", container.EventHandler.GetEvent)
	router.GET("/events/:id/tickets-remaining", container.EventHandler.TicketsRemaining)

	// Admin routes
	admin := router.Group("/admin")
	admin.Use(middleware.Auth(&middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}))
	admin.Use(middleware.RequireRole("admin"))
	{
		var idempotencyConfig *middleware.IdempotencyConfig
		if redisClient != nil {
			idempotencyConfig = middleware.DefaultIdempotencyConfig(redisClient.Client())
			idempotencyConfig.SkipPaths = []string{"/health", "/ready"}
		}

		if idempotencyConfig != nil {
			admin.POST("/events", middleware.IdempotencyMiddleware(idempotencyConfig), container.EventHandler.CreateEvent)
			admin.PUT("/events/:id", middleware.IdempotencyMiddleware(idempotencyConfig), container.EventHandler.UpdateEvent)
		} else {
			admin.POST("/events", container.EventHandler.CreateEvent)
			admin.PUT("/events/:id", container.EventHandler.UpdateEvent)
		}
		admin.DELETE("/events/:id", container.EventHandler.DeleteEvent)
		admin.GET("/events/:id/orders", container.EventHandler.ListEventOrders)
		admin.GET("/events/:id/sales-summary", container.EventHandler.SalesSummary)
		admin.POST("/tickets/verify-counts/all", container.ReconciliationHandler.VerifyAllCounts)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Ticket Inventory Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
