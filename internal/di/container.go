package di

import (
	"github.com/Tekthree/ticket-shameless-sub001/internal/gateway"
	"github.com/Tekthree/ticket-shameless-sub001/internal/handler"
	"github.com/Tekthree/ticket-shameless-sub001/internal/repository"
	"github.com/Tekthree/ticket-shameless-sub001/internal/service"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/config"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/database"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/redis"
)

// Container holds all dependencies for the ticket inventory service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo repository.EventRepository
	OrderRepo repository.OrderRepository
	Cache     repository.InventoryCache

	// Services
	CheckoutService       service.CheckoutService
	OrderService          service.OrderService
	ReconciliationService service.ReconciliationService
	EventService          service.EventService

	// Handlers
	HealthHandler         *handler.HealthHandler
	CheckoutHandler       *handler.CheckoutHandler
	WebhookHandler        *handler.WebhookHandler
	ReconciliationHandler *handler.ReconciliationHandler
	EventHandler          *handler.EventHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB        *database.PostgresDB
	Redis     *redis.Client
	Gateway   gateway.PaymentGateway
	Publisher service.AuditPublisher
	Config    *config.Config
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	// Initialize repositories
	c.EventRepo = repository.NewPostgresEventRepository(c.DB.Pool())
	c.OrderRepo = repository.NewPostgresOrderRepository(c.DB.Pool())
	if c.Redis != nil {
		c.Cache = repository.NewRedisInventoryCache(c.Redis.Client(), cfg.Config.Tickets.RemainingCacheTTL)
	}

	// Initialize services
	c.CheckoutService = service.NewCheckoutService(c.EventRepo, c.Cache, cfg.Gateway, &service.CheckoutServiceConfig{
		MaxPerOrder: cfg.Config.Tickets.MaxPerOrder,
		Currency:    cfg.Config.Stripe.Currency,
	})
	c.OrderService = service.NewOrderService(c.OrderRepo, c.EventRepo, cfg.Publisher)
	c.ReconciliationService = service.NewReconciliationService(c.EventRepo, c.OrderRepo, c.Cache, cfg.Publisher, &service.ReconciliationServiceConfig{
		EventTimeout: cfg.Config.Tickets.ReconcileEventTimeout,
	})
	c.EventService = service.NewEventService(c.EventRepo, c.Cache)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.CheckoutHandler = handler.NewCheckoutHandler(c.CheckoutService)
	c.WebhookHandler = handler.NewWebhookHandler(c.OrderService, cfg.Config.Stripe.WebhookSecret)
	c.ReconciliationHandler = handler.NewReconciliationHandler(c.ReconciliationService)
	c.EventHandler = handler.NewEventHandler(c.EventService, c.OrderService)

	return c
}
