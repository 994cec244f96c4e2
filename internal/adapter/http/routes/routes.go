package routes

import (
	"context"
	"net/http"

	_ "payment_service/docs" // This will be auto-generated
	"payment_service/internal/adapter/http/handlers"
	"payment_service/internal/adapter/http/middleware"
	"payment_service/internal/adapter/persistence/repository"
	"payment_service/internal/infrastructure/config"
	"payment_service/internal/infrastructure/database"
	"payment_service/internal/infrastructure/events"
	"payment_service/internal/infrastructure/logging"
	"payment_service/internal/infrastructure/metrics"
	"payment_service/internal/usecase"
	"payment_service/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterOptions carries what NewRouter needs to mount the API.
type RouterOptions struct {
	PaymentHandler *handlers.PaymentHandler
	Registry       *prometheus.Registry
	SwaggerEnabled bool
}

// Run will start the server
func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Setup(logging.Options{
		ServiceName: cfg.App.ServiceName,
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
	})
	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	ddb, err := database.ConnectDynamoDB(ctx, cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to dynamodb")
	}

	publisher, closePublisher := newEventPublisher(ctx, cfg.Redis)
	defer closePublisher()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	paymentRepo := repository.NewPaymentDynamoRepository(ddb, cfg.Payments.Table)
	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, publisher, metrics.NewPaymentMetrics(reg)).
		WithPageSizes(cfg.Payments.DefaultPageSize, cfg.Payments.MaxPageSize)

	router := NewRouter(RouterOptions{
		PaymentHandler: handlers.NewPaymentHandler(paymentUseCase),
		Registry:       reg,
		SwaggerEnabled: cfg.App.SwaggerEnabled,
	})

	log.Info().Str("port", cfg.App.Port).Str("table", cfg.Payments.Table).Msg("payment service listening")
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to startup the application")
	}
}

// NewRouter mounts middleware, infrastructure endpoints and the /v1 API.
func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(), middleware.CorrelationID(), middleware.RequestLogger())

	router.GET("/health", ping)
	if opts.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}
	if opts.SwaggerEnabled {
		// Swagger documentation endpoint
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Rotas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	if opts.PaymentHandler != nil {
		addPaymentRoutes(v1, opts.PaymentHandler)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "Route not found"})
	})
	return router
}

// newEventPublisher falls back to a no-op publisher when Redis is not
// configured or unreachable; payment writes never depend on it.
func newEventPublisher(ctx context.Context, cfg config.RedisConfig) (interfaces.IPaymentEventPublisher, func()) {
	if !cfg.Enabled() {
		log.Info().Msg("REDIS_URL not set; payment events disabled")
		return events.NoopPublisher{}, func() {}
	}
	publisher, client, err := events.NewRedisPublisher(ctx, cfg.URL, cfg.EventsChannel)
	if err != nil {
		log.Error().Err(err).Msg("redis unavailable; payment events disabled")
		return events.NoopPublisher{}, func() {}
	}
	log.Info().Str("channel", cfg.EventsChannel).Msg("publishing payment events to redis")
	return publisher, func() { _ = client.Close() }
}
