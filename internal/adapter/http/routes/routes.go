package routes

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"webinar_billing/internal/adapter/http/dto/request"
	response "webinar_billing/internal/adapter/http/dto/response"
	"webinar_billing/internal/adapter/http/handlers"
	"webinar_billing/internal/adapter/persistence/repository"
	"webinar_billing/internal/config"
	"webinar_billing/internal/infrastructure/database"
	"webinar_billing/internal/infrastructure/logging"
	"webinar_billing/internal/infrastructure/metrics"
	"webinar_billing/internal/infrastructure/notification"
	"webinar_billing/internal/infrastructure/payments"
	"webinar_billing/internal/infrastructure/replay"
	"webinar_billing/internal/usecase"
	"webinar_billing/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 10 * time.Second

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Order   *handlers.OrderHandler
	Status  *handlers.PaymentStatusHandler
	Webhook *handlers.WebhookHandler
}

// Run will start the server
func Run() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("json", "info")
		boot.Fatal().Err(err).Msg("load configuration")
	}
	logger := logging.New(cfg.LogFormat, cfg.LogLevel)
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	h, cleanup := getRoutes(ctx, cfg, logger, m)
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           NewRouter(logger, m, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to startup the application")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}
	logger.Info().Msg("http server stopped")
}

// NewRouter builds the gin engine with middlewares and every route.
func NewRouter(logger zerolog.Logger, m *metrics.Metrics, h Handlers) *gin.Engine {
	request.RegisterValidations()

	router := gin.New()
	setMiddlewares(router, logger, m)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	addPingRoutes(&router.RouterGroup)
	addRegistrationRoutes(&router.RouterGroup, h)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.RouteNotFoundResponse{
			Message: "Route not found",
			Path:    c.Request.URL.Path,
		})
	})
	return router
}

func getRoutes(ctx context.Context, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) (Handlers, func()) {
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	ddb, err := database.ConnectDynamoDB(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure dynamodb client")
	}
	registrationRepo := repository.NewRegistrationDynamoRepository(ddb, cfg.RegistrationsTable, logger)

	var gateway interfaces.IPaymentGateway
	if cfg.GatewayConfigured() || cfg.PaymentGatewayMock {
		cf, err := payments.NewCashfreeGateway(payments.CashfreeOptions{
			BaseURL:    cfg.GatewayBaseURL(),
			AppID:      cfg.CashfreeAppID,
			KeySecret:  cfg.CashfreeKeySecret,
			APIVersion: cfg.CashfreeAPIVersion,
			Timeout:    cfg.HTTPClientTimeout,
			Mock:       cfg.PaymentGatewayMock,
		}, logger, m)
		if err != nil {
			logger.Error().Err(err).Msg("cashfree gateway not configured")
		} else {
			gateway = cf
		}
	} else {
		logger.Warn().Msg("CASHFREE_APP_ID / CASHFREE_KEY_SECRET missing; order endpoints will answer 500")
	}

	dispatcher := notification.NewDispatcher(
		newEmailSender(cfg, logger),
		newWhatsAppSender(cfg, logger),
		notification.Content{
			WebinarLink:   cfg.WebinarLink,
			CommunityLink: cfg.CommunityLink,
			SiteURL:       cfg.SiteURL,
			BrandName:     cfg.SMTPFromName,
			CountryCode:   cfg.DefaultCountryCode,
		},
		logger, m,
	)

	var guard interfaces.IReplayGuard
	if cfg.RedisURL != "" {
		client, err := replay.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; webhook replay guard disabled")
		} else {
			guard = replay.NewRedisGuard(client, cfg.WebhookReplayTTL, cfg.WebhookReplayClaimTTL)
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	verifier := usecase.NewWebhookVerifier(cfg.WebhookSecret(), cfg.WebhookRequireSignature, logger)

	orderUseCase := usecase.NewOrderUseCase(registrationRepo, gateway, usecase.OrderSettings{
		SiteURL:     cfg.SiteURL,
		NotifyURL:   cfg.CashfreeNotifyURL,
		CountryCode: cfg.DefaultCountryCode,
	}, logger)
	reconcileUseCase := usecase.NewReconcileUseCase(registrationRepo, gateway, dispatcher, usecase.ReconcileOptions{
		TransitionOnly: cfg.NotifyOnTransitionOnly,
	}, logger)

	return Handlers{
		Order:   handlers.NewOrderHandler(orderUseCase, m),
		Status:  handlers.NewPaymentStatusHandler(reconcileUseCase, m),
		Webhook: handlers.NewWebhookHandler(reconcileUseCase, verifier, guard, m, logger),
	}, cleanup
}

// newEmailSender returns nil when SMTP is not configured so the channel is skipped.
func newEmailSender(cfg *config.Config, logger zerolog.Logger) notification.EmailSender {
	if !cfg.SMTPConfigured() {
		logger.Warn().Msg("SMTP not configured; emails disabled")
		return nil
	}
	s, err := notification.NewSMTPSender(notification.SMTPOptions{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		FromName: cfg.SMTPFromName,
		Timeout:  cfg.HTTPClientTimeout,
	})
	if err != nil {
		logger.Error().Err(err).Msg("smtp sender")
		return nil
	}
	return s
}

func newWhatsAppSender(cfg *config.Config, logger zerolog.Logger) notification.MessageSender {
	if !cfg.WhatsAppConfigured() {
		logger.Warn().Msg("WhatsApp not configured; messages disabled")
		return nil
	}
	s, err := notification.NewWhatsAppSender(notification.WhatsAppOptions{
		APIVersion: cfg.WhatsAppAPIVersion,
		PhoneID:    cfg.WhatsAppPhoneID,
		Token:      cfg.WhatsAppToken,
		Timeout:    cfg.HTTPClientTimeout,
	})
	if err != nil {
		logger.Error().Err(err).Msg("whatsapp sender")
		return nil
	}
	return s
}

func setMiddlewares(router *gin.Engine, logger zerolog.Logger, m *metrics.Metrics) {
	router.Use(logging.GinMiddleware(logger))
	router.Use(m.GinMiddleware())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
}
