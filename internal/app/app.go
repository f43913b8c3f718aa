package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/dakshrana205/StudyNotionnew/internal/cache"
	"github.com/dakshrana205/StudyNotionnew/internal/config"
	"github.com/dakshrana205/StudyNotionnew/internal/event"
	"github.com/dakshrana205/StudyNotionnew/internal/gateway"
	mockgateway "github.com/dakshrana205/StudyNotionnew/internal/gateway/mock"
	"github.com/dakshrana205/StudyNotionnew/internal/gateway/razorpay"
	handler "github.com/dakshrana205/StudyNotionnew/internal/handler/http"
	"github.com/dakshrana205/StudyNotionnew/internal/notification"
	mocksender "github.com/dakshrana205/StudyNotionnew/internal/notification/mock"
	"github.com/dakshrana205/StudyNotionnew/internal/notification/sendgrid"
	"github.com/dakshrana205/StudyNotionnew/internal/repository/postgres"
	"github.com/dakshrana205/StudyNotionnew/internal/service"
	"github.com/dakshrana205/StudyNotionnew/migrations"
	"github.com/dakshrana205/StudyNotionnew/pkg/database"
	"github.com/dakshrana205/StudyNotionnew/pkg/health"
	"github.com/dakshrana205/StudyNotionnew/pkg/httpclient"
	pkgkafka "github.com/dakshrana205/StudyNotionnew/pkg/kafka"
	"github.com/dakshrana205/StudyNotionnew/pkg/middleware"
	"github.com/dakshrana205/StudyNotionnew/pkg/tracing"
)

// App wires together all dependencies and runs the StudyNotion service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	dispatcher     *notification.Dispatcher
	tracerShutdown tracing.ShutdownFunc
	httpServer     *http.Server

	// cancel stops background work tied to the app lifetime.
	cancel context.CancelFunc
	bgCtx  context.Context
}

// NewApp creates a new application instance, initializing all dependencies.
// Postgres is required. Redis and Kafka are optional: when unreachable the
// service starts without the rating cache or without domain events.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.Init(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}
	database.SetSlowQueryLogging(cfg.SlowQuery(), logger)

	// Redis backs the rating average cache.
	var ratingCache service.AverageCache
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		logger.Warn("redis unavailable, rating cache disabled", slog.String("error", err.Error()))
		redisClient = nil
	} else {
		ratingCache = cache.NewRatingCache(redisClient, cfg.RatingCacheTTL)
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
	}

	// Kafka carries post-commit domain events.
	var (
		kafkaProducer *pkgkafka.Producer
		eventProducer *event.Producer
	)
	candidate := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	if err := pingKafka(ctx, candidate, logger); err != nil {
		logger.Warn("kafka unavailable, domain events disabled", slog.String("error", err.Error()))
		_ = candidate.Close()
	} else {
		kafkaProducer = candidate
		eventProducer = event.NewProducer(kafkaProducer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Outbound HTTP.
	gw := newGateway(cfg, logger)
	sender := newSender(cfg, logger)
	dispatcher := notification.NewDispatcher(sender, cfg.MailWorkers, cfg.MailQueueSize, logger)
	templates := notification.NewTemplates(cfg.MailFrom)

	// Build the dependency graph.
	courses := postgres.NewCourseRepository(pool)
	users := postgres.NewUserRepository(pool)
	ratings := postgres.NewRatingRepository(pool)
	txManager := postgres.NewTxManager(pool, logger)

	engine := service.NewEnrollmentEngine(dispatcher, templates, eventProducer, logger)
	paymentService := service.NewPaymentService(txManager, courses, users, engine, gw, dispatcher, templates, eventProducer,
		service.PaymentConfig{KeySecret: cfg.RazorpayKeySecret, VerifyTimeout: cfg.VerifyTimeout}, logger)
	ratingService := service.NewRatingService(ratings, courses, ratingCache, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		if redisClient == nil {
			return errors.New("not connected")
		}
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		if kafkaProducer == nil {
			return errors.New("not connected")
		}
		return kafkaProducer.Ping(ctx)
	})

	// HTTP router.
	bgCtx, bgCancel := context.WithCancel(context.Background())
	router := handler.NewRouter(bgCtx, handler.RouterConfig{
		Payments:       paymentService,
		Ratings:        ratingService,
		Health:         healthHandler,
		Tokens:         middleware.NewJWTValidator([]byte(cfg.JWTSecret)),
		CORS:           cfg.CORS(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		ExposeStack:    !cfg.IsProduction(),
	}, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.VerifyTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       kafkaProducer,
		dispatcher:     dispatcher,
		tracerShutdown: tracerShutdown,
		httpServer:     httpServer,
		cancel:         bgCancel,
		bgCtx:          bgCtx,
	}, nil
}

// pingKafka gives the brokers a few chances to come up alongside us.
func pingKafka(ctx context.Context, p *pkgkafka.Producer, logger *slog.Logger) error {
	const attempts = 3
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = p.Ping(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		logger.Warn("kafka not reachable, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return err
}

func newGateway(cfg *config.Config, logger *slog.Logger) gateway.Gateway {
	if cfg.GatewayMock {
		logger.Warn("using mock payment gateway")
		return mockgateway.New(logger)
	}
	doer := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("razorpay"),
		logger,
	)
	return razorpay.New(doer, razorpay.Config{
		BaseURL:   cfg.GatewayBaseURL,
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
	}, logger)
}

func newSender(cfg *config.Config, logger *slog.Logger) notification.Sender {
	if cfg.MailMock {
		return mocksender.NewSender(logger)
	}
	doer := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("sendgrid"),
		logger,
	)
	return sendgrid.New(doer, sendgrid.Config{
		BaseURL:  cfg.MailBaseURL,
		APIKey:   cfg.MailAPIKey,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	}, logger)
}

// Run starts the mail workers and the HTTP server, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.dispatcher.Start(a.bgCtx)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: in-flight requests first, then
// span export, queued mail, the event writer, redis and finally the pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.dispatcher.Close()
	a.cancel()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
