package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/EcommerceGo/storefront/internal/apiclient"
	"github.com/utafrali/EcommerceGo/storefront/internal/config"
	"github.com/utafrali/EcommerceGo/storefront/internal/event"
	handler "github.com/utafrali/EcommerceGo/storefront/internal/handler/http"
	"github.com/utafrali/EcommerceGo/storefront/internal/repository"
	filerepo "github.com/utafrali/EcommerceGo/storefront/internal/repository/file"
	memoryrepo "github.com/utafrali/EcommerceGo/storefront/internal/repository/memory"
	redisrepo "github.com/utafrali/EcommerceGo/storefront/internal/repository/redis"
	"github.com/utafrali/EcommerceGo/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
	"github.com/utafrali/EcommerceGo/storefront/pkg/database"
	"github.com/utafrali/EcommerceGo/storefront/pkg/health"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/EcommerceGo/storefront/pkg/kafka"
	"github.com/utafrali/EcommerceGo/storefront/pkg/middleware"
	"github.com/utafrali/EcommerceGo/storefront/pkg/tracing"
)

// ServiceName identifies the process in logs, traces and breaker metrics.
const ServiceName = "storefront"

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	shutdownTracer tracing.ShutdownFunc
	stores         handler.Stores
	httpServer     *http.Server

	// stop ends goroutines owned by the router middleware.
	stop context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize tracing.
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Remote API client. The session holder is the token source.
	holder := session.NewHolder()
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.APITimeout
	var doer httpclient.Doer = httpclient.New(httpCfg)
	var breaker *httpclient.CircuitBreakerClient
	if cfg.APICircuitBreaker {
		breaker = httpclient.NewCircuitBreakerClient(doer, httpclient.DefaultCircuitBreakerConfig(ServiceName+"-api"), logger)
		doer = breaker
	}
	api := apiclient.New(cfg.APIBaseURL, doer, holder, logger)
	logger.Info("storefront API client initialized",
		slog.String("base_url", cfg.APIBaseURL),
		slog.Bool("circuit_breaker", cfg.APICircuitBreaker),
	)

	// Session persistence.
	repo, rdb, err := newSessionRepository(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracer(context.Background())
		return nil, err
	}

	// Build the dependency graph.
	bus := event.NewBus(logger)
	stores := handler.Stores{
		Products: service.NewProductService(api, cfg.RelatedLimit, logger),
		Cart:     service.NewCartService(api, cfg.ShippingFee, logger),
		Wishlist: service.NewWishlistService(api, logger),
	}
	stores.Auth = service.NewAuthService(api, holder, repo, bus, logger)

	bus.Subscribe("products", stores.Products.HandleSessionEvent)
	bus.Subscribe("cart", stores.Cart.HandleSessionEvent)
	bus.Subscribe("wishlist", stores.Wishlist.HandleSessionEvent)

	// Optional Kafka forwarding of session events.
	var producer *pkgkafka.Producer
	if cfg.KafkaEnabled() {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		bus.Subscribe("kafka", event.NewProducer(producer, logger).PublishSessionChanged)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Health checks.
	healthHandler := health.NewHandler()
	if rdb != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}
	if breaker != nil {
		healthHandler.Register("api", breakerCheck(breaker))
	}

	// HTTP router.
	background, stop := context.WithCancel(context.Background())
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins
	routerCfg := handler.RouterConfig{
		CORS:           cors,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}
	if cfg.PprofEnabled {
		routerCfg.PprofCIDRs = cfg.PprofAllowedCIDRs
	}
	router := handler.NewRouter(background, stores, healthHandler, routerCfg, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		shutdownTracer: shutdownTracer,
		stores:         stores,
		httpServer:     httpServer,
		stop:           stop,
	}, nil
}

// newSessionRepository selects the configured session backend. The Redis
// client is returned so the caller can health-check and close it.
func newSessionRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.SessionRepository, *redis.Client, error) {
	slow := time.Duration(cfg.SlowStoreThresholdMs) * time.Millisecond

	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("key", cfg.SessionKey))
		return redisrepo.NewSessionRepository(rdb, cfg.SessionKey, 0, slow, logger), rdb, nil
	case config.SessionStoreMemory:
		logger.Warn("session store is in-memory; sessions will not survive a restart")
		return memoryrepo.NewSessionRepository(), nil, nil
	default:
		repo := filerepo.NewSessionRepository(cfg.SessionFile, slow, logger)
		logger.Info("using file session store", slog.String("path", repo.Path()))
		return repo, nil, nil
	}
}

// breakerCheck reports the API as down while its circuit breaker is open.
func breakerCheck(cb *httpclient.CircuitBreakerClient) health.Checker {
	return func(context.Context) error {
		if cb.Open() {
			return errors.New("storefront API circuit breaker is open")
		}
		return nil
	}
}

// RestoreSession loads the persisted session and, when one is found,
// verifies it against the API. A verified session refreshes the dependent
// stores; a rejected one is cleared.
func (a *App) RestoreSession(ctx context.Context) {
	auth := a.stores.Auth
	if !auth.Restore(ctx) {
		a.logger.Info("starting without a stored session")
		return
	}

	if auth.CheckAuth(ctx) {
		state := auth.State()
		a.logger.Info("stored session restored", slog.String("user_id", state.User.ID))
		return
	}
	a.logger.Info("stored session rejected", slog.String("reason", auth.State().Error))
}

// Handler returns the HTTP handler serving the UI adapter.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run restores the stored session, starts the HTTP server and blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	a.RestoreSession(ctx)

	errCh := make(chan error, 1)

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

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.stop()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
