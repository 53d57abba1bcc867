package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"

	"portfolio-service/common/telemetry"
	"portfolio-service/internal/auth"
	"portfolio-service/internal/config"
	"portfolio-service/internal/contact"
	"portfolio-service/internal/db"
	"portfolio-service/internal/health"
	"portfolio-service/internal/landing"
	"portfolio-service/internal/messaging"
	"portfolio-service/internal/metrics"
	"portfolio-service/internal/middleware"
	"portfolio-service/internal/ratelimit"
)

const (
	globalRateLimitMessage  = "Too many requests from this IP, please try again later."
	contactRateLimitMessage = "Too many contact form submissions, please try again later."
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	producer  *messaging.Producer
	redis     *redis.Client
	telemetry *telemetry.Telemetry
	stopJobs  context.CancelFunc
}

// New wires every component. Whatever was opened before a failure is released
// before the error is returned.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	logger.Info("initializing application", "env", cfg.Env, "version", Version)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
	}
	defer func() {
		if err != nil {
			if cerr := app.closeResources(ctx); cerr != nil {
				logger.Error("failed to release resources after init error", "error", cerr)
			}
		}
	}()

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	app.telemetry = tel

	appMetrics, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}

	database, err := db.New(cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}
	app.db = database

	if err := tel.Metrics.Database.RegisterDB(database.DB, otel.Meter(ServiceName)); err != nil {
		logger.Warn("failed to register database pool metrics", "error", err)
	}

	verifier, err := auth.NewFromConfig(cfg.Admin)
	if err != nil {
		return nil, err
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	app.stopJobs = stopJobs

	store := app.rateLimitStore(ctx, jobsCtx)
	clientAddress := middleware.ClientAddress(cfg.Server.TrustedProxies)

	globalLimiter := ratelimit.NewLimiter(ratelimit.Policy{
		Name:    "global",
		Limit:   cfg.RateLimit.Global.Limit,
		Window:  cfg.RateLimit.Global.Window(),
		Message: globalRateLimitMessage,
	}, store)
	contactLimiter := ratelimit.NewLimiter(ratelimit.Policy{
		Name:    "contact",
		Limit:   cfg.RateLimit.Contact.Limit,
		Window:  cfg.RateLimit.Contact.Window(),
		Message: contactRateLimitMessage,
	}, store)

	serviceOpts := []contact.Option{contact.WithQueryTimeout(cfg.QueryTimeout())}
	if cfg.NATS.URL != "" {
		producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, tel.Metrics, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS producer", "error", err)
		} else {
			app.producer = producer
			serviceOpts = append(serviceOpts, contact.WithNotifier(producer))
		}
	}

	landingHandler, err := landing.New(cfg.Server.IndexFile)
	if err != nil {
		return nil, err
	}

	app.router.Use(chimw.RequestID)
	app.router.Use(middleware.RequestLogger(logger, clientAddress))
	app.router.Use(middleware.Recoverer(logger))
	app.router.Use(middleware.SecurityHeaders)
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.router.Use(ratelimit.Middleware(globalLimiter, clientAddress, appMetrics, logger))
	app.router.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	healthHandler := health.NewHandler(Version, health.PingFunc(func(ctx context.Context) error {
		return db.Ping(ctx, database)
	}), logger)
	healthHandler.RegisterRoutes(app.router)

	contactRepo := contact.NewRepository(database, tel.Metrics)
	contactService := contact.NewService(contactRepo, verifier, appMetrics, logger, serviceOpts...)
	contactHandler := contact.NewHandler(contactService, logger, clientAddress)
	contactHandler.RegisterRoutes(app.router,
		ratelimit.Middleware(contactLimiter, clientAddress, appMetrics, logger),
	)

	app.router.NotFound(landingHandler.ServeHTTP)
	app.router.MethodNotAllowed(landingHandler.ServeHTTP)

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// rateLimitStore picks the configured counter backend. An unreachable Redis
// falls back to process-local counters.
func (a *App) rateLimitStore(ctx, jobsCtx context.Context) ratelimit.Store {
	if a.config.RateLimit.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.config.Redis.Addr,
			Password: a.config.Redis.Password,
			DB:       a.config.Redis.DB,
		})

		store := ratelimit.NewRedisStore(rdb, ratelimit.WithPrefix(a.config.Redis.Prefix))

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			a.logger.Warn("redis unavailable, using in-memory rate limits", "addr", a.config.Redis.Addr, "error", err)
			_ = rdb.Close()
		} else {
			a.logger.Info("rate limits backed by redis", "addr", a.config.Redis.Addr)
			a.redis = rdb
			return store
		}
	}

	store := ratelimit.NewMemoryStore(
		ratelimit.WithCleanupEvery(time.Duration(a.config.RateLimit.CleanupInterval) * time.Second),
	)
	store.StartJanitor(jobsCtx)
	return store
}

func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, drains in-flight ones, then releases
// the event connection, the meter provider and finally the database.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("draining http server: %w", err))
		}
	}

	if err := a.closeResources(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (a *App) closeResources(ctx context.Context) error {
	var errs []error

	if a.stopJobs != nil {
		a.stopJobs()
	}

	if a.producer != nil {
		if err := a.producer.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("closing NATS producer: %w", err))
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing redis: %w", err))
		}
	}

	if err := a.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := db.Close(a.db, a.logger); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
