// Package server wires the process-wide dependencies every service binary
// shares: logger, config, database pool, redis, address resolution, the chi
// router and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/config"
	"github.com/civiceye/backend/internal/database"
	"github.com/civiceye/backend/internal/discovery"
	"github.com/civiceye/backend/internal/handlers"
	"github.com/civiceye/backend/internal/middleware"
)

// NewLogger returns a production logger unless env is "development".
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// App holds the dependencies of one running service.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Sugar    *zap.SugaredLogger
	DB       *pgxpool.Pool // nil when running on memory stores
	Redis    *redis.Client // nil when REDIS_URL is empty
	Resolver discovery.Resolver

	ctx    context.Context
	cancel context.CancelFunc
}

// Bootstrap loads configuration for service and connects to its backing
// stores. In development an empty DATABASE_URL leaves DB nil.
func Bootstrap(service string) (*App, error) {
	cfg, err := config.Load(service)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := NewLogger(cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(zap.String("service", service))
	sugar := logger.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Config: cfg, Logger: logger, Sugar: sugar, ctx: ctx, cancel: cancel}

	sugar.Infow("Starting service",
		"port", cfg.Port,
		"env", cfg.Environment,
		"auth_required", cfg.AuthRequired,
	)

	if cfg.DatabaseURL != "" {
		db, err := database.NewPool(ctx, cfg.DatabaseURL, database.PoolOptions{
			MaxConns: int32(cfg.DBMaxConns),
			MinConns: int32(cfg.DBMinConns),
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect database: %w", err)
		}
		app.DB = db
		if err := database.Migrate(ctx, db, service); err != nil {
			app.Close()
			return nil, err
		}
	} else {
		sugar.Warn("DATABASE_URL not set, using in-memory stores")
	}

	static := discovery.StaticResolver(cfg.ServiceURLs)
	app.Resolver = static

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		app.Redis = redis.NewClient(opts)

		pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
		if err := app.Redis.Ping(pingCtx).Err(); err != nil {
			sugar.Warnw("Redis unreachable, static addresses still apply", "error", err)
		}
		cancelPing()

		app.Resolver = discovery.Chain{discovery.NewRedisRegistry(app.Redis), static}
	}

	return app, nil
}

// Context is cancelled when the app shuts down.
func (a *App) Context() context.Context { return a.ctx }

// Gate returns the middleware guarding mutating routes: token validation when
// AUTH_REQUIRED is set, otherwise a pass-through.
func (a *App) Gate() func(http.Handler) http.Handler {
	if a.Config.AuthRequired {
		return middleware.RequireAuth(a.Config.JWTSecret)
	}
	return func(next http.Handler) http.Handler { return next }
}

// Router builds the chi router with the shared middleware stack, health
// routes, and the service routes added by mount under /api/v1.
func (a *App) Router(health *handlers.HealthHandler, mount func(r chi.Router)) http.Handler {
	cfg := a.Config
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(a.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	if a.Redis != nil {
		r.Use(middleware.RedisRateLimit(a.Redis, cfg.Service, cfg.RateLimitRPM, a.Sugar))
	} else {
		r.Use(middleware.RateLimit(a.ctx, cfg.RateLimitRPM))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.Check)
		r.Get("/health/ready", health.Ready)
		mount(r)
	})

	return r
}

// Run serves handler until SIGINT or SIGTERM, then shuts down: stop
// accepting requests, run drains (in-flight side effects), deregister from
// discovery, release stores.
func (a *App) Run(handler http.Handler, drains ...func(ctx context.Context) error) error {
	cfg := a.Config
	defer a.Close()

	hbDone := make(chan struct{})
	if a.Redis != nil {
		hb := discovery.NewHeartbeat(discovery.NewRedisRegistry(a.Redis), cfg.Service, cfg.AdvertiseURL, a.Sugar)
		go func() {
			defer close(hbDone)
			hb.Start(a.ctx, cfg.HeartbeatInterval)
		}()
	} else {
		close(hbDone)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		a.Sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}
	a.Sugar.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	for _, drain := range drains {
		if err := drain(ctx); err != nil {
			a.Sugar.Warnw("Drain incomplete", "error", err)
		}
	}

	// the heartbeat deregisters once the app context is cancelled
	a.cancel()
	select {
	case <-hbDone:
	case <-ctx.Done():
	}

	a.Sugar.Info("Server stopped")
	return nil
}

// Close cancels background workers and releases connections. It is safe to
// call more than once.
func (a *App) Close() {
	a.cancel()
	if a.Redis != nil {
		a.Redis.Close()
		a.Redis = nil
	}
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
	a.Logger.Sync()
}
