// Package main is the entrypoint for the Pollster API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pollster/pollster/internal/auth"
	"github.com/pollster/pollster/internal/cache"
	"github.com/pollster/pollster/internal/config"
	"github.com/pollster/pollster/internal/handler"
	"github.com/pollster/pollster/internal/metrics"
	"github.com/pollster/pollster/internal/middleware"
	"github.com/pollster/pollster/internal/repository"
	"github.com/pollster/pollster/internal/server"
	"github.com/pollster/pollster/internal/service"
)

func main() {
	ctx := context.Background()

	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	recorder := metrics.NewInMemory()
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)

	authService := service.NewAuthService(repo, repo, cacheClient, tokens, cfg.RefreshTokenTTL, recorder, logger)
	pollService := service.NewPollService(repo, recorder, logger)
	janitor := service.NewSessionJanitor(authService, service.DefaultPurgeInterval, logger)

	deps := routerDeps{
		handler: handler.New(),
		health: handler.NewHealthHandler(
			handler.Dependency{Name: "database", Checker: repo},
			handler.Dependency{Name: "redis", Checker: cacheClient},
		),
		metrics:       handler.NewMetricsHandler(recorder),
		auth:          handler.NewAuthHandler(authService, logger),
		polls:         handler.NewPollHandler(pollService, logger),
		authenticator: authService,
		limiter:       cacheClient,
		recorder:      recorder,
	}
	r := setupRouter(deps, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Registered first so they close last.
	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})
	srv.OnShutdown("session janitor", janitor.Shutdown)

	go func() {
		if err := janitor.Run(ctx); err != nil {
			logger.Error("session janitor stopped", "error", err)
		}
	}()

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	handler       *handler.Handler
	health        *handler.HealthHandler
	metrics       *handler.MetricsHandler
	auth          *handler.AuthHandler
	polls         *handler.PollHandler
	authenticator middleware.Authenticator
	limiter       middleware.RateLimiter
	recorder      metrics.Recorder
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		Debug:          cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)
	r.Get("/", deps.handler.Hello)

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:        logger,
		Authenticator: deps.authenticator,
	})
	limitAuth := middleware.RateLimitAuth(middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: deps.limiter,
		Metrics: deps.recorder,
		Enabled: cfg.RateLimitAuthEnabled,
		RPM:     cfg.RateLimitAuthRPM,
		Burst:   cfg.RateLimitAuthBurst,
	})

	r.Route("/auth/v1", func(r chi.Router) {
		r.With(limitAuth).Post("/signup", deps.auth.SignUp)
		r.With(limitAuth).Post("/signin", deps.auth.SignIn)
		r.Post("/refresh", deps.auth.Refresh)
		r.With(requireAuth).Post("/signout", deps.auth.SignOut)
		r.With(requireAuth).Get("/user", deps.auth.User)
	})

	r.Route("/api/v1/polls", func(r chi.Router) {
		r.Get("/", deps.polls.List)
		r.With(requireAuth).Post("/", deps.polls.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", deps.polls.Get)
			r.Get("/results", deps.polls.Results)
			r.With(requireAuth).Post("/votes", deps.polls.Vote)
			r.With(requireAuth).Get("/votes/me", deps.polls.MyVote)
		})
	})

	r.NotFound(deps.handler.NotFound)
	r.MethodNotAllowed(deps.handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
