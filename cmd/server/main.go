package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/hrms/internal/handler"
	"github.com/yourorg/hrms/internal/infrastructure/logger"
	"github.com/yourorg/hrms/internal/infrastructure/redis"
	"github.com/yourorg/hrms/internal/observability/metrics"
	"github.com/yourorg/hrms/internal/observability/tracing"
	"github.com/yourorg/hrms/internal/repository"
	"github.com/yourorg/hrms/internal/security/audit"
	"github.com/yourorg/hrms/internal/security/auth"
	"github.com/yourorg/hrms/internal/security/middleware"
	"github.com/yourorg/hrms/internal/security/ratelimit"
	"github.com/yourorg/hrms/internal/service"
	"github.com/yourorg/hrms/pkg/config"
	"github.com/yourorg/hrms/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting HRMS server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless OTEL_EXPORTER_OTLP_ENDPOINT is set)
	shutdownTracing, err := tracing.Init(ctx, log, "hrms", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to postgres and apply the schema
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		log.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	db := pool.GetDB()

	// 5. Optional Redis-backed logout denylist
	var (
		revoker     handler.TokenRevoker
		revocations middleware.RevocationChecker
		redisPinger handler.Pinger
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL, log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		revoker = redisClient
		revocations = redisClient
		redisPinger = redisClient
	}

	// 6. Repositories
	orgRepo := repository.NewPostgresOrganizationRepository(db, log)
	employeeRepo := repository.NewPostgresEmployeeRepository(db, log)
	teamRepo := repository.NewPostgresTeamRepository(db, log)
	assignmentRepo := repository.NewPostgresAssignmentRepository(db, log)
	auditRepo := repository.NewPostgresAuditRepository(db, log)

	// 7. Services and security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiresIn)
	authService := service.NewAuthService(orgRepo, tokenManager, log)
	auditor := audit.NewRecorder(auditRepo, log)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)

	// 8. Handlers
	development := cfg.Development()
	authHandler := handler.NewAuthHandler(authService, auditor, revoker, log, development)
	employeeHandler := handler.NewEmployeeHandler(employeeRepo, auditor, log, development)
	teamHandler := handler.NewTeamHandler(teamRepo, assignmentRepo, auditor, log, development)
	logsHandler := handler.NewLogsHandler(auditor, log, development)
	healthHandler := handler.NewHealthHandler(pool, redisPinger, log)

	// 9. Routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/profile", authHandler.Profile)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)

	mux.HandleFunc("POST /api/employees", employeeHandler.Create)
	mux.HandleFunc("GET /api/employees", employeeHandler.List)
	mux.HandleFunc("GET /api/employees/{id}", employeeHandler.Get)
	mux.HandleFunc("PUT /api/employees/{id}", employeeHandler.Update)
	mux.HandleFunc("DELETE /api/employees/{id}", employeeHandler.Delete)
	mux.HandleFunc("GET /api/employees/{id}/teams", employeeHandler.Teams)

	mux.HandleFunc("POST /api/teams/assign", teamHandler.Assign)
	mux.HandleFunc("POST /api/teams/unassign", teamHandler.Unassign)
	mux.HandleFunc("POST /api/teams", teamHandler.Create)
	mux.HandleFunc("GET /api/teams", teamHandler.List)
	mux.HandleFunc("GET /api/teams/{id}", teamHandler.Get)
	mux.HandleFunc("PUT /api/teams/{id}", teamHandler.Update)
	mux.HandleFunc("DELETE /api/teams/{id}", teamHandler.Delete)
	mux.HandleFunc("GET /api/teams/{id}/members", teamHandler.Members)

	mux.HandleFunc("GET /api/logs", logsHandler.List)
	mux.HandleFunc("GET /api/logs/{entity_type}/{entity_id}", logsHandler.ListByEntity)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth and throttling apply to everything behind CORS.
	protected := middleware.JWTMiddleware(tokenManager, revocations, log)(
		middleware.RateLimitMiddleware(rateLimiter, log)(mux),
	)

	// CORS middleware honoring configured origins. It wraps the JWT gate so
	// browser preflights, which carry no Authorization header, are answered
	// here instead of bouncing off the auth check.
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		protected.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> CORS -> JWT -> rate limit -> mux
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(handlerWithCORS),
		log,
	)

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "hrms-api"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
