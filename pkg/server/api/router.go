package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/codes"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/internal/server/api/auth"
	"github.com/gatewatch/gatewatch/internal/server/api/handlers"
	apiMiddleware "github.com/gatewatch/gatewatch/internal/server/api/middleware"
	"github.com/gatewatch/gatewatch/internal/telemetry"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Request tracing when the OTLP exporter is enabled
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - POST /webhooks/sms - SMS gateway intake (signature-authenticated)
//   - POST /api/v1/auth/login - User authentication
//   - POST /api/v1/auth/refresh - Token refresh
//   - GET /api/v1/auth/me - Current user info
//   - POST /api/v1/users/me/password - Change own password
//   - /api/v1/passages/* - Passage intake and queries (segment-scoped for rangers)
//   - GET /api/v1/passages/pull - Inbound sync for field agents (ranger only)
//   - /api/v1/violations/* - Violation queries (segment-scoped for rangers)
//   - /api/v1/alerts/* - Overstay alert queries; resolution is admin only
//   - /api/v1/segments/* - Segment management (writes admin only)
//   - /api/v1/checkposts/* - Checkpost management (writes admin only)
//   - /api/v1/users/* - User management (admin only)
func NewRouter(config APIConfig, jwtService *auth.JWTService, s store.Store, metrics handlers.Metrics) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters. The tracer runs before the
	// logger so completion logs can carry the trace id.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestTracer)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health routes - unauthenticated
	healthHandler := handlers.NewHealthHandler(s)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	// SMS gateway intake - authenticated by request signature, not JWT.
	// Mounted only when the webhook is fully configured: serving it without
	// a secret would accept any sender.
	if config.SMSWebhookEnabled() {
		smsHandler := handlers.NewSMSHandler(s, config.SMS.WebhookURL, config.GetSMSWebhookSecret(), config.SMS.ClockSkewTolerance, metrics)
		r.Post("/webhooks/sms", smsHandler.Receive)
	} else {
		logger.Warn("SMS webhook not mounted; webhook_url and secret must both be set")
	}

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	authHandler := handlers.NewAuthHandler(s, jwtService)
	userHandler := handlers.NewUserHandler(s)
	passageHandler := handlers.NewPassageHandler(s, metrics)
	violationHandler := handlers.NewViolationHandler(s)
	alertHandler := handlers.NewAlertHandler(s, metrics)
	segmentHandler := handlers.NewSegmentHandler(s)
	checkpostHandler := handlers.NewCheckpostHandler(s)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes - mostly unauthenticated
		r.Route("/auth", func(r chi.Router) {
			// Public endpoints
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Authenticated endpoint
			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.JWTAuth(jwtService))
				r.Get("/me", authHandler.Me)
			})
		})

		// Password change - authenticated, available to every role
		r.Route("/users/me/password", func(r chi.Router) {
			r.Use(apiMiddleware.JWTAuth(jwtService))
			r.Post("/", userHandler.ChangeOwnPassword)
		})

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.JWTAuth(jwtService))

			// Passage intake and queries. Handlers scope rangers to their
			// own checkpost and segment from the token claims.
			r.Route("/passages", func(r chi.Router) {
				r.Post("/", passageHandler.Create)
				r.Get("/", passageHandler.List)

				// Inbound sync feed for field agents. Admins read the same
				// rows through the plain list.
				r.With(apiMiddleware.RequireRole("ranger")).Get("/pull", passageHandler.Pull)

				r.Get("/{id}", passageHandler.Get)
			})

			// Violations are immutable - read only
			r.Route("/violations", func(r chi.Router) {
				r.Get("/", violationHandler.List)
				r.Get("/{id}", violationHandler.Get)
			})

			// Overstay alerts - manual resolution is admin only
			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertHandler.List)
				r.Get("/{id}", alertHandler.Get)
				r.With(apiMiddleware.RequireAdmin()).Post("/{id}/resolve", alertHandler.Resolve)
			})

			// Segment management - reads for any role, writes admin only
			r.Route("/segments", func(r chi.Router) {
				r.Get("/", segmentHandler.List)
				r.Get("/{id}", segmentHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(apiMiddleware.RequireAdmin())

					r.Post("/", segmentHandler.Create)
					r.Put("/{id}", segmentHandler.Update)
					r.Delete("/{id}", segmentHandler.Delete)
				})
			})

			// Checkpost management - reads for any role, writes admin only.
			// There is no update: a checkpost's position on its segment is
			// fixed at creation.
			r.Route("/checkposts", func(r chi.Router) {
				r.Get("/", checkpostHandler.List)
				r.Get("/{id}", checkpostHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(apiMiddleware.RequireAdmin())

					r.Post("/", checkpostHandler.Create)
					r.Delete("/{id}", checkpostHandler.Delete)
				})
			})

			// User management (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin())

				r.Post("/", userHandler.Create)
				r.Get("/", userHandler.List)
				r.Get("/{username}", userHandler.Get)
				r.Put("/{username}", userHandler.Update)
				r.Delete("/{username}", userHandler.Delete)
			})
		})
	})

	return r
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestTracer opens a span per API request. Health probes are not
// traced; with tracing disabled the middleware is a pass-through.
func requestTracer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !telemetry.IsEnabled() || isHealthPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := telemetry.StartRequestSpan(r.Context(), r.Method,
			telemetry.ClientIP(r.RemoteAddr),
			telemetry.RequestID(middleware.GetReqID(r.Context())),
		)
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		// The route pattern is only known once chi has matched it.
		if pattern := chi.RouteContext(ctx).RoutePattern(); pattern != "" {
			span.SetName(r.Method + " " + pattern)
			span.SetAttributes(telemetry.HTTPRoute(pattern))
		}
		span.SetAttributes(telemetry.HTTPStatus(ww.Status()))
		if ww.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(ww.Status()))
		}
	})
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Healthcheck requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}
		if traceID := telemetry.TraceID(r.Context()); traceID != "" {
			logArgs = append(logArgs, "trace_id", traceID)
		}

		// Log healthcheck requests at DEBUG to avoid polluting logs in k8s
		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
