// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, authentication, idempotency, and rate
// limiting.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/docs"
	"github.com/tbourn/skillswap-backend/internal/auth"
	"github.com/tbourn/skillswap-backend/internal/config"
	"github.com/tbourn/skillswap-backend/internal/http/handlers"
	"github.com/tbourn/skillswap-backend/internal/http/middleware"
	"github.com/tbourn/skillswap-backend/internal/observability"
	"github.com/tbourn/skillswap-backend/internal/realtime"
	"github.com/tbourn/skillswap-backend/internal/repo"
	"github.com/tbourn/skillswap-backend/internal/search"
	"github.com/tbourn/skillswap-backend/internal/services"
)

// Deps are the process-wide collaborators the routes are built on.
type Deps struct {
	DB       *gorm.DB
	Index    *search.Index
	Registry *realtime.Registry
	// Notify delivers realtime events; usually a *realtime.Router over
	// Registry. Nil disables live notifications.
	Notify services.Notifier
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the versioned API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII and token scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip (never on the websocket or /metrics)
//  7. Metrics
//  8. CORS and Security headers
//
// API routes then run Auth → Idempotency validator → Rate limiter, so that
// limits are keyed by user and replays bypass the limiter.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	apiBase := cfg.APIBasePath

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(observability.ServiceName(cfg.OTEL)))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compression for REST payloads
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		joinPath(apiBase, "/ws/"),
		"/metrics",
	})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS posture (allow all if none configured) and security headers
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = apiBase
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/index/notifier
	chatSvc := services.NewChatService(deps.DB, deps.Notify)
	chatSvc.RequireAccepted = cfg.Chat.RequireAccepted
	if cfg.Chat.MaxRunes > 0 {
		chatSvc.MaxContentRunes = cfg.Chat.MaxRunes
	}
	h := handlers.New(
		services.NewUserService(deps.DB),
		services.NewSkillService(deps.DB, deps.Notify, deps.Index),
		services.NewRequestService(deps.DB, deps.Notify),
		chatSvc,
		deps.Registry,
		handlers.Options{
			IdempotencyTTL: cfg.IdempotencyTTL,
			WS:             wsOptions(cfg),
		},
	)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	api := groupWithPrefix(r, apiBase)
	{
		// Browsers cannot set headers on a websocket handshake, so the token
		// may also come as ?token=.
		api.GET("/ws/:user_id",
			middleware.Auth(verifier, middleware.AuthOptions{QueryParam: "token"}),
			rl.Handler(),
			h.Websocket,
		)

		authed := api.Group("")
		authed.Use(middleware.Auth(verifier, middleware.AuthOptions{}))
		authed.Use(middleware.IdempotencyValidator(
			middleware.IdempotencyOptions{MaxLen: 200},
			func(ctx context.Context, userID, scope, key string, now time.Time) (string, error) {
				rec, err := repo.GetIdempotency(ctx, deps.DB, userID, scope, key, now)
				if errors.Is(err, repo.ErrNotFound) {
					return "", nil
				}
				if err != nil {
					return "", err
				}
				return rec.ResourceID, nil
			},
		))
		authed.Use(rl.Handler())
		h.Register(authed)
	}
}

// wsOptions maps configuration onto websocket client options. With an
// origin allowlist configured, handshakes from other origins are refused.
func wsOptions(cfg config.Config) realtime.Options {
	opts := realtime.Options{
		ReadLimit:    cfg.WS.ReadLimit,
		PingInterval: cfg.WS.PingInterval,
		PongWait:     cfg.WS.PongWait,
		WriteWait:    cfg.WS.WriteWait,
		SendBuffer:   cfg.WS.SendBuffer,
		FrameRPS:     cfg.WS.FrameRPS,
		FrameBurst:   cfg.WS.FrameBurst,
	}
	if len(cfg.CORS.AllowedOrigins) > 0 {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		opts.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
	return opts
}

// corsMiddleware returns the CORS chain: allow-all when no origins are
// configured, otherwise an allowlist with the request origin echoed.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey, "If-None-Match"}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed}
	methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

	if len(origins) == 0 {
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     allowHeaders,
				ExposeHeaders:    exposeHeaders,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// limitBody caps the request body size using http.MaxBytesReader. Requests
// exceeding the cap cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func joinPath(base, p string) string {
	return strings.TrimRight(base, "/") + p
}
