// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, structured logging with redaction, panic
// recovery, metrics, CORS, security headers, idempotency-key validation, and
// rate limiting.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/alpmera/campaign-backend/internal/config"
	"github.com/alpmera/campaign-backend/internal/http/handlers"
	"github.com/alpmera/campaign-backend/internal/http/middleware"
	"github.com/alpmera/campaign-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability first, then correlation/logging/recovery, then the
// edge controls, then the versioned API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per participant/IP)
//  8. CORS and security headers
//
// Idempotency-Key validation is mounted per-route on the financial
// endpoints, not globally; read endpoints never require a key.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLogger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByParticipantOrIP())
	r.Use(rl.Handler())

	registerCORS(r, cfg)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeBadRequest, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", gzip.Gzip(gzip.DefaultCompression), ginswagger.WrapHandler(swaggerfiles.Handler))
	}

	// Dependency injection: services ← db
	escrowSvc := &services.EscrowService{DB: db}
	campaignSvc := services.NewCampaignService(db)
	commitmentSvc := &services.CommitmentService{
		DB:             db,
		Escrow:         escrowSvc,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	outcomeSvc := &services.OutcomeService{
		DB:             db,
		Escrow:         escrowSvc,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	h := handlers.New(campaignSvc, commitmentSvc, outcomeSvc, escrowSvc)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Campaigns (public)
		api.GET("/campaigns", h.ListCampaigns)
		api.GET("/campaigns/:id", h.GetCampaign)
		api.GET("/campaigns/:id/timeline", h.CampaignTimeline)
		api.POST("/campaigns/:id/commit", middleware.RequireIdempotencyKey(), h.Commit)

		// Commitments (public lookup by reference)
		api.GET("/commitments/:reference", h.CommitmentByReference)

		// Account (participant-scoped)
		account := api.Group("/account", middleware.RequireParticipant())
		account.GET("/commitments", h.MyCommitments)

		// Admin (shared-secret token)
		admin := api.Group("/admin", middleware.AdminAuth(cfg.AdminToken))
		admin.POST("/campaigns", h.CreateCampaign)
		admin.POST("/campaigns/:id/transition", h.TransitionCampaign)
		admin.POST("/campaigns/:id/refund", middleware.RequireIdempotencyKey(), h.RefundCampaign)
		admin.POST("/campaigns/:id/release", middleware.RequireIdempotencyKey(), h.ReleaseCampaign)
		admin.GET("/campaigns/:id/ledger", h.CampaignLedger)
		admin.GET("/campaigns/:id/commitments", h.CampaignCommitments)
	}
}

// registerCORS installs the CORS posture: allow-all when no origins are
// configured, an allowlist otherwise.
func registerCORS(r *gin.Engine, cfg config.Config) {
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		"X-Participant-Email", middleware.HeaderIdempotencyKey,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
		return
	}

	allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
	for _, o := range cfg.CORS.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

// limitBody caps the request body for all endpoints using http.MaxBytesReader.
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
