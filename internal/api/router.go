package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/wellally/healthaudit/internal/dbpool"
	"github.com/wellally/healthaudit/internal/domain"
	"github.com/wellally/healthaudit/internal/middleware"
	"github.com/wellally/healthaudit/internal/security"
	"github.com/wellally/healthaudit/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool // nil in memory-only mode
	Hub         *ws.Hub
	Ledger      domain.LedgerService
	APIKey      string
	CORSOrigins []string
	Version     string
}

// Router-level limits.
const (
	maxBodySize = 1 << 20 // 1 MB; entry details are small structured payloads
	rateLimit   = 100     // requests per second per IP
	rateBurst   = 200     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, log, deps.Version)
	entries := NewEntryHandler(deps.Ledger, log)
	audit := NewAuditHandler(deps.Ledger, log)
	integrity := NewIntegrityHandler(deps.Ledger, deps.Ledger, log)
	stats := NewStatsHandler(deps.Ledger, deps.Hub, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// All other API routes require authentication.
	bfGuard := security.NewBruteForceGuard(ctx, log)
	api.Use(middleware.BruteForceMiddleware(bfGuard))
	api.Use(middleware.AuthMiddleware(deps.APIKey, log, bfGuard))

	// Append endpoints.
	api.POST("/entries", entries.Append)
	api.POST("/entries/access", entries.LogAccess)
	api.POST("/entries/modification", entries.LogModification)
	api.POST("/entries/consent", entries.LogConsent)

	// Query endpoints.
	api.GET("/entries", audit.Query)
	api.GET("/entries/:sequence", audit.Get)
	api.GET("/resources/:type/:id/history", audit.ResourceHistory)
	api.GET("/actors/:actor/activity", audit.ActorActivity)

	// Chain integrity.
	api.GET("/verify", integrity.Verify)
	api.GET("/export", integrity.Export)

	// Stats.
	api.GET("/stats", stats.GetStats)

	// Live feed.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
